package flatten

import (
	"github.com/vk/shadernet/internal/contenthash"
	"github.com/vk/shadernet/internal/shading"
)

type resolveKey struct {
	ref shading.ParamRef
	ctx contenthash.Hash
}

// connectionSource returns the enabled shader output that ultimately feeds
// ref in c, and the context that output must be evaluated in. Disabled
// shaders are skipped through their corresponding input; switches, dots
// and context overrides are traversed by the host graph. The boolean is
// false when nothing upstream is a shader, including when a pass-through
// chain loops back on itself.
func (b *Builder) connectionSource(ref shading.ParamRef, c shading.Context) (shading.ParamRef, shading.Context, bool) {
	var seen map[resolveKey]struct{}
	for {
		if b.graph.IsOutputParameter(ref) {
			if b.graph.NodeEnabled(ref.Node, c) {
				return ref, c, true
			}
			in, ok := b.graph.CorrespondingInput(ref)
			if !ok {
				return shading.ParamRef{}, shading.Context{}, false
			}
			ref = in
		} else {
			if !b.graph.IsInputParameter(ref) {
				return shading.ParamRef{}, shading.Context{}, false
			}
			src, sc := b.graph.FollowConnection(ref, c)
			if src == ref || !b.isParameter(src) {
				return shading.ParamRef{}, shading.Context{}, false
			}
			ref, c = src, sc
		}

		if seen == nil {
			seen = make(map[resolveKey]struct{})
		}
		key := resolveKey{ref: ref, ctx: c.Hash()}
		if _, loop := seen[key]; loop {
			return shading.ParamRef{}, shading.Context{}, false
		}
		seen[key] = struct{}{}
	}
}

func (b *Builder) isParameter(ref shading.ParamRef) bool {
	return b.graph.IsInputParameter(ref) || b.graph.IsOutputParameter(ref)
}
