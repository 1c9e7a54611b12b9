package flatten

import (
	"github.com/vk/shadernet/internal/contenthash"
	"github.com/vk/shadernet/internal/shading"
)

// nodeKey identifies a node evaluated in a particular context.
type nodeKey struct {
	node shading.NodeID
	ctx  contenthash.Hash
}

// cycleDetector tracks the (node, context) pairs currently being hashed.
// Reaching the same node in a different context is not a cycle: switches
// driven by context variables legitimately revisit nodes that way.
type cycleDetector struct {
	active map[nodeKey]struct{}
}

// enter marks (node, c) active and returns the function that releases it.
// It fails if the pair is already active.
func (d *cycleDetector) enter(node shading.NodeID, c shading.Context) (func(), error) {
	if d.active == nil {
		d.active = make(map[nodeKey]struct{})
	}
	key := nodeKey{node: node, ctx: c.Hash()}
	if _, ok := d.active[key]; ok {
		return nil, &CycleError{Node: node}
	}
	d.active[key] = struct{}{}
	return func() { delete(d.active, key) }, nil
}
