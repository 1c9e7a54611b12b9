package flatten

import (
	"context"

	"github.com/vk/shadernet/internal/contenthash"
	"github.com/vk/shadernet/internal/ctxlog"
	"github.com/vk/shadernet/internal/shading"
)

// shaderHash returns the content hash of node in c, computing it on first
// use. It is the dedup key of shader instances and fails with a CycleError
// if the node depends on itself in the same context.
func (b *Builder) shaderHash(ctx context.Context, node shading.NodeID, c shading.Context) (contenthash.Hash, error) {
	key := nodeKey{node: node, ctx: c.Hash()}
	if h, ok := b.hashes[key]; ok {
		return h, nil
	}

	release, err := b.cycles.enter(node, c)
	if err != nil {
		return contenthash.Hash{}, err
	}
	defer release()

	info := b.graph.NodeInfo(node, c)
	h := contenthash.New().
		AppendString(info.TypeTag).
		AppendString(info.Name).
		AppendString(info.Type).
		AppendString(info.NodeName)
	for _, channel := range info.Color {
		h.AppendFloat(channel)
	}

	sink := &hashSink{b: b, h: h}
	if err := b.walk(ctx, b.graph.Parameters(node), "", c, sink, false, false); err != nil {
		return contenthash.Hash{}, err
	}

	sum := h.Sum()
	b.hashes[key] = sum
	ctxlog.FromContext(ctx).Debug("Hashed shader.", "node", string(node), "context_hash", key.ctx.String(), "hash", sum.String())
	return sum, nil
}

// parameterHash hashes a shader output: the shader's hash plus the output's
// name below the out plug, if any.
func (b *Builder) parameterHash(ctx context.Context, output shading.ParamRef, c shading.Context) (contenthash.Hash, error) {
	sh, err := b.shaderHash(ctx, output.Node, c)
	if err != nil {
		return contenthash.Hash{}, err
	}
	h := contenthash.New().AppendHash(sh)
	if name, ok := output.RelativeTo(b.graph.Out(output.Node)); ok {
		h.AppendString(name)
	}
	return h.Sum(), nil
}

type hashSink struct {
	b *Builder
	h *contenthash.Hasher
}

func (s *hashSink) enter(string, shading.ParamRef) {}

func (s *hashSink) value(name string, v shading.Value) {
	s.h.AppendString(name).AppendString(v.Type)
	if err := s.h.AppendValue(v.Data); err != nil {
		s.h.AppendString(v.Data.GoString())
	}
}

func (s *hashSink) connection(ctx context.Context, name string, source shading.ParamRef, sc shading.Context) error {
	ph, err := s.b.parameterHash(ctx, source, sc)
	if err != nil {
		return err
	}
	s.h.AppendString(name).AppendHash(ph)
	return nil
}

func (s *hashSink) spline(ctx context.Context, name string, ref shading.ParamRef, c shading.Context) error {
	return s.b.hashSpline(ctx, ref, c, s.h)
}
