package flatten

import (
	"context"

	"github.com/vk/shadernet/internal/contenthash"
	"github.com/vk/shadernet/internal/network"
	"github.com/vk/shadernet/internal/shading"
)

// AttributeName returns the attribute a network is published under: the
// type of the output's node, with ":suffix" appended when suffix is set.
func AttributeName(graph shading.Graph, output shading.ParamRef, c shading.Context, suffix string) string {
	name := graph.NodeInfo(output.Node, c).Type
	if suffix != "" {
		name += ":" + suffix
	}
	return name
}

// Attributes flattens output and returns it keyed by its attribute name.
// The map is empty when the network is.
func Attributes(ctx context.Context, graph shading.Graph, output shading.ParamRef, suffix string, opts ...Option) (map[string]*network.Network, error) {
	b := New(graph, output, opts...)
	n, err := b.Network(ctx)
	if err != nil {
		return nil, err
	}
	attrs := make(map[string]*network.Network, 1)
	if !n.Empty() {
		attrs[AttributeName(graph, output, b.Context(), suffix)] = n
	}
	return attrs, nil
}

// AttributesHash returns a hash that changes whenever Attributes would
// return something different. It is zero when Attributes would be empty.
func AttributesHash(ctx context.Context, graph shading.Graph, output shading.ParamRef, suffix string, opts ...Option) (contenthash.Hash, error) {
	b := New(graph, output, opts...)
	h, err := b.Hash(ctx)
	if err != nil {
		return contenthash.Hash{}, err
	}
	if h.IsZero() {
		return h, nil
	}
	return contenthash.New().
		AppendString(suffix).
		AppendString(graph.NodeInfo(output.Node, b.Context()).Type).
		AppendHash(h).
		Sum(), nil
}
