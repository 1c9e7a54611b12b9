package flatten

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/shadernet/internal/hclgraph"
	"github.com/vk/shadernet/internal/memgraph"
	"github.com/vk/shadernet/internal/network"
	"github.com/vk/shadernet/internal/shading"
	"github.com/zclconf/go-cty/cty"
)

func loadGraph(t *testing.T, src string) *memgraph.Graph {
	t.Helper()
	g, err := hclgraph.NewLoader().LoadBytes(context.Background(), []byte(src), "graph.hcl")
	require.NoError(t, err)
	return g
}

func ref(t *testing.T, raw string) shading.ParamRef {
	t.Helper()
	r, err := shading.ParseParamRef(raw)
	require.NoError(t, err)
	return r
}

func build(t *testing.T, g shading.Graph, output string, opts ...Option) *network.Network {
	t.Helper()
	n, err := New(g, ref(t, output), opts...).Network(context.Background())
	require.NoError(t, err)
	require.True(t, n.Sealed())
	require.NoError(t, n.Validate())
	return n
}

func mustShader(t *testing.T, n *network.Network, handle string) network.Shader {
	t.Helper()
	s, ok := n.Shader(handle)
	require.True(t, ok, "shader %q not in network %v", handle, n.Handles())
	return s
}

func conn(src, srcName, dst, dstName string) network.Connection {
	return network.Connection{
		Source:      network.Parameter{Shader: src, Name: srcName},
		Destination: network.Parameter{Shader: dst, Name: dstName},
	}
}

func toJSON(t *testing.T, n *network.Network) string {
	t.Helper()
	raw, err := json.Marshal(n)
	require.NoError(t, err)
	return string(raw)
}

func frameContext(frame int64) shading.Context {
	return shading.NewContext(map[string]cty.Value{"frame": cty.NumberIntVal(frame)})
}
