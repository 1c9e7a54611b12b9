package network

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/shadernet/internal/dag"
	"github.com/vk/shadernet/internal/shading"
	"github.com/zclconf/go-cty/cty"
)

func floatVal(f float64) shading.Value {
	return shading.Value{Type: shading.TypeFloat, Data: cty.NumberFloatVal(f)}
}

func TestAddShader_UniqueHandles(t *testing.T) {
	t.Parallel()
	n := New()

	got := []string{
		n.AddShader("noise", &Shader{Name: "Pattern/Noise"}),
		n.AddShader("noise", &Shader{Name: "Pattern/Noise"}),
		n.AddShader("noise", &Shader{Name: "Pattern/Noise"}),
		n.AddShader("", &Shader{Name: "anon"}),
	}

	want := []string{"noise", "noise1", "noise2", "shader"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("handles mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, want, n.Handles())
	assert.Equal(t, 4, n.Len())

	s, ok := n.Shader("noise1")
	require.True(t, ok)
	assert.NotNil(t, s.Parameters, "parameters map is initialized")
}

func TestSeal_PanicsOnMutation(t *testing.T) {
	t.Parallel()
	n := New()
	n.AddShader("A", &Shader{Name: "a"})
	n.SetOutput(Parameter{Shader: "A"})
	n.Seal()

	assert.True(t, n.Sealed())
	assert.Panics(t, func() { n.AddShader("B", &Shader{}) })
	assert.Panics(t, func() { n.AddConnection(Connection{}) })
	assert.Panics(t, func() { n.SetOutput(Parameter{Shader: "B"}) })
	assert.Panics(t, func() { n.SetHasProxyNodes(true) })
	assert.NotPanics(t, func() { n.Seal() })
}

func TestShader_ReturnsCopy(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	n := New()
	n.AddShader("A", &Shader{
		Name:       "Pattern/Noise",
		Type:       "osl:shader",
		Parameters: map[string]shading.Value{"scale": floatVal(2)},
		Blind:      Blind{Label: "noise"},
	})
	n.SetOutput(Parameter{Shader: "A"})
	n.Seal()

	// --- Act ---
	s, ok := n.Shader("A")
	require.True(t, ok)
	s.Type = "mutated"
	s.Blind.Label = "mutated"
	s.Parameters["scale"] = floatVal(9)
	s.Parameters["extra"] = floatVal(1)

	// --- Assert ---
	again, ok := n.Shader("A")
	require.True(t, ok)
	assert.Equal(t, "osl:shader", again.Type)
	assert.Equal(t, "noise", again.Blind.Label)
	assert.Len(t, again.Parameters, 1)
	assert.True(t, again.Parameters["scale"].Equal(floatVal(2)))

	_, ok = n.Shader("missing")
	assert.False(t, ok)
}

func TestInputConnections(t *testing.T) {
	t.Parallel()
	n := New()
	n.AddShader("B", &Shader{})
	n.AddShader("C", &Shader{})
	n.AddShader("A", &Shader{})
	n.AddConnection(Connection{Source: Parameter{Shader: "B"}, Destination: Parameter{Shader: "A", Name: "x"}})
	n.AddConnection(Connection{Source: Parameter{Shader: "C"}, Destination: Parameter{Shader: "A", Name: "y"}})
	n.AddConnection(Connection{Source: Parameter{Shader: "B"}, Destination: Parameter{Shader: "C", Name: "z"}})

	got := n.InputConnections("A")
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].Destination.Name)
	assert.Equal(t, "y", got[1].Destination.Name)
	assert.Empty(t, n.InputConnections("B"))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		build     func(n *Network)
		expectErr []string
		isCycle   bool
	}{
		{
			name:  "empty network is valid",
			build: func(n *Network) {},
		},
		{
			name: "dependency first chain",
			build: func(n *Network) {
				n.AddShader("B", &Shader{})
				n.AddShader("A", &Shader{})
				n.AddConnection(Connection{Source: Parameter{Shader: "B"}, Destination: Parameter{Shader: "A", Name: "y"}})
				n.SetOutput(Parameter{Shader: "A"})
			},
		},
		{
			name: "missing endpoint",
			build: func(n *Network) {
				n.AddShader("A", &Shader{})
				n.AddConnection(Connection{Source: Parameter{Shader: "ghost"}, Destination: Parameter{Shader: "A", Name: "y"}})
				n.SetOutput(Parameter{Shader: "A"})
			},
			expectErr: []string{"source shader not found"},
		},
		{
			name: "destination before source",
			build: func(n *Network) {
				n.AddShader("A", &Shader{})
				n.AddShader("B", &Shader{})
				n.AddConnection(Connection{Source: Parameter{Shader: "B"}, Destination: Parameter{Shader: "A", Name: "y"}})
				n.SetOutput(Parameter{Shader: "A"})
			},
			expectErr: []string{"not inserted before destination"},
		},
		{
			name: "cycle",
			build: func(n *Network) {
				n.AddShader("A", &Shader{})
				n.AddShader("B", &Shader{})
				n.AddConnection(Connection{Source: Parameter{Shader: "A"}, Destination: Parameter{Shader: "B", Name: "x"}})
				n.AddConnection(Connection{Source: Parameter{Shader: "B"}, Destination: Parameter{Shader: "A", Name: "y"}})
				n.SetOutput(Parameter{Shader: "A"})
			},
			expectErr: []string{"not inserted before destination", "cycle detected"},
			isCycle:   true,
		},
		{
			name: "missing output",
			build: func(n *Network) {
				n.AddShader("A", &Shader{})
			},
			expectErr: []string{"has no output"},
		},
		{
			name: "dangling output",
			build: func(n *Network) {
				n.AddShader("A", &Shader{})
				n.SetOutput(Parameter{Shader: "Z"})
			},
			expectErr: []string{"output shader \"Z\" not found"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// --- Arrange ---
			n := New()
			tc.build(n)

			// --- Act ---
			err := n.Validate()

			// --- Assert ---
			if len(tc.expectErr) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, msg := range tc.expectErr {
				assert.ErrorContains(t, err, msg)
			}
			assert.Equal(t, tc.isCycle, errors.Is(err, dag.ErrCycle))
		})
	}
}

func TestMarshalJSON(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	n := New()
	n.AddShader("B", &Shader{
		Name: "noise",
		Type: "osl:shader",
		Parameters: map[string]shading.Value{
			"scale": floatVal(2),
		},
		Blind: Blind{Label: "B", NodeName: "B", NodeColor: [3]float64{0.1, 0.2, 0.3}},
	})
	n.AddShader("A", &Shader{
		Name:       "surface",
		Type:       "osl:surface",
		Parameters: map[string]shading.Value{"y": floatVal(0)},
		Blind:      Blind{Label: "A", NodeName: "A"},
	})
	n.AddConnection(Connection{Source: Parameter{Shader: "B", Name: "out"}, Destination: Parameter{Shader: "A", Name: "y"}})
	n.SetOutput(Parameter{Shader: "A"})
	n.Seal()

	// --- Act ---
	raw, err := json.Marshal(n)
	require.NoError(t, err)

	// --- Assert ---
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, map[string]any{"shader": "A"}, decoded["output"])
	assert.NotContains(t, decoded, "hasProxyNodes")

	shaders := decoded["shaders"].([]any)
	require.Len(t, shaders, 2)
	first := shaders[0].(map[string]any)
	assert.Equal(t, "B", first["handle"])
	assert.Equal(t, map[string]any{"type": "float", "value": 2.0}, first["parameters"].(map[string]any)["scale"])
	assert.Equal(t, []any{0.1, 0.2, 0.3}, first["blind"].(map[string]any)["nodeColor"])

	connections := decoded["connections"].([]any)
	require.Len(t, connections, 1)
	assert.Equal(t, map[string]any{
		"source":      map[string]any{"shader": "B", "name": "out"},
		"destination": map[string]any{"shader": "A", "name": "y"},
	}, connections[0])
}
