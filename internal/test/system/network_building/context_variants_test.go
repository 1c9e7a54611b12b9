package system

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/shadernet/internal/app"
	"github.com/vk/shadernet/internal/testutil"
)

const layeredLook = `
shader "grain" {
  type = "osl:shader"
  parameter "scale" {
    type  = "float"
    value = context.variant == "worn" ? 8 : 2
  }
  output "out" { type = "float" }
}

context_variables "worn" {
  variables = { variant = "worn" }
  input     = grain.out
}

dot "relay" {
  input = grain.out
}

shader "wood" {
  type = "osl:surface"
  parameter "base" {
    type  = "float"
    input = grain.out
  }
  parameter "coat" {
    type  = "float"
    input = relay.out
  }
  parameter "scratches" {
    type  = "float"
    input = worn.out
  }
  output "out" { type = "closure" }
}
`

func scale(t *testing.T, s testutil.Shader) float64 {
	t.Helper()
	v, ok := s.Parameters["scale"]
	require.True(t, ok)
	var f float64
	require.NoError(t, json.Unmarshal(v.Value, &f))
	return f
}

// Test for: one instance per distinct evaluation, shared across paths.
func TestNetwork_InstancesPerContext(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	files := map[string]string{"look.hcl": layeredLook}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{
		Outputs:   []string{"wood.out"},
		Variables: []string{"variant=new"},
	})

	// --- Assert ---
	report := testutil.RequireReport(t, result, "wood.out")
	n := report.Network
	assert.Equal(t, []string{"grain", "grain1", "wood"}, n.Handles())

	grain, ok := n.Shader("grain")
	require.True(t, ok)
	assert.Equal(t, 2.0, scale(t, grain))
	worn, ok := n.Shader("grain1")
	require.True(t, ok)
	assert.Equal(t, 8.0, scale(t, worn))

	want := []testutil.Connection{
		{Source: testutil.Parameter{Shader: "grain", Name: "out"}, Destination: testutil.Parameter{Shader: "wood", Name: "base"}},
		{Source: testutil.Parameter{Shader: "grain", Name: "out"}, Destination: testutil.Parameter{Shader: "wood", Name: "coat"}},
		{Source: testutil.Parameter{Shader: "grain1", Name: "out"}, Destination: testutil.Parameter{Shader: "wood", Name: "scratches"}},
	}
	sortConns := cmpopts.SortSlices(func(a, b testutil.Connection) bool {
		return a.Destination.Name < b.Destination.Name
	})
	if diff := cmp.Diff(want, n.Connections, sortConns); diff != "" {
		t.Errorf("connections mismatch (-want +got):\n%s", diff)
	}
}

// Test for: a context that already matches the override collapses both
// paths into one instance.
func TestNetwork_ContextOverrideThatChangesNothing(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	files := map[string]string{"look.hcl": layeredLook}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, app.Config{
		Outputs:   []string{"wood.out"},
		Variables: []string{"variant=worn"},
	})

	// --- Assert ---
	report := testutil.RequireReport(t, result, "wood.out")
	assert.Equal(t, []string{"grain", "wood"}, report.Network.Handles())
	assert.Len(t, report.Network.Connections, 3)
}

// Test for: the attribute hash follows the network content.
func TestNetwork_HashTracksContext(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	files := map[string]string{"look.hcl": layeredLook}
	hashFor := func(variant string) string {
		result := testutil.RunIntegrationTest(t, files, app.Config{
			Outputs:   []string{"wood.out"},
			Variables: []string{"variant=" + variant},
			HashOnly:  true,
		})
		return testutil.RequireReport(t, result, "wood.out").Hash
	}

	// --- Act ---
	newHash := hashFor("new")
	newAgain := hashFor("new")
	wornHash := hashFor("worn")

	// --- Assert ---
	assert.Equal(t, newHash, newAgain)
	assert.NotEqual(t, newHash, wornHash)
}
