package flatten

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/shadernet/internal/network"
)

type point struct {
	x, y      string
	input     string
	component string
}

// splineGraph builds a graph where shader "user" has a spline parameter
// "ramp" and shader "noise" can feed its points.
func splineGraph(splineType, interpolation string, points []point) string {
	var b strings.Builder
	fmt.Fprintf(&b, `
shader "noise" {
  type = "osl:shader"
  output "out" { type = "float" }
}

shader "user" {
  type = "osl:surface"
  parameter "ramp" {
    type          = %q
    interpolation = %q
`, splineType, interpolation)
	for _, p := range points {
		fmt.Fprintf(&b, "    point {\n      x = %s\n      y = %s\n", p.x, p.y)
		if p.input != "" {
			fmt.Fprintf(&b, "      input = %s\n", p.input)
		}
		if p.component != "" {
			fmt.Fprintf(&b, "      component %q { input = noise.out }\n", p.component)
		}
		b.WriteString("    }\n")
	}
	b.WriteString("  }\n  output \"out\" { type = \"closure\" }\n}\n")
	return b.String()
}

func TestNetwork_SplineConnections(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		splineType    string
		interpolation string
		points        []point
		wantDests     []string
	}{
		{
			name:          "linear first point",
			splineType:    "splineff",
			interpolation: "linear",
			points: []point{
				{x: "0", y: "0", input: "noise.out"},
				{x: "0.5", y: "0.5"},
				{x: "1", y: "1"},
			},
			wantDests: []string{"ramp[0].y"},
		},
		{
			name:          "catmullRom endpoints",
			splineType:    "splineff",
			interpolation: "catmullRom",
			points: []point{
				{x: "0", y: "0", input: "noise.out"},
				{x: "0.3", y: "0.5"},
				{x: "0.6", y: "0.5"},
				{x: "1", y: "1", input: "noise.out"},
			},
			wantDests: []string{"ramp[0].y", "ramp[1].y", "ramp[4].y", "ramp[5].y"},
		},
		{
			name:          "catmullRom interior point",
			splineType:    "splineff",
			interpolation: "catmullRom",
			points: []point{
				{x: "0", y: "0"},
				{x: "0.25", y: "0.5"},
				{x: "0.5", y: "0.5", input: "noise.out"},
				{x: "0.75", y: "0.5"},
				{x: "1", y: "1"},
			},
			wantDests: []string{"ramp[3].y"},
		},
		{
			name:          "bSpline first point",
			splineType:    "splineff",
			interpolation: "bSpline",
			points: []point{
				{x: "0", y: "0", input: "noise.out"},
				{x: "0.5", y: "0.5"},
				{x: "1", y: "1"},
			},
			wantDests: []string{"ramp[0].y", "ramp[1].y", "ramp[2].y"},
		},
		{
			name:          "points renumbered by position",
			splineType:    "splineff",
			interpolation: "linear",
			points: []point{
				{x: "1", y: "1", input: "noise.out"},
				{x: "0", y: "0"},
				{x: "0.5", y: "0.5"},
			},
			wantDests: []string{"ramp[2].y"},
		},
		{
			name:          "compound lane",
			splineType:    "splinefColor3f",
			interpolation: "linear",
			points: []point{
				{x: "0", y: "[0, 0, 0]", component: "r"},
				{x: "1", y: "[1, 1, 1]"},
			},
			wantDests: []string{"ramp[0].y.r"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// --- Arrange ---
			g := loadGraph(t, splineGraph(tc.splineType, tc.interpolation, tc.points))

			// --- Act ---
			n := build(t, g, "user.out")

			// --- Assert ---
			var want []network.Connection
			for _, dest := range tc.wantDests {
				want = append(want, conn("noise", "out", "user", dest))
			}
			assert.Equal(t, []string{"noise", "user"}, n.Handles())
			assert.Equal(t, want, n.Connections())
			assert.Contains(t, mustShader(t, n, "user").Parameters, "ramp", "the spline literal is kept alongside its inputs")
		})
	}
}

func TestNetwork_SplineWithoutInputs(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	g := loadGraph(t, splineGraph("splineff", "monotoneCubic", []point{
		{x: "0", y: "0"},
		{x: "1", y: "1"},
	}))

	// --- Act ---
	n := build(t, g, "user.out")

	// --- Assert ---
	assert.Equal(t, []string{"user"}, n.Handles())
	assert.Empty(t, n.Connections())
	ramp, ok := mustShader(t, n, "user").Parameters["ramp"]
	require.True(t, ok)
	assert.Equal(t, "monotoneCubic", ramp.Data.GetAttr("interpolation").AsString())
	assert.Equal(t, 2, ramp.Data.GetAttr("points").LengthInt())
}

func TestNetwork_SplineHashTracksPositions(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	points := func(last string) []point {
		return []point{
			{x: "0", y: "0", input: "noise.out"},
			{x: last, y: "1"},
		}
	}
	ctx := context.Background()

	// --- Act ---
	near, err := New(loadGraph(t, splineGraph("splineff", "linear", points("0.5"))), ref(t, "user.out")).Hash(ctx)
	require.NoError(t, err)
	far, err := New(loadGraph(t, splineGraph("splineff", "linear", points("1"))), ref(t, "user.out")).Hash(ctx)
	require.NoError(t, err)

	// --- Assert ---
	assert.NotEqual(t, near, far)
}

func TestNetwork_SplineErrors(t *testing.T) {
	t.Parallel()

	t.Run("monotoneCubic with inputs", func(t *testing.T) {
		t.Parallel()
		// --- Arrange ---
		g := loadGraph(t, splineGraph("splineff", "monotoneCubic", []point{
			{x: "0", y: "0", input: "noise.out"},
			{x: "1", y: "1"},
		}))

		// --- Act ---
		_, err := New(g, ref(t, "user.out")).Network(context.Background())

		// --- Assert ---
		require.ErrorIs(t, err, ErrUnsupportedInterpolation)
		var interpErr *InterpolationError
		require.ErrorAs(t, err, &interpErr)
		assert.Equal(t, ref(t, "user.parameters.ramp"), interpErr.Parameter)
		assert.Contains(t, err.Error(), "cannot support monotoneCubic interpolation")
	})

	testCases := []struct {
		name   string
		target string
	}{
		{name: "connected position", target: "user.parameters.ramp.p0.x"},
		{name: "connected interpolation", target: "user.parameters.ramp.interpolation"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// --- Arrange ---
			g := loadGraph(t, splineGraph("splineff", "linear", []point{
				{x: "0", y: "0"},
				{x: "1", y: "1"},
			}))
			require.NoError(t, g.Connect(ref(t, tc.target), ref(t, "noise.out")))
			b := New(g, ref(t, "user.out"))

			// --- Act ---
			_, err := b.Network(context.Background())
			_, hashErr := b.Hash(context.Background())

			// --- Assert ---
			require.ErrorIs(t, err, ErrInvalidConnectionTarget)
			assert.ErrorIs(t, hashErr, ErrInvalidConnectionTarget)
			var targetErr *ConnectionTargetError
			require.ErrorAs(t, err, &targetErr)
			assert.Equal(t, ref(t, tc.target), targetErr.Parameter)
		})
	}
}
