package memgraph

import (
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/shadernet/internal/shading"
	"github.com/zclconf/go-cty/cty"
)

func mustExpr(t *testing.T, src string) Expr {
	t.Helper()
	e, diags := hclsyntax.ParseExpression([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return Expression(e)
}

// newTwoShaderGraph builds B.out -> A.parameters.y with A.parameters.x = 1.
func newTwoShaderGraph(t *testing.T) *Graph {
	t.Helper()
	g := New()
	require.NoError(t, g.AddShader("A", ShaderSpec{Name: "surface", Type: "osl:surface"}))
	require.NoError(t, g.AddShader("B", ShaderSpec{Name: "noise", Type: "osl:shader"}))
	_, err := g.AddParameter(g.Parameters("A"), "x", ParameterSpec{Type: shading.TypeFloat, Value: Static(cty.NumberIntVal(1))})
	require.NoError(t, err)
	y, err := g.AddParameter(g.Parameters("A"), "y", ParameterSpec{Type: shading.TypeFloat, Value: Static(cty.NumberIntVal(0))})
	require.NoError(t, err)
	_, err = g.AddOutput("A", "out", OutputSpec{Type: shading.TypeClosure})
	require.NoError(t, err)
	bOut, err := g.AddOutput("B", "out", OutputSpec{Type: shading.TypeFloat})
	require.NoError(t, err)
	require.NoError(t, g.Connect(y, bOut))
	return g
}

func TestParameterClassification(t *testing.T) {
	t.Parallel()
	g := newTwoShaderGraph(t)

	assert.True(t, g.IsInputParameter(shading.Ref("A", "parameters.x")))
	assert.False(t, g.IsInputParameter(shading.Ref("A", "parameters")), "root is not a parameter")
	assert.False(t, g.IsInputParameter(shading.Ref("A", "parameters.missing")))
	assert.True(t, g.IsOutputParameter(shading.Ref("B", "out")))
	assert.False(t, g.IsOutputParameter(shading.Ref("B", "parameters.x")))
	assert.False(t, g.IsOutputParameter(shading.Ref("ghost", "out")))
}

func TestFollowConnection(t *testing.T) {
	t.Parallel()
	g := newTwoShaderGraph(t)

	src, _ := g.FollowConnection(shading.Ref("A", "parameters.y"), shading.Context{})
	assert.Equal(t, shading.Ref("B", "out"), src)

	unconnected := shading.Ref("A", "parameters.x")
	src, _ = g.FollowConnection(unconnected, shading.Context{})
	assert.Equal(t, unconnected, src)
}

func TestFollowConnection_Routing(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	g := New()
	for _, id := range []shading.NodeID{"A", "B", "C"} {
		require.NoError(t, g.AddShader(id, ShaderSpec{Name: string(id)}))
		_, err := g.AddOutput(id, "out", OutputSpec{Type: shading.TypeFloat})
		require.NoError(t, err)
	}
	x, err := g.AddParameter(g.Parameters("A"), "x", ParameterSpec{Type: shading.TypeFloat})
	require.NoError(t, err)

	require.NoError(t, g.AddSwitch("sw", 2, mustExpr(t, `context.variant == "c" ? 1 : 0`)))
	require.NoError(t, g.Connect(shading.Ref("sw", "in.0"), shading.Ref("B", "out")))
	require.NoError(t, g.Connect(shading.Ref("sw", "in.1"), shading.Ref("C", "out")))
	require.NoError(t, g.AddDot("dot"))
	require.NoError(t, g.Connect(shading.Ref("dot", "in"), shading.Ref("sw", "out")))
	require.NoError(t, g.AddContextVariables("cv", map[string]Expr{"variant": Static(cty.StringVal("c"))}))
	require.NoError(t, g.Connect(shading.Ref("cv", "in"), shading.Ref("dot", "out")))

	testCases := []struct {
		name        string
		input       shading.ParamRef
		ctx         shading.Context
		expectSrc   shading.ParamRef
		expectVar   string
		expectNoVar bool
	}{
		{
			name:        "switch defaults to first input",
			input:       shading.Ref("dot", "out"),
			expectSrc:   shading.Ref("B", "out"),
			expectNoVar: true,
		},
		{
			name:      "switch index follows context",
			input:     shading.Ref("dot", "out"),
			ctx:       shading.NewContext(map[string]cty.Value{"variant": cty.StringVal("c")}),
			expectSrc: shading.Ref("C", "out"),
			expectVar: "c",
		},
		{
			name:      "context variables feed the switch",
			input:     shading.Ref("cv", "out"),
			expectSrc: shading.Ref("C", "out"),
			expectVar: "c",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, g.Connect(x, tc.input))

			src, sc := g.FollowConnection(x, tc.ctx)

			assert.Equal(t, tc.expectSrc, src)
			v, ok := sc.Get("variant")
			if tc.expectNoVar {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tc.expectVar, v.AsString())
		})
	}
}

func TestFollowConnection_UnconnectedSwitchInput(t *testing.T) {
	t.Parallel()
	g := New()
	require.NoError(t, g.AddShader("A", ShaderSpec{}))
	x, err := g.AddParameter(g.Parameters("A"), "x", ParameterSpec{Type: shading.TypeFloat})
	require.NoError(t, err)
	require.NoError(t, g.AddSwitch("sw", 2, Static(cty.NumberIntVal(3))))
	require.NoError(t, g.Connect(x, shading.Ref("sw", "out")))

	src, _ := g.FollowConnection(x, shading.Context{})

	assert.Equal(t, shading.Ref("sw", "in.1"), src, "index wraps around the input count")
	assert.False(t, g.IsInputParameter(src))
	assert.False(t, g.IsOutputParameter(src))
}

func TestNodeEnabledAndPassThrough(t *testing.T) {
	t.Parallel()
	g := New()
	require.NoError(t, g.AddShader("B", ShaderSpec{Enabled: mustExpr(t, `context.frame < 10`)}))
	_, err := g.AddParameter(g.Parameters("B"), "in", ParameterSpec{Type: shading.TypeFloat, Value: Static(cty.NumberIntVal(7))})
	require.NoError(t, err)
	out, err := g.AddOutput("B", "out", OutputSpec{Type: shading.TypeFloat, PassThrough: "in"})
	require.NoError(t, err)

	early := shading.NewContext(map[string]cty.Value{"frame": cty.NumberIntVal(1)})
	late := shading.NewContext(map[string]cty.Value{"frame": cty.NumberIntVal(20)})
	assert.True(t, g.NodeEnabled("B", early))
	assert.False(t, g.NodeEnabled("B", late))
	assert.True(t, g.NodeEnabled("B", shading.Context{}), "unevaluable enabled expression counts as enabled")

	in, ok := g.CorrespondingInput(out)
	require.True(t, ok)
	assert.Equal(t, shading.Ref("B", "parameters.in"), in)

	require.NoError(t, g.AddShader("A", ShaderSpec{}))
	y, err := g.AddParameter(g.Parameters("A"), "y", ParameterSpec{Type: shading.TypeFloat, Value: Static(cty.NumberIntVal(0))})
	require.NoError(t, err)
	require.NoError(t, g.Connect(y, out))

	v, ok := g.LiteralValue(y, late)
	require.True(t, ok)
	assert.True(t, v.Data.RawEquals(cty.NumberIntVal(7)), "disabled source provides its pass-through value")

	v, ok = g.LiteralValue(y, early)
	require.True(t, ok)
	assert.True(t, v.Data.RawEquals(cty.NumberIntVal(0)), "enabled output without a value falls back to the plug's own value")
}

func TestLiteralValue(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	g := New()
	require.NoError(t, g.AddShader("A", ShaderSpec{}))
	params := g.Parameters("A")
	color, err := g.AddParameter(params, "color", ParameterSpec{
		Type:  shading.TypeColor3f,
		Value: Static(cty.TupleVal([]cty.Value{cty.NumberFloatVal(0.5), cty.NumberIntVal(1), cty.NumberIntVal(0)})),
	})
	require.NoError(t, err)
	scale, err := g.AddParameter(params, "scale", ParameterSpec{Type: shading.TypeFloat, Value: mustExpr(t, `context.frame * 2`)})
	require.NoError(t, err)
	st, err := g.AddParameter(params, "st", ParameterSpec{})
	require.NoError(t, err)
	require.NoError(t, g.AddValue("v", shading.TypeFloat, Static(cty.NumberIntVal(42))))
	fed, err := g.AddParameter(params, "fed", ParameterSpec{Type: shading.TypeFloat})
	require.NoError(t, err)
	require.NoError(t, g.Connect(fed, shading.Ref("v", "out")))

	frame := shading.NewContext(map[string]cty.Value{"frame": cty.NumberIntVal(3)})

	// --- Act & Assert ---
	v, ok := g.LiteralValue(color.Child("r"), frame)
	require.True(t, ok, "compound lanes derive from the parent value")
	assert.Equal(t, shading.TypeFloat, v.Type)
	assert.True(t, v.Data.RawEquals(cty.NumberFloatVal(0.5)))

	v, ok = g.LiteralValue(scale, frame)
	require.True(t, ok)
	assert.True(t, v.Data.RawEquals(cty.NumberIntVal(6)))

	_, ok = g.LiteralValue(scale, shading.Context{})
	assert.False(t, ok, "missing context variable means no value")

	_, ok = g.LiteralValue(st, frame)
	assert.False(t, ok, "containers hold no value")

	v, ok = g.LiteralValue(fed, frame)
	require.True(t, ok)
	assert.True(t, v.Data.RawEquals(cty.NumberIntVal(42)))
}

func TestOptionalValue(t *testing.T) {
	t.Parallel()
	g := New()
	require.NoError(t, g.AddShader("A", ShaderSpec{}))
	on, err := g.AddParameter(g.Parameters("A"), "on", ParameterSpec{Type: shading.TypeFloat, Optional: true})
	require.NoError(t, err)
	_, err = g.AddParameter(g.Parameters("A"), "off", ParameterSpec{Type: shading.TypeFloat, Optional: true, Enabled: Static(cty.False)})
	require.NoError(t, err)

	assert.Equal(t, shading.Ref("A", "parameters.on.value"), on)
	assert.Equal(t, shading.KindOptional, g.Kind(shading.Ref("A", "parameters.on")))

	v, ok := g.OptionalValue(shading.Ref("A", "parameters.on"), shading.Context{})
	require.True(t, ok)
	assert.Equal(t, on, v)

	_, ok = g.OptionalValue(shading.Ref("A", "parameters.off"), shading.Context{})
	assert.False(t, ok)
}

func TestSpline(t *testing.T) {
	t.Parallel()
	g := New()
	require.NoError(t, g.AddShader("A", ShaderSpec{}))
	spline, err := g.AddParameter(g.Parameters("A"), "ramp", ParameterSpec{
		Type:          shading.TypeSplinefColor3f,
		Interpolation: Static(cty.StringVal("catmullRom")),
	})
	require.NoError(t, err)
	zero := cty.TupleVal([]cty.Value{cty.NumberIntVal(0), cty.NumberIntVal(0), cty.NumberIntVal(0)})
	one := cty.TupleVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(1), cty.NumberIntVal(1)})
	p0, err := g.AddSplinePoint(spline, Static(cty.NumberIntVal(0)), Static(zero))
	require.NoError(t, err)
	_, err = g.AddSplinePoint(spline, Static(cty.NumberIntVal(1)), Static(one))
	require.NoError(t, err)

	assert.Equal(t, shading.KindSpline, g.Kind(spline))
	points := g.SplinePoints(spline)
	require.Len(t, points, 2)
	assert.Equal(t, p0, points[0])
	assert.Equal(t, shading.Ref("A", "parameters.ramp.p1.y"), points[1].Y)
	assert.Equal(t, shading.KindCompound, g.Kind(points[1].Y))
	assert.Len(t, g.Children(points[1].Y), 3)

	v, ok := g.LiteralValue(spline, shading.Context{})
	require.True(t, ok)
	assert.Equal(t, shading.TypeSplinefColor3f, v.Type)
	assert.Equal(t, "catmullRom", v.Data.GetAttr("interpolation").AsString())
	assert.Equal(t, 2, v.Data.GetAttr("points").LengthInt())
}

func TestEditErrors(t *testing.T) {
	t.Parallel()
	g := newTwoShaderGraph(t)

	assert.ErrorContains(t, g.AddShader("A", ShaderSpec{}), "already exists")
	assert.ErrorContains(t, g.AddShader("", ShaderSpec{}), "cannot be empty")
	assert.ErrorContains(t, g.Connect(shading.Ref("A", "out"), shading.Ref("B", "out")), "not a shader parameter")
	assert.ErrorContains(t, g.Connect(shading.Ref("A", "parameters.x"), shading.Ref("B", "out.nope")), "source plug")
	assert.ErrorContains(t, g.SetValue(shading.Ref("A", "parameters"), Static(cty.True)), "holds no value")
	_, err := g.AddParameter(shading.Ref("A", "parameters.x"), "child", ParameterSpec{})
	assert.ErrorContains(t, err, "cannot have parameters")
	_, err = g.AddOutput("A", "extra", OutputSpec{})
	assert.ErrorContains(t, err, "sole output")

	require.NoError(t, g.Disconnect(shading.Ref("A", "parameters.y")))
	_, ok := g.Input(shading.Ref("A", "parameters.y"))
	assert.False(t, ok)
}

func TestNamedOutputs(t *testing.T) {
	t.Parallel()
	g := New()
	require.NoError(t, g.AddShader("A", ShaderSpec{}))
	rgb, err := g.AddOutput("A", "rgb", OutputSpec{Type: shading.TypeColor3f})
	require.NoError(t, err)
	_, err = g.AddOutput("A", "alpha", OutputSpec{Type: shading.TypeFloat})
	require.NoError(t, err)

	assert.Equal(t, shading.Ref("A", "out.rgb"), rgb)
	assert.Equal(t, shading.KindStruct, g.Kind(g.Out("A")))
	assert.True(t, g.IsOutputParameter(rgb.Child("g")))
	assert.Equal(t, []shading.ParamRef{rgb, shading.Ref("A", "out.alpha")}, g.Children(g.Out("A")))
	_, err = g.AddOutput("A", "out", OutputSpec{})
	assert.ErrorContains(t, err, "already has outputs")
}
