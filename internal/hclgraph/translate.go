package hclgraph

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/shadernet/internal/ctxlog"
	"github.com/vk/shadernet/internal/memgraph"
	"github.com/vk/shadernet/internal/shading"
	"github.com/zclconf/go-cty/cty"
)

// link is a connection recorded while nodes are created and applied once
// every node exists, so blocks may reference nodes declared later or in
// other files.
type link struct {
	dst  shading.ParamRef
	expr hcl.Expression
}

// translator populates a graph from decoded files in two passes: nodes and
// plugs first, then connections.
type translator struct {
	graph *memgraph.Graph
	links []link
	diags hcl.Diagnostics
}

func (t *translator) fail(err error, subject hcl.Expression, summary string) {
	d := &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   err.Error(),
	}
	if subject != nil {
		d.Subject = subject.Range().Ptr()
	}
	t.diags = append(t.diags, d)
}

func (t *translator) value(expr hcl.Expression, attr string) memgraph.Expr {
	if !isExprDefined(expr) {
		return memgraph.Expr{}
	}
	e, diags := valueExpr(expr, attr)
	t.diags = append(t.diags, diags...)
	return e
}

func (t *translator) connect(dst shading.ParamRef, expr hcl.Expression) {
	if isExprDefined(expr) {
		t.links = append(t.links, link{dst: dst, expr: expr})
	}
}

func (t *translator) addShader(ctx context.Context, b *shaderBlock) {
	logger := ctxlog.FromContext(ctx)

	var color [3]float64
	if len(b.Color) != 0 {
		if len(b.Color) != 3 {
			t.fail(fmt.Errorf("shader %q: color needs 3 components, got %d", b.ID, len(b.Color)), nil, "Invalid color")
			return
		}
		copy(color[:], b.Color)
	}

	id := shading.NodeID(b.ID)
	err := t.graph.AddShader(id, memgraph.ShaderSpec{
		TypeTag: b.TypeTag,
		Name:    b.Name,
		Type:    b.Type,
		Color:   color,
		Enabled: t.value(b.Enabled, "enabled"),
	})
	if err != nil {
		t.fail(err, nil, "Invalid shader")
		return
	}

	for _, p := range b.Parameters {
		t.addParameter(t.graph.Parameters(id), p)
	}
	for _, o := range b.Outputs {
		if _, err := t.graph.AddOutput(id, o.Name, memgraph.OutputSpec{Type: o.Type, PassThrough: o.PassThrough}); err != nil {
			t.fail(err, nil, "Invalid output")
		}
	}
	logger.Debug("Translated shader block.", "node", b.ID, "parameters", len(b.Parameters), "outputs", len(b.Outputs))
}

func (t *translator) addParameter(parent shading.ParamRef, b *parameterBlock) {
	ref, err := t.graph.AddParameter(parent, b.Name, memgraph.ParameterSpec{
		Type:          b.Type,
		Value:         t.value(b.Value, "value"),
		Array:         b.Array,
		Optional:      b.Optional,
		Enabled:       t.value(b.Enabled, "enabled"),
		Interpolation: t.value(b.Interpolation, "interpolation"),
	})
	if err != nil {
		t.fail(err, b.Value, "Invalid parameter")
		return
	}

	t.connect(ref, b.Input)
	for _, c := range b.Components {
		t.connect(ref.Child(c.Name), c.Input)
	}
	for _, child := range b.Parameters {
		t.addParameter(ref, child)
	}
	for _, pt := range b.Points {
		sp, err := t.graph.AddSplinePoint(ref, t.value(pt.X, "x"), t.value(pt.Y, "y"))
		if err != nil {
			t.fail(err, pt.X, "Invalid spline point")
			continue
		}
		t.connect(sp.Y, pt.Input)
		for _, c := range pt.Components {
			t.connect(sp.Y.Child(c.Name), c.Input)
		}
	}
}

func (t *translator) addSwitch(b *switchBlock) {
	inputs, diags := hcl.ExprList(b.Inputs)
	t.diags = append(t.diags, diags...)
	if diags.HasErrors() {
		return
	}

	id := shading.NodeID(b.ID)
	if err := t.graph.AddSwitch(id, len(inputs), t.value(b.Index, "index")); err != nil {
		t.fail(err, nil, "Invalid switch")
		return
	}
	if isExprDefined(b.Enabled) {
		if err := t.graph.SetEnabled(id, t.value(b.Enabled, "enabled")); err != nil {
			t.fail(err, b.Enabled, "Invalid switch")
		}
	}
	for i, in := range inputs {
		t.connect(shading.Ref(id, fmt.Sprintf("in.%d", i)), in)
	}
}

func (t *translator) addContextVariables(b *contextVariablesBlock) {
	pairs, diags := hcl.ExprMap(b.Variables)
	t.diags = append(t.diags, diags...)
	if diags.HasErrors() {
		return
	}

	vars := make(map[string]memgraph.Expr, len(pairs))
	for _, pair := range pairs {
		key, keyDiags := pair.Key.Value(nil)
		t.diags = append(t.diags, keyDiags...)
		if keyDiags.HasErrors() {
			continue
		}
		if key.IsNull() || !key.Type().Equals(cty.String) {
			t.fail(fmt.Errorf("context variable names must be strings"), pair.Key, "Invalid context variable")
			continue
		}
		vars[key.AsString()] = t.value(pair.Value, key.AsString())
	}

	id := shading.NodeID(b.ID)
	if err := t.graph.AddContextVariables(id, vars); err != nil {
		t.fail(err, nil, "Invalid context_variables")
		return
	}
	if isExprDefined(b.Enabled) {
		if err := t.graph.SetEnabled(id, t.value(b.Enabled, "enabled")); err != nil {
			t.fail(err, b.Enabled, "Invalid context_variables")
		}
	}
	t.connect(shading.Ref(id, "in"), b.Input)
}

func (t *translator) addDot(b *dotBlock) {
	id := shading.NodeID(b.ID)
	if err := t.graph.AddDot(id); err != nil {
		t.fail(err, nil, "Invalid dot")
		return
	}
	t.connect(shading.Ref(id, "in"), b.Input)
}

func (t *translator) addValue(b *valueBlock) {
	if err := t.graph.AddValue(shading.NodeID(b.ID), b.Type, t.value(b.Value, "value")); err != nil {
		t.fail(err, b.Value, "Invalid value")
	}
}

// linkAll applies every recorded connection.
func (t *translator) linkAll(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, l := range t.links {
		src, diags := paramRef(l.expr)
		t.diags = append(t.diags, diags...)
		if diags.HasErrors() {
			continue
		}
		if err := t.graph.Connect(l.dst, src); err != nil {
			t.fail(err, l.expr, "Invalid connection")
			continue
		}
		logger.Debug("Linked parameter.", "destination", l.dst.String(), "source", src.String())
	}
}
