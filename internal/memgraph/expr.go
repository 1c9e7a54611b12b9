package memgraph

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/shadernet/internal/shading"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// ContextVariable is the root name under which context variables are
// visible to expressions, e.g. context.frame.
const ContextVariable = "context"

// Expr is a plug value that is either a constant or an HCL expression
// evaluated against the current context. The zero Expr holds no value.
type Expr struct {
	static cty.Value
	set    bool
	expr   hcl.Expression
}

// Static returns an Expr holding a constant.
func Static(v cty.Value) Expr {
	return Expr{static: v, set: true}
}

// Expression returns an Expr that evaluates e in the current context each
// time it is read.
func Expression(e hcl.Expression) Expr {
	return Expr{expr: e}
}

// IsZero reports whether the Expr holds no value.
func (e Expr) IsZero() bool {
	return e.expr == nil && !e.set
}

// functions available to graph expressions.
var functions = map[string]function.Function{
	"abs":    stdlib.AbsoluteFunc,
	"ceil":   stdlib.CeilFunc,
	"floor":  stdlib.FloorFunc,
	"format": stdlib.FormatFunc,
	"lower":  stdlib.LowerFunc,
	"max":    stdlib.MaxFunc,
	"min":    stdlib.MinFunc,
	"upper":  stdlib.UpperFunc,
}

// EvalContext returns the HCL evaluation context exposing c.
func EvalContext(c shading.Context) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{ContextVariable: c.Object()},
		Functions: functions,
	}
}

// Eval returns the value of e in c.
func (e Expr) Eval(c shading.Context) (cty.Value, error) {
	if e.expr == nil {
		if !e.set {
			return cty.NilVal, fmt.Errorf("no value")
		}
		return e.static, nil
	}
	v, diags := e.expr.Value(EvalContext(c))
	if diags.HasErrors() {
		return cty.NilVal, diags
	}
	if !v.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("expression value is not known")
	}
	return v, nil
}

// KnownFunction reports whether name can be called from a graph expression.
func KnownFunction(name string) bool {
	_, ok := functions[name]
	return ok
}
