package hclgraph

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/vk/shadernet/internal/memgraph"
	"github.com/vk/shadernet/internal/shading"
	"github.com/zclconf/go-cty/cty"
)

// isExprDefined reports whether an optional attribute was present in the
// source. gohcl fills omitted optional expressions with a zero-width
// placeholder, so a nil check is not enough.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}

// traversalKey renders a traversal canonically, e.g. context.frame.
func traversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// checkReferences rejects variables outside context.* and calls to unknown
// functions. It reports whether the expression reads any context variable.
func checkReferences(expr hcl.Expression, attr string) (bool, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	contextual := false
	for _, t := range expr.Variables() {
		if t.RootName() == memgraph.ContextVariable {
			contextual = true
			continue
		}
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid reference",
			Detail:   fmt.Sprintf("The %q attribute may only reference %s.* variables, not %q.", attr, memgraph.ContextVariable, traversalKey(t)),
			Subject:  t.SourceRange().Ptr(),
		})
	}

	syntaxExpr, ok := expr.(hclsyntax.Expression)
	if !ok {
		return contextual, diags
	}
	diags = append(diags, hclsyntax.VisitAll(syntaxExpr, func(n hclsyntax.Node) hcl.Diagnostics {
		call, ok := n.(*hclsyntax.FunctionCallExpr)
		if !ok || memgraph.KnownFunction(call.Name) {
			return nil
		}
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Call to unknown function",
			Detail:   fmt.Sprintf("There is no function named %q.", call.Name),
			Subject:  call.NameRange.Ptr(),
		}}
	})...)
	return contextual, diags
}

// valueExpr turns an attribute into a memgraph.Expr. Expressions that
// reference no context variable are evaluated once here.
func valueExpr(expr hcl.Expression, attr string) (memgraph.Expr, hcl.Diagnostics) {
	contextual, diags := checkReferences(expr, attr)
	if diags.HasErrors() {
		return memgraph.Expr{}, diags
	}
	if contextual {
		return memgraph.Expression(expr), diags
	}

	v, valDiags := expr.Value(memgraph.EvalContext(shading.Context{}))
	diags = append(diags, valDiags...)
	if diags.HasErrors() {
		return memgraph.Expr{}, diags
	}
	return memgraph.Static(v), diags
}

// paramRef converts a traversal expression such as noise.out.r or
// sw.in[0] into a parameter reference.
func paramRef(expr hcl.Expression) (shading.ParamRef, hcl.Diagnostics) {
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() {
		return shading.ParamRef{}, diags
	}

	segments := make([]string, 0, len(traversal))
	for _, step := range traversal {
		switch s := step.(type) {
		case hcl.TraverseRoot:
			segments = append(segments, s.Name)
		case hcl.TraverseAttr:
			segments = append(segments, s.Name)
		case hcl.TraverseIndex:
			seg, ok := indexSegment(s.Key)
			if !ok {
				return shading.ParamRef{}, invalidReference(expr, "index must be a whole number or a string")
			}
			segments = append(segments, seg)
		default:
			return shading.ParamRef{}, invalidReference(expr, "unsupported traversal step")
		}
	}

	ref, err := shading.ParseParamRef(strings.Join(segments, "."))
	if err != nil {
		return shading.ParamRef{}, invalidReference(expr, err.Error())
	}
	return ref, nil
}

func indexSegment(key cty.Value) (string, bool) {
	if key.IsNull() || !key.IsKnown() {
		return "", false
	}
	switch ty := key.Type(); {
	case ty.Equals(cty.String):
		return key.AsString(), true
	case ty.Equals(cty.Number):
		bf := key.AsBigFloat()
		if !bf.IsInt() {
			return "", false
		}
		i, acc := bf.Int64()
		if acc != big.Exact || i < 0 {
			return "", false
		}
		return fmt.Sprint(i), true
	}
	return "", false
}

func invalidReference(expr hcl.Expression, detail string) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Invalid parameter reference",
		Detail:   detail,
		Subject:  expr.Range().Ptr(),
	}}
}
