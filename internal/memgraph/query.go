package memgraph

import (
	"math"
	"strconv"
	"strings"

	"github.com/vk/shadernet/internal/shading"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// maxValueDepth bounds the recursion of value lookups through connections
// and pass-throughs, which may loop in a malformed graph.
const maxValueDepth = 256

func (g *Graph) IsOutputParameter(ref shading.ParamRef) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.isOutputParameter(ref)
}

func (g *Graph) isOutputParameter(ref shading.ParamRef) bool {
	n, ok := g.nodes[ref.Node]
	if !ok || n.kind != KindShader {
		return false
	}
	if ref.Path != shading.OutRoot && !strings.HasPrefix(ref.Path, shading.OutRoot+".") {
		return false
	}
	_, ok = n.plugs[ref.Path]
	return ok
}

func (g *Graph) IsInputParameter(ref shading.ParamRef) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.isInputParameter(ref)
}

func (g *Graph) isInputParameter(ref shading.ParamRef) bool {
	n, ok := g.nodes[ref.Node]
	if !ok || n.kind != KindShader {
		return false
	}
	if !strings.HasPrefix(ref.Path, shading.ParametersRoot+".") {
		return false
	}
	_, ok = n.plugs[ref.Path]
	return ok
}

func (g *Graph) NodeEnabled(id shading.NodeID, c shading.Context) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	return g.nodeEnabled(n, c)
}

// nodeEnabled treats an enabled expression that cannot be evaluated in c as
// enabled.
func (g *Graph) nodeEnabled(n *node, c shading.Context) bool {
	if n.enabled.IsZero() {
		return true
	}
	v, err := n.enabled.Eval(c)
	if err != nil {
		return true
	}
	b, ok := asBool(v)
	return !ok || b
}

func (g *Graph) CorrespondingInput(output shading.ParamRef) (shading.ParamRef, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.correspondingInput(output)
}

func (g *Graph) correspondingInput(output shading.ParamRef) (shading.ParamRef, bool) {
	p := g.plug(output)
	if p == nil || !g.isOutputParameter(output) {
		return shading.ParamRef{}, false
	}
	if p.passThrough != "" {
		in := shading.Ref(output.Node, shading.ParametersRoot+"."+p.passThrough)
		if g.plug(in) == nil {
			return shading.ParamRef{}, false
		}
		return in, true
	}
	if p.component >= 0 {
		parent, _ := output.Parent()
		if in, ok := g.correspondingInput(parent); ok {
			lane := in.Child(output.Name())
			if g.plug(lane) != nil {
				return lane, true
			}
		}
	}
	return shading.ParamRef{}, false
}

func (g *Graph) FollowConnection(ref shading.ParamRef, c shading.Context) (shading.ParamRef, shading.Context) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.follow(ref, c)
}

// follow walks inputs from ref until it reaches a plug with no input,
// routing through dots, switches and context-variable nodes. A loop ends
// the walk at the first repeated plug.
func (g *Graph) follow(ref shading.ParamRef, c shading.Context) (shading.ParamRef, shading.Context) {
	cur, ctx := ref, c
	seen := make(map[shading.ParamRef]struct{})
	for {
		p := g.plug(cur)
		if p == nil || p.input == nil {
			return cur, ctx
		}
		if _, loop := seen[cur]; loop {
			return cur, ctx
		}
		seen[cur] = struct{}{}

		src := *p.input
		n, ok := g.nodes[src.Node]
		if !ok {
			return cur, ctx
		}

		switch n.kind {
		case KindDot:
			cur = shading.Ref(n.id, inPlug)
		case KindContextVariables:
			if g.nodeEnabled(n, ctx) {
				ctx = g.applyVariables(n, ctx)
			}
			cur = shading.Ref(n.id, inPlug)
		case KindSwitch:
			if n.inputs == 0 {
				return src, ctx
			}
			cur = shading.Ref(n.id, inPlug+"."+strconv.Itoa(g.switchIndex(n, ctx)))
		default:
			cur = src
		}
	}
}

func (g *Graph) applyVariables(n *node, c shading.Context) shading.Context {
	// Every variable is evaluated in the incoming context.
	out := c
	for name, expr := range n.variables {
		v, err := expr.Eval(c)
		if err != nil {
			continue
		}
		out = out.With(name, v)
	}
	return out
}

// switchIndex evaluates the switch index in c and wraps it into range. A
// disabled switch, or one whose index cannot be evaluated, selects input 0.
func (g *Graph) switchIndex(n *node, c shading.Context) int {
	if !g.nodeEnabled(n, c) || n.index.IsZero() {
		return 0
	}
	v, err := n.index.Eval(c)
	if err != nil {
		return 0
	}
	nv, err := convert.Convert(v, cty.Number)
	if err != nil || nv.IsNull() {
		return 0
	}
	var f float64
	if err := gocty.FromCtyValue(nv, &f); err != nil {
		return 0
	}
	i := int(math.Floor(f))
	return ((i % n.inputs) + n.inputs) % n.inputs
}

func (g *Graph) LiteralValue(ref shading.ParamRef, c shading.Context) (shading.Value, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	p := g.plug(ref)
	if p == nil {
		return shading.Value{}, false
	}
	v, ok := g.literal(ref, c, 0)
	if !ok {
		return shading.Value{}, false
	}
	return shading.Value{Type: p.typeTag, Data: v}, true
}

func (g *Graph) literal(ref shading.ParamRef, c shading.Context, depth int) (cty.Value, bool) {
	if depth > maxValueDepth {
		return cty.NilVal, false
	}
	p := g.plug(ref)
	if p == nil || p.typeTag == shading.TypeClosure {
		return cty.NilVal, false
	}
	switch p.kind {
	case shading.KindStruct, shading.KindArray, shading.KindOptional:
		return cty.NilVal, false
	case shading.KindSpline:
		return g.splineValue(ref, p, c, depth)
	}

	if p.input != nil {
		if src, sc := g.follow(ref, c); src != ref {
			if v, ok := g.sourceValue(src, sc, depth+1); ok {
				return v, true
			}
		}
	}
	return g.ownValue(ref, p, c, depth)
}

// sourceValue returns the value an upstream plug provides. A disabled
// shader provides the value of its pass-through input.
func (g *Graph) sourceValue(src shading.ParamRef, c shading.Context, depth int) (cty.Value, bool) {
	if g.isOutputParameter(src) && !g.nodeEnabled(g.nodes[src.Node], c) {
		in, ok := g.correspondingInput(src)
		if !ok {
			return cty.NilVal, false
		}
		return g.literal(in, c, depth+1)
	}
	return g.literal(src, c, depth+1)
}

func (g *Graph) ownValue(ref shading.ParamRef, p *plug, c shading.Context, depth int) (cty.Value, bool) {
	if !p.value.IsZero() {
		v, err := p.value.Eval(c)
		if err != nil || v.IsNull() {
			return cty.NilVal, false
		}
		return v, true
	}
	if p.component >= 0 {
		parent, _ := ref.Parent()
		pv, ok := g.literal(parent, c, depth+1)
		if !ok {
			return cty.NilVal, false
		}
		return lane(pv, ref.Name(), p.component)
	}
	return cty.NilVal, false
}

// lane extracts one component from a compound value held either as an
// object keyed by component name or as a sequence.
func lane(v cty.Value, name string, index int) (cty.Value, bool) {
	if v.IsNull() || !v.IsWhollyKnown() {
		return cty.NilVal, false
	}
	ty := v.Type()
	switch {
	case ty.IsObjectType():
		if ty.HasAttribute(name) {
			return v.GetAttr(name), true
		}
	case ty.IsMapType():
		key := cty.StringVal(name)
		if v.HasIndex(key).True() {
			return v.Index(key), true
		}
	case ty.IsTupleType() || ty.IsListType():
		if index < v.LengthInt() {
			return v.Index(cty.NumberIntVal(int64(index))), true
		}
	}
	return cty.NilVal, false
}

func (g *Graph) splineValue(ref shading.ParamRef, p *plug, c shading.Context, depth int) (cty.Value, bool) {
	interp, ok := g.literal(ref.Child("interpolation"), c, depth+1)
	if !ok {
		return cty.NilVal, false
	}
	points := make([]cty.Value, 0, len(p.children))
	for _, sp := range g.splinePoints(ref, p) {
		x, ok := g.literal(sp.X, c, depth+1)
		if !ok {
			return cty.NilVal, false
		}
		y, ok := g.literal(sp.Y, c, depth+1)
		if !ok {
			return cty.NilVal, false
		}
		points = append(points, cty.ObjectVal(map[string]cty.Value{"x": x, "y": y}))
	}
	pointsVal := cty.EmptyTupleVal
	if len(points) > 0 {
		pointsVal = cty.TupleVal(points)
	}
	return cty.ObjectVal(map[string]cty.Value{
		"interpolation": interp,
		"points":        pointsVal,
	}), true
}

func (g *Graph) NodeInfo(id shading.NodeID, c shading.Context) shading.NodeInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return shading.NodeInfo{NodeName: string(id)}
	}
	if n.kind != KindShader {
		return shading.NodeInfo{TypeTag: n.kind.String(), NodeName: string(id)}
	}
	return n.info
}

func (g *Graph) Parameters(id shading.NodeID) shading.ParamRef {
	return shading.Ref(id, shading.ParametersRoot)
}

func (g *Graph) Out(id shading.NodeID) shading.ParamRef {
	return shading.Ref(id, shading.OutRoot)
}

func (g *Graph) Kind(ref shading.ParamRef) shading.ParamKind {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if p := g.plug(ref); p != nil {
		return p.kind
	}
	return shading.KindScalar
}

func (g *Graph) Children(ref shading.ParamRef) []shading.ParamRef {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p := g.plug(ref)
	if p == nil {
		return nil
	}
	out := make([]shading.ParamRef, len(p.children))
	for i, path := range p.children {
		out[i] = shading.Ref(ref.Node, path)
	}
	return out
}

func (g *Graph) OptionalValue(ref shading.ParamRef, c shading.Context) (shading.ParamRef, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p := g.plug(ref)
	if p == nil || p.kind != shading.KindOptional {
		return shading.ParamRef{}, false
	}
	v, ok := g.literal(ref.Child("enabled"), c, 0)
	if !ok {
		return shading.ParamRef{}, false
	}
	if enabled, ok := asBool(v); !ok || !enabled {
		return shading.ParamRef{}, false
	}
	return ref.Child("value"), true
}

func (g *Graph) SplinePoints(ref shading.ParamRef) []shading.SplinePoint {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p := g.plug(ref)
	if p == nil || p.kind != shading.KindSpline {
		return nil
	}
	return g.splinePoints(ref, p)
}

func (g *Graph) splinePoints(ref shading.ParamRef, p *plug) []shading.SplinePoint {
	var out []shading.SplinePoint
	for _, path := range p.children {
		pt := shading.Ref(ref.Node, path)
		if pt.Name() == "interpolation" {
			continue
		}
		out = append(out, shading.SplinePoint{Point: pt, X: pt.Child("x"), Y: pt.Child("y")})
	}
	return out
}

func (g *Graph) SplineInterpolation(ref shading.ParamRef) shading.ParamRef {
	return ref.Child("interpolation")
}

func asBool(v cty.Value) (bool, bool) {
	if v.IsNull() || !v.IsWhollyKnown() {
		return false, false
	}
	bv, err := convert.Convert(v, cty.Bool)
	if err != nil || bv.IsNull() {
		return false, false
	}
	var b bool
	if err := gocty.FromCtyValue(bv, &b); err != nil {
		return false, false
	}
	return b, true
}
