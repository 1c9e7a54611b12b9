package memgraph

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/vk/shadernet/internal/shading"
	"github.com/zclconf/go-cty/cty"
)

// NodeKind is the class of a node in the graph.
type NodeKind int

const (
	// KindShader is a shader node with a parameters tree and an out tree.
	KindShader NodeKind = iota
	// KindSwitch routes one of its "in.N" plugs to "out", selected by an
	// index evaluated in the current context.
	KindSwitch
	// KindContextVariables evaluates its "in" plug with extra context
	// variables.
	KindContextVariables
	// KindDot is a no-op node routing "in" to "out".
	KindDot
	// KindValue holds a literal on its "out" plug.
	KindValue
)

func (k NodeKind) String() string {
	switch k {
	case KindShader:
		return "shader"
	case KindSwitch:
		return "switch"
	case KindContextVariables:
		return "context_variables"
	case KindDot:
		return "dot"
	case KindValue:
		return "value"
	default:
		return "unknown"
	}
}

// Plug names used by the non-shader nodes.
const (
	inPlug  = "in"
	outPlug = "out"
)

// DefaultTypeTag is the NodeInfo.TypeTag of shader nodes added without one.
const DefaultTypeTag = "Shader"

type plug struct {
	path     string
	kind     shading.ParamKind
	typeTag  string
	value    Expr
	input    *shading.ParamRef
	children []string

	// component is the lane index of a compound child, or -1.
	component int
	// passThrough is the parameters-relative path a disabled shader
	// passes through in place of this output.
	passThrough string
}

type node struct {
	id      shading.NodeID
	kind    NodeKind
	info    shading.NodeInfo
	enabled Expr
	plugs   map[string]*plug

	// switch
	index  Expr
	inputs int

	// context variables
	variables map[string]Expr
}

// Graph is an in-memory, editable host graph. It implements shading.Graph;
// queries take a read lock and edits a write lock, so any number of
// flattening builders may read it concurrently.
type Graph struct {
	mu    sync.RWMutex
	nodes map[shading.NodeID]*node
}

var _ shading.Graph = (*Graph)(nil)

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[shading.NodeID]*node)}
}

// Nodes returns the node IDs in sorted order.
func (g *Graph) Nodes() []shading.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]shading.NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NodeKind returns the kind of the node.
func (g *Graph) NodeKind(id shading.NodeID) (NodeKind, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return 0, false
	}
	return n.kind, true
}

func (g *Graph) plug(ref shading.ParamRef) *plug {
	n, ok := g.nodes[ref.Node]
	if !ok {
		return nil
	}
	return n.plugs[ref.Path]
}

func (g *Graph) addNode(id shading.NodeID, kind NodeKind) (*node, error) {
	if id == "" {
		return nil, fmt.Errorf("node id cannot be empty")
	}
	if _, exists := g.nodes[id]; exists {
		return nil, fmt.Errorf("node %q already exists", id)
	}
	n := &node{id: id, kind: kind, plugs: make(map[string]*plug)}
	g.nodes[id] = n
	return n, nil
}

func (n *node) addPlug(parent *plug, name string, kind shading.ParamKind, typeTag string) (*plug, error) {
	path := name
	if parent != nil {
		path = parent.path + "." + name
	}
	if _, exists := n.plugs[path]; exists {
		return nil, fmt.Errorf("plug %q already exists on node %q", path, n.id)
	}
	p := &plug{path: path, kind: kind, typeTag: typeTag, component: -1}
	n.plugs[path] = p
	if parent != nil {
		parent.children = append(parent.children, path)
	}

	if comps := shading.Components(typeTag); comps != nil && kind == shading.KindCompound {
		laneTag := shading.TypeFloat
		if typeTag == shading.TypeV2i || typeTag == shading.TypeV3i {
			laneTag = shading.TypeInt
		}
		for i, c := range comps {
			lane, err := n.addPlug(p, c, shading.KindScalar, laneTag)
			if err != nil {
				return nil, err
			}
			lane.component = i
		}
	}
	return p, nil
}

// ShaderSpec describes a shader node.
type ShaderSpec struct {
	// TypeTag defaults to DefaultTypeTag.
	TypeTag string
	Name    string
	Type    string
	Color   [3]float64
	// Enabled defaults to true.
	Enabled Expr
}

// AddShader adds a shader node with an empty parameters tree.
func (g *Graph) AddShader(id shading.NodeID, spec ShaderSpec) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, err := g.addNode(id, KindShader)
	if err != nil {
		return err
	}
	if spec.TypeTag == "" {
		spec.TypeTag = DefaultTypeTag
	}
	n.info = shading.NodeInfo{
		TypeTag:  spec.TypeTag,
		Name:     spec.Name,
		Type:     spec.Type,
		NodeName: string(id),
		Color:    spec.Color,
	}
	n.enabled = spec.Enabled
	_, err = n.addPlug(nil, shading.ParametersRoot, shading.KindStruct, "")
	return err
}

// ParameterSpec describes a parameter plug.
type ParameterSpec struct {
	// Type is the type tag. Empty means a struct container unless Array is
	// set.
	Type string
	// Value is the literal held by the plug.
	Value Expr
	// Array makes the plug an array container.
	Array bool
	// Optional wraps the plug in an optional plug whose "enabled" child
	// holds Enabled.
	Optional bool
	Enabled  Expr
	// Interpolation is the initial interpolation of a spline plug.
	Interpolation Expr
}

func kindFor(spec ParameterSpec) shading.ParamKind {
	switch {
	case spec.Array:
		return shading.KindArray
	case spec.Type == "":
		return shading.KindStruct
	case shading.Components(spec.Type) != nil:
		return shading.KindCompound
	}
	if _, ok := shading.SplineValueType(spec.Type); ok {
		return shading.KindSpline
	}
	return shading.KindScalar
}

// AddParameter adds a child parameter under parent, which must be a struct
// or array container of a shader node. It returns the reference to the
// value plug, which for optional parameters is the wrapper's "value" child.
func (g *Graph) AddParameter(parent shading.ParamRef, name string, spec ParameterSpec) (shading.ParamRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[parent.Node]
	if !ok {
		return shading.ParamRef{}, fmt.Errorf("node %q not found", parent.Node)
	}
	if n.kind != KindShader {
		return shading.ParamRef{}, fmt.Errorf("node %q is a %s node, not a shader", parent.Node, n.kind)
	}
	pp, ok := n.plugs[parent.Path]
	if !ok {
		return shading.ParamRef{}, fmt.Errorf("plug %q not found", parent)
	}
	if pp.kind != shading.KindStruct && pp.kind != shading.KindArray {
		return shading.ParamRef{}, fmt.Errorf("plug %q is a %s plug and cannot have parameters", parent, pp.kind)
	}

	if spec.Optional {
		wrapper, err := n.addPlug(pp, name, shading.KindOptional, "")
		if err != nil {
			return shading.ParamRef{}, err
		}
		enabled, err := n.addPlug(wrapper, "enabled", shading.KindScalar, shading.TypeBool)
		if err != nil {
			return shading.ParamRef{}, err
		}
		enabled.value = spec.Enabled
		if enabled.value.IsZero() {
			enabled.value = Static(cty.True)
		}
		pp, name = wrapper, "value"
	}

	kind := kindFor(spec)
	p, err := n.addPlug(pp, name, kind, spec.Type)
	if err != nil {
		return shading.ParamRef{}, err
	}
	p.value = spec.Value

	if kind == shading.KindSpline {
		interp, err := n.addPlug(p, "interpolation", shading.KindScalar, shading.TypeString)
		if err != nil {
			return shading.ParamRef{}, err
		}
		interp.value = spec.Interpolation
		if interp.value.IsZero() {
			interp.value = Static(cty.StringVal(string(shading.InterpolationLinear)))
		}
	}

	return shading.Ref(n.id, p.path), nil
}

// AddSplinePoint appends a control point to a spline plug.
func (g *Graph) AddSplinePoint(spline shading.ParamRef, x, y Expr) (shading.SplinePoint, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[spline.Node]
	if !ok {
		return shading.SplinePoint{}, fmt.Errorf("node %q not found", spline.Node)
	}
	sp, ok := n.plugs[spline.Path]
	if !ok || sp.kind != shading.KindSpline {
		return shading.SplinePoint{}, fmt.Errorf("plug %q is not a spline", spline)
	}
	yTag, _ := shading.SplineValueType(sp.typeTag)
	yKind := shading.KindScalar
	if shading.Components(yTag) != nil {
		yKind = shading.KindCompound
	}

	index := len(sp.children) - 1
	pp, err := n.addPlug(sp, "p"+strconv.Itoa(index), shading.KindStruct, "")
	if err != nil {
		return shading.SplinePoint{}, err
	}
	xp, err := n.addPlug(pp, "x", shading.KindScalar, shading.TypeFloat)
	if err != nil {
		return shading.SplinePoint{}, err
	}
	xp.value = x
	yp, err := n.addPlug(pp, "y", yKind, yTag)
	if err != nil {
		return shading.SplinePoint{}, err
	}
	yp.value = y

	return shading.SplinePoint{
		Point: shading.Ref(n.id, pp.path),
		X:     shading.Ref(n.id, xp.path),
		Y:     shading.Ref(n.id, yp.path),
	}, nil
}

// OutputSpec describes an output plug of a shader node.
type OutputSpec struct {
	Type string
	// PassThrough is the parameter path, relative to the parameters root,
	// that a disabled node passes through in place of this output.
	PassThrough string
}

// AddOutput adds an output to a shader node. An output named "out" becomes
// the sole output; any other name is parented under an "out" container.
func (g *Graph) AddOutput(id shading.NodeID, name string, spec OutputSpec) (shading.ParamRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return shading.ParamRef{}, fmt.Errorf("node %q not found", id)
	}
	if n.kind != KindShader {
		return shading.ParamRef{}, fmt.Errorf("node %q is a %s node, not a shader", id, n.kind)
	}

	kind := shading.KindScalar
	if shading.Components(spec.Type) != nil {
		kind = shading.KindCompound
	}

	var p *plug
	var err error
	if name == shading.OutRoot {
		if _, exists := n.plugs[shading.OutRoot]; exists {
			return shading.ParamRef{}, fmt.Errorf("node %q already has outputs", id)
		}
		p, err = n.addPlug(nil, shading.OutRoot, kind, spec.Type)
	} else {
		root, exists := n.plugs[shading.OutRoot]
		if !exists {
			root, err = n.addPlug(nil, shading.OutRoot, shading.KindStruct, "")
			if err != nil {
				return shading.ParamRef{}, err
			}
		} else if root.kind != shading.KindStruct {
			return shading.ParamRef{}, fmt.Errorf("node %q has a sole output and cannot take %q", id, name)
		}
		p, err = n.addPlug(root, name, kind, spec.Type)
	}
	if err != nil {
		return shading.ParamRef{}, err
	}
	p.passThrough = spec.PassThrough
	return shading.Ref(n.id, p.path), nil
}

// AddSwitch adds a switch node with inputs "in.0" to "in.<inputs-1>".
func (g *Graph) AddSwitch(id shading.NodeID, inputs int, index Expr) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, err := g.addNode(id, KindSwitch)
	if err != nil {
		return err
	}
	n.index = index
	n.inputs = inputs
	in, err := n.addPlug(nil, inPlug, shading.KindArray, "")
	if err != nil {
		return err
	}
	for i := 0; i < inputs; i++ {
		if _, err := n.addPlug(in, strconv.Itoa(i), shading.KindScalar, ""); err != nil {
			return err
		}
	}
	_, err = n.addPlug(nil, outPlug, shading.KindScalar, "")
	return err
}

// AddContextVariables adds a node evaluating its input with vars added to
// the context.
func (g *Graph) AddContextVariables(id shading.NodeID, vars map[string]Expr) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, err := g.addNode(id, KindContextVariables)
	if err != nil {
		return err
	}
	n.variables = make(map[string]Expr, len(vars))
	for k, v := range vars {
		n.variables[k] = v
	}
	return n.addRouting()
}

// AddDot adds a no-op routing node.
func (g *Graph) AddDot(id shading.NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, err := g.addNode(id, KindDot)
	if err != nil {
		return err
	}
	return n.addRouting()
}

func (n *node) addRouting() error {
	if _, err := n.addPlug(nil, inPlug, shading.KindScalar, ""); err != nil {
		return err
	}
	_, err := n.addPlug(nil, outPlug, shading.KindScalar, "")
	return err
}

// AddValue adds a node holding a literal on its "out" plug.
func (g *Graph) AddValue(id shading.NodeID, typeTag string, value Expr) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, err := g.addNode(id, KindValue)
	if err != nil {
		return err
	}
	p, err := n.addPlug(nil, outPlug, shading.KindScalar, typeTag)
	if err != nil {
		return err
	}
	p.value = value
	return nil
}

// Connect makes src the input of dst, replacing any existing input. dst
// may not be an output of a shader node.
func (g *Graph) Connect(dst, src shading.ParamRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	dp := g.plug(dst)
	if dp == nil {
		return fmt.Errorf("destination plug %q not found", dst)
	}
	if g.nodes[dst.Node].kind == KindShader && !g.isInputParameter(dst) {
		return fmt.Errorf("destination plug %q is not a shader parameter", dst)
	}
	if g.plug(src) == nil {
		return fmt.Errorf("source plug %q not found", src)
	}
	if dst == src {
		return fmt.Errorf("cannot connect plug %q to itself", dst)
	}
	s := src
	dp.input = &s
	return nil
}

// Disconnect removes the input of dst.
func (g *Graph) Disconnect(dst shading.ParamRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	dp := g.plug(dst)
	if dp == nil {
		return fmt.Errorf("plug %q not found", dst)
	}
	dp.input = nil
	return nil
}

// Input returns the direct input of ref, if any.
func (g *Graph) Input(ref shading.ParamRef) (shading.ParamRef, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p := g.plug(ref)
	if p == nil || p.input == nil {
		return shading.ParamRef{}, false
	}
	return *p.input, true
}

// SetValue replaces the literal held by ref.
func (g *Graph) SetValue(ref shading.ParamRef, value Expr) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.plug(ref)
	if p == nil {
		return fmt.Errorf("plug %q not found", ref)
	}
	switch p.kind {
	case shading.KindStruct, shading.KindArray, shading.KindOptional:
		return fmt.Errorf("plug %q is a %s plug and holds no value", ref, p.kind)
	}
	p.value = value
	return nil
}

// SetEnabled replaces the enabled state of a node.
func (g *Graph) SetEnabled(id shading.NodeID, enabled Expr) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("node %q not found", id)
	}
	n.enabled = enabled
	return nil
}

// SetColor replaces the display color of a shader node.
func (g *Graph) SetColor(id shading.NodeID, color [3]float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok || n.kind != KindShader {
		return fmt.Errorf("shader node %q not found", id)
	}
	n.info.Color = color
	return nil
}

// SetSwitchIndex replaces the index of a switch node.
func (g *Graph) SetSwitchIndex(id shading.NodeID, index Expr) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok || n.kind != KindSwitch {
		return fmt.Errorf("switch node %q not found", id)
	}
	n.index = index
	return nil
}
