package shading

// ProxyType is the shader name and type carried by proxy nodes, which stand
// in for another node of a network while its connections are being edited.
const ProxyType = "__SHADER_TWEAK_PROXY"

// NodeInfo holds the metadata of a shader node that feeds its content hash
// and the blind data of the shader it produces.
type NodeInfo struct {
	// TypeTag identifies the host node class, e.g. "OSLShader".
	TypeTag string
	// Name is the shader name, e.g. "Pattern/Noise".
	Name string
	// Type is the shader type, e.g. "osl:surface".
	Type string
	// NodeName is the node's own name in the graph, used as label and as
	// the preferred handle.
	NodeName string
	// Color is the node's display color.
	Color [3]float64
}

// IsProxy reports whether the node is a proxy node.
func (n NodeInfo) IsProxy() bool {
	return n.Type == ProxyType
}

// SplinePoint addresses the plugs of one spline control point.
type SplinePoint struct {
	// Point is the plug holding the whole (x, y) pair.
	Point ParamRef
	// X is the position plug.
	X ParamRef
	// Y is the value plug. It may be compound (colors).
	Y ParamRef
}

// Graph is the read-only view of a node graph that the flattening engine
// resolves shading networks against.
//
// # Responsibilities
//
// A Graph answers structural questions (is this plug an input or output of
// a shader node, what are its children) and value questions (is the node
// enabled, what literal does this plug hold) in a given Context. The engine
// never writes to the graph.
//
// # Indirection
//
// FollowConnection is the single place where switches, no-op nodes and
// context-overriding nodes are traversed. The engine only ever sees the
// resulting shader parameter and the Context it must be evaluated in.
//
// # Thread-Safety
//
// Implementations MUST be safe for concurrent readers: several builders may
// flatten different outputs of the same graph in parallel.
type Graph interface {
	// IsOutputParameter reports whether ref is the output plug of a shader
	// node, or a descendant of it.
	IsOutputParameter(ref ParamRef) bool

	// IsInputParameter reports whether ref is a strict descendant of a
	// shader node's parameters plug.
	IsInputParameter(ref ParamRef) bool

	// NodeEnabled reports whether the node is enabled in c. Disabled shader
	// nodes pass their corresponding input through.
	NodeEnabled(node NodeID, c Context) bool

	// CorrespondingInput returns the input parameter a disabled node passes
	// through in place of the given output. The boolean is false if the
	// node declares none, in which case the output has no source.
	CorrespondingInput(output ParamRef) (ParamRef, bool)

	// LiteralValue returns the literal held by ref in c. The boolean is
	// false when the plug carries no value (containers, closures).
	LiteralValue(ref ParamRef, c Context) (Value, bool)

	// FollowConnection returns the effective upstream plug of an input
	// parameter in c, traversing any switches, no-op nodes and context
	// overrides, together with the context that upstream plug must be
	// evaluated in. If ref has no input, ref and c are returned unchanged.
	FollowConnection(ref ParamRef, c Context) (ParamRef, Context)

	// NodeInfo returns the metadata of a shader node in c.
	NodeInfo(node NodeID, c Context) NodeInfo

	// Parameters returns the root of a shader node's parameter tree.
	Parameters(node NodeID) ParamRef

	// Out returns the root of a shader node's output tree. A struct-kind
	// root is a container of named outputs; any other kind is the sole
	// output.
	Out(node NodeID) ParamRef

	// Kind classifies ref for the parameter walk.
	Kind(ref ParamRef) ParamKind

	// Children returns the child plugs of ref in declaration order.
	Children(ref ParamRef) []ParamRef

	// OptionalValue returns the wrapped value plug of an optional plug if
	// the wrapper is enabled in c.
	OptionalValue(ref ParamRef, c Context) (ParamRef, bool)

	// SplinePoints returns the control point plugs of a spline plug in
	// declaration order.
	SplinePoints(ref ParamRef) []SplinePoint

	// SplineInterpolation returns the interpolation plug of a spline plug.
	// Its literal value is a string naming an Interpolation.
	SplineInterpolation(ref ParamRef) ParamRef
}
