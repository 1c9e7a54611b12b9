package shading

// ParamKind classifies a plug so the flattening walk can pick the rule used
// to name and visit its children.
type ParamKind int

const (
	// KindScalar is a leaf plug with no walkable children.
	KindScalar ParamKind = iota
	// KindStruct has named fields, flattened as "parent.field".
	KindStruct
	// KindArray has ordered elements, flattened as "parent[i]".
	KindArray
	// KindCompound is a numeric compound (color, vector) whose lanes are
	// flattened as "parent.r", "parent.x" and so on.
	KindCompound
	// KindSpline is a spline parameter; see Graph.SplinePoints.
	KindSpline
	// KindOptional wraps a value that is only emitted when enabled.
	KindOptional
)

func (k ParamKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindStruct:
		return "struct"
	case KindArray:
		return "array"
	case KindCompound:
		return "compound"
	case KindSpline:
		return "spline"
	case KindOptional:
		return "optional"
	default:
		return "unknown"
	}
}
