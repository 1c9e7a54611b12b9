package shading

import "github.com/zclconf/go-cty/cty"

// Type tags understood by the default literal registry.
const (
	TypeFloat          = "float"
	TypeInt            = "int"
	TypeBool           = "bool"
	TypeString         = "string"
	TypeColor3f        = "color3f"
	TypeColor4f        = "color4f"
	TypeV2f            = "v2f"
	TypeV3f            = "v3f"
	TypeV2i            = "v2i"
	TypeV3i            = "v3i"
	TypeM44f           = "m44f"
	TypeFloatVector    = "floatVector"
	TypeIntVector      = "intVector"
	TypeStringVector   = "stringVector"
	TypeColor3fVector  = "color3fVector"
	TypeV3fVector      = "v3fVector"
	TypeSplineff       = "splineff"
	TypeSplinefColor3f = "splinefColor3f"
	TypeSplinefColor4f = "splinefColor4f"
	TypeClosure        = "closure"
)

// Value is a literal tagged with its type. The tag carries the parameter
// type even when Data alone would be ambiguous (a float and an int are both
// cty.Number).
type Value struct {
	Type string
	Data cty.Value
}

// Equal reports whether both values have the same tag and raw-equal data.
func (v Value) Equal(other Value) bool {
	if v.Type != other.Type {
		return false
	}
	if v.Data.IsNull() || other.Data.IsNull() {
		return v.Data.IsNull() && other.Data.IsNull()
	}
	return v.Data.RawEquals(other.Data)
}

// Components returns the lane names of a compound numeric type tag, or nil
// if the tag is not compound.
func Components(typeTag string) []string {
	switch typeTag {
	case TypeColor3f:
		return []string{"r", "g", "b"}
	case TypeColor4f:
		return []string{"r", "g", "b", "a"}
	case TypeV2f, TypeV2i:
		return []string{"x", "y"}
	case TypeV3f, TypeV3i:
		return []string{"x", "y", "z"}
	default:
		return nil
	}
}

// SplineValueType returns the type tag of a spline's point values.
func SplineValueType(typeTag string) (string, bool) {
	switch typeTag {
	case TypeSplineff:
		return TypeFloat, true
	case TypeSplinefColor3f:
		return TypeColor3f, true
	case TypeSplinefColor4f:
		return TypeColor4f, true
	default:
		return "", false
	}
}
