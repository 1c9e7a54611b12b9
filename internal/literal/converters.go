package literal

import (
	"fmt"

	"github.com/vk/shadernet/internal/shading"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

func primitive(ty cty.Type) Converter {
	return func(v cty.Value) (cty.Value, error) {
		if v.IsNull() {
			return cty.NilVal, fmt.Errorf("value is missing")
		}
		out, err := convert.Convert(v, ty)
		if err != nil {
			return cty.NilVal, err
		}
		if out.IsNull() {
			return cty.NilVal, fmt.Errorf("value is null")
		}
		return out, nil
	}
}

func integer(v cty.Value) (cty.Value, error) {
	out, err := primitive(cty.Number)(v)
	if err != nil {
		return cty.NilVal, err
	}
	if !out.AsBigFloat().IsInt() {
		return cty.NilVal, fmt.Errorf("%s is not a whole number", out.AsBigFloat().String())
	}
	return out, nil
}

func compoundType(comps []string) cty.Type {
	attrs := make(map[string]cty.Type, len(comps))
	for _, c := range comps {
		attrs[c] = cty.Number
	}
	return cty.Object(attrs)
}

// compound accepts either an object/map keyed by component name or a
// tuple/list with one element per component, and returns an object.
func compound(comps []string, ints bool) Converter {
	lane := primitive(cty.Number)
	if ints {
		lane = integer
	}
	return func(v cty.Value) (cty.Value, error) {
		if v.IsNull() {
			return cty.NilVal, fmt.Errorf("value is missing")
		}
		ty := v.Type()
		raw := make(map[string]cty.Value, len(comps))

		switch {
		case ty.IsObjectType() || ty.IsMapType():
			m := v.AsValueMap()
			if len(m) != len(comps) {
				return cty.NilVal, fmt.Errorf("expected components %v, got %d attributes", comps, len(m))
			}
			for _, c := range comps {
				cv, ok := m[c]
				if !ok {
					return cty.NilVal, fmt.Errorf("missing component %q", c)
				}
				raw[c] = cv
			}
		case ty.IsTupleType() || ty.IsListType():
			if v.LengthInt() != len(comps) {
				return cty.NilVal, fmt.Errorf("expected %d components, got %d", len(comps), v.LengthInt())
			}
			i := 0
			for it := v.ElementIterator(); it.Next(); i++ {
				_, ev := it.Element()
				raw[comps[i]] = ev
			}
		default:
			return cty.NilVal, fmt.Errorf("cannot use %s as a compound value", ty.FriendlyName())
		}

		attrs := make(map[string]cty.Value, len(comps))
		for _, c := range comps {
			cv, err := lane(raw[c])
			if err != nil {
				return cty.NilVal, fmt.Errorf("component %q: %w", c, err)
			}
			attrs[c] = cv
		}
		return cty.ObjectVal(attrs), nil
	}
}

func elements(v cty.Value) ([]cty.Value, error) {
	if v.IsNull() {
		return nil, fmt.Errorf("value is missing")
	}
	ty := v.Type()
	if !ty.IsTupleType() && !ty.IsListType() && !ty.IsSetType() {
		return nil, fmt.Errorf("cannot use %s as a sequence", ty.FriendlyName())
	}
	var out []cty.Value
	for it := v.ElementIterator(); it.Next(); {
		_, ev := it.Element()
		out = append(out, ev)
	}
	return out, nil
}

func list(elem Converter, elemType cty.Type) Converter {
	return func(v cty.Value) (cty.Value, error) {
		raw, err := elements(v)
		if err != nil {
			return cty.NilVal, err
		}
		if len(raw) == 0 {
			return cty.ListValEmpty(elemType), nil
		}
		out := make([]cty.Value, len(raw))
		for i, ev := range raw {
			if out[i], err = elem(ev); err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
		}
		return cty.ListVal(out), nil
	}
}

func matrix(size int) Converter {
	elems := list(primitive(cty.Number), cty.Number)
	return func(v cty.Value) (cty.Value, error) {
		out, err := elems(v)
		if err != nil {
			return cty.NilVal, err
		}
		if out.LengthInt() != size {
			return cty.NilVal, fmt.Errorf("expected %d elements, got %d", size, out.LengthInt())
		}
		return out, nil
	}
}

// spline normalizes {interpolation, points = [{x, y}, ...]}.
func spline(yConv Converter, yType cty.Type) Converter {
	pointType := cty.Object(map[string]cty.Type{"x": cty.Number, "y": yType})
	return func(v cty.Value) (cty.Value, error) {
		if v.IsNull() {
			return cty.NilVal, fmt.Errorf("value is missing")
		}
		ty := v.Type()
		if !ty.IsObjectType() && !ty.IsMapType() {
			return cty.NilVal, fmt.Errorf("cannot use %s as a spline", ty.FriendlyName())
		}
		m := v.AsValueMap()

		interpRaw, ok := m["interpolation"]
		if !ok {
			return cty.NilVal, fmt.Errorf("spline is missing interpolation")
		}
		interpVal, err := primitive(cty.String)(interpRaw)
		if err != nil {
			return cty.NilVal, fmt.Errorf("interpolation: %w", err)
		}
		if _, err := shading.ParseInterpolation(interpVal.AsString()); err != nil {
			return cty.NilVal, err
		}

		pointsRaw, ok := m["points"]
		if !ok {
			return cty.NilVal, fmt.Errorf("spline is missing points")
		}
		raw, err := elements(pointsRaw)
		if err != nil {
			return cty.NilVal, fmt.Errorf("points: %w", err)
		}

		points := make([]cty.Value, len(raw))
		for i, p := range raw {
			if p.IsNull() {
				return cty.NilVal, fmt.Errorf("point %d is missing", i)
			}
			if !p.Type().IsObjectType() && !p.Type().IsMapType() {
				return cty.NilVal, fmt.Errorf("point %d: cannot use %s as a point", i, p.Type().FriendlyName())
			}
			pm := p.AsValueMap()
			x, err := primitive(cty.Number)(pm["x"])
			if err != nil {
				return cty.NilVal, fmt.Errorf("point %d x: %w", i, err)
			}
			y, err := yConv(pm["y"])
			if err != nil {
				return cty.NilVal, fmt.Errorf("point %d y: %w", i, err)
			}
			points[i] = cty.ObjectVal(map[string]cty.Value{"x": x, "y": y})
		}

		pointsVal := cty.ListValEmpty(pointType)
		if len(points) > 0 {
			pointsVal = cty.ListVal(points)
		}
		return cty.ObjectVal(map[string]cty.Value{
			"interpolation": interpVal,
			"points":        pointsVal,
		}), nil
	}
}
