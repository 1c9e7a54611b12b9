package flatten

import (
	"context"
	"fmt"
	"sort"

	"github.com/vk/shadernet/internal/contenthash"
	"github.com/vk/shadernet/internal/network"
	"github.com/vk/shadernet/internal/shading"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// checkNoShaderInput fails if a shader output feeds ref. Spline
// interpolation, point and position plugs cannot be driven by shaders.
func (b *Builder) checkNoShaderInput(ref shading.ParamRef, c shading.Context) error {
	if _, _, ok := b.connectionSource(ref, c); ok {
		return &ConnectionTargetError{Parameter: ref}
	}
	return nil
}

// hashSpline folds the shader inputs of a spline's point values into h,
// together with the index (and lane, for compound values) they feed. If
// there is at least one input, every point position is hashed too, since
// positions decide where the inputs land after sorting.
func (b *Builder) hashSpline(ctx context.Context, ref shading.ParamRef, c shading.Context, h *contenthash.Hasher) error {
	if err := b.checkNoShaderInput(b.graph.SplineInterpolation(ref), c); err != nil {
		return err
	}

	points := b.graph.SplinePoints(ref)
	hasInput := false
	for i, p := range points {
		if err := b.checkNoShaderInput(p.Point, c); err != nil {
			return err
		}
		if err := b.checkNoShaderInput(p.X, c); err != nil {
			return err
		}

		if src, sc, ok := b.connectionSource(p.Y, c); ok {
			ph, err := b.parameterHash(ctx, src, sc)
			if err != nil {
				return err
			}
			h.AppendHash(ph).AppendInt(int64(i))
			hasInput = true
			continue
		}
		if b.graph.Kind(p.Y) != shading.KindCompound {
			continue
		}
		for _, lane := range b.graph.Children(p.Y) {
			src, sc, ok := b.connectionSource(lane, c)
			if !ok {
				continue
			}
			ph, err := b.parameterHash(ctx, src, sc)
			if err != nil {
				return err
			}
			h.AppendHash(ph).AppendInt(int64(i)).AppendString(lane.Name())
			hasInput = true
		}
	}

	if hasInput {
		for _, p := range points {
			h.AppendFloat(b.position(ctx, p.X, c))
		}
	}
	return nil
}

type splineInput struct {
	index  int
	suffix string
	source network.Parameter
}

// addSplineConnections records a connection for every shader input into a
// spline point value. Inputs are renamed to the point's index after
// sorting by position, and endpoint inputs are repeated for every
// duplicate endpoint the interpolation adds.
func (b *Builder) addSplineConnections(ctx context.Context, name string, ref shading.ParamRef, c shading.Context, add func(source network.Parameter, dest string)) error {
	points := b.graph.SplinePoints(ref)

	var inputs []splineInput
	for i, p := range points {
		if src, sc, ok := b.connectionSource(p.Y, c); ok {
			param, err := b.outputParameter(ctx, src, sc)
			if err != nil {
				return err
			}
			inputs = append(inputs, splineInput{index: i, source: param})
			continue
		}
		if b.graph.Kind(p.Y) != shading.KindCompound {
			continue
		}
		for _, lane := range b.graph.Children(p.Y) {
			src, sc, ok := b.connectionSource(lane, c)
			if !ok {
				continue
			}
			param, err := b.outputParameter(ctx, src, sc)
			if err != nil {
				return err
			}
			inputs = append(inputs, splineInput{index: i, suffix: "." + lane.Name(), source: param})
		}
	}

	if len(inputs) == 0 {
		return nil
	}

	n := len(points)
	type ordered struct {
		x     float64
		index int
	}
	ordering := make([]ordered, n)
	for i, p := range points {
		ordering[i] = ordered{x: b.position(ctx, p.X, c), index: i}
	}
	sort.Slice(ordering, func(i, j int) bool {
		if ordering[i].x != ordering[j].x {
			return ordering[i].x < ordering[j].x
		}
		return ordering[i].index < ordering[j].index
	})
	sorted := make([]int, n)
	for i, o := range ordering {
		sorted[o.index] = i
	}

	interp := b.interpolation(ctx, ref, c)
	if interp == shading.InterpolationMonotoneCubic {
		return &InterpolationError{Parameter: ref, Interpolation: interp}
	}
	dupes := interp.EndpointDuplicates()

	for _, in := range inputs {
		index := sorted[in.index]
		var lo, hi int
		switch index {
		case 0:
			lo, hi = 0, dupes
		case n - 1:
			lo, hi = dupes+n-1, dupes+n-1+dupes
		default:
			lo, hi = index+dupes, index+dupes
		}
		for i := lo; i <= hi; i++ {
			add(in.source, fmt.Sprintf("%s[%d].y%s", name, i, in.suffix))
		}
	}
	return nil
}

// position reads a point position as a float. A missing or non-numeric
// position reads as zero.
func (b *Builder) position(ctx context.Context, x shading.ParamRef, c shading.Context) float64 {
	v, ok := b.literal(ctx, x, c)
	if !ok {
		return 0
	}
	nv, err := convert.Convert(v.Data, cty.Number)
	if err != nil || nv.IsNull() {
		return 0
	}
	var f float64
	if err := gocty.FromCtyValue(nv, &f); err != nil {
		return 0
	}
	return f
}

// interpolation reads the spline's interpolation mode, defaulting to
// linear when it is missing or unrecognized.
func (b *Builder) interpolation(ctx context.Context, ref shading.ParamRef, c shading.Context) shading.Interpolation {
	v, ok := b.literal(ctx, b.graph.SplineInterpolation(ref), c)
	if !ok || !v.Data.Type().Equals(cty.String) {
		return shading.InterpolationLinear
	}
	interp, err := shading.ParseInterpolation(v.Data.AsString())
	if err != nil {
		return shading.InterpolationLinear
	}
	return interp
}
