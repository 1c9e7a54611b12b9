package shading

import "fmt"

// Interpolation is the interpolation mode of a spline parameter.
type Interpolation string

const (
	InterpolationLinear        Interpolation = "linear"
	InterpolationCatmullRom    Interpolation = "catmullRom"
	InterpolationBSpline       Interpolation = "bSpline"
	InterpolationMonotoneCubic Interpolation = "monotoneCubic"
	InterpolationConstant      Interpolation = "constant"
)

// ParseInterpolation validates an interpolation name.
func ParseInterpolation(s string) (Interpolation, error) {
	switch i := Interpolation(s); i {
	case InterpolationLinear, InterpolationCatmullRom, InterpolationBSpline, InterpolationMonotoneCubic, InterpolationConstant:
		return i, nil
	default:
		return "", fmt.Errorf("unknown spline interpolation %q", s)
	}
}

// EndpointDuplicates returns how many extra copies of the first and last
// control points the flattened representation carries for this mode.
func (i Interpolation) EndpointDuplicates() int {
	switch i {
	case InterpolationCatmullRom:
		return 1
	case InterpolationBSpline:
		return 2
	default:
		return 0
	}
}
