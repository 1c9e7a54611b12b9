package flatten

import (
	"errors"
	"fmt"

	"github.com/vk/shadernet/internal/shading"
)

// Sentinel errors. Every error returned by a Builder wraps one of these;
// match them with errors.Is. None of them leaves a partial network behind.
var (
	ErrDependencyCycle          = errors.New("dependency cycle")
	ErrUnsupportedInterpolation = errors.New("unsupported interpolation")
	ErrInvalidConnectionTarget  = errors.New("invalid connection target")
)

// CycleError reports a shader that was reached again, in the same context,
// while its own hash was being computed.
type CycleError struct {
	Node shading.NodeID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("shader %q is involved in a dependency cycle", e.Node)
}

func (e *CycleError) Unwrap() error { return ErrDependencyCycle }

// InterpolationError reports a spline with shader inputs whose
// interpolation cannot be expressed as a flat point list.
type InterpolationError struct {
	Parameter     shading.ParamRef
	Interpolation shading.Interpolation
}

func (e *InterpolationError) Error() string {
	return fmt.Sprintf("cannot support %s interpolation for splines with inputs, for plug %s", e.Interpolation, e.Parameter)
}

func (e *InterpolationError) Unwrap() error { return ErrUnsupportedInterpolation }

// ConnectionTargetError reports a shader connection into a plug that cannot
// take one, or a requested output that is not a shader parameter.
type ConnectionTargetError struct {
	Parameter shading.ParamRef
	// Reason replaces the default message when set.
	Reason string
}

func (e *ConnectionTargetError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Parameter, e.Reason)
	}
	return fmt.Sprintf("shader connections to %s are not supported", e.Parameter)
}

func (e *ConnectionTargetError) Unwrap() error { return ErrInvalidConnectionTarget }
