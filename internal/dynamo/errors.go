package dynamo

import "errors"

// Domain errors for flow integration.
var (
	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnstable indicates a trajectory left the region of interest.
	ErrUnstable = errors.New("dynamo: trajectory diverged")

	// ErrDimensionMismatch indicates mismatched state and system dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// TrajectoryError wraps an error with the step at which integration stopped.
type TrajectoryError struct {
	Step    int
	State   State
	Wrapped error
}

func (e *TrajectoryError) Error() string {
	return e.Wrapped.Error()
}

func (e *TrajectoryError) Unwrap() error {
	return e.Wrapped
}
