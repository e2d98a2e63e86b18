package solve

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSolverTimeout indicates the solve exceeded its time budget.
	ErrSolverTimeout = errors.New("solve: solver timed out")

	// ErrSolverFailure indicates the solve produced no usable result.
	ErrSolverFailure = errors.New("solve: no usable result")
)

// TimeoutError reports the budget a solve exceeded.
type TimeoutError struct {
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("solve: solver timed out after %v", e.Budget)
}

func (e *TimeoutError) Unwrap() error { return ErrSolverTimeout }

// FailureError carries the reason a solve produced nothing usable.
type FailureError struct {
	Reason string
}

func (e *FailureError) Error() string {
	return "solve: " + e.Reason
}

func (e *FailureError) Unwrap() error { return ErrSolverFailure }
