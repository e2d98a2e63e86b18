package bounds

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCoefficient = errors.New("bounds: unknown coefficient")
	ErrInvalidInput       = errors.New("bounds: invalid input")
	ErrInvalidBounds      = errors.New("bounds: invalid bounds")
)

// InvalidInputError reports a field whose text is not a number.
type InvalidInputError struct {
	Name  string
	Field string
	Text  string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("bounds: %s %s: %q is not a number", e.Name, e.Field, e.Text)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// InvalidBoundsError reports a numeric triple that breaks min <= max or
// step > 0.
type InvalidBoundsError struct {
	Name   string
	Bound  Bound
	Reason string
}

func (e *InvalidBoundsError) Error() string {
	return fmt.Sprintf("bounds: %s [%g, %g] step %g: %s", e.Name, e.Bound.Min, e.Bound.Max, e.Bound.Step, e.Reason)
}

func (e *InvalidBoundsError) Unwrap() error { return ErrInvalidBounds }
