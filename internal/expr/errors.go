package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrParse indicates malformed expression text.
	ErrParse = errors.New("expr: parse error")

	// ErrUndefinedName indicates a reference to a name outside the grammar.
	ErrUndefinedName = errors.New("expr: undefined name")

	// ErrDomain indicates a math domain error during evaluation.
	ErrDomain = errors.New("expr: math domain error")
)

// ParseError reports a syntax error at a byte offset of the input.
type ParseError struct {
	Text string
	Pos  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expr: syntax error at column %d: %s", e.Pos+1, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// EvaluationError reports a failure evaluating a syntactically valid
// expression.
type EvaluationError struct {
	Name    string
	X       float64
	Msg     string
	Wrapped error
}

func (e *EvaluationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("expr: %s: %s", e.Name, e.Msg)
	}
	return fmt.Sprintf("expr: %s at x=%g", e.Msg, e.X)
}

func (e *EvaluationError) Unwrap() error {
	return e.Wrapped
}

func undefined(name string) error {
	return &EvaluationError{Name: name, Msg: "name is not defined", Wrapped: ErrUndefinedName}
}
