package engine

import "fmt"

// RecomputeError wraps any failure of an exposed operation. The engine
// keeps its previous result when one is returned.
type RecomputeError struct {
	Op  string
	Err error
}

func (e *RecomputeError) Error() string {
	return fmt.Sprintf("engine: %s: %v", e.Op, e.Err)
}

func (e *RecomputeError) Unwrap() error {
	return e.Err
}
