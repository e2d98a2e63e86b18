package linsys

import (
	"errors"
	"fmt"
)

var (
	ErrNonFinite             = errors.New("linsys: matrix has non-finite coefficient")
	ErrEigenFailed           = errors.New("linsys: eigen decomposition did not converge")
	ErrDegenerateEigenvector = errors.New("linsys: eigenvector has zero real part")
)

// DegenerateEigenvectorError reports which eigenvector could not be
// normalized for the overlay.
type DegenerateEigenvectorError struct {
	Index  int
	Vector [2]complex128
}

func (e *DegenerateEigenvectorError) Error() string {
	return fmt.Sprintf("linsys: eigenvector %d %v has zero real part", e.Index+1, e.Vector)
}

func (e *DegenerateEigenvectorError) Unwrap() error {
	return ErrDegenerateEigenvector
}
