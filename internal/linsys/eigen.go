package linsys

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// EigenDecomposition holds the eigenvalues of A and the matching right
// eigenvectors. Vectors[i] pairs with Values[i] and has unit norm.
type EigenDecomposition struct {
	Values  [2]complex128
	Vectors [2][2]complex128
}

// Decompose computes the eigenvalues and right eigenvectors of m.
// Defective matrices get whatever the factorization returns; their two
// eigenvectors are then parallel.
func Decompose(m Matrix2x2) (EigenDecomposition, error) {
	if !m.IsFinite() {
		return EigenDecomposition{}, fmt.Errorf("%w: %v", ErrNonFinite, m)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(m.Dense(), mat.EigenRight); !ok {
		return EigenDecomposition{}, fmt.Errorf("%w: %v", ErrEigenFailed, m)
	}

	var d EigenDecomposition
	values := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)
	for i := 0; i < 2; i++ {
		d.Values[i] = values[i]
		d.Vectors[i] = [2]complex128{vecs.At(0, i), vecs.At(1, i)}
	}
	return d, nil
}

// Segment is a straight line from (X0, Y0) to (X1, Y1).
type Segment struct {
	Index          int
	X0, Y0, X1, Y1 float64
}

// EigenOverlay takes the real part of each eigenvector, normalizes it and
// returns the segment from -scale·v to +scale·v.
func EigenOverlay(d EigenDecomposition, scale float64) ([]Segment, error) {
	segs := make([]Segment, 0, 2)
	for i, v := range d.Vectors {
		x, y, err := realUnit(i, v)
		if err != nil {
			return nil, err
		}
		segs = append(segs, Segment{
			Index: i,
			X0:    -scale * x, Y0: -scale * y,
			X1: scale * x, Y1: scale * y,
		})
	}
	return segs, nil
}

func realUnit(i int, v [2]complex128) (float64, float64, error) {
	x, y := real(v[0]), real(v[1])
	n := math.Hypot(x, y)
	if n == 0 || math.IsNaN(n) {
		return 0, 0, &DegenerateEigenvectorError{Index: i, Vector: v}
	}
	return x / n, y / n, nil
}

// EigenScatter returns the eigenvalues as points on the complex plane.
func EigenScatter(d EigenDecomposition) (re, im []float64) {
	re = make([]float64, len(d.Values))
	im = make([]float64, len(d.Values))
	for i, v := range d.Values {
		re[i], im[i] = real(v), imag(v)
	}
	return re, im
}

// Defective reports whether the real parts of the two eigenvectors are
// parallel, which is what the factorization yields for a defective A.
func (d EigenDecomposition) Defective() bool {
	x0, y0, err0 := realUnit(0, d.Vectors[0])
	x1, y1, err1 := realUnit(1, d.Vectors[1])
	if err0 != nil || err1 != nil {
		return false
	}
	if d.Values[0] != d.Values[1] {
		return false
	}
	return math.Abs(x0*y1-y0*x1) < 1e-9
}
