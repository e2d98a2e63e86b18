package linsys

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix2x2 holds the coefficients of A, row-major.
type Matrix2x2 struct {
	A11, A12 float64
	A21, A22 float64
}

func (m Matrix2x2) Trace() float64 { return m.A11 + m.A22 }

func (m Matrix2x2) Det() float64 { return m.A11*m.A22 - m.A12*m.A21 }

// Discriminant of the characteristic polynomial, tr² - 4·det.
func (m Matrix2x2) Discriminant() float64 {
	tr := m.Trace()
	return tr*tr - 4*m.Det()
}

// Apply returns A·(x, y).
func (m Matrix2x2) Apply(x, y float64) (float64, float64) {
	return m.A11*x + m.A12*y, m.A21*x + m.A22*y
}

func (m Matrix2x2) Dense() *mat.Dense {
	return mat.NewDense(2, 2, []float64{m.A11, m.A12, m.A21, m.A22})
}

func (m Matrix2x2) IsFinite() bool {
	for _, v := range [4]float64{m.A11, m.A12, m.A21, m.A22} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (m Matrix2x2) String() string {
	return fmt.Sprintf("[[%g %g] [%g %g]]", m.A11, m.A12, m.A21, m.A22)
}
