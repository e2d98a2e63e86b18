package linsys

const (
	GridSize     = 20
	FieldMin     = -10.0
	FieldMax     = 10.0
	DisplayScale = 20.0
)

// VectorFieldSample is A·p on a GridSize×GridSize grid. Rows follow y and
// columns follow x.
type VectorFieldSample struct {
	X, Y [][]float64
	U, V [][]float64
}

func linspace(start, end float64, n int) []float64 {
	out := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = end
	return out
}

// SampleField evaluates m over the fixed grid.
func SampleField(m Matrix2x2) VectorFieldSample {
	axis := linspace(FieldMin, FieldMax, GridSize)
	f := VectorFieldSample{
		X: make([][]float64, GridSize),
		Y: make([][]float64, GridSize),
		U: make([][]float64, GridSize),
		V: make([][]float64, GridSize),
	}
	for i, y := range axis {
		f.X[i] = make([]float64, GridSize)
		f.Y[i] = make([]float64, GridSize)
		f.U[i] = make([]float64, GridSize)
		f.V[i] = make([]float64, GridSize)
		for j, x := range axis {
			f.X[i][j], f.Y[i][j] = x, y
			f.U[i][j], f.V[i][j] = m.Apply(x, y)
		}
	}
	return f
}

// Flatten returns the samples as parallel slices, row by row.
func (f VectorFieldSample) Flatten() (x, y, u, v []float64) {
	for i := range f.X {
		x = append(x, f.X[i]...)
		y = append(y, f.Y[i]...)
		u = append(u, f.U[i]...)
		v = append(v, f.V[i]...)
	}
	return x, y, u, v
}
