package linsys

// Equilibrium is the type of the fixed point at the origin.
type Equilibrium int

const (
	Degenerate Equilibrium = iota
	StableNode
	UnstableNode
	Saddle
	SpiralSink
	SpiralSource
	Center
)

var equilibriumNames = map[Equilibrium]string{
	Degenerate:   "degenerate",
	StableNode:   "stable node",
	UnstableNode: "unstable node",
	Saddle:       "saddle",
	SpiralSink:   "spiral sink",
	SpiralSource: "spiral source",
	Center:       "center",
}

func (e Equilibrium) String() string {
	if s, ok := equilibriumNames[e]; ok {
		return s
	}
	return "unknown"
}

// Classify types the origin from the trace and determinant of m.
func Classify(m Matrix2x2) Equilibrium {
	tr, det, disc := m.Trace(), m.Det(), m.Discriminant()
	switch {
	case det < 0:
		return Saddle
	case det == 0:
		return Degenerate
	case tr == 0:
		return Center
	case disc < 0 && tr < 0:
		return SpiralSink
	case disc < 0:
		return SpiralSource
	case tr < 0:
		return StableNode
	default:
		return UnstableNode
	}
}

// Analysis bundles everything derived from one matrix.
type Analysis struct {
	Matrix      Matrix2x2
	Eigen       EigenDecomposition
	Field       VectorFieldSample
	Overlay     []Segment
	ValuesRe    []float64
	ValuesIm    []float64
	Equilibrium Equilibrium
	Text        string
}

// Analyze runs the full pipeline for m at the default display scale and
// precision. Nothing is returned on error.
func Analyze(m Matrix2x2) (*Analysis, error) {
	return AnalyzeWith(m, DisplayScale, Precision)
}

// AnalyzeWith is Analyze with the overlay half-length and the number of
// summary decimals given explicitly.
func AnalyzeWith(m Matrix2x2, scale float64, prec int) (*Analysis, error) {
	d, err := Decompose(m)
	if err != nil {
		return nil, err
	}
	overlay, err := EigenOverlay(d, scale)
	if err != nil {
		return nil, err
	}
	re, im := EigenScatter(d)
	eq := Classify(m)
	return &Analysis{
		Matrix:      m,
		Eigen:       d,
		Field:       SampleField(m),
		Overlay:     overlay,
		ValuesRe:    re,
		ValuesIm:    im,
		Equilibrium: eq,
		Text:        Summary(d, prec) + "\n\nEquilibrium: " + eq.String(),
	}, nil
}
