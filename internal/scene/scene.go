// Package scene describes what a rendering surface should draw. Values
// are built fresh on every recompute and never mutated afterwards; every
// constructor copies the slices it is given.
package scene

type Kind int

const (
	Line Kind = iota
	Scatter
	Quiver
	Segment
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Scatter:
		return "scatter"
	case Quiver:
		return "quiver"
	case Segment:
		return "segment"
	}
	return "unknown"
}

// Limits is a closed axis range. The zero value means autoscale.
type Limits struct {
	Min, Max float64
}

func (l Limits) IsAuto() bool { return l.Min == 0 && l.Max == 0 }

// Series is one drawable element. U and V are only set for quivers and
// segments (segment i runs from (X[i], Y[i]) to (U[i], V[i])). A quiver
// lays its arrows out row by row, Cols to a row.
type Series struct {
	Kind   Kind
	Label  string
	Color  string
	Filled bool
	Scale  float64
	Cols   int
	X, Y   []float64
	U, V   []float64
}

func (s Series) Len() int { return len(s.X) }

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func NewLine(label, color string, x, y []float64) Series {
	return Series{Kind: Line, Label: label, Color: color, X: clone(x), Y: clone(y)}
}

func NewScatter(label, color string, x, y []float64) Series {
	return Series{Kind: Scatter, Label: label, Color: color, Filled: true, X: clone(x), Y: clone(y)}
}

// NewQuiver builds arrows at (x, y) with direction (u, v). scale follows
// the matplotlib convention: larger values draw shorter arrows.
func NewQuiver(label, color string, scale float64, cols int, x, y, u, v []float64) Series {
	return Series{Kind: Quiver, Label: label, Color: color, Scale: scale, Cols: cols,
		X: clone(x), Y: clone(y), U: clone(u), V: clone(v)}
}

// Rows is the number of quiver rows.
func (s Series) Rows() int {
	if s.Cols <= 0 {
		return 0
	}
	return (len(s.X) + s.Cols - 1) / s.Cols
}

func NewSegment(label, color string, x0, y0, x1, y1 float64) Series {
	return Series{Kind: Segment, Label: label, Color: color,
		X: []float64{x0}, Y: []float64{y0}, U: []float64{x1}, V: []float64{y1}}
}

// Panel is one set of axes. Name identifies it within a scene; Title is
// what gets drawn.
type Panel struct {
	Name   string
	Title  string
	XLabel string
	YLabel string
	XLim   Limits
	YLim   Limits
	Series []Series
	HLines []float64
	VLines []float64
	Grid   bool
	Legend bool
}

// With returns a copy of p with s appended.
func (p Panel) With(s ...Series) Panel {
	out := p
	out.Series = append(append([]Series(nil), p.Series...), s...)
	return out
}

// Axes returns a copy of p with the zero axes drawn.
func (p Panel) Axes() Panel {
	out := p
	out.HLines = append(clone(p.HLines), 0)
	out.VLines = append(clone(p.VLines), 0)
	return out
}

// Find returns the first series carrying label.
func (p Panel) Find(label string) (Series, bool) {
	for _, s := range p.Series {
		if s.Label == label {
			return s, true
		}
	}
	return Series{}, false
}

// TextBlock is free text anchored in figure coordinates.
type TextBlock struct {
	X, Y float64
	Text string
}

// Scene is a complete figure.
type Scene struct {
	Title  string
	Panels []Panel
	Texts  []TextBlock
}

// Panel looks a panel up by name.
func (s Scene) Panel(name string) (Panel, bool) {
	for _, p := range s.Panels {
		if p.Name == name {
			return p, true
		}
	}
	return Panel{}, false
}
