package scene

import "testing"

func TestConstructorsCopy(t *testing.T) {
	x := []float64{1, 2}
	y := []float64{3, 4}
	s := NewLine("f", "blue", x, y)
	x[0], y[0] = 9, 9
	if s.X[0] != 1 || s.Y[0] != 3 {
		t.Errorf("series shares caller memory: %v %v", s.X, s.Y)
	}

	u := []float64{5}
	q := NewQuiver("field", "blue", 1000, 1, x[:1], y[:1], u, u)
	u[0] = 0
	if q.U[0] != 5 || q.V[0] != 5 {
		t.Errorf("quiver shares caller memory")
	}
	if q.Rows() != 1 {
		t.Errorf("rows %d", q.Rows())
	}
}

func TestPanelWithDoesNotAlias(t *testing.T) {
	base := Panel{Name: "p"}.With(NewScatter("a", "red", []float64{1}, []float64{0}))
	a := base.With(NewLine("b", "", nil, nil))
	b := base.With(NewLine("c", "", nil, nil))
	if len(base.Series) != 1 {
		t.Fatalf("base modified: %d series", len(base.Series))
	}
	if a.Series[1].Label != "b" || b.Series[1].Label != "c" {
		t.Errorf("panels alias each other")
	}
	if _, ok := a.Find("b"); !ok {
		t.Errorf("find failed")
	}
}

func TestAxes(t *testing.T) {
	p := Panel{}.Axes()
	if len(p.HLines) != 1 || p.HLines[0] != 0 || len(p.VLines) != 1 {
		t.Errorf("axes %+v", p)
	}
}

func TestSegment(t *testing.T) {
	s := NewSegment("v1", "purple", -1, -2, 1, 2)
	if s.Kind != Segment || s.Len() != 1 || s.U[0] != 1 || s.V[0] != 2 {
		t.Errorf("segment %+v", s)
	}
}
