package roots

import (
	"testing"

	"github.com/san-kum/phaselab/internal/solve"
)

func TestClassify_ComplexPair(t *testing.T) {
	c := Classify(solve.RootSet{{Im: -1, Form: "-I"}, {Im: 1, Form: "I"}})

	if len(c.Real) != 0 {
		t.Errorf("got %d real roots, want 0", len(c.Real))
	}
	if len(c.Complex) != 2 {
		t.Fatalf("got %d complex roots, want 2", len(c.Complex))
	}
	for i, want := range []float64{-1, 1} {
		p := c.Complex[i]
		if p.X != 0 || p.Y != want {
			t.Errorf("point %d at (%v, %v), want (0, %v)", i, p.X, p.Y, want)
		}
	}
	if c.Complex[1].Label != "1.00000*I" || c.Complex[0].Label != "-1.00000*I" {
		t.Errorf("labels %q %q", c.Complex[0].Label, c.Complex[1].Label)
	}
}

func TestClassify_RealRoot(t *testing.T) {
	c := Classify(solve.RootSet{{Re: 5, Exact: true, Form: "5"}})

	if len(c.Complex) != 0 {
		t.Errorf("got %d complex roots, want 0", len(c.Complex))
	}
	if len(c.Real) != 1 {
		t.Fatalf("got %d real roots, want 1", len(c.Real))
	}
	p := c.Real[0]
	if p.X != 5 || p.Y != 0 || p.Label != "5.00000" {
		t.Errorf("got %+v", p)
	}
}

func TestClassify_ExactZeroTest(t *testing.T) {
	c := Classify(solve.RootSet{{Re: 1, Im: 1e-300}})
	if len(c.Complex) != 1 {
		t.Errorf("a tiny imaginary part must still classify complex")
	}
}

func TestClassifyDigits(t *testing.T) {
	c := ClassifyDigits(solve.RootSet{{Re: 5}, {Re: 1, Im: -2}}, 3)
	if got := c.Summary(); got != "Real roots: [5.00]\nComplex roots: [1.00 - 2.00*I]" {
		t.Errorf("summary %q", got)
	}
}

func TestClassify_Empty(t *testing.T) {
	c := Classify(nil)
	if c.Real == nil || c.Complex == nil {
		t.Errorf("empty classification should hold empty, non-nil lists")
	}
	if got := c.Summary(); got != "Real roots: []\nComplex roots: []" {
		t.Errorf("summary %q", got)
	}
}

func TestEvalf(t *testing.T) {
	tests := []struct {
		root solve.Root
		want string
	}{
		{solve.Root{Re: 5}, "5.00000"},
		{solve.Root{Re: 0.5}, "0.500000"},
		{solve.Root{Re: -1.4142135623730951}, "-1.41421"},
		{solve.Root{Re: 0}, "0.00000"},
		{solve.Root{Re: 12345678}, "1.23457e7"},
		{solve.Root{Re: 1e-9}, "1.00000e-9"},
		{solve.Root{Re: -0.5, Im: 0.8660254037844386}, "-0.500000 + 0.866025*I"},
		{solve.Root{Re: 2, Im: -3}, "2.00000 - 3.00000*I"},
		{solve.Root{Im: 2}, "2.00000*I"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Evalf(tt.root, DefaultDigits); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalf_DoesNotMutate(t *testing.T) {
	r := solve.Root{Re: 1.23456789, Form: "x"}
	_ = Evalf(r, 3)
	if r.Re != 1.23456789 || r.Form != "x" {
		t.Errorf("root changed: %+v", r)
	}
}

func TestCoords(t *testing.T) {
	c := Classify(solve.RootSet{{Re: 1, Im: 2}, {Re: 3, Im: -4}})
	xs, ys := Coords(c.Complex)
	if xs[0] != 1 || ys[0] != 2 || xs[1] != 3 || ys[1] != -4 {
		t.Errorf("coords %v %v", xs, ys)
	}
}
