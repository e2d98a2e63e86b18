package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/phaselab/internal/dynamo"
	"github.com/san-kum/phaselab/internal/integrators"
	"github.com/san-kum/phaselab/internal/linsys"
)

func TestGrowthRate_Linear(t *testing.T) {
	tests := []struct {
		name string
		m    linsys.Matrix2x2
		want float64
	}{
		{"stable node", linsys.Matrix2x2{A11: -1, A22: -2}, -1},
		{"saddle", linsys.Matrix2x2{A11: 1, A22: -2}, 1},
		{"spiral sink", linsys.Matrix2x2{A11: -1, A12: -4, A21: 4, A22: -1}, -1},
		{"center", linsys.Matrix2x2{A12: -1, A21: 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrowthRate(Linear(tt.m), integrators.NewRK4(), dynamo.State{0, 0}, 0.01, 20, 1e-6)
			if math.Abs(got-tt.want) > 0.05 {
				t.Errorf("growth rate = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}

func TestGrowthRate_Degenerate(t *testing.T) {
	if got := GrowthRate(Linear(linsys.Matrix2x2{}), integrators.NewRK4(), dynamo.State{}, 0.01, 1, 1e-6); got != 0 {
		t.Errorf("empty state: got %v", got)
	}
	if got := GrowthRate(Linear(linsys.Matrix2x2{}), integrators.NewRK4(), dynamo.State{1, 1}, 0.01, 1, 1e-6); math.Abs(got) > 1e-9 {
		t.Errorf("zero matrix: got %v", got)
	}
}

func TestPortrait_StaysInside(t *testing.T) {
	sys := Linear(linsys.Matrix2x2{A11: 1, A22: 1})
	seeds := Ring(1, 8)
	orbits, err := Portrait(context.Background(), sys, integrators.NewRK4(), seeds, 0.01, 1000, dynamo.Box(10))
	if err != nil {
		t.Fatalf("portrait: %v", err)
	}
	if len(orbits) != 8 {
		t.Fatalf("expected 8 orbits, got %d", len(orbits))
	}
	for _, o := range orbits {
		last := o.Len() - 1
		if math.Abs(o.X[last]) > 10 || math.Abs(o.Y[last]) > 10 {
			t.Errorf("orbit left the box: (%v, %v)", o.X[last], o.Y[last])
		}
		if o.Len() >= 1001 {
			t.Error("an unstable node should push orbits out before the step limit")
		}
	}
}

func TestPortrait_Contracts(t *testing.T) {
	sys := Linear(linsys.Matrix2x2{A11: -1, A22: -1})
	orbits, err := Portrait(context.Background(), sys, integrators.NewRK4(), Grid(-5, 5, 2, 2), 0.01, 500, nil)
	if err != nil {
		t.Fatalf("portrait: %v", err)
	}
	for _, o := range orbits {
		r0 := math.Hypot(o.X[0], o.Y[0])
		r1 := math.Hypot(o.X[o.Len()-1], o.Y[o.Len()-1])
		if math.Abs(r1-r0*math.Exp(-5)) > 1e-6 {
			t.Errorf("radius %v, want %v", r1, r0*math.Exp(-5))
		}
	}
}

func TestPortrait_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Portrait(ctx, Linear(linsys.Matrix2x2{}), integrators.NewRK4(), Ring(1, 3), 0.1, 10, nil)
	if err == nil {
		t.Error("expected context error")
	}
}

func TestSeeds(t *testing.T) {
	if got := len(Grid(-1, 1, 3, 4)); got != 12 {
		t.Errorf("grid seeds = %d", got)
	}
	for _, s := range Ring(2, 5) {
		if math.Abs(math.Hypot(s[0], s[1])-2) > 1e-12 {
			t.Errorf("seed %v not on ring", s)
		}
	}
}
