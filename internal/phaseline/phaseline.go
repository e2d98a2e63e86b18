// Package phaseline turns a scalar function f(x, alpha) into the
// degenerate planar flow (dx, dy) = (f(x, alpha), 0) and renders it.
package phaseline

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/phaselab/internal/expr"
	"github.com/san-kum/phaselab/internal/scene"
)

var ErrInvalidDomain = errors.New("phaseline: domain start must be below end")

// Flow is the input a Renderer draws. Derivative returns NaN where f
// cannot be evaluated.
type Flow struct {
	Derivative func(x, y float64) (dx, dy float64)
	Domain     [2]float64
	Alpha      float64
	Formula    string
}

// Renderer draws a Flow into a fresh panel.
type Renderer interface {
	Render(ctx context.Context, f Flow) (scene.Panel, error)
}

// Build captures e with alpha fixed over [start, end].
func Build(e *expr.Expression, alpha, start, end float64) (Flow, error) {
	if e == nil {
		return Flow{}, errors.New("phaseline: nil expression")
	}
	if math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0) || start >= end {
		return Flow{}, fmt.Errorf("%w: [%v, %v]", ErrInvalidDomain, start, end)
	}
	f := e.Func(alpha)
	return Flow{
		Derivative: func(x, _ float64) (float64, float64) { return f(x), 0 },
		Domain:     [2]float64{start, end},
		Alpha:      alpha,
		Formula:    e.Text(),
	}, nil
}

// Equilibrium is a zero of f located from a sign change on the sample
// grid. Stable when f goes from positive to negative.
type Equilibrium struct {
	X      float64
	Stable bool
}

// Equilibria scans f on n points over the domain.
func (f Flow) Equilibria(n int) []Equilibrium {
	if n < 2 {
		n = 2
	}
	xs := expr.Linspace(f.Domain[0], f.Domain[1], n)
	ys := make([]float64, n)
	for i, x := range xs {
		ys[i], _ = f.Derivative(x, 0)
	}

	var out []Equilibrium
	for i := 1; i < n; i++ {
		a, b := ys[i-1], ys[i]
		if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
			continue
		}
		switch {
		case a == 0:
			out = append(out, Equilibrium{X: xs[i-1], Stable: b < 0 && (i == 1 || ys[i-2] > 0)})
		case b == 0:
			// picked up on the next step as a == 0, unless at the edge
			if i == n-1 {
				out = append(out, Equilibrium{X: xs[i], Stable: a > 0})
			}
		case (a > 0) != (b > 0):
			x := xs[i-1] + (xs[i]-xs[i-1])*a/(a-b)
			out = append(out, Equilibrium{X: x, Stable: a > 0})
		}
	}
	return out
}
