package phaseline

import (
	"context"
	"math"

	"github.com/san-kum/phaselab/internal/analysis"
	"github.com/san-kum/phaselab/internal/dynamo"
	"github.com/san-kum/phaselab/internal/integrators"
	"github.com/san-kum/phaselab/internal/scene"
)

// StreamRenderer draws streamlines of the flow over the square
// domain × domain, direction arrows along y = 0 and markers at the
// equilibria.
type StreamRenderer struct {
	Rows       int
	Seeds      int
	Steps      int
	Samples    int
	Integrator string
}

func NewStreamRenderer() *StreamRenderer {
	return &StreamRenderer{Rows: 5, Seeds: 12, Steps: 200, Samples: 401, Integrator: "rk4"}
}

func (r *StreamRenderer) Render(ctx context.Context, f Flow) (scene.Panel, error) {
	if f.Derivative == nil || f.Domain[0] >= f.Domain[1] {
		return scene.Panel{}, ErrInvalidDomain
	}
	integ, ok := integrators.ByName(r.Integrator)
	if !ok {
		integ = integrators.NewRK4()
	}

	lo, hi := f.Domain[0], f.Domain[1]
	width := hi - lo
	panel := scene.Panel{
		Name:   "phase",
		Title:  "Phase Flow",
		XLabel: "x",
		YLabel: "y",
		XLim:   scene.Limits{Min: lo, Max: hi},
		YLim:   scene.Limits{Min: lo, Max: hi},
	}.Axes()

	sys := dynamo.FuncSystem(f.Derivative)
	dt := r.timeStep(f)
	inside := func(s dynamo.State) bool { return s[0] >= lo && s[0] <= hi }

	seeds := analysis.Grid(lo, hi, r.Seeds, r.Rows)
	orbits, err := analysis.Portrait(ctx, sys, integ, seeds, dt, r.Steps, inside)
	if err != nil {
		return scene.Panel{}, err
	}
	for _, o := range orbits {
		panel = panel.With(scene.NewLine("", "steelblue", o.X, o.Y))
	}

	var ax, ay, au, av []float64
	for k := 0; k < max(r.Seeds, 1); k++ {
		x := lo + width*(float64(k)+0.5)/float64(max(r.Seeds, 1))
		dx, _ := f.Derivative(x, 0)
		if math.IsNaN(dx) || math.IsInf(dx, 0) {
			continue
		}
		ax, ay = append(ax, x), append(ay, 0)
		au, av = append(au, dx), append(av, 0)
	}
	panel = panel.With(scene.NewQuiver("direction", "black", 0, len(ax), ax, ay, au, av))

	var sx, ux []float64
	for _, eq := range f.Equilibria(r.Samples) {
		if eq.Stable {
			sx = append(sx, eq.X)
		} else {
			ux = append(ux, eq.X)
		}
	}
	stable := scene.NewScatter("stable", "black", sx, make([]float64, len(sx)))
	unstable := scene.NewScatter("unstable", "black", ux, make([]float64, len(ux)))
	unstable.Filled = false
	return panel.With(stable, unstable), nil
}

// timeStep picks dt so that the fastest sampled point moves about
// width/Steps per step.
func (r *StreamRenderer) timeStep(f Flow) float64 {
	width := f.Domain[1] - f.Domain[0]
	steps := max(r.Steps, 1)
	peak := 0.0
	n := max(r.Samples, 2)
	for i := 0; i < n; i++ {
		x := f.Domain[0] + width*float64(i)/float64(n-1)
		dx, _ := f.Derivative(x, 0)
		if a := math.Abs(dx); !math.IsInf(a, 0) && a > peak {
			peak = a
		}
	}
	if peak == 0 || math.IsNaN(peak) {
		return width / float64(steps)
	}
	return width / (float64(steps) * peak)
}
