package engine

import (
	"fmt"

	"github.com/san-kum/phaselab/internal/linsys"
	"github.com/san-kum/phaselab/internal/roots"
	"github.com/san-kum/phaselab/internal/scene"
)

func (e *Engine) linearScene(r *LinearResult) scene.Scene {
	a := &r.Analysis
	x, y, u, v := a.Field.Flatten()
	phase := scene.Panel{
		Name:   "phase",
		Title:  "Phase Portrait",
		XLabel: "x_1",
		YLabel: "x_2",
		XLim:   scene.Limits{Min: linsys.FieldMin, Max: linsys.FieldMax},
		YLim:   scene.Limits{Min: linsys.FieldMin, Max: linsys.FieldMax},
		Legend: true,
	}.Axes().With(scene.NewQuiver("field", "blue", e.cfg.Linear.QuiverScale, linsys.GridSize, x, y, u, v))
	for _, o := range r.Orbits {
		phase = phase.With(scene.NewLine("", "gray", o.X, o.Y))
	}
	for _, s := range a.Overlay {
		phase = phase.With(scene.NewSegment(fmt.Sprintf("Eigenvector %d", s.Index+1), "purple", s.X0, s.Y0, s.X1, s.Y1))
	}

	values := scene.Panel{
		Name:   "eigenvalues",
		Title:  "Eigenvalues",
		XLabel: "Real Part",
		YLabel: "Imaginary Part",
		Grid:   true,
	}.Axes().With(scene.NewScatter("eigenvalues", "red", a.ValuesRe, a.ValuesIm))

	prec := e.cfg.Display.Precision
	vectors := linsys.VectorsText(a.Eigen, prec)
	if a.Eigen.Defective() {
		vectors += "\ndefective: eigenvectors may be parallel"
	}
	return scene.Scene{
		Title:  "Phase Portrait and Eigenvalues",
		Panels: []scene.Panel{phase, values},
		Texts: []scene.TextBlock{
			{X: 0.1, Y: 0.3, Text: linsys.ValuesText(a.Eigen, prec)},
			{X: 0.5, Y: 0.3, Text: vectors + "\nEquilibrium: " + a.Equilibrium.String() +
				fmt.Sprintf("\nGrowth rate: %.4g", r.GrowthRate)},
		},
	}
}

func (e *Engine) functionScene(r *FunctionResult) scene.Scene {
	rx, ry := roots.Coords(r.Classes.Real)
	cx, cy := roots.Coords(r.Classes.Complex)
	rootsPanel := scene.Panel{
		Name:   "roots",
		Title:  "Roots of the Function",
		XLabel: "Re(x)",
		YLabel: "Im(x)",
		Grid:   true,
		Legend: true,
	}.Axes().With(
		scene.NewScatter("Real Roots", "red", rx, ry),
		scene.NewScatter("Complex Roots", "blue", cx, cy),
	)

	in := r.Input
	curve := scene.Panel{
		Name:   "function",
		Title:  "Function",
		XLabel: "x",
		YLabel: "F(x)",
		XLim:   scene.Limits{Min: in.Start, Max: in.End},
		YLim:   scene.Limits{Min: -in.YLim, Max: in.YLim},
		Grid:   true,
		Legend: true,
	}.With(scene.NewLine("Function", "blue", r.X, r.Y))

	return scene.Scene{
		Title:  r.Title,
		Panels: []scene.Panel{rootsPanel, curve, r.Phase},
		Texts:  []scene.TextBlock{{X: 0.05, Y: 0.9, Text: r.Classes.Summary()}},
	}
}
