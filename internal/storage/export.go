package storage

import (
	"encoding/json"
	"io"
	"math"

	"github.com/san-kum/phaselab/internal/engine"
	"github.com/san-kum/phaselab/internal/roots"
)

type RootData struct {
	Re    float64 `json:"re"`
	Im    float64 `json:"im"`
	Real  bool    `json:"real"`
	Exact bool    `json:"exact"`
	Form  string  `json:"form,omitempty"`
	Label string  `json:"label"`
}

type LinearData struct {
	Matrix      [4]float64   `json:"matrix"`
	Eigenvalues [][2]float64 `json:"eigenvalues"`
	Overlay     [][4]float64 `json:"overlay"`
	Equilibrium string       `json:"equilibrium"`
	Text        string       `json:"text"`
}

type FunctionData struct {
	Title   string     `json:"title"`
	Formula string     `json:"formula"`
	Alpha   float64    `json:"alpha"`
	Domain  [2]float64 `json:"domain"`
	Roots   []RootData `json:"roots"`
	// Curve samples that are not finite are written as null.
	X []float64  `json:"x"`
	Y []*float64 `json:"y"`
}

func LinearJSON(res *engine.LinearResult) LinearData {
	m := res.Matrix
	d := LinearData{
		Matrix:      [4]float64{m.A11, m.A12, m.A21, m.A22},
		Equilibrium: res.Equilibrium.String(),
		Text:        res.Text,
	}
	for i := range res.ValuesRe {
		d.Eigenvalues = append(d.Eigenvalues, [2]float64{res.ValuesRe[i], res.ValuesIm[i]})
	}
	for _, s := range res.Overlay {
		d.Overlay = append(d.Overlay, [4]float64{s.X0, s.Y0, s.X1, s.Y1})
	}
	return d
}

func FunctionJSON(res *engine.FunctionResult) FunctionData {
	d := FunctionData{
		Title:   res.Title,
		Formula: res.Input.Formula,
		Alpha:   res.Input.Alpha,
		Domain:  [2]float64{res.Input.Start, res.Input.End},
		Roots:   make([]RootData, 0, len(res.Roots)),
		X:       res.X,
		Y:       make([]*float64, len(res.Y)),
	}
	for _, r := range res.Roots {
		d.Roots = append(d.Roots, RootData{
			Re: r.Re, Im: r.Im, Real: r.IsReal(), Exact: r.Exact, Form: r.Form,
			Label: roots.Evalf(r, res.Digits),
		})
	}
	for i, v := range res.Y {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			v := v
			d.Y[i] = &v
		}
	}
	return d
}

// WriteJSON writes v indented, the way results are exported.
func WriteJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
