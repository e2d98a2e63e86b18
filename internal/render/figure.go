package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/phaselab/internal/scene"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Figure renders scenes to PNG or SVG, one tile per panel.
type Figure struct {
	PanelSize vg.Length
}

func NewFigure() *Figure {
	return &Figure{PanelSize: 5 * vg.Inch}
}

// Plot converts one panel.
func (f *Figure) Plot(p scene.Panel) (*plot.Plot, error) {
	pl := plot.New()
	pl.Title.Text = p.Title
	pl.X.Label.Text = p.XLabel
	pl.Y.Label.Text = p.YLabel

	xl, yl := limits(p)
	if !p.XLim.IsAuto() {
		pl.X.Min, pl.X.Max = xl.Min, xl.Max
	}
	if !p.YLim.IsAuto() {
		pl.Y.Min, pl.Y.Max = yl.Min, yl.Max
	}
	if p.Grid {
		pl.Add(plotter.NewGrid())
	}

	for _, y := range p.HLines {
		if err := addLine(pl, plotter.XYs{{X: xl.Min, Y: y}, {X: xl.Max, Y: y}}, "black", 1, ""); err != nil {
			return nil, err
		}
	}
	for _, x := range p.VLines {
		if err := addLine(pl, plotter.XYs{{X: x, Y: yl.Min}, {X: x, Y: yl.Max}}, "black", 1, ""); err != nil {
			return nil, err
		}
	}

	for _, s := range p.Series {
		label := ""
		if p.Legend {
			label = s.Label
		}
		var err error
		switch s.Kind {
		case scene.Line:
			err = addPolyline(pl, s, label)
		case scene.Segment:
			for i := range s.X {
				if err = addLine(pl, plotter.XYs{{X: s.X[i], Y: s.Y[i]}, {X: s.U[i], Y: s.V[i]}}, s.Color, 2, label); err != nil {
					break
				}
				label = ""
			}
		case scene.Scatter:
			err = addScatter(pl, s, label)
		case scene.Quiver:
			addField(pl, s, xl.Max-xl.Min)
		}
		if err != nil {
			return nil, fmt.Errorf("render: %s series %q: %w", s.Kind, s.Label, err)
		}
	}
	return pl, nil
}

func addLine(pl *plot.Plot, xys plotter.XYs, color string, width float64, label string) error {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	l.LineStyle.Color = rgba(color)
	l.LineStyle.Width = vg.Points(width)
	pl.Add(l)
	if label != "" {
		pl.Legend.Add(label, l)
	}
	return nil
}

// addPolyline splits the series at non-finite points.
func addPolyline(pl *plot.Plot, s scene.Series, label string) error {
	var run plotter.XYs
	flush := func() error {
		defer func() { run = nil }()
		if len(run) < 2 {
			return nil
		}
		err := addLine(pl, run, s.Color, 1.5, label)
		label = ""
		return err
	}
	for i := range s.X {
		if !finite(s.X[i], s.Y[i]) {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		run = append(run, plotter.XY{X: s.X[i], Y: s.Y[i]})
	}
	return flush()
}

func addScatter(pl *plot.Plot, s scene.Series, label string) error {
	var xys plotter.XYs
	for i := range s.X {
		if finite(s.X[i], s.Y[i]) {
			xys = append(xys, plotter.XY{X: s.X[i], Y: s.Y[i]})
		}
	}
	if len(xys) == 0 {
		return nil
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Color = rgba(s.Color)
	sc.GlyphStyle.Radius = vg.Points(5)
	if s.Filled {
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
	} else {
		sc.GlyphStyle.Shape = draw.RingGlyph{}
	}
	pl.Add(sc)
	if label != "" {
		pl.Legend.Add(label, sc)
	}
	return nil
}

// quiverField adapts a quiver series to plotter.FieldXY.
type quiverField struct {
	s          scene.Series
	cols, rows int
}

func (q quiverField) Dims() (c, r int) { return q.cols, q.rows }

func (q quiverField) Vector(c, r int) plotter.XY {
	i := r*q.cols + c
	if i >= len(q.s.U) {
		return plotter.XY{X: math.NaN(), Y: math.NaN()}
	}
	return plotter.XY{X: q.s.U[i], Y: q.s.V[i]}
}

func (q quiverField) X(c int) float64 { return q.s.X[c] }

func (q quiverField) Y(r int) float64 { return q.s.Y[r*q.cols] }

// addField draws a quiver series. A positive Scale gives arrows of length
// |v|/Scale times the panel width in data units; otherwise plotter.Field
// fits the longest arrow to a grid cell.
func addField(pl *plot.Plot, s scene.Series, width float64) {
	if s.Len() == 0 || s.Cols <= 0 {
		return
	}
	if s.Scale > 0 && width > 0 && finite(width) {
		a := arrows{lines: quiverArrows(s, width/s.Scale)}
		a.style = plotter.DefaultLineStyle
		a.style.Color = rgba(s.Color)
		pl.Add(a)
		return
	}
	peak := 0.0
	for i := range s.U {
		if n := math.Hypot(s.U[i], s.V[i]); finite(n) {
			peak = math.Max(peak, n)
		}
	}
	if peak == 0 {
		return
	}
	f := plotter.NewField(quiverField{s: s, cols: s.Cols, rows: s.Rows()})
	f.LineStyle.Color = rgba(s.Color)
	pl.Add(f)
}

const (
	headRatio = 0.3
	headAngle = 25 * math.Pi / 180
)

// quiverArrows returns a shaft and a head polyline per non-zero vector,
// each vector multiplied by k.
func quiverArrows(s scene.Series, k float64) []plotter.XYs {
	var out []plotter.XYs
	for i := range s.U {
		x, y := s.X[i], s.Y[i]
		dx, dy := s.U[i]*k, s.V[i]*k
		n := math.Hypot(dx, dy)
		if n == 0 || !finite(x, y, n) {
			continue
		}
		tip := plotter.XY{X: x + dx, Y: y + dy}
		back := math.Atan2(-dy, -dx)
		head := n * headRatio
		left := plotter.XY{X: tip.X + head*math.Cos(back+headAngle), Y: tip.Y + head*math.Sin(back+headAngle)}
		right := plotter.XY{X: tip.X + head*math.Cos(back-headAngle), Y: tip.Y + head*math.Sin(back-headAngle)}
		out = append(out, plotter.XYs{{X: x, Y: y}, tip}, plotter.XYs{left, tip, right})
	}
	return out
}

// arrows is a plot.Plotter for polylines given in data coordinates.
type arrows struct {
	lines []plotter.XYs
	style draw.LineStyle
}

func (a arrows) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, l := range a.lines {
		pts := make([]vg.Point, len(l))
		for i, p := range l {
			pts[i] = vg.Point{X: trX(p.X), Y: trY(p.Y)}
		}
		c.StrokeLines(a.style, c.ClipLinesXY(pts)...)
	}
}

func textPlot(texts []scene.TextBlock) (*plot.Plot, error) {
	pl := plot.New()
	pl.HideAxes()
	pl.X.Min, pl.X.Max = 0, 1
	pl.Y.Min, pl.Y.Max = 0, 1
	xys := make(plotter.XYs, len(texts))
	labels := make([]string, len(texts))
	for i, t := range texts {
		xys[i] = plotter.XY{X: t.X, Y: t.Y}
		labels[i] = t.Text
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, err
	}
	pl.Add(l)
	return pl, nil
}

// Write renders s in format ("png" or "svg").
func (f *Figure) Write(w io.Writer, s scene.Scene, format string) error {
	var row []*plot.Plot
	for _, p := range s.Panels {
		pl, err := f.Plot(p)
		if err != nil {
			return err
		}
		row = append(row, pl)
	}
	if len(s.Texts) > 0 {
		pl, err := textPlot(s.Texts)
		if err != nil {
			return err
		}
		row = append(row, pl)
	}
	if len(row) == 0 {
		return fmt.Errorf("render: scene %q has nothing to draw", s.Title)
	}

	width := f.PanelSize * vg.Length(len(row))
	height := f.PanelSize
	var c vg.CanvasWriterTo
	switch strings.ToLower(format) {
	case "png":
		c = vgimg.PngCanvas{Canvas: vgimg.New(width, height)}
	case "svg":
		c = vgsvg.New(width, height)
	default:
		return fmt.Errorf("render: unsupported format %q", format)
	}

	tiles := draw.Tiles{
		Rows:      1,
		Cols:      len(row),
		PadX:      vg.Millimeter * 4,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
	}
	canvases := plot.Align([][]*plot.Plot{row}, tiles, draw.New(c))
	for i, pl := range row {
		pl.Draw(canvases[0][i])
	}
	_, err := c.WriteTo(w)
	return err
}

// Save writes s to path, picking the format from the extension.
func (f *Figure) Save(path string, s scene.Scene) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format != "png" && format != "svg" {
		return fmt.Errorf("render: unsupported format %q", format)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Write(file, s, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
