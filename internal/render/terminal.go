package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/phaselab/internal/scene"
)

// Terminal renders scenes as text. Width and Height are in character
// cells per panel.
type Terminal struct {
	Width, Height int
	Color         bool
}

func NewTerminal(w, h int) *Terminal {
	if w < 10 {
		w = 10
	}
	if h < 4 {
		h = 4
	}
	return &Terminal{Width: w, Height: h, Color: true}
}

// Panel draws p onto a braille canvas.
func (t *Terminal) Panel(p scene.Panel) string {
	c := NewCanvas(t.Width, t.Height)
	xl, yl := limits(p)
	vp := Viewport{Canvas: c, X: xl, Y: yl}

	c.Pen("gray")
	for _, y := range p.HLines {
		vp.Line(xl.Min, y, xl.Max, y)
	}
	for _, x := range p.VLines {
		vp.Line(x, yl.Min, x, yl.Max)
	}

	for _, s := range p.Series {
		c.Pen(s.Color)
		switch s.Kind {
		case scene.Line:
			drawPolyline(vp, s.X, s.Y)
		case scene.Segment:
			for i := range s.X {
				vp.Line(s.X[i], s.Y[i], s.U[i], s.V[i])
			}
		case scene.Scatter:
			for i := range s.X {
				vp.Marker(s.X[i], s.Y[i], !s.Filled)
			}
		case scene.Quiver:
			drawQuiver(vp, s)
		}
	}

	out := c.Plain()
	if t.Color {
		out = c.String()
	}
	return strings.TrimRight(out, "\n")
}

func drawPolyline(vp Viewport, xs, ys []float64) {
	for i := 1; i < len(xs); i++ {
		if finite(xs[i-1], ys[i-1]) && finite(xs[i], ys[i]) {
			vp.Line(xs[i-1], ys[i-1], xs[i], ys[i])
		}
	}
	if len(xs) == 1 {
		vp.Point(xs[0], ys[0])
	}
}

// drawQuiver draws every arrow at a fixed length so direction reads
// clearly at terminal resolution.
func drawQuiver(vp Viewport, s scene.Series) {
	cols, rows := max(s.Cols, 1), max(s.Rows(), 1)
	dx := (vp.X.Max - vp.X.Min) / float64(cols)
	dy := (vp.Y.Max - vp.Y.Min) / float64(rows)
	if rows == 1 {
		dy = dx
	}
	for i := range s.X {
		n := math.Hypot(s.U[i]/dx, s.V[i]/dy)
		if n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			vp.Point(s.X[i], s.Y[i])
			continue
		}
		ex := s.X[i] + 0.45*s.U[i]/n
		ey := s.Y[i] + 0.45*s.V[i]/n
		vp.Line(s.X[i], s.Y[i], ex, ey)
		vp.Marker(ex, ey, false)
	}
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// limits returns the panel limits, falling back to the padded data
// extent on autoscaled axes.
func limits(p scene.Panel) (scene.Limits, scene.Limits) {
	xl, yl := p.XLim, p.YLim
	if !xl.IsAuto() && !yl.IsAuto() {
		return xl, yl
	}
	dx := scene.Limits{Min: math.Inf(1), Max: math.Inf(-1)}
	dy := dx
	grow := func(l *scene.Limits, v float64) {
		if finite(v) {
			l.Min, l.Max = math.Min(l.Min, v), math.Max(l.Max, v)
		}
	}
	for _, s := range p.Series {
		for i := range s.X {
			grow(&dx, s.X[i])
			grow(&dy, s.Y[i])
		}
	}
	for _, v := range p.VLines {
		grow(&dx, v)
	}
	for _, v := range p.HLines {
		grow(&dy, v)
	}
	if xl.IsAuto() {
		xl = pad(dx)
	}
	if yl.IsAuto() {
		yl = pad(dy)
	}
	return xl, yl
}

func pad(l scene.Limits) scene.Limits {
	if math.IsInf(l.Min, 0) {
		return scene.Limits{Min: -1, Max: 1}
	}
	r := l.Max - l.Min
	if r == 0 {
		r = math.Max(1, math.Abs(l.Min))
	}
	return scene.Limits{Min: l.Min - 0.1*r, Max: l.Max + 0.1*r}
}

// Curve plots y over x with asciigraph, clipped to ±ylim. Points outside
// the range or not finite leave gaps.
func (t *Terminal) Curve(y []float64, ylim float64, caption string) string {
	data := make([]float64, len(y))
	visible := false
	for i, v := range y {
		if !finite(v) || math.Abs(v) > ylim {
			data[i] = math.NaN()
			continue
		}
		data[i] = v
		visible = true
	}
	if !visible {
		return fmt.Sprintf("%s: nothing to plot within ±%g", caption, ylim)
	}
	return asciigraph.Plot(data,
		asciigraph.Height(t.Height),
		asciigraph.Width(t.Width),
		asciigraph.LowerBound(-ylim),
		asciigraph.UpperBound(ylim),
		asciigraph.Caption(caption),
	)
}

// Branches plots several series sharing the x axis, e.g. the real roots
// along an alpha sweep.
func (t *Terminal) Branches(series [][]float64, caption string) string {
	var keep [][]float64
	for _, s := range series {
		for _, v := range s {
			if finite(v) {
				keep = append(keep, s)
				break
			}
		}
	}
	if len(keep) == 0 {
		return caption + ": no data"
	}
	colors := []asciigraph.AnsiColor{asciigraph.Red, asciigraph.Blue, asciigraph.Green, asciigraph.Yellow, asciigraph.Cyan}
	opts := []asciigraph.Option{
		asciigraph.Height(t.Height),
		asciigraph.Width(t.Width),
		asciigraph.Caption(caption),
	}
	if t.Color {
		used := make([]asciigraph.AnsiColor, len(keep))
		for i := range used {
			used[i] = colors[i%len(colors)]
		}
		opts = append(opts, asciigraph.SeriesColors(used...))
	}
	return asciigraph.PlotMany(keep, opts...)
}

// Scene renders every panel in a titled box, side by side, followed by
// the text blocks.
func (t *Terminal) Scene(s scene.Scene) string {
	boxes := make([]string, 0, len(s.Panels))
	for _, p := range s.Panels {
		title := p.Title
		if title == "" {
			title = p.Name
		}
		boxes = append(boxes, PanelBox.Render(TitleStyle.Render(title)+"\n"+t.Panel(p)))
	}
	var b strings.Builder
	if s.Title != "" {
		b.WriteString(HeaderStyle.Render(s.Title) + "\n")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	if len(s.Texts) > 0 {
		texts := make([]string, len(s.Texts))
		for i, tb := range s.Texts {
			texts[i] = TextBox.Render(tb.Text)
		}
		b.WriteString("\n" + lipgloss.JoinHorizontal(lipgloss.Top, texts...))
	}
	return b.String()
}
