package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/phaselab/internal/scene"
)

// PanelSVG writes a panel as a plain SVG document: polylines as paths,
// scatter points as circles and quiver arrows as fixed-length strokes.
// It needs no font or raster support, which keeps exports small.
func PanelSVG(p scene.Panel, width, height int) string {
	xl, yl := limits(p)
	rangeX := xl.Max - xl.Min
	rangeY := yl.Max - yl.Min
	px := func(x float64) float64 { return (x - xl.Min) / rangeX * float64(width) }
	py := func(y float64) float64 { return float64(height) - (y-yl.Min)/rangeY*float64(height) }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, width, height, width, height))
	if p.Title != "" {
		sb.WriteString(fmt.Sprintf("<title>%s</title>\n", escape(p.Title)))
	}

	for _, y := range p.HLines {
		sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#000000" stroke-width="1"/>
`, py(y), width, py(y)))
	}
	for _, x := range p.VLines {
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="0" x2="%.1f" y2="%d" stroke="#000000" stroke-width="1"/>
`, px(x), px(x), height))
	}

	for _, s := range p.Series {
		c := rgba(s.Color)
		stroke := fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
		switch s.Kind {
		case scene.Line:
			var d strings.Builder
			pen := false
			for i := range s.X {
				if !finite(s.X[i], s.Y[i]) {
					pen = false
					continue
				}
				cmd := " L"
				if !pen {
					cmd = " M"
				}
				d.WriteString(fmt.Sprintf("%s%.1f,%.1f", cmd, px(s.X[i]), py(s.Y[i])))
				pen = true
			}
			if d.Len() > 0 {
				sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>
`, stroke, strings.TrimSpace(d.String())))
			}
		case scene.Segment:
			for i := range s.X {
				sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>
`, px(s.X[i]), py(s.Y[i]), px(s.U[i]), py(s.V[i]), stroke))
			}
		case scene.Scatter:
			fill := stroke
			if !s.Filled {
				fill = "none"
			}
			for i := range s.X {
				if finite(s.X[i], s.Y[i]) {
					sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="5" fill="%s" stroke="%s"/>
`, px(s.X[i]), py(s.Y[i]), fill, stroke))
				}
			}
		case scene.Quiver:
			cell := float64(width) / float64(max(s.Cols, 1)) * 0.45
			for i := range s.X {
				n := math.Hypot(s.U[i], s.V[i])
				if n == 0 || !finite(n) {
					continue
				}
				x0, y0 := px(s.X[i]), py(s.Y[i])
				// screen y grows downwards
				sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="1"/>
`, x0, y0, x0+cell*s.U[i]/n, y0-cell*s.V[i]/n, stroke))
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
