package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/phaselab/internal/scene"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a grid of braille cells, each 2x4 sub-pixels, with an
// optional color per cell.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]string

	pen string
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]string, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]string, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	return c
}

// Pen sets the color of cells touched from now on.
func (c *Canvas) Pen(color string) { c.pen = color }

// Set sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if c.pen != "" {
		c.Colors[row][col] = c.pen
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = ""
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Plain returns the canvas without color codes.
func (c *Canvas) Plain() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		for j, r := range row {
			if col := c.Colors[i][j]; col != "" && r != blank {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex(col))).Render(string(r)))
				continue
			}
			b.WriteRune(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps data coordinates onto a canvas.
type Viewport struct {
	Canvas *Canvas
	X, Y   scene.Limits
}

func (v Viewport) pixel(x, y float64) (int, int, bool) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return 0, 0, false
	}
	w := float64(v.Canvas.Width*2 - 1)
	h := float64(v.Canvas.Height*4 - 1)
	px := (x - v.X.Min) / (v.X.Max - v.X.Min) * w
	py := (v.Y.Max - y) / (v.Y.Max - v.Y.Min) * h
	// keep far-off points from overflowing int
	px = math.Max(-w, math.Min(2*w, px))
	py = math.Max(-h, math.Min(2*h, py))
	return int(math.Round(px)), int(math.Round(py)), true
}

func (v Viewport) Line(x0, y0, x1, y1 float64) {
	a, b, ok0 := v.pixel(x0, y0)
	c, d, ok1 := v.pixel(x1, y1)
	if ok0 && ok1 {
		v.Canvas.DrawLine(a, b, c, d)
	}
}

func (v Viewport) Point(x, y float64) {
	if px, py, ok := v.pixel(x, y); ok {
		v.Canvas.Set(px, py)
	}
}

// Marker draws a small cross, or a ring when hollow.
func (v Viewport) Marker(x, y float64, hollow bool) {
	px, py, ok := v.pixel(x, y)
	if !ok {
		return
	}
	if hollow {
		for _, d := range [][2]int{{-1, -1}, {0, -2}, {1, -1}, {1, 1}, {0, 2}, {-1, 1}} {
			v.Canvas.Set(px+d[0], py+d[1])
		}
		return
	}
	for d := -1; d <= 1; d++ {
		v.Canvas.Set(px+d, py)
		v.Canvas.Set(px, py+d)
	}
	v.Canvas.Set(px, py-2)
	v.Canvas.Set(px, py+2)
}
