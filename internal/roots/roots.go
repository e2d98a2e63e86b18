// Package roots partitions a solver result into real and complex roots
// and formats them for display.
package roots

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/phaselab/internal/solve"
)

// DefaultDigits is the number of significant digits roots are shown with.
const DefaultDigits = 6

// Point is a root placed on the complex plane.
type Point struct {
	Root  solve.Root
	X, Y  float64
	Label string
}

// Classification holds the real and complex roots in solver order.
type Classification struct {
	Real    []Point
	Complex []Point
}

// Classify splits set by the exact test Im == 0. Real roots sit on the
// real axis; complex roots at (Re, Im).
func Classify(set solve.RootSet) Classification {
	return ClassifyDigits(set, DefaultDigits)
}

// ClassifyDigits is Classify with labels of the given significant digits.
func ClassifyDigits(set solve.RootSet, digits int) Classification {
	c := Classification{Real: []Point{}, Complex: []Point{}}
	for _, r := range set {
		p := Point{Root: r, X: r.Re, Label: Evalf(r, digits)}
		if r.IsReal() {
			c.Real = append(c.Real, p)
			continue
		}
		p.Y = r.Im
		c.Complex = append(c.Complex, p)
	}
	return c
}

// Coords returns the x and y coordinates of pts.
func Coords(pts []Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}

// Labels returns the display label of every point.
func Labels(pts []Point) []string {
	out := make([]string, len(pts))
	for i, p := range pts {
		out[i] = p.Label
	}
	return out
}

// Evalf formats r with the given significant digits, e.g. "5.00000",
// "1.00000*I" or "-0.500000 + 0.866025*I".
func Evalf(r solve.Root, digits int) string {
	if digits <= 0 {
		digits = DefaultDigits
	}
	if r.IsReal() {
		return number(r.Re, digits)
	}
	im := number(math.Abs(r.Im), digits) + "*I"
	if r.Re == 0 {
		if r.Im < 0 {
			return "-" + im
		}
		return im
	}
	sign := "+"
	if r.Im < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%s %s %s", number(r.Re, digits), sign, im)
}

func number(v float64, digits int) string {
	if v == 0 {
		v = 0
	}
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "oo"
	case math.IsInf(v, -1):
		return "-oo"
	}
	s := fmt.Sprintf("%#.*g", digits, v)
	if i := strings.IndexByte(s, 'e'); i >= 0 {
		mant, exp := s[:i], s[i+1:]
		exp = strings.TrimLeft(strings.TrimPrefix(exp, "+"), "0")
		if strings.HasPrefix(exp, "-") {
			exp = "-" + strings.TrimLeft(exp[1:], "0")
		}
		return mant + "e" + exp
	}
	return s
}

// Summary renders both lists the way the function view shows them.
func (c Classification) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Real roots: [%s]\n", strings.Join(Labels(c.Real), ", "))
	fmt.Fprintf(&b, "Complex roots: [%s]", strings.Join(Labels(c.Complex), ", "))
	return b.String()
}
