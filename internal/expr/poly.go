package expr

import (
	"math"
	"math/big"
	"strings"
)

// Poly is a polynomial with exact rational coefficients; p[i] multiplies
// x^i. The zero polynomial is the empty slice. Values are never mutated
// after construction.
type Poly []*big.Rat

func ratInt(n int64) *big.Rat { return new(big.Rat).SetInt64(n) }

// PolyConst returns the constant polynomial c.
func PolyConst(c *big.Rat) Poly {
	if c.Sign() == 0 {
		return nil
	}
	return Poly{new(big.Rat).Set(c)}
}

// PolyX returns the polynomial x.
func PolyX() Poly { return Poly{ratInt(0), ratInt(1)} }

// NewPoly builds a polynomial from int64 coefficients, lowest degree first.
func NewPoly(coeffs ...int64) Poly {
	p := make(Poly, len(coeffs))
	for i, c := range coeffs {
		p[i] = ratInt(c)
	}
	return p.trim()
}

func (p Poly) trim() Poly {
	n := len(p)
	for n > 0 && p[n-1].Sign() == 0 {
		n--
	}
	return p[:n]
}

// Degree returns the degree, -1 for the zero polynomial.
func (p Poly) Degree() int { return len(p) - 1 }

func (p Poly) IsZero() bool { return len(p) == 0 }

// Lead returns the leading coefficient.
func (p Poly) Lead() *big.Rat {
	if len(p) == 0 {
		return ratInt(0)
	}
	return p[len(p)-1]
}

func (p Poly) coeff(i int) *big.Rat {
	if i < len(p) {
		return p[i]
	}
	return ratInt(0)
}

func (p Poly) Add(q Poly) Poly {
	n := max(len(p), len(q))
	out := make(Poly, n)
	for i := range out {
		out[i] = new(big.Rat).Add(p.coeff(i), q.coeff(i))
	}
	return out.trim()
}

func (p Poly) Neg() Poly {
	out := make(Poly, len(p))
	for i, c := range p {
		out[i] = new(big.Rat).Neg(c)
	}
	return out
}

func (p Poly) Sub(q Poly) Poly { return p.Add(q.Neg()) }

func (p Poly) Mul(q Poly) Poly {
	if p.IsZero() || q.IsZero() {
		return nil
	}
	out := make(Poly, len(p)+len(q)-1)
	for i := range out {
		out[i] = ratInt(0)
	}
	tmp := new(big.Rat)
	for i, a := range p {
		for j, b := range q {
			tmp.Mul(a, b)
			out[i+j].Add(out[i+j], tmp)
		}
	}
	return out.trim()
}

// Scale multiplies every coefficient by c.
func (p Poly) Scale(c *big.Rat) Poly {
	out := make(Poly, len(p))
	for i, a := range p {
		out[i] = new(big.Rat).Mul(a, c)
	}
	return out.trim()
}

// DivMod divides p by q, which must be nonzero.
func (p Poly) DivMod(q Poly) (quo, rem Poly) {
	if q.IsZero() {
		panic("expr: polynomial division by zero")
	}
	rem = make(Poly, len(p))
	for i, c := range p {
		rem[i] = new(big.Rat).Set(c)
	}
	dq := q.Degree()
	if len(rem)-1 < dq {
		return nil, rem.trim()
	}
	quo = make(Poly, len(rem)-dq)
	for i := range quo {
		quo[i] = ratInt(0)
	}
	lead := q.Lead()
	tmp := new(big.Rat)
	for d := len(rem) - 1; d >= dq; d-- {
		if rem[d].Sign() == 0 {
			continue
		}
		c := new(big.Rat).Quo(rem[d], lead)
		quo[d-dq] = c
		for j, b := range q {
			tmp.Mul(c, b)
			rem[d-dq+j].Sub(rem[d-dq+j], tmp)
		}
	}
	return quo.trim(), rem.trim()
}

// Monic returns p scaled to a leading coefficient of one.
func (p Poly) Monic() Poly {
	if p.IsZero() {
		return nil
	}
	return p.Scale(new(big.Rat).Inv(p.Lead()))
}

// GCD returns the monic greatest common divisor of p and q.
func GCD(p, q Poly) Poly {
	a, b := p, q
	for !b.IsZero() {
		_, r := a.DivMod(b)
		a, b = b, r
	}
	return a.Monic()
}

// Derivative returns dp/dx.
func (p Poly) Derivative() Poly {
	if len(p) <= 1 {
		return nil
	}
	out := make(Poly, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = new(big.Rat).Mul(p[i], ratInt(int64(i)))
	}
	return out.trim()
}

// EvalRat evaluates p at r exactly (Horner).
func (p Poly) EvalRat(r *big.Rat) *big.Rat {
	acc := ratInt(0)
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(acc, r)
		acc.Add(acc, p[i])
	}
	return acc
}

// EvalFloat evaluates p at x in float64.
func (p Poly) EvalFloat(x float64) float64 {
	acc := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		c, _ := p[i].Float64()
		acc = acc*x + c
	}
	return acc
}

// EvalComplex evaluates p at z.
func (p Poly) EvalComplex(z complex128) complex128 {
	var acc complex128
	for i := len(p) - 1; i >= 0; i-- {
		c, _ := p[i].Float64()
		acc = acc*z + complex(c, 0)
	}
	return acc
}

// Floats returns the coefficients as float64, lowest degree first.
func (p Poly) Floats() []float64 {
	out := make([]float64, len(p))
	for i, c := range p {
		out[i], _ = c.Float64()
	}
	return out
}

// Pow raises p to a non-negative integer power.
func (p Poly) Pow(n int) Poly {
	result := Poly{ratInt(1)}
	base := p
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base)
		}
	}
	return result
}

func (p Poly) String() string {
	if p.IsZero() {
		return "0"
	}
	var terms []string
	for i := len(p) - 1; i >= 0; i-- {
		c := p[i]
		if c.Sign() == 0 {
			continue
		}
		coef := c.RatString()
		switch {
		case i == 0:
			terms = append(terms, coef)
		case coef == "1":
			terms = append(terms, monomial(i))
		case coef == "-1":
			terms = append(terms, "-"+monomial(i))
		default:
			terms = append(terms, coef+"*"+monomial(i))
		}
	}
	return strings.ReplaceAll(strings.Join(terms, " + "), "+ -", "- ")
}

func monomial(i int) string {
	if i == 1 {
		return "x"
	}
	return "x^" + big.NewInt(int64(i)).String()
}

// finiteRat converts a finite float64 to an exact rational.
func finiteRat(f float64) (*big.Rat, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return new(big.Rat).SetFloat64(f), true
}
