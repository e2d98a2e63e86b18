package expr

import (
	"math"
	"math/big"
	"strconv"
)

// MaxSymbolicDegree bounds the degree of polynomials built while lowering.
// Expressions beyond it are treated as transcendental.
const MaxSymbolicDegree = 256

// RationalFunc is P(x)/Q(x) with Q nonzero. Exact is false when a
// coefficient came from a floating-point constant such as pi or sin(2).
type RationalFunc struct {
	Num   Poly
	Den   Poly
	Exact bool
}

func (r RationalFunc) constant() (*big.Rat, bool) {
	if r.Num.Degree() > 0 || r.Den.Degree() > 0 {
		return nil, false
	}
	if r.Num.IsZero() {
		return ratInt(0), true
	}
	return new(big.Rat).Quo(r.Num[0], r.Den[0]), true
}

// Reduced cancels the common factor of numerator and denominator and makes
// the denominator monic.
func (r RationalFunc) Reduced() RationalFunc {
	if r.Num.IsZero() {
		return RationalFunc{Den: Poly{ratInt(1)}, Exact: r.Exact}
	}
	g := GCD(r.Num, r.Den)
	num, _ := r.Num.DivMod(g)
	den, _ := r.Den.DivMod(g)
	inv := new(big.Rat).Inv(den.Lead())
	return RationalFunc{Num: num.Scale(inv), Den: den.Scale(inv), Exact: r.Exact}
}

func (r RationalFunc) String() string {
	if r.Den.Degree() == 0 && r.Den[0].Cmp(ratInt(1)) == 0 {
		return r.Num.String()
	}
	return "(" + r.Num.String() + ")/(" + r.Den.String() + ")"
}

// Rational lowers the expression, with alpha bound to its shortest decimal
// value, to an exact rational function of x. It reports false when x
// occurs inside a function call, under a non-integer power, or when the
// result would exceed MaxSymbolicDegree.
func (e *Expression) Rational(alpha float64) (RationalFunc, bool) {
	a, ok := decimalRat(alpha)
	if !ok {
		return RationalFunc{}, false
	}
	l := &lowering{alpha: a, alphaVal: alpha}
	r, ok := l.lower(e.root)
	if !ok {
		return RationalFunc{}, false
	}
	return r.Reduced(), true
}

// decimalRat converts f through its shortest round-trip decimal form, so a
// slider value of 0.1 becomes exactly 1/10.
func decimalRat(f float64) (*big.Rat, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	return r, ok
}

type lowering struct {
	alpha    *big.Rat
	alphaVal float64
}

func constFunc(c *big.Rat, exact bool) RationalFunc {
	return RationalFunc{Num: PolyConst(c), Den: Poly{ratInt(1)}, Exact: exact}
}

func (l *lowering) lower(n Node) (RationalFunc, bool) {
	switch v := n.(type) {
	case *Num:
		if c, ok := new(big.Rat).SetString(v.Text); ok {
			return constFunc(c, true), true
		}
		c, ok := finiteRat(v.Value)
		if !ok {
			return RationalFunc{}, false
		}
		return constFunc(c, true), true
	case *Const:
		c, ok := finiteRat(constants[v.Name])
		if !ok {
			return RationalFunc{}, false
		}
		return constFunc(c, false), true
	case *Var:
		if v.Name == VarAlpha {
			return constFunc(l.alpha, true), true
		}
		return RationalFunc{Num: PolyX(), Den: Poly{ratInt(1)}, Exact: true}, true
	case *Unary:
		inner, ok := l.lower(v.X)
		if !ok {
			return RationalFunc{}, false
		}
		return RationalFunc{Num: inner.Num.Neg(), Den: inner.Den, Exact: inner.Exact}, true
	case *Binary:
		return l.lowerBinary(v)
	case *Call:
		return l.lowerConstant(v)
	}
	return RationalFunc{}, false
}

func (l *lowering) lowerBinary(b *Binary) (RationalFunc, bool) {
	left, ok := l.lower(b.L)
	if !ok {
		return RationalFunc{}, false
	}
	if b.Op == '^' {
		return l.lowerPow(b, left)
	}
	right, ok := l.lower(b.R)
	if !ok {
		return RationalFunc{}, false
	}
	exact := left.Exact && right.Exact
	var out RationalFunc
	switch b.Op {
	case '+':
		out = RationalFunc{Num: left.Num.Mul(right.Den).Add(right.Num.Mul(left.Den)), Den: left.Den.Mul(right.Den)}
	case '-':
		out = RationalFunc{Num: left.Num.Mul(right.Den).Sub(right.Num.Mul(left.Den)), Den: left.Den.Mul(right.Den)}
	case '*':
		out = RationalFunc{Num: left.Num.Mul(right.Num), Den: left.Den.Mul(right.Den)}
	case '/':
		if right.Num.IsZero() {
			return RationalFunc{}, false
		}
		out = RationalFunc{Num: left.Num.Mul(right.Den), Den: left.Den.Mul(right.Num)}
	default:
		return RationalFunc{}, false
	}
	out.Exact = exact
	if out.Num.Degree() > MaxSymbolicDegree || out.Den.Degree() > MaxSymbolicDegree {
		return RationalFunc{}, false
	}
	return out.Reduced(), true
}

func (l *lowering) lowerPow(b *Binary, base RationalFunc) (RationalFunc, bool) {
	exp, ok := l.lower(b.R)
	if !ok {
		return RationalFunc{}, false
	}
	k, ok := exp.constant()
	if !ok {
		return RationalFunc{}, false
	}
	if !k.IsInt() {
		// only a constant base survives a fractional power
		if _, isConst := base.constant(); !isConst {
			return RationalFunc{}, false
		}
		return l.lowerConstant(b)
	}
	if !k.Num().IsInt64() {
		return RationalFunc{}, false
	}
	n := k.Num().Int64()
	neg := n < 0
	if neg {
		n = -n
	}
	deg := max(base.Num.Degree(), base.Den.Degree())
	if deg > 0 && n > int64(MaxSymbolicDegree/deg) {
		return RationalFunc{}, false
	}
	if n > 4096 {
		return l.lowerConstant(b)
	}
	num, den := base.Num.Pow(int(n)), base.Den.Pow(int(n))
	if neg {
		if num.IsZero() {
			return RationalFunc{}, false
		}
		num, den = den, num
	}
	return RationalFunc{Num: num, Den: den, Exact: base.Exact && exp.Exact}.Reduced(), true
}

// lowerConstant folds an x-free subtree numerically.
func (l *lowering) lowerConstant(n Node) (RationalFunc, bool) {
	if dependsOn(n, VarX) {
		return RationalFunc{}, false
	}
	fn, err := compile(n)
	if err != nil {
		return RationalFunc{}, false
	}
	v, err := fn(0, l.alphaVal)
	if err != nil {
		return RationalFunc{}, false
	}
	c, ok := finiteRat(v)
	if !ok {
		return RationalFunc{}, false
	}
	return constFunc(c, false), true
}
