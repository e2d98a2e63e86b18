package solve

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"math/cmplx"

	"github.com/san-kum/phaselab/internal/expr"
	"gonum.org/v1/gonum/mat"
)

// Limits on the rational-root search. Beyond them the polynomial goes
// straight to the companion matrix.
const (
	maxCoeffBits  = 40
	maxCandidates = 200000
)

func solveRational(ctx context.Context, rf expr.RationalFunc) (RootSet, error) {
	if rf.Num.IsZero() {
		return nil, &FailureError{Reason: "expression is identically zero; every x is a root"}
	}
	return solvePoly(ctx, rf.Num, rf.Exact)
}

// solvePoly returns the distinct roots of p.
func solvePoly(ctx context.Context, p expr.Poly, exact bool) (RootSet, error) {
	roots := RootSet{}
	if p.Degree() <= 0 {
		return roots, nil
	}

	if d := p.Derivative(); !d.IsZero() {
		if g := expr.GCD(p, d); g.Degree() > 0 {
			p, _ = p.DivMod(g)
		}
	}

	if p[0].Sign() == 0 {
		roots = append(roots, Root{Exact: exact, Form: "0"})
		p = p[1:]
	}

	rats, rest, err := rationalRoots(ctx, p)
	if err != nil {
		return nil, err
	}
	for _, r := range rats {
		f, _ := r.Float64()
		roots = append(roots, Root{Re: f, Exact: exact, Form: r.RatString()})
	}
	p = rest

	switch p.Degree() {
	case -1, 0:
	case 1:
		r := new(big.Rat).Quo(new(big.Rat).Neg(p[0]), p[1])
		f, _ := r.Float64()
		roots = append(roots, Root{Re: f, Exact: exact, Form: r.RatString()})
	case 2:
		roots = append(roots, quadratic(p, exact)...)
	default:
		cr, err := companionRoots(ctx, p)
		if err != nil {
			return nil, err
		}
		roots = append(roots, cr...)
	}
	return roots, nil
}

// rationalRoots finds every rational root of p by the rational root
// theorem and returns them with the deflated remainder.
func rationalRoots(ctx context.Context, p expr.Poly) ([]*big.Rat, expr.Poly, error) {
	if p.Degree() < 1 {
		return nil, p, nil
	}
	ints := integerCoeffs(p)
	a0 := new(big.Int).Abs(ints[0])
	an := new(big.Int).Abs(ints[len(ints)-1])
	if a0.Sign() == 0 || a0.BitLen() > maxCoeffBits || an.BitLen() > maxCoeffBits {
		return nil, p, nil
	}

	num, err := divisors(ctx, a0.Uint64())
	if err != nil {
		return nil, nil, err
	}
	den, err := divisors(ctx, an.Uint64())
	if err != nil {
		return nil, nil, err
	}
	if len(num)*len(den) > maxCandidates {
		return nil, p, nil
	}

	var found []*big.Rat
	seen := make(map[string]bool)
	for i, q := range den {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		for _, n := range num {
			for _, sign := range []int64{1, -1} {
				if p.Degree() < 1 {
					return found, p, nil
				}
				r := new(big.Rat).SetFrac(new(big.Int).SetInt64(sign*int64(n)), new(big.Int).SetUint64(q))
				key := r.RatString()
				if seen[key] {
					continue
				}
				seen[key] = true
				if p.EvalRat(r).Sign() != 0 {
					continue
				}
				found = append(found, r)
				p, _ = p.DivMod(expr.Poly{new(big.Rat).Neg(r), big.NewRat(1, 1)})
			}
		}
	}
	return found, p, nil
}

// integerCoeffs scales p by the lcm of its denominators.
func integerCoeffs(p expr.Poly) []*big.Int {
	lcm := big.NewInt(1)
	g := new(big.Int)
	for _, c := range p {
		d := c.Denom()
		g.GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	out := make([]*big.Int, len(p))
	for i, c := range p {
		v := new(big.Int).Mul(c.Num(), new(big.Int).Quo(lcm, c.Denom()))
		out[i] = v
	}
	return out
}

func divisors(ctx context.Context, n uint64) ([]uint64, error) {
	var small, large []uint64
	for d := uint64(1); d*d <= n; d++ {
		if d%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if n%d != 0 {
			continue
		}
		small = append(small, d)
		if d != n/d {
			large = append(large, n/d)
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small, nil
}

// quadratic solves a degree-2 polynomial exactly: x = m ± sqrt(q) with
// m = -b/2a and q = (b^2 - 4ac)/4a^2.
func quadratic(p expr.Poly, exact bool) RootSet {
	a, b, c := p[2], p[1], p[0]
	twoA := new(big.Rat).Mul(big.NewRat(2, 1), a)
	m := new(big.Rat).Quo(new(big.Rat).Neg(b), twoA)

	disc := new(big.Rat).Mul(b, b)
	disc.Sub(disc, new(big.Rat).Mul(big.NewRat(4, 1), new(big.Rat).Mul(a, c)))
	q := new(big.Rat).Quo(disc, new(big.Rat).Mul(twoA, twoA))

	mf, _ := m.Float64()
	switch q.Sign() {
	case 0:
		return RootSet{{Re: mf, Exact: exact, Form: m.RatString()}}
	case 1:
		if s, ok := ratSqrtExact(q); ok {
			lo, hi := new(big.Rat).Sub(m, s), new(big.Rat).Add(m, s)
			lf, _ := lo.Float64()
			hf, _ := hi.Float64()
			return RootSet{
				{Re: lf, Exact: exact, Form: lo.RatString()},
				{Re: hf, Exact: exact, Form: hi.RatString()},
			}
		}
		s := ratSqrt(q)
		return RootSet{
			{Re: mf - s, Exact: exact, Form: surd(m, "-", "sqrt("+q.RatString()+")")},
			{Re: mf + s, Exact: exact, Form: surd(m, "+", "sqrt("+q.RatString()+")")},
		}
	}
	negQ := new(big.Rat).Neg(q)
	imag := "sqrt(" + negQ.RatString() + ")*I"
	if s, ok := ratSqrtExact(negQ); ok {
		imag = s.RatString() + "*I"
		if s.Cmp(big.NewRat(1, 1)) == 0 {
			imag = "I"
		}
	}
	s := ratSqrt(negQ)
	return RootSet{
		{Re: mf, Im: -s, Exact: exact, Form: surd(m, "-", imag)},
		{Re: mf, Im: s, Exact: exact, Form: surd(m, "+", imag)},
	}
}

func surd(m *big.Rat, op, term string) string {
	if m.Sign() == 0 {
		if op == "-" {
			return "-" + term
		}
		return term
	}
	return fmt.Sprintf("%s %s %s", m.RatString(), op, term)
}

func ratSqrt(q *big.Rat) float64 {
	f := new(big.Float).SetPrec(200).SetRat(q)
	f.Sqrt(f)
	v, _ := f.Float64()
	return v
}

func ratSqrtExact(q *big.Rat) (*big.Rat, bool) {
	n, d := q.Num(), q.Denom()
	sn, sd := new(big.Int).Sqrt(n), new(big.Int).Sqrt(d)
	if new(big.Int).Mul(sn, sn).Cmp(n) != 0 || new(big.Int).Mul(sd, sd).Cmp(d) != 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(sn, sd), true
}

// companionRoots finds the roots of p as eigenvalues of its companion
// matrix. Real eigenvalues come back with an exactly zero imaginary part.
func companionRoots(ctx context.Context, p expr.Poly) (RootSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := p.Degree()
	coeffs := p.Monic().Floats()
	c := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		if i > 0 {
			c.Set(i, i-1, 1)
		}
		c.Set(i, n-1, -coeffs[i])
	}

	var eig mat.Eigen
	if ok := eig.Factorize(c, mat.EigenNone); !ok {
		return nil, &FailureError{Reason: fmt.Sprintf("companion eigen-decomposition of degree %d did not converge", n)}
	}
	values := eig.Values(nil)

	dp := p.Derivative()
	roots := make(RootSet, 0, n)
	for _, z := range values {
		z = polish(p, dp, z)
		im := imag(z)
		if im == 0 {
			im = 0 // drop negative zero
		}
		roots = append(roots, Root{Re: real(z), Im: im})
	}
	return roots, nil
}

// polish applies a few Newton steps, keeping only improvements.
func polish(p, dp expr.Poly, z complex128) complex128 {
	best := cmplx.Abs(p.EvalComplex(z))
	for i := 0; i < 4; i++ {
		d := dp.EvalComplex(z)
		if d == 0 {
			break
		}
		next := z - p.EvalComplex(z)/d
		v := cmplx.Abs(p.EvalComplex(next))
		if math.IsNaN(v) || v >= best {
			break
		}
		z, best = next, v
	}
	return z
}
