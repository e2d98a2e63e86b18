package solve

import (
	"context"
	"math"
	"strconv"
)

// scan brackets sign changes of f on an n-point grid over domain and
// bisects each one. Brackets whose midpoint value blows up are poles and
// are dropped.
func scan(ctx context.Context, f func(float64) float64, domain [2]float64, n int) (RootSet, error) {
	step := (domain[1] - domain[0]) / float64(n-1)
	xs := make([]float64, n)
	ys := make([]float64, n)
	finite, zeros := 0, 0
	for i := range xs {
		xs[i] = domain[0] + float64(i)*step
		ys[i] = f(xs[i])
		if isFinite(ys[i]) {
			finite++
			if ys[i] == 0 {
				zeros++
			}
		}
	}
	if finite == 0 {
		return nil, &FailureError{Reason: "expression cannot be evaluated anywhere on the domain"}
	}
	if zeros == n {
		return nil, &FailureError{Reason: "expression is identically zero; every x is a root"}
	}

	roots := RootSet{}
	add := func(x float64) {
		if k := len(roots); k > 0 && math.Abs(roots[k-1].Re-x) <= 1e-9*(1+math.Abs(x)) {
			return
		}
		roots = append(roots, Root{Re: x})
	}

	for i := range xs {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if ys[i] == 0 {
			add(xs[i])
			continue
		}
		if i == 0 || !isFinite(ys[i-1]) || !isFinite(ys[i]) || ys[i-1] == 0 {
			continue
		}
		if math.Signbit(ys[i-1]) == math.Signbit(ys[i]) {
			continue
		}
		x, fx := bisect(f, xs[i-1], xs[i], ys[i-1])
		if !isFinite(fx) || math.Abs(fx) > 1e-6*math.Max(1, math.Min(math.Abs(ys[i-1]), math.Abs(ys[i]))) {
			continue
		}
		add(tidy(f, x, fx))
	}
	return roots, nil
}

func bisect(f func(float64) float64, lo, hi, flo float64) (float64, float64) {
	mid, fmid := lo, flo
	for i := 0; i < 200; i++ {
		mid = lo + (hi-lo)/2
		if mid == lo || mid == hi {
			break
		}
		fmid = f(mid)
		if fmid == 0 || !isFinite(fmid) {
			break
		}
		if math.Signbit(fmid) == math.Signbit(flo) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return mid, f(mid)
}

// tidy snaps x to zero or to 12 significant digits when that is at least
// as good a root.
func tidy(f func(float64) float64, x, fx float64) float64 {
	if math.Abs(x) < 1e-10 {
		if f0 := f(0); isFinite(f0) && math.Abs(f0) <= math.Abs(fx) {
			return 0
		}
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'g', 12, 64), 64)
	if err != nil {
		return x
	}
	if fr := f(r); isFinite(fr) && math.Abs(fr) <= math.Abs(fx) {
		return r
	}
	return x
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
