package solve

import (
	"context"
	"errors"
	"time"

	"github.com/san-kum/phaselab/internal/expr"
)

const (
	DefaultTimeout    = 2 * time.Second
	DefaultScanPoints = 2001
)

// DefaultDomain is scanned for transcendental expressions when a request
// names no domain.
var DefaultDomain = [2]float64{-20, 20}

// Request is an immutable snapshot of one solve.
type Request struct {
	Expr   *expr.Expression
	Alpha  float64
	Domain [2]float64
}

// Solver finds the roots of f(x, alpha) = 0 in x.
//
// Polynomial and rational expressions are solved exactly: every root is
// found, and real roots carry an imaginary part of exactly zero.
// Anything else is scanned over the request domain for sign changes, which
// finds real roots only.
type Solver struct {
	Timeout    time.Duration
	ScanPoints int

	work func(context.Context, Request) (RootSet, error)
}

func New(timeout time.Duration, scanPoints int) *Solver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if scanPoints < 2 {
		scanPoints = DefaultScanPoints
	}
	return &Solver{Timeout: timeout, ScanPoints: scanPoints}
}

// Solve runs the request under the solver's time budget. When the budget
// or ctx expires first it returns a *TimeoutError; the abandoned work
// sees a cancelled context and stops at its next check.
func (s *Solver) Solve(ctx context.Context, req Request) (RootSet, error) {
	if req.Expr == nil {
		return nil, &FailureError{Reason: "no expression"}
	}
	budget := s.Timeout
	if budget <= 0 {
		budget = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	work := s.work
	if work == nil {
		work = s.solve
	}

	type result struct {
		roots RootSet
		err   error
	}
	done := make(chan result, 1)
	go func() {
		roots, err := work(ctx, req)
		done <- result{roots, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && (errors.Is(r.err, context.DeadlineExceeded) || errors.Is(r.err, context.Canceled)) {
			return nil, &TimeoutError{Budget: budget}
		}
		return r.roots, r.err
	case <-ctx.Done():
		return nil, &TimeoutError{Budget: budget}
	}
}

func (s *Solver) solve(ctx context.Context, req Request) (RootSet, error) {
	if rf, ok := req.Expr.Rational(req.Alpha); ok {
		return solveRational(ctx, rf)
	}
	domain := req.Domain
	if domain[0] == domain[1] {
		domain = DefaultDomain
	}
	if domain[0] > domain[1] {
		domain[0], domain[1] = domain[1], domain[0]
	}
	n := s.ScanPoints
	if n < 2 {
		n = DefaultScanPoints
	}
	return scan(ctx, req.Expr.Func(req.Alpha), domain, n)
}
