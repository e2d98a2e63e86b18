package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/san-kum/phaselab/internal/expr"
	"github.com/san-kum/phaselab/internal/linsys"
	"github.com/san-kum/phaselab/internal/roots"
	"github.com/san-kum/phaselab/internal/solve"
)

// ParameterSweep solves f(x, alpha) = 0 across a range of alpha values.
// Workers bounds how many alphas are solved at once; zero means one per
// CPU.
type ParameterSweep struct {
	Formula  string
	Start    float64
	End      float64
	AlphaMin float64
	AlphaMax float64
	NumSteps int
	Workers  int
}

// SweepResult holds the roots found at one alpha.
type SweepResult struct {
	Alpha   float64
	Real    []float64
	Complex int
	Err     error
}

// RunSweep solves at every alpha. A failed solve at one alpha is recorded
// and the sweep continues; a timeout or cancellation ends it.
func RunSweep(ctx context.Context, sweep *ParameterSweep, solver *solve.Solver) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("automation: sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	if !(sweep.AlphaMax > sweep.AlphaMin) {
		return nil, fmt.Errorf("automation: alpha range [%g, %g] is empty", sweep.AlphaMin, sweep.AlphaMax)
	}
	ex, err := expr.Parse(sweep.Formula)
	if err != nil {
		return nil, err
	}

	alphas := expr.Linspace(sweep.AlphaMin, sweep.AlphaMax, sweep.NumSteps)
	results := make([]SweepResult, len(alphas))
	errs := make([]error, len(alphas))

	workers := sweep.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, alpha := range alphas {
		wg.Add(1)
		go func(idx int, alpha float64) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx], errs[idx] = solveAt(ctx, solver, ex, alpha, sweep.Start, sweep.End)
		}(i, alpha)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func solveAt(ctx context.Context, solver *solve.Solver, ex *expr.Expression, alpha, start, end float64) (SweepResult, error) {
	set, err := solver.Solve(ctx, solve.Request{Expr: ex, Alpha: alpha, Domain: [2]float64{start, end}})
	if errors.Is(err, solve.ErrSolverTimeout) {
		return SweepResult{}, err
	}
	if ctx.Err() != nil {
		return SweepResult{}, ctx.Err()
	}
	res := SweepResult{Alpha: alpha, Err: err}
	if err == nil {
		c := roots.Classify(set)
		for _, p := range c.Real {
			res.Real = append(res.Real, p.X)
		}
		slices.Sort(res.Real)
		res.Complex = len(c.Complex)
	}
	return res, nil
}

// Branches turns a sweep into one series per root index, ordered by value.
// Alphas with fewer real roots leave NaN gaps.
func Branches(results []SweepResult) (alphas []float64, branches [][]float64) {
	n := 0
	for _, r := range results {
		n = max(n, len(r.Real))
	}
	branches = make([][]float64, n)
	for i := range branches {
		branches[i] = make([]float64, len(results))
	}
	alphas = make([]float64, len(results))
	for j, r := range results {
		alphas[j] = r.Alpha
		for i := range branches {
			if i < len(r.Real) {
				branches[i][j] = r.Real[i]
			} else {
				branches[i][j] = math.NaN()
			}
		}
	}
	return alphas, branches
}

// MonteCarloConfig perturbs a base matrix at random.
type MonteCarloConfig struct {
	Base         linsys.Matrix2x2
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID     int
	Matrix      linsys.Matrix2x2
	Equilibrium linsys.Equilibrium
}

// RunMonteCarlo classifies the origin of each perturbed matrix.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	jitter := func() float64 { return (rng.Float64() - 0.5) * 2 * cfg.Perturbation }

	for trial := 0; trial < cfg.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		m := linsys.Matrix2x2{
			A11: cfg.Base.A11 + jitter(),
			A12: cfg.Base.A12 + jitter(),
			A21: cfg.Base.A21 + jitter(),
			A22: cfg.Base.A22 + jitter(),
		}
		results = append(results, MonteCarloResult{
			TrialID:     trial,
			Matrix:      m,
			Equilibrium: linsys.Classify(m),
		})
	}

	return results, nil
}

// MonteCarloStats counts trials per equilibrium type.
func MonteCarloStats(results []MonteCarloResult) map[linsys.Equilibrium]int {
	counts := make(map[linsys.Equilibrium]int)
	for _, r := range results {
		counts[r.Equilibrium]++
	}
	return counts
}
