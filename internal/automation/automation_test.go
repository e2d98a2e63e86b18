package automation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/phaselab/internal/bounds"
	"github.com/san-kum/phaselab/internal/config"
	"github.com/san-kum/phaselab/internal/engine"
	"github.com/san-kum/phaselab/internal/linsys"
	"github.com/san-kum/phaselab/internal/solve"
	"github.com/san-kum/phaselab/internal/storage"
)

const script = `
name: walk
description: linear edits then a pitchfork
steps:
  - action: linear
    matrix: [1, 2, 3, 4]
  - action: coefficient
    name: a11
    value: 3
  - action: bounds
    name: a22
    min: "-5"
    max: "5"
    step: "abc"
    expect_error: true
  - action: function
    formula: alpha*x - x^3
    alpha: 1
    start: -3
    end: 3
    ylim: 10
  - action: alpha
    value: 4
  - action: export
`

func newRunner(t *testing.T, st *storage.Store) (*Runner, *engine.Engine) {
	t.Helper()
	eng, err := engine.New(config.DefaultConfig())
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return NewRunner(eng, st, nil), eng
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(script))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	st := storage.New(t.TempDir())
	r, eng := newRunner(t, st)

	results, err := r.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}

	if got := results[1].Linear.Matrix.A11; got != 3 {
		t.Errorf("a11 = %v, want 3", got)
	}
	if !errors.Is(results[2].Err, bounds.ErrInvalidInput) {
		t.Errorf("bounds step err = %v", results[2].Err)
	}
	if results[2].Linear != results[1].Linear {
		t.Error("failed step should keep the previous linear result")
	}

	fn := eng.LastFunction()
	if fn.Input.Alpha != 4 || fn.Input.Formula != "alpha*x - x^3" {
		t.Errorf("last function input %+v", fn.Input)
	}
	if len(fn.Classes.Real) != 3 {
		t.Errorf("expected 3 real roots at alpha=4, got %d", len(fn.Classes.Real))
	}

	if len(results[5].RunIDs) != 2 {
		t.Fatalf("export ids %v", results[5].RunIDs)
	}
	runs, err := st.List()
	if err != nil || len(runs) != 2 {
		t.Errorf("stored runs %v, %v", runs, err)
	}
}

func TestRunScenario_UnexpectedError(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Action: ActionLinear, Matrix: []float64{1, 0, 0, 1}},
		{Action: ActionCoefficient, Name: "b7", Value: 1},
		{Action: ActionLinear, Matrix: []float64{2, 0, 0, 2}},
	}}
	r, _ := newRunner(t, nil)
	results, err := r.Run(context.Background(), sc)
	if !errors.Is(err, bounds.ErrUnknownCoefficient) {
		t.Fatalf("err = %v", err)
	}
	if len(results) != 2 {
		t.Errorf("run should stop after the failing step, got %d results", len(results))
	}
}

func TestRunScenario_ExpectedErrorMissing(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Action: ActionLinear, Matrix: []float64{1, 0, 0, 1}, ExpectError: true},
	}}
	r, _ := newRunner(t, nil)
	if _, err := r.Run(context.Background(), sc); err == nil {
		t.Error("expected an error")
	}
}

func TestRunScenario_ExportWithoutStore(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Action: ActionLinear, Matrix: []float64{1, 0, 0, 1}},
		{Action: ActionExport},
	}}
	r, _ := newRunner(t, nil)
	if _, err := r.Run(context.Background(), sc); err == nil {
		t.Error("expected export to fail without a store")
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", "name: x\n"},
		{"unknown action", "steps:\n  - action: jump\n"},
		{"short matrix", "steps:\n  - action: linear\n    matrix: [1, 2]\n"},
		{"unnamed coefficient", "steps:\n  - action: coefficient\n    value: 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.data))
			if !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestRunSweep_Pitchfork(t *testing.T) {
	sweep := &ParameterSweep{
		Formula:  "alpha*x - x^3",
		Start:    -3,
		End:      3,
		AlphaMin: -1,
		AlphaMax: 1,
		NumSteps: 3,
	}
	results, err := RunSweep(context.Background(), sweep, solve.New(0, 0))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	wantReal := []int{1, 1, 3}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("alpha=%v: %v", r.Alpha, r.Err)
		}
		if len(r.Real) != wantReal[i] {
			t.Errorf("alpha=%v: %d real roots, want %d", r.Alpha, len(r.Real), wantReal[i])
		}
	}
	if results[0].Complex != 2 {
		t.Errorf("alpha=-1: %d complex roots, want 2", results[0].Complex)
	}
	if math.Abs(results[2].Real[0]+1) > 1e-9 || math.Abs(results[2].Real[2]-1) > 1e-9 {
		t.Errorf("alpha=1 roots %v", results[2].Real)
	}

	alphas, branches := Branches(results)
	if len(alphas) != 3 || len(branches) != 3 {
		t.Fatalf("got %d alphas, %d branches", len(alphas), len(branches))
	}
	if !math.IsNaN(branches[2][0]) || branches[2][2] != 1 {
		t.Errorf("top branch %v", branches[2])
	}
}

func TestRunSweep_RecordsFailures(t *testing.T) {
	sweep := &ParameterSweep{Formula: "alpha*x", Start: -1, End: 1, AlphaMin: -1, AlphaMax: 1, NumSteps: 3}
	results, err := RunSweep(context.Background(), sweep, solve.New(0, 0))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if !errors.Is(results[1].Err, solve.ErrSolverFailure) {
		t.Errorf("alpha=0 err = %v", results[1].Err)
	}
	if results[0].Err != nil || len(results[2].Real) != 1 {
		t.Errorf("results %+v", results)
	}
}

func TestRunSweep_Invalid(t *testing.T) {
	if _, err := RunSweep(context.Background(), &ParameterSweep{Formula: "x", AlphaMin: 0, AlphaMax: 1, NumSteps: 1}, solve.New(0, 0)); err == nil {
		t.Error("expected error for a single step")
	}
	if _, err := RunSweep(context.Background(), &ParameterSweep{Formula: "x", AlphaMin: 1, AlphaMax: 1, NumSteps: 5}, solve.New(0, 0)); err == nil {
		t.Error("expected error for an empty range")
	}
}

func TestMonteCarlo(t *testing.T) {
	cfg := &MonteCarloConfig{
		Base:         linsys.Matrix2x2{A11: -2, A12: 0, A21: 0, A22: -3},
		Perturbation: 0.1,
		NumTrials:    50,
		Seed:         7,
	}
	results, err := RunMonteCarlo(context.Background(), cfg)
	if err != nil {
		t.Fatalf("monte carlo: %v", err)
	}
	if len(results) != 50 {
		t.Fatalf("expected 50 trials, got %d", len(results))
	}
	stats := MonteCarloStats(results)
	if stats[linsys.StableNode]+stats[linsys.SpiralSink] != 50 {
		t.Errorf("small perturbations of a stable node should stay stable: %v", stats)
	}

	again, _ := RunMonteCarlo(context.Background(), cfg)
	if again[10].Matrix != results[10].Matrix {
		t.Error("same seed should reproduce trials")
	}
}

func TestMonteCarlo_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunMonteCarlo(ctx, &MonteCarloConfig{NumTrials: 10, Seed: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}

func TestRunner_OnStep(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Action: ActionLinear, Matrix: []float64{1, 0, 0, 1}},
		{Action: ActionLinear, Matrix: []float64{2, 0, 0, 2}},
	}}
	r, _ := newRunner(t, nil)
	var seen []int
	r.OnStep(func(res StepResult) { seen = append(seen, res.Index) })
	if _, err := r.Run(context.Background(), sc); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(seen) != 2 || seen[1] != 1 {
		t.Errorf("seen %v", seen)
	}
}

func TestRunSweep_Workers(t *testing.T) {
	base := ParameterSweep{Formula: "x^2 - alpha", Start: -5, End: 5, AlphaMin: -2, AlphaMax: 2, NumSteps: 41}
	serial, parallel := base, base
	serial.Workers, parallel.Workers = 1, 8

	a, err := RunSweep(context.Background(), &serial, solve.New(0, 0))
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	b, err := RunSweep(context.Background(), &parallel, solve.New(0, 0))
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	for i := range a {
		if a[i].Alpha != b[i].Alpha || len(a[i].Real) != len(b[i].Real) || a[i].Complex != b[i].Complex {
			t.Errorf("step %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestRunSweep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sweep := &ParameterSweep{Formula: "x^3 - alpha", Start: -5, End: 5, AlphaMin: 0, AlphaMax: 1, NumSteps: 4}
	if _, err := RunSweep(ctx, sweep, solve.New(0, 0)); err == nil {
		t.Error("expected an error from a cancelled context")
	}
}
