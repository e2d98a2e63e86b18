// Package engine exposes the operations the input surfaces drive:
// recomputing the linear system, recomputing the function analysis and
// updating slider bounds. It keeps the last valid result of each and
// hands out scenes for the renderers.
//
// An Engine is meant to be driven from a single goroutine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/phaselab/internal/analysis"
	"github.com/san-kum/phaselab/internal/bounds"
	"github.com/san-kum/phaselab/internal/config"
	"github.com/san-kum/phaselab/internal/dynamo"
	"github.com/san-kum/phaselab/internal/expr"
	"github.com/san-kum/phaselab/internal/integrators"
	"github.com/san-kum/phaselab/internal/linsys"
	"github.com/san-kum/phaselab/internal/phaseline"
	"github.com/san-kum/phaselab/internal/roots"
	"github.com/san-kum/phaselab/internal/scene"
	"github.com/san-kum/phaselab/internal/solve"
)

const (
	OpLinear   = "recomputeLinearSystem"
	OpFunction = "recomputeFunctionAnalysis"
	OpBounds   = "updateBounds"
)

// AlphaSlider is the slider name of the function parameter.
const AlphaSlider = "alpha"

type Engine struct {
	cfg      *config.Config
	log      *slog.Logger
	solver   *solve.Solver
	renderer phaseline.Renderer
	sliders  *bounds.Controller

	lastLinear   *LinearResult
	lastFunction *FunctionResult
	lastInput    *FunctionInput

	pending sliderChange
}

// sliderChange is what the slider hook recomputed, handed back to the
// engine method that moved the slider.
type sliderChange struct {
	ctx      context.Context
	linear   *LinearResult
	function *FunctionResult
	err      error
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithSolver(s *solve.Solver) Option {
	return func(e *Engine) { e.solver = s }
}

func WithRenderer(r phaseline.Renderer) Option {
	return func(e *Engine) { e.renderer = r }
}

func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sliders, err := bounds.NewController(append(cfg.Sliders(), cfg.AlphaSlider())...)
	if err != nil {
		return nil, err
	}

	stream := phaseline.NewStreamRenderer()
	stream.Integrator = cfg.Display.Integrator
	e := &Engine{
		cfg:      cfg.Clone(),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		solver:   solve.New(cfg.Solver.Timeout, cfg.Solver.ScanPoints),
		renderer: stream,
		sliders:  sliders,
	}
	for _, opt := range opts {
		opt(e)
	}
	sliders.OnChange(e.onSlider)
	return e, nil
}

func (e *Engine) Config() *config.Config { return e.cfg.Clone() }

// Sliders returns the slider controller. Every accepted change made
// through it recomputes the analysis that depends on the slider.
func (e *Engine) Sliders() *bounds.Controller { return e.sliders }

// LastLinear returns the last successful linear result, or nil.
func (e *Engine) LastLinear() *LinearResult { return e.lastLinear }

// LastFunction returns the last successful function result, or nil.
func (e *Engine) LastFunction() *FunctionResult { return e.lastFunction }

func (e *Engine) fail(op string, err error, attrs ...any) error {
	e.log.Warn("recompute failed", append([]any{"op", op, "err", err}, attrs...)...)
	return &RecomputeError{Op: op, Err: err}
}

// LinearResult is everything derived from one coefficient matrix.
// GrowthRate is measured on integrated orbits and should agree with the
// largest eigenvalue real part.
type LinearResult struct {
	linsys.Analysis
	Orbits     []analysis.Orbit
	GrowthRate float64
	Scene      scene.Scene
}

// RecomputeLinearSystem analyzes A = [[a11, a12], [a21, a22]].
func (e *Engine) RecomputeLinearSystem(a11, a12, a21, a22 float64) (*LinearResult, error) {
	m := linsys.Matrix2x2{A11: a11, A12: a12, A21: a21, A22: a22}
	a, err := linsys.AnalyzeWith(m, e.cfg.Display.Scale, e.cfg.Display.Precision)
	if err != nil {
		return nil, e.fail(OpLinear, err, "matrix", m.String())
	}
	res := &LinearResult{Analysis: *a}
	if err := e.integrate(res); err != nil {
		return nil, e.fail(OpLinear, err, "matrix", m.String())
	}
	res.Scene = e.linearScene(res)
	e.lastLinear = res
	e.log.Debug("linear system recomputed", "matrix", m.String(), "equilibrium", a.Equilibrium.String())
	return res, nil
}

const (
	orbitSeeds  = 8
	orbitRadius = 8.0
	orbitSteps  = 400
	growthSteps = 1000
)

// integrate fills in the orbits and growth rate. The step size follows
// the fastest eigenvalue so every matrix gets a comparable picture.
func (e *Engine) integrate(res *LinearResult) error {
	integ, ok := integrators.ByName(e.cfg.Display.Integrator)
	if !ok {
		integ = integrators.NewRK4()
	}
	scale := 1.0
	for i := range res.ValuesRe {
		scale = max(scale, math.Hypot(res.ValuesRe[i], res.ValuesIm[i]))
	}
	dt := 0.02 / scale

	sys := analysis.Linear(res.Matrix)
	orbits, err := analysis.Portrait(context.Background(), sys, integ,
		analysis.Ring(orbitRadius, orbitSeeds), dt, orbitSteps, dynamo.Box(linsys.FieldMax))
	if err != nil {
		return err
	}
	res.Orbits = orbits
	res.GrowthRate = analysis.GrowthRate(sys, integ, dynamo.State{0, 0}, dt, growthSteps*dt, 1e-6)
	return nil
}

// RecomputeFromSliders runs RecomputeLinearSystem on the current
// coefficient slider values.
func (e *Engine) RecomputeFromSliders() (*LinearResult, error) {
	m, err := matrixOf(e.sliders.Snapshot())
	if err != nil {
		return nil, e.fail(OpLinear, err)
	}
	return e.RecomputeLinearSystem(m.A11, m.A12, m.A21, m.A22)
}

func matrixOf(snap bounds.Snapshot) (linsys.Matrix2x2, error) {
	var v [4]float64
	for i, name := range config.Coefficients {
		x, err := snap.Value(name)
		if err != nil {
			return linsys.Matrix2x2{}, err
		}
		v[i] = x
	}
	return linsys.Matrix2x2{A11: v[0], A12: v[1], A21: v[2], A22: v[3]}, nil
}

// onSlider is the slider controller hook. A coefficient change recomputes
// the linear system; an alpha change reruns the last function input, or
// the configured one if nothing ran yet.
func (e *Engine) onSlider(name string, snap bounds.Snapshot) {
	ctx := e.pending.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if name == AlphaSlider {
		in := e.DefaultFunctionInput()
		if e.lastInput != nil {
			in = *e.lastInput
		}
		in.Alpha, _ = snap.Value(AlphaSlider)
		e.pending.function, e.pending.err = e.RecomputeFunctionAnalysis(ctx, in)
		return
	}
	m, err := matrixOf(snap)
	if err != nil {
		e.pending.err = e.fail(OpLinear, err)
		return
	}
	e.pending.linear, e.pending.err = e.RecomputeLinearSystem(m.A11, m.A12, m.A21, m.A22)
}

// move runs a slider change and returns what the hook recomputed.
func (e *Engine) move(ctx context.Context, change func() error) (sliderChange, error) {
	e.pending = sliderChange{ctx: ctx}
	defer func() { e.pending = sliderChange{} }()
	if err := change(); err != nil {
		return sliderChange{}, err
	}
	return e.pending, e.pending.err
}

// SetCoefficient moves a coefficient slider and recomputes the linear
// system.
func (e *Engine) SetCoefficient(name string, v float64) (*LinearResult, error) {
	if !slices.Contains(config.Coefficients, name) {
		return nil, e.fail(OpLinear, fmt.Errorf("%w: %s", bounds.ErrUnknownCoefficient, name))
	}
	ch, err := e.move(context.Background(), func() error {
		_, err := e.sliders.SetValue(name, v)
		return err
	})
	if err != nil {
		return nil, e.wrap(OpLinear, err)
	}
	return ch.linear, nil
}

// UpdateBounds replaces the bounds of a slider. The value resets to the
// new min, which recomputes the linear system for a coefficient and the
// function analysis for alpha.
func (e *Engine) UpdateBounds(name, minText, maxText, stepText string) error {
	var rejected error
	_, err := e.move(context.Background(), func() error {
		rejected = e.sliders.UpdateBounds(name, minText, maxText, stepText)
		return rejected
	})
	if rejected != nil {
		return e.fail(OpBounds, rejected, "name", name)
	}
	if err != nil {
		return err
	}
	e.log.Debug("bounds updated", "name", name, "min", minText, "max", maxText, "step", stepText)
	return nil
}

// wrap reports a rejected slider change. Recompute errors pass through
// since the hook already logged them.
func (e *Engine) wrap(op string, err error) error {
	var re *RecomputeError
	if errors.As(err, &re) {
		return err
	}
	return e.fail(op, err)
}

// FunctionInput is one function analysis request.
type FunctionInput struct {
	Formula    string
	Alpha      float64
	Start, End float64
	YLim       float64
}

// FunctionResult is everything derived from one function input.
type FunctionResult struct {
	Input    FunctionInput
	Expr     *expr.Expression
	X, Y     []float64
	Roots    solve.RootSet
	Classes  roots.Classification
	Digits   int
	Phase    scene.Panel
	Title    string
	Duration time.Duration
	Scene    scene.Scene
}

// RecomputeFunctionAnalysis samples, solves and renders f(x, alpha).
func (e *Engine) RecomputeFunctionAnalysis(ctx context.Context, in FunctionInput) (*FunctionResult, error) {
	start := time.Now()
	if in.YLim <= 0 {
		return nil, e.fail(OpFunction, fmt.Errorf("%w: ylim %g must be positive", bounds.ErrInvalidBounds, in.YLim))
	}

	ex, err := expr.Parse(in.Formula)
	if err != nil {
		return nil, e.fail(OpFunction, err, "formula", in.Formula)
	}
	flow, err := phaseline.Build(ex, in.Alpha, in.Start, in.End)
	if err != nil {
		return nil, e.fail(OpFunction, err, "formula", in.Formula)
	}

	xs := expr.Linspace(in.Start, in.End, e.cfg.Function.Samples)
	ys, err := ex.EvalSlice(xs, in.Alpha)
	if err != nil {
		return nil, e.fail(OpFunction, err, "formula", in.Formula)
	}

	set, err := e.solver.Solve(ctx, solve.Request{Expr: ex, Alpha: in.Alpha, Domain: [2]float64{in.Start, in.End}})
	if err != nil {
		return nil, e.fail(OpFunction, err, "formula", in.Formula, "alpha", in.Alpha)
	}
	classes := roots.ClassifyDigits(set, e.cfg.Display.RootDigits)

	phase, err := e.renderer.Render(ctx, flow)
	if err != nil {
		return nil, e.fail(OpFunction, err, "formula", in.Formula)
	}

	res := &FunctionResult{
		Input:   in,
		Expr:    ex,
		X:       xs,
		Y:       ys,
		Roots:   set,
		Classes: classes,
		Digits:  e.cfg.Display.RootDigits,
		Phase:   phase,
		Title:   functionTitle(in.Formula, in.Alpha),
	}
	res.Scene = e.functionScene(res)
	res.Duration = time.Since(start)

	e.lastFunction = res
	e.lastInput = &in
	e.log.Debug("function recomputed", "formula", in.Formula, "alpha", in.Alpha,
		"real", len(classes.Real), "complex", len(classes.Complex), "took", res.Duration)
	return res, nil
}

// RecomputeFunctionText parses the raw text fields of the function view
// and runs RecomputeFunctionAnalysis. Nothing runs unless every field is
// a number.
func (e *Engine) RecomputeFunctionText(ctx context.Context, formula, alphaText, startText, endText, ylimText string) (*FunctionResult, error) {
	var vals [4]float64
	for i, f := range [4]struct{ field, text string }{
		{"alpha", alphaText}, {"start", startText}, {"end", endText}, {"ylim", ylimText},
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.text), 64)
		if err != nil {
			return nil, e.fail(OpFunction, &bounds.InvalidInputError{Name: "function", Field: f.field, Text: f.text})
		}
		vals[i] = v
	}
	return e.RecomputeFunctionAnalysis(ctx, FunctionInput{
		Formula: formula,
		Alpha:   vals[0],
		Start:   vals[1],
		End:     vals[2],
		YLim:    vals[3],
	})
}

// SetAlpha snaps v to the alpha slider and reruns the last function
// analysis with it.
func (e *Engine) SetAlpha(ctx context.Context, v float64) (*FunctionResult, error) {
	ch, err := e.move(ctx, func() error {
		_, err := e.sliders.SetValue(AlphaSlider, v)
		return err
	})
	if err != nil {
		return nil, e.wrap(OpFunction, err)
	}
	return ch.function, nil
}

// DefaultFunctionInput is the configured formula and domain at the current
// alpha slider value.
func (e *Engine) DefaultFunctionInput() FunctionInput {
	alpha, err := e.sliders.Snapshot().Value(AlphaSlider)
	if err != nil {
		alpha = e.cfg.Function.Alpha
	}
	return FunctionInput{
		Formula: e.cfg.Function.Formula,
		Alpha:   alpha,
		Start:   e.cfg.Function.Start,
		End:     e.cfg.Function.End,
		YLim:    e.cfg.Function.YLim,
	}
}

// LastInput returns the input of the last successful function analysis.
func (e *Engine) LastInput() (FunctionInput, bool) {
	if e.lastInput == nil {
		return FunctionInput{}, false
	}
	return *e.lastInput, true
}

// functionTitle prints alpha the way a slider shows it: 1 as "1.0".
func functionTitle(formula string, alpha float64) string {
	a := strconv.FormatFloat(alpha, 'f', -1, 64)
	if !strings.ContainsAny(a, ".eEnN") {
		a += ".0"
	}
	return fmt.Sprintf("Function: %s with alpha = %s", formula, a)
}
