package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/san-kum/phaselab/internal/engine"
	"github.com/san-kum/phaselab/internal/storage"
	"gopkg.in/yaml.v3"
)

const (
	ActionLinear      = "linear"
	ActionCoefficient = "coefficient"
	ActionBounds      = "bounds"
	ActionFunction    = "function"
	ActionAlpha       = "alpha"
	ActionExport      = "export"
)

var ErrInvalidScenario = errors.New("automation: invalid scenario")

// Scenario is a scripted sequence of user events.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one event. Which fields matter depends on Action.
type ScenarioStep struct {
	Action string    `yaml:"action"`
	Matrix []float64 `yaml:"matrix"`

	Name  string  `yaml:"name"`
	Value float64 `yaml:"value"`

	Min  string `yaml:"min"`
	Max  string `yaml:"max"`
	Step string `yaml:"step"`

	Formula string   `yaml:"formula"`
	Alpha   *float64 `yaml:"alpha"`
	Start   *float64 `yaml:"start"`
	End     *float64 `yaml:"end"`
	YLim    *float64 `yaml:"ylim"`

	// ExpectError marks a step that must fail. The run continues with the
	// engine's previous results in place.
	ExpectError bool `yaml:"expect_error"`
}

// StepResult records what a step produced. Linear and Function hold the
// engine's latest results after the step, successful or not.
type StepResult struct {
	Index    int
	Action   string
	Linear   *engine.LinearResult
	Function *engine.FunctionResult
	RunIDs   []string
	Err      error
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}
	for i, step := range s.Steps {
		switch step.Action {
		case ActionLinear:
			if len(step.Matrix) != 4 {
				return fmt.Errorf("%w: step %d: matrix needs 4 values, got %d", ErrInvalidScenario, i+1, len(step.Matrix))
			}
		case ActionCoefficient, ActionBounds:
			if step.Name == "" {
				return fmt.Errorf("%w: step %d: %s needs a name", ErrInvalidScenario, i+1, step.Action)
			}
		case ActionFunction, ActionAlpha, ActionExport:
		default:
			return fmt.Errorf("%w: step %d: unknown action %q", ErrInvalidScenario, i+1, step.Action)
		}
	}
	return nil
}

// Runner replays scenarios through an engine.
type Runner struct {
	eng    *engine.Engine
	store  *storage.Store
	log    *slog.Logger
	onStep func(StepResult)
}

// NewRunner returns a runner. A nil store makes export steps fail; a nil
// logger discards.
func NewRunner(eng *engine.Engine, store *storage.Store, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{eng: eng, store: store, log: log}
}

// OnStep registers fn to run after every step, failed or not.
func (r *Runner) OnStep(fn func(StepResult)) {
	r.onStep = fn
}

// Run executes all steps in order and stops at the first unexpected
// outcome.
func (r *Runner) Run(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		r.log.Info("running step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "action", step.Action)

		res := StepResult{Index: i, Action: step.Action}
		res.RunIDs, res.Err = r.apply(ctx, step)
		res.Linear = r.eng.LastLinear()
		res.Function = r.eng.LastFunction()
		results = append(results, res)
		if r.onStep != nil {
			r.onStep(res)
		}

		switch {
		case res.Err != nil && !step.ExpectError:
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Action, res.Err)
		case res.Err == nil && step.ExpectError:
			return results, fmt.Errorf("step %d (%s): expected an error", i+1, step.Action)
		case res.Err != nil:
			r.log.Info("step failed as expected", "step", i+1, "err", res.Err)
		}
	}

	return results, nil
}

func (r *Runner) apply(ctx context.Context, step ScenarioStep) ([]string, error) {
	switch step.Action {
	case ActionLinear:
		m := step.Matrix
		_, err := r.eng.RecomputeLinearSystem(m[0], m[1], m[2], m[3])
		return nil, err
	case ActionCoefficient:
		_, err := r.eng.SetCoefficient(step.Name, step.Value)
		return nil, err
	case ActionBounds:
		return nil, r.eng.UpdateBounds(step.Name, step.Min, step.Max, step.Step)
	case ActionFunction:
		_, err := r.eng.RecomputeFunctionAnalysis(ctx, r.functionInput(step))
		return nil, err
	case ActionAlpha:
		_, err := r.eng.SetAlpha(ctx, step.Value)
		return nil, err
	case ActionExport:
		return r.export()
	}
	return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidScenario, step.Action)
}

// functionInput overlays the step's fields on the last function input.
func (r *Runner) functionInput(step ScenarioStep) engine.FunctionInput {
	in, ok := r.eng.LastInput()
	if !ok {
		in = r.eng.DefaultFunctionInput()
	}
	if step.Formula != "" {
		in.Formula = step.Formula
	}
	if step.Alpha != nil {
		in.Alpha = *step.Alpha
	}
	if step.Start != nil {
		in.Start = *step.Start
	}
	if step.End != nil {
		in.End = *step.End
	}
	if step.YLim != nil {
		in.YLim = *step.YLim
	}
	return in
}

func (r *Runner) export() ([]string, error) {
	if r.store == nil {
		return nil, errors.New("automation: export needs a store")
	}
	if err := r.store.Init(); err != nil {
		return nil, err
	}
	var ids []string
	if lin := r.eng.LastLinear(); lin != nil {
		id, err := r.store.SaveLinear(lin)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	if fn := r.eng.LastFunction(); fn != nil {
		id, err := r.store.SaveFunction(fn)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errors.New("automation: nothing to export")
	}
	return ids, nil
}
