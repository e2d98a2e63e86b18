package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/phaselab/internal/bounds"
	"github.com/san-kum/phaselab/internal/expr"
	"gopkg.in/yaml.v3"
)

const (
	DefaultA11 = 10.0
	DefaultA12 = -8.0
	DefaultA21 = 10.0
	DefaultA22 = 10.0

	DefaultCoeffMin  = -20.0
	DefaultCoeffMax  = 20.0
	DefaultCoeffStep = 1.0

	DefaultFormula   = "x"
	DefaultAlpha     = 1.0
	DefaultAlphaMin  = -5.0
	DefaultAlphaMax  = 20.0
	DefaultAlphaStep = 0.1
	DefaultStart     = -20.0
	DefaultEnd       = 20.0
	DefaultYLim      = 20.0
	DefaultSamples   = 400

	DefaultQuiverScale  = 1000.0
	DefaultDisplayScale = 20.0
	DefaultPrecision    = 5
	DefaultRootDigits   = 6
	DefaultTimeout      = 2 * time.Second
	DefaultScanPoints   = 2001
)

// Coefficients are the slider names of the linear system, in display order.
var Coefficients = []string{"a11", "a12", "a21", "a22"}

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Linear   LinearConfig   `yaml:"linear"`
	Function FunctionConfig `yaml:"function"`
	Solver   SolverConfig   `yaml:"solver"`
	Display  DisplayConfig  `yaml:"display"`
}

type LinearConfig struct {
	A11         float64                 `yaml:"a11"`
	A12         float64                 `yaml:"a12"`
	A21         float64                 `yaml:"a21"`
	A22         float64                 `yaml:"a22"`
	Bounds      map[string]bounds.Bound `yaml:"bounds"`
	QuiverScale float64                 `yaml:"quiver_scale"`
}

type FunctionConfig struct {
	Formula     string       `yaml:"formula"`
	Alpha       float64      `yaml:"alpha"`
	AlphaBounds bounds.Bound `yaml:"alpha_bounds"`
	Start       float64      `yaml:"start"`
	End         float64      `yaml:"end"`
	YLim        float64      `yaml:"ylim"`
	Samples     int          `yaml:"samples"`
}

type SolverConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	ScanPoints int           `yaml:"scan_points"`
}

type DisplayConfig struct {
	Scale      float64 `yaml:"scale"`
	Precision  int     `yaml:"precision"`
	RootDigits int     `yaml:"root_digits"`
	Integrator string  `yaml:"integrator"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
}

func DefaultConfig() *Config {
	coeff := bounds.Bound{Min: DefaultCoeffMin, Max: DefaultCoeffMax, Step: DefaultCoeffStep}
	return &Config{
		Linear: LinearConfig{
			A11: DefaultA11, A12: DefaultA12, A21: DefaultA21, A22: DefaultA22,
			Bounds: map[string]bounds.Bound{
				"a11": coeff, "a12": coeff, "a21": coeff, "a22": coeff,
			},
			QuiverScale: DefaultQuiverScale,
		},
		Function: FunctionConfig{
			Formula:     DefaultFormula,
			Alpha:       DefaultAlpha,
			AlphaBounds: bounds.Bound{Min: DefaultAlphaMin, Max: DefaultAlphaMax, Step: DefaultAlphaStep},
			Start:       DefaultStart,
			End:         DefaultEnd,
			YLim:        DefaultYLim,
			Samples:     DefaultSamples,
		},
		Solver: SolverConfig{
			Timeout:    DefaultTimeout,
			ScanPoints: DefaultScanPoints,
		},
		Display: DisplayConfig{
			Scale:      DefaultDisplayScale,
			Precision:  DefaultPrecision,
			RootDigits: DefaultRootDigits,
			Integrator: "rk4",
			Width:      72,
			Height:     18,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	for _, name := range Coefficients {
		b, ok := c.Linear.Bounds[name]
		if !ok {
			return fmt.Errorf("%w: no bounds for %s", ErrInvalidConfig, name)
		}
		if err := b.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}
	if err := c.Function.AlphaBounds.Validate(); err != nil {
		return fmt.Errorf("%w: alpha: %v", ErrInvalidConfig, err)
	}
	if _, err := expr.Parse(c.Function.Formula); err != nil {
		return fmt.Errorf("%w: formula: %v", ErrInvalidConfig, err)
	}
	if c.Function.Start >= c.Function.End {
		return fmt.Errorf("%w: start %g must be below end %g", ErrInvalidConfig, c.Function.Start, c.Function.End)
	}
	if c.Function.YLim <= 0 {
		return fmt.Errorf("%w: ylim must be positive", ErrInvalidConfig)
	}
	if c.Function.Samples < 2 {
		return fmt.Errorf("%w: samples must be at least 2", ErrInvalidConfig)
	}
	if c.Solver.Timeout <= 0 {
		return fmt.Errorf("%w: solver timeout must be positive", ErrInvalidConfig)
	}
	// A quiver scale of 0 lets the figure fit arrows to the grid cells.
	if c.Linear.QuiverScale < 0 {
		return fmt.Errorf("%w: quiver scale must not be negative", ErrInvalidConfig)
	}
	if c.Display.Scale <= 0 {
		return fmt.Errorf("%w: display scale must be positive", ErrInvalidConfig)
	}
	if c.Display.Precision < 0 || c.Display.Precision > 15 {
		return fmt.Errorf("%w: precision %d outside [0, 15]", ErrInvalidConfig, c.Display.Precision)
	}
	if c.Display.RootDigits < 1 || c.Display.RootDigits > 17 {
		return fmt.Errorf("%w: root digits %d outside [1, 17]", ErrInvalidConfig, c.Display.RootDigits)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Linear.Bounds = make(map[string]bounds.Bound, len(c.Linear.Bounds))
	for k, v := range c.Linear.Bounds {
		out.Linear.Bounds[k] = v
	}
	return &out
}

// Values returns a11, a12, a21, a22.
func (l LinearConfig) Values() [4]float64 {
	return [4]float64{l.A11, l.A12, l.A21, l.A22}
}

// Sliders returns the coefficient sliders in display order.
func (c *Config) Sliders() []bounds.Slider {
	vals := c.Linear.Values()
	out := make([]bounds.Slider, len(Coefficients))
	for i, name := range Coefficients {
		out[i] = bounds.Slider{Name: name, Bound: c.Linear.Bounds[name], Value: vals[i]}
	}
	return out
}

func (c *Config) AlphaSlider() bounds.Slider {
	return bounds.Slider{Name: "alpha", Bound: c.Function.AlphaBounds, Value: c.Function.Alpha}
}
