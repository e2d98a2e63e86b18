// Package bounds holds slider ranges and values. Updates are all or
// nothing: a rejected update leaves every slider as it was.
package bounds

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Bound is a slider range; Min <= Max and Step > 0.
type Bound struct {
	Min  float64 `yaml:"min" json:"min"`
	Max  float64 `yaml:"max" json:"max"`
	Step float64 `yaml:"step" json:"step"`
}

func (b Bound) Validate() error {
	for _, v := range [3]float64{b.Min, b.Max, b.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidBoundsError{Bound: b, Reason: "values must be finite"}
		}
	}
	if b.Min > b.Max {
		return &InvalidBoundsError{Bound: b, Reason: "min must not exceed max"}
	}
	if b.Step <= 0 {
		return &InvalidBoundsError{Bound: b, Reason: "step must be positive"}
	}
	return nil
}

// Snap clamps v into the range and moves it to the nearest Min + k·Step.
func (b Bound) Snap(v float64) float64 {
	if v <= b.Min {
		return b.Min
	}
	k := math.Round((v - b.Min) / b.Step)
	out := round(b.Min+k*b.Step, max(decimals(b.Min), decimals(b.Step)))
	if out > b.Max {
		k = math.Floor((b.Max - b.Min) / b.Step)
		out = round(b.Min+k*b.Step, max(decimals(b.Min), decimals(b.Step)))
	}
	return out
}

func decimals(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

func round(v float64, places int) float64 {
	if places > 12 {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Slider is a named bound with its current value.
type Slider struct {
	Name  string
	Bound Bound
	Value float64
}

// Snapshot is an immutable copy of every slider, in registration order.
type Snapshot struct {
	Sliders []Slider
}

func (s Snapshot) Get(name string) (Slider, bool) {
	for _, sl := range s.Sliders {
		if sl.Name == name {
			return sl, true
		}
	}
	return Slider{}, false
}

func (s Snapshot) Value(name string) (float64, error) {
	sl, ok := s.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCoefficient, name)
	}
	return sl.Value, nil
}

// Controller owns the slider set. It is not safe for concurrent use.
type Controller struct {
	order    []string
	sliders  map[string]Slider
	onChange func(name string, snap Snapshot)
}

// NewController registers sliders in order. Values are snapped into
// their bounds.
func NewController(sliders ...Slider) (*Controller, error) {
	c := &Controller{sliders: make(map[string]Slider, len(sliders))}
	for _, s := range sliders {
		if _, dup := c.sliders[s.Name]; dup {
			return nil, fmt.Errorf("bounds: duplicate slider %q", s.Name)
		}
		if err := s.Bound.Validate(); err != nil {
			err.(*InvalidBoundsError).Name = s.Name
			return nil, err
		}
		s.Value = s.Bound.Snap(s.Value)
		c.order = append(c.order, s.Name)
		c.sliders[s.Name] = s
	}
	return c, nil
}

// OnChange registers fn to run after every accepted change.
func (c *Controller) OnChange(fn func(name string, snap Snapshot)) {
	c.onChange = fn
}

func (c *Controller) Names() []string {
	return append([]string(nil), c.order...)
}

func (c *Controller) lookup(name string) (Slider, error) {
	s, ok := c.sliders[name]
	if !ok {
		return Slider{}, fmt.Errorf("%w: %s", ErrUnknownCoefficient, name)
	}
	return s, nil
}

func (c *Controller) Slider(name string) (Slider, error) {
	return c.lookup(name)
}

// UpdateBounds parses the three fields and, only if all of them parse and
// form a valid range, replaces the bounds of name and resets its value to
// the new min.
func (c *Controller) UpdateBounds(name, minText, maxText, stepText string) error {
	s, err := c.lookup(name)
	if err != nil {
		return err
	}

	var vals [3]float64
	for i, f := range [3]struct{ field, text string }{
		{"min", minText}, {"max", maxText}, {"step", stepText},
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.text), 64)
		if err != nil {
			return &InvalidInputError{Name: name, Field: f.field, Text: f.text}
		}
		vals[i] = v
	}

	b := Bound{Min: vals[0], Max: vals[1], Step: vals[2]}
	if err := b.Validate(); err != nil {
		err.(*InvalidBoundsError).Name = name
		return err
	}

	s.Bound = b
	s.Value = b.Min
	c.sliders[name] = s
	c.notify(name)
	return nil
}

// SetValue snaps v into the bounds of name and stores it.
func (c *Controller) SetValue(name string, v float64) (float64, error) {
	s, err := c.lookup(name)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) {
		return s.Value, &InvalidInputError{Name: name, Field: "value", Text: "NaN"}
	}
	s.Value = s.Bound.Snap(v)
	c.sliders[name] = s
	c.notify(name)
	return s.Value, nil
}

// SetValueText parses text and stores it like SetValue.
func (c *Controller) SetValueText(name, text string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		if _, lerr := c.lookup(name); lerr != nil {
			return 0, lerr
		}
		return 0, &InvalidInputError{Name: name, Field: "value", Text: text}
	}
	return c.SetValue(name, v)
}

// Nudge moves name by steps increments.
func (c *Controller) Nudge(name string, steps int) (float64, error) {
	s, err := c.lookup(name)
	if err != nil {
		return 0, err
	}
	return c.SetValue(name, s.Value+float64(steps)*s.Bound.Step)
}

func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{Sliders: make([]Slider, 0, len(c.order))}
	for _, name := range c.order {
		snap.Sliders = append(snap.Sliders, c.sliders[name])
	}
	return snap
}

func (c *Controller) notify(name string) {
	if c.onChange != nil {
		c.onChange(name, c.Snapshot())
	}
}
