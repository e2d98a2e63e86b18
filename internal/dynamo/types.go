package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// System is an autonomous vector field.
type System interface {
	Derive(x State) State
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, dt float64) State
}

// FuncSystem adapts a planar derivative function to System.
type FuncSystem func(x, y float64) (dx, dy float64)

func (f FuncSystem) Derive(s State) State {
	dx, dy := f(s[0], s[1])
	return State{dx, dy}
}

func (f FuncSystem) StateDim() int { return 2 }

// Region reports whether a state lies inside the area of interest.
type Region func(x State) bool

// Box is the region |x_i| <= limit.
func Box(limit float64) Region {
	return func(x State) bool {
		for _, v := range x {
			if math.Abs(v) > limit {
				return false
			}
		}
		return true
	}
}

// Trajectory integrates dyn from x0 for at most steps steps, stopping early
// when the state becomes invalid or leaves inside.
func Trajectory(dyn System, integ Integrator, x0 State, dt float64, steps int, inside Region) ([]State, error) {
	if len(x0) != dyn.StateDim() {
		return nil, ErrDimensionMismatch
	}
	out := make([]State, 0, steps+1)
	x := x0.Clone()
	out = append(out, x)
	for i := 0; i < steps; i++ {
		next := integ.Step(dyn, x, dt)
		if !next.IsValid() {
			return out, &TrajectoryError{Step: i + 1, State: next, Wrapped: ErrInvalidState}
		}
		if inside != nil && !inside(next) {
			return out, &TrajectoryError{Step: i + 1, State: next, Wrapped: ErrUnstable}
		}
		out = append(out, next)
		x = next
	}
	return out, nil
}
