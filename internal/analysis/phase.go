package analysis

import (
	"context"
	"errors"
	"math"

	"github.com/san-kum/phaselab/internal/dynamo"
	"github.com/san-kum/phaselab/internal/linsys"
)

// Orbit is one integrated trajectory in the plane.
type Orbit struct {
	X, Y []float64
}

func (o Orbit) Len() int { return len(o.X) }

// Linear adapts dx/dt = A x to a planar system.
func Linear(m linsys.Matrix2x2) dynamo.FuncSystem {
	return dynamo.FuncSystem(m.Apply)
}

// Ring places n seeds evenly on a circle of the given radius.
func Ring(radius float64, n int) []dynamo.State {
	seeds := make([]dynamo.State, n)
	for k := range seeds {
		th := 2 * math.Pi * (float64(k) + 0.5) / float64(n)
		seeds[k] = dynamo.State{radius * math.Cos(th), radius * math.Sin(th)}
	}
	return seeds
}

// Grid places cols×rows seeds at cell centers of [lo, hi]².
func Grid(lo, hi float64, cols, rows int) []dynamo.State {
	cols, rows = max(cols, 1), max(rows, 1)
	w := hi - lo
	seeds := make([]dynamo.State, 0, cols*rows)
	for r := 0; r < rows; r++ {
		y := lo + w*(float64(r)+0.5)/float64(rows)
		for c := 0; c < cols; c++ {
			seeds = append(seeds, dynamo.State{lo + w*(float64(c)+0.5)/float64(cols), y})
		}
	}
	return seeds
}

// Portrait integrates every seed for at most steps steps. An orbit that
// leaves inside or blows up is kept up to its last valid point; orbits
// shorter than two points are dropped.
func Portrait(ctx context.Context, sys dynamo.System, integ dynamo.Integrator, seeds []dynamo.State, dt float64, steps int, inside dynamo.Region) ([]Orbit, error) {
	orbits := make([]Orbit, 0, len(seeds))
	for _, x0 := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		traj, err := dynamo.Trajectory(sys, integ, x0, dt, steps, inside)
		if err != nil && !errors.Is(err, dynamo.ErrUnstable) && !errors.Is(err, dynamo.ErrInvalidState) {
			return nil, err
		}
		if len(traj) < 2 {
			continue
		}
		o := Orbit{X: make([]float64, len(traj)), Y: make([]float64, len(traj))}
		for i, s := range traj {
			o.X[i], o.Y[i] = s[0], s[1]
		}
		orbits = append(orbits, o)
	}
	return orbits, nil
}
