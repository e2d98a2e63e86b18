package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/phaselab/internal/dynamo"
)

// rotation field: x' = y, y' = -x
var rotation = dynamo.FuncSystem(func(x, y float64) (float64, float64) { return y, -x })

func TestRK4Accuracy(t *testing.T) {
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(rotation, x, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-8 {
		t.Errorf("position error too large: got %.10f, expected %.10f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-8 {
		t.Errorf("velocity error too large: got %.10f, expected %.10f", x[1], expectedV)
	}
}

func TestEulerDecay(t *testing.T) {
	decay := dynamo.FuncSystem(func(x, y float64) (float64, float64) { return -x, 0 })
	integ := NewEuler()

	x := integ.Step(decay, dynamo.State{1, 0}, 0.5)
	if x[0] != 0.5 || x[1] != 0 {
		t.Errorf("expected (0.5, 0), got %v", x)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"rk4", "euler", ""} {
		if _, ok := ByName(name); !ok {
			t.Errorf("expected integrator for %q", name)
		}
	}
	if _, ok := ByName("verlet"); ok {
		t.Error("expected no integrator for verlet")
	}
}
