// Package dynamo provides the flow primitives shared by the phase-line
// renderer and the linear-system analyzer.
//
// The package defines a minimal vocabulary for planar autonomous flows:
//
//   - [State]: point in the plane (or any small state vector)
//   - [System]: derivative field dX/dt = f(X)
//   - [Integrator]: single-step numerical integrator
//   - [FuncSystem]: adapter turning a plain func(x, y) (dx, dy) into a System
//
// # Example
//
//	sys := dynamo.FuncSystem(func(x, y float64) (float64, float64) { return -x, 0 })
//	integ := integrators.NewRK4()
//	next := integ.Step(sys, dynamo.State{1, 0}, 0.01)
package dynamo
