// Package analysis integrates planar systems for display and cross-checks.
//
//   - [Portrait]: orbits from a set of seeds, cut where they leave a region
//   - [Ring], [Grid]: seed layouts
//   - [GrowthRate]: largest exponential growth rate by trajectory separation
//
// For a linear system dx/dt = A x, [GrowthRate] converges to the largest
// real part among the eigenvalues of A:
//
//	sys := analysis.Linear(m)
//	rate := analysis.GrowthRate(sys, integrators.NewRK4(), dynamo.State{1, 1}, 0.01, 20, 1e-6)
package analysis
