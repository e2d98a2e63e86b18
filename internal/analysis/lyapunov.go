package analysis

import (
	"math"

	"github.com/san-kum/phaselab/internal/dynamo"
)

// GrowthRate estimates the largest exponential growth rate of small
// separations along the trajectory from x0. The separation is renormalized
// to its initial size after every step.
//
// λ ≈ (1/t) Σ ln(|δx_k| / |δx_0|)
func GrowthRate(
	dyn dynamo.System,
	integ dynamo.Integrator,
	x0 dynamo.State,
	dt, duration float64,
	perturbation float64,
) float64 {
	if len(x0) == 0 || dt <= 0 || perturbation <= 0 {
		return 0
	}

	x := x0.Clone()
	xp := x0.Clone()
	for i := range xp {
		xp[i] += perturbation / math.Sqrt(float64(len(xp)))
	}
	d0 := perturbation

	sumLog := 0.0
	t := 0.0
	for t < duration {
		x = integ.Step(dyn, x, dt)
		xp = integ.Step(dyn, xp, dt)
		t += dt
		if !x.IsValid() || !xp.IsValid() {
			break
		}

		sep := 0.0
		for i := range x {
			diff := xp[i] - x[i]
			sep += diff * diff
		}
		sep = math.Sqrt(sep)
		if sep == 0 {
			break
		}
		sumLog += math.Log(sep / d0)

		scale := d0 / sep
		for i := range xp {
			xp[i] = x[i] + (xp[i]-x[i])*scale
		}
	}

	if t == 0 {
		return 0
	}
	return sumLog / t
}
