package dynamics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/qudyn/qudyn/internal/integrators"
	"github.com/qudyn/qudyn/internal/quantum"
	"github.com/qudyn/qudyn/internal/results"
)

const gridTol = 1e-9

// checkTimes validates a uniformly spaced time grid and returns its step.
func checkTimes(times []float64) (float64, error) {
	if len(times) < 2 {
		return 0, ErrGridTooShort
	}
	diffs := make([]float64, len(times)-1)
	for i := range diffs {
		diffs[i] = times[i+1] - times[i]
	}
	dt := diffs[0]
	if dt <= 0 {
		return 0, fmt.Errorf("%w: non-increasing grid", ErrNonUniformGrid)
	}
	uniform := make([]float64, len(diffs))
	for i := range uniform {
		uniform[i] = dt
	}
	if !floats.EqualApprox(diffs, uniform, gridTol) {
		return 0, ErrNonUniformGrid
	}
	return dt, nil
}

// propagate drives one solve run: for each time index it refreshes any
// time-dependent operators, samples the lab-basis state at the configured
// stride, then advances the integrator by one step. Sampling reads the
// pre-step state for the current index.
func propagate(ham quantum.System, ode *integrators.Integrator, times []float64,
	opts *Options, res *results.Results, update func(t float64)) error {

	for i, t := range times {
		if update != nil {
			update(t)
		}
		if i%res.Every == 0 {
			if opts.Progress {
				fmt.Printf("step %d t=%.6g\n", i, t)
			}
			lab, err := ham.FromEigenbasis(ode.Y())
			if err != nil {
				return &SolveError{Step: i, Time: t, Wrapped: err}
			}
			if err := res.AnalyzeState(i, t, lab); err != nil {
				return &SolveError{Step: i, Time: t, Wrapped: err}
			}
		}
		ode.Step()
	}
	return nil
}
