package dynamics

import (
	"fmt"
	"math"

	"github.com/qudyn/qudyn/internal/integrators"
)

// MethodExact is a reserved method name for a future closed-form
// propagator. Selecting it is a well-defined error, not a silent fallback.
const MethodExact = "exact"

// Options configures a solve run. The engines read it and never mutate it.
type Options struct {
	// Method names the step method: "rk4" (default), "rk2", "euler", or
	// the reserved "exact".
	Method string

	// MarkovTime is the cutoff beyond which the memory-kernel dressing is
	// frozen at its last value (time-dependent Redfield only). Default
	// +Inf: never freeze.
	MarkovTime float64

	// SecularTol is the frequency tolerance for keeping a term in the
	// secular generator.
	SecularTol float64

	// Progress prints the step index at each sampled time.
	Progress bool
}

func DefaultOptions() Options {
	return Options{
		Method:     "rk4",
		MarkovTime: math.Inf(1),
		SecularTol: 1e-8,
	}
}

// normalize fills zero-value fields with defaults and resolves the step
// method to a tableau.
func (o *Options) normalize() (integrators.Tableau, error) {
	if o.Method == "" {
		o.Method = "rk4"
	}
	if o.MarkovTime == 0 {
		o.MarkovTime = math.Inf(1)
	}
	if o.SecularTol <= 0 {
		o.SecularTol = 1e-8
	}
	if o.Method == MethodExact {
		return integrators.Tableau{}, fmt.Errorf("%w: exact propagator", ErrNotImplemented)
	}
	return integrators.ByName(o.Method)
}
