package dynamics

import (
	"errors"
	"fmt"
)

// Domain errors for the dynamics engines.
var (
	// ErrNotImplemented indicates a named but unimplemented method, such
	// as the reserved "exact" closed-form propagator.
	ErrNotImplemented = errors.New("dynamics: method not implemented")

	// ErrUnsupportedConfig indicates an engine variant combination that
	// fails fast instead of partially executing.
	ErrUnsupportedConfig = errors.New("dynamics: unsupported configuration")

	// ErrGridTooShort indicates fewer than two time points.
	ErrGridTooShort = errors.New("dynamics: time grid needs at least two points")

	// ErrNonUniformGrid indicates unevenly spaced time points; the fixed
	// step integrators require a uniform grid.
	ErrNonUniformGrid = errors.New("dynamics: time grid is not uniformly spaced")

	// ErrDimensionMismatch indicates a state whose dimension does not
	// match the Hamiltonian.
	ErrDimensionMismatch = errors.New("dynamics: state dimension does not match the system")
)

// SolveError wraps an error with the step at which the run aborted.
type SolveError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("solve aborted at step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SolveError) Unwrap() error { return e.Wrapped }
