// Package dynamics implements master-equation engines for open quantum
// systems: the Redfield equation in time-independent and time-dependent
// (TCL2) variants, with and without the secular approximation, and the
// Lindblad equation with fixed dissipative channels.
//
// An engine is bound to a [quantum.System] at construction and driven by
// Solve(rho0, times, options, results): the initial density matrix is
// transformed into the eigenbasis, the equation-of-motion closure is
// handed to a fixed-step Runge-Kutta integrator, and at each time index
// the engine refreshes any time-dependent operators, samples observables
// at the configured stride, and advances one step.
//
//	ham, _ := quantum.New(h, quantum.WithBaths(b))
//	eng := dynamics.NewRedfield(ham, dynamics.TimeDependent())
//	res, err := eng.Solve(rho0, times, nil, &results.Results{EOps: ops})
//
// Engines are not safe for concurrent use; concurrent runs need
// independent engine instances.
package dynamics
