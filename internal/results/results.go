// Package results collects observable expectation values while a dynamics
// engine runs, and optionally streams them to a plain-text time series
// (one row per sampled time: the time, then one column per observable).
package results

import (
	"bufio"
	"fmt"
	"os"

	"github.com/qudyn/qudyn/internal/linalg"
)

// MapFunc post-processes a lab-basis state into per-coordinate surfaces.
// The engines wire it to the multi-mode Hamiltonian when MapOps is set.
type MapFunc func(state *linalg.Matrix) ([][]float64, error)

// Results configures sampling and accumulates the sampled series. The
// zero value records nothing but the sampled times; fields are read, not
// mutated, by the engines.
type Results struct {
	// Tobs is the expected total observation count, used to presize the
	// series. Optional.
	Tobs int

	// EOps are the observables whose expectation values are recorded.
	EOps []*linalg.Matrix

	// Every is the sampling stride over time indices (default 1).
	Every int

	// PrintES streams sampled rows to ESFile as they are produced.
	PrintES bool
	ESFile  string

	// MapOps requests coordinate-surface post-processing; requires a
	// multi-mode Hamiltonian.
	MapOps bool

	Times        []float64
	Expectations [][]float64
	Surfaces     [][][]float64

	mapFn MapFunc
	file  *os.File
	w     *bufio.Writer
}

// SetMapFunction installs the surface hook. Engines call this during
// setup.
func (r *Results) SetMapFunction(fn MapFunc) { r.mapFn = fn }

// Init normalizes defaults and opens the output stream if requested.
func (r *Results) Init() error {
	if r.Every <= 0 {
		r.Every = 1
	}
	if r.Tobs > 0 {
		r.Times = make([]float64, 0, r.Tobs)
		r.Expectations = make([][]float64, 0, r.Tobs)
	}
	if r.PrintES {
		if r.ESFile == "" {
			return fmt.Errorf("results: PrintES set without ESFile")
		}
		f, err := os.Create(r.ESFile)
		if err != nil {
			return fmt.Errorf("results: open series file: %w", err)
		}
		r.file = f
		r.w = bufio.NewWriter(f)
	}
	return nil
}

// AnalyzeState records the configured observables for one sampled time.
// state is the lab-basis density matrix; it is read only.
func (r *Results) AnalyzeState(index int, time float64, state *linalg.Matrix) error {
	es := make([]float64, len(r.EOps))
	for i, op := range r.EOps {
		es[i] = real(linalg.ExpectationValue(op, state))
	}
	r.Times = append(r.Times, time)
	r.Expectations = append(r.Expectations, es)

	if r.MapOps {
		if r.mapFn == nil {
			return fmt.Errorf("results: map ops requested but no map function is wired")
		}
		surfaces, err := r.mapFn(state)
		if err != nil {
			return err
		}
		r.Surfaces = append(r.Surfaces, surfaces)
	}

	if r.w != nil {
		fmt.Fprintf(r.w, "%.10e", time)
		for _, e := range es {
			fmt.Fprintf(r.w, " %.10e", e)
		}
		fmt.Fprintln(r.w)
	}
	return nil
}

// Samples returns the number of recorded observations.
func (r *Results) Samples() int { return len(r.Times) }

// Series returns the sampled expectation values of one observable.
func (r *Results) Series(op int) []float64 {
	out := make([]float64, len(r.Expectations))
	for i, es := range r.Expectations {
		out[i] = es[op]
	}
	return out
}

// Close flushes and closes the output stream, if any.
func (r *Results) Close() error {
	if r.w == nil {
		return nil
	}
	if err := r.w.Flush(); err != nil {
		r.file.Close()
		return err
	}
	err := r.file.Close()
	r.w = nil
	r.file = nil
	return err
}
