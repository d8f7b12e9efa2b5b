// Package integrators implements explicit Runge-Kutta steppers over
// complex-matrix states. The stage abscissae are exposed because the
// time-dependent Redfield engine keys its dressed operators off the stage
// index of each right-hand-side evaluation.
package integrators

import (
	"errors"
	"fmt"

	"github.com/qudyn/qudyn/internal/linalg"
)

// RHS evaluates the equation of motion at the given stage state. stage is
// the index of the current Runge-Kutta stage within a step; callers that
// do not carry per-stage state may ignore it. The returned derivative must
// be a fresh matrix.
type RHS func(state *linalg.Matrix, stage int) *linalg.Matrix

// ErrUnknownMethod indicates a step method name with no registered tableau.
var ErrUnknownMethod = errors.New("integrators: unknown step method")

// Tableau holds the coefficients of an explicit Runge-Kutta method.
// Nodes are the stage abscissae c_i in [0,1], A the strictly lower
// stage-coupling matrix and Weights the output weights b_i.
type Tableau struct {
	Name    string
	Nodes   []float64
	A       [][]float64
	Weights []float64
}

var (
	Euler = Tableau{
		Name:    "euler",
		Nodes:   []float64{0},
		A:       [][]float64{{}},
		Weights: []float64{1},
	}

	Midpoint = Tableau{
		Name:    "rk2",
		Nodes:   []float64{0, 0.5},
		A:       [][]float64{{}, {0.5}},
		Weights: []float64{0, 1},
	}

	RK4 = Tableau{
		Name:  "rk4",
		Nodes: []float64{0, 0.5, 0.5, 1},
		A: [][]float64{
			{},
			{0.5},
			{0, 0.5},
			{0, 0, 1},
		},
		Weights: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
	}
)

// ByName resolves a step method name to its tableau.
func ByName(name string) (Tableau, error) {
	switch name {
	case "euler":
		return Euler, nil
	case "rk2", "midpoint":
		return Midpoint, nil
	case "rk4":
		return RK4, nil
	default:
		return Tableau{}, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}

// Integrator advances a complex-matrix state in fixed steps of dt.
type Integrator struct {
	dt  float64
	rhs RHS
	tab Tableau

	y *linalg.Matrix
	t float64

	k []*linalg.Matrix
}

func New(dt float64, rhs RHS, tab Tableau) *Integrator {
	return &Integrator{
		dt:  dt,
		rhs: rhs,
		tab: tab,
		k:   make([]*linalg.Matrix, len(tab.Nodes)),
	}
}

// Order returns the stage count of the method.
func (in *Integrator) Order() int { return len(in.tab.Nodes) }

// Nodes returns the stage abscissae.
func (in *Integrator) Nodes() []float64 { return in.tab.Nodes }

// Y returns the current state. The engine owns it; callers must not
// mutate it between steps.
func (in *Integrator) Y() *linalg.Matrix { return in.y }

// T returns the current time.
func (in *Integrator) T() float64 { return in.t }

// Dt returns the step size.
func (in *Integrator) Dt() float64 { return in.dt }

// SetState seeds the integrator.
func (in *Integrator) SetState(y0 *linalg.Matrix, t0 float64) {
	in.y = y0.Clone()
	in.t = t0
}

// Step advances the state by one full step in place, evaluating the RHS
// once per stage.
func (in *Integrator) Step() {
	dt := complex(in.dt, 0)
	for s := 0; s < in.Order(); s++ {
		ys := in.y.Clone()
		for j, a := range in.tab.A[s] {
			if a != 0 {
				ys.AddScaled(dt*complex(a, 0), in.k[j])
			}
		}
		in.k[s] = in.rhs(ys, s)
	}
	for s, w := range in.tab.Weights {
		if w != 0 {
			in.y.AddScaled(dt*complex(w, 0), in.k[s])
		}
	}
	in.t += in.dt
}
