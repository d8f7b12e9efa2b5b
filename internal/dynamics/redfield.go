package dynamics

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/qudyn/qudyn/internal/bath"
	"github.com/qudyn/qudyn/internal/integrators"
	"github.com/qudyn/qudyn/internal/linalg"
	"github.com/qudyn/qudyn/internal/quantum"
	"github.com/qudyn/qudyn/internal/results"
)

// surfaceMapper is satisfied by the multi-mode Hamiltonian; it backs the
// Results map-ops hook.
type surfaceMapper interface {
	CoordinateSurfaces(*linalg.Matrix) ([][]float64, error)
}

// Redfield integrates the Redfield master equation
//
//	drho/dt = -(i/hbar)[H, rho] + sum_k { [E_k rho, C_k] + [C_k, rho E_k†] } / hbar²
//
// in the Hamiltonian eigenbasis. C_k is the k-th bath coupling operator
// transformed into the eigenbasis; E_k is its dressed counterpart. In the
// time-independent variant E_k is fixed at setup from the Fourier-Laplace
// transform of the bath correlation function. In the time-dependent (TCL2)
// variant E_k is rebuilt every step, one copy per integrator stage, from a
// trapezoidal recurrence over the bath memory kernel.
type Redfield struct {
	ham           quantum.System
	timeDependent bool
	secular       bool

	opts Options
	dt   float64
	hbar float64
	ode  *integrators.Integrator

	// per-bath coupling operators in the eigenbasis
	c []*linalg.Matrix

	// time-independent dressed operators and their adjoints
	e    []*linalg.Matrix
	eDag []*linalg.Matrix

	// time-dependent dressed operators, one per bath per stage
	eStage    [][]*linalg.Matrix
	eDagStage [][]*linalg.Matrix

	// trapezoid recurrence state: accumulated integral and instantaneous
	// integrand, per bath per stage. Allocated once at setup, overwritten
	// in place every step.
	gammaN  [][]*linalg.Matrix
	gammaN1 [][]*linalg.Matrix

	// secular Liouville-space generator (time-independent secular only)
	gen *linalg.Matrix
}

// RedfieldOption selects an engine variant.
type RedfieldOption func(*Redfield)

// TimeDependent selects the TCL2 time-dependent variant.
func TimeDependent() RedfieldOption {
	return func(r *Redfield) { r.timeDependent = true }
}

// Secular applies the secular approximation (time-independent variant
// only).
func Secular() RedfieldOption {
	return func(r *Redfield) { r.secular = true }
}

func NewRedfield(ham quantum.System, opts ...RedfieldOption) *Redfield {
	r := &Redfield{ham: ham, hbar: ham.Hbar()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// thetaPlus builds exp(-i*omega_ij*t) * C(t) for one bath.
func (r *Redfield) thetaPlus(b bath.Bath, t float64) *linalg.Matrix {
	n := r.ham.Dim()
	corr := b.CorrT(t)
	out := linalg.New(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, cmplx.Exp(complex(0, -r.ham.Omega(i, j)*t))*corr)
		}
	}
	return out
}

// makeRedfieldOperators performs the time-independent setup: for each
// bath, C_k in the eigenbasis and E_k = C_k ⊙ theta_plus where
// theta_plus[i,j] = FTCorr(-omega_ij).
func (r *Redfield) makeRedfieldOperators() error {
	n := r.ham.Dim()
	baths := r.ham.Baths()
	r.c = make([]*linalg.Matrix, len(baths))
	r.e = make([]*linalg.Matrix, len(baths))
	r.eDag = make([]*linalg.Matrix, len(baths))
	for k, b := range baths {
		ga, err := r.ham.ToEigenbasis(b.CouplingOp())
		if err != nil {
			return fmt.Errorf("bath %d coupling operator: %w", k, err)
		}
		theta := linalg.New(n, n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				theta.Set(i, j, b.FTCorr(-r.ham.Omega(i, j)))
			}
		}
		r.c[k] = ga
		r.e[k] = ga.MulElem(theta)
		r.eDag[k] = r.e[k].Dag()
	}
	return nil
}

// couplingOperatorsSetup performs the time-dependent setup: coupling
// operators plus the seed of the trapezoid recurrence, one quadrature node
// per integrator stage starting at time zero.
func (r *Redfield) couplingOperatorsSetup() error {
	baths := r.ham.Baths()
	order := r.ode.Order()
	nodes := r.ode.Nodes()

	r.c = make([]*linalg.Matrix, len(baths))
	r.eStage = make([][]*linalg.Matrix, len(baths))
	r.eDagStage = make([][]*linalg.Matrix, len(baths))
	r.gammaN = make([][]*linalg.Matrix, len(baths))
	r.gammaN1 = make([][]*linalg.Matrix, len(baths))

	n := r.ham.Dim()
	for k, b := range baths {
		ga, err := r.ham.ToEigenbasis(b.CouplingOp())
		if err != nil {
			return fmt.Errorf("bath %d coupling operator: %w", k, err)
		}
		r.c[k] = ga
		r.eStage[k] = make([]*linalg.Matrix, order)
		r.eDagStage[k] = make([]*linalg.Matrix, order)
		r.gammaN[k] = make([]*linalg.Matrix, order)
		r.gammaN1[k] = make([]*linalg.Matrix, order)

		for s := 0; s < order; s++ {
			if s == 0 {
				r.gammaN[k][0] = linalg.New(n, n)
				r.gammaN1[k][0] = r.thetaPlus(b, 0)
				continue
			}
			t := nodes[s] * r.dt
			theta := r.thetaPlus(b, t)
			g := r.gammaN[k][s-1].Clone()
			w := complex(0.5*(nodes[s]-nodes[s-1])*r.dt, 0)
			g.AddScaled(w, theta.Add(r.gammaN1[k][s-1]))
			r.gammaN[k][s] = g
			r.gammaN1[k][s] = theta
		}
	}
	return nil
}

// makeTCL2Operators advances the trapezoid recurrence by one full step.
// Stage 0 carries the previous step's final accumulated value forward as
// the new seed; later stages accumulate the kernel sampled at
// time + nodes[s]*dt.
func (r *Redfield) makeTCL2Operators(time float64) {
	nodes := r.ode.Nodes()
	order := r.ode.Order()
	for k, b := range r.ham.Baths() {
		for s := 0; s < order; s++ {
			t := time + nodes[s]*r.dt
			theta := r.thetaPlus(b, t)
			if s == 0 {
				r.gammaN[k][0].CopyFrom(r.gammaN[k][order-1])
				r.gammaN1[k][0].CopyFrom(theta)
				continue
			}
			g := r.gammaN[k][s]
			g.CopyFrom(r.gammaN[k][s-1])
			w := complex(0.5*(nodes[s]-nodes[s-1])*r.dt, 0)
			g.AddScaled(w, theta.Add(r.gammaN1[k][s-1]))
			r.gammaN1[k][s].CopyFrom(theta)
		}
	}
}

// updateOps rebuilds the stage-dressed operators from the current
// recurrence state, then advances the recurrence unless the run has passed
// the Markov cutoff, beyond which the dressing stays frozen.
func (r *Redfield) updateOps(time float64) {
	for k := range r.c {
		for s := range r.eStage[k] {
			r.eStage[k][s] = r.gammaN[k][s].MulElem(r.c[k])
			r.eDagStage[k][s] = r.eStage[k][s].Dag()
		}
	}
	if time < r.opts.MarkovTime {
		r.makeTCL2Operators(time)
	}
}

// dissipativeEOM evaluates the full (non-secular) equation of motion. A
// negative stage selects the time-independent dressed operators.
func (r *Redfield) dissipativeEOM(state *linalg.Matrix, stage int) *linalg.Matrix {
	dy := r.ham.Commutator(state, true).Scale(complex(0, -1/r.hbar))
	inv2 := complex(1/(r.hbar*r.hbar), 0)
	for k := range r.c {
		var ek, edk *linalg.Matrix
		if stage < 0 {
			ek, edk = r.e[k], r.eDag[k]
		} else {
			ek, edk = r.eStage[k][stage], r.eDagStage[k][stage]
		}
		term := linalg.Commutator(ek.Mul(state), r.c[k]).
			Add(linalg.Commutator(r.c[k], state.Mul(edk)))
		dy.AddScaled(inv2, term)
	}
	return dy
}

func (r *Redfield) secularEOM(state *linalg.Matrix) *linalg.Matrix {
	vec, err := linalg.Flatten(state)
	if err != nil {
		panic(err) // state shape is fixed by Solve
	}
	out, err := linalg.Unflatten(r.gen.Mul(vec), r.ham.Dim())
	if err != nil {
		panic(err)
	}
	return out
}

func (r *Redfield) eom(state *linalg.Matrix, stage int) *linalg.Matrix {
	switch {
	case r.secular:
		return r.secularEOM(state)
	case r.timeDependent:
		return r.dissipativeEOM(state, stage)
	default:
		return r.dissipativeEOM(state, -1)
	}
}

// buildSecularGenerator assembles the Liouville-space generator column by
// column from the non-secular equation of motion, then zeroes every
// element coupling (a,b) to (c,d) whose transition frequencies differ by
// more than the secular tolerance. The unitary part is diagonal in that
// indexing and survives the mask.
func (r *Redfield) buildSecularGenerator() {
	n := r.ham.Dim()
	gen := linalg.SuperOpFromMap(n, func(u *linalg.Matrix) *linalg.Matrix {
		return r.dissipativeEOM(u, -1)
	})
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			for c := 0; c < n; c++ {
				for d := 0; d < n; d++ {
					if math.Abs(r.ham.Omega(a, b)-r.ham.Omega(c, d)) > r.opts.SecularTol {
						gen.Set(a*n+b, c*n+d, 0)
					}
				}
			}
		}
	}
	r.gen = gen
}

func (r *Redfield) setup(opts *Options, res *results.Results) error {
	tab, err := opts.normalize()
	if err != nil {
		return err
	}
	if r.secular && r.timeDependent {
		return fmt.Errorf("%w: secular approximation with time-dependent dressing", ErrUnsupportedConfig)
	}
	r.opts = *opts
	r.ode = integrators.New(r.dt, r.eom, tab)

	if r.timeDependent {
		if err := r.couplingOperatorsSetup(); err != nil {
			return err
		}
	} else {
		if err := r.makeRedfieldOperators(); err != nil {
			return err
		}
	}
	if r.secular {
		r.buildSecularGenerator()
	}

	if res.MapOps {
		mapper, ok := r.ham.(surfaceMapper)
		if !ok {
			return fmt.Errorf("%w: map ops require a multi-mode Hamiltonian", ErrUnsupportedConfig)
		}
		res.SetMapFunction(mapper.CoordinateSurfaces)
	}
	return res.Init()
}

// Solve integrates the master equation over a uniformly spaced time grid,
// sampling into res at its configured stride. rho0 is the lab-basis
// initial density matrix; it is not mutated.
func (r *Redfield) Solve(rho0 *linalg.Matrix, times []float64, opts *Options, res *results.Results) (*results.Results, error) {
	if !rho0.IsSquare() || rho0.Rows() != r.ham.Dim() {
		return nil, ErrDimensionMismatch
	}
	dt, err := checkTimes(times)
	if err != nil {
		return nil, err
	}
	r.dt = dt

	if opts == nil {
		o := DefaultOptions()
		opts = &o
	}
	optsCopy := *opts
	if res == nil {
		res = &results.Results{}
	}
	if err := r.setup(&optsCopy, res); err != nil {
		return nil, err
	}

	rho, err := r.ham.ToEigenbasis(rho0)
	if err != nil {
		return nil, err
	}
	r.ode.SetState(rho, times[0])

	var update func(float64)
	if r.timeDependent {
		update = r.updateOps
	}
	if err := propagate(r.ham, r.ode, times, &r.opts, res, update); err != nil {
		res.Close()
		return nil, err
	}
	if err := res.Close(); err != nil {
		return nil, err
	}
	return res, nil
}
