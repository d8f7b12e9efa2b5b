package dynamics

import (
	"fmt"

	"github.com/qudyn/qudyn/internal/integrators"
	"github.com/qudyn/qudyn/internal/linalg"
	"github.com/qudyn/qudyn/internal/quantum"
	"github.com/qudyn/qudyn/internal/results"
)

// Lindblad integrates the Lindblad master equation
//
//	drho/dt = -(i/hbar)[H, rho] + sum_k gamma_k (L_k rho L_k† - ½{L_k†L_k, rho})
//
// with a fixed dissipator per channel. Channels are attached at
// construction and transformed into the eigenbasis at setup.
type Lindblad struct {
	ham      quantum.System
	channels []channel

	opts Options
	dt   float64
	hbar float64
	ode  *integrators.Integrator

	// eigenbasis operators, built at setup
	l    []*linalg.Matrix
	lDag []*linalg.Matrix
	ldl  []*linalg.Matrix // L†L, halved rate folded in at eom time
}

type channel struct {
	rate float64
	op   *linalg.Matrix
}

// LindbladOption configures a Lindblad engine.
type LindbladOption func(*Lindblad)

// WithDissipator attaches one dissipative channel with the given rate and
// lab-basis jump operator. Repeat for multiple channels.
func WithDissipator(rate float64, op *linalg.Matrix) LindbladOption {
	return func(l *Lindblad) {
		l.channels = append(l.channels, channel{rate: rate, op: op})
	}
}

func NewLindblad(ham quantum.System, opts ...LindbladOption) *Lindblad {
	l := &Lindblad{ham: ham, hbar: ham.Hbar()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lindblad) setup(opts *Options, res *results.Results) error {
	tab, err := opts.normalize()
	if err != nil {
		return err
	}
	l.opts = *opts
	l.ode = integrators.New(l.dt, l.eom, tab)

	l.l = make([]*linalg.Matrix, len(l.channels))
	l.lDag = make([]*linalg.Matrix, len(l.channels))
	l.ldl = make([]*linalg.Matrix, len(l.channels))
	for k, ch := range l.channels {
		if ch.rate < 0 {
			return fmt.Errorf("dynamics: channel %d has negative rate %v", k, ch.rate)
		}
		op, err := l.ham.ToEigenbasis(ch.op)
		if err != nil {
			return fmt.Errorf("channel %d jump operator: %w", k, err)
		}
		l.l[k] = op
		l.lDag[k] = op.Dag()
		l.ldl[k] = l.lDag[k].Mul(op)
	}

	if res.MapOps {
		mapper, ok := l.ham.(surfaceMapper)
		if !ok {
			return fmt.Errorf("%w: map ops require a multi-mode Hamiltonian", ErrUnsupportedConfig)
		}
		res.SetMapFunction(mapper.CoordinateSurfaces)
	}
	return res.Init()
}

func (l *Lindblad) eom(state *linalg.Matrix, _ int) *linalg.Matrix {
	dy := l.ham.Commutator(state, true).Scale(complex(0, -1/l.hbar))
	for k := range l.channels {
		g := complex(l.channels[k].rate, 0)
		jump := l.l[k].Mul(state).Mul(l.lDag[k])
		dy.AddScaled(g, jump)
		dy.AddScaled(-0.5*g, linalg.Anticommutator(l.ldl[k], state))
	}
	return dy
}

// Solve integrates the Lindblad equation over a uniformly spaced time
// grid, sampling into res at its configured stride.
func (l *Lindblad) Solve(rho0 *linalg.Matrix, times []float64, opts *Options, res *results.Results) (*results.Results, error) {
	if !rho0.IsSquare() || rho0.Rows() != l.ham.Dim() {
		return nil, ErrDimensionMismatch
	}
	dt, err := checkTimes(times)
	if err != nil {
		return nil, err
	}
	l.dt = dt

	if opts == nil {
		o := DefaultOptions()
		opts = &o
	}
	optsCopy := *opts
	if res == nil {
		res = &results.Results{}
	}
	if err := l.setup(&optsCopy, res); err != nil {
		return nil, err
	}

	rho, err := l.ham.ToEigenbasis(rho0)
	if err != nil {
		return nil, err
	}
	l.ode.SetState(rho, times[0])

	if err := propagate(l.ham, l.ode, times, &l.opts, res, nil); err != nil {
		res.Close()
		return nil, err
	}
	if err := res.Close(); err != nil {
		return nil, err
	}
	return res, nil
}
