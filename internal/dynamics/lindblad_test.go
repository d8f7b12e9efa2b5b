package dynamics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qudyn/qudyn/internal/linalg"
	"github.com/qudyn/qudyn/internal/results"
)

// The spin-boson dephasing scenario: delta=1, eps=0, Gamma=1, L=sz,
// rho0=|0><0|, dt=0.01, t in [0,10). The Bloch equations are closed and
// critically damped here, so <sz>(t) = (1+t)exp(-t) exactly, relaxing
// monotonically toward the maximally mixed state.
func TestSpinBosonDephasing(t *testing.T) {
	ham := tlsHam(t, 1.0, 0.0)
	eng := NewLindblad(ham, WithDissipator(1.0, pauliZ()))

	res := &results.Results{EOps: []*linalg.Matrix{pauliZ(), linalg.Identity(2)}}
	times := grid(0.01, 1000)
	out, err := eng.Solve(groundState(), times, nil, res)
	require.NoError(t, err)
	require.Same(t, res, out)

	sz := res.Series(0)
	for i, tt := range res.Times {
		want := (1 + tt) * math.Exp(-tt)
		assert.InDelta(t, want, sz[i], 1e-3, "t=%v", tt)
	}
	// converged toward the maximally mixed state
	assert.Less(t, math.Abs(sz[len(sz)-1]), 0.02)
	// monotone relaxation
	for i := 1; i < len(sz); i++ {
		assert.LessOrEqual(t, sz[i], sz[i-1]+1e-9)
	}
	// trace preserved throughout
	for _, tr := range res.Series(1) {
		assert.InDelta(t, 1.0, tr, 1e-9)
	}
}

// Without channels the Lindblad engine is unitary: Rabi again.
func TestLindbladUnitaryLimit(t *testing.T) {
	delta := 1.0
	ham := tlsHam(t, delta, 0)
	eng := NewLindblad(ham)

	excited := linalg.FromRows([][]complex128{{0, 0}, {0, 1}})
	res := &results.Results{EOps: []*linalg.Matrix{excited}}
	_, err := eng.Solve(groundState(), grid(0.01, 201), nil, res)
	require.NoError(t, err)

	series := res.Series(0)
	for i, tt := range res.Times {
		want := math.Pow(math.Sin(delta*tt/2), 2)
		assert.InDelta(t, want, series[i], 1e-7, "t=%v", tt)
	}
}

func TestLindbladFinalStatePhysical(t *testing.T) {
	ham := tlsHam(t, 1.0, 0.3)
	eng := NewLindblad(ham, WithDissipator(0.5, pauliZ()))

	_, err := eng.Solve(groundState(), grid(0.01, 400), nil, nil)
	require.NoError(t, err)

	final, err := ham.FromEigenbasis(eng.ode.Y())
	require.NoError(t, err)
	assert.True(t, final.IsHermitian(1e-9))
	assert.InDelta(t, 1.0, real(final.Trace()), 1e-9)
	// populations stay in [0, 1]
	for i := 0; i < 2; i++ {
		p := real(final.At(i, i))
		assert.GreaterOrEqual(t, p, -1e-9)
		assert.LessOrEqual(t, p, 1+1e-9)
	}
}

func TestLindbladRejectsNegativeRate(t *testing.T) {
	ham := tlsHam(t, 1.0, 0)
	eng := NewLindblad(ham, WithDissipator(-1.0, pauliZ()))
	_, err := eng.Solve(groundState(), grid(0.01, 10), nil, nil)
	assert.Error(t, err)
}

func TestLindbladExactMethodNotImplemented(t *testing.T) {
	ham := tlsHam(t, 1.0, 0)
	eng := NewLindblad(ham)
	opts := DefaultOptions()
	opts.Method = MethodExact
	_, err := eng.Solve(groundState(), grid(0.01, 10), &opts, nil)
	assert.ErrorIs(t, err, ErrNotImplemented)
}
