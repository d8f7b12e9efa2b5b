package dynamics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qudyn/qudyn/internal/bath"
	"github.com/qudyn/qudyn/internal/integrators"
	"github.com/qudyn/qudyn/internal/linalg"
	"github.com/qudyn/qudyn/internal/quantum"
	"github.com/qudyn/qudyn/internal/results"
)

func pauliX() *linalg.Matrix {
	return linalg.FromRows([][]complex128{{0, 1}, {1, 0}})
}

func pauliZ() *linalg.Matrix {
	return linalg.FromRows([][]complex128{{1, 0}, {0, -1}})
}

func groundState() *linalg.Matrix {
	return linalg.FromRows([][]complex128{{1, 0}, {0, 0}})
}

func grid(dt float64, n int) []float64 {
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * dt
	}
	return times
}

func tlsHam(t *testing.T, delta, eps float64, baths ...bath.Bath) *quantum.Hamiltonian {
	t.Helper()
	h := pauliX().Scale(complex(-0.5*delta, 0)).Add(pauliZ().Scale(complex(0.5*eps, 0)))
	ham, err := quantum.New(h, quantum.WithBaths(baths...))
	require.NoError(t, err)
	return ham
}

// With no baths the Redfield equation reduces to unitary evolution; for
// H = -0.5*delta*sx the excited population follows the Rabi formula
// sin²(delta*t/2).
func TestRabiUnitaryLimit(t *testing.T) {
	delta := 1.0
	ham := tlsHam(t, delta, 0)
	eng := NewRedfield(ham)

	excited := linalg.FromRows([][]complex128{{0, 0}, {0, 1}})
	res := &results.Results{EOps: []*linalg.Matrix{excited}}

	times := grid(0.01, 201)
	_, err := eng.Solve(groundState(), times, nil, res)
	require.NoError(t, err)

	series := res.Series(0)
	for i, tt := range res.Times {
		want := math.Pow(math.Sin(delta*tt/2), 2)
		assert.InDelta(t, want, series[i], 1e-7, "t=%v", tt)
	}
}

func TestTimeIndependentPreservesTraceAndHermiticity(t *testing.T) {
	b := bath.NewDrude(0.25, 2.0, 1.0, pauliZ())
	ham := tlsHam(t, 1.0, 0.5, b)
	eng := NewRedfield(ham)

	res := &results.Results{EOps: []*linalg.Matrix{linalg.Identity(2)}}
	times := grid(0.01, 500)
	_, err := eng.Solve(groundState(), times, nil, res)
	require.NoError(t, err)

	for i, tr := range res.Series(0) {
		assert.InDelta(t, 1.0, tr, 1e-8, "sample %d", i)
	}

	final, err := ham.FromEigenbasis(eng.ode.Y())
	require.NoError(t, err)
	assert.True(t, final.IsHermitian(1e-9))
	assert.True(t, final.IsValid())
}

// With a constant correlation function the trapezoid recurrence is exact:
// the accumulated integral at the last stage after m update calls is
// (m+1)*dt*C(0).
func TestDressingRecurrenceConstantKernel(t *testing.T) {
	c0 := complex(0.3, -0.2)
	op := linalg.FromRows([][]complex128{{1}})
	h := linalg.New(1, 1)
	ham, err := quantum.New(h, quantum.WithBaths(bath.NewConst(c0, op)))
	require.NoError(t, err)

	r := NewRedfield(ham, TimeDependent())
	r.dt = 0.1
	r.opts = DefaultOptions()
	r.ode = integrators.New(r.dt, r.eom, integrators.RK4)
	require.NoError(t, r.couplingOperatorsSetup())

	last := r.ode.Order() - 1
	got := r.gammaN[0][last].At(0, 0)
	want := complex(r.dt, 0) * c0
	assert.InDelta(t, real(want), real(got), 1e-13)
	assert.InDelta(t, imag(want), imag(got), 1e-13)

	for m := 0; m < 10; m++ {
		r.updateOps(float64(m) * r.dt)
	}
	got = r.gammaN[0][last].At(0, 0)
	want = complex(11*r.dt, 0) * c0
	assert.InDelta(t, real(want), real(got), 1e-12)
	assert.InDelta(t, imag(want), imag(got), 1e-12)

	// dressed operators were built from the pre-advance recurrence state:
	// nine advances plus the stage offset (C is the identity here).
	nodes := r.ode.Nodes()
	for s := 0; s <= last; s++ {
		es := r.eStage[0][s].At(0, 0)
		wantStage := complex((9+nodes[s])*r.dt, 0) * c0
		assert.InDelta(t, real(wantStage), real(es), 1e-12)
		assert.InDelta(t, imag(wantStage), imag(es), 1e-12)
	}
}

func TestMarkovTimeFreezesDressing(t *testing.T) {
	c0 := complex(0.3, -0.2)
	op := linalg.FromRows([][]complex128{{1}})
	h := linalg.New(1, 1)
	ham, err := quantum.New(h, quantum.WithBaths(bath.NewConst(c0, op)))
	require.NoError(t, err)

	r := NewRedfield(ham, TimeDependent())
	r.dt = 0.1
	r.opts = DefaultOptions()
	r.opts.MarkovTime = 0.35
	r.ode = integrators.New(r.dt, r.eom, integrators.RK4)
	require.NoError(t, r.couplingOperatorsSetup())

	last := r.ode.Order() - 1
	for m := 0; m < 20; m++ {
		r.updateOps(float64(m) * r.dt)
	}
	// updates at t = 0, 0.1, 0.2, 0.3 advanced the recurrence; later ones
	// froze it: seed dt plus four advances.
	want := complex(5*r.dt, 0) * c0
	got := r.gammaN[0][last].At(0, 0)
	assert.InDelta(t, real(want), real(got), 1e-12)
	assert.InDelta(t, imag(want), imag(got), 1e-12)
}

func TestTimeDependentPreservesTrace(t *testing.T) {
	b := bath.NewDrude(0.25, 2.0, 1.0, pauliZ())
	ham := tlsHam(t, 1.0, 0.0, b)
	eng := NewRedfield(ham, TimeDependent())

	res := &results.Results{EOps: []*linalg.Matrix{linalg.Identity(2)}}
	times := grid(0.01, 300)
	_, err := eng.Solve(groundState(), times, nil, res)
	require.NoError(t, err)

	for i, tr := range res.Series(0) {
		assert.InDelta(t, 1.0, tr, 1e-8, "sample %d", i)
	}
}

// The secular mask must leave the unitary part of the generator intact:
// with no baths, secular Redfield reproduces the Rabi oscillation.
func TestSecularKeepsUnitaryPart(t *testing.T) {
	delta := 1.0
	ham := tlsHam(t, delta, 0)
	eng := NewRedfield(ham, Secular())

	excited := linalg.FromRows([][]complex128{{0, 0}, {0, 1}})
	res := &results.Results{EOps: []*linalg.Matrix{excited}}
	times := grid(0.01, 101)
	_, err := eng.Solve(groundState(), times, nil, res)
	require.NoError(t, err)

	series := res.Series(0)
	for i, tt := range res.Times {
		want := math.Pow(math.Sin(delta*tt/2), 2)
		assert.InDelta(t, want, series[i], 1e-7, "t=%v", tt)
	}
}

func TestSecularPreservesTrace(t *testing.T) {
	b := bath.NewDrude(0.25, 2.0, 1.0, pauliZ())
	ham := tlsHam(t, 1.0, 0.7, b)
	eng := NewRedfield(ham, Secular())

	res := &results.Results{EOps: []*linalg.Matrix{linalg.Identity(2)}}
	times := grid(0.01, 300)
	_, err := eng.Solve(groundState(), times, nil, res)
	require.NoError(t, err)

	for i, tr := range res.Series(0) {
		assert.InDelta(t, 1.0, tr, 1e-8, "sample %d", i)
	}
}

func TestSecularTimeDependentUnsupported(t *testing.T) {
	ham := tlsHam(t, 1.0, 0)
	eng := NewRedfield(ham, Secular(), TimeDependent())
	_, err := eng.Solve(groundState(), grid(0.01, 10), nil, nil)
	assert.ErrorIs(t, err, ErrUnsupportedConfig)
}

func TestExactMethodNotImplemented(t *testing.T) {
	ham := tlsHam(t, 1.0, 0)
	eng := NewRedfield(ham)
	opts := DefaultOptions()
	opts.Method = MethodExact
	_, err := eng.Solve(groundState(), grid(0.01, 10), &opts, nil)
	assert.ErrorIs(t, err, ErrNotImplemented)
}

func TestSolveRejectsBadGrids(t *testing.T) {
	ham := tlsHam(t, 1.0, 0)
	eng := NewRedfield(ham)

	_, err := eng.Solve(groundState(), []float64{0}, nil, nil)
	assert.ErrorIs(t, err, ErrGridTooShort)

	_, err = eng.Solve(groundState(), []float64{0, 0.1, 0.3}, nil, nil)
	assert.ErrorIs(t, err, ErrNonUniformGrid)

	_, err = eng.Solve(groundState(), []float64{0, -0.1, -0.2}, nil, nil)
	assert.ErrorIs(t, err, ErrNonUniformGrid)
}

func TestSolveRejectsMismatchedState(t *testing.T) {
	ham := tlsHam(t, 1.0, 0)
	eng := NewRedfield(ham)
	_, err := eng.Solve(linalg.Identity(3), grid(0.01, 10), nil, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSamplingCadence(t *testing.T) {
	ham := tlsHam(t, 1.0, 0)

	for _, tc := range []struct {
		n, every, want int
	}{
		{10, 1, 10},
		{10, 3, 4}, // indices 0, 3, 6, 9
		{9, 3, 3},  // indices 0, 3, 6
		{10, 20, 1},
	} {
		eng := NewRedfield(ham)
		res := &results.Results{Every: tc.every}
		_, err := eng.Solve(groundState(), grid(0.01, tc.n), nil, res)
		require.NoError(t, err)
		assert.Equal(t, tc.want, res.Samples(), "n=%d every=%d", tc.n, tc.every)
		for i := 0; i+1 < len(res.Times); i++ {
			assert.InDelta(t, float64(tc.every)*0.01, res.Times[i+1]-res.Times[i], 1e-12)
		}
	}
}

func TestMapOpsRequireMultiMode(t *testing.T) {
	ham := tlsHam(t, 1.0, 0)
	eng := NewRedfield(ham)
	res := &results.Results{MapOps: true}
	_, err := eng.Solve(groundState(), grid(0.01, 10), nil, res)
	assert.ErrorIs(t, err, ErrUnsupportedConfig)
}
