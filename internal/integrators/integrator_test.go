package integrators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qudyn/qudyn/internal/linalg"
)

// dy/dt = -i*w*y on a 1x1 matrix has the exact solution y0*exp(-i*w*t).
func phaseRHS(w float64) RHS {
	return func(y *linalg.Matrix, stage int) *linalg.Matrix {
		return y.Scale(complex(0, -w))
	}
}

func propagate(t *testing.T, tab Tableau, dt float64, steps int) complex128 {
	t.Helper()
	in := New(dt, phaseRHS(1.0), tab)
	y0 := linalg.New(1, 1)
	y0.Set(0, 0, 1)
	in.SetState(y0, 0)
	for i := 0; i < steps; i++ {
		in.Step()
	}
	assert.InDelta(t, float64(steps)*dt, in.T(), 1e-12)
	return in.Y().At(0, 0)
}

func TestRK4Accuracy(t *testing.T) {
	got := propagate(t, RK4, 0.01, 100)
	want := complex(math.Cos(1), -math.Sin(1))
	assert.InDelta(t, real(want), real(got), 1e-9)
	assert.InDelta(t, imag(want), imag(got), 1e-9)
}

func TestEulerFirstOrder(t *testing.T) {
	coarse := propagate(t, Euler, 0.01, 100)
	fine := propagate(t, Euler, 0.001, 1000)
	want := complex(math.Cos(1), -math.Sin(1))

	errCoarse := math.Hypot(real(coarse-want), imag(coarse-want))
	errFine := math.Hypot(real(fine-want), imag(fine-want))
	// halving-by-ten should shrink the error by roughly ten
	assert.Greater(t, errCoarse/errFine, 5.0)
}

func TestStageIndexForwarded(t *testing.T) {
	var stages []int
	rhs := func(y *linalg.Matrix, stage int) *linalg.Matrix {
		stages = append(stages, stage)
		return linalg.New(1, 1)
	}
	in := New(0.1, rhs, RK4)
	in.SetState(linalg.New(1, 1), 0)
	in.Step()
	assert.Equal(t, []int{0, 1, 2, 3}, stages)
}

func TestTableaus(t *testing.T) {
	for _, tab := range []Tableau{Euler, Midpoint, RK4} {
		require.Len(t, tab.A, len(tab.Nodes), tab.Name)
		require.Len(t, tab.Weights, len(tab.Nodes), tab.Name)
		sum := 0.0
		for _, w := range tab.Weights {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-14, tab.Name)
		for s, row := range tab.A {
			require.Len(t, row, s, tab.Name)
			rowSum := 0.0
			for _, a := range row {
				rowSum += a
			}
			// consistency: c_i = sum_j a_ij
			assert.InDelta(t, tab.Nodes[s], rowSum, 1e-14, tab.Name)
		}
	}
}

func TestByName(t *testing.T) {
	tab, err := ByName("rk4")
	require.NoError(t, err)
	assert.Equal(t, 4, len(tab.Nodes))

	_, err = ByName("cranknicolson")
	assert.ErrorIs(t, err, ErrUnknownMethod)
}
