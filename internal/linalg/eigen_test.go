package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkEigen(t *testing.T, h *Matrix) ([]float64, *Matrix) {
	t.Helper()
	ev, ek, err := EigHermitian(h)
	require.NoError(t, err)
	n := h.Rows()
	require.Len(t, ev, n)

	// ascending order
	for i := 1; i < n; i++ {
		assert.LessOrEqual(t, ev[i-1], ev[i]+1e-12)
	}

	// ek† ek = I
	assert.InDelta(t, 0, ek.Dag().Mul(ek).MaxAbsDiff(Identity(n)), 1e-10)

	// ek† H ek diagonal with ev on the diagonal
	d := ek.Dag().Mul(h).Mul(ek)
	want := New(n, n)
	for i := 0; i < n; i++ {
		want.Set(i, i, complex(ev[i], 0))
	}
	assert.InDelta(t, 0, d.MaxAbsDiff(want), 1e-9)
	return ev, ek
}

func TestEigHermitianPauli(t *testing.T) {
	ev, _ := checkEigen(t, sigmaX())
	assert.InDelta(t, -1, ev[0], 1e-12)
	assert.InDelta(t, 1, ev[1], 1e-12)

	ev, _ = checkEigen(t, sigmaY())
	assert.InDelta(t, -1, ev[0], 1e-12)
	assert.InDelta(t, 1, ev[1], 1e-12)
}

func TestEigHermitianComplex4x4(t *testing.T) {
	h := FromRows([][]complex128{
		{2, complex(0, -1), 0.5, 0},
		{complex(0, 1), 1, complex(0.2, 0.3), 0},
		{0.5, complex(0.2, -0.3), -1, complex(0, 0.7)},
		{0, 0, complex(0, -0.7), 0.5},
	})
	require.True(t, h.IsHermitian(1e-12))
	checkEigen(t, h)
}

func TestEigHermitianDegenerate(t *testing.T) {
	// two-fold degenerate spectrum: sz ⊗ I has eigenvalues {-1,-1,1,1}
	h := Kron(sigmaZ(), Identity(2))
	ev, _ := checkEigen(t, h)
	assert.InDelta(t, -1, ev[0], 1e-12)
	assert.InDelta(t, -1, ev[1], 1e-12)
	assert.InDelta(t, 1, ev[2], 1e-12)
	assert.InDelta(t, 1, ev[3], 1e-12)
}

func TestEigHermitianNonSquare(t *testing.T) {
	_, _, err := EigHermitian(New(2, 3))
	assert.ErrorIs(t, err, ErrShape)
}
