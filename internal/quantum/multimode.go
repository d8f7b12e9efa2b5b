package quantum

import (
	"fmt"

	"github.com/qudyn/qudyn/internal/linalg"
)

// coordMode caches the eigendecomposition of one mode's position operator
// within one electronic state.
type coordMode struct {
	ev []float64
	ek *linalg.Matrix
}

// MultiModeHamiltonian extends Hamiltonian for vibronic systems built from
// electronic states and a small number of vibrational modes (e.g. minimal
// conical-intersection models). It additionally stores per-state,
// per-mode position-operator eigendecompositions so that a full system
// state can be projected onto one-dimensional coordinate probability
// densities.
type MultiModeHamiltonian struct {
	*Hamiltonian

	nel    int
	nmodes int
	coords [][]coordMode
}

// NewMultiMode builds the multi-mode variant. coords lists one position
// operator per mode for each electronic state; each is diagonalized once.
// Adiabatic potential/coupling surfaces are a named but unsupported
// configuration: pass none.
func NewMultiMode(h *linalg.Matrix, nel, nmodes int, coords [][]*linalg.Matrix, opts ...Option) (*MultiModeHamiltonian, error) {
	base, err := New(h, opts...)
	if err != nil {
		return nil, err
	}
	if len(coords) != nel {
		return nil, fmt.Errorf("quantum: need coordinate operators for %d electronic states, got %d: %w",
			nel, len(coords), linalg.ErrDimensionMismatch)
	}
	m := &MultiModeHamiltonian{Hamiltonian: base, nel: nel, nmodes: nmodes}
	m.coords = make([][]coordMode, nel)
	for i, ops := range coords {
		if len(ops) != nmodes {
			return nil, fmt.Errorf("quantum: state %d has %d coordinate operators, want %d: %w",
				i, len(ops), nmodes, linalg.ErrDimensionMismatch)
		}
		m.coords[i] = make([]coordMode, nmodes)
		for j, op := range ops {
			if !op.IsHermitian(hermTol) {
				return nil, fmt.Errorf("quantum: coordinate operator (%d,%d): %w", i, j, ErrNotHermitian)
			}
			ev, ek, err := linalg.EigHermitian(op)
			if err != nil {
				return nil, err
			}
			m.coords[i][j] = coordMode{ev: ev, ek: ek}
		}
	}
	return m, nil
}

func (m *MultiModeHamiltonian) ElectronicStates() int { return m.nel }
func (m *MultiModeHamiltonian) Modes() int            { return m.nmodes }

// ModeGrid returns the coordinate grid (position eigenvalues) for one
// mode of one electronic state, for plotting surfaces against.
func (m *MultiModeHamiltonian) ModeGrid(el, mode int) []float64 {
	out := make([]float64, len(m.coords[el][mode].ev))
	copy(out, m.coords[el][mode].ev)
	return out
}

func column(mtx *linalg.Matrix, k int) *linalg.Matrix {
	rows := mtx.Rows()
	out := linalg.New(rows, 1)
	for i := 0; i < rows; i++ {
		out.Set(i, 0, mtx.At(i, k))
	}
	return out
}

func unitKet(dim, at int) *linalg.Matrix {
	out := linalg.New(dim, 1)
	out.Set(at, 0, 1)
	return out
}

// CoordinateSurfaces projects a density matrix onto one-dimensional
// coordinate probability densities, one surface per (electronic state,
// mode) pair, by contracting against all other modes' position
// eigenbases. Only the minimal two-mode case is supported.
func (m *MultiModeHamiltonian) CoordinateSurfaces(state *linalg.Matrix) ([][]float64, error) {
	if !state.IsSquare() {
		return nil, fmt.Errorf("quantum: coordinate surfaces need a density matrix: %w", linalg.ErrShape)
	}
	if m.nmodes != 2 {
		return nil, fmt.Errorf("quantum: coordinate surfaces for %d modes: %w", m.nmodes, ErrUnsupported)
	}
	if state.Rows() != m.Dim() {
		return nil, linalg.ErrDimensionMismatch
	}

	var surfaces [][]float64
	for i := 0; i < m.nel; i++ {
		eket := unitKet(m.nel, i)
		for j := 0; j < m.nmodes; j++ {
			surface := make([]float64, len(m.coords[i][j].ev))
			l := 1 - j // the other mode
			for k := range m.coords[i][j].ev {
				kket := column(m.coords[i][j].ek, k)
				for mm := range m.coords[i][l].ev {
					mket := column(m.coords[i][l].ek, mm)
					var projket *linalg.Matrix
					if l < j {
						projket = linalg.Kron(eket, linalg.Kron(mket, kket))
					} else {
						projket = linalg.Kron(eket, linalg.Kron(kket, mket))
					}
					val := projket.Dag().Mul(state).Mul(projket)
					surface[k] += real(val.At(0, 0))
				}
			}
			surfaces = append(surfaces, surface)
		}
	}
	return surfaces, nil
}
