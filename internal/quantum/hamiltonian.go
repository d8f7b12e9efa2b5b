// Package quantum holds the system side of an open-system model: the
// Hamiltonian, its cached eigensystem, transition frequencies, and basis
// transforms between the lab basis and the eigenbasis.
package quantum

import (
	"fmt"
	"math"
	"sort"

	"github.com/qudyn/qudyn/internal/bath"
	"github.com/qudyn/qudyn/internal/linalg"
)

const hermTol = 1e-10

// System is the capability set the dynamics engines require from a
// Hamiltonian: dimensions, eigenfrequencies, basis transforms and the
// Hamiltonian commutator. Both Hamiltonian and MultiModeHamiltonian
// satisfy it.
type System interface {
	Dim() int
	Hbar() float64
	Baths() []bath.Bath
	Eigenvalues() []float64
	Omega(i, j int) float64
	ToEigenbasis(op *linalg.Matrix) (*linalg.Matrix, error)
	FromEigenbasis(op *linalg.Matrix) (*linalg.Matrix, error)
	Commutator(op *linalg.Matrix, eig bool) *linalg.Matrix
}

// Hamiltonian stores a Hermitian system Hamiltonian together with its
// eigendecomposition, computed once at construction. Planck's constant is
// an explicit per-instance field so that independent engines never share
// state.
type Hamiltonian struct {
	h     *linalg.Matrix
	ev    []float64
	ek    *linalg.Matrix
	ekDag *linalg.Matrix

	// omegas[i*n+j] = (ev[i]-ev[j])/hbar; antisymmetric, zero diagonal.
	omegas []float64

	hbar  float64
	baths []bath.Bath
}

// Option configures a Hamiltonian at construction.
type Option func(*Hamiltonian)

// WithHbar sets Planck's constant (default 1).
func WithHbar(hbar float64) Option {
	return func(h *Hamiltonian) { h.hbar = hbar }
}

// WithBaths attaches the environments that couple to the system.
func WithBaths(baths ...bath.Bath) Option {
	return func(h *Hamiltonian) { h.baths = baths }
}

// New validates Hermiticity, diagonalizes H and caches the eigensystem.
func New(h *linalg.Matrix, opts ...Option) (*Hamiltonian, error) {
	if !h.IsSquare() {
		return nil, fmt.Errorf("quantum: hamiltonian must be square: %w", linalg.ErrShape)
	}
	if !h.IsHermitian(hermTol) {
		return nil, ErrNotHermitian
	}
	ham := &Hamiltonian{h: h.Clone(), hbar: 1.0}
	for _, opt := range opts {
		opt(ham)
	}
	if ham.hbar <= 0 {
		return nil, fmt.Errorf("quantum: hbar must be positive, got %v", ham.hbar)
	}
	if err := ham.eigensystem(); err != nil {
		return nil, err
	}
	return ham, nil
}

func (h *Hamiltonian) eigensystem() error {
	ev, ek, err := linalg.EigHermitian(h.h)
	if err != nil {
		return err
	}
	h.ev = ev
	h.ek = ek
	h.ekDag = ek.Dag()

	n := len(ev)
	h.omegas = make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			h.omegas[i*n+j] = (ev[i] - ev[j]) / h.hbar
		}
	}
	return nil
}

func (h *Hamiltonian) Dim() int           { return len(h.ev) }
func (h *Hamiltonian) Hbar() float64      { return h.hbar }
func (h *Hamiltonian) Baths() []bath.Bath { return h.baths }
func (h *Hamiltonian) Eigenvalues() []float64 {
	out := make([]float64, len(h.ev))
	copy(out, h.ev)
	return out
}

// Eigenvectors returns the eigenvector matrix (columns are eigenvectors).
func (h *Hamiltonian) Eigenvectors() *linalg.Matrix { return h.ek.Clone() }

// Omega returns the transition frequency (ev[i]-ev[j])/hbar.
func (h *Hamiltonian) Omega(i, j int) float64 {
	return h.omegas[i*len(h.ev)+j]
}

// UniqueFrequencies returns the sorted distinct transition frequencies.
func (h *Hamiltonian) UniqueFrequencies() []float64 {
	seen := make([]float64, len(h.omegas))
	copy(seen, h.omegas)
	sort.Float64s(seen)
	out := seen[:0]
	for i, w := range seen {
		if i == 0 || math.Abs(w-out[len(out)-1]) > 1e-12 {
			out = append(out, w)
		}
	}
	res := make([]float64, len(out))
	copy(res, out)
	return res
}

// ToEigenbasis transforms a column vector (ek† v) or square matrix
// (ek† m ek) into the eigenbasis.
func (h *Hamiltonian) ToEigenbasis(op *linalg.Matrix) (*linalg.Matrix, error) {
	switch {
	case op.IsColVector():
		if op.Rows() != h.Dim() {
			return nil, linalg.ErrDimensionMismatch
		}
		return h.ekDag.Mul(op), nil
	case op.IsSquare():
		if op.Rows() != h.Dim() {
			return nil, linalg.ErrDimensionMismatch
		}
		return h.ekDag.Mul(op).Mul(h.ek), nil
	default:
		return nil, fmt.Errorf("quantum: not a valid operator: %w", linalg.ErrShape)
	}
}

// FromEigenbasis is the inverse of ToEigenbasis.
func (h *Hamiltonian) FromEigenbasis(op *linalg.Matrix) (*linalg.Matrix, error) {
	switch {
	case op.IsColVector():
		if op.Rows() != h.Dim() {
			return nil, linalg.ErrDimensionMismatch
		}
		return h.ek.Mul(op), nil
	case op.IsSquare():
		if op.Rows() != h.Dim() {
			return nil, linalg.ErrDimensionMismatch
		}
		return h.ek.Mul(op).Mul(h.ekDag), nil
	default:
		return nil, fmt.Errorf("quantum: not a valid operator: %w", linalg.ErrShape)
	}
}

// Commutator returns [H, op]. With eig set, op is assumed to live in the
// eigenbasis and the diagonal eigenvalue matrix is used, which reduces to
// an elementwise scaling; otherwise the raw Hamiltonian is used.
func (h *Hamiltonian) Commutator(op *linalg.Matrix, eig bool) *linalg.Matrix {
	if !eig {
		return linalg.Commutator(h.h, op)
	}
	n := h.Dim()
	out := linalg.New(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Set(i, j, complex(h.ev[i]-h.ev[j], 0)*op.At(i, j))
		}
	}
	return out
}

// ThermalState returns the equilibrium density matrix exp(-H/kT)/Z in the
// eigenbasis.
func (h *Hamiltonian) ThermalState(kT float64) (*linalg.Matrix, error) {
	if kT <= 0 {
		return nil, fmt.Errorf("quantum: thermal state requires kT > 0, got %v", kT)
	}
	n := h.Dim()
	rho := linalg.New(n, n)
	// shift by the ground state energy to avoid underflow
	z := 0.0
	for i := 0; i < n; i++ {
		z += math.Exp(-(h.ev[i] - h.ev[0]) / kT)
	}
	for i := 0; i < n; i++ {
		rho.Set(i, i, complex(math.Exp(-(h.ev[i]-h.ev[0])/kT)/z, 0))
	}
	return rho, nil
}
