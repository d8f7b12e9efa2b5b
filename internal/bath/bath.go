// Package bath provides harmonic-environment models for open-system
// dynamics. A bath couples to the system through a Hermitian operator and
// is characterized by its real-time correlation function C(t) and the
// one-sided Fourier-Laplace transform of C evaluated at a transition
// frequency.
package bath

import "github.com/qudyn/qudyn/internal/linalg"

// Bath is the environment contract consumed by the dynamics engines.
type Bath interface {
	// CouplingOp returns the system operator the bath couples to, in the
	// lab basis.
	CouplingOp() *linalg.Matrix

	// CorrT evaluates the bath correlation function C(t).
	CorrT(t float64) complex128

	// FTCorr evaluates the one-sided Fourier-Laplace transform
	// of C(t) at frequency omega: int_0^inf dt exp(i*omega*t) C(t).
	FTCorr(omega float64) complex128
}
