package bath

import (
	"math"

	"github.com/qudyn/qudyn/internal/linalg"
)

// DrudeBath is an overdamped Drude-Lorentz environment in the
// high-temperature limit, where the correlation function collapses to a
// single exponential:
//
//	C(t) = (2*lambda*kT - i*lambda*gamma) * exp(-gamma*|t|)
//
// Lambda is the reorganization energy, Cutoff the Drude decay rate gamma,
// KT the thermal energy. Both C(t) and its one-sided transform are
// analytic, which makes this the reference bath for the TCL2 recurrence.
type DrudeBath struct {
	Lambda float64
	Cutoff float64
	KT     float64

	op *linalg.Matrix
}

func NewDrude(lambda, cutoff, kT float64, op *linalg.Matrix) *DrudeBath {
	return &DrudeBath{Lambda: lambda, Cutoff: cutoff, KT: kT, op: op}
}

func (b *DrudeBath) CouplingOp() *linalg.Matrix { return b.op }

func (b *DrudeBath) amplitude() complex128 {
	return complex(2*b.Lambda*b.KT, -b.Lambda*b.Cutoff)
}

func (b *DrudeBath) CorrT(t float64) complex128 {
	return b.amplitude() * complex(math.Exp(-b.Cutoff*math.Abs(t)), 0)
}

func (b *DrudeBath) FTCorr(omega float64) complex128 {
	// int_0^inf exp(i*w*t) exp(-g*t) dt = 1/(g - i*w)
	return b.amplitude() / complex(b.Cutoff, -omega)
}
