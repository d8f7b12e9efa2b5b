package bath

import (
	"math"

	"github.com/qudyn/qudyn/internal/linalg"
)

const (
	// quadrature grid for the real-time kernel
	defaultNodes   = 4096
	cutoffMultiple = 40.0
)

// OhmicBath is an Ohmic environment with exponential cutoff,
// J(w) = eta * w * exp(-w/wc), at thermal energy KT. The real-time kernel
// is evaluated by trapezoidal quadrature of
//
//	C(t) = (1/pi) * int_0^inf dw J(w) [coth(w/2kT) cos(wt) - i sin(wt)]
//
// and the Fourier-Laplace transform from detailed balance. The
// principal-value (Lamb shift) contribution to FTCorr is omitted; only
// the real, rate-producing part is returned.
type OhmicBath struct {
	Eta    float64
	Cutoff float64
	KT     float64

	op    *linalg.Matrix
	nodes int
}

func NewOhmic(eta, cutoff, kT float64, op *linalg.Matrix) *OhmicBath {
	return &OhmicBath{Eta: eta, Cutoff: cutoff, KT: kT, op: op, nodes: defaultNodes}
}

func (b *OhmicBath) CouplingOp() *linalg.Matrix { return b.op }

// SpectralDensity evaluates J(w) for w >= 0.
func (b *OhmicBath) SpectralDensity(w float64) float64 {
	return b.Eta * w * math.Exp(-w/b.Cutoff)
}

// cothWeight returns J(w)*coth(w/2kT) with the finite w->0 limit.
func (b *OhmicBath) cothWeight(w float64) float64 {
	if b.KT == 0 {
		return b.SpectralDensity(w)
	}
	if w < 1e-12*b.Cutoff {
		return 2 * b.Eta * b.KT
	}
	return b.SpectralDensity(w) / math.Tanh(w/(2*b.KT))
}

func (b *OhmicBath) CorrT(t float64) complex128 {
	wMax := cutoffMultiple * b.Cutoff
	dw := wMax / float64(b.nodes)
	var re, im float64
	prevRe := b.cothWeight(0) // cos(0) = 1
	prevIm := 0.0
	for i := 1; i <= b.nodes; i++ {
		w := float64(i) * dw
		fr := b.cothWeight(w) * math.Cos(w*t)
		fi := b.SpectralDensity(w) * math.Sin(w*t)
		re += 0.5 * dw * (prevRe + fr)
		im += 0.5 * dw * (prevIm + fi)
		prevRe, prevIm = fr, fi
	}
	return complex(re/math.Pi, -im/math.Pi)
}

// occupation returns the Bose-Einstein occupation n(w) for w > 0.
func (b *OhmicBath) occupation(w float64) float64 {
	if b.KT == 0 {
		return 0
	}
	x := w / b.KT
	if x > 700 {
		return 0
	}
	return 1 / math.Expm1(x)
}

func (b *OhmicBath) FTCorr(omega float64) complex128 {
	switch {
	case omega > 0:
		return complex(b.SpectralDensity(omega)*(b.occupation(omega)+1), 0)
	case omega < 0:
		return complex(b.SpectralDensity(-omega)*b.occupation(-omega), 0)
	default:
		return complex(b.Eta*b.KT, 0)
	}
}
