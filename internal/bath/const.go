package bath

import "github.com/qudyn/qudyn/internal/linalg"

// ConstBath has a time-independent correlation function. It has no
// physical counterpart; the dressing recurrence reduces to an exact
// trapezoid of a constant, which pins down its bookkeeping in tests.
type ConstBath struct {
	Value complex128

	op *linalg.Matrix
}

func NewConst(value complex128, op *linalg.Matrix) *ConstBath {
	return &ConstBath{Value: value, op: op}
}

func (b *ConstBath) CouplingOp() *linalg.Matrix { return b.op }
func (b *ConstBath) CorrT(float64) complex128   { return b.Value }
func (b *ConstBath) FTCorr(float64) complex128  { return b.Value }
