package linalg

import "errors"

// Domain errors for kernel operations.
var (
	// ErrShape indicates an operand that is neither a column vector nor a
	// square matrix where one of the two was required.
	ErrShape = errors.New("linalg: operand is neither a vector nor a square matrix")

	// ErrDimensionMismatch indicates operands with incompatible dimensions.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")

	// ErrEigenFailed indicates the eigensolver did not converge or the
	// eigenvector extraction lost rank.
	ErrEigenFailed = errors.New("linalg: eigendecomposition failed")
)
