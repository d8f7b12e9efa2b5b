package quantum

import "errors"

var (
	// ErrNotHermitian indicates a Hamiltonian, coupling operator or
	// observable that fails the Hermiticity check.
	ErrNotHermitian = errors.New("quantum: operator is not Hermitian")

	// ErrUnsupported indicates a named but unimplemented configuration,
	// such as the adiabatic transform of the multi-mode Hamiltonian.
	ErrUnsupported = errors.New("quantum: unsupported configuration")
)
