package linalg

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
)

// Matrix is a dense complex matrix in row-major layout. It is the state
// and operator type for the whole module: density operators, Hamiltonians,
// coupling operators and Liouville-space superoperators are all Matrix
// values of the appropriate shape.
type Matrix struct {
	rows, cols int
	data       []complex128
}

func New(rows, cols int) *Matrix {
	return &Matrix{
		rows: rows,
		cols: cols,
		data: make([]complex128, rows*cols),
	}
}

// FromRows builds a matrix from explicit row slices. All rows must have
// equal length.
func FromRows(rows [][]complex128) *Matrix {
	r := len(rows)
	c := len(rows[0])
	m := New(r, c)
	for i, row := range rows {
		if len(row) != c {
			panic("linalg: ragged rows")
		}
		copy(m.data[i*c:(i+1)*c], row)
	}
	return m
}

func Identity(n int) *Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m
}

func (m *Matrix) Dims() (rows, cols int) { return m.rows, m.cols }
func (m *Matrix) Rows() int              { return m.rows }
func (m *Matrix) Cols() int              { return m.cols }

func (m *Matrix) At(i, j int) complex128     { return m.data[i*m.cols+j] }
func (m *Matrix) Set(i, j int, v complex128) { m.data[i*m.cols+j] = v }

// CopyFrom overwrites m with src in place. Shapes must match.
func (m *Matrix) CopyFrom(src *Matrix) {
	if m.rows != src.rows || m.cols != src.cols {
		panic("linalg: shape mismatch in CopyFrom")
	}
	copy(m.data, src.data)
}

func (m *Matrix) Clone() *Matrix {
	c := New(m.rows, m.cols)
	copy(c.data, m.data)
	return c
}

// IsSquare reports whether the matrix is square, the shape class used for
// operators and density matrices.
func (m *Matrix) IsSquare() bool { return m.rows == m.cols && m.rows > 0 }

// IsColVector reports whether the matrix is a single-column vector, the
// shape class used for wavefunctions and Liouville-flattened states.
func (m *Matrix) IsColVector() bool { return m.cols == 1 && m.rows > 0 }

// IsValid reports whether the matrix is free of NaN and Inf entries.
func (m *Matrix) IsValid() bool {
	for _, v := range m.data {
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return false
		}
	}
	return true
}

func (m *Matrix) Add(other *Matrix) *Matrix {
	out := m.Clone()
	cmplxs.Add(out.data, other.data)
	return out
}

func (m *Matrix) Sub(other *Matrix) *Matrix {
	out := m.Clone()
	cmplxs.Sub(out.data, other.data)
	return out
}

func (m *Matrix) Scale(alpha complex128) *Matrix {
	out := m.Clone()
	cmplxs.Scale(alpha, out.data)
	return out
}

// AddScaled accumulates alpha*other into m in place. The integrators use
// this to assemble Runge-Kutta stage states without extra allocation.
func (m *Matrix) AddScaled(alpha complex128, other *Matrix) {
	cmplxs.AddScaled(m.data, alpha, other.data)
}

// MulElem returns the Hadamard (elementwise) product. The dressed coupling
// operators of the Redfield engine are elementwise products of a coupling
// operator with a frequency-dependent factor.
func (m *Matrix) MulElem(other *Matrix) *Matrix {
	out := m.Clone()
	cmplxs.Mul(out.data, other.data)
	return out
}

func (m *Matrix) Mul(other *Matrix) *Matrix {
	if m.cols != other.rows {
		panic("linalg: dimension mismatch in Mul")
	}
	out := New(m.rows, other.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			a := m.data[i*m.cols+k]
			if a == 0 {
				continue
			}
			row := other.data[k*other.cols:]
			dst := out.data[i*other.cols:]
			for j := 0; j < other.cols; j++ {
				dst[j] += a * row[j]
			}
		}
	}
	return out
}

// Dag returns the conjugate transpose.
func (m *Matrix) Dag() *Matrix {
	out := New(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*m.rows+i] = cmplx.Conj(m.data[i*m.cols+j])
		}
	}
	return out
}

func (m *Matrix) Trace() complex128 {
	if !m.IsSquare() {
		panic("linalg: trace of non-square matrix")
	}
	var tr complex128
	for i := 0; i < m.rows; i++ {
		tr += m.data[i*m.cols+i]
	}
	return tr
}

// MaxAbsDiff returns max|m - other| over all entries.
func (m *Matrix) MaxAbsDiff(other *Matrix) float64 {
	max := 0.0
	for i, v := range m.data {
		if d := cmplx.Abs(v - other.data[i]); d > max {
			max = d
		}
	}
	return max
}

// IsHermitian checks max|m - m†| against tol. Non-square matrices are
// never Hermitian.
func (m *Matrix) IsHermitian(tol float64) bool {
	if !m.IsSquare() {
		return false
	}
	for i := 0; i < m.rows; i++ {
		for j := i; j < m.cols; j++ {
			d := m.data[i*m.cols+j] - cmplx.Conj(m.data[j*m.cols+i])
			if cmplx.Abs(d) > tol {
				return false
			}
		}
	}
	return true
}

// MaxAbs returns the largest entry magnitude.
func (m *Matrix) MaxAbs() float64 {
	max := 0.0
	for _, v := range m.data {
		if a := cmplx.Abs(v); a > max {
			max = a
		}
	}
	return max
}

// Norm2 returns the Frobenius norm.
func (m *Matrix) Norm2() float64 {
	sum := 0.0
	for _, v := range m.data {
		sum += real(v)*real(v) + imag(v)*imag(v)
	}
	return math.Sqrt(sum)
}

// Commutator returns a*b - b*a.
func Commutator(a, b *Matrix) *Matrix {
	return a.Mul(b).Sub(b.Mul(a))
}

// Anticommutator returns a*b + b*a.
func Anticommutator(a, b *Matrix) *Matrix {
	return a.Mul(b).Add(b.Mul(a))
}

// ExpectationValue returns Tr(op * rho).
func ExpectationValue(op, rho *Matrix) complex128 {
	if op.cols != rho.rows || !rho.IsSquare() {
		panic("linalg: dimension mismatch in ExpectationValue")
	}
	var tr complex128
	n := rho.rows
	for i := 0; i < n; i++ {
		for k := 0; k < n; k++ {
			tr += op.data[i*n+k] * rho.data[k*n+i]
		}
	}
	return tr
}

// Kron returns the Kronecker product a ⊗ b.
func Kron(a, b *Matrix) *Matrix {
	out := New(a.rows*b.rows, a.cols*b.cols)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			av := a.data[i*a.cols+j]
			if av == 0 {
				continue
			}
			for k := 0; k < b.rows; k++ {
				for l := 0; l < b.cols; l++ {
					out.Set(i*b.rows+k, j*b.cols+l, av*b.data[k*b.cols+l])
				}
			}
		}
	}
	return out
}
