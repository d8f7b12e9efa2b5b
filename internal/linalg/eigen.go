package linalg

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// EigHermitian diagonalizes a Hermitian matrix, returning eigenvalues in
// ascending order and the matching orthonormal eigenvectors as columns.
//
// The complex problem is embedded in a real symmetric one: for H = A + iB
// the 2n x 2n matrix [[A, -B], [B, A]] is symmetric and carries each
// eigenvalue of H twice, with real eigenvectors (x; y) mapping to complex
// eigenvectors x + iy. Degenerate clusters are resolved by Gram-Schmidt
// over the candidate complex vectors.
func EigHermitian(h *Matrix) ([]float64, *Matrix, error) {
	if !h.IsSquare() {
		return nil, nil, ErrShape
	}
	n := h.rows

	big := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a := real(h.At(i, j))
			b := imag(h.At(i, j))
			big.SetSym(i, j, a)
			big.SetSym(n+i, n+j, a)
			big.SetSym(i, n+j, -b)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(big, true); !ok {
		return nil, nil, ErrEigenFailed
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	scale := math.Max(1, math.Abs(vals[len(vals)-1]))
	scale = math.Max(scale, math.Abs(vals[0]))
	tol := 1e-9 * scale

	ev := make([]float64, 0, n)
	ek := New(n, n)
	kept := 0

	for lo := 0; lo < 2*n; {
		hi := lo + 1
		for hi < 2*n && vals[hi]-vals[lo] <= tol {
			hi++
		}
		// 2m real eigenvectors span an m-dimensional complex eigenspace.
		m := (hi - lo) / 2
		if (hi-lo)%2 != 0 {
			return nil, nil, ErrEigenFailed
		}
		mean := 0.0
		for i := lo; i < hi; i++ {
			mean += vals[i]
		}
		mean /= float64(hi - lo)

		basis := make([][]complex128, 0, m)
		for c := lo; c < hi && len(basis) < m; c++ {
			cand := make([]complex128, n)
			for i := 0; i < n; i++ {
				cand[i] = complex(vecs.At(i, c), vecs.At(n+i, c))
			}
			for _, v := range basis {
				var proj complex128
				for i := 0; i < n; i++ {
					proj += cmplx.Conj(v[i]) * cand[i]
				}
				for i := 0; i < n; i++ {
					cand[i] -= proj * v[i]
				}
			}
			norm := 0.0
			for _, v := range cand {
				norm += real(v)*real(v) + imag(v)*imag(v)
			}
			norm = math.Sqrt(norm)
			if norm < 1e-8 {
				continue
			}
			inv := complex(1/norm, 0)
			for i := range cand {
				cand[i] *= inv
			}
			basis = append(basis, cand)
		}
		if len(basis) != m {
			return nil, nil, ErrEigenFailed
		}
		for _, v := range basis {
			for i := 0; i < n; i++ {
				ek.Set(i, kept, v[i])
			}
			ev = append(ev, mean)
			kept++
		}
		lo = hi
	}

	if kept != n {
		return nil, nil, ErrEigenFailed
	}
	return ev, ek, nil
}
