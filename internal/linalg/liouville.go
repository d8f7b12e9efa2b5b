package linalg

// Flatten maps a square matrix to its Liouville-space column vector,
// row-major: rho[i,j] -> vec[i*n+j].
func Flatten(rho *Matrix) (*Matrix, error) {
	if !rho.IsSquare() {
		return nil, ErrShape
	}
	n := rho.rows
	out := New(n*n, 1)
	copy(out.data, rho.data)
	return out, nil
}

// Unflatten is the inverse of Flatten. n is the Hilbert-space dimension.
func Unflatten(vec *Matrix, n int) (*Matrix, error) {
	if !vec.IsColVector() || vec.rows != n*n {
		return nil, ErrShape
	}
	out := New(n, n)
	copy(out.data, vec.data)
	return out, nil
}

// SuperOpFromMap builds the n^2 x n^2 Liouville-space representation of a
// linear map on n x n matrices by applying it to every matrix unit. The
// column indexed (c,d) holds the flattened image of |c><d|.
func SuperOpFromMap(n int, apply func(*Matrix) *Matrix) *Matrix {
	gen := New(n*n, n*n)
	unit := New(n, n)
	for c := 0; c < n; c++ {
		for d := 0; d < n; d++ {
			unit.Set(c, d, 1)
			img := apply(unit)
			unit.Set(c, d, 0)
			col := c*n + d
			for a := 0; a < n; a++ {
				for b := 0; b < n; b++ {
					gen.Set(a*n+b, col, img.At(a, b))
				}
			}
		}
	}
	return gen
}
