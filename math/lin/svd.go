// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package lin

import "gonum.org/v1/gonum/mat"

// SVD3 holds the singular value decomposition of a 3x3 matrix F = U*S*V^T
// where S is diagonal (stored as its three singular values) and U, V are
// orthogonal. This is the one place the core reaches past its native M3/V3
// types into a third-party dense linear-algebra facility: M3.Det/M3.Inv
// cover the spec's determinant/inverse needs directly, but a corotational
// FEM material additionally needs a polar decomposition, and a generic SVD
// solver is not worth hand-rolling for a 3x3.
type SVD3 struct {
	U *M3
	S *V3 // singular values, largest first as returned by gonum.
	V *M3
}

// Svd3 computes the singular value decomposition of a.
// The gonum SVD always succeeds for a well-formed finite 3x3 matrix;
// ok is false only if the decomposition failed to converge (near-NaN input).
func Svd3(a *M3) (out SVD3, ok bool) {
	dense := mat.NewDense(3, 3, []float64{
		a.Xx, a.Xy, a.Xz,
		a.Yx, a.Yy, a.Yz,
		a.Zx, a.Zy, a.Zz,
	})

	var svd mat.SVD
	if !svd.Factorize(dense, mat.SVDFull) {
		return SVD3{}, false
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sv := svd.Values(nil)

	out.U = m3FromDense(&u)
	out.V = m3FromDense(&v)
	out.S = NewV3S(sv[0], sv[1], sv[2])
	return out, true
}

// m3FromDense reads a row-major 3x3 gonum dense matrix back into an M3.
func m3FromDense(d *mat.Dense) *M3 {
	m := NewM3()
	m.Xx, m.Xy, m.Xz = d.At(0, 0), d.At(0, 1), d.At(0, 2)
	m.Yx, m.Yy, m.Yz = d.At(1, 0), d.At(1, 1), d.At(1, 2)
	m.Zx, m.Zy, m.Zz = d.At(2, 0), d.At(2, 1), d.At(2, 2)
	return m
}
