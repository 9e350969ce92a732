// Copyright © 2024 Galvanized Logic Inc.

package constraint

import (
	"math"

	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/perr"
	"github.com/softbody/pbdcore/state"
)

// FEMTetConstraint binds a tetrahedron (i,j,k,l) to one of the four
// constitutive models in Material. The constraint value C is the
// material's strain energy density (StVK, Corotation, NeoHookean each
// define their own below); its gradient w.r.t. each vertex is the
// corresponding column of V0*P*D⁻ᵀ, the fourth vertex taking the negated
// sum of the other three. Linear is a reserved no-op: solving it is
// always a no-op pending a small-strain branch.
type FEMTetConstraint struct {
	base
	i, j, k, l int
	dmInv      *lin.M3
	volume0    float64
	material   Material
	mu, lambda float64
}

// NewFEMTet builds an FEM tetrahedron constraint over (i,j,k,l). mu and
// lambda are the Lame parameters — see LameParameters to derive them from
// Young's modulus and Poisson's ratio. Fails with DegenerateGeometry if the
// rest tet is flat.
func NewFEMTet(s *state.Store, i, j, k, l int, material Material, mu, lambda, stiffness float64, iters int) (*FEMTetConstraint, error) {
	xi, xj, xk, xl := s.Initial[i], s.Initial[j], s.Initial[k], s.Initial[l]
	dm := edgeMatrixL(&xi, &xj, &xk, &xl)
	vol0 := dm.Det() / 6
	if vol0 < Epsilon && vol0 > -Epsilon {
		return nil, perr.New(perr.DegenerateGeometry, "constraint.NewFEMTet", "flat tetrahedron")
	}
	dmInv := lin.NewM3().Inv(dm)
	return &FEMTetConstraint{
		base:     base{indices: []int{i, j, k, l}, kind: FEMTet, stiff: EffectiveStiffness(stiffness, iters)},
		i:        i, j: j, k: k, l: l,
		dmInv:    dmInv,
		volume0:  vol0,
		material: material,
		mu:       mu, lambda: lambda,
	}, nil
}

// edgeMatrix builds the 3x3 matrix whose columns are the three edges of
// tetrahedron (i,j,k,l) emanating from i: [xj-xi | xk-xi | xl-xi]. Used by
// VolumeConstraint, whose own formula is explicitly anchored at i.
func edgeMatrix(xi, xj, xk, xl *lin.V3) *lin.M3 {
	e1 := lin.NewV3().Sub(xj, xi)
	e2 := lin.NewV3().Sub(xk, xi)
	e3 := lin.NewV3().Sub(xl, xi)
	return lin.NewM3().SetS(
		e1.X, e2.X, e3.X,
		e1.Y, e2.Y, e3.Y,
		e1.Z, e2.Z, e3.Z,
	)
}

// edgeMatrixL builds D = [xi-xl | xj-xl | xk-xl], the rest-edge matrix
// anchored at the fourth vertex l, as the FEM-tet deformation gradient
// requires. Columns correspond to i, j, k in order; l's own gradient is
// recovered as the negated sum of the other three.
func edgeMatrixL(xi, xj, xk, xl *lin.V3) *lin.M3 {
	e1 := lin.NewV3().Sub(xi, xl)
	e2 := lin.NewV3().Sub(xj, xl)
	e3 := lin.NewV3().Sub(xk, xl)
	return lin.NewM3().SetS(
		e1.X, e2.X, e3.X,
		e1.Y, e2.Y, e3.Y,
		e1.Z, e2.Z, e3.Z,
	)
}

func frobSq(m *lin.M3) float64 {
	return m.Xx*m.Xx + m.Xy*m.Xy + m.Xz*m.Xz +
		m.Yx*m.Yx + m.Yy*m.Yy + m.Yz*m.Yz +
		m.Zx*m.Zx + m.Zy*m.Zy + m.Zz*m.Zz
}

func trace3(m *lin.M3) float64 { return m.Xx + m.Yy + m.Zz }

// pk1Stress evaluates the first Piola-Kirchhoff stress P(F) and the strain
// energy C(F) for the given material. ok is false for Linear (a reserved
// no-op — see FEMTetConstraint) or when F is too close to singular for
// Corotation's SVD or NeoHookean's log(J) term to be evaluated safely.
func pk1Stress(material Material, mu, lambda float64, f *lin.M3) (p *lin.M3, c float64, ok bool) {
	id := lin.NewM3I()
	switch material {
	case StVK:
		// E = 1/2(FᵀF - I); P = F(2*mu*E + lambda*tr(E)*I); C = mu||E||^2 + 1/2*lambda*tr(E)^2.
		e := lin.NewM3().MultLtR(f, f)
		e.Sub(e, id)
		e.Scale(0.5)
		trE := trace3(e)
		inner := lin.NewM3().Set(e)
		inner.Scale(2 * mu)
		traceTerm := lin.NewM3().Set(id)
		traceTerm.Scale(lambda * trE)
		inner.Add(inner, traceTerm)
		p = lin.NewM3().Mult(f, inner)
		c = mu*frobSq(e) + 0.5*lambda*trE*trE
		return p, c, true

	case Corotation:
		// F = U Sigma Vᵀ; R = U Vᵀ; P = 2*mu*(F-R) + lambda*(J-1)*J*F⁻ᵀ, J = det(F).
		// C = mu||F-R||^2 + 1/2*lambda*(J-1)^2, whose gradient w.r.t. F (treating R
		// as locally constant, the standard corotational approximation) is exactly P.
		svd, svdOK := lin.Svd3(f)
		if !svdOK {
			return nil, 0, false
		}
		vt := lin.NewM3().Transpose(svd.V)
		r := lin.NewM3().Mult(svd.U, vt)
		j := svd.S.X * svd.S.Y * svd.S.Z

		fMinusR := lin.NewM3().Sub(f, r)
		p = lin.NewM3().Set(fMinusR)
		p.Scale(2 * mu)

		finv := lin.NewM3().Inv(f)
		finvT := lin.NewM3().Transpose(finv)
		finvT.Scale(lambda * (j - 1) * j)
		p.Add(p, finvT)

		c = mu*frobSq(fMinusR) + 0.5*lambda*(j-1)*(j-1)
		return p, c, true

	case NeoHookean:
		// P = mu*(F - F⁻ᵀ) + lambda*log(J)*F⁻ᵀ; C = 1/2*mu*(||F||^2-3) - mu*log(J) + 1/2*lambda*log(J)^2.
		j := f.Det()
		if j < Epsilon {
			return nil, 0, false
		}
		finv := lin.NewM3().Inv(f)
		finvT := lin.NewM3().Transpose(finv)
		logJ := math.Log(j)
		i1 := frobSq(f)
		c = 0.5*mu*(i1-3) - mu*logJ + 0.5*lambda*logJ*logJ
		p = lin.NewM3().Sub(f, finvT)
		p.Scale(mu)
		scaledFinvT := lin.NewM3().Set(finvT)
		scaledFinvT.Scale(lambda * logJ)
		p.Add(p, scaledFinvT)
		return p, c, true
	}
	return nil, 0, false // Linear: reserved no-op.
}

// SolvePositionConstraint computes F = Ds*DmInv, evaluates the material's
// stress and energy, and projects positions along the gradient
// V0*P*DmInv^T. Returns false (no mutation) for Linear (a reserved no-op),
// a degenerate step deformation, or negligible strain energy.
func (c *FEMTetConstraint) SolvePositionConstraint(s *state.Store) bool {
	if c.material == Linear {
		return false
	}
	xi, xj, xk, xl := s.Current[c.i], s.Current[c.j], s.Current[c.k], s.Current[c.l]
	ds := edgeMatrixL(&xi, &xj, &xk, &xl)
	f := lin.NewM3().Mult(ds, c.dmInv)

	p, cVal, ok := pk1Stress(c.material, c.mu, c.lambda, f)
	if !ok || cVal < Epsilon {
		return false
	}
	vol0 := math.Abs(c.volume0)

	dmInvT := lin.NewM3().Transpose(c.dmInv)
	h := lin.NewM3().Mult(p, dmInvT)
	h.Scale(vol0)

	gradI := *lin.NewV3S(h.Xx, h.Yx, h.Zx)
	gradJ := *lin.NewV3S(h.Xy, h.Yy, h.Zy)
	gradK := *lin.NewV3S(h.Xz, h.Yz, h.Zz)
	gradL := *lin.NewV3().Neg(lin.NewV3().Add(lin.NewV3().Add(&gradI, &gradJ), &gradK))

	return applyScalarGradient(s, c.indices, []lin.V3{gradI, gradJ, gradK, gradL}, cVal, c.stiff)
}
