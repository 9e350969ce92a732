// Copyright © 2024 Galvanized Logic Inc.

package constraint

import (
	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/perr"
	"github.com/softbody/pbdcore/state"
)

// hexNaturalCoords are the (xi,eta,zeta) corners of the 8-node trilinear
// hexahedron in natural space, in the vertex order mesh.Hexahedron uses
// (matching the common VTK_HEXAHEDRON convention).
var hexNaturalCoords = [8]lin.V3{
	{X: -1, Y: -1, Z: -1},
	{X: 1, Y: -1, Z: -1},
	{X: 1, Y: 1, Z: -1},
	{X: -1, Y: 1, Z: -1},
	{X: -1, Y: -1, Z: 1},
	{X: 1, Y: -1, Z: 1},
	{X: 1, Y: 1, Z: 1},
	{X: -1, Y: 1, Z: 1},
}

const gaussPt = 0.5773502691896258 // 1/sqrt(3)

// hexGaussPoints are the eight points of the standard 2x2x2 Gauss-Legendre
// rule over [-1,1]^3, each carrying unit weight.
var hexGaussPoints = [8]lin.V3{
	{X: -gaussPt, Y: -gaussPt, Z: -gaussPt},
	{X: gaussPt, Y: -gaussPt, Z: -gaussPt},
	{X: gaussPt, Y: gaussPt, Z: -gaussPt},
	{X: -gaussPt, Y: gaussPt, Z: -gaussPt},
	{X: -gaussPt, Y: -gaussPt, Z: gaussPt},
	{X: gaussPt, Y: -gaussPt, Z: gaussPt},
	{X: gaussPt, Y: gaussPt, Z: gaussPt},
	{X: -gaussPt, Y: gaussPt, Z: gaussPt},
}

// hexShapeGradientsAt returns dN_a/d(xi,eta,zeta) at natural-space point p
// for each of the 8 trilinear shape functions
// N_a = (1/8)(1+xi*xi_a)(1+eta*eta_a)(1+zeta*zeta_a).
func hexShapeGradientsAt(p lin.V3) [8]lin.V3 {
	var g [8]lin.V3
	for a := 0; a < 8; a++ {
		c := hexNaturalCoords[a]
		g[a] = *lin.NewV3S(
			0.125*c.X*(1+p.Y*c.Y)*(1+p.Z*c.Z),
			0.125*c.Y*(1+p.X*c.X)*(1+p.Z*c.Z),
			0.125*c.Z*(1+p.X*c.X)*(1+p.Y*c.Y),
		)
	}
	return g
}

// hexJacobian builds J = sum_a x_a (dN_a/dxi)^T, the map from natural-space
// derivatives to physical space, at whatever point gradN was evaluated.
func hexJacobian(x [8]lin.V3, gradN [8]lin.V3) *lin.M3 {
	j := lin.NewM3()
	for a := 0; a < 8; a++ {
		j.Xx += x[a].X * gradN[a].X
		j.Xy += x[a].X * gradN[a].Y
		j.Xz += x[a].X * gradN[a].Z
		j.Yx += x[a].Y * gradN[a].X
		j.Yy += x[a].Y * gradN[a].Y
		j.Yz += x[a].Y * gradN[a].Z
		j.Zx += x[a].Z * gradN[a].X
		j.Zy += x[a].Z * gradN[a].Y
		j.Zz += x[a].Z * gradN[a].Z
	}
	return j
}

// hexQuadPoint holds the per-Gauss-point quantities fixed at rest: the
// physical-space shape gradients (w.r.t. the rest configuration) and the
// reference volume element the point contributes.
type hexQuadPoint struct {
	gradX [8]lin.V3
	vol   float64
}

// FEMHexConstraint binds a trilinear hexahedron to one of the four
// constitutive models, evaluating the stress and energy at the eight points
// of the standard 2x2x2 Gauss-Legendre rule and summing their contributions.
type FEMHexConstraint struct {
	base
	indicesArr [8]int
	quad       [8]hexQuadPoint
	material   Material
	mu, lambda float64
}

// NewFEMHex builds an FEM hexahedron constraint over verts (in
// mesh.Hexahedron order). Fails with DegenerateGeometry if any Gauss point's
// rest Jacobian is non-positive.
func NewFEMHex(s *state.Store, verts [8]int, material Material, mu, lambda, stiffness float64, iters int) (*FEMHexConstraint, error) {
	var x0 [8]lin.V3
	for a, idx := range verts {
		x0[a] = s.Initial[idx]
	}
	var quad [8]hexQuadPoint
	for q, gp := range hexGaussPoints {
		gradNxi := hexShapeGradientsAt(gp)
		j0 := hexJacobian(x0, gradNxi)
		detJ0 := j0.Det()
		if detJ0 < Epsilon {
			return nil, perr.New(perr.DegenerateGeometry, "constraint.NewFEMHex", "non-positive rest Jacobian at Gauss point")
		}
		j0invT := lin.NewM3().Transpose(lin.NewM3().Inv(j0))
		var gradX [8]lin.V3
		for a := 0; a < 8; a++ {
			gradX[a] = *lin.NewV3().MultMv(j0invT, &gradNxi[a])
		}
		quad[q] = hexQuadPoint{gradX: gradX, vol: detJ0}
	}
	return &FEMHexConstraint{
		base:       base{indices: verts[:], kind: FEMHex, stiff: EffectiveStiffness(stiffness, iters)},
		indicesArr: verts,
		quad:       quad,
		material:   material,
		mu:         mu, lambda: lambda,
	}, nil
}

// SolvePositionConstraint evaluates F, the material's stress and energy at
// each of the 8 Gauss points, sums them into a single constraint value and
// per-vertex gradient, and projects positions. Returns false (no mutation)
// for Linear (a reserved no-op) or negligible total strain energy.
func (c *FEMHexConstraint) SolvePositionConstraint(s *state.Store) bool {
	if c.material == Linear {
		return false
	}
	var x [8]lin.V3
	for a, idx := range c.indicesArr {
		x[a] = s.Current[idx]
	}

	cVal := 0.0
	var grads [8]lin.V3
	any := false
	for _, qp := range c.quad {
		f := lin.NewM3()
		for a := 0; a < 8; a++ {
			f.Xx += x[a].X * qp.gradX[a].X
			f.Xy += x[a].X * qp.gradX[a].Y
			f.Xz += x[a].X * qp.gradX[a].Z
			f.Yx += x[a].Y * qp.gradX[a].X
			f.Yy += x[a].Y * qp.gradX[a].Y
			f.Yz += x[a].Y * qp.gradX[a].Z
			f.Zx += x[a].Z * qp.gradX[a].X
			f.Zy += x[a].Z * qp.gradX[a].Y
			f.Zz += x[a].Z * qp.gradX[a].Z
		}
		p, w, ok := pk1Stress(c.material, c.mu, c.lambda, f)
		if !ok {
			continue
		}
		any = true
		cVal += qp.vol * w
		for a := 0; a < 8; a++ {
			ga := lin.NewV3().MultMv(p, &qp.gradX[a])
			ga.Scale(ga, qp.vol)
			grads[a].Add(&grads[a], ga)
		}
	}
	if !any || cVal < Epsilon {
		return false
	}

	return applyScalarGradient(s, c.indices, grads[:], cVal, c.stiff)
}
