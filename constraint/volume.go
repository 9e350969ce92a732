// Copyright © 2024 Galvanized Logic Inc.

package constraint

import (
	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/perr"
	"github.com/softbody/pbdcore/state"
)

// VolumeConstraint holds a tetrahedron (i,j,k,l) at a fixed signed rest
// volume V0. Gradient correction is applied per particle weighted by that
// particle's own inverse mass — the source this was distilled from guarded
// two of its four branches with the wrong particle's inverse mass; indexing
// s.InvMass by the particle the gradient actually belongs to (as
// applyScalarGradient does) is the fix.
type VolumeConstraint struct {
	base
	i, j, k, l int
	rest       float64
}

// NewVolume builds a volume constraint over tetrahedron (i,j,k,l), rest
// volume read from x⁰. Fails with DegenerateGeometry if the rest tet is
// flat (|V0| below Epsilon).
func NewVolume(s *state.Store, i, j, k, l int, stiffness float64, iters int) (*VolumeConstraint, error) {
	xi, xj, xk, xl := s.Initial[i], s.Initial[j], s.Initial[k], s.Initial[l]
	vol := signedVolume(&xi, &xj, &xk, &xl)
	if vol < Epsilon && vol > -Epsilon {
		return nil, perr.New(perr.DegenerateGeometry, "constraint.NewVolume", "flat tetrahedron")
	}
	return &VolumeConstraint{
		base: base{indices: []int{i, j, k, l}, kind: Volume, stiff: EffectiveStiffness(stiffness, iters)},
		i:    i, j: j, k: k, l: l, rest: vol,
	}, nil
}

func signedVolume(xi, xj, xk, xl *lin.V3) float64 {
	b := lin.NewV3().Sub(xj, xi)
	c := lin.NewV3().Sub(xk, xi)
	d := lin.NewV3().Sub(xl, xi)
	return c.Cross(c, d).Dot(b) / 6
}

// SolvePositionConstraint implements
// C = (1/6)(xj-xi)·((xk-xi)×(xl-xi)) - V0.
func (v *VolumeConstraint) SolvePositionConstraint(s *state.Store) bool {
	xi, xj, xk, xl := s.Current[v.i], s.Current[v.j], s.Current[v.k], s.Current[v.l]
	b := lin.NewV3().Sub(&xj, &xi)
	c := lin.NewV3().Sub(&xk, &xi)
	d := lin.NewV3().Sub(&xl, &xi)

	c2 := *c // Cross mutates its receiver; copy so c stays intact for the gradients below.
	vol := c2.Cross(&c2, d).Dot(b) / 6
	cErr := vol - v.rest

	gradJ := lin.NewV3().Scale(lin.NewV3().Cross(c, d), 1.0/6)
	gradK := lin.NewV3().Scale(lin.NewV3().Cross(d, b), 1.0/6)
	gradL := lin.NewV3().Scale(lin.NewV3().Cross(b, c), 1.0/6)
	gradI := lin.NewV3().Neg(lin.NewV3().Add(lin.NewV3().Add(gradJ, gradK), gradL))

	return applyScalarGradient(s, v.indices, []lin.V3{*gradI, *gradJ, *gradK, *gradL}, cErr, v.stiff)
}
