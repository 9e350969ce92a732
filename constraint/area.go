// Copyright © 2024 Galvanized Logic Inc.

package constraint

import (
	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/perr"
	"github.com/softbody/pbdcore/state"
)

// AreaConstraint holds a triangle (i,j,k) at a fixed rest area A0.
type AreaConstraint struct {
	base
	i, j, k int
	rest    float64
}

// NewArea builds an area constraint over triangle (i,j,k), rest area read
// from x⁰. Fails with DegenerateGeometry if the rest triangle is degenerate
// (area below Epsilon).
func NewArea(s *state.Store, i, j, k int, stiffness float64, iters int) (*AreaConstraint, error) {
	xi, xj, xk := s.Initial[i], s.Initial[j], s.Initial[k]
	area := triangleArea(&xi, &xj, &xk)
	if area < Epsilon {
		return nil, perr.New(perr.DegenerateGeometry, "constraint.NewArea", "zero-area triangle")
	}
	return &AreaConstraint{
		base: base{indices: []int{i, j, k}, kind: Area, stiff: EffectiveStiffness(stiffness, iters)},
		i:    i, j: j, k: k, rest: area,
	}, nil
}

func triangleArea(xi, xj, xk *lin.V3) float64 {
	e1 := lin.NewV3().Sub(xj, xi)
	e2 := lin.NewV3().Sub(xk, xi)
	n := lin.NewV3().Cross(e1, e2)
	return 0.5 * n.Len()
}

// SolvePositionConstraint implements C = A - A0 where A is the current
// triangle area, with gradients recovered from the unnormalized cross
// product divided by 2A (spec.md §4.B). Skipped if the triangle is
// degenerate this step (area below Epsilon).
func (a *AreaConstraint) SolvePositionConstraint(s *state.Store) bool {
	xi, xj, xk := s.Current[a.i], s.Current[a.j], s.Current[a.k]
	e1 := lin.NewV3().Sub(&xj, &xi)
	e2 := lin.NewV3().Sub(&xk, &xi)
	n := lin.NewV3().Cross(e1, e2)
	twiceArea := n.Len()
	if twiceArea < Epsilon {
		return false
	}
	nHat := lin.NewV3().Scale(n, 1/twiceArea)
	area := 0.5 * twiceArea
	c := area - a.rest

	gradI := lin.NewV3().Scale(lin.NewV3().Cross(nHat, lin.NewV3().Sub(&xk, &xj)), 0.5)
	gradJ := lin.NewV3().Scale(lin.NewV3().Cross(nHat, lin.NewV3().Sub(&xi, &xk)), 0.5)
	gradK := lin.NewV3().Scale(lin.NewV3().Cross(nHat, lin.NewV3().Sub(&xj, &xi)), 0.5)

	return applyScalarGradient(s, a.indices, []lin.V3{*gradI, *gradJ, *gradK}, c, a.stiff)
}
