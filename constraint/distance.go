// Copyright © 2024 Galvanized Logic Inc.

package constraint

import (
	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/perr"
	"github.com/softbody/pbdcore/state"
)

// DistanceConstraint holds two particles at a fixed rest length L0. It is
// the cheapest kernel in the library and the one most other constraints
// build a rest-length measurement from (FEM edges, cloth grids).
type DistanceConstraint struct {
	base
	i, j int
	rest float64
}

// NewDistance builds a distance constraint between particles i and j, with
// rest length read from x⁰. Fails with DegenerateGeometry if the particles
// are coincident at rest (rest length below Epsilon).
func NewDistance(s *state.Store, i, j int, stiffness float64, iters int) (*DistanceConstraint, error) {
	xi, xj := s.Initial[i], s.Initial[j]
	rest := xi.Dist(&xj)
	if rest < Epsilon {
		return nil, perr.New(perr.DegenerateGeometry, "constraint.NewDistance", "coincident particles")
	}
	return &DistanceConstraint{
		base: base{indices: []int{i, j}, kind: Distance, stiff: EffectiveStiffness(stiffness, iters)},
		i:    i, j: j, rest: rest,
	}, nil
}

// RestLength returns the rest length L0 this constraint was initialized with.
func (d *DistanceConstraint) RestLength() float64 { return d.rest }

// SolvePositionConstraint implements C = ||xi-xj|| - L0, correction along
// the edge direction. Skipped (returns false) if both particles are pinned
// or the particles have become coincident this step.
func (d *DistanceConstraint) SolvePositionConstraint(s *state.Store) bool {
	xi, xj := s.Current[d.i], s.Current[d.j]
	delta := lin.NewV3().Sub(&xi, &xj)
	length := delta.Len()
	if length < Epsilon {
		return false // coincident this step: gradient direction undefined.
	}
	c := length - d.rest
	grad := lin.NewV3().Scale(delta, 1/length) // ∇_i C = (xi-xj)/|xi-xj|, ∇_j C = -∇_i C.
	gradNeg := lin.NewV3().Neg(grad)
	return applyScalarGradient(s, d.indices, []lin.V3{*grad, *gradNeg}, c, d.stiff)
}
