// Copyright © 2024 Galvanized Logic Inc.

package constraint

import (
	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/state"
)

// ContactConstraint is the transient constraint the collision pipeline
// synthesizes from a collision record each step (spec.md §4.D/§4.E),
// appended to a scratch list and discarded after projection. Every contact
// shape the pipeline produces — plane-vertex (PD), mesh-vertex correction
// (MA), triangle-point (TV/VT) and edge-edge (EE) — reduces to the same
// linear form:
//
//	C(x) = (sum_k coeffs[k] * x[indices[k]]) . normal - target
//
// with gradient d/dx[indices[k]] C = coeffs[k] * normal. A plane-vertex
// contact is one index with coeff 1; a triangle-point contact is the point
// plus the triangle's three vertices weighted by (1, -b0, -b1, -b2) for
// barycentric weights b; an edge-edge contact is the four edge endpoints
// weighted by (1-s, s, -(1-t), -t) for the two edges' closest-point
// parameters s, t.
type ContactConstraint struct {
	base
	coeffs        []float64
	normal        lin.V3
	target        float64
	bidirectional bool
}

// NewContact builds a contact constraint. indices and coeffs must be the
// same length. A one-sided (bidirectional=false) contact only projects when
// C(x) = Σ coeffs·x·normal − target is below zero (penetrating); a bidirectional contact projects either way,
// matching spec.md §4.C's bidirectional plane-sphere variant.
func NewContact(indices []int, coeffs []float64, normal lin.V3, target, stiffness float64, bidirectional bool) *ContactConstraint {
	return &ContactConstraint{
		base:          base{indices: indices, kind: Contact, stiff: stiffness},
		coeffs:        append([]float64(nil), coeffs...),
		normal:        normal,
		target:        target,
		bidirectional: bidirectional,
	}
}

// NewPlaneVertexContact builds a PD (penetration-depth) contact: a single
// vertex held outside a half-space with outward normal n, at signed offset
// target along n.
func NewPlaneVertexContact(i int, normal lin.V3, target, stiffness float64, bidirectional bool) *ContactConstraint {
	return NewContact([]int{i}, []float64{1}, normal, target, stiffness, bidirectional)
}

// NewVertexCorrectionContact builds an MA (mesh-vertex) contact from an
// already-computed correction vector at the vertex's position xi at
// detection time — e.g. the mesh-sphere and mesh-plane handlers in
// spec.md §4.C, which hand back a full displacement rather than a
// normal/depth pair. target is anchored at xi.n so a single unit-stiffness
// pass reproduces the displacement exactly, regardless of where xi sits in
// world space.
func NewVertexCorrectionContact(i int, xi, correction lin.V3, stiffness float64) *ContactConstraint {
	dist := correction.Len()
	if dist < Epsilon {
		return NewContact([]int{i}, []float64{1}, lin.V3{}, 0, 0, false)
	}
	n := *lin.NewV3().Scale(&correction, 1/dist)
	target := xi.Dot(&n) + dist
	return NewContact([]int{i}, []float64{1}, n, target, stiffness, false)
}

// NewTrianglePointContact builds a TV/VT-shaped contact: point index p held
// outside the plane of triangle tri, weighted by tri's barycentric
// coordinates bary under p, with outward normal n and signed-distance
// target, per the contact doc comment's "(1, -b0, -b1, -b2)" weighting.
func NewTrianglePointContact(p int, tri [3]int, bary [3]float64, normal lin.V3, target, stiffness float64) *ContactConstraint {
	indices := []int{p, tri[0], tri[1], tri[2]}
	coeffs := []float64{1, -bary[0], -bary[1], -bary[2]}
	return NewContact(indices, coeffs, normal, target, stiffness, false)
}

// NewEdgeEdgeContact builds an EE-shaped contact: the two edges' endpoints
// weighted by their closest-point parameters s (on edgeA) and t (on edgeB),
// per the contact doc comment's "(1-s, s, -(1-t), -t)" weighting.
func NewEdgeEdgeContact(edgeA, edgeB [2]int, s, t float64, normal lin.V3, target, stiffness float64) *ContactConstraint {
	indices := []int{edgeA[0], edgeA[1], edgeB[0], edgeB[1]}
	coeffs := []float64{1 - s, s, -(1 - t), -t}
	return NewContact(indices, coeffs, normal, target, stiffness, false)
}

// SolvePositionConstraint evaluates C(x) and, if violated (or always, for a
// bidirectional contact), applies the standard scalar-gradient correction.
func (k *ContactConstraint) SolvePositionConstraint(s *state.Store) bool {
	val := 0.0
	for idx, i := range k.indices {
		val += k.coeffs[idx] * s.Current[i].Dot(&k.normal)
	}
	c := val - k.target
	if !k.bidirectional && c >= 0 {
		return false
	}
	grads := make([]lin.V3, len(k.indices))
	for idx := range k.indices {
		grads[idx] = *lin.NewV3().Scale(&k.normal, k.coeffs[idx])
	}
	return applyScalarGradient(s, k.indices, grads, c, k.stiff)
}
