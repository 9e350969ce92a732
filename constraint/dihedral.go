// Copyright © 2024 Galvanized Logic Inc.

package constraint

import (
	"math"

	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/perr"
	"github.com/softbody/pbdcore/state"
)

// DihedralConstraint bends along the shared edge (k,l) of two triangles
// whose opposing (wing) vertices are i and j, holding the dihedral angle at
// a rest value theta0. Gradients follow Bridson's formulation (Bridson,
// Marino & Fedkiw, "Simulation of Clothing with Folds and Wrinkles"), the
// same derivation used by most production PBD bending constraints.
type DihedralConstraint struct {
	base
	i, j, k, l int
	theta0     float64
}

// NewDihedral builds a dihedral constraint for wing vertices i,j across
// shared edge k,l. Fails with DegenerateGeometry if either adjoining face
// area or the shared-edge length is below Epsilon at rest.
func NewDihedral(s *state.Store, i, j, k, l int, stiffness float64, iters int) (*DihedralConstraint, error) {
	pi, pj, pk, pl := s.Initial[i], s.Initial[j], s.Initial[k], s.Initial[l]
	_, _, _, _, theta0, ok := dihedralGradients(&pi, &pj, &pk, &pl)
	if !ok {
		return nil, perr.New(perr.DegenerateGeometry, "constraint.NewDihedral", "degenerate face or shared edge")
	}
	return &DihedralConstraint{
		base:   base{indices: []int{i, j, k, l}, kind: Dihedral, stiff: EffectiveStiffness(stiffness, iters)},
		i:      i, j: j, k: k, l: l, theta0: theta0,
	}, nil
}

// RestAngle returns the rest dihedral angle theta0.
func (d *DihedralConstraint) RestAngle() float64 { return d.theta0 }

// SolvePositionConstraint implements C = atan2(...) - theta0, using atan2
// rather than acos so the angle's sign (fold direction) is preserved.
func (d *DihedralConstraint) SolvePositionConstraint(s *state.Store) bool {
	pi, pj, pk, pl := s.Current[d.i], s.Current[d.j], s.Current[d.k], s.Current[d.l]
	gi, gj, gk, gl, phi, ok := dihedralGradients(&pi, &pj, &pk, &pl)
	if !ok {
		return false
	}
	c := phi - d.theta0
	return applyScalarGradient(s, d.indices, []lin.V3{gi, gj, gk, gl}, c, d.stiff)
}

// dihedralGradients computes the signed dihedral angle between the
// triangles (i,k,l) and (j,l,k) sharing edge (k,l), and its gradient with
// respect to each of the four vertices. ok is false when either face or
// the shared edge is degenerate.
func dihedralGradients(pi, pj, pk, pl *lin.V3) (gi, gj, gk, gl lin.V3, phi float64, ok bool) {
	e := lin.NewV3().Sub(pl, pk)
	elen := e.Len()
	if elen < Epsilon {
		return
	}
	invElen := 1 / elen

	n1u := lin.NewV3().Cross(lin.NewV3().Sub(pk, pi), lin.NewV3().Sub(pl, pi))
	n1sq := n1u.LenSqr()
	if math.Sqrt(n1sq)*0.5 < Epsilon {
		return
	}
	n2u := lin.NewV3().Cross(lin.NewV3().Sub(pl, pj), lin.NewV3().Sub(pk, pj))
	n2sq := n2u.LenSqr()
	if math.Sqrt(n2sq)*0.5 < Epsilon {
		return
	}

	n1 := lin.NewV3().Scale(n1u, 1/n1sq)
	n2 := lin.NewV3().Scale(n2u, 1/n2sq)

	gi = *lin.NewV3().Scale(n1, elen)
	gj = *lin.NewV3().Scale(n2, elen)

	piMinusPl := lin.NewV3().Sub(pi, pl)
	pjMinusPl := lin.NewV3().Sub(pj, pl)
	gk = *lin.NewV3().Add(
		lin.NewV3().Scale(n1, piMinusPl.Dot(e)*invElen),
		lin.NewV3().Scale(n2, pjMinusPl.Dot(e)*invElen),
	)

	pkMinusPi := lin.NewV3().Sub(pk, pi)
	pkMinusPj := lin.NewV3().Sub(pk, pj)
	gl = *lin.NewV3().Add(
		lin.NewV3().Scale(n1, pkMinusPi.Dot(e)*invElen),
		lin.NewV3().Scale(n2, pkMinusPj.Dot(e)*invElen),
	)

	n1hat := lin.NewV3().Set(n1u).Unit()
	n2hat := lin.NewV3().Set(n2u).Unit()
	ehat := lin.NewV3().Scale(e, invElen)
	phi = math.Atan2(lin.NewV3().Cross(n2hat, n1hat).Dot(ehat), n1hat.Dot(n2hat))
	ok = true
	return
}
