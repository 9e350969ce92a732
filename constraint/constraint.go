// Copyright © 2024 Galvanized Logic Inc.

// Package constraint is the elastic constraint library — Component B of the
// physics core and, per spec.md §2, the component that dominates the
// implementation: every constraint kind is an independent algebraic kernel
// operating on particle indices in a state.Store.
//
// Deep inheritance (Constraint -> PbdConstraint -> {Distance, Area, ...}
// with virtual dispatch in the source this was distilled from) collapses
// here to a small interface satisfied by independent concrete types, the
// same way the teacher collapses its constraint_Type/union-of-structs into
// one constraint struct with a type tag — except Go interfaces give us the
// tag for free and let each kind keep its own fields.
package constraint

import (
	"math"

	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/state"
)

// Kind identifies which algebraic kernel a Constraint implements.
type Kind int

const (
	Distance Kind = iota
	Area
	Dihedral
	Volume
	FEMTet
	FEMHex
	ConstantDensity
	Contact
)

func (k Kind) String() string {
	switch k {
	case Distance:
		return "Distance"
	case Area:
		return "Area"
	case Dihedral:
		return "Dihedral"
	case Volume:
		return "Volume"
	case FEMTet:
		return "FEMTet"
	case FEMHex:
		return "FEMHex"
	case ConstantDensity:
		return "ConstantDensity"
	case Contact:
		return "Contact"
	default:
		return "Unknown"
	}
}

// Material selects the constitutive model used by FEMTet/FEMHex constraints.
type Material int

const (
	Linear Material = iota
	StVK
	Corotation
	NeoHookean
)

func (m Material) String() string {
	switch m {
	case Linear:
		return "Linear"
	case StVK:
		return "StVK"
	case Corotation:
		return "Corotation"
	case NeoHookean:
		return "NeoHookean"
	default:
		return "Unknown"
	}
}

// Epsilon is the degeneracy threshold used throughout the library: rest
// measures (length/area/volume/det) below this are rejected at init, and
// solve-time gradients with squared-norm below this are treated as
// degenerate (constraint returns false without mutating state).
const Epsilon = 1e-6

// Constraint is the capability set every constraint kind implements, per
// spec.md §3: getType, solvePosition, solveVelocity, updateConstraint.
type Constraint interface {
	Kind() Kind
	Indices() []int

	// SolvePositionConstraint reads current positions and inverse masses
	// from s, writes corrected positions back into s.Current, and reports
	// whether it did anything. A false return (degenerate geometry this
	// step — e.g. coincident vertices) must not mutate s.
	SolvePositionConstraint(s *state.Store) bool

	// SolveVelocityConstraint is part of the capability set named by
	// spec.md §3. The position-based constraints in this library have no
	// velocity-level correction of their own (that happens once, globally,
	// in model.IntegrateVelocity), and every kind, Contact included, uses
	// the default: a no-op returning false.
	SolveVelocityConstraint(s *state.Store) bool

	// UpdateConstraint lets a constraint refresh any state.Store-derived
	// scratch between solves. Rest scalars are computed once at init from
	// x⁰ and are not recomputed unless topology changes (per spec.md §3),
	// so the default is a no-op returning true.
	UpdateConstraint(s *state.Store) bool
}

// EffectiveStiffness maps a user stiffness k in [0,1] to the per-iteration
// value that makes N sequential Gauss-Seidel passes converge to the same
// overall compliance as a single pass at stiffness k, per spec.md §3:
// 1-(1-k)^(1/iters).
func EffectiveStiffness(k float64, iters int) float64 {
	if iters <= 1 {
		return k
	}
	if k >= 1 {
		return 1
	}
	if k <= 0 {
		return 0
	}
	return 1 - math.Pow(1-k, 1/float64(iters))
}

// base holds the fields every constraint kind needs: its particle indices
// and its already-resolved effective stiffness. Concrete kinds embed it.
type base struct {
	indices []int
	kind    Kind
	stiff   float64 // effective stiffness, see EffectiveStiffness.
}

func (b *base) Kind() Kind       { return b.kind }
func (b *base) Indices() []int   { return b.indices }
func (b *base) SolveVelocityConstraint(s *state.Store) bool { return false }
func (b *base) UpdateConstraint(s *state.Store) bool        { return true }

// applyScalarGradient runs the standard PBD position update for a
// single-scalar constraint C(x) given its value and per-particle gradients:
//
//	denom = Σ wⱼ |∇ⱼC|²
//	λ = -C / denom
//	Δxᵢ = stiffness * λ * wᵢ * ∇ᵢC
//
// indices and grads must be the same length. Returns false (no mutation) if
// the denominator is degenerate or every involved particle is pinned.
func applyScalarGradient(s *state.Store, indices []int, grads []lin.V3, c, stiffness float64) bool {
	denom := 0.0
	anyMovable := false
	for k, i := range indices {
		w := s.InvMass[i]
		if w == 0 {
			continue
		}
		anyMovable = true
		denom += w * grads[k].LenSqr()
	}
	if !anyMovable || denom < Epsilon {
		return false
	}
	lambda := -c / denom
	for k, i := range indices {
		w := s.InvMass[i]
		if w == 0 {
			continue
		}
		dx := grads[k]
		dx.Scale(&dx, stiffness*lambda*w)
		s.Current[i].Add(&s.Current[i], &dx)
	}
	return true
}
