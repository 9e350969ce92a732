// Copyright © 2024 Galvanized Logic Inc.

package collision

import "github.com/softbody/pbdcore/math/lin"

// Kind tags the geometry primitives the collision factory dispatches over,
// per spec.md §4.D. Order is the canonicalization order: a pair is always
// handled as (min(kindA,kindB), max(kindA,kindB)), per spec.md §9's
// "two-dimensional switch... only the upper triangle of handlers is
// populated."
type Kind int

const (
	PlaneKind Kind = iota
	SphereKind
	CapsuleKind
	CylinderKind
	BoxKind
	MeshKind
	numKinds
)

func (k Kind) String() string {
	switch k {
	case PlaneKind:
		return "Plane"
	case SphereKind:
		return "Sphere"
	case CapsuleKind:
		return "Capsule"
	case CylinderKind:
		return "Cylinder"
	case BoxKind:
		return "Box"
	case MeshKind:
		return "Mesh"
	default:
		return "Unknown"
	}
}

// Geometry is the capability every collidable primitive implements: its
// kind tag, for factory dispatch.
type Geometry interface {
	Kind() Kind
}

// Plane is an infinite half-space boundary: points p with (p-Point).Normal
// >= 0 are outside.
type Plane struct {
	Point  lin.V3
	Normal lin.V3 // unit outward normal.
}

func (Plane) Kind() Kind { return PlaneKind }

// Sphere is a rigid analytic sphere — either a static/kinematic collider
// (Particle < 0) or a tiny bounding sphere wrapping one movable state-store
// particle, per spec.md §8's "wrapping each vertex in a tiny sphere"
// plane-sphere contact scenario.
type Sphere struct {
	Center   lin.V3
	Radius   float64
	Particle int
}

func (Sphere) Kind() Kind { return SphereKind }

// Capsule is a swept sphere along a segment — a cylinder with hemispherical
// caps.
type Capsule struct {
	A, B   lin.V3
	Radius float64
}

func (Capsule) Kind() Kind { return CapsuleKind }

// Cylinder is a finite right circular cylinder with flat caps.
type Cylinder struct {
	A, B   lin.V3
	Radius float64
}

func (Cylinder) Kind() Kind { return CylinderKind }

// Box is an oriented box: center, half-extents along its own axes, and the
// axes themselves (unit, orthogonal).
type Box struct {
	Center      lin.V3
	HalfExtents lin.V3
	AxisX       lin.V3
	AxisY       lin.V3
	AxisZ       lin.V3
}

func (Box) Kind() Kind { return BoxKind }

// Mesh wraps a deformable triangle mesh's current vertex positions and
// topology for the collision pipeline — the PBD body's own state, read
// through as the collidable geometry. ParticleIndex[i] maps the mesh's
// local vertex i to its state-store particle index (identity for a body
// colliding against itself).
type Mesh struct {
	Vertices      []lin.V3
	Triangles     [][3]int
	ParticleIndex []int
}

func (Mesh) Kind() Kind { return MeshKind }

func (m *Mesh) particle(localVertex int) int {
	if m.ParticleIndex == nil {
		return localVertex
	}
	return m.ParticleIndex[localVertex]
}

// canonicalPair orders a and b so the lower Kind comes first, returning
// swapped=true if the caller's order was reversed. Per spec.md §9, pair
// canonicalization is computed from the geometry kind enum, not from
// caller argument order — this is the fix for the source's mislabeled
// MeshToX constructors, which keyed off caller order instead.
func canonicalPair(a, b Geometry) (first, second Geometry, swapped bool) {
	if a.Kind() <= b.Kind() {
		return a, b, false
	}
	return b, a, true
}
