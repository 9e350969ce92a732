// Copyright © 2024 Galvanized Logic Inc.

package collision

import "log/slog"

// Dispatch routes one registered geometry pair to its narrow-phase handler,
// per spec.md §9's "two-dimensional switch... only the upper triangle of
// handlers is populated" design note. Pair order is canonicalized by Kind
// (canonicalPair), not by caller argument order, so callers never need to
// know which of a, b is the "first" type. intersector is only consulted for
// a Mesh/Mesh pair; bidirectional is only consulted for a Plane/Sphere
// pair. An unhandled pair kind (e.g. Capsule/Box — no formula is named in
// spec.md §4.D for those) is logged and skipped, matching spec.md §4.D's
// "unknown pair type returns null and emits a warning" failure mode.
func Dispatch(data *Data, a, b Geometry, intersector MeshIntersector, bidirectional bool) {
	first, second, _ := canonicalPair(a, b)

	switch fa := first.(type) {
	case Plane:
		switch sb := second.(type) {
		case Sphere:
			HandlePlaneSphere(data, fa, sb, bidirectional)
			return
		case Mesh:
			HandleMeshPlane(data, &sb, fa)
			return
		}
	case Sphere:
		switch sb := second.(type) {
		case Sphere:
			HandleSphereSphere(data, fa, sb)
			return
		case Mesh:
			HandleMeshSphere(data, &sb, fa)
			return
		}
	case Capsule:
		switch sb := second.(type) {
		case Mesh:
			HandleMeshCapsule(data, &sb, fa)
			return
		}
	case Mesh:
		switch sb := second.(type) {
		case Mesh:
			HandleMeshMesh(data, &fa, &sb, intersector)
			return
		}
	}
	slog.Warn("collision: unhandled geometry pair", "first", first.Kind(), "second", second.Kind())
}
