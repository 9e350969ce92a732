// Copyright © 2024 Galvanized Logic Inc.

package collision

import (
	"log/slog"

	"github.com/softbody/pbdcore/math/lin"
)

// HandlePlaneSphere implements spec.md §4.D's Plane-Sphere handler: signed
// distance d = (c-p0).n - r; if d <= 0, one PD contact with point
// c - r*n, normal n, depth -d. bidirectional makes the contact apply
// regardless of which side of the plane the sphere center started on — the
// sign of d still drives the correction, just without the early-out.
func HandlePlaneSphere(data *Data, plane Plane, sphere Sphere, bidirectional bool) {
	if sphere.Radius <= 0 {
		slog.Warn("collision: degenerate sphere skipped", "handler", "PlaneSphere")
		return
	}
	diff := *lin.NewV3().Sub(&sphere.Center, &plane.Point)
	d := diff.Dot(&plane.Normal) - sphere.Radius
	if d > 0 && !bidirectional {
		return
	}
	point := *lin.NewV3().Scale(&plane.Normal, -sphere.Radius)
	point.Add(&point, &sphere.Center)
	data.PDs = append(data.PDs, PD{
		Particle: sphere.Particle,
		Point:    point,
		Normal:   plane.Normal,
		Depth:    -d,
	})
}

// HandleSphereSphere implements spec.md §4.D's Sphere-Sphere handler:
// penetration = r1+r2-|c1-c2|; if positive, two PD contacts on the two
// surfaces with opposing normals.
func HandleSphereSphere(data *Data, a, b Sphere) {
	if a.Radius <= 0 || b.Radius <= 0 {
		slog.Warn("collision: degenerate sphere skipped", "handler", "SphereSphere")
		return
	}
	delta := *lin.NewV3().Sub(&b.Center, &a.Center)
	dist := delta.Len()
	penetration := a.Radius + b.Radius - dist
	if penetration <= 0 {
		return
	}
	var normalAtoB lin.V3
	if dist < Epsilon {
		normalAtoB = *lin.NewV3S(1, 0, 0)
	} else {
		normalAtoB = *lin.NewV3().Scale(&delta, 1/dist)
	}
	normalBtoA := *lin.NewV3().Neg(&normalAtoB)

	pointOnA := *lin.NewV3().Scale(&normalAtoB, a.Radius)
	pointOnA.Add(&pointOnA, &a.Center)
	pointOnB := *lin.NewV3().Scale(&normalBtoA, b.Radius)
	pointOnB.Add(&pointOnB, &b.Center)

	data.PDs = append(data.PDs,
		PD{Particle: a.Particle, Point: pointOnA, Normal: normalBtoA, Depth: penetration},
		PD{Particle: b.Particle, Point: pointOnB, Normal: normalAtoB, Depth: penetration},
	)
}

// HandleMeshSphere implements spec.md §4.D's Mesh-Sphere handler: for every
// mesh vertex v, if |v-c| <= r, emit an MA contact with correction
// r*(v-c)/|v-c| - (v-c).
func HandleMeshSphere(data *Data, mesh *Mesh, sphere Sphere) {
	if sphere.Radius <= 0 {
		slog.Warn("collision: degenerate sphere skipped", "handler", "MeshSphere")
		return
	}
	for i, v := range mesh.Vertices {
		diff := *lin.NewV3().Sub(&v, &sphere.Center)
		dist := diff.Len()
		if dist > sphere.Radius {
			continue
		}
		var outward lin.V3
		if dist < Epsilon {
			outward = *lin.NewV3S(0, 1, 0)
		} else {
			outward = *lin.NewV3().Scale(&diff, 1/dist)
		}
		target := *lin.NewV3().Scale(&outward, sphere.Radius)
		correction := *lin.NewV3().Sub(&target, &diff)
		data.MAs = append(data.MAs, MA{Particle: mesh.particle(i), Correction: correction})
	}
}

// HandleMeshPlane implements spec.md §4.D's Mesh-Plane handler: for every
// mesh vertex v, d = (p0-v).n; if d >= 0 (v is on or behind the plane),
// emit an MA contact with correction d*n.
func HandleMeshPlane(data *Data, mesh *Mesh, plane Plane) {
	for i, v := range mesh.Vertices {
		diff := *lin.NewV3().Sub(&plane.Point, &v)
		d := diff.Dot(&plane.Normal)
		if d < 0 {
			continue
		}
		correction := *lin.NewV3().Scale(&plane.Normal, d)
		data.MAs = append(data.MAs, MA{Particle: mesh.particle(i), Correction: correction})
	}
}

// HandleMeshCapsule implements the Mesh-Capsule handler of SPEC_FULL.md's
// supplemented features: for every mesh vertex v, project onto the
// capsule's core segment [A,B], clamp to the segment, and treat the
// clamped point as a moving sphere center — same correction shape as
// HandleMeshSphere, against the closest point on the segment instead of a
// fixed center.
func HandleMeshCapsule(data *Data, mesh *Mesh, capsule Capsule) {
	if capsule.Radius <= 0 {
		slog.Warn("collision: degenerate capsule skipped", "handler", "MeshCapsule")
		return
	}
	axis := *lin.NewV3().Sub(&capsule.B, &capsule.A)
	axisLenSqr := axis.LenSqr()
	for i, v := range mesh.Vertices {
		closest := capsule.A
		if axisLenSqr > Epsilon {
			toV := *lin.NewV3().Sub(&v, &capsule.A)
			t := toV.Dot(&axis) / axisLenSqr
			t = clamp01(t)
			offset := *lin.NewV3().Scale(&axis, t)
			closest.Add(&closest, &offset)
		}
		diff := *lin.NewV3().Sub(&v, &closest)
		dist := diff.Len()
		if dist > capsule.Radius {
			continue
		}
		var outward lin.V3
		if dist < Epsilon {
			outward = *lin.NewV3S(0, 1, 0)
		} else {
			outward = *lin.NewV3().Scale(&diff, 1/dist)
		}
		target := *lin.NewV3().Scale(&outward, capsule.Radius)
		correction := *lin.NewV3().Sub(&target, &diff)
		data.MAs = append(data.MAs, MA{Particle: mesh.particle(i), Correction: correction})
	}
}

// HandleMeshMesh implements spec.md §4.D's Mesh-Mesh handler: delegated to
// the triangle intersector, which reports edge-edge, vertex-in-face-A and
// vertex-in-face-B events each tagged with a time-of-impact fraction. a and
// b may be the same Mesh (self-intersection).
func HandleMeshMesh(data *Data, a, b *Mesh, intersector MeshIntersector) {
	intersector.Refit(a)
	if b != a {
		intersector.Refit(b)
	}
	events := intersector.Query(a, b)
	for _, e := range events {
		switch e.Kind {
		case EdgeEdgeEvent:
			data.EEs = append(data.EEs, EE{
				EdgeA: [2]int{a.particle(e.EdgeA[0]), a.particle(e.EdgeA[1])},
				EdgeB: [2]int{b.particle(e.EdgeB[0]), b.particle(e.EdgeB[1])},
				ParamA: e.ParamA, ParamB: e.ParamB, TOI: e.TOI,
			})
		case VertexInFaceAEvent:
			data.VTs = append(data.VTs, VT{
				Vertex:   a.particle(e.Vertex),
				Triangle: [3]int{b.particle(e.Triangle[0]), b.particle(e.Triangle[1]), b.particle(e.Triangle[2])},
				Bary:     e.Bary, TOI: e.TOI,
			})
		case VertexInFaceBEvent:
			data.TVs = append(data.TVs, TV{
				Triangle: [3]int{a.particle(e.Triangle[0]), a.particle(e.Triangle[1]), a.particle(e.Triangle[2])},
				Vertex:   b.particle(e.Vertex),
				Bary:     e.Bary, TOI: e.TOI,
			})
		}
	}
}
