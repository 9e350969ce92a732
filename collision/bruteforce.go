// Copyright © 2024 Galvanized Logic Inc.

package collision

import "github.com/softbody/pbdcore/math/lin"

// BruteForceIntersector is the fallback narrow-phase kernel used when no
// triangle-BVH self-intersection library is wired in — spec.md §1 assumes
// one is present; this package does not ship one, so every triangle pair
// across the two meshes is tested directly (O(|trisA|*|trisB|)). It has no
// persistent acceleration structure, so Refit is a no-op.
//
// Events are discrete proximity queries, not continuous time-of-impact:
// Mesh only carries current vertex positions (no previous-step history), so
// every event's TOI is reported as 0. A real BVH library would sweep
// previous-to-current positions and report a TOI in [0,1]; wiring that in
// requires threading a previous-position snapshot through Mesh, which this
// fallback does not do.
type BruteForceIntersector struct {
	// Proximity is the margin (meters) within which a vertex-in-face or
	// edge-edge pair is reported, matching spec.md §6's proximity
	// configuration option.
	Proximity float64
}

// Refit is a no-op: brute force keeps no leaf/internal box hierarchy to
// refit.
func (b *BruteForceIntersector) Refit(m *Mesh) {}

// Query tests every triangle in a against every triangle in b (a and b may
// be the same Mesh, for self-intersection, in which case triangle pairs
// sharing a vertex are skipped).
func (b *BruteForceIntersector) Query(a, bm *Mesh) []IntersectionEvent {
	margin := b.Proximity
	self := a == bm
	var events []IntersectionEvent

	for _, triA := range a.Triangles {
		for _, triB := range bm.Triangles {
			if self && shareVertex(triA, triB) {
				continue
			}
			for _, vi := range triA {
				if bary, ok := vertexInTriangle(a.Vertices[vi], bm, triB, margin); ok {
					events = append(events, IntersectionEvent{
						Kind: VertexInFaceAEvent, Vertex: vi, Triangle: triB, Bary: bary,
					})
				}
			}
			for _, vi := range triB {
				if bary, ok := vertexInTriangle(bm.Vertices[vi], a, triA, margin); ok {
					events = append(events, IntersectionEvent{
						Kind: VertexInFaceBEvent, Vertex: vi, Triangle: triA, Bary: bary,
					})
				}
			}
			for _, eA := range triangleEdges(triA) {
				for _, eB := range triangleEdges(triB) {
					if self && shareEdgeVertex(eA, eB) {
						continue
					}
					tA, tB, dist := closestSegmentSegment(
						a.Vertices[eA[0]], a.Vertices[eA[1]], bm.Vertices[eB[0]], bm.Vertices[eB[1]])
					if dist <= margin {
						events = append(events, IntersectionEvent{
							Kind: EdgeEdgeEvent, EdgeA: eA, EdgeB: eB, ParamA: tA, ParamB: tB,
						})
					}
				}
			}
		}
	}
	return events
}

func shareVertex(a, b [3]int) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func shareEdgeVertex(a, b [2]int) bool {
	return a[0] == b[0] || a[0] == b[1] || a[1] == b[0] || a[1] == b[1]
}

func triangleEdges(t [3]int) [3][2]int {
	return [3][2]int{{t[0], t[1]}, {t[1], t[2]}, {t[2], t[0]}}
}

// vertexInTriangle reports whether p projects, within margin of the
// triangle's plane, onto a point inside triangle tri of mesh m, returning
// its barycentric weights.
func vertexInTriangle(p lin.V3, m *Mesh, tri [3]int, margin float64) (bary [3]float64, ok bool) {
	a, b, c := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
	ab := *lin.NewV3().Sub(&b, &a)
	ac := *lin.NewV3().Sub(&c, &a)
	n := *lin.NewV3().Cross(&ab, &ac)
	areaSq := n.LenSqr()
	if areaSq < Epsilon {
		return bary, false
	}
	ap := *lin.NewV3().Sub(&p, &a)
	planeDist := ap.Dot(&n) / n.Len()
	if planeDist < -margin || planeDist > margin {
		return bary, false
	}

	// Barycentric weights via the standard area-ratio construction.
	bp := *lin.NewV3().Sub(&p, &b)
	cp := *lin.NewV3().Sub(&p, &c)
	bc := *lin.NewV3().Sub(&c, &b)
	ca := *lin.NewV3().Sub(&a, &c)

	areaPBC := lin.NewV3().Cross(&bc, &bp).Dot(&n)
	areaPCA := lin.NewV3().Cross(&ca, &cp).Dot(&n)
	u := areaPBC / areaSq
	v := areaPCA / areaSq
	w := 1 - u - v
	const tol = 1e-4
	if u < -tol || v < -tol || w < -tol {
		return bary, false
	}
	return [3]float64{u, v, w}, true
}

// closestSegmentSegment returns the parameters t1, t2 in [0,1] of the
// closest points on segments (p1,q1) and (p2,q2), and the distance between
// them. Standard closest-point-between-segments construction (as found in
// most computational-geometry references).
func closestSegmentSegment(p1, q1, p2, q2 lin.V3) (t1, t2, dist float64) {
	d1 := *lin.NewV3().Sub(&q1, &p1)
	d2 := *lin.NewV3().Sub(&q2, &p2)
	r := *lin.NewV3().Sub(&p1, &p2)

	a := d1.LenSqr()
	e := d2.LenSqr()
	f := d2.Dot(&r)

	if a < Epsilon && e < Epsilon {
		t1, t2 = 0, 0
	} else if a < Epsilon {
		t1 = 0
		t2 = clamp01(f / e)
	} else {
		c := d1.Dot(&r)
		if e < Epsilon {
			t2 = 0
			t1 = clamp01(-c / a)
		} else {
			b := d1.Dot(&d2)
			denom := a*e - b*b
			if denom > Epsilon {
				t1 = clamp01((b*f - c*e) / denom)
			} else {
				t1 = 0
			}
			t2 = (b*t1 + f) / e
			if t2 < 0 {
				t2 = 0
				t1 = clamp01(-c / a)
			} else if t2 > 1 {
				t2 = 1
				t1 = clamp01((b - c) / a)
			}
		}
	}

	c1 := *lin.NewV3().Scale(&d1, t1)
	c1.Add(&c1, &p1)
	c2 := *lin.NewV3().Scale(&d2, t2)
	c2.Add(&c2, &p2)
	return t1, t2, c1.Dist(&c2)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
