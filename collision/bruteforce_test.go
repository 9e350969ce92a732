package collision

import (
	"testing"

	"github.com/softbody/pbdcore/math/lin"
)

func twoTriangleMeshesFacing(gap float64) (*Mesh, *Mesh) {
	a := &Mesh{
		Vertices: []lin.V3{
			*lin.NewV3S(0, 0, 0), *lin.NewV3S(1, 0, 0), *lin.NewV3S(0, 1, 0),
		},
		Triangles: [][3]int{{0, 1, 2}},
	}
	b := &Mesh{
		Vertices: []lin.V3{
			*lin.NewV3S(0.25, 0.25, gap), *lin.NewV3S(1.25, 0.25, gap), *lin.NewV3S(0.25, 1.25, gap),
		},
		Triangles: [][3]int{{0, 1, 2}},
	}
	return a, b
}

func TestBruteForceIntersectorFindsVertexInFaceWithinMargin(t *testing.T) {
	a, b := twoTriangleMeshesFacing(0.01)
	bf := &BruteForceIntersector{Proximity: 0.05}

	events := bf.Query(a, b)

	found := false
	for _, e := range events {
		if e.Kind == VertexInFaceBEvent && e.Vertex == 0 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a VertexInFaceBEvent for b's vertex 0 against a's triangle, got %+v", events)
	}
}

func TestBruteForceIntersectorNoEventsWhenFarApart(t *testing.T) {
	a, b := twoTriangleMeshesFacing(5)
	bf := &BruteForceIntersector{Proximity: 0.05}

	events := bf.Query(a, b)

	if len(events) != 0 {
		t.Fatalf("expected no events for meshes far apart, got %+v", events)
	}
}

func TestBruteForceIntersectorSelfQuerySkipsSharedVertexTriangles(t *testing.T) {
	m := &Mesh{
		Vertices: []lin.V3{
			*lin.NewV3S(0, 0, 0), *lin.NewV3S(1, 0, 0), *lin.NewV3S(0, 1, 0), *lin.NewV3S(1, 1, 0),
		},
		Triangles: [][3]int{{0, 1, 2}, {1, 3, 2}},
	}
	bf := &BruteForceIntersector{Proximity: 0.05}

	events := bf.Query(m, m)

	if len(events) != 0 {
		t.Fatalf("expected adjacent coplanar triangles sharing vertices to produce no events, got %+v", events)
	}
}

func TestClosestSegmentSegmentPerpendicularCrossing(t *testing.T) {
	p1, q1 := *lin.NewV3S(-1, 0, 0), *lin.NewV3S(1, 0, 0)
	p2, q2 := *lin.NewV3S(0, -1, 1), *lin.NewV3S(0, 1, 1)

	_, _, dist := closestSegmentSegment(p1, q1, p2, q2)

	if !aeq(dist, 1) {
		t.Errorf("closest distance between crossing perpendicular segments (offset by z=1) = %v, want 1", dist)
	}
}

func TestClosestSegmentSegmentCoincidentSegments(t *testing.T) {
	p1, q1 := *lin.NewV3S(0, 0, 0), *lin.NewV3S(1, 0, 0)

	_, _, dist := closestSegmentSegment(p1, q1, p1, q1)

	if !aeq(dist, 0) {
		t.Errorf("closest distance between coincident segments = %v, want 0", dist)
	}
}

func TestRefitIsNoOp(t *testing.T) {
	bf := &BruteForceIntersector{}
	m := &Mesh{Vertices: []lin.V3{*lin.NewV3S(0, 0, 0)}}
	bf.Refit(m) // must not panic; brute force keeps no acceleration structure.
}
