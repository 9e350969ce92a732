package collision

import (
	"testing"

	"github.com/softbody/pbdcore/math/lin"
)

// a flat quad, two triangles, straddling x=0.5 — vertices 0,1 at x=0,
// vertices 2,3 at x=1.
func cuttableQuad() *Mesh {
	return &Mesh{
		Vertices: []lin.V3{
			*lin.NewV3S(0, 0, 0), *lin.NewV3S(0, 1, 0),
			*lin.NewV3S(1, 1, 0), *lin.NewV3S(1, 0, 0),
		},
		Triangles: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
}

func cutPlaneAtX(x float64) Plane {
	return Plane{Point: *lin.NewV3S(x, 0, 0), Normal: *lin.NewV3S(1, 0, 0)}
}

func TestCutSplitsCrossedTriangles(t *testing.T) {
	m := cuttableQuad()
	plane := cutPlaneAtX(0.5)

	result := Cut(m, plane, 1e-6)

	if len(m.Triangles) <= 2 {
		t.Fatalf("expected crossed triangles to split into more triangles, got %d", len(m.Triangles))
	}
	if len(result.Rebuilt) == 0 {
		t.Fatal("expected a non-empty rebuilt set")
	}
	if len(result.Removed) == 0 {
		t.Fatal("expected a non-empty removed set")
	}
}

func TestCutLeavesUncrossedTrianglesAlone(t *testing.T) {
	m := cuttableQuad()
	plane := cutPlaneAtX(10) // entirely on the negative side.

	result := Cut(m, plane, 1e-6)

	if len(m.Triangles) != 2 {
		t.Fatalf("expected unchanged triangle count for a non-crossing plane, got %d", len(m.Triangles))
	}
	if len(result.Removed) != 0 || len(result.Rebuilt) != 0 {
		t.Fatalf("expected empty result sets when nothing crosses, got %+v", result)
	}
}

func TestCutDuplicatesVertexWhenFanSeparates(t *testing.T) {
	// Two triangles sharing only vertex 2, forming a bowtie around it. The
	// cut plane passes through vertex 2 with one triangle on each side, so
	// vertex 2's fan separates and the vertex is duplicated.
	m := &Mesh{
		Vertices: []lin.V3{
			*lin.NewV3S(-1, 1, 0), *lin.NewV3S(-1, -1, 0), *lin.NewV3S(0, 0, 0),
			*lin.NewV3S(1, 1, 0), *lin.NewV3S(1, -1, 0),
		},
		Triangles: [][3]int{{0, 1, 2}, {2, 3, 4}},
	}
	plane := cutPlaneAtX(0)

	before := len(m.Vertices)
	result := Cut(m, plane, 1e-6)

	if len(m.Vertices) <= before {
		t.Fatalf("expected the shared vertex to be duplicated, got no new vertex (before=%d after=%d)", before, len(m.Vertices))
	}
	_ = result
}

func TestPlaneSignedDistanceSign(t *testing.T) {
	plane := cutPlaneAtX(0)
	front := *lin.NewV3S(1, 0, 0)
	back := *lin.NewV3S(-1, 0, 0)
	if d := plane.SignedDistance(front); d <= 0 {
		t.Errorf("SignedDistance(front) = %v, want > 0", d)
	}
	if d := plane.SignedDistance(back); d >= 0 {
		t.Errorf("SignedDistance(back) = %v, want < 0", d)
	}
}
