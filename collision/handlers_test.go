package collision

import (
	"testing"

	"github.com/softbody/pbdcore/math/lin"
)

func TestHandlePlaneSphereEmitsContactWhenPenetrating(t *testing.T) {
	data := &Data{}
	plane := Plane{Point: *lin.NewV3S(0, 0, 0), Normal: *lin.NewV3S(0, 1, 0)}
	sphere := Sphere{Center: *lin.NewV3S(0, 0.5, 0), Radius: 1, Particle: 2}

	HandlePlaneSphere(data, plane, sphere, false)

	if len(data.PDs) != 1 {
		t.Fatalf("got %d PDs, want 1", len(data.PDs))
	}
	pd := data.PDs[0]
	if pd.Particle != 2 {
		t.Errorf("Particle = %d, want 2", pd.Particle)
	}
	if want := 0.5; !aeq(pd.Depth, want) {
		t.Errorf("Depth = %v, want %v", pd.Depth, want)
	}
}

func TestHandlePlaneSphereNoContactWhenSeparated(t *testing.T) {
	data := &Data{}
	plane := Plane{Point: *lin.NewV3S(0, 0, 0), Normal: *lin.NewV3S(0, 1, 0)}
	sphere := Sphere{Center: *lin.NewV3S(0, 5, 0), Radius: 1, Particle: 0}

	HandlePlaneSphere(data, plane, sphere, false)

	if !data.Empty() {
		t.Fatal("expected no contact for a sphere well above the plane")
	}
}

func TestHandlePlaneSphereSkipsZeroRadius(t *testing.T) {
	data := &Data{}
	plane := Plane{Point: *lin.NewV3S(0, 0, 0), Normal: *lin.NewV3S(0, 1, 0)}
	sphere := Sphere{Center: *lin.NewV3S(0, 0, 0), Radius: 0, Particle: 0}

	HandlePlaneSphere(data, plane, sphere, false)

	if !data.Empty() {
		t.Fatal("expected degenerate zero-radius sphere to be skipped")
	}
}

func TestHandleSphereSphereEmitsOpposingContacts(t *testing.T) {
	data := &Data{}
	a := Sphere{Center: *lin.NewV3S(0, 0, 0), Radius: 1, Particle: 0}
	b := Sphere{Center: *lin.NewV3S(1.5, 0, 0), Radius: 1, Particle: 1}

	HandleSphereSphere(data, a, b)

	if len(data.PDs) != 2 {
		t.Fatalf("got %d PDs, want 2", len(data.PDs))
	}
	want := 0.5 // 1+1-1.5
	for _, pd := range data.PDs {
		if !aeq(pd.Depth, want) {
			t.Errorf("Depth = %v, want %v", pd.Depth, want)
		}
	}
	n0, n1 := data.PDs[0].Normal, data.PDs[1].Normal
	sum := *lin.NewV3().Add(&n0, &n1)
	if !sum.AeqZ() {
		t.Errorf("expected opposing normals, got %v and %v", n0, n1)
	}
}

func TestHandleSphereSphereNoContactWhenApart(t *testing.T) {
	data := &Data{}
	a := Sphere{Center: *lin.NewV3S(0, 0, 0), Radius: 1, Particle: 0}
	b := Sphere{Center: *lin.NewV3S(10, 0, 0), Radius: 1, Particle: 1}

	HandleSphereSphere(data, a, b)

	if !data.Empty() {
		t.Fatal("expected no contact for spheres far apart")
	}
}

func TestHandleMeshSphereEmitsCorrectionForEnclosedVertex(t *testing.T) {
	data := &Data{}
	mesh := &Mesh{Vertices: []lin.V3{*lin.NewV3S(0.5, 0, 0)}}
	sphere := Sphere{Center: *lin.NewV3S(0, 0, 0), Radius: 1, Particle: -1}

	HandleMeshSphere(data, mesh, sphere)

	if len(data.MAs) != 1 {
		t.Fatalf("got %d MAs, want 1", len(data.MAs))
	}
	if data.MAs[0].Particle != 0 {
		t.Errorf("Particle = %d, want 0", data.MAs[0].Particle)
	}
	corrected := *lin.NewV3().Add(&mesh.Vertices[0], &data.MAs[0].Correction)
	if got := corrected.Dist(&sphere.Center); !aeq(got, sphere.Radius) {
		t.Errorf("corrected vertex distance from center = %v, want %v", got, sphere.Radius)
	}
}

func TestHandleMeshSphereIgnoresVertexOutsideSphere(t *testing.T) {
	data := &Data{}
	mesh := &Mesh{Vertices: []lin.V3{*lin.NewV3S(5, 0, 0)}}
	sphere := Sphere{Center: *lin.NewV3S(0, 0, 0), Radius: 1, Particle: -1}

	HandleMeshSphere(data, mesh, sphere)

	if !data.Empty() {
		t.Fatal("expected no contact for vertex outside sphere")
	}
}

func TestHandleMeshCapsuleEmitsCorrectionForVertexNearMidSegment(t *testing.T) {
	data := &Data{}
	mesh := &Mesh{Vertices: []lin.V3{*lin.NewV3S(0.5, 0, 0)}}
	capsule := Capsule{A: *lin.NewV3S(0, -1, 0), B: *lin.NewV3S(0, 1, 0), Radius: 1}

	HandleMeshCapsule(data, mesh, capsule)

	if len(data.MAs) != 1 {
		t.Fatalf("got %d MAs, want 1", len(data.MAs))
	}
	corrected := *lin.NewV3().Add(&mesh.Vertices[0], &data.MAs[0].Correction)
	closest := *lin.NewV3S(0, 0, 0) // clamped projection onto the segment.
	if got := corrected.Dist(&closest); !aeq(got, capsule.Radius) {
		t.Errorf("corrected vertex distance from segment = %v, want %v", got, capsule.Radius)
	}
}

func TestHandleMeshCapsuleClampsToSegmentEndpoint(t *testing.T) {
	data := &Data{}
	mesh := &Mesh{Vertices: []lin.V3{*lin.NewV3S(0.5, 1.5, 0)}}
	capsule := Capsule{A: *lin.NewV3S(0, -1, 0), B: *lin.NewV3S(0, 1, 0), Radius: 1}

	HandleMeshCapsule(data, mesh, capsule)

	if len(data.MAs) != 1 {
		t.Fatalf("got %d MAs, want 1", len(data.MAs))
	}
	corrected := *lin.NewV3().Add(&mesh.Vertices[0], &data.MAs[0].Correction)
	endpoint := capsule.B
	if got := corrected.Dist(&endpoint); !aeq(got, capsule.Radius) {
		t.Errorf("corrected vertex distance from clamped endpoint = %v, want %v", got, capsule.Radius)
	}
}

func TestHandleMeshCapsuleIgnoresVertexOutsideRadius(t *testing.T) {
	data := &Data{}
	mesh := &Mesh{Vertices: []lin.V3{*lin.NewV3S(5, 0, 0)}}
	capsule := Capsule{A: *lin.NewV3S(0, -1, 0), B: *lin.NewV3S(0, 1, 0), Radius: 1}

	HandleMeshCapsule(data, mesh, capsule)

	if !data.Empty() {
		t.Fatal("expected no contact for vertex well outside the capsule radius")
	}
}

func TestHandleMeshPlanePushesOutPenetratingVertex(t *testing.T) {
	data := &Data{}
	mesh := &Mesh{Vertices: []lin.V3{*lin.NewV3S(0, -0.25, 0)}}
	plane := Plane{Point: *lin.NewV3S(0, 0, 0), Normal: *lin.NewV3S(0, 1, 0)}

	HandleMeshPlane(data, mesh, plane)

	if len(data.MAs) != 1 {
		t.Fatalf("got %d MAs, want 1", len(data.MAs))
	}
	corrected := *lin.NewV3().Add(&mesh.Vertices[0], &data.MAs[0].Correction)
	if corrected.Y < -Epsilon {
		t.Errorf("corrected vertex still below plane: %v", corrected)
	}
}

func TestHandleMeshPlaneIgnoresVertexAbovePlane(t *testing.T) {
	data := &Data{}
	mesh := &Mesh{Vertices: []lin.V3{*lin.NewV3S(0, 5, 0)}}
	plane := Plane{Point: *lin.NewV3S(0, 0, 0), Normal: *lin.NewV3S(0, 1, 0)}

	HandleMeshPlane(data, mesh, plane)

	if !data.Empty() {
		t.Fatal("expected no contact for vertex above the plane")
	}
}

func aeq(a, b float64) bool {
	const tol = 1e-6
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < tol
}
