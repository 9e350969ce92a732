package collision

import (
	"testing"

	"github.com/softbody/pbdcore/math/lin"
)

func TestDispatchRoutesPlaneSphereRegardlessOfArgumentOrder(t *testing.T) {
	plane := Plane{Point: *lin.NewV3S(0, 0, 0), Normal: *lin.NewV3S(0, 1, 0)}
	sphere := Sphere{Center: *lin.NewV3S(0, 0.5, 0), Radius: 1, Particle: 3}

	data1 := &Data{}
	Dispatch(data1, plane, sphere, nil, false)
	data2 := &Data{}
	Dispatch(data2, sphere, plane, nil, false)

	if len(data1.PDs) != 1 || len(data2.PDs) != 1 {
		t.Fatalf("expected one PD contact regardless of argument order, got %d and %d", len(data1.PDs), len(data2.PDs))
	}
}

func TestDispatchRoutesMeshCapsuleRegardlessOfArgumentOrder(t *testing.T) {
	capsule := Capsule{A: *lin.NewV3S(0, -1, 0), B: *lin.NewV3S(0, 1, 0), Radius: 1}
	mesh := Mesh{Vertices: []lin.V3{*lin.NewV3S(0.5, 0, 0)}}

	data1 := &Data{}
	Dispatch(data1, capsule, mesh, nil, false)
	data2 := &Data{}
	Dispatch(data2, mesh, capsule, nil, false)

	if len(data1.MAs) != 1 || len(data2.MAs) != 1 {
		t.Fatalf("expected one MA contact regardless of argument order, got %d and %d", len(data1.MAs), len(data2.MAs))
	}
}

func TestDispatchLogsAndSkipsUnhandledPair(t *testing.T) {
	data := &Data{}
	a := Capsule{A: *lin.NewV3S(0, 0, 0), B: *lin.NewV3S(1, 0, 0), Radius: 0.5}
	b := Box{Center: *lin.NewV3S(0, 0, 0), HalfExtents: *lin.NewV3S(1, 1, 1)}

	Dispatch(data, a, b, nil, false)

	if !data.Empty() {
		t.Fatal("expected no contact record for an unhandled pair kind")
	}
}
