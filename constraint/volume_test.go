// Copyright © 2024 Galvanized Logic Inc.

package constraint

import (
	"errors"
	"testing"

	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/perr"
	"github.com/softbody/pbdcore/state"
)

func unitTetStore() *state.Store {
	s := state.New()
	s.SetInitial([]lin.V3{
		*lin.NewV3S(0, 0, 0),
		*lin.NewV3S(1, 0, 0),
		*lin.NewV3S(0, 1, 0),
		*lin.NewV3S(0, 0, 1),
	})
	s.SetUniformMass(1)
	return s
}

func TestNewVolumeRejectsFlatTet(t *testing.T) {
	s := state.New()
	s.SetInitial([]lin.V3{
		*lin.NewV3S(0, 0, 0),
		*lin.NewV3S(1, 0, 0),
		*lin.NewV3S(0, 1, 0),
		*lin.NewV3S(1, 1, 0), // coplanar with the other three
	})
	s.SetUniformMass(1)
	_, err := NewVolume(s, 0, 1, 2, 3, 1, 1)
	if !errors.Is(err, perr.DegenerateGeometry) {
		t.Fatalf("expected DegenerateGeometry, got %v", err)
	}
}

func TestVolumeConstraintRestoresVolume(t *testing.T) {
	s := unitTetStore()
	v, err := NewVolume(s, 0, 1, 2, 3, 1, 1)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	if !lin.Aeq(v.rest, 1.0/6) {
		t.Fatalf("expected rest volume 1/6, got %v", v.rest)
	}
	s.Current[1] = *lin.NewV3S(2, 0, 0) // scale the tet up, doubling the volume
	if !v.SolvePositionConstraint(s) {
		t.Fatal("expected solve to apply a correction")
	}
	// C is not linear in the positions, so one pass lands near 0.185;
	// further passes converge on the rest volume.
	for pass := 1; pass < 20; pass++ {
		v.SolvePositionConstraint(s)
	}
	xi, xj, xk, xl := s.Current[0], s.Current[1], s.Current[2], s.Current[3]
	got := signedVolume(&xi, &xj, &xk, &xl)
	if !lin.Aeq(got, 1.0/6) {
		t.Fatalf("expected volume restored to 1/6, got %v", got)
	}
}

func TestVolumeConstraintSkipsWhenAllPinned(t *testing.T) {
	s := unitTetStore()
	v, err := NewVolume(s, 0, 1, 2, 3, 1, 1)
	if err != nil {
		t.Fatalf("NewVolume: %v", err)
	}
	for i := 0; i < 4; i++ {
		s.Pin(i)
	}
	s.Current[1] = *lin.NewV3S(2, 0, 0)
	if v.SolvePositionConstraint(s) {
		t.Fatal("expected no-op when every particle is pinned")
	}
}
