// Copyright © 2024 Galvanized Logic Inc.

package constraint

import (
	"errors"
	"testing"

	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/perr"
	"github.com/softbody/pbdcore/state"
)

func rightTriangleStore() *state.Store {
	s := state.New()
	s.SetInitial([]lin.V3{
		*lin.NewV3S(0, 0, 0),
		*lin.NewV3S(1, 0, 0),
		*lin.NewV3S(0, 1, 0),
	})
	s.SetUniformMass(1)
	return s
}

func TestNewAreaRejectsDegenerateTriangle(t *testing.T) {
	s := state.New()
	s.SetInitial([]lin.V3{
		*lin.NewV3S(0, 0, 0),
		*lin.NewV3S(1, 0, 0),
		*lin.NewV3S(2, 0, 0), // collinear
	})
	s.SetUniformMass(1)
	_, err := NewArea(s, 0, 1, 2, 1, 1)
	if !errors.Is(err, perr.DegenerateGeometry) {
		t.Fatalf("expected DegenerateGeometry, got %v", err)
	}
}

func TestAreaConstraintRestoresArea(t *testing.T) {
	s := rightTriangleStore()
	a, err := NewArea(s, 0, 1, 2, 1, 1)
	if err != nil {
		t.Fatalf("NewArea: %v", err)
	}
	if !lin.Aeq(a.rest, 0.5) {
		t.Fatalf("expected rest area 0.5, got %v", a.rest)
	}
	s.Current[1] = *lin.NewV3S(2, 0, 0) // double the base, quadruple-ish the area
	if !a.SolvePositionConstraint(s) {
		t.Fatal("expected solve to apply a correction")
	}
	// C is not linear in the positions, so one pass lands at 0.53; further
	// passes converge on the rest area.
	for pass := 1; pass < 20; pass++ {
		a.SolvePositionConstraint(s)
	}
	xi, xj, xk := s.Current[0], s.Current[1], s.Current[2]
	got := triangleArea(&xi, &xj, &xk)
	if !lin.Aeq(got, 0.5) {
		t.Fatalf("expected area restored to 0.5, got %v", got)
	}
}
