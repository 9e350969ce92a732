// Copyright © 2024 Galvanized Logic Inc.

package constraint

import (
	"testing"

	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/state"
)

func unitCubeStore() (*state.Store, [8]int) {
	s := state.New()
	s.SetInitial([]lin.V3{
		*lin.NewV3S(0, 0, 0),
		*lin.NewV3S(1, 0, 0),
		*lin.NewV3S(1, 1, 0),
		*lin.NewV3S(0, 1, 0),
		*lin.NewV3S(0, 0, 1),
		*lin.NewV3S(1, 0, 1),
		*lin.NewV3S(1, 1, 1),
		*lin.NewV3S(0, 1, 1),
	})
	s.SetUniformMass(1)
	return s, [8]int{0, 1, 2, 3, 4, 5, 6, 7}
}

func (c *FEMHexConstraint) restVolume() float64 {
	v := 0.0
	for _, qp := range c.quad {
		v += qp.vol
	}
	return v
}

func TestFEMHexRestVolumeIsUnitCube(t *testing.T) {
	s, verts := unitCubeStore()
	mu, lambda := LameParameters(1e4, 0.3)
	c, err := NewFEMHex(s, verts, StVK, mu, lambda, 1, 1)
	if err != nil {
		t.Fatalf("NewFEMHex: %v", err)
	}
	if !lin.Aeq(c.restVolume(), 1) {
		t.Fatalf("expected rest volume 1, got %v", c.restVolume())
	}
}

func TestFEMHexRestStateHasNoEnergy(t *testing.T) {
	for _, mat := range []Material{Linear, StVK, Corotation, NeoHookean} {
		s, verts := unitCubeStore()
		mu, lambda := LameParameters(1e4, 0.3)
		c, err := NewFEMHex(s, verts, mat, mu, lambda, 1, 1)
		if err != nil {
			t.Fatalf("%v: NewFEMHex: %v", mat, err)
		}
		if c.SolvePositionConstraint(s) {
			t.Fatalf("%v: expected no correction at rest shape", mat)
		}
	}
}

func TestFEMHexLinearIsAlwaysNoOp(t *testing.T) {
	s, verts := unitCubeStore()
	mu, lambda := LameParameters(1e4, 0.3)
	c, err := NewFEMHex(s, verts, Linear, mu, lambda, 1, 1)
	if err != nil {
		t.Fatalf("NewFEMHex: %v", err)
	}
	for _, a := range []int{1, 2, 5, 6} { // push the +x face outward
		s.Current[a].X += 0.4
	}
	if c.SolvePositionConstraint(s) {
		t.Fatal("expected Linear to remain a no-op even under stretch")
	}
}

func TestFEMHexStretchAppliesCorrection(t *testing.T) {
	s, verts := unitCubeStore()
	mu, lambda := LameParameters(1e4, 0.3)
	c, err := NewFEMHex(s, verts, StVK, mu, lambda, 1, 1)
	if err != nil {
		t.Fatalf("NewFEMHex: %v", err)
	}
	for _, a := range []int{1, 2, 5, 6} { // push the +x face outward
		s.Current[a].X += 0.4
	}
	if !c.SolvePositionConstraint(s) {
		t.Fatal("expected a correction for stretched hex")
	}
}

func TestNewFEMHexRejectsInvertedElement(t *testing.T) {
	s := state.New()
	s.SetInitial([]lin.V3{
		*lin.NewV3S(0, 0, 0),
		*lin.NewV3S(1, 0, 0),
		*lin.NewV3S(1, 1, 0),
		*lin.NewV3S(0, 1, 0),
		*lin.NewV3S(0, 0, 0), // collapsed top face: zero volume
		*lin.NewV3S(1, 0, 0),
		*lin.NewV3S(1, 1, 0),
		*lin.NewV3S(0, 1, 0),
	})
	s.SetUniformMass(1)
	mu, lambda := LameParameters(1e4, 0.3)
	_, err := NewFEMHex(s, [8]int{0, 1, 2, 3, 4, 5, 6, 7}, StVK, mu, lambda, 1, 1)
	if err == nil {
		t.Fatal("expected DegenerateGeometry for collapsed hex")
	}
}
