// Copyright © 2024 Galvanized Logic Inc.

package constraint

import (
	"errors"
	"testing"

	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/perr"
	"github.com/softbody/pbdcore/state"
)

func TestNewConstantDensityRejectsBadParams(t *testing.T) {
	s := state.New()
	s.SetInitial([]lin.V3{*lin.NewV3S(0, 0, 0)})
	s.SetUniformMass(1)
	if _, err := NewConstantDensity(s, 0, 1000, 0.01, 60, 1, 1, false); !errors.Is(err, perr.DegenerateGeometry) {
		t.Fatalf("expected DegenerateGeometry for zero kernel radius, got %v", err)
	}
	if _, err := NewConstantDensity(s, 0.1, 0, 0.01, 60, 1, 1, false); !errors.Is(err, perr.DegenerateGeometry) {
		t.Fatalf("expected DegenerateGeometry for zero rest density, got %v", err)
	}
}

func TestConstantDensityPullsOverpackedParticlesApart(t *testing.T) {
	s := state.New()
	s.SetInitial([]lin.V3{
		*lin.NewV3S(0, 0, 0),
		*lin.NewV3S(0.02, 0, 0),
		*lin.NewV3S(0, 0.02, 0),
	})
	s.SetUniformMass(1)

	d, err := NewConstantDensity(s, 0.1, 1000, 0.01, 60, 1, 1, false)
	if err != nil {
		t.Fatalf("NewConstantDensity: %v", err)
	}
	before := s.Current[0].Dist(&s.Current[1])
	if !d.SolvePositionConstraint(s) {
		t.Fatal("expected a correction for an overpacked cluster")
	}
	after := s.Current[0].Dist(&s.Current[1])
	if after <= before {
		t.Fatalf("expected particles to separate, before=%v after=%v", before, after)
	}
}

func TestConstantDensitySkipsPinnedParticles(t *testing.T) {
	s := state.New()
	s.SetInitial([]lin.V3{
		*lin.NewV3S(0, 0, 0),
		*lin.NewV3S(0.02, 0, 0),
	})
	s.SetUniformMass(1)
	s.Pin(0)
	s.Pin(1)

	d, err := NewConstantDensity(s, 0.1, 1000, 0.01, 60, 1, 1, false)
	if err != nil {
		t.Fatalf("NewConstantDensity: %v", err)
	}
	if d.SolvePositionConstraint(s) {
		t.Fatal("expected no-op when every particle is pinned")
	}
}

func TestConstantDensityParallelAndSequentialAgree(t *testing.T) {
	build := func(parallel bool) *state.Store {
		s := state.New()
		s.SetInitial([]lin.V3{
			*lin.NewV3S(0, 0, 0),
			*lin.NewV3S(0.02, 0, 0),
			*lin.NewV3S(0, 0.02, 0),
		})
		s.SetUniformMass(1)
		d, err := NewConstantDensity(s, 0.1, 1000, 0.01, 60, 1, 1, parallel)
		if err != nil {
			t.Fatalf("NewConstantDensity: %v", err)
		}
		d.SolvePositionConstraint(s)
		return s
	}
	seq := build(false)
	par := build(true)
	for i := range seq.Current {
		if !seq.Current[i].Aeq(&par.Current[i]) {
			t.Errorf("particle %d: sequential = %v, parallel = %v", i, seq.Current[i], par.Current[i])
		}
	}
}
