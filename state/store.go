// Copyright © 2024 Galvanized Logic Inc.

// Package state holds the particle data a PBD body is built from: current,
// previous and initial positions, velocities, accelerations, and per-particle
// inverse mass. It is Component A of the physics core — the state store
// other components (the constraint library, the PBD model, the collision
// pipeline) all address by integer particle index rather than by pointer or
// reference, per the arena+index design in DESIGN.md.
package state

import (
	"fmt"

	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/perr"
)

// Store is the per-body particle arena. Initial positions are set once at
// construction and never mutated afterwards; current positions are mutated
// during prediction and projection; previous positions are written only at
// the start of prediction.
type Store struct {
	Initial  []lin.V3 // x⁰ᵢ, read-only after resize/setInitial.
	Previous []lin.V3 // x⁻ᵢ, scratch for velocity recovery.
	Current  []lin.V3 // xᵢ, mutated during the step.

	Velocity     []lin.V3
	Acceleration []lin.V3

	Mass    []float64 // mᵢ >= 0.
	InvMass []float64 // wᵢ = 1/mᵢ, or 0 for a pinned particle.
}

// New returns an empty store. Call Resize (or SetInitial) before use.
func New() *Store {
	return &Store{}
}

// NumParticles returns the current particle count N.
func (s *Store) NumParticles() int {
	return len(s.Current)
}

// Resize grows or shrinks the store to hold n particles, zero-valued.
// Existing particle data beyond the new size is discarded; a growing resize
// leaves new slots zeroed (position at origin, infinite mass until a mass is
// set). The cutting operator itself never resizes the store; the caller
// grows it for the vertices a cut appends (see sim.CutOutcome).
func (s *Store) Resize(n int) {
	s.Initial = resizeV3(s.Initial, n)
	s.Previous = resizeV3(s.Previous, n)
	s.Current = resizeV3(s.Current, n)
	s.Velocity = resizeV3(s.Velocity, n)
	s.Acceleration = resizeV3(s.Acceleration, n)
	s.Mass = resizeF64(s.Mass, n)
	s.InvMass = resizeF64(s.InvMass, n)
}

func resizeV3(v []lin.V3, n int) []lin.V3 {
	if n <= len(v) {
		return v[:n]
	}
	grown := make([]lin.V3, n)
	copy(grown, v)
	return grown
}

func resizeF64(v []float64, n int) []float64 {
	if n <= len(v) {
		return v[:n]
	}
	grown := make([]float64, n)
	copy(grown, v)
	return grown
}

// SetInitial copies verts into the initial/previous/current snapshots and
// resizes the store to match. This is the only way initial positions are
// ever written after construction — mesh-geometry replacement always goes
// through here and invalidates every constraint bound to the old rest state,
// per §4.A.
func (s *Store) SetInitial(verts []lin.V3) {
	s.Resize(len(verts))
	copy(s.Initial, verts)
	copy(s.Previous, verts)
	copy(s.Current, verts)
}

// SetUniformMass assigns mass m to every particle, deriving inverse mass.
// A mass of zero pins every particle (infinite mass).
func (s *Store) SetUniformMass(m float64) {
	for i := range s.Mass {
		s.setMass(i, m)
	}
}

// SetParticleMass assigns mass m to particle i. Returns InvalidIndex if
// i is out of range.
func (s *Store) SetParticleMass(m float64, i int) error {
	if i < 0 || i >= s.NumParticles() {
		return perr.New(perr.InvalidIndex, "state.SetParticleMass", indexDetail(i, s.NumParticles()))
	}
	s.setMass(i, m)
	return nil
}

func (s *Store) setMass(i int, m float64) {
	s.Mass[i] = m
	if m > 0 {
		s.InvMass[i] = 1 / m
	} else {
		s.InvMass[i] = 0
	}
}

// Pin sets wᵢ=0 for particle i, making it immovable (infinite mass) without
// otherwise touching its recorded mass. Returns InvalidIndex if i is out of
// range.
func (s *Store) Pin(i int) error {
	if i < 0 || i >= s.NumParticles() {
		return perr.New(perr.InvalidIndex, "state.Pin", indexDetail(i, s.NumParticles()))
	}
	s.InvMass[i] = 0
	return nil
}

// Pinned reports whether particle i has infinite mass.
func (s *Store) Pinned(i int) bool {
	return s.InvMass[i] == 0
}

// SwapCurrentIntoPrevious copies the current positions into the previous
// snapshot. predict() does this itself per-particle at the top of
// prediction; this whole-store variant is for callers (such as tests) that
// need to reset the velocity-recovery baseline directly.
func (s *Store) SwapCurrentIntoPrevious() {
	copy(s.Previous, s.Current)
}

func indexDetail(i, n int) string {
	return fmt.Sprintf("index %d out of range [0,%d)", i, n)
}
