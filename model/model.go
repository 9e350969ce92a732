// Copyright © 2024 Galvanized Logic Inc.

// Package model is Component C of the physics core — the PBD model. It owns
// the state store and the persistent constraint list, builds constraints
// from a mesh's topology, and runs the predict/project/integrate cycle each
// step. The step controller (package sim) drives it; the constraint library
// (package constraint) supplies the algebraic kernels it projects.
package model

import (
	"github.com/softbody/pbdcore/constraint"
	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/mesh"
	"github.com/softbody/pbdcore/perr"
	"github.com/softbody/pbdcore/state"
)

// Config holds the options recognized at PBD-model construction, per
// spec.md §6.
type Config struct {
	Dt            float64
	Gravity       lin.V3
	Iterations    int
	LinearDamping float64
	AngularDamping float64

	ContactStiffness float64 // [0,1]; defaults to 1.0 if zero (spec.md §9).
	Proximity        float64 // collision margin, meters.
	DoPartitioning   bool    // reserved, currently ignored.

	// Parallel opts the constant-density constraint's neighbor-accumulation
	// pass into an errgroup-sharded run instead of its sequential fallback,
	// per SPEC_FULL.md's Domain Stack entry on golang.org/x/sync/errgroup.
	Parallel bool

	Material      constraint.Material
	YoungsModulus float64
	PoissonRatio  float64

	DensityMaxDist      float64
	DensityRestDensity  float64
	DensityMaxNeighbors int
	DensityRelaxation   float64
}

// LameParameters derives (mu, lambda) from the configured Young's modulus
// and Poisson ratio.
func (c Config) LameParameters() (mu, lambda float64) {
	return constraint.LameParameters(c.YoungsModulus, c.PoissonRatio)
}

// Model holds a mesh reference, a state store, and a persistent constraint
// list, per spec.md §4.C. It is not safe for concurrent use — the core is
// single-threaded and cooperative within one step (spec.md §5).
type Model struct {
	cfg Config

	mesh  mesh.Mesh
	store *state.Store

	constraints []constraint.Constraint
}

// New builds a Model from cfg. Geometry must be installed with SetGeometry
// before any step operation; calling a step operation first returns
// Unconfigured.
func New(cfg Config) *Model {
	if cfg.ContactStiffness == 0 {
		cfg.ContactStiffness = 1.0
	}
	return &Model{cfg: cfg, store: state.New()}
}

// Config returns the model's configuration.
func (m *Model) Config() Config { return m.cfg }

// Store exposes the underlying particle arena, for collaborators (the
// collision pipeline, the step controller) that need direct read/write
// access by index.
func (m *Model) Store() *state.Store { return m.store }

// Mesh returns the currently installed mesh, or nil if none has been set.
func (m *Model) Mesh() mesh.Mesh { return m.mesh }

// SetGeometry stores mesh, resizes the state store to its vertex count, and
// copies its initial vertex positions into all three state snapshots. Any
// previously built constraints are discarded — per spec.md §4.A, a
// mesh-geometry replacement invalidates every constraint bound to the old
// rest state.
func (m *Model) SetGeometry(mh mesh.Mesh) {
	m.mesh = mh
	m.store.SetInitial(mh.InitialVertexPositions())
	m.constraints = m.constraints[:0]
}

// AddConstraint appends c to the persistent constraint list.
func (m *Model) AddConstraint(c constraint.Constraint) {
	m.constraints = append(m.constraints, c)
}

// Constraints returns the persistent constraint list in insertion order.
func (m *Model) Constraints() []constraint.Constraint { return m.constraints }

// Predict integrates external acceleration into velocity and advances
// current position for every non-pinned particle, per spec.md §4.C:
//
//	vᵢ += (aᵢ + g)Δt
//	x⁻ᵢ = xᵢ
//	xᵢ += vᵢΔt
//
// Pinned particles (wᵢ=0) are skipped entirely — their previous position is
// not even refreshed, since they never move.
func (m *Model) Predict() error {
	if m.mesh == nil {
		return perr.New(perr.Unconfigured, "model.Predict", "SetGeometry not called")
	}
	s := m.store
	dt := m.cfg.Dt
	g := m.cfg.Gravity
	for i := 0; i < s.NumParticles(); i++ {
		if s.InvMass[i] == 0 {
			continue
		}
		accel := *lin.NewV3().Add(&s.Acceleration[i], &g)
		accel.Scale(&accel, dt)
		s.Velocity[i].Add(&s.Velocity[i], &accel)

		s.Previous[i] = s.Current[i]

		step := *lin.NewV3().Scale(&s.Velocity[i], dt)
		s.Current[i].Add(&s.Current[i], &step)
	}
	return nil
}

// ProjectConstraints runs a fixed-iteration Gauss-Seidel loop over the
// persistent constraint list, then over extra (the step controller's
// scratch contact constraints for this frame, if any), per spec.md §4.C/
// §4.E. Projection order is insertion order within each list; there is no
// early exit on convergence and no mutation for a constraint that returns
// false.
func (m *Model) ProjectConstraints(extra []constraint.Constraint) {
	s := m.store
	for n := 0; n < m.cfg.Iterations; n++ {
		for _, c := range m.constraints {
			c.SolvePositionConstraint(s)
		}
		for _, c := range extra {
			c.SolvePositionConstraint(s)
		}
	}
}

// IntegrateVelocity recovers velocity from the position delta accumulated
// during prediction and projection, then applies global linear damping, per
// spec.md §4.C:
//
//	vᵢ = (xᵢ - x⁻ᵢ)/Δt
//	vᵢ *= (1 - c_linear)
//
// Pinned particles are skipped; Δt=0 is a no-op (division guarded).
func (m *Model) IntegrateVelocity() {
	s := m.store
	dt := m.cfg.Dt
	if dt == 0 {
		return
	}
	damp := 1 - m.cfg.LinearDamping
	for i := 0; i < s.NumParticles(); i++ {
		if s.InvMass[i] == 0 {
			continue
		}
		delta := *lin.NewV3().Sub(&s.Current[i], &s.Previous[i])
		delta.Scale(&delta, 1/dt)
		delta.Scale(&delta, damp)
		s.Velocity[i] = delta
	}
}
