// Copyright © 2024 Galvanized Logic Inc.

// Package sim is Component E of the physics core — the coupling/step
// controller. It drives the PBD model (package model) through one frame at
// a time: pull external input, predict, run the registered collision
// pairs, synthesize contact constraints, project, integrate, discard. It
// owns the scratch constraint list and collision-data container for the
// duration of a step; neither outlives the call to Step.
package sim

import (
	"github.com/softbody/pbdcore/collision"
	"github.com/softbody/pbdcore/constraint"
	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/model"
	"github.com/softbody/pbdcore/state"
)

// Pair is one registered collision-geometry pair the controller tests every
// step, per spec.md §4.E step 3 ("for every registered collision pair").
type Pair struct {
	A, B          collision.Geometry
	Intersector   collision.MeshIntersector // consulted only for a Mesh/Mesh pair.
	Bidirectional bool                      // consulted only for a Plane/Sphere pair.
}

// Inbox is the per-step device-input snapshot of spec.md §6: position,
// orientation, linear/angular velocity, button state, desired force. The
// controller consumes it once at step start; the caller (device-input
// thread) refreshes it at will between steps, never mid-step.
type Inbox struct {
	Position        lin.V3
	Orientation     lin.Q
	LinearVelocity  lin.V3
	AngularVelocity lin.V3
	Buttons         uint32
	Force           lin.V3

	// PosePinned lists particles whose position/velocity this step is
	// overridden to track Position/LinearVelocity directly — the "pinned-
	// particle pose update" mapping of spec.md §6.
	PosePinned []int
	// ForceApplied lists particles that receive Force, divided by their
	// mass, as additional acceleration this step — the "applied external
	// force on a designated particle subset" mapping.
	ForceApplied []int

	// CutRequested, when true, runs the cutting operator between steps 1
	// and 2 against CutMesh using CutSurface, per spec.md §4.E's "Cutting,
	// if requested this frame, runs between steps 1 and 2."
	CutRequested bool
	CutSurface   collision.CuttingSurface
	CutMesh      *collision.Mesh
}

// CutOutcome is returned by Step when a cut ran this frame, so the caller
// can grow the state store and rebuild constraints for the affected
// particles — the cutting operator itself only rewrites mesh topology and
// names the affected index sets; it does not own particle allocation or
// the constraint list (model.Model does).
type CutOutcome struct {
	Ran     bool
	Removed []int
	Rebuilt []int
}

// Controller is the per-frame step controller.
type Controller struct {
	Model *model.Model
	Pairs []Pair
	Inbox Inbox

	LastCut CutOutcome

	data    collision.Data
	scratch []constraint.Constraint
}

// New returns a Controller driving m.
func New(m *model.Model) *Controller {
	return &Controller{Model: m}
}

// Step runs spec.md §4.E's six-step per-frame algorithm:
//  1. pull external accelerations/forces from the inbox
//  2. model.Predict()
//  3. dispatch every registered pair, appending contact records
//  4. synthesize a scratch contact-constraint list from those records
//  5. model.ProjectConstraints(scratch)
//  6. model.IntegrateVelocity(), then discard scratch + collision data
func (c *Controller) Step() error {
	c.applyInbox()

	c.LastCut = CutOutcome{}
	if c.Inbox.CutRequested && c.Inbox.CutMesh != nil && c.Inbox.CutSurface != nil {
		c.runCut()
	}

	if err := c.Model.Predict(); err != nil {
		return err
	}

	cfg := c.Model.Config()
	c.data.Clear()
	for _, pair := range c.Pairs {
		if !c.broadPhaseOverlaps(pair, cfg.Proximity) {
			continue
		}
		collision.Dispatch(&c.data, pair.A, pair.B, pair.Intersector, pair.Bidirectional)
	}

	c.scratch = c.scratch[:0]
	c.synthesizeContacts(cfg.ContactStiffness, cfg.Proximity)

	c.Model.ProjectConstraints(c.scratch)
	c.Model.IntegrateVelocity()
	c.clearForces()

	c.scratch = c.scratch[:0]
	c.data.Clear()
	return nil
}

// broadPhaseOverlaps runs collision.CandidatePairs over pair's two
// geometries as a per-step prune, per spec.md §5's broad-phase point:
// every registered pair gets one bounding-volume check per frame before
// paying for its narrow-phase handler.
func (c *Controller) broadPhaseOverlaps(pair Pair, margin float64) bool {
	candidates := collision.CandidatePairs([]collision.Geometry{pair.A, pair.B}, margin)
	return len(candidates) > 0
}

// clearForces zeroes every particle's accumulated acceleration at the end
// of a step, mirroring the teacher's own clear_forces() convention: a
// per-step applied force (Inbox.Force) must not silently persist into
// later frames once it has been integrated.
func (c *Controller) clearForces() {
	s := c.Model.Store()
	for i := range s.Acceleration {
		s.Acceleration[i] = lin.V3{}
	}
}

// applyInbox maps the device-input snapshot onto the state store, per
// spec.md §6: pinned-particle pose updates and applied external force.
// Grasp/cut triggers are read directly from the Inbox fields in Step.
func (c *Controller) applyInbox() {
	s := c.Model.Store()
	n := s.NumParticles()
	for _, i := range c.Inbox.PosePinned {
		if i < 0 || i >= n {
			continue
		}
		s.Current[i] = c.Inbox.Position
		s.Velocity[i] = c.Inbox.LinearVelocity
	}
	for _, i := range c.Inbox.ForceApplied {
		if i < 0 || i >= n || s.InvMass[i] == 0 {
			continue
		}
		accel := *lin.NewV3().Scale(&c.Inbox.Force, s.InvMass[i])
		s.Acceleration[i].Add(&s.Acceleration[i], &accel)
	}
}

func (c *Controller) runCut() {
	result := collision.Cut(c.Inbox.CutMesh, c.Inbox.CutSurface, constraint.Epsilon)
	c.LastCut = CutOutcome{Ran: true, Removed: result.Removed, Rebuilt: result.Rebuilt}
	c.Inbox.CutRequested = false
}

// synthesizeContacts translates this step's collision.Data into scratch
// constraints, per spec.md §4.E step 3's translation rule: MA records are
// one-sided vertex-correction contacts; PD records become one-sided
// vertex-plane contacts; TV/VT/EE records become triangle-point / edge-edge
// contacts built from the bodies' own current (predicted) positions, since
// collision.Data itself carries no normal for those three shapes.
func (c *Controller) synthesizeContacts(stiffness, proximity float64) {
	s := c.Model.Store()
	d := &c.data

	for _, pd := range d.PDs {
		// Anchor on the particle's current position, not the pre-predict
		// contact point: target is where the particle's signed distance
		// must land (current + Depth along the normal), mirroring the MA
		// path below. Anchoring on pd.Point instead holds the particle at
		// the contact point itself — one Depth short of tangency.
		target := s.Current[pd.Particle].Dot(&pd.Normal) + pd.Depth
		c.scratch = append(c.scratch, constraint.NewPlaneVertexContact(pd.Particle, pd.Normal, target, stiffness, false))
	}
	for _, ma := range d.MAs {
		xi := s.Current[ma.Particle]
		c.scratch = append(c.scratch, constraint.NewVertexCorrectionContact(ma.Particle, xi, ma.Correction, stiffness))
	}
	for _, vt := range d.VTs {
		if ct, ok := trianglePointContact(s, vt.Vertex, vt.Triangle, vt.Bary, stiffness); ok {
			c.scratch = append(c.scratch, ct)
		}
	}
	for _, tv := range d.TVs {
		if ct, ok := trianglePointContact(s, tv.Vertex, tv.Triangle, tv.Bary, stiffness); ok {
			c.scratch = append(c.scratch, ct)
		}
	}
	for _, ee := range d.EEs {
		if ct, ok := edgeEdgeContact(s, ee, stiffness, proximity); ok {
			c.scratch = append(c.scratch, ct)
		}
	}
}

// trianglePointContact builds a one-sided vertex-outside-triangle-plane
// contact, orienting the plane normal so the vertex already sits on its
// positive side at synthesis time — correction only fires once the vertex
// crosses to the other side. ok is false for a degenerate (near-zero-area)
// triangle.
func trianglePointContact(s *state.Store, v int, tri [3]int, bary [3]float64, stiffness float64) (*constraint.ContactConstraint, bool) {
	p0, p1, p2 := s.Current[tri[0]], s.Current[tri[1]], s.Current[tri[2]]
	e1 := *lin.NewV3().Sub(&p1, &p0)
	e2 := *lin.NewV3().Sub(&p2, &p0)
	n := *lin.NewV3().Cross(&e1, &e2)
	if n.LenSqr() < constraint.Epsilon {
		return nil, false
	}
	n.Unit()

	vx := s.Current[v]
	toV := *lin.NewV3().Sub(&vx, &p0)
	if toV.Dot(&n) < 0 {
		n.Neg(&n)
	}

	// The (1,-b0,-b1,-b2) weighting already makes val = (x_v-planePoint).n,
	// the vertex's own signed distance from the triangle plane — target is
	// 0, not planePoint.n, or the constraint double-anchors at planePoint.
	return constraint.NewTrianglePointContact(v, tri, bary, n, 0, stiffness), true
}

// edgeEdgeContact builds a one-sided edge-edge separation contact: the
// normal is oriented from edgeB's closest point toward edgeA's at
// synthesis time, so the contact only fires (pushing the edges apart) once
// their separation along that direction drops below proximity. ok is
// false when the two closest points already coincide (no well-defined
// separation direction).
func edgeEdgeContact(s *state.Store, ee collision.EE, stiffness, proximity float64) (*constraint.ContactConstraint, bool) {
	a0, a1 := s.Current[ee.EdgeA[0]], s.Current[ee.EdgeA[1]]
	b0, b1 := s.Current[ee.EdgeB[0]], s.Current[ee.EdgeB[1]]

	pa := *lin.NewV3().Scale(&a1, ee.ParamA)
	a0w := *lin.NewV3().Scale(&a0, 1-ee.ParamA)
	pa.Add(&pa, &a0w)

	pb := *lin.NewV3().Scale(&b1, ee.ParamB)
	b0w := *lin.NewV3().Scale(&b0, 1-ee.ParamB)
	pb.Add(&pb, &b0w)

	n := *lin.NewV3().Sub(&pa, &pb)
	if n.LenSqr() < constraint.Epsilon {
		return nil, false
	}
	n.Unit()

	return constraint.NewEdgeEdgeContact(ee.EdgeA, ee.EdgeB, ee.ParamA, ee.ParamB, n, proximity, stiffness), true
}
