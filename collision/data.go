// Copyright © 2024 Galvanized Logic Inc.

// Package collision is Component D of the physics core — the collision
// pipeline. A typed factory dispatches geometry pairs to narrow-phase
// handlers that write into a step-scoped Data container; the step
// controller (package sim) translates that container into contact
// constraints each frame.
package collision

import "github.com/softbody/pbdcore/math/lin"

// PD is a penetration-depth contact: a point on the penetrating body,
// its outward normal, and the penetration depth.
type PD struct {
	Particle int
	Point    lin.V3
	Normal   lin.V3
	Depth    float64
}

// MA is a mesh-vertex contact: a vertex index and the displacement that
// resolves its penetration.
type MA struct {
	Particle   int
	Correction lin.V3
}

// TV is a triangle-A/vertex-B contact: the triangle's three particle
// indices, the vertex's particle index, the vertex's barycentric weights
// against the triangle, and the time-of-impact fraction reported by the
// mesh intersector.
type TV struct {
	Triangle   [3]int
	Vertex     int
	Bary       [3]float64
	TOI        float64
}

// VT is the mirror of TV: vertex A against triangle B.
type VT struct {
	Vertex   int
	Triangle [3]int
	Bary     [3]float64
	TOI      float64
}

// EE is an edge-edge contact: the two edges' particle indices, each edge's
// closest-point parameter in [0,1], and the time-of-impact fraction.
type EE struct {
	EdgeA    [2]int
	EdgeB    [2]int
	ParamA   float64
	ParamB   float64
	TOI      float64
}

// Data is the step-scoped collision-data container of spec.md §3: five
// disjoint sublists, cleared at the top of each collision pass and
// consumed once by the constraint-projection loop.
type Data struct {
	PDs []PD
	MAs []MA
	TVs []TV
	VTs []VT
	EEs []EE
}

// Clear empties every sublist without releasing their backing arrays, so a
// Data reused across steps stays allocation-free after the first grow, per
// spec.md §5.
func (d *Data) Clear() {
	d.PDs = d.PDs[:0]
	d.MAs = d.MAs[:0]
	d.TVs = d.TVs[:0]
	d.VTs = d.VTs[:0]
	d.EEs = d.EEs[:0]
}

// Empty reports whether every sublist is empty.
func (d *Data) Empty() bool {
	return len(d.PDs) == 0 && len(d.MAs) == 0 && len(d.TVs) == 0 && len(d.VTs) == 0 && len(d.EEs) == 0
}
