// Copyright © 2024 Galvanized Logic Inc.

// Package mesh defines the immutable geometry interface the physics core
// consumes. Mesh file parsing (OBJ/VTK/STL/PLY/MSH/VEG, matching the
// extension-dispatch pattern of imstkMeshIO.cpp) and scene-graph plumbing
// are external collaborators per spec.md §1/§6 — this package only names
// the boundary the core reads through.
package mesh

import "github.com/softbody/pbdcore/math/lin"

// Kind tags which cell topology a Mesh carries. Topology is fixed for the
// life of a body except through the collision package's cutting operator,
// which appends particles and rewrites incident cells.
type Kind int

const (
	Triangles Kind = iota
	Tetrahedra
	Hexahedra
	Edges
)

func (k Kind) String() string {
	switch k {
	case Triangles:
		return "Triangles"
	case Tetrahedra:
		return "Tetrahedra"
	case Hexahedra:
		return "Hexahedra"
	case Edges:
		return "Edges"
	default:
		return "Unknown"
	}
}

// Triangle is a triple of particle indices.
type Triangle [3]int

// Tetrahedron is a quadruple of particle indices.
type Tetrahedron [4]int

// Hexahedron is an octuple of particle indices.
type Hexahedron [8]int

// Edge is a pair of particle indices.
type Edge [2]int

// Mesh is the immutable geometry the core reads at setGeometry time and at
// collision/renderer-output boundaries. A Mesh never has its vertex arrays
// replaced in place; installing new geometry means constructing (or
// externally mutating) a new value and calling model.SetGeometry again.
type Mesh interface {
	// NumVertices is the particle count N.
	NumVertices() int

	// VertexPositions returns the current vertex positions.
	VertexPositions() []lin.V3

	// InitialVertexPositions returns the rest-state vertex positions used
	// to compute constraint rest scalars.
	InitialVertexPositions() []lin.V3

	// TopologyKind reports which of the Triangles/Tetrahedra/
	// Hexahedra/Edges accessors below is valid for this mesh.
	TopologyKind() Kind

	Triangles() []Triangle
	Tetrahedra() []Tetrahedron
	Hexahedra() []Hexahedron
	Edges() []Edge
}

// Static is a plain-data Mesh implementation suitable for tests and for
// collaborators that only need to hand the core a fixed topology. It is not
// the only possible Mesh implementation — any type satisfying the interface
// above works, including ones backed by a renderer's own vertex buffers.
type Static struct {
	Kind    Kind
	Initial []lin.V3
	Current []lin.V3

	Tris  []Triangle
	Tets  []Tetrahedron
	Hexes []Hexahedron
	Edgs  []Edge
}

func (m *Static) NumVertices() int                  { return len(m.Initial) }
func (m *Static) VertexPositions() []lin.V3         { return m.Current }
func (m *Static) InitialVertexPositions() []lin.V3  { return m.Initial }
func (m *Static) TopologyKind() Kind                { return m.Kind }
func (m *Static) Triangles() []Triangle             { return m.Tris }
func (m *Static) Tetrahedra() []Tetrahedron         { return m.Tets }
func (m *Static) Hexahedra() []Hexahedron           { return m.Hexes }
func (m *Static) Edges() []Edge                     { return m.Edgs }

// NewTriangleMesh builds a Static triangle mesh from vertices already in
// rest position (Initial and Current both set to verts).
func NewTriangleMesh(verts []lin.V3, tris []Triangle) *Static {
	initial := make([]lin.V3, len(verts))
	current := make([]lin.V3, len(verts))
	copy(initial, verts)
	copy(current, verts)
	return &Static{Kind: Triangles, Initial: initial, Current: current, Tris: tris}
}

// NewTetrahedralMesh builds a Static tetrahedral mesh from vertices already
// in rest position.
func NewTetrahedralMesh(verts []lin.V3, tets []Tetrahedron) *Static {
	initial := make([]lin.V3, len(verts))
	current := make([]lin.V3, len(verts))
	copy(initial, verts)
	copy(current, verts)
	return &Static{Kind: Tetrahedra, Initial: initial, Current: current, Tets: tets}
}
