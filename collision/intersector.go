// Copyright © 2024 Galvanized Logic Inc.

package collision

// Epsilon is the degeneracy/tolerance threshold used throughout the
// collision pipeline, matching constraint.Epsilon's role in Component B.
const Epsilon = 1e-6

// EventKind tags one of the three event shapes a MeshIntersector reports.
type EventKind int

const (
	EdgeEdgeEvent EventKind = iota
	VertexInFaceAEvent
	VertexInFaceBEvent
)

// IntersectionEvent is one narrow-phase finding from a MeshIntersector
// query between two meshes. Fields are populated according to Kind: an
// EdgeEdgeEvent uses EdgeA/EdgeB/ParamA/ParamB; a VertexInFaceA/BEvent
// uses Vertex/Triangle/Bary. Indices are local vertex indices into the
// corresponding Mesh's Vertices slice — the caller (HandleMeshMesh) maps
// them through Mesh.ParticleIndex.
type IntersectionEvent struct {
	Kind EventKind

	EdgeA, EdgeB   [2]int
	ParamA, ParamB float64

	Vertex   int
	Triangle [3]int
	Bary     [3]float64

	TOI float64
}

// MeshIntersector is the triangle-mesh bounding-volume-hierarchy
// self-intersection library spec.md §1 assumes present, used as the
// narrow-phase kernel for deformable meshes. Refit updates a mesh's BVH
// leaf boxes from current vertex positions and refits internal nodes
// bottom-up; Query reports every edge-edge, vertex-in-face-A and
// vertex-in-face-B event between a and b (which may be the same Mesh, for
// self-intersection).
type MeshIntersector interface {
	Refit(m *Mesh)
	Query(a, b *Mesh) []IntersectionEvent
}
