// Copyright © 2024 Galvanized Logic Inc.

package model

import (
	"github.com/softbody/pbdcore/constraint"
	"github.com/softbody/pbdcore/mesh"
	"github.com/softbody/pbdcore/perr"
)

// edgeKey canonicalizes an edge by (min,max) particle index so the same
// edge shared by multiple cells is only ever built once.
func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// collectEdges gathers the de-duplicated edge set of the mesh's topology:
// triangle edges, tet edges, hex edges, or the mesh's own edge list,
// whichever applies, per spec.md §4.C ("triangle edges ∪ tet edges ∪ hex
// edges").
func collectEdges(mh mesh.Mesh) [][2]int {
	seen := make(map[[2]int]bool)
	var edges [][2]int
	add := func(a, b int) {
		k := edgeKey(a, b)
		if seen[k] {
			return
		}
		seen[k] = true
		edges = append(edges, k)
	}
	for _, t := range mh.Triangles() {
		add(t[0], t[1])
		add(t[1], t[2])
		add(t[2], t[0])
	}
	for _, t := range mh.Tetrahedra() {
		add(t[0], t[1])
		add(t[0], t[2])
		add(t[0], t[3])
		add(t[1], t[2])
		add(t[1], t[3])
		add(t[2], t[3])
	}
	for _, h := range mh.Hexahedra() {
		hexEdgePairs := [12][2]int{
			{0, 1}, {1, 2}, {2, 3}, {3, 0},
			{4, 5}, {5, 6}, {6, 7}, {7, 4},
			{0, 4}, {1, 5}, {2, 6}, {3, 7},
		}
		for _, p := range hexEdgePairs {
			add(h[p[0]], h[p[1]])
		}
	}
	for _, e := range mh.Edges() {
		add(e[0], e[1])
	}
	return edges
}

// interiorEdge is a shared triangle edge (k,l) together with the two
// opposing vertices (i,j) of the two triangles it borders.
type interiorEdge struct {
	i, j, k, l int
}

// interiorEdges finds every edge shared by exactly two triangles (a
// two-ring intersection: the edge's one-ring on each side), pairing it with
// the opposite vertex of each triangle, per spec.md §4.C's dihedral
// dispatch rule.
func interiorEdges(tris []mesh.Triangle) []interiorEdge {
	type owner struct {
		tri, opposite int
	}
	adj := make(map[[2]int][]owner)
	for ti, t := range tris {
		edges := [3][2]int{{t[0], t[1]}, {t[1], t[2]}, {t[2], t[0]}}
		opposites := [3]int{t[2], t[0], t[1]}
		for e := 0; e < 3; e++ {
			k := edgeKey(edges[e][0], edges[e][1])
			adj[k] = append(adj[k], owner{tri: ti, opposite: opposites[e]})
		}
	}
	var out []interiorEdge
	for edge, owners := range adj {
		if len(owners) != 2 {
			continue
		}
		out = append(out, interiorEdge{
			i: owners[0].opposite,
			j: owners[1].opposite,
			k: edge[0],
			l: edge[1],
		})
	}
	return out
}

// InitializeConstraints builds constraints of kind over the installed
// mesh's topology and appends every successfully built one to the
// persistent list, per spec.md §4.C. Fails with WrongTopology if kind is
// incompatible with the mesh's topology tag. A per-cell DegenerateGeometry
// failure is not fatal to the whole call — the offending cell is skipped
// and the rest of the mesh still builds (mirrors spec.md §7's "per-
// constraint solve failures are local" policy extended to init-time
// per-cell failures across a batch).
func (m *Model) InitializeConstraints(kind constraint.Kind, stiffness float64) error {
	if m.mesh == nil {
		return perr.New(perr.Unconfigured, "model.InitializeConstraints", "SetGeometry not called")
	}
	iters := m.cfg.Iterations
	if iters < 1 {
		iters = 1
	}
	s := m.store

	switch kind {
	case constraint.Distance:
		for _, e := range collectEdges(m.mesh) {
			c, err := constraint.NewDistance(s, e[0], e[1], stiffness, iters)
			if err != nil {
				continue
			}
			m.AddConstraint(c)
		}
		return nil

	case constraint.Area:
		if m.mesh.TopologyKind() != mesh.Triangles {
			return perr.New(perr.WrongTopology, "model.InitializeConstraints", "Area requires a triangle mesh")
		}
		for _, t := range m.mesh.Triangles() {
			c, err := constraint.NewArea(s, t[0], t[1], t[2], stiffness, iters)
			if err != nil {
				continue
			}
			m.AddConstraint(c)
		}
		return nil

	case constraint.Dihedral:
		if m.mesh.TopologyKind() != mesh.Triangles {
			return perr.New(perr.WrongTopology, "model.InitializeConstraints", "Dihedral requires a triangle mesh")
		}
		for _, e := range interiorEdges(m.mesh.Triangles()) {
			c, err := constraint.NewDihedral(s, e.i, e.j, e.k, e.l, stiffness, iters)
			if err != nil {
				continue
			}
			m.AddConstraint(c)
		}
		return nil

	case constraint.Volume:
		if m.mesh.TopologyKind() != mesh.Tetrahedra {
			return perr.New(perr.WrongTopology, "model.InitializeConstraints", "Volume requires a tetrahedral mesh")
		}
		for _, tet := range m.mesh.Tetrahedra() {
			c, err := constraint.NewVolume(s, tet[0], tet[1], tet[2], tet[3], stiffness, iters)
			if err != nil {
				continue
			}
			m.AddConstraint(c)
		}
		return nil

	case constraint.FEMTet:
		if m.mesh.TopologyKind() != mesh.Tetrahedra {
			return perr.New(perr.WrongTopology, "model.InitializeConstraints", "FEMTet requires a tetrahedral mesh")
		}
		mu, lambda := m.cfg.LameParameters()
		for _, tet := range m.mesh.Tetrahedra() {
			c, err := constraint.NewFEMTet(s, tet[0], tet[1], tet[2], tet[3], m.cfg.Material, mu, lambda, stiffness, iters)
			if err != nil {
				continue
			}
			m.AddConstraint(c)
		}
		return nil

	case constraint.FEMHex:
		if m.mesh.TopologyKind() != mesh.Hexahedra {
			return perr.New(perr.WrongTopology, "model.InitializeConstraints", "FEMHex requires a hexahedral mesh")
		}
		mu, lambda := m.cfg.LameParameters()
		for _, hex := range m.mesh.Hexahedra() {
			verts := [8]int(hex)
			c, err := constraint.NewFEMHex(s, verts, m.cfg.Material, mu, lambda, stiffness, iters)
			if err != nil {
				continue
			}
			m.AddConstraint(c)
		}
		return nil

	case constraint.ConstantDensity:
		c, err := constraint.NewConstantDensity(s, m.cfg.DensityMaxDist, m.cfg.DensityRestDensity,
			m.cfg.DensityRelaxation, m.cfg.DensityMaxNeighbors, stiffness, iters, m.cfg.Parallel)
		if err != nil {
			return err
		}
		m.AddConstraint(c)
		return nil
	}

	return perr.New(perr.WrongTopology, "model.InitializeConstraints", "unknown constraint kind")
}
