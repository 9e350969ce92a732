// Copyright © 2024 Galvanized Logic Inc.

package collision

import "github.com/softbody/pbdcore/math/lin"

// Pair is a candidate geometry pair the broad phase judged close enough to
// warrant a narrow-phase test, by index into the slice passed to
// CandidatePairs.
type Pair struct {
	A, B int
}

// boundingSphere returns a conservative bounding sphere for g, or ok=false
// for an unbounded primitive (Plane), which is always a candidate against
// everything.
func boundingSphere(g Geometry) (center lin.V3, radius float64, ok bool) {
	switch v := g.(type) {
	case Plane:
		return lin.V3{}, 0, false
	case Sphere:
		return v.Center, v.Radius, true
	case Capsule:
		mid := *lin.NewV3().Add(&v.A, &v.B)
		mid.Scale(&mid, 0.5)
		half := v.A.Dist(&v.B) / 2
		return mid, half + v.Radius, true
	case Cylinder:
		mid := *lin.NewV3().Add(&v.A, &v.B)
		mid.Scale(&mid, 0.5)
		half := v.A.Dist(&v.B) / 2
		return mid, half + v.Radius, true
	case Box:
		return v.Center, v.HalfExtents.Len(), true
	case Mesh:
		return meshBoundingSphere(v)
	default:
		return lin.V3{}, 0, false
	}
}

func meshBoundingSphere(m Mesh) (center lin.V3, radius float64, ok bool) {
	if len(m.Vertices) == 0 {
		return lin.V3{}, 0, false
	}
	for _, v := range m.Vertices {
		center.Add(&center, &v)
	}
	center.Scale(&center, 1/float64(len(m.Vertices)))
	for _, v := range m.Vertices {
		if d := center.Dist(&v); d > radius {
			radius = d
		}
	}
	return center, radius, true
}

// CandidatePairs runs a single bounding-sphere broad-phase pass over geos,
// returning every index pair whose bounding spheres are within margin of
// touching. Unbounded geometry (Plane) is always reported as a candidate
// against every other entry. Each geometry's bounding sphere is computed
// once per call; the step controller calls it once per registered pair per
// step (sim.Controller.broadPhaseOverlaps), so each pair's geometries get a
// single refresh per frame (spec.md §9's Open Question #2).
func CandidatePairs(geos []Geometry, margin float64) []Pair {
	centers := make([]lin.V3, len(geos))
	radii := make([]float64, len(geos))
	bounded := make([]bool, len(geos))
	for i, g := range geos {
		c, r, ok := boundingSphere(g)
		centers[i], radii[i], bounded[i] = c, r, ok
	}

	var pairs []Pair
	for i := 0; i < len(geos); i++ {
		for j := i + 1; j < len(geos); j++ {
			if !bounded[i] || !bounded[j] {
				pairs = append(pairs, Pair{i, j})
				continue
			}
			dist := centers[i].Dist(&centers[j])
			if dist <= radii[i]+radii[j]+margin {
				pairs = append(pairs, Pair{i, j})
			}
		}
	}
	return pairs
}
