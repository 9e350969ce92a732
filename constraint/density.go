// Copyright © 2024 Galvanized Logic Inc.

package constraint

import (
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/softbody/pbdcore/math/lin"
	"github.com/softbody/pbdcore/perr"
	"github.com/softbody/pbdcore/state"
)

// ConstantDensityConstraint is the single body-wide constraint modelling
// SPH-like incompressibility (Müller/Macklin position-based fluids): every
// particle in the store is a neighbor candidate for every other, kernel
// radius h bounding the search. Neighbor lookup is brute-force O(N^2);
// nothing in this library supplies a spatial hash, so larger clouds pay the
// quadratic cost per spec.md §4.
type ConstantDensityConstraint struct {
	base
	h, restDensity, relaxation float64
	maxNeighbors               int
	poly6Coeff, spikyCoeff     float64
	parallel                   bool
}

// NewConstantDensity builds the density constraint over every particle
// currently in s. Fails with DegenerateGeometry if h or restDensity is
// non-positive. parallel opts the neighbor-accumulation pass (the first of
// SolvePositionConstraint's two passes) into an errgroup-sharded run,
// matching SPEC_FULL.md's "opt-in, sequential fallback" Config.Parallel
// contract; the second (position-write) pass always stays sequential.
func NewConstantDensity(s *state.Store, h, restDensity, relaxation float64, maxNeighbors int, stiffness float64, iters int, parallel bool) (*ConstantDensityConstraint, error) {
	if h < Epsilon || restDensity < Epsilon {
		return nil, perr.New(perr.DegenerateGeometry, "constraint.NewConstantDensity", "non-positive kernel radius or rest density")
	}
	n := s.NumParticles()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return &ConstantDensityConstraint{
		base:         base{indices: indices, kind: ConstantDensity, stiff: EffectiveStiffness(stiffness, iters)},
		h:            h,
		restDensity:  restDensity,
		relaxation:   relaxation,
		maxNeighbors: maxNeighbors,
		poly6Coeff:   315 / (64 * math.Pi * math.Pow(h, 9)),
		spikyCoeff:   -45 / (math.Pi * math.Pow(h, 6)),
		parallel:     parallel,
	}, nil
}

func (c *ConstantDensityConstraint) poly6(r float64) float64 {
	if r > c.h {
		return 0
	}
	t := c.h*c.h - r*r
	return c.poly6Coeff * t * t * t
}

func (c *ConstantDensityConstraint) spikyGrad(dir *lin.V3, r float64) *lin.V3 {
	if r < Epsilon {
		return lin.NewV3()
	}
	t := c.h - r
	return lin.NewV3().Scale(dir, c.spikyCoeff*t*t/r)
}

// SolvePositionConstraint runs the two-pass position-based-fluids update:
// accumulate density and the scaling factor lambda per particle, then move
// each particle along the weighted sum of its neighbors' spiky gradients.
// Density accumulation is embarrassingly parallel across particles; when
// parallel is set it runs sharded on an errgroup, otherwise it runs as a
// plain sequential loop — both paths call the same per-particle body, so
// they agree bit-for-bit. The position writes in the second pass always
// stay sequential, since spec.md §5 requires the projection loop itself to
// stay sequential for determinism — here that just means no concurrent
// writes to s.Current, which the first pass already respects by
// construction (each goroutine only touches its own i's scratch slot).
func (c *ConstantDensityConstraint) SolvePositionConstraint(s *state.Store) bool {
	n := len(c.indices)
	if n == 0 {
		return false
	}
	neighbors := make([][]int, n)
	densities := make([]float64, n)
	lambdas := make([]float64, n)

	accumulate := func(i int) {
		xi := s.Current[c.indices[i]]
		var rho, gradSq float64
		var nbrs []int
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			xj := s.Current[c.indices[j]]
			d := lin.NewV3().Sub(&xi, &xj)
			r := d.Len()
			if r >= c.h {
				continue
			}
			rho += c.poly6(r)
			gradSq += c.spikyGrad(d, r).LenSqr()
			nbrs = append(nbrs, j)
		}
		rho += c.poly6(0)
		if len(nbrs) > c.maxNeighbors {
			slog.Warn("constant-density neighbor count exceeded budget, truncating",
				"particle", c.indices[i], "count", len(nbrs), "max", c.maxNeighbors)
			nbrs = nbrs[:c.maxNeighbors]
		}
		densities[i] = rho
		neighbors[i] = nbrs
		denom := gradSq/c.restDensity + c.relaxation
		if denom < Epsilon {
			lambdas[i] = 0
			return
		}
		lambdas[i] = -(rho/c.restDensity - 1) / denom
	}

	if c.parallel {
		var g errgroup.Group
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error {
				accumulate(i)
				return nil
			})
		}
		g.Wait()
	} else {
		for i := 0; i < n; i++ {
			accumulate(i)
		}
	}

	moved := false
	for i := 0; i < n; i++ {
		pi := c.indices[i]
		if s.InvMass[pi] == 0 {
			continue
		}
		xi := s.Current[pi]
		corr := lin.NewV3()
		for _, j := range neighbors[i] {
			xj := s.Current[c.indices[j]]
			d := lin.NewV3().Sub(&xi, &xj)
			r := d.Len()
			if r < Epsilon || r >= c.h {
				continue
			}
			grad := c.spikyGrad(d, r)
			grad.Scale(grad, (lambdas[i]+lambdas[j])/c.restDensity)
			corr.Add(corr, grad)
		}
		if corr.LenSqr() < Epsilon*Epsilon {
			continue
		}
		corr.Scale(corr, c.stiff)
		s.Current[pi].Add(&s.Current[pi], corr)
		moved = true
	}
	return moved
}
