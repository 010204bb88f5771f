package sim

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/grid"
	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/rheology"
	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/utils"
)

// StrainInvariant samples the axisymmetric strain-rate tensor around leaf c
// and returns its second-invariant magnitude.
func StrainInvariant(t *grid.Tree, c *grid.Cell) float64 {
	var (
		delta = t.Delta(c.Level)
		_, y  = t.CellCenter(c)
		l     = c.Level
	)
	d := rheology.NewStrainRate(delta, y,
		t.Value(Ux, l, c.I+1, c.J), t.Value(Ux, l, c.I-1, c.J),
		t.Value(Ux, l, c.I, c.J+1), t.Value(Ux, l, c.I, c.J-1),
		t.Value(Uy, l, c.I+1, c.J), t.Value(Uy, l, c.I-1, c.J),
		t.Value(Uy, l, c.I, c.J+1), t.Value(Uy, l, c.I, c.J-1),
		c.Val[Uy])
	return d.SecondInvariant()
}

// filteredFraction smooths the volume fraction with one pass of the standard
// 9-point filter before it is used to blend material properties, softening
// the density and viscosity jump across the interface.
func filteredFraction(t *grid.Tree, c *grid.Cell) float64 {
	var (
		l = c.Level
		s = 4. * c.Val[F]
	)
	s += 2. * (t.Value(F, l, c.I+1, c.J) + t.Value(F, l, c.I-1, c.J) +
		t.Value(F, l, c.I, c.J+1) + t.Value(F, l, c.I, c.J-1))
	s += t.Value(F, l, c.I+1, c.J+1) + t.Value(F, l, c.I+1, c.J-1) +
		t.Value(F, l, c.I-1, c.J+1) + t.Value(F, l, c.I-1, c.J-1)
	return s / 16.
}

// UpdateRheology is the per-cell constitutive sweep: it evaluates the
// regularized Herschel-Bulkley closure at every leaf, storing the blended
// effective viscosity in Mu and the liquid-masked invariant in D2. The sweep
// is sharded across goroutines; cells are independent so no locking is
// needed within a pass.
func UpdateRheology(t *grid.Tree, mp rheology.MaterialParameters, procLimit int) {
	t.Restrict()
	var (
		leaves = t.Leaves()
		pm     = utils.NewPartitionMap(procLimit, len(leaves))
		wg     = sync.WaitGroup{}
	)
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(np)
			for k := kMin; k < kMax; k++ {
				c := leaves[k]
				dII := StrainInvariant(t, c)
				c.Val[Mu] = mp.Viscosity(dII, filteredFraction(t, c))
				c.Val[D2] = rheology.Clamp(c.Val[F], 0, 1) * dII
			}
		}(np)
	}
	wg.Wait()
}

// UpdateCurvature estimates the interface curvature from the implicit
// representation of the volume fraction,
// kappa = -(fxx*fy^2 - 2*fx*fy*fxy + fyy*fx^2)/|grad f|^3, written into the
// Kappa field. Away from the interface band the gradient vanishes and the
// curvature is set to zero. This stands in for the framework's
// height-function module as the policy's curvature input.
func UpdateCurvature(t *grid.Tree, procLimit int) {
	t.Restrict()
	var (
		leaves = t.Leaves()
		pm     = utils.NewPartitionMap(procLimit, len(leaves))
		wg     = sync.WaitGroup{}
	)
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(np)
			for k := kMin; k < kMax; k++ {
				c := leaves[k]
				c.Val[Kappa] = curvatureAt(t, c)
			}
		}(np)
	}
	wg.Wait()
}

func curvatureAt(t *grid.Tree, c *grid.Cell) float64 {
	var (
		l     = c.Level
		delta = t.Delta(l)
		fC    = c.Val[F]
		fE    = t.Value(F, l, c.I+1, c.J)
		fW    = t.Value(F, l, c.I-1, c.J)
		fN    = t.Value(F, l, c.I, c.J+1)
		fS    = t.Value(F, l, c.I, c.J-1)
	)
	fx := (fE - fW) / (2 * delta)
	fy := (fN - fS) / (2 * delta)
	g2 := fx*fx + fy*fy
	// Only cells inside the interface band carry a meaningful normal.
	if g2 < 1e-6 {
		return 0
	}
	fxx := (fE - 2*fC + fW) / (delta * delta)
	fyy := (fN - 2*fC + fS) / (delta * delta)
	fxy := (t.Value(F, l, c.I+1, c.J+1) - t.Value(F, l, c.I+1, c.J-1) -
		t.Value(F, l, c.I-1, c.J+1) + t.Value(F, l, c.I-1, c.J-1)) / (4 * delta * delta)
	return -(fxx*fy*fy - 2*fx*fy*fxy + fyy*fx*fx) / math.Pow(g2, 1.5)
}

// KineticEnergy computes the axisymmetric volume integral
// sum 2*pi*y * 0.5*rho(f)*(ux^2 + uy^2) * Delta^2 over the leaves. Buckets
// accumulate partial sums independently and the partials are combined in
// fixed bucket order, so the result does not depend on traversal order.
func KineticEnergy(t *grid.Tree, mp rheology.MaterialParameters, procLimit int) float64 {
	var (
		leaves   = t.Leaves()
		pm       = utils.NewPartitionMap(procLimit, len(leaves))
		partials = make([]float64, pm.ParallelDegree)
		wg       = sync.WaitGroup{}
	)
	for np := 0; np < pm.ParallelDegree; np++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(np)
			var sum float64
			for k := kMin; k < kMax; k++ {
				c := leaves[k]
				_, y := t.CellCenter(c)
				delta := t.Delta(c.Level)
				u2 := c.Val[Ux]*c.Val[Ux] + c.Val[Uy]*c.Val[Uy]
				sum += (2 * math.Pi * y) * 0.5 * mp.Rho(c.Val[F]) * u2 * delta * delta
			}
			partials[np] = sum
		}(np)
	}
	wg.Wait()
	return floats.Sum(partials)
}
