package sim

import (
	"math"

	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/grid"
	"github.com/comphy-lab/BurstingBubble-Herschel-Bulkley/rheology"
)

// Solver advances the flow fields on the tree by one time step and returns
// the step size taken. The run lifecycle is written against this interface;
// the production systems delegate the full momentum/VOF machinery to an
// external framework, and ExplicitSolver below is the self-contained stand-in
// used by this module.
type Solver interface {
	Advance(t *grid.Tree, mp rheology.MaterialParameters, timeLeft float64) (dt float64)
}

// ExplicitSolver is a reduced axisymmetric two-phase update: upwind advection
// of the volume fraction and momentum, constitutive viscosity from the
// closure, continuum-surface-force capillarity, reduced gravity along -x and
// a short Jacobi pressure relaxation. It is intentionally simple; its job is
// to exercise the closure and the refinement policy with physically plausible
// fields, not to replicate the external projection/multigrid solver.
type ExplicitSolver struct {
	CFL           float64
	PressureIters int
	ProcLimit     int
}

func NewExplicitSolver(cfl float64, procLimit int) *ExplicitSolver {
	if cfl <= 0 {
		cfl = 0.1
	}
	return &ExplicitSolver{
		CFL:           cfl,
		PressureIters: 20,
		ProcLimit:     procLimit,
	}
}

func (es *ExplicitSolver) Advance(t *grid.Tree, mp rheology.MaterialParameters, timeLeft float64) (dt float64) {
	UpdateRheology(t, mp, es.ProcLimit)
	UpdateCurvature(t, es.ProcLimit)

	leaves := t.Leaves()
	dt = es.timeStep(t, mp, leaves)
	if dt > timeLeft {
		dt = timeLeft
	}

	var (
		newF  = make([]float64, len(leaves))
		newUx = make([]float64, len(leaves))
		newUy = make([]float64, len(leaves))
	)
	for k, c := range leaves {
		var (
			l      = c.Level
			delta  = t.Delta(l)
			ux, uy = c.Val[Ux], c.Val[Uy]
			rho    = mp.Rho(filteredFraction(t, c))
		)
		// Upwind advection of the interface and momentum
		newF[k] = rheology.Clamp(
			c.Val[F]-dt*(ux*upwindX(t, F, c, ux, delta)+uy*upwindY(t, F, c, uy, delta)),
			0, 1)
		ax := -ux*upwindX(t, Ux, c, ux, delta) - uy*upwindY(t, Ux, c, uy, delta)
		ay := -ux*upwindX(t, Uy, c, ux, delta) - uy*upwindY(t, Uy, c, uy, delta)

		// Reduced gravity acts on the liquid phase along -x
		ax -= mp.Bond * c.Val[F]

		// Continuum surface force from the curvature field
		gfx, gfy := t.Gradient(F, c)
		ax += mp.Sigma * c.Val[Kappa] * gfx / rho
		ay += mp.Sigma * c.Val[Kappa] * gfy / rho

		// Pressure gradient from the previous relaxation
		gpx, gpy := t.Gradient(P, c)
		ax -= gpx / rho
		ay -= gpy / rho

		// Viscous update as a stability-clamped five-point average. alpha is
		// the explicit diffusion number nu*dt/Delta^2; clamping it at 0.25
		// keeps the unyielded (near-rigid, Mu ~ MuMax) regions stable, where
		// the clamp turns the update into local velocity averaging.
		alpha := c.Val[Mu] * dt / (rho * delta * delta)
		if alpha > 0.25 {
			alpha = 0.25
		}
		uxAvg := 0.25 * (t.Value(Ux, l, c.I+1, c.J) + t.Value(Ux, l, c.I-1, c.J) +
			t.Value(Ux, l, c.I, c.J+1) + t.Value(Ux, l, c.I, c.J-1))
		uyAvg := 0.25 * (t.Value(Uy, l, c.I+1, c.J) + t.Value(Uy, l, c.I-1, c.J) +
			t.Value(Uy, l, c.I, c.J+1) + t.Value(Uy, l, c.I, c.J-1))

		newUx[k] = ux + dt*ax + 4*alpha*(uxAvg-ux)
		newUy[k] = uy + dt*ay + 4*alpha*(uyAvg-uy)
	}
	for k, c := range leaves {
		c.Val[F] = newF[k]
		c.Val[Ux] = newUx[k]
		c.Val[Uy] = newUy[k]
	}
	t.Restrict()

	es.relaxPressure(t, mp, leaves, dt)
	return
}

// timeStep applies the advective and capillary stability restrictions.
func (es *ExplicitSolver) timeStep(t *grid.Tree, mp rheology.MaterialParameters, leaves []*grid.Cell) float64 {
	var (
		dMin = math.Inf(1)
		uMax float64
	)
	for _, c := range leaves {
		if d := t.Delta(c.Level); d < dMin {
			dMin = d
		}
		if u := math.Hypot(c.Val[Ux], c.Val[Uy]); u > uMax {
			uMax = u
		}
	}
	dtCap := math.Sqrt(mp.Rho1 * dMin * dMin * dMin / (math.Pi * mp.Sigma))
	dtAdv := dMin / (uMax + 1e-10)
	return es.CFL * math.Min(dtAdv, dtCap)
}

// relaxPressure runs a few Jacobi sweeps of the variable-density pressure
// equation and projects the velocity with the result. A handful of sweeps is
// enough to suppress the strongest divergence; full elliptic convergence is
// the business of the external multigrid solver this stands in for.
func (es *ExplicitSolver) relaxPressure(t *grid.Tree, mp rheology.MaterialParameters, leaves []*grid.Cell, dt float64) {
	newP := make([]float64, len(leaves))
	for iter := 0; iter < es.PressureIters; iter++ {
		for k, c := range leaves {
			var (
				l     = c.Level
				delta = t.Delta(l)
				rho   = mp.Rho(filteredFraction(t, c))
			)
			div := (t.Value(Ux, l, c.I+1, c.J)-t.Value(Ux, l, c.I-1, c.J))/(2*delta) +
				(t.Value(Uy, l, c.I, c.J+1)-t.Value(Uy, l, c.I, c.J-1))/(2*delta)
			pAvg := 0.25 * (t.Value(P, l, c.I+1, c.J) + t.Value(P, l, c.I-1, c.J) +
				t.Value(P, l, c.I, c.J+1) + t.Value(P, l, c.I, c.J-1))
			newP[k] = pAvg - 0.25*delta*delta*rho*div/dt
		}
		for k, c := range leaves {
			// Outflow boundary holds p = 0 on the right edge
			if c.I == (1<<c.Level)-1 {
				newP[k] = 0
			}
			c.Val[P] = newP[k]
		}
		t.Restrict()
	}
	for _, c := range leaves {
		rho := mp.Rho(filteredFraction(t, c))
		gpx, gpy := t.Gradient(P, c)
		c.Val[Ux] -= dt * gpx / rho
		c.Val[Uy] -= dt * gpy / rho
	}
	t.Restrict()
}

func upwindX(t *grid.Tree, f int, c *grid.Cell, u, delta float64) float64 {
	if u > 0 {
		return (c.Val[f] - t.Value(f, c.Level, c.I-1, c.J)) / delta
	}
	return (t.Value(f, c.Level, c.I+1, c.J) - c.Val[f]) / delta
}

func upwindY(t *grid.Tree, f int, c *grid.Cell, u, delta float64) float64 {
	if u > 0 {
		return (c.Val[f] - t.Value(f, c.Level, c.I, c.J-1)) / delta
	}
	return (t.Value(f, c.Level, c.I, c.J+1) - c.Val[f]) / delta
}
