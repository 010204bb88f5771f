package rheology

import "math"

// MaterialParameters holds the per-run fluid properties in dimensionless form.
// Lengths are scaled by the initial bubble radius R0, stresses by gamma/R0 and
// time by the inertio-capillary time, so the liquid consistency is the
// k-effective Ohnesorge number OhK and the yield stress is the
// plasto-capillary number J. Built once at startup and read-only afterwards.
type MaterialParameters struct {
	N       float64 // Power-law index, shear thinning when N < 1
	OhK     float64 // Consistency (k-effective Ohnesorge number), liquid phase
	J       float64 // Plasto-capillary number -> yield stress TauY
	Bond    float64 // Bond number, gravity along -x
	Epsilon float64 // Regularization strain-rate floor
	TauY    float64 // Yield stress, equals J in capillary units
	Oha     float64 // Gas phase Ohnesorge number
	Rho1    float64 // Liquid density
	Rho2    float64 // Gas density
	Mu2     float64 // Gas viscosity (Newtonian)
	Sigma   float64 // Surface tension coefficient
	MuMax   float64 // Regularization ceiling on the effective viscosity
}

// Default regularization constants matching the production runs.
const (
	DefaultEpsilon = 1e-2
	DefaultMuMax   = 1e8
)

// NewMaterialParameters fills in the derived quantities from the four
// dimensionless groups controlling the problem. The gas phase is kept
// Newtonian with Oha = 2e-2 * OhK and a density ratio of 1e-3.
func NewMaterialParameters(n, OhK, J, Bond float64) (mp MaterialParameters) {
	mp = MaterialParameters{
		N:       n,
		OhK:     OhK,
		J:       J,
		Bond:    Bond,
		Epsilon: DefaultEpsilon,
		TauY:    J,
		Oha:     2e-2 * OhK,
		Rho1:    1.,
		Rho2:    1e-3,
		Sigma:   1.,
		MuMax:   DefaultMuMax,
	}
	mp.Mu2 = mp.Oha
	return
}

// LiquidViscosity evaluates the epsilon-regularized Herschel-Bulkley law
//
//	mu(D) = TauY * (1 - exp(-D/Epsilon))/D + OhK * D^(N-1)
//
// for the second-invariant strain-rate magnitude D >= 0. The exponential
// factor removes the yield-stress singularity: as D -> 0 the first term tends
// to TauY/Epsilon rather than diverging, and the whole expression is capped
// by MuMax so the unyielded material behaves as a very viscous, but finite,
// near-solid. The regularized form is evaluated unconditionally so the
// function is smooth for all D, not just branched near zero.
func (mp MaterialParameters) LiquidViscosity(D float64) (mu float64) {
	mu = mp.TauY*regularizedYieldFactor(D, mp.Epsilon) + mp.OhK*math.Pow(D, mp.N-1)
	if mu > mp.MuMax {
		mu = mp.MuMax
	}
	return
}

// regularizedYieldFactor computes (1 - exp(-D/eps))/D. Below a tiny threshold
// the ratio is replaced by its two-term Taylor expansion 1/eps - D/(2 eps^2),
// which agrees with the exact value to double precision there, so the
// function stays smooth through D = 0.
func regularizedYieldFactor(D, eps float64) float64 {
	if D < 1e-8*eps {
		return (1. - 0.5*D/eps) / eps
	}
	return -math.Expm1(-D/eps) / D
}

// Viscosity blends the liquid Herschel-Bulkley viscosity with the constant
// gas viscosity using the arithmetic volume-fraction rule of the two-phase
// model, mu = f*(mu1 - mu2) + mu2 with f clamped to [0,1].
func (mp MaterialParameters) Viscosity(D, f float64) float64 {
	f = Clamp(f, 0, 1)
	return f*(mp.LiquidViscosity(D)-mp.Mu2) + mp.Mu2
}

// Rho returns the volume-fraction blended density.
func (mp MaterialParameters) Rho(f float64) float64 {
	f = Clamp(f, 0, 1)
	return f*(mp.Rho1-mp.Rho2) + mp.Rho2
}

func Clamp(x, lo, hi float64) float64 {
	switch {
	case x < lo:
		return lo
	case x > hi:
		return hi
	}
	return x
}
