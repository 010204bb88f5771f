package rheology

import "math"

// StrainRate is the symmetric rate-of-deformation tensor in axisymmetric
// coordinates, x axial and y radial. D22 is the azimuthal (hoop) component
// uy/y generated by the off-axis radial motion.
type StrainRate struct {
	D11 float64 // dyy: radial gradient of radial velocity
	D22 float64 // hoop: uy / y
	D33 float64 // dxx: axial gradient of axial velocity
	D13 float64 // shear: 0.5*(dyx + dxy)
}

// NewStrainRate assembles the tensor from one-sided velocity samples around a
// cell of size delta at radius y: uxE/uxW are axial velocity at x +/- delta,
// uxN/uxS at y +/- delta, and likewise uyE/uyW/uyN/uyS for radial velocity.
func NewStrainRate(delta, y,
	uxE, uxW, uxN, uxS,
	uyE, uyW, uyN, uyS, uy float64) (d StrainRate) {
	d = StrainRate{
		D11: (uyN - uyS) / (2 * delta),
		D33: (uxE - uxW) / (2 * delta),
		D13: 0.5 * ((uyE - uyW) + (uxN - uxS)) / (2 * delta),
	}
	if y != 0 {
		d.D22 = uy / y
	}
	return
}

// SecondInvariant returns the scalar magnitude D = sqrt(tr(D.D)/2), the
// nonnegative invariant that drives the constitutive law.
func (d StrainRate) SecondInvariant() float64 {
	return math.Sqrt(0.5 * (d.D11*d.D11 + d.D22*d.D22 + d.D33*d.D33 + 2.*d.D13*d.D13))
}
