package sim

// Field indices into grid cell storage. The first five, in this order, are
// the quantities monitored by the refinement policy.
const (
	F     = iota // Liquid volume fraction
	Ux           // Axial velocity
	Uy           // Radial velocity
	D2           // Volume-fraction-masked strain-rate invariant
	Kappa        // Interface curvature
	P            // Pressure
	Mu           // Effective viscosity from the constitutive closure
	Dist         // Signed distance to the initial interface (init only)
	NumFields
)

// FieldNames follows the naming of the monitored fields in the run log.
var FieldNames = [NumFields]string{"f", "u.x", "u.y", "D2", "KAPPA", "p", "mu", "d"}
