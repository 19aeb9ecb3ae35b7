package physics

import "math"

// PotentialParams are the coefficients of the interaction potential.
type PotentialParams struct {
	Alpha, Beta, Omega, Wavenumber, RefDensity float64
}

// Potential writes the interaction potential for one time slice into dst:
//
//	phase_i = omega*t + k*x_i
//	ip_i    = alpha * |grad_i| * exp(-beta*rho_i/rho0) * cos(phase_i)
//
// rho, grad, x and dst must have the same length.
func Potential(dst, rho, grad, x []float64, t float64, p PotentialParams) {
	for i := range dst {
		phase := p.Omega*t + p.Wavenumber*x[i]
		dst[i] = p.Alpha * math.Abs(grad[i]) * math.Exp(-p.Beta*rho[i]/p.RefDensity) * math.Cos(phase)
	}
}
