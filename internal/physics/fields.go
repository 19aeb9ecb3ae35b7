package physics

import "math"

// EField is the pseudo-electric field of a potential value at time t.
func EField(ip, omega, t float64) float64 {
	return ip * math.Sin(omega*t)
}

// BField is the pseudo-magnetic field of a potential value at position x.
func BField(ip, k, x float64) float64 {
	return ip * math.Cos(k*x)
}
