package integrators

import (
	"github.com/san-kum/resonance/internal/dynamo"
	"github.com/san-kum/resonance/internal/physics"
)

// Particle advances the point particle under the Lorentz-like force of the
// potential plus a density-rate feedback term.
type Particle struct{}

func NewParticle() *Particle {
	return &Particle{}
}

// Step updates the particle for step t using rho[t], rho[t-1] and the
// potential ip of the same step, then records the position at t. A particle
// whose cell is not interior is frozen: its position is recorded unchanged.
// It reports whether the particle moved.
//
// Leaving [0, extent) negates the velocity for the next step only; the
// out-of-range position is still recorded for t.
func (pi *Particle) Step(st *dynamo.State, p *dynamo.Params, t int, ip []float64) bool {
	part := &st.Particle
	idx := st.Grid.Cell(part.X)
	if !st.Grid.Interior(idx) || ip == nil {
		st.Position[t] = part.X
		return false
	}

	dt := st.Time.Dt
	e := physics.EField(ip[idx], p.Omega, st.Time.At(t))
	b := physics.BField(ip[idx], p.Wavenumber, st.Grid.X[idx])
	drho := st.Density.At(t, idx) - st.Density.At(t-1, idx)
	force := p.Charge*(e+part.V*b) + p.Gamma*ip[idx]*drho/dt

	part.V += force / p.Mass * dt
	part.V = Clamp(part.V, -p.WaveSpeed, p.WaveSpeed)
	part.X += part.V * dt

	if part.X < 0 || part.X >= st.Grid.Extent() {
		part.V = -part.V
	}
	st.Position[t] = part.X
	return true
}
