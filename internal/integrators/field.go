package integrators

import (
	"math"

	"github.com/san-kum/resonance/internal/dynamo"
	"github.com/san-kum/resonance/internal/physics"
)

// Saturation bounds applied after every field update. They keep the scheme
// bounded for large couplings; reaching them is silent.
const (
	EnergyMin  = -1e6
	EnergyMax  = 1e6
	DensityMin = 0.0
	DensityMax = 1e6
)

// Field advances the energy density with a leapfrog wave update and the mass
// density with an explicit Euler update driven by the interaction potential.
type Field struct {
	lap  []float64
	grad []float64
	ip   []float64
}

func NewField() *Field {
	return &Field{}
}

func (f *Field) ensureScratch(n int) {
	if len(f.ip) != n {
		f.lap = make([]float64, n)
		f.grad = make([]float64, n)
		f.ip = make([]float64, n)
	}
}

// Step writes U[t] and rho[t] from rows t-1 and t-2 and returns the
// interaction potential of the step. The returned slice is scratch owned by f
// and is overwritten by the next call. For t < 2 nothing is written and nil is
// returned.
func (f *Field) Step(st *dynamo.State, p *dynamo.Params, t int) []float64 {
	if t < 2 {
		return nil
	}
	x := st.Grid.X
	n := len(x)
	f.ensureScratch(n)

	dt := st.Time.Dt
	tt := st.Time.At(t)

	uPrev, uPrev2 := st.Energy.Row(t-1), st.Energy.Row(t-2)
	rhoPrev := st.Density.Row(t - 1)
	vPrev := st.Background.Row(t - 1)

	Laplacian(f.lap, uPrev, st.Grid.Dx)
	Gradient(f.grad, rhoPrev, st.Grid.Dx)
	physics.Potential(f.ip, rhoPrev, f.grad, x, tt, physics.PotentialParams{
		Alpha:      p.Alpha,
		Beta:       p.Beta,
		Omega:      p.Omega,
		Wavenumber: p.Wavenumber,
		RefDensity: p.RefDensity,
	})

	u, rho := st.Energy.Row(t), st.Density.Row(t)
	c2, dt2 := p.WaveSpeed*p.WaveSpeed, dt*dt
	for i := 0; i < n; i++ {
		source := p.Kappa * f.ip[i] * math.Sin(p.Omega*tt+p.Wavenumber*x[i])
		u[i] = 2*uPrev[i] - uPrev2[i] + dt2*(c2*f.lap[i]-rhoPrev[i]*vPrev[i]+source)
		u[i] = Clamp(u[i], EnergyMin, EnergyMax)

		rho[i] = rhoPrev[i] + dt*f.ip[i]
		rho[i] = Clamp(rho[i], DensityMin, DensityMax)
	}
	return f.ip
}

// Laplacian writes the centred second difference of u into dst. The two
// boundary points get zero.
func Laplacian(dst, u []float64, dx float64) {
	n := len(u)
	dst[0], dst[n-1] = 0, 0
	h2 := dx * dx
	for i := 1; i < n-1; i++ {
		dst[i] = (u[i+1] - 2*u[i] + u[i-1]) / h2
	}
}

// Gradient writes the centred first difference of u into dst. The two
// boundary points get zero.
func Gradient(dst, u []float64, dx float64) {
	n := len(u)
	dst[0], dst[n-1] = 0, 0
	for i := 1; i < n-1; i++ {
		dst[i] = (u[i+1] - u[i-1]) / (2 * dx)
	}
}

// Clamp saturates v to [lo, hi]. NaN passes through unchanged.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
