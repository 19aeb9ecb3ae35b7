package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/resonance/internal/dynamo"
	"github.com/san-kum/resonance/internal/integrators"
)

// Stability is the fraction of steps whose max |U| stays below threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(st *dynamo.State, t int) {
	s.samples++
	u := st.Energy.Row(t)
	if math.Max(floats.Max(u), -floats.Min(u)) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Saturation is the fraction of observed field cells pinned on a clamp
// bound, counting U and rho separately. A density of exactly zero counts.
type Saturation struct {
	name   string
	pinned int
	cells  int
}

func NewSaturation() *Saturation {
	return &Saturation{name: "saturation"}
}

func (s *Saturation) Name() string { return s.name }

func (s *Saturation) Observe(st *dynamo.State, t int) {
	u, rho := st.Energy.Row(t), st.Density.Row(t)
	s.pinned += floats.Count(func(v float64) bool {
		return v == integrators.EnergyMin || v == integrators.EnergyMax
	}, u)
	s.pinned += floats.Count(func(v float64) bool {
		return v == integrators.DensityMin || v == integrators.DensityMax
	}, rho)
	s.cells += len(u) + len(rho)
}

func (s *Saturation) Value() float64 {
	if s.cells == 0 {
		return 0
	}
	return float64(s.pinned) / float64(s.cells)
}

func (s *Saturation) Reset() {
	s.pinned = 0
	s.cells = 0
}

// Escapes counts steps whose recorded particle position lies outside the
// grid extent.
type Escapes struct {
	name  string
	count int
}

func NewEscapes() *Escapes {
	return &Escapes{name: "escapes"}
}

func (e *Escapes) Name() string { return e.name }

func (e *Escapes) Observe(st *dynamo.State, t int) {
	x := st.Position[t]
	if x < 0 || x >= st.Grid.Extent() {
		e.count++
	}
}

func (e *Escapes) Value() float64 { return float64(e.count) }
func (e *Escapes) Reset()         { e.count = 0 }
