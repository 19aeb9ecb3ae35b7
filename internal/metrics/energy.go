package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/resonance/internal/dynamo"
)

// FieldEnergy is the run average of the spatial mean of U^2.
type FieldEnergy struct {
	name    string
	samples []float64
}

func NewFieldEnergy() *FieldEnergy {
	return &FieldEnergy{name: "field_energy"}
}

func (e *FieldEnergy) Name() string { return e.name }

func (e *FieldEnergy) Observe(st *dynamo.State, t int) {
	u := st.Energy.Row(t)
	e.samples = append(e.samples, floats.Dot(u, u)/float64(len(u)))
}

func (e *FieldEnergy) Value() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	return stat.Mean(e.samples, nil)
}

func (e *FieldEnergy) Reset() { e.samples = e.samples[:0] }

// TotalMass is the integrated density of the latest observed row.
type TotalMass struct {
	name string
	mass float64
}

func NewTotalMass() *TotalMass {
	return &TotalMass{name: "total_mass"}
}

func (m *TotalMass) Name() string { return m.name }

func (m *TotalMass) Observe(st *dynamo.State, t int) {
	m.mass = floats.Sum(st.Density.Row(t)) * st.Grid.Dx
}

func (m *TotalMass) Value() float64 { return m.mass }
func (m *TotalMass) Reset()         { m.mass = 0 }

// FreqSpread is the standard deviation across the grid of the latest
// frequency-shift row.
type FreqSpread struct {
	name   string
	spread float64
}

func NewFreqSpread() *FreqSpread {
	return &FreqSpread{name: "freq_spread"}
}

func (f *FreqSpread) Name() string { return f.name }

func (f *FreqSpread) Observe(st *dynamo.State, t int) {
	f.spread = stat.StdDev(st.FreqShift.Row(t), nil)
}

func (f *FreqSpread) Value() float64 { return f.spread }
func (f *FreqSpread) Reset()         { f.spread = 0 }
