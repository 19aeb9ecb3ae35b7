package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/resonance/internal/dynamo"
)

func newState(t *testing.T) *dynamo.State {
	t.Helper()
	g, err := dynamo.NewGrid(4, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	a, err := dynamo.NewTimeAxis(3, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	return dynamo.NewState(g, a, dynamo.DefaultInitial(), nil)
}

func TestFieldEnergy(t *testing.T) {
	st := newState(t)
	copy(st.Energy.Row(1), []float64{1, 1, 1, 1})
	copy(st.Energy.Row(2), []float64{2, 2, 2, 2})

	m := NewFieldEnergy()
	m.Observe(st, 1)
	m.Observe(st, 2)

	if m.Value() != 2.5 {
		t.Errorf("expected 2.5, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestTotalMass(t *testing.T) {
	st := newState(t)
	copy(st.Density.Row(2), []float64{1, 2, 3, 4})

	m := NewTotalMass()
	m.Observe(st, 2)
	if m.Value() != 5 {
		t.Errorf("expected 5, got %f", m.Value())
	}
}

func TestFreqSpread(t *testing.T) {
	st := newState(t)

	m := NewFreqSpread()
	m.Observe(st, 0)
	if m.Value() != 0 {
		t.Errorf("uniform seeded row should have zero spread, got %f", m.Value())
	}

	copy(st.FreqShift.Row(1), []float64{1, 2, 3, 4})
	m.Observe(st, 1)
	want := math.Sqrt(5.0 / 3.0)
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, m.Value())
	}
}

func TestStability(t *testing.T) {
	st := newState(t)
	copy(st.Energy.Row(1), []float64{0, -5000, 0, 0})

	s := NewStability(1000)
	s.Observe(st, 0)
	s.Observe(st, 1)

	if s.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", s.Value())
	}

	s.Reset()
	if s.Value() != 1.0 {
		t.Error("expected 1.0 after reset")
	}
}

func TestSaturation(t *testing.T) {
	st := newState(t)
	copy(st.Energy.Row(1), []float64{1e6, -1e6, 0, 1})
	copy(st.Density.Row(1), []float64{0, 1e6, 0.5, 0.5})

	s := NewSaturation()
	s.Observe(st, 1)
	if s.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", s.Value())
	}
}

func TestEscapes(t *testing.T) {
	st := newState(t)
	st.Position[0] = 1
	st.Position[1] = 2.0 // extent is 4*0.5
	st.Position[2] = -0.1

	e := NewEscapes()
	for step := 0; step < 3; step++ {
		e.Observe(st, step)
	}
	if e.Value() != 2 {
		t.Errorf("expected 2 escapes, got %f", e.Value())
	}
}

func TestDefault(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 metrics, got %d", len(seen))
	}
}
