package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/resonance/internal/dynamo"
	"github.com/san-kum/resonance/internal/physics"
)

func newState(t testing.TB, points, steps int, dx, dt float64, init dynamo.Initial) *dynamo.State {
	t.Helper()
	g, err := dynamo.NewGrid(points, dx)
	if err != nil {
		t.Fatal(err)
	}
	a, err := dynamo.NewTimeAxis(steps, dt)
	if err != nil {
		t.Fatal(err)
	}
	return dynamo.NewState(g, a, init, physics.DefaultBackground().Field(g, a))
}

func TestLaplacian(t *testing.T) {
	u := []float64{0, 1, 4, 9, 16, 25}
	dst := make([]float64, len(u))
	Laplacian(dst, u, 1)

	if dst[0] != 0 || dst[5] != 0 {
		t.Errorf("boundary laplacian should be zero, got %v", dst)
	}
	for i := 1; i < 5; i++ {
		if dst[i] != 2 {
			t.Errorf("lap[%d] = %f, want 2", i, dst[i])
		}
	}

	Laplacian(dst, u, 0.5)
	if dst[2] != 8 {
		t.Errorf("expected lap 8 with dx=0.5, got %f", dst[2])
	}
}

func TestGradient(t *testing.T) {
	u := []float64{5, 1, 2, 3, 4, 9}
	dst := make([]float64, len(u))
	Gradient(dst, u, 1)

	if dst[0] != 0 || dst[5] != 0 {
		t.Errorf("boundary gradient should be zero, got %v", dst)
	}
	if dst[2] != 1 || dst[3] != 1 {
		t.Errorf("expected unit gradient in the interior, got %v", dst)
	}
	if dst[4] != 3 {
		t.Errorf("expected grad[4]=3, got %f", dst[4])
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{math.Inf(1), -1e6, 1e6, 1e6},
		{math.Inf(-1), -1e6, 1e6, -1e6},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestFieldStep_WarmupIsNoop(t *testing.T) {
	st := newState(t, 100, 10, 1, 0.01, dynamo.DefaultInitial())
	before := st.Clone()
	p := dynamo.DefaultParams()
	f := NewField()

	for step := 0; step < 2; step++ {
		if ip := f.Step(st, &p, step); ip != nil {
			t.Errorf("step %d: expected nil potential during warm-up", step)
		}
	}
	for step := 0; step < 2; step++ {
		for i := 0; i < 100; i++ {
			if st.Energy.At(step, i) != before.Energy.At(step, i) || st.Density.At(step, i) != before.Density.At(step, i) {
				t.Fatalf("row %d mutated during warm-up", step)
			}
		}
	}
}

func TestFieldStep_ConcreteScenario(t *testing.T) {
	st := newState(t, 100, 200, 1, 0.01, dynamo.DefaultInitial())
	p := dynamo.DefaultParams()
	f := NewField()

	ip := f.Step(st, &p, 2)
	if len(ip) != 100 {
		t.Fatalf("expected potential of length 100, got %d", len(ip))
	}

	for i := 0; i < 100; i++ {
		u, rho := st.Energy.At(2, i), st.Density.At(2, i)
		if rho < 0 {
			t.Errorf("rho[2][%d] = %g, want >= 0", i, rho)
		}
		if math.IsNaN(u) || math.IsInf(u, 0) || u < EnergyMin || u > EnergyMax {
			t.Errorf("U[2][%d] = %g not finite within bounds", i, u)
		}
		// Row 1 is zero, so the potential vanishes and the wave update
		// reduces to U[2] = -U[0].
		if u != -st.Energy.At(0, i) {
			t.Errorf("U[2][%d] = %g, want %g", i, u, -st.Energy.At(0, i))
		}
	}
}

func TestFieldStep_WarmStartDrivesDensity(t *testing.T) {
	init := dynamo.DefaultInitial()
	init.WarmStart = true
	st := newState(t, 100, 200, 1, 0.01, init)
	p := dynamo.DefaultParams()
	f := NewField()

	ip := f.Step(st, &p, 2)

	nonzero := 0
	for i := 0; i < 100; i++ {
		if ip[i] != 0 {
			nonzero++
		}
		want := Clamp(st.Density.At(1, i)+0.01*ip[i], DensityMin, DensityMax)
		if st.Density.At(2, i) != want {
			t.Errorf("rho[2][%d] = %g, want %g", i, st.Density.At(2, i), want)
		}
	}
	if nonzero == 0 {
		t.Error("expected a non-zero potential from the seeded density gradient")
	}
	if ip[0] != 0 || ip[99] != 0 {
		t.Error("boundary gradient is zero so the boundary potential must be zero")
	}
}

func TestFieldStep_Clamps(t *testing.T) {
	st := newState(t, 10, 5, 1, 0.01, dynamo.DefaultInitial())
	p := dynamo.DefaultParams()
	f := NewField()

	st.Energy.Fill(1, 9e5)
	st.Energy.Fill(0, -9e5)
	st.Density.Fill(1, 1e6)
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			st.Density.Row(1)[i] = 0
		}
	}

	f.Step(st, &p, 2)

	for i := 0; i < 10; i++ {
		u, rho := st.Energy.At(2, i), st.Density.At(2, i)
		if u < EnergyMin || u > EnergyMax {
			t.Errorf("U[2][%d] = %g outside clamp range", i, u)
		}
		if rho < DensityMin || rho > DensityMax {
			t.Errorf("rho[2][%d] = %g outside clamp range", i, rho)
		}
	}
	if st.Energy.At(2, 0) != EnergyMax {
		t.Errorf("expected U[2][0] saturated at %g, got %g", EnergyMax, st.Energy.At(2, 0))
	}
}

func BenchmarkFieldStep(b *testing.B) {
	init := dynamo.DefaultInitial()
	init.WarmStart = true
	st := newState(b, 100, 3, 1, 0.01, init)
	p := dynamo.DefaultParams()
	f := NewField()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Step(st, &p, 2)
	}
}
