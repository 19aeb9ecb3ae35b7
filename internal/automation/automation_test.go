package automation

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/resonance/internal/config"
	"github.com/san-kum/resonance/internal/dynamo"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const scenarioYAML = `
name: chirp
description: raise the drive frequency halfway through
preset: warm
events:
  - at: 50
    set:
      omega: 0.9
  - at: 10
    set:
      kappa: 0.4
      gamma: 0.02
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Name != "chirp" || len(s.Events) != 2 {
		t.Fatalf("unexpected scenario %+v", s)
	}
	if !s.Config().WarmStart {
		t.Error("expected warm preset as base")
	}
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown param", "events:\n  - at: 3\n    set: {mass: 1}\n"},
		{"negative step", "events:\n  - at: -1\n    set: {omega: 0.2}\n"},
		{"unknown preset", "preset: nope\n"},
		{"bad yaml", "events: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadScenario(writeScenario(t, tt.body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSchedule(t *testing.T) {
	sched := NewSchedule([]Event{
		{At: 5, Set: map[string]float64{"omega": 0.9}},
		{At: 2, Set: map[string]float64{"alpha": 5}},
	})
	p := dynamo.DefaultParams()

	sched.Compute(nil, 1, &p)
	if p != dynamo.DefaultParams() {
		t.Fatal("no event is due at step 1")
	}
	sched.Compute(nil, 2, &p)
	if p.Alpha != dynamo.Ranges["alpha"].Max {
		t.Errorf("expected alpha clamped to its range, got %v", p.Alpha)
	}

	// jumping past an event still applies it
	sched.Compute(nil, 7, &p)
	if p.Omega != 0.9 {
		t.Errorf("expected omega 0.9, got %v", p.Omega)
	}

	p = dynamo.DefaultParams()
	sched.Compute(nil, 8, &p)
	if p != dynamo.DefaultParams() {
		t.Error("events must fire once")
	}
	sched.Rewind()
	sched.Compute(nil, 8, &p)
	if p.Omega != 0.9 {
		t.Error("rewind should make events pending again")
	}
}

func TestRunScenario(t *testing.T) {
	s, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	st, params, res, err := RunScenario(context.Background(), s, quiet)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !st.Done() || res.StepsTaken != config.DefaultSteps {
		t.Errorf("expected full run, got %d steps", res.StepsTaken)
	}
	if params.Omega != 0.9 || params.Kappa != 0.4 || params.Gamma != 0.02 {
		t.Errorf("events not applied: %+v", params)
	}

	if st.FreqShift.At(0, 0) != dynamo.DefaultOmega {
		t.Errorf("seed row should keep the starting frequency, got %v", st.FreqShift.At(0, 0))
	}
	if _, ok := res.Metrics["field_energy"]; !ok {
		t.Error("expected default metrics")
	}
}

func TestRunMonteCarlo(t *testing.T) {
	base := config.GetPreset("warm")
	base.Time.Steps = 30

	cfg := &MonteCarloConfig{Base: base, Perturbation: 5, NumTrials: 6, Seed: 7}
	results, err := RunMonteCarlo(context.Background(), cfg, quiet)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 6 {
		t.Fatalf("expected 6 trials, got %d", len(results))
	}
	for _, r := range results {
		if r.StartPosition < 15 || r.StartPosition > 25 {
			t.Errorf("trial %d start %v outside perturbation band", r.TrialID, r.StartPosition)
		}
	}

	again, err := RunMonteCarlo(context.Background(), cfg, quiet)
	if err != nil {
		t.Fatal(err)
	}
	for i := range results {
		if results[i] != again[i] {
			t.Errorf("trial %d not reproducible with a fixed seed", i)
		}
	}

	stable, unstable := MonteCarloStats(results)
	if stable+unstable != 6 {
		t.Errorf("stats do not cover all trials: %d + %d", stable, unstable)
	}
	if base.Particle.Position != dynamo.DefaultPosition {
		t.Error("base configuration was modified")
	}
}
