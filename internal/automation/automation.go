package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/resonance/internal/config"
	"github.com/san-kum/resonance/internal/dynamo"
	"github.com/san-kum/resonance/internal/metrics"
	"github.com/san-kum/resonance/internal/sim"
)

// Scenario is a scripted run: a base configuration plus parameter changes
// applied at fixed step indices.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Events      []Event `yaml:"events"`
}

// Event sets tunable parameters just before step At runs.
type Event struct {
	At  int                `yaml:"at"`
	Set map[string]float64 `yaml:"set"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if s.Preset != "" && config.GetPreset(s.Preset) == nil {
		return fmt.Errorf("unknown preset: %s", s.Preset)
	}
	for i, ev := range s.Events {
		if ev.At < 0 {
			return fmt.Errorf("event %d: negative step %d", i, ev.At)
		}
		for name := range ev.Set {
			if _, ok := dynamo.Ranges[name]; !ok {
				return fmt.Errorf("event %d: unknown parameter: %s", i, name)
			}
		}
	}
	return nil
}

// Config returns the scenario's base configuration.
func (s *Scenario) Config() *config.Config {
	if s.Preset == "" {
		return config.DefaultConfig()
	}
	return config.GetPreset(s.Preset)
}

// Schedule is a sim.Controller that replays scenario events.
type Schedule struct {
	events []Event
	next   int
}

func NewSchedule(events []Event) *Schedule {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].At < sorted[j].At })
	return &Schedule{events: sorted}
}

// Compute applies every event due at or before t that has not run yet, so a
// run resumed past an event still picks it up.
func (s *Schedule) Compute(_ *dynamo.State, t int, p *dynamo.Params) {
	for s.next < len(s.events) && s.events[s.next].At <= t {
		for name, v := range s.events[s.next].Set {
			_ = p.SetParam(name, v)
		}
		s.next++
	}
}

// Rewind makes every event pending again.
func (s *Schedule) Rewind() { s.next = 0 }

// RunScenario builds the scenario's configuration and runs it to the horizon
// with the default metrics.
func RunScenario(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*dynamo.State, dynamo.Params, *sim.Result, error) {
	st, params, err := scenario.Config().Build()
	if err != nil {
		return nil, dynamo.Params{}, nil, err
	}

	s := sim.New(logger)
	for _, m := range metrics.Default() {
		s.AddMetric(m)
	}
	s.AddController(NewSchedule(scenario.Events))

	result, err := s.Run(ctx, st, &params)
	if err != nil {
		return st, params, result, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	return st, params, result, nil
}

// MonteCarloConfig perturbs the initial particle position of a base
// configuration.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64 // uniform half-width around Base.Particle.Position
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID       int
	StartPosition float64
	FinalPosition float64
	Frozen        int
	Stable        bool // |U| stayed under the stability threshold on every step
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, logger *slog.Logger) ([]MonteCarloResult, error) {
	if cfg.Base == nil {
		return nil, fmt.Errorf("monte carlo: no base configuration")
	}
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		trialCfg := *cfg.Base
		trialCfg.Particle.Position += (rng.Float64() - 0.5) * 2 * cfg.Perturbation

		st, params, err := trialCfg.Build()
		if err != nil {
			return nil, err
		}

		stability := metrics.NewStability(metrics.DefaultStabilityThreshold)
		s := sim.New(logger)
		s.AddMetric(stability)

		result, err := s.Run(ctx, st, &params)
		if err != nil {
			return results, err
		}

		results = append(results, MonteCarloResult{
			TrialID:       trial,
			StartPosition: trialCfg.Particle.Position,
			FinalPosition: st.Position[st.Next()-1],
			Frozen:        result.Frozen,
			Stable:        stability.Value() == 1,
		})

		if (trial+1)%10 == 0 {
			logger.Info("monte carlo progress", "done", trial+1, "trials", cfg.NumTrials)
		}
	}

	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
