package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/san-kum/resonance/internal/dynamo"
)

// Simulator drives a Stepper over the remaining steps of a state, feeding
// metrics and observers after every step.
type Simulator struct {
	stepper     *Stepper
	metrics     []Metric
	observers   []Observer
	controllers []Controller
	logger      *slog.Logger
}

func New(logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		stepper:   NewStepper(),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    logger,
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// AddController registers c to run before every step, in registration order.
func (s *Simulator) AddController(c Controller) { s.controllers = append(s.controllers, c) }

// Run steps st from its cursor to the horizon with a fixed parameter record.
// Cancellation is checked between steps; a canceled run returns the partial
// result together with ctx.Err().
func (s *Simulator) Run(ctx context.Context, st *dynamo.State, p *dynamo.Params) (*Result, error) {
	return s.RunWithCallback(ctx, st, p, nil)
}

// RunWithCallback is Run with a hook invoked before each step, after the
// registered controllers. The hook may change *p for the coming step, and
// stops the run by returning false.
func (s *Simulator) RunWithCallback(ctx context.Context, st *dynamo.State, p *dynamo.Params, before func(t int, p *dynamo.Params) bool) (*Result, error) {
	result := &Result{Metrics: make(map[string]float64)}
	for _, m := range s.metrics {
		m.Reset()
	}

	start := time.Now()
	s.logger.Info("run started",
		"from", st.Next(),
		"horizon", st.Time.Len(),
		"points", st.Grid.Len(),
		"dt", st.Time.Dt,
	)

	var runErr error
	for !st.Done() {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		t := st.Next()
		for _, c := range s.controllers {
			c.Compute(st, t, p)
		}
		if before != nil && !before(t, p) {
			break
		}

		moved, err := s.stepper.Step(st, p, t)
		if err != nil {
			runErr = err
			break
		}
		result.StepsTaken++
		if t >= 2 && !moved {
			result.Frozen++
			s.logger.Debug("particle frozen", "step", t, "position", st.Particle.X)
		}

		for _, m := range s.metrics {
			m.Observe(st, t)
		}
		for _, o := range s.observers {
			o.OnStep(st, t)
		}
	}

	result.Elapsed = time.Since(start)
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Info("run finished",
		"steps", result.StepsTaken,
		"frozen", result.Frozen,
		"elapsed", result.Elapsed,
		"err", runErr,
	)
	return result, runErr
}
