package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/resonance/internal/config"
	"github.com/san-kum/resonance/internal/dynamo"
	"github.com/san-kum/resonance/internal/sim"
)

// Experiment is one configured run: a built state, its parameter record and
// a simulator with metrics and controllers attached.
type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
	state     *dynamo.State
	params    dynamo.Params
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(logger *slog.Logger, metrics []sim.Metric, controllers ...sim.Controller) error {
	st, params, err := e.cfg.Build()
	if err != nil {
		return err
	}
	e.state, e.params = st, params

	e.simulator = sim.New(logger)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	for _, c := range controllers {
		e.simulator.AddController(c)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.state, &e.params)
}

// SetParam changes a tunable parameter of the record the run will use.
func (e *Experiment) SetParam(name string, value float64) error {
	return e.params.SetParam(name, value)
}

func (e *Experiment) Config() *config.Config { return e.cfg }
func (e *Experiment) State() *dynamo.State   { return e.state }
func (e *Experiment) Params() dynamo.Params  { return e.params }

// GetSimulator returns the simulator built by Setup, for attaching observers.
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
