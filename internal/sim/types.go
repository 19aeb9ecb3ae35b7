package sim

import (
	"time"

	"github.com/san-kum/resonance/internal/dynamo"
)

// Metric accumulates a scalar summary over the steps of a run.
type Metric interface {
	Name() string
	Observe(st *dynamo.State, t int)
	Value() float64
	Reset()
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(st *dynamo.State, t int)
}

// Controller writes the parameter record before step t runs, the way an
// interactive user or a feedback loop would.
type Controller interface {
	Compute(st *dynamo.State, t int, p *dynamo.Params)
}

type ObserverFunc func(st *dynamo.State, t int)

func (f ObserverFunc) OnStep(st *dynamo.State, t int) { f(st, t) }

type Result struct {
	StepsTaken int
	Frozen     int // steps the particle spent frozen off the interior
	Elapsed    time.Duration
	Metrics    map[string]float64
}
