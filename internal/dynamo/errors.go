package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for grid construction and stepping.
var (
	// ErrOutOfRangeStep indicates a step index below zero, past the horizon,
	// or not exactly one past the previous step.
	ErrOutOfRangeStep = errors.New("dynamo: step index out of range")

	// ErrDegenerateGrid indicates a grid too small for the interior stencil.
	ErrDegenerateGrid = errors.New("dynamo: degenerate grid")

	// ErrNonPositiveTimeStep indicates dt <= 0.
	ErrNonPositiveTimeStep = errors.New("dynamo: time step must be positive")
)

// StepError wraps ErrOutOfRangeStep with the offending index.
type StepError struct {
	Step     int
	Expected int
	Horizon  int
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%v: got %d, expected %d (horizon %d)", ErrOutOfRangeStep, e.Step, e.Expected, e.Horizon)
}

func (e *StepError) Unwrap() error {
	return ErrOutOfRangeStep
}
