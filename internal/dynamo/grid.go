package dynamo

import (
	"fmt"
	"math"
)

// Grid is the fixed 1-D spatial grid, x_i = i*dx.
type Grid struct {
	X  []float64
	Dx float64
}

func NewGrid(points int, dx float64) (*Grid, error) {
	if points < 3 {
		return nil, fmt.Errorf("%w: %d points, need at least 3", ErrDegenerateGrid, points)
	}
	if dx <= 0 {
		return nil, fmt.Errorf("%w: dx=%g", ErrDegenerateGrid, dx)
	}
	x := make([]float64, points)
	for i := range x {
		x[i] = float64(i) * dx
	}
	return &Grid{X: x, Dx: dx}, nil
}

func (g *Grid) Len() int { return len(g.X) }

// Extent is the physical length of the grid, L*dx.
func (g *Grid) Extent() float64 { return float64(len(g.X)) * g.Dx }

// Cell returns the nearest grid index for a position. The result may lie
// outside [0, L).
func (g *Grid) Cell(pos float64) int {
	return int(math.RoundToEven(pos / g.Dx))
}

// Interior reports whether i has both stencil neighbours.
func (g *Grid) Interior(i int) bool {
	return i >= 1 && i <= len(g.X)-2
}

// TimeAxis is the fixed time axis, t_i = i*dt.
type TimeAxis struct {
	Dt    float64
	steps int
}

func NewTimeAxis(steps int, dt float64) (*TimeAxis, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w: dt=%g", ErrNonPositiveTimeStep, dt)
	}
	if steps < 1 {
		return nil, fmt.Errorf("%w: %d time steps", ErrDegenerateGrid, steps)
	}
	return &TimeAxis{Dt: dt, steps: steps}, nil
}

func (a *TimeAxis) Len() int { return a.steps }

// At returns the time coordinate of index i.
func (a *TimeAxis) At(i int) float64 { return float64(i) * a.Dt }

// Times returns the coordinates of indices [0, n).
func (a *TimeAxis) Times(n int) []float64 {
	if n > a.steps {
		n = a.steps
	}
	ts := make([]float64, n)
	for i := range ts {
		ts[i] = a.At(i)
	}
	return ts
}
