package physics

import (
	"math"

	"github.com/san-kum/resonance/internal/dynamo"
)

// Background describes the static external potential V as two Gaussian
// bumps, one centred at X/2 and one at X/3 where X is the grid extent.
type Background struct {
	Amplitude1 float64 `yaml:"amplitude1"`
	Width1     float64 `yaml:"width1"`
	Amplitude2 float64 `yaml:"amplitude2"`
	Width2     float64 `yaml:"width2"`
}

func DefaultBackground() Background {
	return Background{Amplitude1: 1, Width1: 200, Amplitude2: 1e5, Width2: 10}
}

// Profile evaluates V over the grid.
func (b Background) Profile(g *dynamo.Grid) []float64 {
	c1, c2 := g.Extent()/2, g.Extent()/3
	v := make([]float64, g.Len())
	for i, x := range g.X {
		d1, d2 := x-c1, x-c2
		v[i] = b.Amplitude1*math.Exp(-d1*d1/b.Width1) + b.Amplitude2*math.Exp(-d2*d2/b.Width2)
	}
	return v
}

// Field precomputes V for every time row. The profile does not depend on
// time, so every row is identical.
func (b Background) Field(g *dynamo.Grid, a *dynamo.TimeAxis) *dynamo.Field {
	f := dynamo.NewField(a.Len(), g.Len())
	profile := b.Profile(g)
	for t := 0; t < a.Len(); t++ {
		copy(f.Row(t), profile)
	}
	return f
}
