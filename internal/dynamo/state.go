package dynamo

import "math"

// Particle is the point particle's kinematic state.
type Particle struct {
	X, V float64
}

// Initial describes the seeded row 0.
type Initial struct {
	Position  float64 // particle start
	Velocity  float64 // particle start velocity
	Width     float64 // density bump variance term, exp(-(x-X/2)^2/Width)
	WarmStart bool    // also seed row 1 as a copy of row 0
}

const (
	DefaultPosition      = 20.0
	DefaultSpeedFraction = 0.9
	DefaultWidth         = 200.0
)

func DefaultInitial() Initial {
	return Initial{
		Position: DefaultPosition,
		Velocity: DefaultSpeedFraction * DefaultWaveSpeed,
		Width:    DefaultWidth,
	}
}

// State owns every history buffer of a run plus the particle and the step
// cursor.
type State struct {
	Grid *Grid
	Time *TimeAxis

	Energy     *Field // U
	Density    *Field // rho
	FreqShift  *Field
	Background *Field // V, read-only during integration
	Position   Series

	Particle Particle
	Init     Initial
	Defaults Params // record restored by a reset

	next int
}

// NewState allocates full T×L histories and seeds them. A nil background is
// treated as all zeros.
func NewState(grid *Grid, axis *TimeAxis, init Initial, background *Field) *State {
	rows, cols := axis.Len(), grid.Len()
	if background == nil {
		background = NewField(rows, cols)
	}
	st := &State{
		Grid:       grid,
		Time:       axis,
		Energy:     NewField(rows, cols),
		Density:    NewField(rows, cols),
		FreqShift:  NewField(rows, cols),
		Background: background,
		Position:   make(Series, rows),
		Init:       init,
		Defaults:   DefaultParams(),
	}
	st.seed(DefaultOmega)
	return st
}

// Reseed clears every history and writes the initial condition again. omega
// seeds the frequency-shift row 0.
func (s *State) Reseed(omega float64) {
	s.Energy.Zero()
	s.Density.Zero()
	s.FreqShift.Zero()
	s.Position.Zero()
	s.seed(omega)
}

func (s *State) seed(omega float64) {
	center := s.Grid.Extent() / 2
	rho := s.Density.Row(0)
	for i, x := range s.Grid.X {
		d := x - center
		rho[i] = math.Exp(-d * d / s.Init.Width)
	}
	copy(s.Energy.Row(0), rho)
	s.FreqShift.Fill(0, omega)
	s.Position[0] = s.Init.Position
	s.Particle = Particle{X: s.Init.Position, V: s.Init.Velocity}

	if s.Init.WarmStart && s.Time.Len() > 1 {
		copy(s.Energy.Row(1), s.Energy.Row(0))
		copy(s.Density.Row(1), s.Density.Row(0))
		copy(s.FreqShift.Row(1), s.FreqShift.Row(0))
		s.Position[1] = s.Position[0]
	}
	s.next = 0
}

// Next is the only step index the state will accept.
func (s *State) Next() int { return s.next }

// Done reports whether the time horizon has been reached.
func (s *State) Done() bool { return s.next >= s.Time.Len() }

// Check validates t against the cursor without advancing it.
func (s *State) Check(t int) error {
	if t < 0 || t >= s.Time.Len() || t != s.next {
		return &StepError{Step: t, Expected: s.next, Horizon: s.Time.Len()}
	}
	return nil
}

// Commit marks step t as written.
func (s *State) Commit(t int) { s.next = t + 1 }

// Clone returns a deep copy sharing only the immutable grid, axis and
// background.
func (s *State) Clone() *State {
	c := *s
	c.Energy = s.Energy.Clone()
	c.Density = s.Density.Clone()
	c.FreqShift = s.FreqShift.Clone()
	c.Position = s.Position.Clone()
	return &c
}
