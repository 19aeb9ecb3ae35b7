package sim

import (
	"github.com/san-kum/resonance/internal/dynamo"
	"github.com/san-kum/resonance/internal/integrators"
)

// Stepper advances a state by one time index: field update, particle update,
// then the frequency-shift diagnostic. It keeps only scratch buffers between
// calls; the state and parameters belong to the caller.
type Stepper struct {
	field    *integrators.Field
	particle *integrators.Particle
}

func NewStepper() *Stepper {
	return &Stepper{
		field:    integrators.NewField(),
		particle: integrators.NewParticle(),
	}
}

// Step writes row t of every history. t must equal st.Next(); anything else
// fails with dynamo.ErrOutOfRangeStep and leaves the state untouched. Steps
// 0 and 1 only advance the cursor. moved reports whether the particle
// integrator ran.
func (s *Stepper) Step(st *dynamo.State, p *dynamo.Params, t int) (moved bool, err error) {
	if err := st.Check(t); err != nil {
		return false, err
	}
	if t >= 2 {
		ip := s.field.Step(st, p, t)
		moved = s.particle.Step(st, p, t, ip)
		FrequencyShift(st.FreqShift.Row(t), ip, p)
	}
	st.Commit(t)
	return moved, nil
}

// FrequencyShift writes omega*(1 + kappa*ip/c) into dst.
func FrequencyShift(dst, ip []float64, p *dynamo.Params) {
	for i := range dst {
		dst[i] = p.Omega * (1 + p.Kappa*ip[i]/p.WaveSpeed)
	}
}

// Reset discards every row of st, seeds it again and restores p to the
// state's default parameter record.
func Reset(st *dynamo.State, p *dynamo.Params) {
	*p = st.Defaults
	st.Reseed(p.Omega)
}
