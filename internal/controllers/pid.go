package controllers

import (
	"fmt"

	"github.com/san-kum/resonance/internal/dynamo"
)

// PID drives the particle position toward Target by moving one tunable
// parameter around the value it had when the controller first ran. The
// parameter stays inside its control range.
type PID struct {
	Param  string
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64

	base     float64
	integral float64
	prevErr  float64
	first    bool
}

// NewPID fails when param is not a tunable parameter.
func NewPID(param string, kp, ki, kd, target float64) (*PID, error) {
	if _, ok := dynamo.Ranges[param]; !ok {
		return nil, fmt.Errorf("pid: unknown parameter: %s", param)
	}
	return &PID{
		Param:  param,
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}, nil
}

// Compute measures the last recorded position (row t-1) and writes the
// parameter for step t.
func (c *PID) Compute(st *dynamo.State, t int, p *dynamo.Params) {
	if t < 1 {
		return
	}
	err := c.Target - st.Position[t-1]

	if c.first {
		c.base = p.GetParams()[c.Param]
		c.prevErr = err
		c.first = false
		_ = p.SetParam(c.Param, c.base+c.Kp*err)
		return
	}

	dt := st.Time.Dt
	c.integral += err * dt
	derivative := (err - c.prevErr) / dt
	c.prevErr = err

	u := c.Kp*err + c.Ki*c.integral + c.Kd*derivative
	_ = p.SetParam(c.Param, c.base+u)
}

// Reset forgets the integral and the captured base value.
func (c *PID) Reset() {
	c.integral, c.prevErr, c.base = 0, 0, 0
	c.first = true
}
