package dynamo

import (
	"fmt"
	"math"
)

// Params is the parameter record read by every step. The caller owns it and
// may change the tunable fields between steps.
type Params struct {
	Alpha float64 // potential amplitude
	Beta  float64 // potential decay
	Kappa float64 // source coupling
	Omega float64 // drive frequency
	Gamma float64 // density-rate force scale

	WaveSpeed  float64
	Wavenumber float64
	RefDensity float64
	Charge     float64
	Mass       float64
}

const (
	DefaultAlpha      = 0.1
	DefaultBeta       = 1e-5
	DefaultKappa      = 0.2
	DefaultOmega      = 0.5
	DefaultGamma      = 0.01
	DefaultWaveSpeed  = 1.0
	DefaultWavenumber = 0.1
	DefaultRefDensity = 1e5
	DefaultCharge     = 1.6e-19
	DefaultMass       = 9.1e-31
)

func DefaultParams() Params {
	return Params{
		Alpha:      DefaultAlpha,
		Beta:       DefaultBeta,
		Kappa:      DefaultKappa,
		Omega:      DefaultOmega,
		Gamma:      DefaultGamma,
		WaveSpeed:  DefaultWaveSpeed,
		Wavenumber: DefaultWavenumber,
		RefDensity: DefaultRefDensity,
		Charge:     DefaultCharge,
		Mass:       DefaultMass,
	}
}

// Range is the allowed interval for a tunable parameter.
type Range struct {
	Min, Max float64
}

func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

func (r Range) Clamp(v float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, v))
}

// Tunable lists the parameters an interactive controller may change, in
// display order.
var Tunable = []string{"alpha", "beta", "kappa", "omega", "gamma"}

// Ranges holds the control-surface limits for each tunable parameter.
var Ranges = map[string]Range{
	"alpha": {0.01, 0.2},
	"beta":  {1e-6, 1e-4},
	"kappa": {0.1, 0.5},
	"omega": {0.1, 1.0},
	"gamma": {0.001, 0.05},
}

func (p *Params) GetParams() map[string]float64 {
	return map[string]float64{
		"alpha": p.Alpha,
		"beta":  p.Beta,
		"kappa": p.Kappa,
		"omega": p.Omega,
		"gamma": p.Gamma,
	}
}

// SetParam sets a tunable parameter by name, clamped to its range.
func (p *Params) SetParam(name string, value float64) error {
	r, ok := Ranges[name]
	if !ok {
		return fmt.Errorf("unknown parameter: %s", name)
	}
	value = r.Clamp(value)
	switch name {
	case "alpha":
		p.Alpha = value
	case "beta":
		p.Beta = value
	case "kappa":
		p.Kappa = value
	case "omega":
		p.Omega = value
	case "gamma":
		p.Gamma = value
	}
	return nil
}
