// Package metrics provides run summaries that plug into sim.Simulator.
package metrics

import "github.com/san-kum/resonance/internal/sim"

// DefaultStabilityThreshold is the |U| level the stability metric treats as
// a violation.
const DefaultStabilityThreshold = 1e3

// Default returns fresh instances of every metric.
func Default() []sim.Metric {
	return []sim.Metric{
		NewFieldEnergy(),
		NewTotalMass(),
		NewFreqSpread(),
		NewStability(DefaultStabilityThreshold),
		NewSaturation(),
		NewEscapes(),
	}
}
