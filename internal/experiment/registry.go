package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/resonance/internal/controllers"
	"github.com/san-kum/resonance/internal/metrics"
	"github.com/san-kum/resonance/internal/sim"
)

// Registry resolves metric and controller names used on the command line.
type Registry struct {
	metrics     map[string]func() sim.Metric
	controllers map[string]func(map[string]float64, string) (sim.Controller, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics:     make(map[string]func() sim.Metric),
		controllers: make(map[string]func(map[string]float64, string) (sim.Controller, error)),
	}

	r.metrics["field_energy"] = func() sim.Metric { return metrics.NewFieldEnergy() }
	r.metrics["total_mass"] = func() sim.Metric { return metrics.NewTotalMass() }
	r.metrics["freq_spread"] = func() sim.Metric { return metrics.NewFreqSpread() }
	r.metrics["stability"] = func() sim.Metric { return metrics.NewStability(metrics.DefaultStabilityThreshold) }
	r.metrics["saturation"] = func() sim.Metric { return metrics.NewSaturation() }
	r.metrics["escapes"] = func() sim.Metric { return metrics.NewEscapes() }

	r.controllers["none"] = func(map[string]float64, string) (sim.Controller, error) {
		return controllers.NewNone(), nil
	}
	r.controllers["pid"] = func(params map[string]float64, param string) (sim.Controller, error) {
		if param == "" {
			param = "omega"
		}
		pid, err := controllers.NewPID(param, params["kp"], params["ki"], params["kd"], params["target"])
		if err != nil {
			return nil, err
		}
		return pid, nil
	}

	return r
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

// GetController builds a controller. param names the tunable parameter a
// feedback controller acts on.
func (r *Registry) GetController(name string, params map[string]float64, param string) (sim.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(params, param)
}

func (r *Registry) ListMetrics() []string     { return sortedKeys(r.metrics) }
func (r *Registry) ListControllers() []string { return sortedKeys(r.controllers) }

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	names := r.ListMetrics()
	out := make([]sim.Metric, len(names))
	for i, name := range names {
		out[i] = r.metrics[name]()
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
