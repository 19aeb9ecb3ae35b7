package sim

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/resonance/internal/dynamo"
)

// SweepPoint is the outcome of one run in a sweep.
type SweepPoint struct {
	Value  float64
	Params dynamo.Params
	Result *Result
}

// Sweep runs one independent simulation per value of a tunable parameter.
// build returns a fresh state and parameter record for each run; metrics
// returns fresh metric instances. Runs share nothing and execute
// concurrently.
type Sweep struct {
	Param   string
	Values  []float64
	Workers int
	Logger  *slog.Logger
}

func (sw *Sweep) Run(
	ctx context.Context,
	build func() (*dynamo.State, dynamo.Params, error),
	metrics func() []Metric,
) ([]SweepPoint, error) {
	r, ok := dynamo.Ranges[sw.Param]
	if !ok {
		return nil, fmt.Errorf("unknown parameter: %s", sw.Param)
	}
	for _, v := range sw.Values {
		if !r.Contains(v) {
			return nil, fmt.Errorf("%s=%g outside [%g, %g]", sw.Param, v, r.Min, r.Max)
		}
	}
	logger := sw.Logger
	if logger == nil {
		logger = slog.Default()
	}

	points := make([]SweepPoint, len(sw.Values))
	g, ctx := errgroup.WithContext(ctx)
	if sw.Workers > 0 {
		g.SetLimit(sw.Workers)
	}

	for i, v := range sw.Values {
		i, v := i, v
		g.Go(func() error {
			st, p, err := build()
			if err != nil {
				return err
			}
			if err := p.SetParam(sw.Param, v); err != nil {
				return err
			}

			s := New(logger.With(sw.Param, v))
			if metrics != nil {
				for _, m := range metrics() {
					s.AddMetric(m)
				}
			}
			res, err := s.Run(ctx, st, &p)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sw.Param, v, err)
			}
			points[i] = SweepPoint{Value: v, Params: p, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return points, nil
}
