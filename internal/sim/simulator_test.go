package sim_test

import (
	"context"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/resonance/internal/dynamo"
	"github.com/san-kum/resonance/internal/sim"
)

type countMetric struct {
	count int
	last  int
}

func (c *countMetric) Name() string { return "count" }
func (c *countMetric) Observe(_ *dynamo.State, t int) {
	c.count++
	c.last = t
}
func (c *countMetric) Value() float64 { return float64(c.count) }
func (c *countMetric) Reset()         { c.count, c.last = 0, 0 }

type controllerFunc func(st *dynamo.State, t int, p *dynamo.Params)

func (f controllerFunc) Compute(st *dynamo.State, t int, p *dynamo.Params) { f(st, t, p) }

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("Simulator", func() {
	var (
		st     *dynamo.State
		params dynamo.Params
		s      *sim.Simulator
	)

	BeforeEach(func() {
		st = newState(100, 50, warmInitial())
		params = dynamo.DefaultParams()
		s = sim.New(quiet)
	})

	It("runs to the horizon and reports metrics", func() {
		m := &countMetric{}
		s.AddMetric(m)

		res, err := s.Run(context.Background(), st, &params)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(50))
		Expect(res.Metrics).To(HaveKeyWithValue("count", 50.0))
		Expect(m.last).To(Equal(49))
		Expect(st.Done()).To(BeTrue())
	})

	It("resumes from the cursor", func() {
		_, err := sim.NewStepper().Step(st, &params, 0)
		Expect(err).NotTo(HaveOccurred())

		res, err := s.Run(context.Background(), st, &params)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(49))
	})

	It("notifies observers after each step with the row written", func() {
		var seen []int
		s.AddObserver(sim.ObserverFunc(func(st *dynamo.State, t int) {
			Expect(st.Next()).To(Equal(t + 1))
			seen = append(seen, t)
		}))
		_, err := s.Run(context.Background(), st, &params)
		Expect(err).NotTo(HaveOccurred())
		Expect(seen).To(HaveLen(50))
	})

	It("stops between steps when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		s.AddObserver(sim.ObserverFunc(func(_ *dynamo.State, t int) {
			if t == 9 {
				cancel()
			}
		}))

		res, err := s.Run(ctx, st, &params)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.StepsTaken).To(Equal(10))
		Expect(st.Next()).To(Equal(10))
	})

	It("lets the callback change parameters and stop the run", func() {
		res, err := s.RunWithCallback(context.Background(), st, &params, func(t int, p *dynamo.Params) bool {
			if t == 20 {
				Expect(p.SetParam("kappa", 0.4)).To(Succeed())
			}
			return t < 30
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(30))
		Expect(params.Kappa).To(Equal(0.4))
	})

	It("runs controllers before the callback on every step", func() {
		var order []string
		s.AddController(controllerFunc(func(_ *dynamo.State, t int, p *dynamo.Params) {
			order = append(order, "controller")
			p.Omega = 0.1 * float64(t%5+1)
		}))
		_, err := s.RunWithCallback(context.Background(), st, &params, func(t int, p *dynamo.Params) bool {
			order = append(order, "callback")
			Expect(p.Omega).To(Equal(0.1 * float64(t%5+1)))
			return t < 3
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(order).To(Equal([]string{
			"controller", "callback",
			"controller", "callback",
			"controller", "callback",
			"controller", "callback",
		}))
	})

	It("counts frozen steps", func() {
		init := dynamo.DefaultInitial()
		init.Position = 0
		st = newState(100, 20, init)

		res, err := s.Run(context.Background(), st, &params)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Frozen).To(Equal(18))
	})
})

var _ = Describe("Sweep", func() {
	build := func() (*dynamo.State, dynamo.Params, error) {
		return newState(60, 40, warmInitial()), dynamo.DefaultParams(), nil
	}

	It("runs one simulation per value", func() {
		sw := &sim.Sweep{Param: "alpha", Values: []float64{0.05, 0.1, 0.15}, Workers: 2, Logger: quiet}
		points, err := sw.Run(context.Background(), build, func() []sim.Metric {
			return []sim.Metric{&countMetric{}}
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(points).To(HaveLen(3))
		for i, pt := range points {
			Expect(pt.Value).To(Equal(sw.Values[i]))
			Expect(pt.Params.Alpha).To(Equal(sw.Values[i]))
			Expect(pt.Result.Metrics["count"]).To(Equal(40.0))
		}
	})

	It("rejects unknown parameters", func() {
		sw := &sim.Sweep{Param: "mass", Values: []float64{1}}
		_, err := sw.Run(context.Background(), build, nil)
		Expect(err).To(HaveOccurred())
	})

	It("rejects values outside the parameter's range before running", func() {
		ran := false
		sw := &sim.Sweep{Param: "alpha", Values: []float64{0.1, 0.5, 1.0}, Logger: quiet}
		points, err := sw.Run(context.Background(), func() (*dynamo.State, dynamo.Params, error) {
			ran = true
			return build()
		}, nil)
		Expect(err).To(MatchError(ContainSubstring("alpha=0.5")))
		Expect(points).To(BeNil())
		Expect(ran).To(BeFalse())
	})

	It("matches a sequential run", func() {
		sw := &sim.Sweep{Param: "kappa", Values: []float64{0.3}, Logger: quiet}
		points, err := sw.Run(context.Background(), build, nil)
		Expect(err).NotTo(HaveOccurred())

		st, p, _ := build()
		p.Kappa = 0.3
		_, err = sim.New(quiet).Run(context.Background(), st, &p)
		Expect(err).NotTo(HaveOccurred())
		Expect(points[0].Params).To(Equal(p))
	})
})
