package sim_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/resonance/internal/dynamo"
	"github.com/san-kum/resonance/internal/integrators"
	"github.com/san-kum/resonance/internal/physics"
	"github.com/san-kum/resonance/internal/sim"
)

func newState(points, steps int, init dynamo.Initial) *dynamo.State {
	g, err := dynamo.NewGrid(points, 1)
	Expect(err).NotTo(HaveOccurred())
	a, err := dynamo.NewTimeAxis(steps, 0.01)
	Expect(err).NotTo(HaveOccurred())
	return dynamo.NewState(g, a, init, physics.DefaultBackground().Field(g, a))
}

func stepTo(s *sim.Stepper, st *dynamo.State, p *dynamo.Params, n int) {
	for t := st.Next(); t < n; t++ {
		_, err := s.Step(st, p, t)
		Expect(err).NotTo(HaveOccurred())
	}
}

func warmInitial() dynamo.Initial {
	init := dynamo.DefaultInitial()
	init.WarmStart = true
	return init
}

var _ = Describe("Stepper", func() {
	var (
		st      *dynamo.State
		params  dynamo.Params
		stepper *sim.Stepper
	)

	BeforeEach(func() {
		st = newState(100, 200, dynamo.DefaultInitial())
		params = dynamo.DefaultParams()
		stepper = sim.NewStepper()
	})

	Describe("step ordering", func() {
		It("accepts steps strictly in order", func() {
			stepTo(stepper, st, &params, 5)
			Expect(st.Next()).To(Equal(5))
		})

		It("rejects a skipped step without touching the state", func() {
			_, err := stepper.Step(st, &params, 1)
			Expect(err).To(MatchError(dynamo.ErrOutOfRangeStep))
			Expect(st.Next()).To(Equal(0))
		})

		It("rejects a repeated step", func() {
			stepTo(stepper, st, &params, 3)
			_, err := stepper.Step(st, &params, 2)
			Expect(err).To(MatchError(dynamo.ErrOutOfRangeStep))
		})

		It("rejects negative steps", func() {
			_, err := stepper.Step(st, &params, -1)
			Expect(err).To(MatchError(dynamo.ErrOutOfRangeStep))
		})

		It("stops at the horizon", func() {
			stepTo(stepper, st, &params, 200)
			Expect(st.Done()).To(BeTrue())
			_, err := stepper.Step(st, &params, 200)
			var se *dynamo.StepError
			Expect(err).To(BeAssignableToTypeOf(se))
			Expect(err).To(MatchError(dynamo.ErrOutOfRangeStep))
		})
	})

	Describe("warm-up", func() {
		It("leaves rows 0 and 1 exactly as seeded", func() {
			seeded := st.Clone()
			stepTo(stepper, st, &params, 2)
			for t := 0; t < 2; t++ {
				Expect(st.Energy.Row(t)).To(Equal(seeded.Energy.Row(t)))
				Expect(st.Density.Row(t)).To(Equal(seeded.Density.Row(t)))
				Expect(st.FreqShift.Row(t)).To(Equal(seeded.FreqShift.Row(t)))
				Expect(st.Position[t]).To(Equal(seeded.Position[t]))
			}
			Expect(st.Particle).To(Equal(seeded.Particle))
		})
	})

	Describe("concrete scenario", func() {
		It("keeps rho[2] non-negative and U[2] finite within bounds", func() {
			stepTo(stepper, st, &params, 3)
			for i := 0; i < 100; i++ {
				Expect(st.Density.At(2, i)).To(BeNumerically(">=", 0))
				u := st.Energy.At(2, i)
				Expect(math.IsNaN(u) || math.IsInf(u, 0)).To(BeFalse())
				Expect(u).To(BeNumerically(">=", integrators.EnergyMin))
				Expect(u).To(BeNumerically("<=", integrators.EnergyMax))
			}
		})
	})

	Describe("invariants over a full run", func() {
		It("holds clamp ranges, the speed cap and the diagnostic formula", func() {
			st = newState(100, 200, warmInitial())
			for t := 0; t < 200; t++ {
				_, err := stepper.Step(st, &params, t)
				Expect(err).NotTo(HaveOccurred())
				Expect(math.Abs(st.Particle.V)).To(BeNumerically("<=", params.WaveSpeed))
				for i := 0; i < 100; i++ {
					Expect(st.Energy.At(t, i)).To(BeNumerically(">=", integrators.EnergyMin))
					Expect(st.Energy.At(t, i)).To(BeNumerically("<=", integrators.EnergyMax))
					Expect(st.Density.At(t, i)).To(BeNumerically(">=", integrators.DensityMin))
					Expect(st.Density.At(t, i)).To(BeNumerically("<=", integrators.DensityMax))
				}
			}
		})

		It("derives the frequency shift from the step's potential", func() {
			st = newState(100, 200, warmInitial())
			stepTo(stepper, st, &params, 3)

			// rho[2] = rho[1] + dt*ip, so ip is recoverable away from clamping.
			for i := 1; i < 99; i++ {
				ip := (st.Density.At(2, i) - st.Density.At(1, i)) / st.Time.Dt
				want := params.Omega * (1 + params.Kappa*ip/params.WaveSpeed)
				Expect(st.FreqShift.At(2, i)).To(BeNumerically("~", want, 1e-9))
			}
		})
	})

	Describe("determinism", func() {
		It("produces identical histories for identical inputs", func() {
			a := newState(100, 120, warmInitial())
			b := newState(100, 120, warmInitial())
			pa, pb := dynamo.DefaultParams(), dynamo.DefaultParams()
			stepTo(sim.NewStepper(), a, &pa, 120)
			stepTo(sim.NewStepper(), b, &pb, 120)

			Expect(a.Energy.Row(119)).To(Equal(b.Energy.Row(119)))
			Expect(a.Density.Row(119)).To(Equal(b.Density.Row(119)))
			Expect(a.FreqShift.Row(119)).To(Equal(b.FreqShift.Row(119)))
			Expect(a.Position).To(Equal(b.Position))
			Expect(a.Particle).To(Equal(b.Particle))
		})
	})

	Describe("reset", func() {
		It("restores defaults and reproduces a fresh run", func() {
			fresh := newState(100, 80, warmInitial())
			pf := dynamo.DefaultParams()
			stepTo(sim.NewStepper(), fresh, &pf, 40)

			st = newState(100, 80, warmInitial())
			params.Alpha, params.Kappa = 0.2, 0.5
			stepTo(stepper, st, &params, 60)

			for run := 0; run < 2; run++ {
				sim.Reset(st, &params)
				Expect(params).To(Equal(dynamo.DefaultParams()))
				Expect(st.Next()).To(Equal(0))
				stepTo(stepper, st, &params, 40)

				Expect(st.Energy.Row(39)).To(Equal(fresh.Energy.Row(39)))
				Expect(st.Density.Row(39)).To(Equal(fresh.Density.Row(39)))
				Expect(st.Position).To(Equal(fresh.Position))
				Expect(st.Particle).To(Equal(fresh.Particle))
				for t := 40; t < 80; t++ {
					Expect(st.Energy.Row(t)).To(HaveEach(0.0))
				}
			}
		})
	})

	Describe("frozen particle", func() {
		DescribeTable("keeps a boundary particle in place",
			func(start float64) {
				init := dynamo.DefaultInitial()
				init.Position = start
				st = newState(100, 10, init)
				stepTo(stepper, st, &params, 4)
				Expect(st.Position[2]).To(Equal(start))
				Expect(st.Position[3]).To(Equal(start))
			},
			Entry("left edge", 0.0),
			Entry("right edge", 99.0),
		)
	})
})
