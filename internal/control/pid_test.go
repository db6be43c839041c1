package control_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/roastlab/roastsim/internal/control"
	"github.com/roastlab/roastsim/internal/profile"
)

var _ = Describe("PID", func() {
	It("returns zero for all-zero gains regardless of history", func() {
		pid := control.NewPID(0, 0, 0)
		for _, m := range []float64{10, 50, -3, 200} {
			Expect(pid.Output(m, 100, 1.0)).To(BeZero())
		}
	})

	It("is purely proportional with only Kp set", func() {
		pid := control.NewPID(1, 0, 0)
		Expect(pid.Output(50, 100, 1.0)).To(Equal(50.0))

		// no state leaks into the output across calls
		pid2 := control.NewPID(3, 0, 0)
		pid2.Output(0, 90, 1.0)
		pid2.Output(120, 90, 1.0)
		Expect(pid2.Output(80, 90, 0.5)).To(Equal(3.0 * 10.0))
	})

	It("accumulates the integral across calls", func() {
		pid := control.NewPID(0, 1, 0)
		Expect(pid.Output(0, 2, 1.0)).To(Equal(2.0))
		Expect(pid.Output(0, 2, 1.0)).To(Equal(4.0))
	})

	It("weights the integral by dt", func() {
		pid := control.NewPID(0, 1, 0)
		Expect(pid.Output(0, 10, 0.5)).To(Equal(5.0))
		Expect(pid.Output(0, 10, 0.5)).To(Equal(10.0))
	})

	It("takes the first derivative against a zero previous error", func() {
		pid := control.NewPID(0, 0, 1)
		Expect(pid.Output(0, 5, 1.0)).To(Equal(5.0))
		Expect(pid.Output(0, 8, 1.0)).To(Equal(3.0))
	})

	It("contributes no derivative on a zero-length tick", func() {
		pid := control.NewPID(0, 0, 10)
		pid.Output(0, 5, 1.0)
		Expect(pid.Output(0, 50, 0)).To(BeZero())
	})

	It("keeps the integral frozen across a zero-length tick", func() {
		pid := control.NewPID(0, 1, 0)
		pid.Output(0, 2, 1.0)
		Expect(pid.Output(0, 7, 0)).To(Equal(2.0))
		Expect(pid.Output(0, 2, 1.0)).To(Equal(4.0))
	})

	It("sums all three terms", func() {
		pid := control.NewPID(2, 0.5, 1)
		// error=10: P=20, I=0.5*10=5, D=(10-0)/1=10
		Expect(pid.Output(90, 100, 1.0)).To(Equal(35.0))
	})

	It("is deterministic for identical call sequences", func() {
		run := func() []float64 {
			pid := control.NewPID(1.2, 0.3, 0.7)
			out := make([]float64, 0, 4)
			for _, c := range [][3]float64{{20, 100, 0.5}, {60, 120, 0.5}, {110, 120, 0.25}, {118, 120, 0.25}} {
				out = append(out, pid.Output(c[0], c[1], c[2]))
			}
			return out
		}
		Expect(run()).To(Equal(run()))
	})
})

var _ = Describe("Fixed", func() {
	It("holds its level whatever the inputs", func() {
		fixed := control.NewFixed(90)
		Expect(fixed.Output(20, 200, 1.0)).To(Equal(90.0))
		Expect(fixed.Output(500, -10, 0)).To(Equal(90.0))
	})
})

var _ = Describe("Schedule", func() {
	steps := profile.ParseSteps([]string{
		"140,4:50,80",
		"160,6:00,70",
		"180,7:45,40",
	})

	It("holds initial power before any step fires", func() {
		sched := control.NewSchedule(steps, 90)
		Expect(sched.Output(100, 0, 0.5)).To(Equal(90.0))
	})

	It("fires on temperature threshold", func() {
		sched := control.NewSchedule(steps, 90)
		Expect(sched.Output(145, 0, 0.5)).To(Equal(80.0))
		Expect(sched.Output(185, 0, 0.5)).To(Equal(40.0))
	})

	It("fires on elapsed time when temperature lags", func() {
		sched := control.NewSchedule(steps, 90)
		for i := 0; i < 9; i++ {
			sched.Output(100, 0, 0.5) // 4.5 minutes, below 4:50
		}
		Expect(sched.Output(100, 0, 0.5)).To(Equal(80.0)) // crosses 4:50
	})

	It("ignores the setpoint entirely", func() {
		a := control.NewSchedule(steps, 90)
		b := control.NewSchedule(steps, 90)
		Expect(a.Output(150, 0, 1.0)).To(Equal(b.Output(150, 999, 1.0)))
	})
})
