package timing_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/x86sim/devices/pic"
	"github.com/sarchlab/x86sim/devices/pit"
	"github.com/sarchlab/x86sim/timing"
)

var _ = Describe("Scheduler", func() {
	var (
		clock *timing.ManualClock
		sched *timing.Scheduler
	)

	BeforeEach(func() {
		clock = timing.NewManualClock(1_000_000)
		sched = timing.NewScheduler(clock)
	})

	It("should derive intervals from the host frequency", func() {
		e := sched.Every("scanline", timing.ScanlineHz, func() {})
		Expect(e.Interval()).To(Equal(uint64(1_000_000 / 31500)))
	})

	It("should not fire before the interval elapses", func() {
		count := 0
		sched.Every("e", 1000, func() { count++ })
		sched.Init()

		clock.Advance(999)
		sched.Tick()
		Expect(count).To(Equal(0))

		clock.Advance(1)
		sched.Tick()
		Expect(count).To(Equal(1))
	})

	It("should fire at most once per tick and catch up one interval at a time", func() {
		count := 0
		sched.Every("e", 1000, func() { count++ })
		sched.Init()

		clock.Advance(3500)
		sched.Tick()
		Expect(count).To(Equal(1))
		sched.Tick()
		sched.Tick()
		Expect(count).To(Equal(3))
		sched.Tick()
		Expect(count).To(Equal(3))

		clock.Advance(500)
		sched.Tick()
		Expect(count).To(Equal(4))
	})

	It("should not drift when ticks arrive late", func() {
		count := 0
		sched.Every("e", 1000, func() { count++ })
		sched.Init()

		for i := 0; i < 100; i++ {
			clock.Advance(1003)
			sched.Tick()
		}
		// 100300 ticks hold 100 whole intervals.
		Expect(count).To(Equal(100))
		Expect(sched.Event("e").Fired()).To(Equal(uint64(100)))
	})

	It("should service events in registration order", func() {
		var order []string
		sched.Every("a", 1000, func() { order = append(order, "a") })
		sched.Every("b", 1000, func() { order = append(order, "b") })
		sched.Init()

		clock.Advance(1000)
		sched.Tick()
		Expect(order).To(Equal([]string{"a", "b"}))
	})

	It("should not catch up time spent disabled", func() {
		count := 0
		e := sched.Every("e", 1000, func() { count++ })
		e.SetEnabled(false)
		sched.Init()

		clock.Advance(5000)
		sched.Tick()
		Expect(count).To(Equal(0))

		e.SetEnabled(true)
		sched.Tick()
		Expect(count).To(Equal(0))
		clock.Advance(1000)
		sched.Tick()
		Expect(count).To(Equal(1))
	})

	It("should suspend events with a zero rate", func() {
		count := 0
		e := sched.Every("e", 0, func() { count++ })
		sched.Init()
		clock.Advance(1_000_000)
		sched.Tick()
		Expect(count).To(Equal(0))
		Expect(e.Interval()).To(Equal(uint64(0)))
	})

	Describe("timer interrupt", func() {
		It("should raise exactly ten IRQ0s over ten PIT intervals", func() {
			controller := pic.New()
			timer := pit.New()

			irqs := 0
			irq0 := sched.Every("irq0", 0, func() {
				irqs++
				controller.DoIRQ(0)
			})
			irq0.SetEnabled(false)
			timer.OnReload(func(ch int, hz float64) {
				if ch == 0 {
					irq0.SetRate(hz)
					irq0.SetEnabled(true)
				}
			})

			sched.Init()
			timer.WritePort(0x43, 0x36)
			timer.WritePort(0x40, 0x9C)
			timer.WritePort(0x40, 0x2E)

			interval := irq0.Interval()
			Expect(interval).To(BeNumerically(">", 0))

			end := clock.Now + 10*interval
			for clock.Now < end {
				step := uint64(97)
				if end-clock.Now < step {
					step = end - clock.Now
				}
				clock.Advance(step)
				sched.Tick()
			}

			Expect(irqs).To(Equal(10))
			Expect(controller.IRR() & 1).To(Equal(byte(1)))
		})
	})
})
