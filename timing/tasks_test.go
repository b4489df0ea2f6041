package timing_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/x86sim/timing"
)

var _ = Describe("TaskManager", func() {
	var (
		clock *timing.ManualClock
		tm    *timing.TaskManager
	)

	BeforeEach(func() {
		clock = timing.NewManualClock(1000)
		tm = timing.NewTaskManager(clock)
	})

	It("should run new tasks immediately", func() {
		runs := 0
		tm.Add("cpu", func() time.Duration {
			runs++
			return 10 * time.Millisecond
		})

		delay := tm.Update()
		Expect(runs).To(Equal(1))
		Expect(delay).To(Equal(10 * time.Millisecond))
	})

	It("should wait until a task is due", func() {
		runs := 0
		tm.Add("render", func() time.Duration {
			runs++
			return 20 * time.Millisecond
		})

		tm.Update()
		clock.Advance(5)
		Expect(tm.Update()).To(Equal(15 * time.Millisecond))
		Expect(runs).To(Equal(1))

		clock.Advance(15)
		tm.Update()
		Expect(runs).To(Equal(2))
	})

	It("should report the earliest next run", func() {
		tm.Add("slow", func() time.Duration { return 50 * time.Millisecond })
		tm.Add("fast", func() time.Duration { return 5 * time.Millisecond })
		Expect(tm.Update()).To(Equal(5 * time.Millisecond))
		Expect(tm.Len()).To(Equal(2))
	})
})
