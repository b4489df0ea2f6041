package pit_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/x86sim/devices/pit"
)

var _ = Describe("Timer", func() {
	var t *pit.Timer

	BeforeEach(func() {
		t = pit.New()
	})

	Describe("mode register", func() {
		It("should set the access mode of the addressed channel", func() {
			t.WritePort(0x43, 0x36)
			Expect(t.Channel(0).Mode).To(Equal(pit.AccessToggle))

			t.WritePort(0x43, 0x90)
			Expect(t.Channel(2).Mode).To(Equal(pit.AccessLow))
		})
	})

	Describe("reload", func() {
		It("should load low then high byte in toggle mode", func() {
			t.WritePort(0x43, 0x36)
			t.WritePort(0x40, 0x9C)
			t.WritePort(0x40, 0x2E)

			ch := t.Channel(0)
			Expect(ch.Reload).To(Equal(uint16(0x2E9C)))
			Expect(ch.Effective).To(Equal(uint32(0x2E9C)))
			Expect(ch.Active).To(BeTrue())
		})

		It("should treat a reload of 0 as 65536", func() {
			t.WritePort(0x43, 0x36)
			t.WritePort(0x40, 0x00)
			t.WritePort(0x40, 0x00)

			ch := t.Channel(0)
			Expect(ch.Effective).To(Equal(uint32(65536)))
			Expect(ch.Frequency).To(BeNumerically("~", 18.206, 0.0005))
		})

		It("should load only the high byte in high mode", func() {
			t.WritePort(0x43, 0xA0)
			t.WritePort(0x42, 0x12)
			Expect(t.Channel(2).Reload).To(Equal(uint16(0x1200)))
		})

		It("should truncate the frequency to three decimals", func() {
			t.WritePort(0x43, 0xB6)
			t.WritePort(0x42, 0xA9)
			t.WritePort(0x42, 0x04)

			// 1193182 / 1193 = 1000.152...
			Expect(t.Frequency(2)).To(Equal(1000.152))
		})

		It("should report the exact rate to the reload hook", func() {
			var gotChannel int
			var gotHz float64
			t.OnReload(func(ch int, hz float64) {
				gotChannel = ch
				gotHz = hz
			})

			t.WritePort(0x43, 0x56)
			t.WritePort(0x41, 0x12)

			Expect(gotChannel).To(Equal(1))
			Expect(gotHz).To(BeNumerically("~", 1193182.0/18, 1e-6))
		})
	})

	Describe("counter", func() {
		BeforeEach(func() {
			t.WritePort(0x43, 0x36)
			t.WritePort(0x40, 100)
			t.WritePort(0x40, 0)
		})

		It("should count down by ten per step and reload", func() {
			t.Step()
			Expect(t.Channel(0).Counter).To(Equal(uint16(90)))
			for i := 0; i < 9; i++ {
				t.Step()
			}
			Expect(t.Channel(0).Counter).To(Equal(uint16(0)))
			t.Step()
			Expect(t.Channel(0).Counter).To(Equal(uint16(90)))
		})

		It("should read low then high byte in toggle mode", func() {
			t.Step()
			t.WritePort(0x43, 0x30)

			lo, _ := t.ReadPort(0x40)
			hi, _ := t.ReadPort(0x40)
			Expect(lo).To(Equal(byte(90)))
			Expect(hi).To(Equal(byte(0)))
		})

		It("should leave idle channels alone", func() {
			t.Step()
			Expect(t.Channel(1).Counter).To(Equal(uint16(0)))
		})
	})
})
