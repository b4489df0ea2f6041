package audio_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/x86sim/audio"
	"github.com/sarchlab/x86sim/ports"
)

var _ = Describe("SoundSource", func() {
	var (
		bus *ports.Bus
		s   *audio.SoundSource
	)

	BeforeEach(func() {
		bus = ports.NewBus()
		s = audio.NewSoundSource(0x378)
		s.Attach(bus)
	})

	It("should play queued bytes in order", func() {
		bus.OutByte(0x378, 0x90)
		bus.OutByte(0x378, 0x70)

		s.Tick()
		Expect(s.Sample()).To(Equal(int16(0x10)))
		s.Tick()
		Expect(s.Sample()).To(Equal(int16(-0x10)))
		s.Tick()
		Expect(s.Sample()).To(BeZero())
	})

	It("should report a full FIFO on the status port", func() {
		for i := 0; i < 15; i++ {
			bus.OutByte(0x378, byte(i))
		}
		Expect(bus.InByte(0x379)).To(BeZero())

		bus.OutByte(0x378, 0xFF)
		Expect(bus.InByte(0x379)).To(Equal(byte(0x40)))

		bus.OutByte(0x378, 0xEE)
		Expect(s.Len()).To(Equal(16))

		s.Tick()
		Expect(bus.InByte(0x379)).To(BeZero())
	})

	It("should queue the data latch on a rising strobe", func() {
		bus.OutByte(0x378, 0x80)
		s.Tick()

		bus.OutByte(0x37A, 0x04)
		bus.OutByte(0x37A, 0x04)
		Expect(s.Len()).To(Equal(1))

		bus.OutByte(0x37A, 0x00)
		bus.OutByte(0x37A, 0x04)
		Expect(s.Len()).To(Equal(2))
	})
})
