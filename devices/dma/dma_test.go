package dma_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/x86sim/devices/dma"
	"github.com/sarchlab/x86sim/memory"
)

var _ = Describe("Controller", func() {
	var (
		mem *memory.AddressSpace
		c   *dma.Controller
	)

	// program sets up channel 1 for a transfer of n+1 bytes at
	// page:addr, the way a Sound Blaster driver does.
	program := func(page byte, addr uint16, n uint16, mode byte) {
		c.WritePort(0x0A, 0x05)
		c.WritePort(0x0C, 0)
		c.WritePort(0x0B, mode)
		c.WritePort(0x02, byte(addr))
		c.WritePort(0x02, byte(addr>>8))
		c.WritePort(0x83, page)
		c.WritePort(0x03, byte(n))
		c.WritePort(0x03, byte(n>>8))
		c.WritePort(0x0A, 0x01)
	}

	BeforeEach(func() {
		mem = memory.New()
		c = dma.New(mem)
		for i := 0; i < 4; i++ {
			mem.WriteByte(0x12340+uint32(i), byte(0x10+i))
		}
	})

	It("should program address, page and count", func() {
		program(0x01, 0x2340, 3, 0x49)

		ch := c.Channel(1)
		Expect(ch.Page).To(Equal(uint32(0x10000)))
		Expect(ch.Addr).To(Equal(uint32(0x2340)))
		Expect(ch.Reload).To(Equal(uint32(3)))
		Expect(ch.Masked).To(BeFalse())
		Expect(ch.AutoInit).To(BeFalse())
	})

	It("should read bytes in increasing address order", func() {
		program(0x01, 0x2340, 3, 0x49)

		Expect(c.Read(1)).To(Equal(byte(0x10)))
		Expect(c.Read(1)).To(Equal(byte(0x11)))
		Expect(c.Read(1)).To(Equal(byte(0x12)))
		Expect(c.Read(1)).To(Equal(byte(0x13)))
	})

	It("should return the sentinel once the transfer is exhausted", func() {
		program(0x01, 0x2340, 1, 0x49)

		c.Read(1)
		c.Read(1)
		Expect(c.Read(1)).To(Equal(byte(dma.Sentinel)))
		Expect(c.Read(1)).To(Equal(byte(dma.Sentinel)))
	})

	It("should restart an auto-init transfer", func() {
		program(0x01, 0x2340, 1, 0x59)

		Expect(c.Read(1)).To(Equal(byte(0x10)))
		Expect(c.Read(1)).To(Equal(byte(0x11)))
		Expect(c.Read(1)).To(Equal(byte(0x10)))
	})

	It("should read downwards when the direction bit is set", func() {
		program(0x01, 0x2343, 3, 0x69)

		Expect(c.Read(1)).To(Equal(byte(0x13)))
		Expect(c.Read(1)).To(Equal(byte(0x12)))
	})

	It("should return the sentinel for a masked channel", func() {
		program(0x01, 0x2340, 3, 0x49)
		c.WritePort(0x0A, 0x05)
		Expect(c.Read(1)).To(Equal(byte(dma.Sentinel)))
	})

	It("should treat a zero count as 65536", func() {
		program(0x00, 0x0000, 0, 0x49)
		Expect(c.Channel(1).Reload).To(Equal(uint32(65536)))
	})

	It("should read registers back through the flip-flop", func() {
		program(0x01, 0x2340, 0x1FF, 0x49)
		c.WritePort(0x0C, 0)

		lo, _ := c.ReadPort(0x03)
		hi, _ := c.ReadPort(0x03)
		Expect(lo).To(Equal(byte(0xFF)))
		Expect(hi).To(Equal(byte(0x01)))
	})

	It("should keep channels independent", func() {
		c.WritePort(0x0C, 0)
		c.WritePort(0x04, 0x00)
		c.WritePort(0x04, 0x80)
		c.WritePort(0x81, 0x02)

		Expect(c.Channel(2).Addr).To(Equal(uint32(0x8000)))
		Expect(c.Channel(2).Page).To(Equal(uint32(0x20000)))
		Expect(c.Channel(1).Addr).To(Equal(uint32(0)))
	})

	DescribeTable("page registers",
		func(port uint16, channel int) {
			c.WritePort(port, 0x0A)
			Expect(c.Channel(channel).Page).To(Equal(uint32(0xA0000)))

			v, ok := c.ReadPort(port)
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(byte(0x0A)))
		},
		Entry("channel 0", uint16(0x87), 0),
		Entry("channel 1", uint16(0x83), 1),
		Entry("channel 2", uint16(0x81), 2),
		Entry("channel 3", uint16(0x82), 3),
	)

	It("should ignore writes to the unused page ports", func() {
		for _, port := range []uint16{0x80, 0x84, 0x85, 0x86} {
			c.WritePort(port, 0x0F)
		}
		for i := 0; i < dma.NumChannels; i++ {
			Expect(c.Channel(i).Page).To(BeZero())
		}
	})
})
