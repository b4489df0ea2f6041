package video_test

import (
	"image/color"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/x86sim/emu"
	"github.com/sarchlab/x86sim/memory"
	"github.com/sarchlab/x86sim/ports"
	"github.com/sarchlab/x86sim/video"
)

var _ = Describe("Display", func() {
	var (
		mem *memory.AddressSpace
		bus *ports.Bus
		d   *video.Display
	)

	BeforeEach(func() {
		mem = memory.New()
		bus = ports.NewBus()
		d = video.New(mem)
		d.Attach(bus)
		mem.SetDisplay(d)
	})

	Describe("mode set", func() {
		It("should switch to mode 13h and update the BIOS data area", func() {
			mem.Poke(0xA0010, 0x55)

			Expect(d.SetMode(0x13)).To(BeTrue())

			Expect(d.Mode().Number).To(Equal(byte(0x13)))
			Expect(d.Mode().Graphics()).To(BeTrue())
			Expect(mem.Peek(0x449)).To(Equal(byte(0x13)))
			Expect(mem.Peek(0x44A)).To(Equal(byte(40)))
			Expect(mem.Peek(0x484)).To(Equal(byte(24)))
			Expect(mem.Peek(0xA0010)).To(BeZero())
		})

		It("should blank text memory with attribute 7", func() {
			mem.Poke(0xB8000, 'x')

			Expect(d.SetMode(0x03)).To(BeTrue())

			Expect(mem.Peek(0xB8000)).To(BeZero())
			Expect(mem.Peek(0xB8001)).To(Equal(byte(0x07)))
			Expect(mem.Peek(0xBBFFF)).To(Equal(byte(0x07)))
		})

		It("should keep video memory when bit 7 is set", func() {
			mem.Poke(0xB8000, 'x')

			Expect(d.SetMode(0x81)).To(BeTrue())

			Expect(d.Mode().Cols).To(Equal(40))
			Expect(mem.Peek(0xB8000)).To(Equal(byte('x')))
		})

		It("should ignore unknown modes", func() {
			Expect(d.SetMode(0x42)).To(BeFalse())
			Expect(d.Mode().Number).To(Equal(byte(0x03)))
		})

		It("should select the CGA palette register for mode 4", func() {
			d.SetMode(0x04)
			Expect(bus.InByte(video.PortCGAColor)).To(Equal(byte(48)))
		})
	})

	It("should track the cursor through the CRTC", func() {
		bus.OutByte(video.PortCRTCIndex, 0x0E)
		bus.OutByte(video.PortCRTCData, 0x01)
		bus.OutByte(video.PortCRTCIndex, 0x0F)
		bus.OutByte(video.PortCRTCData, 0x40)

		col, row := d.Cursor()
		Expect(col).To(Equal(0))
		Expect(row).To(Equal(4))
		Expect(bus.InByte(video.PortCRTCData)).To(Equal(byte(0x40)))
	})

	It("should load and read back DAC entries", func() {
		bus.OutByte(video.PortDACWrite, 5)
		bus.OutByte(video.PortDACData, 63)
		bus.OutByte(video.PortDACData, 0)
		bus.OutByte(video.PortDACData, 32)

		Expect(d.Palette(5)).To(Equal(color.RGBA{R: 252, G: 0, B: 128, A: 0xFF}))

		bus.OutByte(video.PortDACRead, 5)
		Expect(bus.InByte(video.PortDACData)).To(Equal(byte(63)))
		Expect(bus.InByte(video.PortDACData)).To(Equal(byte(0)))
		Expect(bus.InByte(video.PortDACData)).To(Equal(byte(32)))
	})

	It("should report retrace and odd lines on the status port", func() {
		d.Scanline()
		Expect(bus.InByte(video.PortStatus)).To(Equal(byte(1)))

		for i := 1; i < 480; i++ {
			d.Scanline()
		}
		Expect(bus.InByte(video.PortStatus)).To(Equal(byte(8)))

		d.Scanline()
		Expect(bus.InByte(video.PortStatus)).To(Equal(byte(9)))

		for i := 481; i < 525; i++ {
			d.Scanline()
		}
		Expect(d.Status()).To(BeZero())
	})

	It("should mark the screen dirty on video memory writes", func() {
		d.TakeDirty()
		Expect(d.TakeDirty()).To(BeFalse())

		mem.WriteByte(0xB8000, 'A')
		Expect(d.TakeDirty()).To(BeTrue())
	})

	Describe("INT 10h", func() {
		var (
			e *emu.Emulator
			r *emu.RegFile
		)

		BeforeEach(func() {
			e = emu.NewEmulator(emu.WithMemory(mem), emu.WithIO(bus))
			r = e.RegFile()
		})

		It("should set the mode and continue to the ROM handler", func() {
			r.R[emu.AX] = 0x0013

			Expect(d.HandleInt10(e)).To(BeFalse())
			Expect(d.Mode().Number).To(Equal(byte(0x13)))
			Expect(r.R[emu.AX]).To(Equal(uint16(0x0013)))
		})

		It("should set a DAC register", func() {
			r.R[emu.AX] = 0x1010
			r.R[emu.BX] = 1
			r.R[emu.DX] = 0x3F00
			r.R[emu.CX] = 0x0000

			Expect(d.HandleInt10(e)).To(BeTrue())
			Expect(d.Palette(1)).To(Equal(color.RGBA{R: 252, A: 0xFF}))
		})

		It("should set a block of DAC registers from ES:DX", func() {
			mem.Poke(0x5000, 1)
			mem.Poke(0x5001, 2)
			mem.Poke(0x5002, 3)
			r.R[emu.AX] = 0x1012
			r.R[emu.BX] = 10
			r.R[emu.CX] = 1
			r.Seg[emu.ES] = 0x0500
			r.R[emu.DX] = 0

			Expect(d.HandleInt10(e)).To(BeTrue())
			Expect(d.Palette(10)).To(Equal(color.RGBA{R: 4, G: 8, B: 12, A: 0xFF}))
		})

		It("should answer the EGA information request", func() {
			r.R[emu.AX] = 0x1200
			r.R[emu.BX] = 0x0010

			Expect(d.HandleInt10(e)).To(BeTrue())
			Expect(r.R[emu.BX]).To(Equal(uint16(0x0003)))
			Expect(r.R[emu.CX]).To(Equal(uint16(0x080B)))
		})

		It("should report a VGA display combination", func() {
			r.R[emu.AX] = 0x1A00

			Expect(d.HandleInt10(e)).To(BeTrue())
			Expect(r.AL()).To(Equal(byte(0x1A)))
			Expect(r.Reg8(3)).To(Equal(byte(0x08)))
		})

		It("should leave teletype output to the ROM", func() {
			r.R[emu.AX] = 0x0E41
			Expect(d.HandleInt10(e)).To(BeFalse())
		})
	})
})
