package video_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/x86sim/memory"
	"github.com/sarchlab/x86sim/video"
)

var _ = Describe("Renderer", func() {
	var (
		mem  *memory.AddressSpace
		d    *video.Display
		font *video.Font
		r    *video.Renderer
	)

	BeforeEach(func() {
		mem = memory.New()
		d = video.New(mem)
		font = &video.Font{}
		// Glyph 'A' has a solid top row.
		font['A'*video.GlyphHeight] = 0xFF
		r = video.NewRenderer(d, mem, font)
	})

	It("should draw text cells with foreground and background colours", func() {
		d.SetMode(0x03)
		mem.Poke(0xB8000, 'A')
		mem.Poke(0xB8001, 0x1E)

		frame := r.Render()

		Expect(frame.Bounds().Dx()).To(Equal(640))
		Expect(frame.Bounds().Dy()).To(Equal(400))
		Expect(frame.RGBAAt(0, 0)).To(Equal(video.CGAColor(0x0E)))
		Expect(frame.RGBAAt(7, 0)).To(Equal(video.CGAColor(0x0E)))
		Expect(frame.RGBAAt(0, 1)).To(Equal(video.CGAColor(0x01)))
	})

	It("should double glyph width in 40-column modes", func() {
		d.SetMode(0x01)
		mem.Poke(0xB8002, 'A')
		mem.Poke(0xB8003, 0x0F)

		frame := r.Render()

		Expect(frame.RGBAAt(16, 0)).To(Equal(video.CGAColor(0x0F)))
		Expect(frame.RGBAAt(31, 0)).To(Equal(video.CGAColor(0x0F)))
		Expect(frame.RGBAAt(15, 0)).To(Equal(video.CGAColor(0x00)))
	})

	It("should draw the cursor when visible", func() {
		d.SetMode(0x03)
		mem.Poke(0xB8001, 0x0C)
		d.BlinkCursor()

		frame := r.Render()

		Expect(frame.RGBAAt(3, 12)).To(Equal(video.CGAColor(0x0C)))
		Expect(frame.RGBAAt(3, 14)).To(Equal(video.CGAColor(0x00)))
	})

	It("should draw mode 13h through the DAC", func() {
		d.SetMode(0x13)
		mem.Poke(0xA0000+321, 5)

		frame := r.Render()

		Expect(frame.Bounds().Dx()).To(Equal(320))
		Expect(frame.RGBAAt(1, 1)).To(Equal(d.Palette(5)))
		Expect(frame.RGBAAt(0, 0)).To(Equal(d.Palette(0)))
	})

	It("should draw interlaced CGA 4-colour pixels", func() {
		d.SetMode(0x04)
		mem.Poke(0xB8000, 0x6C)      // pixels 1, 2, 3, 0
		mem.Poke(0xB8000+8192, 0xC0) // first pixel of line 1 is 3

		frame := r.Render()

		Expect(frame.RGBAAt(0, 0)).To(Equal(video.CGAColor(11)))
		Expect(frame.RGBAAt(1, 0)).To(Equal(video.CGAColor(13)))
		Expect(frame.RGBAAt(2, 0)).To(Equal(video.CGAColor(15)))
		Expect(frame.RGBAAt(3, 0)).To(Equal(video.CGAColor(0)))
		Expect(frame.RGBAAt(0, 1)).To(Equal(video.CGAColor(15)))
	})

	It("should draw CGA 640x200 monochrome pixels", func() {
		d.SetMode(0x06)
		mem.Poke(0xB8000, 0x80)

		frame := r.Render()

		Expect(frame.Bounds().Dy()).To(Equal(200))
		Expect(frame.RGBAAt(0, 0)).To(Equal(video.CGAColor(15)))
		Expect(frame.RGBAAt(1, 0)).To(Equal(video.CGAColor(0)))
	})
})
