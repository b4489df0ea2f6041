package video

import (
	"image"
	"image/color"
)

// Glyph dimensions of the text mode font.
const (
	GlyphWidth  = 8
	GlyphHeight = 16
)

// Font holds 256 glyphs of 16 rows each. Bit 7 of a row is the leftmost
// pixel.
type Font [256 * GlyphHeight]byte

// Row returns scanline y of glyph ch.
func (f *Font) Row(ch byte, y int) byte {
	return f[int(ch)*GlyphHeight+y]
}

// Renderer draws the display contents into an RGBA frame.
type Renderer struct {
	display *Display
	mem     Memory
	font    *Font
	frame   *image.RGBA
}

// NewRenderer creates a renderer reading video memory through mem.
func NewRenderer(d *Display, mem Memory, font *Font) *Renderer {
	return &Renderer{display: d, mem: mem, font: font}
}

// Render draws the current screen. The returned image is reused by the next
// call unless the mode dimensions change.
func (r *Renderer) Render() *image.RGBA {
	m := r.display.Mode()
	if r.frame == nil || r.frame.Rect.Dx() != m.Width || r.frame.Rect.Dy() != m.Height {
		r.frame = image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	}

	switch m.Kind {
	case KindText:
		r.renderText(m)
	case KindCGA4:
		r.renderCGA4(m)
	case KindCGA2:
		r.renderCGA2(m)
	case KindTandy16:
		r.renderTandy(m)
	case KindLinear256:
		r.renderLinear(m)
	}

	return r.frame
}

func (r *Renderer) set(x, y int, c color.RGBA) {
	i := r.frame.PixOffset(x, y)
	p := r.frame.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, 0xFF
}

func (r *Renderer) renderText(m Mode) {
	d := r.display
	scale := 1
	if m.Cols == 40 {
		scale = 2
	}
	// 160x100 16-colour trick: the CRTC max scanline register is left
	// selected with the CGA in 80-column text mode.
	lowRes := d.cgaMode == 9 && d.crtcIndex == 9
	cellHeight := GlyphHeight
	base := m.Base
	if lowRes {
		cellHeight = 4
		base += d.StartAddress()
	}

	for y := 0; y < m.Height; y++ {
		row := y / cellHeight
		line := y % cellHeight
		for x := 0; x < m.Width; x++ {
			col := x / (GlyphWidth * scale)
			addr := base + uint32(row*m.Cols*2+col*2)
			ch := r.mem.Peek(addr)
			attr := r.mem.Peek(addr + 1)

			on := r.font.Row(ch, line)&(0x80>>((x/scale)%GlyphWidth)) != 0

			var idx byte
			switch {
			case m.Color && on:
				idx = attr & 0x0F
			case m.Color:
				idx = attr >> 4
			case attr&0x70 != 0:
				if !on {
					idx = 7
				}
			case on:
				idx = 7
			}
			r.set(x, y, cgaPalette[idx])
		}
	}

	if d.CursorVisible() {
		r.renderCursor(m, scale)
	}
}

func (r *Renderer) renderCursor(m Mode, scale int) {
	col, row := r.display.Cursor()
	if row >= m.Rows {
		return
	}
	attr := r.mem.Peek(m.Base + uint32(row*m.Cols*2+col*2) + 1)
	c := cgaPalette[attr&0x0F]
	w := GlyphWidth * scale
	for y := row*GlyphHeight + GlyphHeight - 4; y < row*GlyphHeight+GlyphHeight-2; y++ {
		for x := col * w; x < (col+1)*w; x++ {
			r.set(x, y, c)
		}
	}
}

// interlacedByte returns the address of the byte holding pixel row y in the
// CGA's two-bank layout.
func interlacedByte(base uint32, y, xByte int) uint32 {
	return base + uint32((y>>1)*80+(y&1)*8192+xByte)
}

func (r *Renderer) renderCGA4(m Mode) {
	reg := r.display.cgaColor
	bg := cgaPalette[reg&0x0F]
	intensity := (reg >> 4 & 1) << 3

	var colors [4]color.RGBA
	colors[0] = bg
	if m.Color {
		pal := reg >> 5 & 1
		for i := byte(1); i < 4; i++ {
			colors[i] = cgaPalette[i*2+pal+intensity]
		}
	} else {
		for i, idx := range []byte{3, 4, 7} {
			colors[i+1] = cgaPalette[idx|intensity]
		}
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			b := r.mem.Peek(interlacedByte(m.Base, y, x>>2))
			px := b >> (6 - 2*(x&3)) & 3
			r.set(x, y, colors[px])
		}
	}
}

func (r *Renderer) renderCGA2(m Mode) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			b := r.mem.Peek(interlacedByte(m.Base, y, x>>3))
			if b>>(7-x&7)&1 != 0 {
				r.set(x, y, cgaPalette[15])
			} else {
				r.set(x, y, cgaPalette[0])
			}
		}
	}
}

func (r *Renderer) renderTandy(m Mode) {
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			b := r.mem.Peek(m.Base + uint32((y>>2)*160+(x>>1)+(y&3)*8192))
			if x&1 == 0 {
				b >>= 4
			}
			r.set(x, y, cgaPalette[b&0x0F])
		}
	}
}

func (r *Renderer) renderLinear(m Mode) {
	start := r.display.StartAddress()
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			off := (start + uint32(y*m.Width+x)) & 0xFFFF
			r.set(x, y, r.display.Palette(r.mem.Peek(m.Base+off)))
		}
	}
}
