// Package video implements the CGA/VGA display adapter: BIOS video modes,
// the CRTC and DAC port registers, INT 10h services, and frame rendering.
package video

import (
	"image/color"

	"github.com/sarchlab/x86sim/emu"
	"github.com/sarchlab/x86sim/ports"
)

// Adapter ports.
const (
	PortFirst     = 0x3B0
	PortDACRead   = 0x3C7
	PortDACWrite  = 0x3C8
	PortDACData   = 0x3C9
	PortCRTCIndex = 0x3D4
	PortCRTCData  = 0x3D5
	PortCGAMode   = 0x3D8
	PortCGAColor  = 0x3D9
	PortStatus    = 0x3DA
	PortLast      = PortStatus
)

// Scanlines per frame and the first line of vertical retrace.
const (
	linesPerFrame = 525
	retraceLine   = 480
)

// BIOS data area fields kept in sync with the current mode.
const (
	bdaMode    = 0x449
	bdaColumns = 0x44A
	bdaRows    = 0x484
)

// Memory is the raw view of physical memory used by the adapter. Accesses
// bypass write protection and display notification.
type Memory interface {
	Peek(addr uint32) byte
	Poke(addr uint32, value byte)
}

// Display is the video adapter state.
type Display struct {
	mem Memory

	mode Mode

	crtcIndex byte
	crtc      [256]byte
	cursor    uint16

	cgaMode  byte
	cgaColor byte

	dac          [256]color.RGBA
	dacWrite     byte
	dacWritePart int
	dacRead      byte
	dacReadPart  int
	dacState     byte
	dacLatch     [3]byte

	scanline int
	status   byte

	cursorVisible bool
	dirty         bool
}

// New creates a display in 80x25 colour text mode.
func New(mem Memory) *Display {
	d := &Display{mem: mem}
	d.mode = modes[0x03]
	d.ResetPalette()
	d.dirty = true
	return d
}

// Attach registers the adapter on 0x3B0-0x3DA.
func (d *Display) Attach(bus *ports.Bus) {
	bus.SetPortRedirector(PortFirst, PortLast, d)
}

// Mode returns the current video mode.
func (d *Display) Mode() Mode {
	return d.mode
}

// Cursor returns the text cursor column and row.
func (d *Display) Cursor() (col, row int) {
	if d.mode.Cols == 0 {
		return 0, 0
	}
	return int(d.cursor) % d.mode.Cols, int(d.cursor) / d.mode.Cols
}

// CursorVisible reports the blink phase of the text cursor.
func (d *Display) CursorVisible() bool {
	return d.cursorVisible
}

// BlinkCursor flips the cursor blink phase.
func (d *Display) BlinkCursor() {
	d.cursorVisible = !d.cursorVisible
	d.dirty = true
}

// Status returns the value read from port 0x3DA.
func (d *Display) Status() byte {
	return d.status
}

// Palette returns DAC entry i.
func (d *Display) Palette(i byte) color.RGBA {
	return d.dac[i]
}

// ResetPalette restores the power-on DAC contents.
func (d *Display) ResetPalette() {
	for i, c := range defaultDAC {
		d.dac[i] = color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xFF}
	}
}

// TakeDirty reports whether the screen changed since the last call and
// clears the flag.
func (d *Display) TakeDirty() bool {
	dirty := d.dirty
	d.dirty = false
	return dirty
}

// OnMemoryWrite is called for every guest write to the video window.
func (d *Display) OnMemoryWrite(addr uint32, value byte) {
	d.dirty = true
}

// Scanline advances the beam by one line and updates the status port.
func (d *Display) Scanline() {
	d.scanline = (d.scanline + 1) % linesPerFrame
	d.status = 0
	if d.scanline >= retraceLine {
		d.status = 8
	}
	if d.scanline&1 != 0 {
		d.status |= 1
	}
}

// SetMode switches to BIOS mode n. Bit 7 of n keeps video memory intact.
// Unknown modes are ignored and false is returned.
func (d *Display) SetMode(n byte) bool {
	m, ok := modes[n&0x7F]
	if !ok {
		return false
	}
	d.mode = m
	d.dirty = true

	if n&0x80 == 0 {
		for a := uint32(GraphicsBase); a < TextBase+0x8000; a++ {
			d.mem.Poke(a, 0)
		}
		if m.Kind == KindText {
			for a := uint32(m.Base); a < m.Base+0x4000; a += 2 {
				d.mem.Poke(a+1, 0x07)
			}
		}
	}

	switch n & 0x7F {
	case 0x04:
		d.cgaColor = 48
	case 0x05:
		d.cgaColor = 0
	default:
		d.cgaMode &^= 1
	}

	d.mem.Poke(bdaMode, m.Number)
	d.mem.Poke(bdaColumns, byte(m.Cols))
	d.mem.Poke(bdaColumns+1, 0)
	d.mem.Poke(bdaRows, byte(m.Rows-1))
	d.cursor = 0

	return true
}

// ReadPort implements ports.Handler.
func (d *Display) ReadPort(port uint16) (byte, bool) {
	switch port {
	case PortCRTCIndex:
		return d.crtcIndex, true
	case PortCRTCData:
		return d.crtc[d.crtcIndex], true
	case PortCGAMode:
		return d.cgaMode, true
	case PortCGAColor:
		return d.cgaColor, true
	case PortDACRead:
		return d.dacState, true
	case PortDACWrite:
		return d.dacRead, true
	case PortDACData:
		return d.readDAC(), true
	case PortStatus:
		return d.status, true
	}
	return 0, false
}

// WritePort implements ports.Handler.
func (d *Display) WritePort(port uint16, value byte) {
	d.dirty = true

	switch port {
	case PortCRTCIndex:
		d.crtcIndex = value
	case PortCRTCData:
		d.writeCRTC(value)
	case PortCGAMode:
		d.cgaMode = value
	case PortCGAColor:
		d.cgaColor = value
	case PortDACRead:
		d.dacRead = value
		d.dacReadPart = 0
		d.dacState = 0
	case PortDACWrite:
		d.dacWrite = value
		d.dacWritePart = 0
		d.dacState = 3
	case PortDACData:
		d.writeDAC(value)
	}
}

func (d *Display) writeCRTC(value byte) {
	d.crtc[d.crtcIndex] = value
	switch d.crtcIndex {
	case 0x0E:
		d.cursor = d.cursor&0x00FF | uint16(value)<<8
	case 0x0F:
		d.cursor = d.cursor&0xFF00 | uint16(value)
	}
}

// StartAddress returns the CRTC display start offset.
func (d *Display) StartAddress() uint32 {
	return uint32(d.crtc[0x0C])<<8 | uint32(d.crtc[0x0D])
}

func (d *Display) writeDAC(value byte) {
	d.dacLatch[d.dacWritePart] = (value & 0x3F) << 2
	d.dacWritePart++
	if d.dacWritePart == 3 {
		d.dac[d.dacWrite] = color.RGBA{
			R: d.dacLatch[0], G: d.dacLatch[1], B: d.dacLatch[2], A: 0xFF,
		}
		d.dacWrite++
		d.dacWritePart = 0
	}
}

func (d *Display) readDAC() byte {
	c := d.dac[d.dacRead]
	var v byte
	switch d.dacReadPart {
	case 0:
		v = c.R
	case 1:
		v = c.G
	default:
		v = c.B
	}
	d.dacReadPart++
	if d.dacReadPart == 3 {
		d.dacReadPart = 0
		d.dacRead++
	}
	return v >> 2
}

func (d *Display) setDAC(i byte, r, g, b byte) {
	d.dac[i] = color.RGBA{R: (r & 0x3F) << 2, G: (g & 0x3F) << 2, B: (b & 0x3F) << 2, A: 0xFF}
}

// HandleInt10 services the video BIOS functions the adapter implements
// itself. It returns false when the request should continue to the ROM
// handler.
func (d *Display) HandleInt10(e *emu.Emulator) bool {
	r := e.RegFile()
	d.dirty = true

	switch r.AH() {
	case 0x00:
		d.SetMode(r.AL())
		return d.mode.Number == 0x09
	case 0x10:
		d.dacFunction(r)
		return true
	case 0x12:
		if r.Reg8(3) != 0x10 {
			return false
		}
		r.SetReg8(7, 0)    // BH: colour
		r.SetReg8(3, 3)    // BL: 256K
		r.SetReg8(5, 0x08) // CH
		r.SetReg8(1, 0x0B) // CL
		return true
	case 0x1A:
		if r.AL() != 0 {
			return false
		}
		r.SetAL(0x1A)
		r.SetReg8(3, 0x08) // BL: VGA with colour display
		return true
	case 0x1B:
		d.stateInfo(r)
		return true
	}
	return false
}

func (d *Display) dacFunction(r *emu.RegFile) {
	switch r.AL() {
	case 0x10:
		d.setDAC(byte(r.R[emu.BX]), r.Reg8(6), r.Reg8(5), r.Reg8(1))
	case 0x12:
		src := emu.Linear(r.Seg[emu.ES], r.R[emu.DX])
		for i := uint16(0); i < r.R[emu.CX]; i++ {
			d.setDAC(byte(r.R[emu.BX]+i), d.mem.Peek(src), d.mem.Peek(src+1), d.mem.Peek(src+2))
			src += 3
		}
	case 0x15:
		c := d.dac[byte(r.R[emu.BX])]
		r.SetReg8(6, c.R>>2)
		r.SetReg8(5, c.G>>2)
		r.SetReg8(1, c.B>>2)
	case 0x17:
		dst := emu.Linear(r.Seg[emu.ES], r.R[emu.DX])
		for i := uint16(0); i < r.R[emu.CX]; i++ {
			c := d.dac[byte(r.R[emu.BX]+i)]
			d.mem.Poke(dst, c.R>>2)
			d.mem.Poke(dst+1, c.G>>2)
			d.mem.Poke(dst+2, c.B>>2)
			dst += 3
		}
	}
}

// stateInfo answers the functionality/state request with a minimal table at
// C800:0000 whose static functionality pointer leads to C900:0000.
func (d *Display) stateInfo(r *emu.RegFile) {
	r.SetAL(0x1B)
	r.Seg[emu.ES] = 0xC800
	r.R[emu.DI] = 0
	for i, b := range []byte{0x00, 0x00, 0x00, 0xC9} {
		d.mem.Poke(0xC8000+uint32(i), b)
	}
	for i, b := range []byte{0x00, 0x00, 0x01} {
		d.mem.Poke(0xC9000+uint32(i), b)
	}
}
