package audio

import (
	"fmt"
	"log/slog"

	"github.com/sarchlab/x86sim/ports"
)

// DSP registers relative to the card's base port.
const (
	sbMixerIndex = 0x4
	sbMixerData  = 0x5
	sbReset      = 0x6
	sbReadData   = 0xA
	sbWrite      = 0xC
	sbReadStatus = 0xE
)

// DSP version reported by command E1h: a Sound Blaster 2.0.
const (
	dspMajor = 2
	dspMinor = 0
)

const sbOutputSize = 1024

// DMAReader supplies bytes from a DMA channel.
type DMAReader interface {
	Read(channel int) byte
}

// IRQRaiser asserts an interrupt line.
type IRQRaiser interface {
	DoIRQ(line int)
}

// BlasterOption configures a Blaster.
type BlasterOption func(*Blaster)

// WithBlasterLogger sets the logger for unhandled DSP commands.
func WithBlasterLogger(l *slog.Logger) BlasterOption {
	return func(b *Blaster) {
		b.logger = l
	}
}

// WithRateListener registers a callback run when the guest programs a new
// DMA sample rate.
func WithRateListener(f func(hz float64)) BlasterOption {
	return func(b *Blaster) {
		b.onRate = f
	}
}

// Blaster is the Sound Blaster 2.0 DSP with 8-bit DMA playback.
type Blaster struct {
	base uint16
	irq  int
	dma  int

	dmaReader DMAReader
	pic       IRQRaiser
	logger    *slog.Logger
	onRate    func(hz float64)

	out []byte

	lastReset byte
	command   byte
	argsLeft  int
	args      [2]byte
	testValue byte

	speaker  bool
	sample   byte
	rate     int
	usingDMA bool
	autoInit bool
	paused   bool
	block    uint32
	step     uint32

	mixerIndex byte
	mixer      [256]byte
}

// NewBlaster creates a card at base using the given IRQ line and 8-bit DMA
// channel.
func NewBlaster(base uint16, irq, dma int, dmaReader DMAReader, pic IRQRaiser, opts ...BlasterOption) *Blaster {
	b := &Blaster{
		base:      base,
		irq:       irq,
		dma:       dma,
		dmaReader: dmaReader,
		pic:       pic,
		logger:    slog.New(slog.DiscardHandler),
		sample:    Silence,
		block:     0xFFFF,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.mixer[0x04] = 4<<5 | 4<<1
	b.mixer[0x22] = b.mixer[0x04]
	b.mixer[0x26] = b.mixer[0x04]
	return b
}

// Attach registers the card on base..base+0xE.
func (b *Blaster) Attach(bus *ports.Bus) {
	bus.SetPortRedirector(b.base, b.base+sbReadStatus, b)
}

// Rate returns the DMA sample rate set by the last time constant.
func (b *Blaster) Rate() int {
	return b.rate
}

// Playing reports whether DMA playback is active.
func (b *Blaster) Playing() bool {
	return b.usingDMA && !b.paused
}

func (b *Blaster) put(v byte) {
	if len(b.out) < sbOutputSize {
		b.out = append(b.out, v)
	}
}

func (b *Blaster) reset() {
	b.speaker = false
	b.sample = Silence
	b.argsLeft = 0
	b.out = b.out[:0]
	b.usingDMA = false
	b.paused = false
	b.block = 0xFFFF
	b.step = 0
	for i := range b.mixer {
		b.mixer[i] = 0xEE
	}
	b.put(0xAA)
}

// ReadPort implements ports.Handler.
func (b *Blaster) ReadPort(port uint16) (byte, bool) {
	switch port - b.base {
	case sbMixerData:
		return b.mixer[b.mixerIndex], true
	case sbReadData:
		if len(b.out) == 0 {
			return 0, true
		}
		v := b.out[0]
		b.out = b.out[1:]
		return v, true
	case sbReadStatus:
		if len(b.out) > 0 {
			return 0x80, true
		}
		return 0, true
	case sbWrite:
		// Write buffer status: always ready.
		return 0, true
	}
	return 0, false
}

// WritePort implements ports.Handler.
func (b *Blaster) WritePort(port uint16, value byte) {
	switch port - b.base {
	case sbMixerIndex:
		b.mixerIndex = value
	case sbMixerData:
		b.mixer[b.mixerIndex] = value
	case sbReset:
		if value == 0 && b.lastReset == 1 {
			b.reset()
		}
		b.lastReset = value
	case sbWrite:
		b.write(value)
	}
}

// argCount returns how many argument bytes follow a DSP command.
func argCount(cmd byte) int {
	switch cmd {
	case 0x10, 0x40, 0xE0, 0xE4:
		return 1
	case 0x14, 0x24, 0x48, 0x91:
		return 2
	}
	return 0
}

func (b *Blaster) write(value byte) {
	if b.argsLeft > 0 {
		b.args[argCount(b.command)-b.argsLeft] = value
		b.argsLeft--
		if b.argsLeft == 0 {
			b.execute()
		}
		return
	}

	b.command = value
	b.argsLeft = argCount(value)
	if b.argsLeft == 0 {
		b.execute()
	}
}

func (b *Blaster) execute() {
	switch b.command {
	case 0x10: // direct 8-bit output
		b.sample = b.args[0]
	case 0x14, 0x24, 0x91: // single-cycle 8-bit DMA
		b.block = uint32(b.args[0]) | uint32(b.args[1])<<8
		b.startDMA(false)
	case 0x1C, 0x2C: // auto-init 8-bit DMA
		b.startDMA(true)
	case 0x40: // time constant
		b.rate = 1000000 / (256 - int(b.args[0]))
		if b.onRate != nil {
			b.onRate(float64(b.rate))
		}
	case 0x48: // block size
		b.block = uint32(b.args[0]) | uint32(b.args[1])<<8
		b.step = 0
	case 0xD0:
		b.paused = true
	case 0xD1:
		b.speaker = true
	case 0xD3:
		b.speaker = false
	case 0xD4:
		b.paused = false
	case 0xD8:
		if b.speaker {
			b.put(0xFF)
		} else {
			b.put(0x00)
		}
	case 0xDA:
		b.usingDMA = false
	case 0xE0: // identification: inverted argument
		b.put(^b.args[0])
	case 0xE1:
		b.out = b.out[:0]
		b.put(dspMajor)
		b.put(dspMinor)
	case 0xE4:
		b.testValue = b.args[0]
	case 0xE8:
		b.out = b.out[:0]
		b.put(b.testValue)
	case 0xF2:
		b.pic.DoIRQ(b.irq)
	case 0xF8:
		b.out = b.out[:0]
		b.put(0)
	default:
		b.logger.Debug("unhandled sound blaster command",
			"command", fmt.Sprintf("0x%02X", b.command))
	}
}

func (b *Blaster) startDMA(autoInit bool) {
	b.usingDMA = true
	b.autoInit = autoInit
	b.paused = false
	b.step = 0
	b.speaker = true
}

// Tick fetches the next DMA sample. It runs at the programmed sample rate
// and raises the card's IRQ at the end of each block.
func (b *Blaster) Tick() {
	if !b.usingDMA || b.paused {
		return
	}
	b.sample = b.dmaReader.Read(b.dma)
	b.step++
	if b.step > b.block {
		b.pic.DoIRQ(b.irq)
		if b.autoInit {
			b.step = 0
		} else {
			b.usingDMA = false
		}
	}
}

// Sample implements Source.
func (b *Blaster) Sample() int16 {
	if !b.speaker {
		return 0
	}
	return int16(b.sample) - Silence
}
