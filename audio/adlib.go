package audio

import (
	"math"

	"github.com/sarchlab/x86sim/ports"
)

// OPL2 registers the Adlib model reacts to.
const (
	oplTimerControl = 0x04
	oplRhythm       = 0xBD

	oplChannels   = 9
	oplWaveLength = 256

	// Amplitude of one fully open channel, in the same units as the other
	// sources.
	oplAmplitude = 64

	// F-number to Hz at block 4.
	oplFreqScale = 0.7626459

	// Envelope level a channel restarts from on key-on.
	oplEnvStart = 0.0025
)

// Per-sample envelope multipliers indexed by the 4-bit attack and decay
// rates of registers 60h-75h.
var (
	oplAttack = [16]float64{
		1.0003, 1.00025, 1.0002, 1.00015, 1.0001, 1.00009, 1.00008, 1.00007,
		1.00006, 1.00005, 1.00004, 1.00003, 1.00002, 1.00001, 1.000005, 1.000005,
	}
	oplDecay = [16]float64{
		0.99999, 0.999985, 0.99998, 0.999975, 0.99997, 0.999965, 0.99996, 0.999955,
		0.99995, 0.999945, 0.99994, 0.999935, 0.99994, 0.999925, 0.99992, 0.99991,
	}
)

// oplWaves holds the four OPL2 waveforms: sine, half sine, absolute sine
// and quarter sine pulses.
var oplWaves = func() (w [4][oplWaveLength]int8) {
	for i := 0; i < oplWaveLength; i++ {
		v := int8(math.Round(oplAmplitude * math.Sin(2*math.Pi*float64(i)/oplWaveLength)))
		w[0][i] = v
		switch {
		case v >= 0:
			w[1][i] = v
			w[2][i] = v
		default:
			w[2][i] = -v
		}
		if i%(oplWaveLength/2) < oplWaveLength/4 {
			w[3][i] = w[2][i]
		}
	}
	return w
}()

type oplChannel struct {
	fnum    uint16
	block   uint8
	keyOn   bool
	wave    uint8
	attack  float64
	decay   float64
	env     float64
	decayed bool
	phase   uint32
}

// hz returns the channel's output frequency, or 0 while keyed off.
func (c *oplChannel) hz() float64 {
	if !c.keyOn || c.fnum == 0 {
		return 0
	}
	return float64(c.fnum) * oplFreqScale * math.Ldexp(1, int(c.block)-4)
}

// Adlib is an Adlib (Yamaha OPL2) card reduced to one tone generator per
// channel with an attack/decay envelope. It answers the timer status check
// games use to detect the card.
type Adlib struct {
	base uint16
	rate int

	addr       byte
	regs       [256]byte
	percussion bool
	channels   [oplChannels]oplChannel

	current int16
}

// NewAdlib creates an Adlib on the address/data port pair at base. Tick is
// expected rate times per second.
func NewAdlib(base uint16, rate int) *Adlib {
	a := &Adlib{base: base, rate: rate}
	for i := range a.channels {
		a.channels[i].attack = oplAttack[0]
		a.channels[i].decay = 1
	}
	return a
}

// Attach registers the address and data ports at the card's base.
func (a *Adlib) Attach(bus *ports.Bus) {
	a.AttachAt(bus, a.base)
}

// AttachAt registers a mirror of the address and data ports at port and
// port+1, as a Sound Blaster does at its base+8.
func (a *Adlib) AttachAt(bus *ports.Bus, port uint16) {
	bus.SetPortRedirector(port, port+1, a)
}

// Status returns the status register: IRQ, timer 1 and timer 2 flags.
func (a *Adlib) Status() byte {
	t := a.regs[oplTimerControl]
	if t == 0 {
		return 0
	}
	return 0x80 | (t&1)<<6 | (t&2)<<4
}

// ReadPort implements ports.Handler. Both ports of a pair return the
// status register.
func (a *Adlib) ReadPort(port uint16) (byte, bool) {
	return a.Status(), true
}

// WritePort implements ports.Handler. Even ports latch a register index and
// odd ports write the latched register.
func (a *Adlib) WritePort(port uint16, value byte) {
	if port&1 == 0 {
		a.addr = value
		return
	}
	a.writeReg(a.addr, value)
}

func (a *Adlib) writeReg(reg, value byte) {
	a.regs[reg] = value

	switch {
	case reg == oplTimerControl:
		if value&0x80 != 0 {
			a.regs[oplTimerControl] = 0
		}
	case reg == oplRhythm:
		a.percussion = value&0x10 != 0
	case reg >= 0x60 && reg <= 0x75:
		if ch := int(reg & 0xF); ch < oplChannels {
			a.channels[ch].attack = oplAttack[15-(value>>4)]
			a.channels[ch].decay = oplDecay[value&0xF]
		}
	case reg >= 0xA0 && reg <= 0xB8:
		if ch := int(reg & 0xF); ch < oplChannels {
			a.updateChannel(ch)
		}
	case reg >= 0xE0 && reg <= 0xF5:
		if ch := int(reg & 0xF); ch < oplChannels {
			a.channels[ch].wave = value & 3
		}
	}
}

func (a *Adlib) updateChannel(ch int) {
	c := &a.channels[ch]
	lo, hi := a.regs[0xA0+ch], a.regs[0xB0+ch]

	keyOn := hi&0x20 != 0
	if keyOn && !c.keyOn {
		c.env = oplEnvStart
		c.decayed = false
		c.phase = 0
	}
	c.keyOn = keyOn
	c.fnum = uint16(lo) | uint16(hi&3)<<8
	c.block = (hi >> 2) & 7
}

// KeyedOn reports whether a channel is sounding.
func (a *Adlib) KeyedOn(ch int) bool {
	return a.channels[ch].hz() != 0
}

// Tick advances every channel by one output sample and updates the
// envelopes.
func (a *Adlib) Tick() {
	var sum int32
	for ch := range a.channels {
		c := &a.channels[ch]
		hz := c.hz()
		if hz == 0 || a.rate <= 0 {
			continue
		}

		if c.decayed {
			c.env *= c.decay
		} else {
			c.env *= c.attack
			if c.env >= 1 {
				c.decayed = true
			}
		}

		if a.percussion && ch >= 6 {
			continue
		}

		level := math.Min(c.env, 1)
		sum += int32(float64(oplWaves[c.wave][c.phase>>24]) * level)
		c.phase += uint32(hz * (1 << 32) / float64(a.rate))
	}

	a.current = int16(max(math.MinInt16, min(math.MaxInt16, sum)))
}

// Sample implements Source.
func (a *Adlib) Sample() int16 {
	return a.current
}
