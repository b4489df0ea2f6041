// Package pit models the Intel 8253 programmable interval timer.
package pit

import "math"

// InputHz is the PIT input clock in Hz.
const InputHz = 1193182

// BasePort is the first of the four PIT ports (0x40-0x43).
const BasePort = 0x40

// NumChannels is the number of counters on the chip.
const NumChannels = 3

// AccessMode selects how a channel's data port transfers bytes.
type AccessMode uint8

// Access modes, as encoded in bits 4-5 of the mode register.
const (
	AccessLatch AccessMode = iota
	AccessLow
	AccessHigh
	AccessToggle
)

// Channel is one 16-bit counter.
type Channel struct {
	// Reload is the value last written to the channel.
	Reload uint16
	// Effective is Reload with 0 meaning 65536.
	Effective uint32
	// Counter counts down at a tenth of the PIT tick rate.
	Counter uint16
	// Mode is the byte access mode.
	Mode AccessMode
	// Active is set once the channel has been loaded.
	Active bool
	// Frequency is InputHz/Effective, truncated to three decimals.
	Frequency float64

	flip bool
}

// Timer is the three-channel PIT.
type Timer struct {
	channels [NumChannels]Channel

	onReload func(channel int, hz float64)
}

// New creates a timer with every channel idle.
func New() *Timer {
	return &Timer{}
}

// OnReload registers a callback run whenever a channel's reload changes.
// It receives the exact output rate. The scheduler uses it to retune the
// IRQ0 interval.
func (t *Timer) OnReload(f func(channel int, hz float64)) {
	t.onReload = f
}

// Channel returns a copy of a channel's state.
func (t *Timer) Channel(i int) Channel {
	return t.channels[i]
}

// Active reports whether channel i has been programmed.
func (t *Timer) Active(i int) bool {
	return t.channels[i].Active
}

// Frequency returns channel i's output frequency in Hz.
func (t *Timer) Frequency(i int) float64 {
	return t.channels[i].Frequency
}

// Step decrements every active counter by 10, reloading counters that
// would underflow. It runs at a tenth of the input clock.
func (t *Timer) Step() {
	for i := range t.channels {
		ch := &t.channels[i]
		if !ch.Active {
			continue
		}
		if ch.Counter < 10 {
			ch.Counter = ch.Reload
		}
		ch.Counter -= 10
	}
}

// ReadPort implements ports.Handler.
func (t *Timer) ReadPort(port uint16) (byte, bool) {
	idx := int(port & 3)
	if idx == 3 {
		return 0, true
	}

	ch := &t.channels[idx]
	high := ch.Mode == AccessHigh || (ch.Mode == AccessToggle && ch.flip)
	if ch.Mode == AccessLatch || ch.Mode == AccessToggle {
		ch.flip = !ch.flip
	}

	if high {
		return byte(ch.Counter >> 8), true
	}
	return byte(ch.Counter), true
}

// WritePort implements ports.Handler.
func (t *Timer) WritePort(port uint16, value byte) {
	idx := int(port & 3)
	if idx == 3 {
		t.writeMode(value)
		return
	}
	t.writeData(idx, value)
}

func (t *Timer) writeMode(value byte) {
	idx := int(value >> 6)
	if idx >= NumChannels {
		// Read-back command; not present on the 8253.
		return
	}

	ch := &t.channels[idx]
	ch.Mode = AccessMode((value >> 4) & 3)
	if ch.Mode == AccessToggle {
		ch.flip = false
	}
}

func (t *Timer) writeData(idx int, value byte) {
	ch := &t.channels[idx]

	high := ch.Mode == AccessHigh || (ch.Mode == AccessToggle && ch.flip)
	if high {
		ch.Reload = ch.Reload&0x00FF | uint16(value)<<8
	} else {
		ch.Reload = ch.Reload&0xFF00 | uint16(value)
	}

	ch.Effective = uint32(ch.Reload)
	if ch.Effective == 0 {
		ch.Effective = 65536
	}
	ch.Active = true

	if ch.Mode == AccessToggle {
		ch.flip = !ch.flip
	}

	ch.Frequency = math.Trunc(InputHz/float64(ch.Effective)*1000) / 1000

	if t.onReload != nil {
		t.onReload(idx, InputHz/float64(ch.Effective))
	}
}
