// Package ports provides the 64K x86 I/O port space.
package ports

// NumPorts is the size of the I/O address space.
const NumPorts = 0x10000

// Keyboard controller and speaker gate ports handled by the bus itself.
const (
	KeyboardData   = 0x60
	SpeakerGate    = 0x61
	SystemControlC = 0x62
	KeyboardMode   = 0x63
	KeyboardStatus = 0x64
)

// Handler is a device attached to a range of ports.
type Handler interface {
	// ReadPort returns the value of the port and whether the device
	// recognised the port.
	ReadPort(port uint16) (byte, bool)

	// WritePort stores a value to the port.
	WritePort(port uint16, value byte)
}

// Funcs adapts a pair of functions to the Handler interface. Nil functions
// behave as an unrecognised port.
type Funcs struct {
	Read  func(port uint16) byte
	Write func(port uint16, value byte)
}

// ReadPort implements Handler.
func (f Funcs) ReadPort(port uint16) (byte, bool) {
	if f.Read == nil {
		return 0, false
	}
	return f.Read(port), true
}

// WritePort implements Handler.
func (f Funcs) WritePort(port uint16, value byte) {
	if f.Write != nil {
		f.Write(port, value)
	}
}

// Bus dispatches port I/O to registered handlers.
type Bus struct {
	handlers [NumPorts]Handler
	ram      [NumPorts]byte

	speakerEnabled bool
}

// NewBus creates an empty port bus.
func NewBus() *Bus {
	return &Bus{}
}

// SetPortRedirector assigns h to every port in [lo, hi]. A later
// registration replaces any earlier handler on overlapping ports.
func (b *Bus) SetPortRedirector(lo, hi uint16, h Handler) {
	for p := int(lo); p <= int(hi); p++ {
		b.handlers[p] = h
	}
}

// Handler returns the handler installed on port, or nil.
func (b *Bus) Handler(port uint16) Handler {
	return b.handlers[port]
}

// OutByte writes a byte to a port. The value is latched in port RAM before
// dispatch; writes to unhandled ports are otherwise dropped.
func (b *Bus) OutByte(port uint16, value byte) {
	b.ram[port] = value

	if port == SpeakerGate {
		b.speakerEnabled = value&3 == 3
		return
	}

	if h := b.handlers[port]; h != nil {
		h.WritePort(port, value)
	}
}

// InByte reads a byte from a port. Unhandled ports read 0xFF.
func (b *Bus) InByte(port uint16) byte {
	switch port {
	case SystemControlC:
		return 0x00
	case KeyboardData, SpeakerGate, KeyboardMode, KeyboardStatus:
		return b.ram[port]
	}

	if h := b.handlers[port]; h != nil {
		if v, ok := h.ReadPort(port); ok {
			return v
		}
	}

	return 0xFF
}

// OutWord writes the low byte to port and the high byte to port+1.
func (b *Bus) OutWord(port uint16, value uint16) {
	b.OutByte(port, byte(value))
	b.OutByte(port+1, byte(value>>8))
}

// InWord reads port and port+1 as a little-endian word.
func (b *Bus) InWord(port uint16) uint16 {
	return uint16(b.InByte(port)) | uint16(b.InByte(port+1))<<8
}

// PortRAM returns the last value written to a port.
func (b *Bus) PortRAM(port uint16) byte {
	return b.ram[port]
}

// SetPortRAM stores a value in port RAM without dispatching. Devices use it
// to publish values read back through the hardwired ports.
func (b *Bus) SetPortRAM(port uint16, value byte) {
	b.ram[port] = value
}

// SpeakerEnabled reports whether port 0x61 gates PIT channel 2 to the
// speaker.
func (b *Bus) SpeakerEnabled() bool {
	return b.speakerEnabled
}
