package emu

// Memory is the physical address space seen by the CPU.
type Memory interface {
	ReadByte(addr uint32) byte
	WriteByte(addr uint32, value byte)
}

// Peeker is implemented by memories that can be read without the side
// effects of ReadByte. Debug readers use it when available.
type Peeker interface {
	Peek(addr uint32) byte
}

// IO is the port address space.
type IO interface {
	InByte(port uint16) byte
	OutByte(port uint16, value byte)
}

// InterruptController supplies hardware interrupts.
type InterruptController interface {
	// Pending reports whether an unmasked request is waiting.
	Pending() bool
	// NextIntr acknowledges the highest priority request and returns its
	// vector.
	NextIntr() byte
}

// Ticker is serviced on a fixed instruction cadence.
type Ticker interface {
	Tick()
}

// InterruptHook intercepts software and hardware interrupts before they are
// vectored through the interrupt table. Returning true means the interrupt
// was fully handled.
type InterruptHook func(e *Emulator, vector byte) bool

type flatMemory struct {
	ram []byte
}

func newFlatMemory() *flatMemory {
	return &flatMemory{ram: make([]byte, 1<<20)}
}

func (m *flatMemory) ReadByte(addr uint32) byte {
	return m.ram[addr&0xFFFFF]
}

func (m *flatMemory) WriteByte(addr uint32, value byte) {
	m.ram[addr&0xFFFFF] = value
}

type nullIO struct{}

func (nullIO) InByte(uint16) byte    { return 0xFF }
func (nullIO) OutByte(uint16, byte) {}
