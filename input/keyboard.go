// Package input feeds host key events to the emulated keyboard controller.
package input

import "sync"

// QueueSize is the number of scancode bytes the keyboard buffers.
const QueueSize = 1024

// Keyboard controller ports and the keyboard IRQ line.
const (
	dataPort    = 0x60
	statusPort  = 0x64
	outputFull  = 0x02
	keyboardIRQ = 1
)

// PortRAM is the port latch the controller publishes bytes through.
type PortRAM interface {
	PortRAM(port uint16) byte
	SetPortRAM(port uint16, value byte)
}

// IRQRaiser asserts an interrupt line.
type IRQRaiser interface {
	DoIRQ(line int)
}

// Keyboard queues set 1 scancodes and delivers them one byte per
// interrupt. Host goroutines may push keys concurrently with Tick.
type Keyboard struct {
	ports PortRAM
	pic   IRQRaiser

	mu      sync.Mutex
	queue   [QueueSize]byte
	head    int
	n       int
	waitAck bool
}

// New creates a keyboard delivering through ports and pic.
func New(ports PortRAM, pic IRQRaiser) *Keyboard {
	return &Keyboard{ports: ports, pic: pic}
}

func (k *Keyboard) push(b byte) {
	if k.n == QueueSize {
		return
	}
	k.queue[(k.head+k.n)%QueueSize] = b
	k.n++
}

// KeyDown queues a make code. Codes above 0xFF carry an extension prefix
// in the high byte.
func (k *Keyboard) KeyDown(code uint16) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if ext := byte(code >> 8); ext != 0 {
		k.push(ext)
	}
	k.push(byte(code))
}

// KeyUp queues a break code.
func (k *Keyboard) KeyUp(code uint16) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if ext := byte(code >> 8); ext != 0 {
		k.push(ext)
	}
	k.push(byte(code) | 0x80)
}

// Type queues a press and release of the key producing r, wrapped in left
// shift when needed. Runes with no key are ignored.
func (k *Keyboard) Type(r rune) bool {
	code, shift, ok := Lookup(r)
	if !ok {
		return false
	}
	if shift {
		k.KeyDown(LeftShift)
	}
	k.KeyDown(code)
	k.KeyUp(code)
	if shift {
		k.KeyUp(LeftShift)
	}
	return true
}

// Pending returns the number of queued bytes.
func (k *Keyboard) Pending() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.n
}

// Tick delivers the next queued byte to port 0x60 and raises IRQ 1, unless
// the previous byte has not been acknowledged.
func (k *Keyboard) Tick() {
	k.mu.Lock()
	if k.waitAck || k.n == 0 {
		k.mu.Unlock()
		return
	}
	b := k.queue[k.head]
	k.head = (k.head + 1) % QueueSize
	k.n--
	k.waitAck = true
	k.mu.Unlock()

	k.ports.SetPortRAM(dataPort, b)
	k.ports.SetPortRAM(statusPort, k.ports.PortRAM(statusPort)|outputFull)
	k.pic.DoIRQ(keyboardIRQ)
}

// Ack records that the interrupt controller received an EOI.
func (k *Keyboard) Ack() {
	k.mu.Lock()
	k.waitAck = false
	k.mu.Unlock()
}
