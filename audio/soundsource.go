package audio

import "github.com/sarchlab/x86sim/ports"

// Disney Sound Source registers relative to the parallel port base.
const (
	ssData    = 0
	ssStatus  = 1
	ssControl = 2

	ssFIFOSize = 16
	ssFull     = 0x40
	ssStrobe   = 0x04
)

// SoundSource is the Disney Sound Source: a 16-byte FIFO on a parallel
// port drained at 8 kHz.
type SoundSource struct {
	base uint16

	fifo    [ssFIFOSize]byte
	n       int
	data    byte
	control byte
	current int16
}

// NewSoundSource creates a Sound Source on the parallel port at base.
func NewSoundSource(base uint16) *SoundSource {
	return &SoundSource{base: base}
}

// Attach registers the data, status and control ports.
func (s *SoundSource) Attach(bus *ports.Bus) {
	bus.SetPortRedirector(s.base, s.base+ssControl, s)
}

// Len returns the number of queued samples.
func (s *SoundSource) Len() int {
	return s.n
}

func (s *SoundSource) push(v byte) {
	if s.n == ssFIFOSize {
		return
	}
	s.fifo[s.n] = v
	s.n++
}

// ReadPort implements ports.Handler.
func (s *SoundSource) ReadPort(port uint16) (byte, bool) {
	switch port - s.base {
	case ssStatus:
		if s.n == ssFIFOSize {
			return ssFull, true
		}
		return 0, true
	case ssData:
		return s.data, true
	case ssControl:
		return s.control, true
	}
	return 0, false
}

// WritePort implements ports.Handler. Data bytes are queued directly and
// again on a rising strobe edge of the control port.
func (s *SoundSource) WritePort(port uint16, value byte) {
	switch port - s.base {
	case ssData:
		s.data = value
		s.push(value)
	case ssControl:
		if value&ssStrobe != 0 && s.control&ssStrobe == 0 {
			s.push(s.data)
		}
		s.control = value
	}
}

// Tick moves the oldest queued byte to the output.
func (s *SoundSource) Tick() {
	if s.n == 0 {
		s.current = 0
		return
	}
	s.current = int16(s.fifo[0]) - Silence
	copy(s.fifo[:], s.fifo[1:s.n])
	s.n--
}

// Sample implements Source.
func (s *SoundSource) Sample() int16 {
	return s.current
}
