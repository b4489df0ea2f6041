// Package audio generates the PC's sound output: the PC speaker, the Disney
// Sound Source, and the Sound Blaster DSP, mixed into an 8-bit ring buffer.
package audio

import "sync"

// Source produces one signed sample per output tick.
type Source interface {
	Sample() int16
}

// Silence is the unsigned 8-bit sample value for zero amplitude.
const Silence = 0x80

// Mixer sums the attached sources into a ring buffer of unsigned 8-bit
// samples. Tick runs on the emulation goroutine; Read may be called from a
// host audio callback.
type Mixer struct {
	rate    int
	sources []Source

	mu   sync.Mutex
	buf  []byte
	head int
	n    int
}

// BufferSize returns the ring buffer length for a rate and latency.
func BufferSize(rate, latencyMS int) int {
	size := rate / 1000 * latencyMS
	if size < 1 {
		size = 1
	}
	return size
}

// NewMixer creates a mixer whose buffer holds latencyMS of audio. The
// buffer starts full of silence.
func NewMixer(rate, latencyMS int) *Mixer {
	m := &Mixer{
		rate: rate,
		buf:  make([]byte, BufferSize(rate, latencyMS)),
	}
	for i := range m.buf {
		m.buf[i] = Silence
	}
	m.n = len(m.buf)
	return m
}

// Rate returns the output sample rate in Hz.
func (m *Mixer) Rate() int {
	return m.rate
}

// Add attaches a source.
func (m *Mixer) Add(s Source) {
	m.sources = append(m.sources, s)
}

// Cap returns the ring buffer capacity in samples.
func (m *Mixer) Cap() int {
	return len(m.buf)
}

// Len returns the number of buffered samples.
func (m *Mixer) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.n
}

// Full reports whether the buffer has no room for another sample.
func (m *Mixer) Full() bool {
	return m.Len() == len(m.buf)
}

// Mix returns the current sum of all sources as an unsigned 8-bit sample.
func (m *Mixer) Mix() byte {
	var sum int32
	for _, s := range m.sources {
		sum += int32(s.Sample())
	}
	sum = max(-128, min(127, sum))
	return byte(sum + Silence)
}

// Tick appends one mixed sample unless the buffer is full.
func (m *Mixer) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.n == len(m.buf) {
		return
	}
	m.buf[(m.head+m.n)%len(m.buf)] = m.Mix()
	m.n++
}

// Read drains buffered samples into p. On underrun the remainder of p is
// filled with silence, so Read always returns len(p).
func (m *Mixer) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := 0
	for ; i < len(p) && m.n > 0; i++ {
		p[i] = m.buf[m.head]
		m.head = (m.head + 1) % len(m.buf)
		m.n--
	}
	for ; i < len(p); i++ {
		p[i] = Silence
	}
	return len(p), nil
}
