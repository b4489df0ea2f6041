package audio

// Tone reports the output frequency of a timer channel.
type Tone interface {
	Frequency(channel int) float64
}

// speakerChannel is the PIT channel wired to the speaker.
const speakerChannel = 2

// speakerAmplitude is half the swing of the original square wave, since
// the speaker is mixed at half volume.
const speakerAmplitude = 16

// Speaker is the PC speaker: a square wave at the frequency of PIT
// channel 2, gated by port 0x61.
type Speaker struct {
	rate  int
	timer Tone
	gate  func() bool

	step uint64
}

// NewSpeaker creates a speaker sampled at rate Hz.
func NewSpeaker(rate int, timer Tone, gate func() bool) *Speaker {
	return &Speaker{rate: rate, timer: timer, gate: gate}
}

// Sample implements Source.
func (s *Speaker) Sample() int16 {
	if s.gate != nil && !s.gate() {
		return 0
	}
	freq := s.timer.Frequency(speakerChannel)
	if freq <= 0 {
		return 0
	}

	full := uint64(float64(s.rate) / freq)
	if full < 2 {
		full = 2
	}

	v := int16(speakerAmplitude)
	if s.step%full >= full/2 {
		v = -speakerAmplitude
	}
	s.step = (s.step + 1) % full
	return v
}
