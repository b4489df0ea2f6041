//go:build !headless

package desktop

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// AudioPlayer plays unsigned 8-bit mono samples from a reader, normally a
// machine's mixer.
type AudioPlayer struct {
	ctx    *oto.Context
	player *oto.Player
}

// NewAudioPlayer opens the host audio device at rate Hz and starts playing
// from src.
func NewAudioPlayer(src io.Reader, rate, latencyMS int) (*AudioPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 1,
		Format:       oto.FormatUnsignedInt8,
		BufferSize:   time.Duration(latencyMS) * time.Millisecond,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	p := &AudioPlayer{ctx: ctx, player: ctx.NewPlayer(src)}
	p.player.Play()
	return p, nil
}

// Close stops playback.
func (p *AudioPlayer) Close() error {
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("failed to close audio player: %w", err)
	}
	return nil
}
