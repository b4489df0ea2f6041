//go:build headless

// Package desktop shows a machine in a native window with sound. This build
// has no window or audio support.
package desktop

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/sarchlab/x86sim/machine"
)

// ErrHeadless is returned by every operation in a headless build.
var ErrHeadless = errors.New("built without window support")

// An Option configures a window.
type Option func()

// WithScale is ignored in headless builds.
func WithScale(int) Option { return func() {} }

// WithScreenshotDir is ignored in headless builds.
func WithScreenshotDir(string) Option { return func() {} }

// WithLogger is ignored in headless builds.
func WithLogger(*slog.Logger) Option { return func() {} }

// RunWindow always fails in headless builds.
func RunWindow(context.Context, *machine.Machine, string, ...Option) error {
	return ErrHeadless
}

// AudioPlayer is unavailable in headless builds.
type AudioPlayer struct{}

// NewAudioPlayer always fails in headless builds.
func NewAudioPlayer(io.Reader, int, int) (*AudioPlayer, error) {
	return nil, ErrHeadless
}

// Close does nothing.
func (*AudioPlayer) Close() error { return nil }
