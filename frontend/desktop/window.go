//go:build !headless

// Package desktop shows a machine in a native window with sound.
package desktop

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"

	"github.com/sarchlab/x86sim/frontend"
	"github.com/sarchlab/x86sim/machine"
)

// maxPaste bounds how many characters one paste types into the guest.
const maxPaste = 4096

// Window is an ebiten game that displays a machine's frames and forwards
// key presses.
type Window struct {
	m      *machine.Machine
	logger *slog.Logger
	done   <-chan struct{}

	scale         int
	screenshotDir string

	frame  *image.RGBA
	seq    uint64
	canvas *ebiten.Image

	clipboardOnce sync.Once
	clipboardOK   bool
}

// An Option configures a Window.
type Option func(*Window)

// WithScale sets the initial window scale factor.
func WithScale(n int) Option {
	return func(w *Window) {
		if n > 0 {
			w.scale = n
		}
	}
}

// WithScreenshotDir sets where Ctrl+Shift+S saves screenshots.
func WithScreenshotDir(dir string) Option {
	return func(w *Window) {
		w.screenshotDir = dir
	}
}

// WithLogger sets the window's logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Window) {
		w.logger = l
	}
}

// NewWindow creates a window for m. done is closed when the machine stops
// running, which closes the window.
func NewWindow(m *machine.Machine, done <-chan struct{}, opts ...Option) *Window {
	w := &Window{
		m:             m,
		logger:        slog.New(slog.DiscardHandler),
		done:          done,
		scale:         2,
		screenshotDir: ".",
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Show opens the window and blocks until it closes. It must be called on
// the main goroutine.
func (w *Window) Show(title string) error {
	w.frame, w.seq = w.m.Frame(w.frame)
	width, height := w.Layout(0, 0)

	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width*w.scale, height*w.scale)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("failed to run window: %w", err)
	}
	return nil
}

// Update forwards input and closes the window when the machine stops.
func (w *Window) Update() error {
	select {
	case <-w.done:
		return ebiten.Termination
	default:
	}
	if ebiten.IsWindowBeingClosed() {
		w.m.Stop()
		return ebiten.Termination
	}

	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	if ctrl && shift {
		if inpututil.IsKeyJustPressed(ebiten.KeyV) {
			w.paste()
			return nil
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyS) {
			w.screenshot()
			return nil
		}
	}

	kb := w.m.Keyboard()
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		if code, ok := keymap[k]; ok {
			kb.KeyDown(code)
		}
	}
	for _, k := range inpututil.AppendJustReleasedKeys(nil) {
		if code, ok := keymap[k]; ok {
			kb.KeyUp(code)
		}
	}
	return nil
}

func (w *Window) paste() {
	w.clipboardOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			w.logger.Warn("clipboard unavailable", "error", err)
			return
		}
		w.clipboardOK = true
	})
	if !w.clipboardOK {
		return
	}

	text := []rune(string(clipboard.Read(clipboard.FmtText)))
	if len(text) > maxPaste {
		text = text[:maxPaste]
	}
	kb := w.m.Keyboard()
	for _, r := range text {
		if r == '\n' {
			r = '\r'
		}
		kb.Type(r)
	}
}

func (w *Window) screenshot() {
	name := fmt.Sprintf("x86sim-%s.png", time.Now().Format("20060102-150405"))
	path := filepath.Join(w.screenshotDir, name)
	if err := frontend.SavePNG(path, w.frame, w.scale); err != nil {
		w.logger.Warn("screenshot failed", "error", err)
		return
	}
	w.logger.Info("screenshot saved", "path", path)
}

// Draw copies the machine's latest frame to the screen.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.m.FrameSeq() != w.seq {
		w.frame, w.seq = w.m.Frame(w.frame)
	}
	if w.frame == nil {
		return
	}

	b := w.frame.Bounds()
	if w.canvas == nil || w.canvas.Bounds().Size() != b.Size() {
		w.canvas = ebiten.NewImage(b.Dx(), b.Dy())
	}
	w.canvas.WritePixels(w.frame.Pix)
	screen.DrawImage(w.canvas, nil)
}

// Layout sizes the logical screen to the current frame.
func (w *Window) Layout(_, _ int) (int, int) {
	if w.frame == nil {
		return 640, 400
	}
	b := w.frame.Bounds()
	return b.Dx(), b.Dy()
}

// RunWindow runs m in the background and shows it in a window until the
// window closes or the machine stops. It returns the machine's Run error.
func RunWindow(ctx context.Context, m *machine.Machine, title string, opts ...Option) error {
	done := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		defer close(done)
		errc <- m.Run(ctx)
	}()

	w := NewWindow(m, done, opts...)
	werr := w.Show(title)
	m.Stop()
	<-done

	if err := <-errc; err != nil {
		return err
	}
	return werr
}
