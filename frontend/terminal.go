package frontend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/sarchlab/x86sim/machine"
)

// ErrNotTerminal is returned when the console is not attached to a
// terminal.
var ErrNotTerminal = errors.New("stdin is not a terminal")

// refreshInterval is how often the terminal checks for a new frame.
const refreshInterval = 50 * time.Millisecond

// Terminal shows a machine's text screen on the controlling terminal and
// forwards keystrokes to its keyboard.
type Terminal struct {
	m   *machine.Machine
	in  *os.File
	out io.Writer

	fd       int
	oldState *term.State
	nonblock bool

	quit     chan struct{}
	quitOnce sync.Once
	done     chan struct{}
}

// NewTerminal creates a terminal front end on stdin and stdout.
func NewTerminal(m *machine.Machine) *Terminal {
	return &Terminal{
		m:    m,
		in:   os.Stdin,
		out:  os.Stdout,
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Quit is closed when the user presses the quit key.
func (t *Terminal) Quit() <-chan struct{} {
	return t.quit
}

// Start puts the terminal in raw mode and starts forwarding keys.
func (t *Terminal) Start() error {
	t.fd = int(t.in.Fd())
	if !term.IsTerminal(t.fd) {
		close(t.done)
		return ErrNotTerminal
	}

	old, err := term.MakeRaw(t.fd)
	if err != nil {
		close(t.done)
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	t.oldState = old

	if err := setNonblock(t.fd, true); err != nil {
		_ = term.Restore(t.fd, t.oldState)
		t.oldState = nil
		close(t.done)
		return fmt.Errorf("failed to set nonblocking stdin: %w", err)
	}
	t.nonblock = true

	_, _ = io.WriteString(t.out, "\x1b[2J")
	go t.readKeys()
	return nil
}

func (t *Terminal) readKeys() {
	defer close(t.done)
	buf := make([]byte, 64)
	kb := t.m.Keyboard()

	for {
		select {
		case <-t.quit:
			return
		default:
		}

		n, err := readNonblock(t.fd, buf)
		if n > 0 && FeedTerminal(kb, buf[:n]) {
			t.quitOnce.Do(func() { close(t.quit) })
			return
		}
		if n == 0 && err == nil {
			return
		}
		if err != nil && !errors.Is(err, errWouldBlock) {
			return
		}
		if n <= 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// Run redraws the screen whenever the machine publishes a new frame, until
// ctx is cancelled or the user quits.
func (t *Terminal) Run(ctx context.Context) error {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	var (
		seq  uint64
		prev []byte
		buf  bytes.Buffer
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.quit:
			return nil
		case <-ticker.C:
		}

		s := t.m.FrameSeq()
		if s == seq {
			continue
		}
		seq = s

		buf.Reset()
		if err := DrawText(&buf, t.m.Text()); err != nil {
			return err
		}
		if bytes.Equal(buf.Bytes(), prev) {
			continue
		}
		prev = append(prev[:0], buf.Bytes()...)
		if _, err := t.out.Write(buf.Bytes()); err != nil {
			// stdout shares stdin's non-blocking flag on a tty.
			if errors.Is(err, errWouldBlock) {
				prev = prev[:0]
				seq = 0
				continue
			}
			return fmt.Errorf("failed to draw screen: %w", err)
		}
	}
}

// Stop ends key forwarding and restores the terminal.
func (t *Terminal) Stop() {
	t.quitOnce.Do(func() { close(t.quit) })
	<-t.done

	if t.nonblock {
		_ = setNonblock(t.fd, false)
		t.nonblock = false
	}
	if t.oldState != nil {
		_ = term.Restore(t.fd, t.oldState)
		t.oldState = nil
	}
	_, _ = io.WriteString(t.out, "\x1b[0m\x1b[?25h\r\n")
}
