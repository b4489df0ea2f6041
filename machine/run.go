package machine

import (
	"context"
	"image"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/x86sim/timing"
	"github.com/sarchlab/x86sim/video"
)

// Task cadences.
const (
	cursorBlinkInterval = 250 * time.Millisecond
	audioDrainInterval  = 10 * time.Millisecond
)

// TextScreen is a snapshot of the text mode screen.
type TextScreen struct {
	// Text is false while a graphics mode is active.
	Text bool
	Cols int
	Rows int
	// Cells holds character and attribute byte pairs, row by row.
	Cells []byte

	CursorCol int
	CursorRow int
}

// Cell returns the character and attribute at col, row.
func (t TextScreen) Cell(col, row int) (ch, attr byte) {
	i := (row*t.Cols + col) * 2
	if i < 0 || i+1 >= len(t.Cells) {
		return ' ', 0x07
	}
	return t.Cells[i], t.Cells[i+1]
}

// Step runs up to n instruction slots on the caller's goroutine and returns
// the number executed. It must not be called while Run is active.
func (m *Machine) Step(n int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cpu.SetRunning(true)
	m.keyboard.Tick()
	return m.cpu.Exec86(n)
}

// Stop makes Run return after the current instruction. It is safe to call
// from any goroutine.
func (m *Machine) Stop() {
	m.cpu.Stop()
}

// Run executes the machine until ctx is cancelled or the CPU is stopped.
// With SingleThreaded set every task shares the caller's goroutine;
// otherwise the CPU runs on its own goroutine and rendering and audio on
// another.
func (m *Machine) Run(ctx context.Context) error {
	m.sched.Init()
	m.cpu.SetRunning(true)
	m.publish()

	if m.cfg.SingleThreaded {
		tm := timing.NewTaskManager(m.clock)
		tm.Add("cpu", m.cpuTask)
		m.addHostTasks(tm)
		return m.loop(ctx, tm)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		tm := timing.NewTaskManager(m.clock)
		tm.Add("cpu", m.cpuTask)
		return m.loop(ctx, tm)
	})
	g.Go(func() error {
		tm := timing.NewTaskManager(m.clock)
		m.addHostTasks(tm)
		return m.loop(ctx, tm)
	})

	return g.Wait()
}

func (m *Machine) addHostTasks(tm *timing.TaskManager) {
	tm.Add("render", m.renderTask)
	tm.Add("cursor", m.cursorTask)
	if m.audioSink != nil && m.cfg.EnableAudio {
		tm.Add("audio", m.audioTask)
	}
}

func (m *Machine) loop(ctx context.Context, tm *timing.TaskManager) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		if ctx.Err() != nil || !m.cpu.Running() {
			return nil
		}

		delay := tm.Update()
		if delay <= 0 {
			continue
		}

		timer.Reset(delay)
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}
}

func (m *Machine) ticksToDuration(ticks uint64) time.Duration {
	return time.Duration(ticks * uint64(time.Second) / m.clock.HostFreq())
}

// cpuTask runs one batch of instructions. With a speed limit it asks to be
// rescheduled once the batch's share of wall time has passed.
func (m *Machine) cpuTask() time.Duration {
	start := m.clock.Ticks()

	m.mu.Lock()
	m.keyboard.Tick()
	n := m.cpu.Exec86(m.cfg.BatchSize)
	m.mu.Unlock()

	if m.cfg.Speed <= 0 {
		return 0
	}
	want := time.Duration(n) * time.Second / time.Duration(m.cfg.Speed)
	spent := m.ticksToDuration(m.clock.Ticks() - start)
	if spent >= want {
		return 0
	}
	return want - spent
}

func (m *Machine) renderTask() time.Duration {
	m.mu.Lock()
	dirty := m.display.TakeDirty()
	m.mu.Unlock()

	if dirty {
		m.publish()
	}
	return time.Duration(m.cfg.FrameDelayMS) * time.Millisecond
}

func (m *Machine) cursorTask() time.Duration {
	m.mu.Lock()
	m.display.BlinkCursor()
	m.mu.Unlock()
	return cursorBlinkInterval
}

func (m *Machine) audioTask() time.Duration {
	n := m.mixer.Len()
	if n == 0 || m.audioSink == nil {
		return audioDrainInterval
	}
	buf := make([]byte, n)
	_, _ = m.mixer.Read(buf)
	if _, err := m.audioSink.Write(buf); err != nil {
		m.logger.Warn("audio sink failed, dropping audio", "error", err)
		m.audioSink = nil
	}
	return audioDrainInterval
}

// publish renders the screen and makes the result available to Frame and
// Text.
func (m *Machine) publish() {
	m.mu.Lock()
	img := m.renderer.Render()
	text := m.snapshotText()
	m.mu.Unlock()

	m.frameMu.Lock()
	defer m.frameMu.Unlock()
	if m.frame == nil || m.frame.Rect != img.Rect {
		m.frame = image.NewRGBA(img.Rect)
	}
	copy(m.frame.Pix, img.Pix)
	m.text = text
	m.frameSeq++
}

func (m *Machine) snapshotText() TextScreen {
	mode := m.display.Mode()
	t := TextScreen{Text: !mode.Graphics(), Cols: mode.Cols, Rows: mode.Rows}
	if !t.Text {
		return t
	}

	t.Cells = make([]byte, mode.Cols*mode.Rows*2)
	for i := range t.Cells {
		t.Cells[i] = m.mem.Peek(video.TextBase + uint32(i))
	}
	t.CursorCol, t.CursorRow = m.display.Cursor()
	return t
}

// Frame copies the latest rendered frame into dst, allocating a new image
// when dst is nil or the wrong size, and returns it with the frame's
// sequence number. The sequence is zero before the first frame.
func (m *Machine) Frame(dst *image.RGBA) (*image.RGBA, uint64) {
	m.frameMu.Lock()
	defer m.frameMu.Unlock()

	if m.frame == nil {
		return dst, 0
	}
	if dst == nil || dst.Rect != m.frame.Rect {
		dst = image.NewRGBA(m.frame.Rect)
	}
	copy(dst.Pix, m.frame.Pix)
	return dst, m.frameSeq
}

// FrameSeq returns the sequence number of the latest frame.
func (m *Machine) FrameSeq() uint64 {
	m.frameMu.Lock()
	defer m.frameMu.Unlock()
	return m.frameSeq
}

// Text returns the text screen captured with the latest frame.
func (m *Machine) Text() TextScreen {
	m.frameMu.Lock()
	defer m.frameMu.Unlock()
	return m.text
}

// Render draws the current screen immediately and publishes it. It must
// not be called while Run is active.
func (m *Machine) Render() *image.RGBA {
	m.publish()
	img, _ := m.Frame(nil)
	return img
}
