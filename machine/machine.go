// Package machine assembles a complete PC from the CPU, chipset, video,
// disk, audio and keyboard packages and runs it.
package machine

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"

	"github.com/sarchlab/x86sim/audio"
	"github.com/sarchlab/x86sim/config"
	"github.com/sarchlab/x86sim/devices/dma"
	"github.com/sarchlab/x86sim/devices/pic"
	"github.com/sarchlab/x86sim/devices/pit"
	"github.com/sarchlab/x86sim/disk"
	"github.com/sarchlab/x86sim/emu"
	"github.com/sarchlab/x86sim/input"
	"github.com/sarchlab/x86sim/loader"
	"github.com/sarchlab/x86sim/memory"
	"github.com/sarchlab/x86sim/ports"
	"github.com/sarchlab/x86sim/timing"
	"github.com/sarchlab/x86sim/video"
)

var (
	// ErrBIOSMissing is returned when the system BIOS cannot be loaded.
	ErrBIOSMissing = errors.New("bios image missing")
	// ErrFontMissing is returned when the character font cannot be loaded.
	ErrFontMissing = errors.New("font image missing")
	// ErrVideoROMMissing is returned when a small BIOS needs a video ROM
	// that cannot be loaded.
	ErrVideoROMMissing = errors.New("video rom missing")
)

// Fixed ROM locations.
const (
	romBasicAddr = 0xF6000
	videoROMAddr = 0xC0000
	// smallBIOS is the largest BIOS that relies on separate ROM BASIC and
	// video ROM images.
	smallBIOS = 8192
)

// DMA and port resources that are not configurable.
const (
	dmaPageFirst = 0x81
	dmaPageLast  = 0x87
	dmaRegsLast  = 0x0F
)

// Config holds everything New needs beyond the machine description.
type Config struct {
	// Machine describes the emulated PC. Nil means config.Default().
	Machine *config.MachineConfig

	// Logger receives machine, disk and sound card diagnostics. Nil
	// discards them.
	Logger *slog.Logger

	// Clock drives the device scheduler and the task manager. Nil uses
	// the system monotonic clock.
	Clock timing.Clock

	// Trace, if set, receives a disassembly line per executed instruction,
	// up to TraceLimit lines (0 is unlimited).
	Trace      io.Writer
	TraceLimit uint64

	// AudioSink, if set, receives the mixed unsigned 8-bit mono stream.
	AudioSink io.Writer
}

// Machine is one emulated PC.
type Machine struct {
	cfg    *config.MachineConfig
	logger *slog.Logger
	clock  timing.Clock

	mem      *memory.AddressSpace
	bus      *ports.Bus
	pic      *pic.Controller
	pit      *pit.Timer
	dma      *dma.Controller
	display  *video.Display
	renderer *video.Renderer
	disks    *disk.Manager
	keyboard *input.Keyboard
	mixer    *audio.Mixer
	blaster  *audio.Blaster
	source   *audio.SoundSource
	adlib    *audio.Adlib
	sched    *timing.Scheduler
	cpu      *emu.Emulator

	files     []*disk.FileImage
	bootDrive int
	audioSink io.Writer

	// mu serializes CPU batches with rendering when tasks run on separate
	// goroutines.
	mu sync.Mutex

	frameMu  sync.Mutex
	frame    *image.RGBA
	frameSeq uint64
	text     TextScreen
}

// New builds a machine, loads its ROMs and disk images and resets the CPU.
func New(c Config) (*Machine, error) {
	cfg := c.Machine
	if cfg == nil {
		cfg = config.Default()
	}
	cfg = cfg.Clone()
	cfg.Clamp()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid machine config: %w", err)
	}

	m := &Machine{
		cfg:       cfg,
		logger:    c.Logger,
		clock:     c.Clock,
		bootDrive: cfg.BootDrive,
		audioSink: c.AudioSink,
	}
	if m.logger == nil {
		m.logger = slog.New(slog.DiscardHandler)
	}
	if m.clock == nil {
		m.clock = timing.NewSystemClock()
	}

	font, err := loader.LoadFont(cfg.FontPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontMissing, err)
	}

	m.buildDevices(font)
	m.buildScheduler()
	m.buildCPU(c)

	if err := m.loadROMs(); err != nil {
		return nil, err
	}
	if err := m.insertDisks(); err != nil {
		_ = m.Close()
		return nil, err
	}
	m.resolveBootDrive()

	m.cpu.Reset()
	m.logger.Info("machine ready",
		"cpu", m.cpu.Model().String(),
		"boot_drive", m.bootDrive,
		"hard_disks", m.disks.HardDiskCount())

	return m, nil
}

func (m *Machine) buildDevices(font *video.Font) {
	cfg := m.cfg

	m.mem = memory.New(memory.WithSize(cfg.RAMSize))
	m.bus = ports.NewBus()

	m.pic = pic.New()
	m.bus.SetPortRedirector(pic.CommandPort, pic.DataPort, m.pic)

	m.pit = pit.New()
	m.bus.SetPortRedirector(pit.BasePort, pit.BasePort+3, m.pit)

	m.dma = dma.New(m.mem)
	m.bus.SetPortRedirector(0x00, dmaRegsLast, m.dma)
	m.bus.SetPortRedirector(dmaPageFirst, dmaPageLast, m.dma)

	m.display = video.New(m.mem)
	m.display.Attach(m.bus)
	m.mem.SetDisplay(m.display)
	m.renderer = video.NewRenderer(m.display, m.mem, font)

	m.disks = disk.NewManager(disk.WithLogger(m.logger))

	m.keyboard = input.New(m.bus, m.pic)
	m.pic.OnEOI(m.keyboard.Ack)

	m.mixer = audio.NewMixer(cfg.SampleRate, cfg.LatencyMS)
	m.mixer.Add(audio.NewSpeaker(cfg.SampleRate, m.pit, m.bus.SpeakerEnabled))

	if cfg.SoundSourcePort != 0 {
		m.source = audio.NewSoundSource(cfg.SoundSourcePort)
		m.source.Attach(m.bus)
		m.mixer.Add(m.source)
	}

	if cfg.AdlibPort != 0 {
		m.adlib = audio.NewAdlib(cfg.AdlibPort, timing.AdlibHz)
		m.adlib.Attach(m.bus)
		m.mixer.Add(m.adlib)
	}
}

func (m *Machine) buildScheduler() {
	cfg := m.cfg
	m.sched = timing.NewScheduler(m.clock)

	m.sched.Every("scanline", timing.ScanlineHz, m.display.Scanline)

	irq0 := m.sched.Every("irq0", 0, func() { m.pic.DoIRQ(0) })
	irq0.SetEnabled(false)
	m.pit.OnReload(func(channel int, hz float64) {
		if channel != 0 {
			return
		}
		irq0.SetRate(hz)
		irq0.SetEnabled(true)
	})

	m.sched.Every("pit", timing.PITStepHz, m.pit.Step)

	if m.source != nil {
		m.sched.Every("soundsource", timing.SoundSourceHz, m.source.Tick)
	}

	if m.adlib != nil {
		m.sched.Every("adlib", timing.AdlibHz, m.adlib.Tick)
	}

	if cfg.Blaster.Enabled {
		var ev *timing.Event
		m.blaster = audio.NewBlaster(cfg.Blaster.Port, cfg.Blaster.IRQ, cfg.Blaster.DMA,
			m.dma, m.pic,
			audio.WithBlasterLogger(m.logger),
			audio.WithRateListener(func(hz float64) { ev.SetRate(hz) }))
		ev = m.sched.Every("blaster", 0, m.blaster.Tick)
		m.blaster.Attach(m.bus)
		m.mixer.Add(m.blaster)
		if m.adlib != nil {
			m.adlib.AttachAt(m.bus, cfg.Blaster.Port+8)
		}
	}

	if cfg.EnableAudio {
		m.sched.Every("sample", float64(cfg.SampleRate), m.mixer.Tick)
	}
}

func cpuModel(name string) emu.Model {
	switch name {
	case config.CPU8086:
		return emu.Model8086
	case config.CPU186:
		return emu.Model186
	}
	return emu.ModelV20
}

func (m *Machine) buildCPU(c Config) {
	opts := []emu.EmulatorOption{
		emu.WithMemory(m.mem),
		emu.WithIO(m.bus),
		emu.WithInterruptController(m.pic),
		emu.WithScheduler(m.sched),
		emu.WithInterruptHook(m.interruptHook),
		emu.WithCPUModel(cpuModel(m.cfg.CPUModel)),
		emu.WithIllegalOpcodeTrap(m.cfg.IllegalOpcodeTrap),
	}
	if c.Trace != nil {
		opts = append(opts, emu.WithTracer(emu.NewTracer(c.Trace, c.TraceLimit)))
	}
	m.cpu = emu.NewEmulator(opts...)
}

func (m *Machine) loadROMs() error {
	bios, err := loader.LoadROM(m.cfg.BIOSPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBIOSMissing, err)
	}
	if err := m.mem.LoadImage(uint32(memory.DefaultSize-len(bios)), bios, true); err != nil {
		return fmt.Errorf("failed to load bios: %w", err)
	}
	m.logger.Info("bios loaded", "path", m.cfg.BIOSPath, "size", len(bios))

	if len(bios) > smallBIOS {
		return nil
	}

	if m.cfg.ROMBasicPath != "" {
		basic, err := loader.LoadROM(m.cfg.ROMBasicPath)
		if err != nil {
			m.logger.Warn("rom basic not loaded", "error", err)
		} else if err := m.mem.LoadImage(romBasicAddr, basic, false); err != nil {
			m.logger.Warn("rom basic not loaded", "error", err)
		}
	}

	if m.cfg.VideoROMPath == "" {
		return fmt.Errorf("%w: a %d byte bios needs one", ErrVideoROMMissing, len(bios))
	}
	vrom, err := loader.LoadROM(m.cfg.VideoROMPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVideoROMMissing, err)
	}
	if err := m.mem.LoadImage(videoROMAddr, vrom, true); err != nil {
		return fmt.Errorf("failed to load video rom: %w", err)
	}

	return nil
}

var driveNumbers = [4]byte{disk.DriveA, disk.DriveB, disk.DriveC, disk.DriveD}

func (m *Machine) insertDisks() error {
	for i, path := range m.cfg.Drives {
		if path == "" {
			continue
		}
		img, err := disk.OpenFile(path, false)
		if err != nil {
			return fmt.Errorf("failed to open drive %d image: %w", i, err)
		}
		if err := m.disks.Insert(driveNumbers[i], img); err != nil {
			_ = img.Close()
			return fmt.Errorf("failed to insert drive %d image: %w", i, err)
		}
		m.files = append(m.files, img)
	}
	m.mem.SetHardDiskCount(m.disks.HardDiskCount())
	return nil
}

func (m *Machine) resolveBootDrive() {
	if m.bootDrive != config.BootAuto {
		return
	}
	switch {
	case m.disks.Inserted(disk.DriveC):
		m.bootDrive = disk.DriveC
	case m.disks.Inserted(disk.DriveA):
		m.bootDrive = disk.DriveA
	default:
		m.bootDrive = config.BootROMBasic
	}
}

// InsertDisk places an image in a drive, replacing any disk already there.
func (m *Machine) InsertDisk(num byte, img disk.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.disks.Insert(num, img); err != nil {
		return err
	}
	m.mem.SetHardDiskCount(m.disks.HardDiskCount())
	return nil
}

// Close flushes cached disk writes and closes image files.
func (m *Machine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.disks.Flush()
	for _, f := range m.files {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	m.files = nil
	return err
}

// BootDrive returns the resolved boot drive, or config.BootROMBasic.
func (m *Machine) BootDrive() int { return m.bootDrive }

// CPU returns the processor.
func (m *Machine) CPU() *emu.Emulator { return m.cpu }

// Memory returns the physical address space.
func (m *Machine) Memory() *memory.AddressSpace { return m.mem }

// Bus returns the I/O port bus.
func (m *Machine) Bus() *ports.Bus { return m.bus }

// PIC returns the interrupt controller.
func (m *Machine) PIC() *pic.Controller { return m.pic }

// PIT returns the interval timer.
func (m *Machine) PIT() *pit.Timer { return m.pit }

// Display returns the video adapter.
func (m *Machine) Display() *video.Display { return m.display }

// Disks returns the drive manager.
func (m *Machine) Disks() *disk.Manager { return m.disks }

// Keyboard returns the keyboard controller. Its methods are safe to call
// while the machine runs.
func (m *Machine) Keyboard() *input.Keyboard { return m.keyboard }

// Mixer returns the audio mixer. Its Read method is safe to call while the
// machine runs.
func (m *Machine) Mixer() *audio.Mixer { return m.mixer }

// Scheduler returns the device scheduler.
func (m *Machine) Scheduler() *timing.Scheduler { return m.sched }
