package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/x86sim/config"
	"github.com/sarchlab/x86sim/machine"
)

// machineFlags overlay a machine configuration. Zero values leave the
// configuration untouched.
type machineFlags struct {
	Config string `short:"c" type:"existingfile" help:"Machine configuration JSON file."`

	BIOS     string `name:"bios" type:"path" help:"System BIOS image."`
	ROMBasic string `name:"rom-basic" type:"path" help:"ROM BASIC image."`
	VideoROM string `name:"video-rom" type:"path" help:"Video BIOS image."`
	Font     string `type:"path" help:"8x16 character bitmap."`

	FDA string `name:"fda" type:"path" help:"Floppy image for A:."`
	FDB string `name:"fdb" type:"path" help:"Floppy image for B:."`
	HDC string `name:"hdc" type:"path" help:"Hard disk image for C:."`
	HDD string `name:"hdd" type:"path" help:"Hard disk image for D:."`

	Boot  string `help:"Boot device: auto, a, b, c, d or basic."`
	CPU   string `name:"cpu" help:"CPU model: 8086, 186 or v20."`
	RAMKB int    `name:"ram" help:"Conventional RAM size in KiB (32-1024)."`
	Speed int    `default:"-1" help:"Instructions per second, 0 for unlimited."`

	NoAudio      bool `help:"Disable sound generation."`
	NoBlaster    bool `help:"Detach the Sound Blaster."`
	NoDirectDisk bool `help:"Leave INT 13h and 19h to the BIOS."`
	Threaded     bool `help:"Run the CPU on its own goroutine."`

	Trace      string `help:"Write an instruction trace to this file, or - for stderr."`
	TraceLimit uint64 `help:"Stop tracing after this many instructions."`
}

// parseBoot converts a boot device name to a BIOS drive number.
func parseBoot(s string) (int, error) {
	switch strings.ToLower(s) {
	case "auto":
		return config.BootAuto, nil
	case "a":
		return 0x00, nil
	case "b":
		return 0x01, nil
	case "c":
		return 0x80, nil
	case "d":
		return 0x81, nil
	case "basic":
		return config.BootROMBasic, nil
	}
	return 0, fmt.Errorf("unknown boot device %q", s)
}

// machineConfig loads the configuration file, if any, and applies the
// flags on top of it.
func (f *machineFlags) machineConfig() (*config.MachineConfig, error) {
	cfg := config.Default()
	if f.Config != "" {
		loaded, err := config.Load(f.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := f.apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (f *machineFlags) apply(cfg *config.MachineConfig) error {
	setPath := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setPath(&cfg.BIOSPath, f.BIOS)
	setPath(&cfg.ROMBasicPath, f.ROMBasic)
	setPath(&cfg.VideoROMPath, f.VideoROM)
	setPath(&cfg.FontPath, f.Font)
	for i, p := range []string{f.FDA, f.FDB, f.HDC, f.HDD} {
		setPath(&cfg.Drives[i], p)
	}

	if f.Boot != "" {
		drive, err := parseBoot(f.Boot)
		if err != nil {
			return err
		}
		cfg.BootDrive = drive
	}
	if f.CPU != "" {
		cfg.CPUModel = strings.ToLower(f.CPU)
	}
	if f.RAMKB > 0 {
		cfg.RAMSize = f.RAMKB * 1024
	}
	if f.Speed >= 0 {
		cfg.Speed = f.Speed
	}

	if f.NoAudio {
		cfg.EnableAudio = false
	}
	if f.NoBlaster {
		cfg.Blaster.Enabled = false
	}
	if f.NoDirectDisk {
		cfg.DirectDisk = false
	}
	if f.Threaded {
		cfg.SingleThreaded = false
	}
	return nil
}

// session is a machine and the files opened for it.
type session struct {
	m       *machine.Machine
	cfg     *config.MachineConfig
	closers []io.Closer
}

func (s *session) Close() error {
	var first error
	if err := s.m.Close(); err != nil {
		first = err
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// newSession builds a machine from the flags. audio, if set, receives the
// raw sample stream.
func (f *machineFlags) newSession(g *Globals, audio io.WriteCloser) (*session, error) {
	cfg, err := f.machineConfig()
	if err != nil {
		return nil, err
	}

	cfg.Clamp()
	s := &session{cfg: cfg}
	mc := machine.Config{
		Machine:    cfg,
		Logger:     g.Logger(),
		TraceLimit: f.TraceLimit,
	}
	if audio != nil {
		mc.AudioSink = audio
		s.closers = append(s.closers, audio)
	}

	switch f.Trace {
	case "":
	case "-":
		mc.Trace = os.Stderr
	default:
		tf, err := os.Create(f.Trace)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace file: %w", err)
		}
		mc.Trace = tf
		s.closers = append(s.closers, tf)
	}

	m, err := machine.New(mc)
	if err != nil {
		for _, c := range s.closers {
			_ = c.Close()
		}
		return nil, err
	}
	s.m = m
	return s, nil
}
