package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/x86sim/config"
	"github.com/sarchlab/x86sim/frontend"
	"github.com/sarchlab/x86sim/frontend/desktop"
	"github.com/sarchlab/x86sim/script"
)

type runCmd struct {
	machineFlags

	UI         string        `enum:"window,terminal,none" default:"window" help:"Front end: window, terminal or none."`
	Scale      int           `default:"2" help:"Window scale factor."`
	Script     string        `type:"existingfile" help:"Lua script to run before booting."`
	AudioDump  string        `type:"path" help:"Write raw unsigned 8-bit mono audio to this file."`
	Screenshot string        `type:"path" help:"Save the final screen as PNG when the machine stops."`
	Duration   time.Duration `help:"Stop the machine after this long."`
}

func (r *runCmd) Run(g *Globals) error {
	var dump io.WriteCloser
	if r.AudioDump != "" {
		f, err := os.Create(r.AudioDump)
		if err != nil {
			return fmt.Errorf("failed to create audio dump: %w", err)
		}
		dump = f
	}

	s, err := r.newSession(g, dump)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if r.Script != "" {
		c := script.New(s.m, os.Stdout)
		err := c.RunFile(r.Script)
		c.Close()
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if r.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Duration)
		defer cancel()
	}

	switch r.UI {
	case "window":
		err = r.runWindow(ctx, s, g, dump != nil)
	case "terminal":
		err = runTerminal(ctx, s)
	default:
		err = s.m.Run(ctx)
	}
	if err != nil {
		return err
	}

	if r.Screenshot != "" {
		if err := frontend.SavePNG(r.Screenshot, s.m.Render(), 1); err != nil {
			return err
		}
	}
	return nil
}

func (r *runCmd) runWindow(ctx context.Context, s *session, g *Globals, dumping bool) error {
	logger := g.Logger()
	cfg := s.cfg
	if cfg.EnableAudio && !dumping {
		p, err := desktop.NewAudioPlayer(s.m.Mixer(), cfg.SampleRate, cfg.LatencyMS)
		if err != nil {
			logger.Warn("running without sound", "error", err)
		} else {
			defer func() { _ = p.Close() }()
		}
	}

	return desktop.RunWindow(ctx, s.m, "x86sim",
		desktop.WithScale(r.Scale),
		desktop.WithLogger(logger),
	)
}

func runTerminal(ctx context.Context, s *session) error {
	t := frontend.NewTerminal(s.m)
	if err := t.Start(); err != nil {
		return err
	}
	defer t.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return s.m.Run(ctx)
	})
	g.Go(func() error {
		defer s.m.Stop()
		return t.Run(ctx)
	})
	return g.Wait()
}

type consoleCmd struct {
	machineFlags

	File string `arg:"" optional:"" type:"existingfile" help:"Lua script to run instead of reading commands from stdin."`
}

func (c *consoleCmd) Run(g *Globals) error {
	s, err := c.newSession(g, nil)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	con := script.New(s.m, os.Stdout)
	defer con.Close()

	if c.File != "" {
		return con.RunFile(c.File)
	}
	return con.REPL(os.Stdin)
}

type configCmd struct {
	machineFlags

	Output string `arg:"" type:"path" help:"File to write."`
}

func (c *configCmd) Run(_ *Globals) error {
	cfg, err := c.machineConfig()
	if err != nil {
		return err
	}
	cfg.Clamp()
	if err := cfg.Save(c.Output); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s (cpu %s, boot drive %s)\n",
		c.Output, cfg.CPUModel, bootName(cfg.BootDrive))
	return nil
}

// bootName is the inverse of parseBoot.
func bootName(drive int) string {
	switch drive {
	case config.BootAuto:
		return "auto"
	case config.BootROMBasic:
		return "basic"
	case 0x00:
		return "a"
	case 0x01:
		return "b"
	case 0x80:
		return "c"
	case 0x81:
		return "d"
	}
	return fmt.Sprintf("0x%02X", drive)
}
