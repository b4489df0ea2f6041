// Package main runs a machine for a fixed number of instruction slots under
// the Go profiler to find emulator hot spots.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"
	"time"

	"github.com/alecthomas/kong"

	"github.com/sarchlab/x86sim/config"
	"github.com/sarchlab/x86sim/machine"
)

type profileCmd struct {
	Config     string        `arg:"" type:"existingfile" help:"Machine configuration JSON file."`
	CPUProfile string        `name:"cpuprofile" type:"path" help:"Write a CPU profile to this file."`
	MemProfile string        `name:"memprofile" type:"path" help:"Write a heap profile to this file."`
	MaxInstr   int           `name:"max-instr" default:"10000000" help:"Instruction slots to execute."`
	Duration   time.Duration `default:"30s" help:"Give up after this long."`
}

func main() {
	var cmd profileCmd
	ctx := kong.Parse(&cmd,
		kong.Name("x86prof"),
		kong.Description("Profile the emulator over a fixed workload."),
	)
	ctx.FatalIfErrorf(cmd.Run())
}

func (p *profileCmd) Run() error {
	cfg, err := config.Load(p.Config)
	if err != nil {
		return err
	}
	cfg.EnableAudio = false

	m, err := machine.New(machine.Config{
		Machine: cfg,
		Logger:  slog.New(slog.NewTextHandler(os.Stderr, nil)),
	})
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	if p.CPUProfile != "" {
		f, err := os.Create(p.CPUProfile)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	start := time.Now()
	deadline := start.Add(p.Duration)
	executed := 0
	for executed < p.MaxInstr && time.Now().Before(deadline) {
		n := m.Step(min(cfg.BatchSize, p.MaxInstr-executed))
		executed += n
		if n == 0 {
			break
		}
	}
	elapsed := time.Since(start)

	if p.MemProfile != "" {
		if err := writeHeapProfile(p.MemProfile); err != nil {
			return err
		}
	}

	fmt.Printf("Slots executed: %d\n", executed)
	fmt.Printf("Instructions retired: %d\n", m.CPU().InstructionCount())
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("Slots/second: %.0f\n", float64(executed)/elapsed.Seconds())
	}
	return nil
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create memory profile: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("failed to write memory profile: %w", err)
	}
	return nil
}
