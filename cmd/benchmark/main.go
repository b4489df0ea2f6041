// Command benchmark runs the x86sim microbenchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Example:
//
//	# Run all benchmarks on an 8086 and print JSON
//	go run ./cmd/benchmark --cpu 8086 --json
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/sarchlab/x86sim/benchmarks"
	"github.com/sarchlab/x86sim/config"
	"github.com/sarchlab/x86sim/emu"
)

type benchmarkCmd struct {
	CPU  string `name:"cpu" enum:"8086,186,v20" default:"v20" help:"CPU model."`
	JSON bool   `name:"json" help:"Print results as JSON."`
}

func main() {
	var cmd benchmarkCmd
	ctx := kong.Parse(&cmd, kong.Name("benchmark"))
	ctx.FatalIfErrorf(cmd.Run())
}

func (b *benchmarkCmd) Run() error {
	cfg := benchmarks.DefaultConfig()
	switch b.CPU {
	case config.CPU8086:
		cfg.Model = emu.Model8086
	case config.CPU186:
		cfg.Model = emu.Model186
	default:
		cfg.Model = emu.ModelV20
	}
	cfg.Output = os.Stdout

	harness := benchmarks.NewHarness(cfg)
	harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	results := harness.RunAll()

	if b.JSON {
		return harness.PrintJSON(results)
	}

	fmt.Printf("x86sim microbenchmarks (%s)\n\n", cfg.Model)
	harness.PrintResults(results)

	for _, r := range results {
		if !r.Passed {
			return fmt.Errorf("benchmark %s produced AX=%#04x", r.Name, r.AX)
		}
	}
	return nil
}
