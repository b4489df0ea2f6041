// Package benchmarks measures emulator throughput on small 8086 programs.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/x86sim/emu"
	"github.com/sarchlab/x86sim/memory"
	"github.com/sarchlab/x86sim/ports"
)

// Load addresses for every benchmark program.
const (
	CodeSegment = 0x0000
	CodeOffset  = 0x1000
	StackTop    = 0x7000
)

// Result holds the outcome of one benchmark run.
type Result struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Instructions is the number of instructions retired.
	Instructions uint64 `json:"instructions"`

	// AX is the accumulator when the program halted.
	AX uint16 `json:"ax"`

	// Passed is true if AX matched the expected value.
	Passed bool `json:"passed"`

	WallTime time.Duration `json:"wall_time_ns"`

	// MIPS is millions of instructions per wall second.
	MIPS float64 `json:"mips"`
}

// Benchmark is a self-contained program that ends in HLT.
type Benchmark struct {
	Name        string
	Description string

	// Program is 8086 machine code loaded at CodeSegment:CodeOffset.
	Program []byte

	// ExpectedAX is the accumulator value after a correct run.
	ExpectedAX uint16
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Model is the CPU model to run. Default: V20.
	Model emu.Model

	// MaxSlots aborts a program that has not halted after this many
	// instruction slots.
	MaxSlots int

	// Output is where to write results (default: os.Stdout)
	Output io.Writer
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Model:    emu.ModelV20,
		MaxSlots: 10_000_000,
		Output:   os.Stdout,
	}
}

// Harness runs benchmarks and collects their results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	return &Harness{config: config}
}

// AddBenchmarks queues benchmarks to run.
func (h *Harness) AddBenchmarks(b []Benchmark) {
	h.benchmarks = append(h.benchmarks, b...)
}

// RunAll runs every queued benchmark in order.
func (h *Harness) RunAll() []Result {
	results := make([]Result, 0, len(h.benchmarks))
	for _, b := range h.benchmarks {
		results = append(results, h.Run(b))
	}
	return results
}

// NewCPU returns a CPU on a fresh address space with b loaded and the
// registers pointed at it.
func NewCPU(b Benchmark, model emu.Model) *emu.Emulator {
	mem := memory.New()
	e := emu.NewEmulator(
		emu.WithMemory(mem),
		emu.WithIO(ports.NewBus()),
		emu.WithCPUModel(model),
	)

	base := memory.Linear(CodeSegment, CodeOffset)
	for i, v := range b.Program {
		mem.WriteByte(base+uint32(i), v)
	}

	r := e.RegFile()
	for _, s := range []int{emu.CS, emu.DS, emu.ES, emu.SS} {
		r.Seg[s] = CodeSegment
	}
	r.IP = CodeOffset
	r.R[emu.SP] = StackTop
	return e
}

// Run executes one benchmark until it halts.
func (h *Harness) Run(b Benchmark) Result {
	e := NewCPU(b, h.config.Model)

	start := time.Now()
	slots := 0
	for !e.Halted() && slots < h.config.MaxSlots {
		slots += e.Exec86(min(4096, h.config.MaxSlots-slots))
	}
	elapsed := time.Since(start)

	ax := e.RegFile().R[emu.AX]
	res := Result{
		Name:         b.Name,
		Description:  b.Description,
		Instructions: e.InstructionCount(),
		AX:           ax,
		Passed:       e.Halted() && ax == b.ExpectedAX,
		WallTime:     elapsed,
	}
	if elapsed > 0 {
		res.MIPS = float64(res.Instructions) / elapsed.Seconds() / 1e6
	}
	return res
}

// PrintResults writes a human readable table of results.
func (h *Harness) PrintResults(results []Result) {
	w := h.config.Output
	_, _ = fmt.Fprintf(w, "%-20s %12s %8s %10s %s\n", "benchmark", "insts", "ax", "mips", "status")
	for _, r := range results {
		status := "ok"
		if !r.Passed {
			status = "FAIL"
		}
		_, _ = fmt.Fprintf(w, "%-20s %12d %#08x %10.2f %s\n",
			r.Name, r.Instructions, r.AX, r.MIPS, status)
	}
}

// PrintJSON writes results as a JSON array.
func (h *Harness) PrintJSON(results []Result) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
