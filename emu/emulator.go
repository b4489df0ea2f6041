// Package emu provides functional 8086/80186 emulation.
package emu

import (
	"sync/atomic"

	"github.com/sarchlab/x86sim/insts"
)

// TickInterval is the number of instruction slots between scheduler ticks.
const TickInterval = 16

// Model selects CPU-specific behaviour.
type Model uint8

// Supported CPU models.
const (
	// ModelV20 is the NEC V20: 80186 instructions, XLAT at 0xD6.
	ModelV20 Model = iota
	// Model8086 is the Intel 8086: POP CS, SALC, no 80186 instructions.
	Model8086
	// Model186 is the Intel 80186.
	Model186
)

// String returns the model name.
func (m Model) String() string {
	switch m {
	case Model8086:
		return "8086"
	case Model186:
		return "80186"
	}
	return "V20"
}

// StepResult represents the result of executing a single instruction slot.
type StepResult struct {
	// Halted is true if the CPU is waiting for an interrupt.
	Halted bool

	// Breakpoint is true if execution stopped in front of a breakpoint.
	Breakpoint bool
}

// Emulator executes 8086 instructions functionally.
type Emulator struct {
	regFile *RegFile
	memory  Memory
	io      IO
	pic     InterruptController
	ticker  Ticker
	hook    InterruptHook
	tracer  *Tracer

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	model       Model
	illegalTrap bool

	// Execution state
	running          atomic.Bool
	halted           bool
	trapToggle       bool
	slots            uint64
	instructionCount uint64

	breakpoints map[uint32]struct{}
	resumeAt    uint32
	resuming    bool

	// Per-instruction decode state
	opcode      byte
	instStart   uint16
	segOverride int
	rep         byte
	modrm       insts.ModRM
	eaSeg       uint16
	eaOff       uint16
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMemory sets the physical address space.
func WithMemory(m Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = m
	}
}

// WithIO sets the port address space.
func WithIO(io IO) EmulatorOption {
	return func(e *Emulator) {
		e.io = io
	}
}

// WithInterruptController sets the source of hardware interrupts.
func WithInterruptController(pic InterruptController) EmulatorOption {
	return func(e *Emulator) {
		e.pic = pic
	}
}

// WithScheduler sets the ticker serviced every TickInterval slots.
func WithScheduler(t Ticker) EmulatorOption {
	return func(e *Emulator) {
		e.ticker = t
	}
}

// WithInterruptHook installs an interrupt intercept.
func WithInterruptHook(hook InterruptHook) EmulatorOption {
	return func(e *Emulator) {
		e.hook = hook
	}
}

// WithCPUModel selects the CPU model. The default is ModelV20.
func WithCPUModel(m Model) EmulatorOption {
	return func(e *Emulator) {
		e.model = m
	}
}

// WithIllegalOpcodeTrap makes undefined opcodes raise interrupt 6. When
// disabled they execute as no-ops.
func WithIllegalOpcodeTrap(on bool) EmulatorOption {
	return func(e *Emulator) {
		e.illegalTrap = on
	}
}

// WithTracer logs every executed instruction.
func WithTracer(t *Tracer) EmulatorOption {
	return func(e *Emulator) {
		e.tracer = t
	}
}

// NewEmulator creates a new emulator. Without options it runs on a private
// 1 MiB memory with no devices attached.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	regFile := &RegFile{}

	e := &Emulator{
		regFile:     regFile,
		model:       ModelV20,
		segOverride: -1,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.memory == nil {
		e.memory = newFlatMemory()
	}
	if e.io == nil {
		e.io = nullIO{}
	}

	// Create execution units
	e.alu = NewALU(regFile)
	e.lsu = NewLoadStoreUnit(regFile, e.memory)
	e.branchUnit = NewBranchUnit(regFile)

	e.running.Store(true)
	e.Reset()

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() Memory {
	return e.memory
}

// IO returns the emulator's port space.
func (e *Emulator) IO() IO {
	return e.io
}

// Model returns the CPU model.
func (e *Emulator) Model() Model {
	return e.model
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// SetInterruptHook replaces the interrupt intercept.
func (e *Emulator) SetInterruptHook(hook InterruptHook) {
	e.hook = hook
}

// SetTracer replaces the instruction tracer. Nil disables tracing.
func (e *Emulator) SetTracer(t *Tracer) {
	e.tracer = t
}

// Reset puts the CPU at the power-on entry point FFFF:0000. Other registers
// keep their values.
func (e *Emulator) Reset() {
	e.regFile.Seg[CS] = 0xFFFF
	e.regFile.IP = 0
	e.halted = false
	e.trapToggle = false
}

// Halted reports whether the CPU is stopped at a HLT.
func (e *Emulator) Halted() bool {
	return e.halted
}

// Running reports whether the external running flag is set.
func (e *Emulator) Running() bool {
	return e.running.Load()
}

// SetRunning sets the external running flag.
func (e *Emulator) SetRunning(on bool) {
	e.running.Store(on)
}

// Stop clears the running flag. Exec86 returns after the current
// instruction. It is safe to call from another goroutine.
func (e *Emulator) Stop() {
	e.running.Store(false)
}

// AddBreakpoint stops Exec86 in front of the instruction at seg:off.
func (e *Emulator) AddBreakpoint(seg, off uint16) {
	if e.breakpoints == nil {
		e.breakpoints = make(map[uint32]struct{})
	}
	e.breakpoints[Linear(seg, off)] = struct{}{}
}

// RemoveBreakpoint deletes the breakpoint at seg:off.
func (e *Emulator) RemoveBreakpoint(seg, off uint16) {
	delete(e.breakpoints, Linear(seg, off))
}

// ClearBreakpoints deletes every breakpoint.
func (e *Emulator) ClearBreakpoints() {
	e.breakpoints = nil
}

// Exec86 executes up to n instruction slots and returns the number of
// slots used. It returns early when the running flag is cleared or a
// breakpoint is reached.
func (e *Emulator) Exec86(n int) int {
	for i := 0; i < n; i++ {
		if !e.running.Load() {
			return i
		}
		if res := e.Step(); res.Breakpoint {
			e.running.Store(false)
			return i
		}
	}
	return n
}

// Step executes one instruction slot: scheduler cadence, trap and hardware
// interrupt delivery, then one instruction unless the CPU is halted.
func (e *Emulator) Step() StepResult {
	r := e.regFile

	if e.ticker != nil && e.slots%TickInterval == 0 {
		e.ticker.Tick()
	}
	e.slots++

	if e.trapToggle {
		e.IntCall(1)
	}
	e.trapToggle = r.Flags.TF

	if !e.trapToggle && r.Flags.IF && e.pic != nil && e.pic.Pending() {
		e.halted = false
		e.IntCall(e.pic.NextIntr())
	}

	if e.halted {
		return StepResult{Halted: true}
	}

	resumed := false
	if e.breakpoints != nil {
		addr := Linear(r.Seg[CS], r.IP)
		if _, ok := e.breakpoints[addr]; ok {
			if !e.resuming || e.resumeAt != addr {
				e.resuming = true
				e.resumeAt = addr
				return StepResult{Breakpoint: true}
			}
			resumed = true
		}
		e.resuming = false
	}

	e.execute()

	// A repeated string instruction that left IP on itself has iterations
	// to go and stays resumed until it completes.
	if resumed && e.rep != 0 && r.IP == e.instStart &&
		Linear(r.Seg[CS], r.IP) == e.resumeAt {
		e.resuming = true
	}

	return StepResult{Halted: e.halted}
}

func (e *Emulator) execute() {
	r := e.regFile
	e.instStart = r.IP
	e.segOverride = -1
	e.rep = 0

	if e.tracer != nil {
		e.tracer.trace(e)
	}

	var op byte
	for n := 0; ; n++ {
		op = e.lsu.Fetch8()
		if n >= maxPrefixRun || !insts.IsPrefix(op) {
			break
		}
		if seg, ok := insts.SegmentPrefix(op); ok {
			e.segOverride = seg
		} else if op != insts.PrefixLock {
			e.rep = op
		}
	}

	if e.model == Model8086 {
		op = alias8086(op)
	}
	e.opcode = op
	dispatch[op](e)

	e.instructionCount++
}

const maxPrefixRun = 16

// alias8086 maps encodings that the 80186 redefined onto the instructions
// an 8086 decodes them as.
func alias8086(op byte) byte {
	switch {
	case op >= 0x60 && op <= 0x6F:
		return op | 0x10
	case op == 0xC0 || op == 0xC1 || op == 0xC8 || op == 0xC9:
		return op | 0x02
	}
	return op
}

// seg returns the override segment, or def when there is none.
func (e *Emulator) seg(def int) uint16 {
	if e.segOverride >= 0 {
		return e.regFile.Seg[e.segOverride]
	}
	return e.regFile.Seg[def]
}

// flagsWord returns FLAGS as pushed on the stack. Bits 12-15 read as 1.
func (e *Emulator) flagsWord() uint16 {
	return e.regFile.Flags.Word() | 0xF000
}

func (e *Emulator) illegal() {
	if e.illegalTrap {
		e.IntCall(6)
	}
}
