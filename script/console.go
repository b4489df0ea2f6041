// Package script provides a Lua debugging console for a running machine.
//
// The console exposes these globals:
//
//	peek(addr) peekw(addr) poke(addr, v)   physical memory
//	regs() setreg(name, v)                 CPU registers
//	step([n])                              execute n slots, default 1
//	irq(line)                              raise a hardware interrupt
//	inb(port) outb(port, v)                port I/O
//	brk(seg, off) unbrk(seg, off)          execution breakpoints
//	disasm(seg, off [, n])                 disassemble n instructions
//	screen()                               text mode contents
package script

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/sarchlab/x86sim/emu"
	"github.com/sarchlab/x86sim/machine"
	"github.com/sarchlab/x86sim/memory"
)

// Prompt is printed before each REPL line.
const Prompt = "x86> "

// Console is a Lua interpreter bound to one machine. It is not safe for
// concurrent use and must not run while the machine's Run loop is active.
type Console struct {
	m   *machine.Machine
	L   *lua.LState
	out io.Writer
}

// New creates a console on m that prints to out.
func New(m *machine.Machine, out io.Writer) *Console {
	c := &Console{m: m, L: lua.NewState(), out: out}

	funcs := map[string]lua.LGFunction{
		"print":  c.print,
		"peek":   c.peek,
		"peekw":  c.peekw,
		"poke":   c.poke,
		"regs":   c.regs,
		"setreg": c.setreg,
		"step":   c.step,
		"irq":    c.irq,
		"inb":    c.inb,
		"outb":   c.outb,
		"brk":    c.brk,
		"unbrk":  c.unbrk,
		"disasm": c.disasm,
		"screen": c.screen,
	}
	for name, fn := range funcs {
		c.L.SetGlobal(name, c.L.NewFunction(fn))
	}

	return c
}

// Close releases the interpreter.
func (c *Console) Close() {
	c.L.Close()
}

// Exec runs a chunk of Lua source.
func (c *Console) Exec(src string) error {
	if err := c.L.DoString(src); err != nil {
		return fmt.Errorf("failed to run lua chunk: %w", err)
	}
	return nil
}

// RunFile runs a Lua script file.
func (c *Console) RunFile(path string) error {
	if err := c.L.DoFile(path); err != nil {
		return fmt.Errorf("failed to run lua script %s: %w", path, err)
	}
	return nil
}

// REPL reads lines from r and runs each as a chunk until r is exhausted.
// A line that is an expression has its value printed. Errors are reported
// and do not end the session.
func (c *Console) REPL(r io.Reader) error {
	sc := bufio.NewScanner(r)
	fmt.Fprint(c.out, Prompt)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			c.evalLine(line)
		}
		fmt.Fprint(c.out, Prompt)
	}
	fmt.Fprintln(c.out)
	return sc.Err()
}

func (c *Console) evalLine(line string) {
	if err := c.L.DoString("print(" + line + ")"); err == nil {
		return
	}
	if err := c.L.DoString(line); err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
}

func (c *Console) print(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.Get(i + 1).String()
	}
	fmt.Fprintln(c.out, strings.Join(parts, "\t"))
	return 0
}

func (c *Console) peek(L *lua.LState) int {
	addr := uint32(L.CheckInt64(1))
	L.Push(lua.LNumber(c.m.Memory().Peek(addr)))
	return 1
}

func (c *Console) peekw(L *lua.LState) int {
	addr := uint32(L.CheckInt64(1))
	mem := c.m.Memory()
	L.Push(lua.LNumber(uint16(mem.Peek(addr)) | uint16(mem.Peek(addr+1))<<8))
	return 1
}

func (c *Console) poke(L *lua.LState) int {
	addr := uint32(L.CheckInt64(1))
	c.m.Memory().Poke(addr, byte(L.CheckInt(2)))
	return 0
}

// register returns a pointer to the named 16-bit register.
func register(r *emu.RegFile, name string) (*uint16, bool) {
	switch strings.ToLower(name) {
	case "ax":
		return &r.R[emu.AX], true
	case "bx":
		return &r.R[emu.BX], true
	case "cx":
		return &r.R[emu.CX], true
	case "dx":
		return &r.R[emu.DX], true
	case "sp":
		return &r.R[emu.SP], true
	case "bp":
		return &r.R[emu.BP], true
	case "si":
		return &r.R[emu.SI], true
	case "di":
		return &r.R[emu.DI], true
	case "cs":
		return &r.Seg[emu.CS], true
	case "ds":
		return &r.Seg[emu.DS], true
	case "es":
		return &r.Seg[emu.ES], true
	case "ss":
		return &r.Seg[emu.SS], true
	case "ip":
		return &r.IP, true
	}
	return nil, false
}

var registerNames = []string{
	"ax", "bx", "cx", "dx", "sp", "bp", "si", "di",
	"cs", "ds", "es", "ss", "ip",
}

func (c *Console) regs(L *lua.LState) int {
	r := c.m.CPU().RegFile()
	t := L.NewTable()
	for _, name := range registerNames {
		p, _ := register(r, name)
		t.RawSetString(name, lua.LNumber(*p))
	}
	t.RawSetString("flags", lua.LNumber(r.Flags.Word()))
	L.Push(t)
	return 1
}

func (c *Console) setreg(L *lua.LState) int {
	name := L.CheckString(1)
	v := uint16(L.CheckInt(2))
	r := c.m.CPU().RegFile()

	if strings.EqualFold(name, "flags") {
		r.Flags.SetWord(v)
		return 0
	}
	p, ok := register(r, name)
	if !ok {
		L.ArgError(1, "unknown register "+name)
		return 0
	}
	*p = v
	return 0
}

func (c *Console) step(L *lua.LState) int {
	n := L.OptInt(1, 1)
	L.Push(lua.LNumber(c.m.Step(n)))
	return 1
}

func (c *Console) irq(L *lua.LState) int {
	line := L.CheckInt(1)
	if line < 0 || line > 7 {
		L.ArgError(1, "irq line must be in [0, 7]")
		return 0
	}
	c.m.PIC().DoIRQ(line)
	return 0
}

func (c *Console) inb(L *lua.LState) int {
	port := uint16(L.CheckInt(1))
	L.Push(lua.LNumber(c.m.Bus().InByte(port)))
	return 1
}

func (c *Console) outb(L *lua.LState) int {
	port := uint16(L.CheckInt(1))
	c.m.Bus().OutByte(port, byte(L.CheckInt(2)))
	return 0
}

func (c *Console) brk(L *lua.LState) int {
	c.m.CPU().AddBreakpoint(uint16(L.CheckInt(1)), uint16(L.CheckInt(2)))
	return 0
}

func (c *Console) unbrk(L *lua.LState) int {
	c.m.CPU().RemoveBreakpoint(uint16(L.CheckInt(1)), uint16(L.CheckInt(2)))
	return 0
}

func (c *Console) disasm(L *lua.LState) int {
	seg := uint16(L.CheckInt(1))
	off := uint16(L.CheckInt(2))
	n := L.OptInt(3, 1)

	var (
		sb   strings.Builder
		code [15]byte
	)
	mem := c.m.Memory()
	for i := 0; i < n; i++ {
		for j := range code {
			code[j] = mem.Peek(memory.Linear(seg, off+uint16(j)))
		}
		text, size := emu.Disassemble(code[:], off)
		fmt.Fprintf(&sb, "%04X:%04X  %s\n", seg, off, text)
		off += uint16(size)
	}

	L.Push(lua.LString(sb.String()))
	return 1
}

func (c *Console) screen(L *lua.LState) int {
	c.m.Render()
	t := c.m.Text()
	if !t.Text {
		L.Push(lua.LNil)
		return 1
	}

	var sb strings.Builder
	for row := 0; row < t.Rows; row++ {
		line := make([]byte, t.Cols)
		for col := range line {
			ch, _ := t.Cell(col, row)
			if ch < 0x20 || ch > 0x7E {
				ch = ' '
			}
			line[col] = ch
		}
		sb.WriteString(strings.TrimRight(string(line), " "))
		sb.WriteByte('\n')
	}

	L.Push(lua.LString(sb.String()))
	return 1
}
