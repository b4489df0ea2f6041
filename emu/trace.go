package emu

import (
	"fmt"
	"io"

	"golang.org/x/arch/x86/x86asm"
)

// maxInstLen is the longest 8086 instruction including prefixes.
const maxInstLen = 15

// Tracer writes one line per executed instruction: address, disassembly and
// the register state before execution.
type Tracer struct {
	w     io.Writer
	limit uint64
	count uint64
	buf   [maxInstLen]byte
}

// NewTracer creates a tracer writing to w. A limit of 0 traces without end.
func NewTracer(w io.Writer, limit uint64) *Tracer {
	return &Tracer{w: w, limit: limit}
}

// Count returns the number of instructions traced.
func (t *Tracer) Count() uint64 {
	return t.count
}

func (t *Tracer) trace(e *Emulator) {
	if t.limit > 0 && t.count >= t.limit {
		return
	}
	t.count++

	r := e.regFile
	cs, ip := r.Seg[CS], r.IP
	for i := range t.buf {
		t.buf[i] = e.lsu.Peek8(cs, ip+uint16(i))
	}
	text, _ := Disassemble(t.buf[:], ip)

	_, _ = fmt.Fprintf(t.w,
		"%04X:%04X  %-30s AX=%04X BX=%04X CX=%04X DX=%04X SP=%04X BP=%04X SI=%04X DI=%04X DS=%04X ES=%04X SS=%04X FL=%04X\n",
		cs, ip, text,
		r.R[AX], r.R[BX], r.R[CX], r.R[DX], r.R[SP], r.R[BP], r.R[SI], r.R[DI],
		r.Seg[DS], r.Seg[ES], r.Seg[SS], r.Flags.Word())
}

// Disassemble renders the instruction at the start of code in Intel syntax
// and returns its length. Undecodable bytes render as "(bad)" with length 1.
func Disassemble(code []byte, ip uint16) (string, int) {
	inst, err := x86asm.Decode(code, 16)
	if err != nil {
		return "(bad)", 1
	}
	return x86asm.IntelSyntax(inst, uint64(ip), nil), inst.Len
}
