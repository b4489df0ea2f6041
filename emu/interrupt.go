package emu

// IntCall raises interrupt vector. An installed InterruptHook may service
// it; otherwise FLAGS, CS and IP are pushed, CS:IP is loaded from the
// interrupt vector table and IF and TF are cleared.
func (e *Emulator) IntCall(vector byte) {
	if e.hook != nil && e.hook(e, vector) {
		return
	}
	e.Vector(vector)
}

// Vector performs the real-mode interrupt sequence without consulting the
// hook. Hooks use it to fall through to the BIOS handler.
func (e *Emulator) Vector(vector byte) {
	r := e.regFile
	e.lsu.Push(e.flagsWord())
	e.lsu.Push(r.Seg[CS])
	e.lsu.Push(r.IP)

	base := uint16(vector) * 4
	r.IP = e.lsu.Read16(0, base)
	r.Seg[CS] = e.lsu.Read16(0, base+2)
	r.Flags.IF = false
	r.Flags.TF = false
}

// Push pushes a word onto the stack.
func (e *Emulator) Push(v uint16) {
	e.lsu.Push(v)
}

// Pop pops a word from the stack.
func (e *Emulator) Pop() uint16 {
	return e.lsu.Pop()
}

// ReadByte reads the byte at seg:off.
func (e *Emulator) ReadByte(seg, off uint16) byte {
	return e.lsu.Read8(seg, off)
}

// WriteByte writes the byte at seg:off.
func (e *Emulator) WriteByte(seg, off uint16, v byte) {
	e.lsu.Write8(seg, off, v)
}

// ReadWord reads the word at seg:off.
func (e *Emulator) ReadWord(seg, off uint16) uint16 {
	return e.lsu.Read16(seg, off)
}

// WriteWord writes the word at seg:off.
func (e *Emulator) WriteWord(seg, off uint16, v uint16) {
	e.lsu.Write16(seg, off, v)
}
