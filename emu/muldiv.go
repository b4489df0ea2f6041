package emu

func (e *Emulator) mul8(v byte) {
	r := e.regFile
	res := uint16(r.AL()) * uint16(v)
	r.R[AX] = res
	r.Flags.CF = res&0xFF00 != 0
	r.Flags.OF = r.Flags.CF
	e.alu.szp8(byte(res))
	if e.model == Model8086 {
		r.Flags.ZF = false
	}
}

func (e *Emulator) mul16(v uint16) {
	r := e.regFile
	res := uint32(r.R[AX]) * uint32(v)
	r.R[AX] = uint16(res)
	r.R[DX] = uint16(res >> 16)
	r.Flags.CF = r.R[DX] != 0
	r.Flags.OF = r.Flags.CF
	e.alu.szp16(uint16(res))
	if e.model == Model8086 {
		r.Flags.ZF = false
	}
}

func (e *Emulator) imul8(v byte) {
	r := e.regFile
	res := int16(int8(r.AL())) * int16(int8(v))
	r.R[AX] = uint16(res)
	r.Flags.CF = int16(int8(res)) != res
	r.Flags.OF = r.Flags.CF
	e.alu.szp8(byte(res))
	if e.model == Model8086 {
		r.Flags.ZF = false
	}
}

func (e *Emulator) imul16(v uint16) {
	r := e.regFile
	res := int32(int16(r.R[AX])) * int32(int16(v))
	r.R[AX] = uint16(res)
	r.R[DX] = uint16(uint32(res) >> 16)
	r.Flags.CF = int32(int16(res)) != res
	r.Flags.OF = r.Flags.CF
	e.alu.szp16(uint16(res))
	if e.model == Model8086 {
		r.Flags.ZF = false
	}
}

// imulImm multiplies two signed words for the three-operand IMUL forms.
func (e *Emulator) imulImm(x, y uint16) uint16 {
	r := e.regFile
	res := int32(int16(x)) * int32(int16(y))
	r.Flags.CF = int32(int16(res)) != res
	r.Flags.OF = r.Flags.CF
	e.alu.szp16(uint16(res))
	return uint16(res)
}

// Divides leave every register untouched when they fault.

func (e *Emulator) div8(v byte) {
	r := e.regFile
	if v == 0 {
		e.IntCall(0)
		return
	}
	q := r.R[AX] / uint16(v)
	if q > 0xFF {
		e.IntCall(0)
		return
	}
	rem := r.R[AX] % uint16(v)
	r.SetAL(byte(q))
	r.SetAH(byte(rem))
}

func (e *Emulator) idiv8(v byte) {
	r := e.regFile
	d := int32(int8(v))
	if d == 0 {
		e.IntCall(0)
		return
	}
	n := int32(int16(r.R[AX]))
	q := n / d
	if q < -128 || q > 127 {
		e.IntCall(0)
		return
	}
	rem := n % d
	r.SetAL(byte(q))
	r.SetAH(byte(rem))
}

func (e *Emulator) div16(v uint16) {
	r := e.regFile
	if v == 0 {
		e.IntCall(0)
		return
	}
	n := uint32(r.R[DX])<<16 | uint32(r.R[AX])
	q := n / uint32(v)
	if q > 0xFFFF {
		e.IntCall(0)
		return
	}
	r.R[AX] = uint16(q)
	r.R[DX] = uint16(n % uint32(v))
}

func (e *Emulator) idiv16(v uint16) {
	r := e.regFile
	d := int64(int16(v))
	if d == 0 {
		e.IntCall(0)
		return
	}
	n := int64(int32(uint32(r.R[DX])<<16 | uint32(r.R[AX])))
	q := n / d
	if q < -32768 || q > 32767 {
		e.IntCall(0)
		return
	}
	r.R[AX] = uint16(q)
	r.R[DX] = uint16(n % d)
}
