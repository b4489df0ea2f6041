package emu

import "github.com/sarchlab/x86sim/insts"

// decodeModRM fetches a ModRM byte and its displacement and, for memory
// operands, computes the effective segment and offset.
func (e *Emulator) decodeModRM() {
	r := e.regFile
	e.modrm = insts.DecodeModRM(e.lsu.Fetch8())
	m := e.modrm
	if m.IsRegister() {
		return
	}

	var disp uint16
	switch m.DispSize() {
	case 1:
		disp = uint16(int16(int8(e.lsu.Fetch8())))
	case 2:
		disp = e.lsu.Fetch16()
	}

	var base uint16
	switch m.RM {
	case 0:
		base = r.R[BX] + r.R[SI]
	case 1:
		base = r.R[BX] + r.R[DI]
	case 2:
		base = r.R[BP] + r.R[SI]
	case 3:
		base = r.R[BP] + r.R[DI]
	case 4:
		base = r.R[SI]
	case 5:
		base = r.R[DI]
	case 6:
		if m.Mod != 0 {
			base = r.R[BP]
		}
	case 7:
		base = r.R[BX]
	}

	e.eaOff = base + disp
	e.eaSeg = e.seg(m.DefaultSegment())
}

func (e *Emulator) readRM8() byte {
	if e.modrm.IsRegister() {
		return e.regFile.Reg8(e.modrm.RM)
	}
	return e.lsu.Read8(e.eaSeg, e.eaOff)
}

func (e *Emulator) writeRM8(v byte) {
	if e.modrm.IsRegister() {
		e.regFile.SetReg8(e.modrm.RM, v)
		return
	}
	e.lsu.Write8(e.eaSeg, e.eaOff, v)
}

func (e *Emulator) readRM16() uint16 {
	if e.modrm.IsRegister() {
		return e.regFile.Reg16(e.modrm.RM)
	}
	return e.lsu.Read16(e.eaSeg, e.eaOff)
}

func (e *Emulator) writeRM16(v uint16) {
	if e.modrm.IsRegister() {
		e.regFile.SetReg16(e.modrm.RM, v)
		return
	}
	e.lsu.Write16(e.eaSeg, e.eaOff, v)
}

// readFar reads an offset:segment pair from the memory operand.
func (e *Emulator) readFar() (off, seg uint16) {
	return e.lsu.Read16(e.eaSeg, e.eaOff), e.lsu.Read16(e.eaSeg, e.eaOff+2)
}
