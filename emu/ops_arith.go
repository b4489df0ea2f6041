package emu

// opALU handles the six encodings of each group 1 operation in 0x00-0x3D.
func opALU(e *Emulator) {
	r := e.regFile
	op := int(e.opcode >> 3)

	switch e.opcode & 7 {
	case 0:
		e.decodeModRM()
		if res, wb := e.alu.Op8(op, e.readRM8(), r.Reg8(e.modrm.Reg)); wb {
			e.writeRM8(res)
		}
	case 1:
		e.decodeModRM()
		if res, wb := e.alu.Op16(op, e.readRM16(), r.Reg16(e.modrm.Reg)); wb {
			e.writeRM16(res)
		}
	case 2:
		e.decodeModRM()
		if res, wb := e.alu.Op8(op, r.Reg8(e.modrm.Reg), e.readRM8()); wb {
			r.SetReg8(e.modrm.Reg, res)
		}
	case 3:
		e.decodeModRM()
		if res, wb := e.alu.Op16(op, r.Reg16(e.modrm.Reg), e.readRM16()); wb {
			r.SetReg16(e.modrm.Reg, res)
		}
	case 4:
		if res, wb := e.alu.Op8(op, r.AL(), e.lsu.Fetch8()); wb {
			r.SetAL(res)
		}
	case 5:
		if res, wb := e.alu.Op16(op, r.R[AX], e.lsu.Fetch16()); wb {
			r.R[AX] = res
		}
	}
}

// opGroup1 handles 0x80-0x83: op r/m, imm.
func opGroup1(e *Emulator) {
	e.decodeModRM()
	op := int(e.modrm.Reg)

	switch e.opcode {
	case 0x80, 0x82:
		imm := e.lsu.Fetch8()
		if res, wb := e.alu.Op8(op, e.readRM8(), imm); wb {
			e.writeRM8(res)
		}
	case 0x81:
		imm := e.lsu.Fetch16()
		if res, wb := e.alu.Op16(op, e.readRM16(), imm); wb {
			e.writeRM16(res)
		}
	case 0x83:
		imm := uint16(int16(int8(e.lsu.Fetch8())))
		if res, wb := e.alu.Op16(op, e.readRM16(), imm); wb {
			e.writeRM16(res)
		}
	}
}

func opTestRM(e *Emulator) {
	e.decodeModRM()
	if e.opcode == 0x84 {
		e.alu.Logic8(e.readRM8() & e.regFile.Reg8(e.modrm.Reg))
		return
	}
	e.alu.Logic16(e.readRM16() & e.regFile.Reg16(e.modrm.Reg))
}

func opTestAcc(e *Emulator) {
	if e.opcode == 0xA8 {
		e.alu.Logic8(e.regFile.AL() & e.lsu.Fetch8())
		return
	}
	e.alu.Logic16(e.regFile.R[AX] & e.lsu.Fetch16())
}

func opIncReg(e *Emulator) {
	i := e.opcode & 7
	e.regFile.R[i] = e.alu.Inc16(e.regFile.R[i])
}

func opDecReg(e *Emulator) {
	i := e.opcode & 7
	e.regFile.R[i] = e.alu.Dec16(e.regFile.R[i])
}

// opGroup3Byte handles 0xF6: TEST/NOT/NEG/MUL/IMUL/DIV/IDIV r/m8.
func opGroup3Byte(e *Emulator) {
	e.decodeModRM()
	v := e.readRM8()

	switch e.modrm.Reg {
	case 0, 1:
		e.alu.Logic8(v & e.lsu.Fetch8())
	case 2:
		e.writeRM8(^v)
	case 3:
		e.writeRM8(e.alu.Neg8(v))
	case 4:
		e.mul8(v)
	case 5:
		e.imul8(v)
	case 6:
		e.div8(v)
	case 7:
		e.idiv8(v)
	}
}

// opGroup3Word handles 0xF7.
func opGroup3Word(e *Emulator) {
	e.decodeModRM()
	v := e.readRM16()

	switch e.modrm.Reg {
	case 0, 1:
		e.alu.Logic16(v & e.lsu.Fetch16())
	case 2:
		e.writeRM16(^v)
	case 3:
		e.writeRM16(e.alu.Neg16(v))
	case 4:
		e.mul16(v)
	case 5:
		e.imul16(v)
	case 6:
		e.div16(v)
	case 7:
		e.idiv16(v)
	}
}

// opGroup4 handles 0xFE: INC/DEC r/m8.
func opGroup4(e *Emulator) {
	e.decodeModRM()
	switch e.modrm.Reg {
	case 0:
		e.writeRM8(e.alu.Inc8(e.readRM8()))
	case 1:
		e.writeRM8(e.alu.Dec8(e.readRM8()))
	default:
		e.illegal()
	}
}

// opGroup5 handles 0xFF: INC/DEC/CALL/CALLF/JMP/JMPF/PUSH r/m16.
func opGroup5(e *Emulator) {
	r := e.regFile
	e.decodeModRM()

	switch e.modrm.Reg {
	case 0:
		e.writeRM16(e.alu.Inc16(e.readRM16()))
	case 1:
		e.writeRM16(e.alu.Dec16(e.readRM16()))
	case 2:
		target := e.readRM16()
		e.lsu.Push(r.IP)
		r.IP = target
	case 3:
		off, seg := e.readFar()
		e.lsu.Push(r.Seg[CS])
		e.lsu.Push(r.IP)
		r.Seg[CS] = seg
		r.IP = off
	case 4:
		r.IP = e.readRM16()
	case 5:
		off, seg := e.readFar()
		r.Seg[CS] = seg
		r.IP = off
	case 6:
		e.pushWord(e.readRM16())
	default:
		e.illegal()
	}
}

// opGroup2 handles the shift and rotate group: 0xC0/0xC1 by imm8, 0xD0/0xD1
// by one and 0xD2/0xD3 by CL.
func opGroup2(e *Emulator) {
	e.decodeModRM()

	var count byte
	switch e.opcode {
	case 0xC0, 0xC1:
		count = e.lsu.Fetch8()
	case 0xD0, 0xD1:
		count = 1
	default:
		count = e.regFile.Reg8(1)
	}
	if e.model != Model8086 {
		count &= 0x1F
	}

	op := int(e.modrm.Reg)
	if e.opcode&1 == 0 {
		e.writeRM8(e.alu.Shift8(op, e.readRM8(), count))
		return
	}
	e.writeRM16(e.alu.Shift16(op, e.readRM16(), count))
}

// opIMULImm handles 0x69 and 0x6B: reg16 = r/m16 * imm.
func opIMULImm(e *Emulator) {
	e.decodeModRM()
	var imm uint16
	if e.opcode == 0x69 {
		imm = e.lsu.Fetch16()
	} else {
		imm = uint16(int16(int8(e.lsu.Fetch8())))
	}
	e.regFile.SetReg16(e.modrm.Reg, e.imulImm(e.readRM16(), imm))
}

func opCBW(e *Emulator) {
	r := e.regFile
	r.R[AX] = uint16(int16(int8(r.AL())))
}

func opCWD(e *Emulator) {
	r := e.regFile
	if r.R[AX]&0x8000 != 0 {
		r.R[DX] = 0xFFFF
	} else {
		r.R[DX] = 0
	}
}

func opDAA(e *Emulator) { e.alu.DAA() }
func opDAS(e *Emulator) { e.alu.DAS() }
func opAAA(e *Emulator) { e.alu.AAA() }
func opAAS(e *Emulator) { e.alu.AAS() }

func opAAM(e *Emulator) {
	if !e.alu.AAM(e.lsu.Fetch8()) {
		e.IntCall(0)
	}
}

func opAAD(e *Emulator) {
	e.alu.AAD(e.lsu.Fetch8())
}
