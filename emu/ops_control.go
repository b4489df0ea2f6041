package emu

import "github.com/sarchlab/x86sim/insts"

func opJcc(e *Emulator) {
	disp := e.lsu.Fetch8()
	if e.branchUnit.CheckCondition(insts.Cond(e.opcode & 0x0F)) {
		e.branchUnit.Jump8(disp)
	}
}

// opLoop handles LOOPNZ, LOOPZ, LOOP and JCXZ (0xE0-0xE3).
func opLoop(e *Emulator) {
	r := e.regFile
	disp := e.lsu.Fetch8()

	var taken bool
	switch e.opcode {
	case 0xE0:
		taken = e.branchUnit.Loop() && !r.Flags.ZF
	case 0xE1:
		taken = e.branchUnit.Loop() && r.Flags.ZF
	case 0xE2:
		taken = e.branchUnit.Loop()
	case 0xE3:
		taken = r.R[CX] == 0
	}
	if taken {
		e.branchUnit.Jump8(disp)
	}
}

func opCallNear(e *Emulator) {
	disp := e.lsu.Fetch16()
	e.lsu.Push(e.regFile.IP)
	e.branchUnit.Jump16(disp)
}

func opCallFar(e *Emulator) {
	r := e.regFile
	off := e.lsu.Fetch16()
	seg := e.lsu.Fetch16()
	e.lsu.Push(r.Seg[CS])
	e.lsu.Push(r.IP)
	r.Seg[CS] = seg
	r.IP = off
}

func opJmpNear(e *Emulator) {
	e.branchUnit.Jump16(e.lsu.Fetch16())
}

func opJmpShort(e *Emulator) {
	e.branchUnit.Jump8(e.lsu.Fetch8())
}

func opJmpFar(e *Emulator) {
	r := e.regFile
	off := e.lsu.Fetch16()
	seg := e.lsu.Fetch16()
	r.Seg[CS] = seg
	r.IP = off
}

// opRet handles near returns 0xC2/0xC3 and far returns 0xCA/0xCB.
func opRet(e *Emulator) {
	r := e.regFile
	var adjust uint16
	if e.opcode&1 == 0 {
		adjust = e.lsu.Fetch16()
	}
	r.IP = e.lsu.Pop()
	if e.opcode >= 0xCA {
		r.Seg[CS] = e.lsu.Pop()
	}
	r.R[SP] += adjust
}

func opInt3(e *Emulator) {
	e.IntCall(3)
}

func opInt(e *Emulator) {
	e.IntCall(e.lsu.Fetch8())
}

func opInto(e *Emulator) {
	if e.regFile.Flags.OF {
		e.IntCall(4)
	}
}

func opIret(e *Emulator) {
	r := e.regFile
	r.IP = e.lsu.Pop()
	r.Seg[CS] = e.lsu.Pop()
	r.Flags.SetWord(e.lsu.Pop())
}

func opBound(e *Emulator) {
	e.decodeModRM()
	idx := int16(e.regFile.Reg16(e.modrm.Reg))
	lo, hi := e.readFar()
	if idx < int16(lo) || idx > int16(hi) {
		e.IntCall(5)
	}
}

func opHLT(e *Emulator) {
	e.halted = true
}

// opFlag handles CMC and CLC/STC/CLI/STI/CLD/STD.
func opFlag(e *Emulator) {
	f := &e.regFile.Flags
	switch e.opcode {
	case 0xF5:
		f.CF = !f.CF
	case 0xF8:
		f.CF = false
	case 0xF9:
		f.CF = true
	case 0xFA:
		f.IF = false
	case 0xFB:
		f.IF = true
	case 0xFC:
		f.DF = false
	case 0xFD:
		f.DF = true
	}
}

// opIn handles IN AL/AX from an immediate port or DX.
func opIn(e *Emulator) {
	r := e.regFile
	var port uint16
	if e.opcode < 0xEC {
		port = uint16(e.lsu.Fetch8())
	} else {
		port = r.R[DX]
	}
	if e.opcode&1 == 0 {
		r.SetAL(e.io.InByte(port))
		return
	}
	lo := e.io.InByte(port)
	hi := e.io.InByte(port + 1)
	r.R[AX] = uint16(lo) | uint16(hi)<<8
}

// opOut handles OUT to an immediate port or DX.
func opOut(e *Emulator) {
	r := e.regFile
	var port uint16
	if e.opcode < 0xEC {
		port = uint16(e.lsu.Fetch8())
	} else {
		port = r.R[DX]
	}
	if e.opcode&1 == 0 {
		e.io.OutByte(port, r.AL())
		return
	}
	e.io.OutByte(port, r.AL())
	e.io.OutByte(port+1, r.AH())
}

// opEsc skips the operand of a coprocessor escape.
func opEsc(e *Emulator) {
	e.decodeModRM()
}

func opNop(*Emulator) {}

func opIllegal(e *Emulator) {
	e.illegal()
}
