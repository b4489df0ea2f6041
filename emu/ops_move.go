package emu

func (e *Emulator) pushWord(v uint16) {
	e.lsu.Push(v)
}

func opMovRM(e *Emulator) {
	r := e.regFile
	e.decodeModRM()

	switch e.opcode {
	case 0x88:
		e.writeRM8(r.Reg8(e.modrm.Reg))
	case 0x89:
		e.writeRM16(r.Reg16(e.modrm.Reg))
	case 0x8A:
		r.SetReg8(e.modrm.Reg, e.readRM8())
	case 0x8B:
		r.SetReg16(e.modrm.Reg, e.readRM16())
	case 0x8C:
		e.writeRM16(r.Seg[e.modrm.Reg&3])
	case 0x8E:
		r.Seg[e.modrm.Reg&3] = e.readRM16()
	}
}

func opLEA(e *Emulator) {
	e.decodeModRM()
	e.regFile.SetReg16(e.modrm.Reg, e.eaOff)
}

// opLoadFar handles LES (0xC4) and LDS (0xC5).
func opLoadFar(e *Emulator) {
	r := e.regFile
	e.decodeModRM()
	off, seg := e.readFar()
	r.SetReg16(e.modrm.Reg, off)
	if e.opcode == 0xC4 {
		r.Seg[ES] = seg
	} else {
		r.Seg[DS] = seg
	}
}

func opMovRMImm(e *Emulator) {
	e.decodeModRM()
	if e.opcode == 0xC6 {
		e.writeRM8(e.lsu.Fetch8())
		return
	}
	e.writeRM16(e.lsu.Fetch16())
}

func opMovRegImm8(e *Emulator) {
	e.regFile.SetReg8(e.opcode&7, e.lsu.Fetch8())
}

func opMovRegImm16(e *Emulator) {
	e.regFile.R[e.opcode&7] = e.lsu.Fetch16()
}

// opMovMoffs handles 0xA0-0xA3: accumulator to or from a direct address.
func opMovMoffs(e *Emulator) {
	r := e.regFile
	off := e.lsu.Fetch16()
	seg := e.seg(DS)

	switch e.opcode {
	case 0xA0:
		r.SetAL(e.lsu.Read8(seg, off))
	case 0xA1:
		r.R[AX] = e.lsu.Read16(seg, off)
	case 0xA2:
		e.lsu.Write8(seg, off, r.AL())
	case 0xA3:
		e.lsu.Write16(seg, off, r.R[AX])
	}
}

func opXchgRM(e *Emulator) {
	r := e.regFile
	e.decodeModRM()
	if e.opcode == 0x86 {
		v := e.readRM8()
		e.writeRM8(r.Reg8(e.modrm.Reg))
		r.SetReg8(e.modrm.Reg, v)
		return
	}
	v := e.readRM16()
	e.writeRM16(r.Reg16(e.modrm.Reg))
	r.SetReg16(e.modrm.Reg, v)
}

func opXchgAX(e *Emulator) {
	r := e.regFile
	i := e.opcode & 7
	r.R[AX], r.R[i] = r.R[i], r.R[AX]
}

func opPushReg(e *Emulator) {
	r := e.regFile
	i := e.opcode & 7
	if i == SP && e.model == Model8086 {
		// The 8086 stores the already decremented SP.
		r.R[SP] -= 2
		e.lsu.Write16(r.Seg[SS], r.R[SP], r.R[SP])
		return
	}
	e.lsu.Push(r.R[i])
}

func opPopReg(e *Emulator) {
	v := e.lsu.Pop()
	e.regFile.R[e.opcode&7] = v
}

func opPushSeg(e *Emulator) {
	e.lsu.Push(e.regFile.Seg[e.opcode>>3&3])
}

// opPopSeg handles POP ES/SS/DS and, on the 8086, POP CS.
func opPopSeg(e *Emulator) {
	seg := e.opcode >> 3 & 3
	if seg == CS && e.model != Model8086 {
		e.illegal()
		return
	}
	e.regFile.Seg[seg] = e.lsu.Pop()
}

func opPopRM(e *Emulator) {
	e.decodeModRM()
	e.writeRM16(e.lsu.Pop())
}

func opPushImm(e *Emulator) {
	if e.opcode == 0x68 {
		e.lsu.Push(e.lsu.Fetch16())
		return
	}
	e.lsu.Push(uint16(int16(int8(e.lsu.Fetch8()))))
}

func opPushA(e *Emulator) {
	r := e.regFile
	sp := r.R[SP]
	for i := AX; i <= DI; i++ {
		if i == SP {
			e.lsu.Push(sp)
			continue
		}
		e.lsu.Push(r.R[i])
	}
}

func opPopA(e *Emulator) {
	r := e.regFile
	for i := DI; i >= AX; i-- {
		v := e.lsu.Pop()
		if i != SP {
			r.R[i] = v
		}
	}
}

func opEnter(e *Emulator) {
	r := e.regFile
	size := e.lsu.Fetch16()
	level := e.lsu.Fetch8() & 0x1F

	e.lsu.Push(r.R[BP])
	frame := r.R[SP]
	if level > 0 {
		for i := byte(1); i < level; i++ {
			r.R[BP] -= 2
			e.lsu.Push(e.lsu.Read16(r.Seg[SS], r.R[BP]))
		}
		e.lsu.Push(frame)
	}
	r.R[BP] = frame
	r.R[SP] -= size
}

func opLeave(e *Emulator) {
	r := e.regFile
	r.R[SP] = r.R[BP]
	r.R[BP] = e.lsu.Pop()
}

func opPushF(e *Emulator) {
	e.lsu.Push(e.flagsWord())
}

func opPopF(e *Emulator) {
	e.regFile.Flags.SetWord(e.lsu.Pop())
}

func opSAHF(e *Emulator) {
	r := e.regFile
	w := r.Flags.Word()&0xFF00 | uint16(r.AH())
	r.Flags.SetWord(w)
}

func opLAHF(e *Emulator) {
	r := e.regFile
	r.SetAH(byte(r.Flags.Word()))
}

func opXLAT(e *Emulator) {
	r := e.regFile
	r.SetAL(e.lsu.Read8(e.seg(DS), r.R[BX]+uint16(r.AL())))
}

// opSALC handles 0xD6: SALC on Intel parts, XLAT on the V20.
func opSALC(e *Emulator) {
	if e.model == ModelV20 {
		opXLAT(e)
		return
	}
	if e.regFile.Flags.CF {
		e.regFile.SetAL(0xFF)
	} else {
		e.regFile.SetAL(0)
	}
}
