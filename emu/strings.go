package emu

import "github.com/sarchlab/x86sim/insts"

// repeat runs one iteration of a string instruction. Under a REP prefix
// each iteration takes one instruction slot: IP is moved back to the
// prefix while CX and, for compares, ZF allow another pass.
func (e *Emulator) repeat(compare bool, body func()) {
	if e.rep == 0 {
		body()
		return
	}

	r := e.regFile
	if r.R[CX] == 0 {
		return
	}
	body()
	r.R[CX]--

	if compare {
		if e.rep == insts.PrefixRep && !r.Flags.ZF {
			return
		}
		if e.rep == insts.PrefixRepNE && r.Flags.ZF {
			return
		}
	}
	if r.R[CX] != 0 {
		r.IP = e.instStart
	}
}

func (e *Emulator) stringStep(size uint16) uint16 {
	if e.regFile.Flags.DF {
		return -size
	}
	return size
}

func opMovs(e *Emulator) {
	r := e.regFile
	e.repeat(false, func() {
		if e.opcode == 0xA4 {
			e.lsu.Write8(r.Seg[ES], r.R[DI], e.lsu.Read8(e.seg(DS), r.R[SI]))
		} else {
			e.lsu.Write16(r.Seg[ES], r.R[DI], e.lsu.Read16(e.seg(DS), r.R[SI]))
		}
		step := e.stringStep(uint16(e.opcode&1) + 1)
		r.R[SI] += step
		r.R[DI] += step
	})
}

func opCmps(e *Emulator) {
	r := e.regFile
	e.repeat(true, func() {
		if e.opcode == 0xA6 {
			e.alu.Sub8(e.lsu.Read8(e.seg(DS), r.R[SI]), e.lsu.Read8(r.Seg[ES], r.R[DI]), false)
		} else {
			e.alu.Sub16(e.lsu.Read16(e.seg(DS), r.R[SI]), e.lsu.Read16(r.Seg[ES], r.R[DI]), false)
		}
		step := e.stringStep(uint16(e.opcode&1) + 1)
		r.R[SI] += step
		r.R[DI] += step
	})
}

func opStos(e *Emulator) {
	r := e.regFile
	e.repeat(false, func() {
		if e.opcode == 0xAA {
			e.lsu.Write8(r.Seg[ES], r.R[DI], r.AL())
		} else {
			e.lsu.Write16(r.Seg[ES], r.R[DI], r.R[AX])
		}
		r.R[DI] += e.stringStep(uint16(e.opcode&1) + 1)
	})
}

func opLods(e *Emulator) {
	r := e.regFile
	e.repeat(false, func() {
		if e.opcode == 0xAC {
			r.SetAL(e.lsu.Read8(e.seg(DS), r.R[SI]))
		} else {
			r.R[AX] = e.lsu.Read16(e.seg(DS), r.R[SI])
		}
		r.R[SI] += e.stringStep(uint16(e.opcode&1) + 1)
	})
}

func opScas(e *Emulator) {
	r := e.regFile
	e.repeat(true, func() {
		if e.opcode == 0xAE {
			e.alu.Sub8(r.AL(), e.lsu.Read8(r.Seg[ES], r.R[DI]), false)
		} else {
			e.alu.Sub16(r.R[AX], e.lsu.Read16(r.Seg[ES], r.R[DI]), false)
		}
		r.R[DI] += e.stringStep(uint16(e.opcode&1) + 1)
	})
}

// opIns reads from port DX into ES:DI.
func opIns(e *Emulator) {
	r := e.regFile
	e.repeat(false, func() {
		port := r.R[DX]
		if e.opcode == 0x6C {
			e.lsu.Write8(r.Seg[ES], r.R[DI], e.io.InByte(port))
		} else {
			lo := e.io.InByte(port)
			hi := e.io.InByte(port + 1)
			e.lsu.Write16(r.Seg[ES], r.R[DI], uint16(lo)|uint16(hi)<<8)
		}
		r.R[DI] += e.stringStep(uint16(e.opcode&1) + 1)
	})
}

// opOuts writes DS:SI to port DX.
func opOuts(e *Emulator) {
	r := e.regFile
	e.repeat(false, func() {
		port := r.R[DX]
		if e.opcode == 0x6E {
			e.io.OutByte(port, e.lsu.Read8(e.seg(DS), r.R[SI]))
		} else {
			v := e.lsu.Read16(e.seg(DS), r.R[SI])
			e.io.OutByte(port, byte(v))
			e.io.OutByte(port+1, byte(v>>8))
		}
		r.R[SI] += e.stringStep(uint16(e.opcode&1) + 1)
	})
}
