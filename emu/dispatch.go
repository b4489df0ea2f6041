package emu

var dispatch [256]func(*Emulator)

func init() {
	for i := range dispatch {
		dispatch[i] = opIllegal
	}

	for op := 0x00; op < 0x40; op++ {
		if op&7 < 6 {
			dispatch[op] = opALU
		}
	}
	for _, op := range []int{0x06, 0x0E, 0x16, 0x1E} {
		dispatch[op] = opPushSeg
		dispatch[op+1] = opPopSeg
	}
	for _, op := range []int{0x26, 0x2E, 0x36, 0x3E, 0xF0, 0xF2, 0xF3} {
		dispatch[op] = opNop
	}
	dispatch[0x27] = opDAA
	dispatch[0x2F] = opDAS
	dispatch[0x37] = opAAA
	dispatch[0x3F] = opAAS

	for i := 0; i < 8; i++ {
		dispatch[0x40+i] = opIncReg
		dispatch[0x48+i] = opDecReg
		dispatch[0x50+i] = opPushReg
		dispatch[0x58+i] = opPopReg
		dispatch[0x90+i] = opXchgAX
		dispatch[0xB0+i] = opMovRegImm8
		dispatch[0xB8+i] = opMovRegImm16
	}

	dispatch[0x60] = opPushA
	dispatch[0x61] = opPopA
	dispatch[0x62] = opBound
	dispatch[0x68] = opPushImm
	dispatch[0x69] = opIMULImm
	dispatch[0x6A] = opPushImm
	dispatch[0x6B] = opIMULImm
	dispatch[0x6C] = opIns
	dispatch[0x6D] = opIns
	dispatch[0x6E] = opOuts
	dispatch[0x6F] = opOuts

	for op := 0x70; op < 0x80; op++ {
		dispatch[op] = opJcc
	}

	for op := 0x80; op <= 0x83; op++ {
		dispatch[op] = opGroup1
	}
	dispatch[0x84] = opTestRM
	dispatch[0x85] = opTestRM
	dispatch[0x86] = opXchgRM
	dispatch[0x87] = opXchgRM
	for op := 0x88; op <= 0x8C; op++ {
		dispatch[op] = opMovRM
	}
	dispatch[0x8D] = opLEA
	dispatch[0x8E] = opMovRM
	dispatch[0x8F] = opPopRM

	dispatch[0x98] = opCBW
	dispatch[0x99] = opCWD
	dispatch[0x9A] = opCallFar
	dispatch[0x9B] = opNop
	dispatch[0x9C] = opPushF
	dispatch[0x9D] = opPopF
	dispatch[0x9E] = opSAHF
	dispatch[0x9F] = opLAHF

	for op := 0xA0; op <= 0xA3; op++ {
		dispatch[op] = opMovMoffs
	}
	dispatch[0xA4] = opMovs
	dispatch[0xA5] = opMovs
	dispatch[0xA6] = opCmps
	dispatch[0xA7] = opCmps
	dispatch[0xA8] = opTestAcc
	dispatch[0xA9] = opTestAcc
	dispatch[0xAA] = opStos
	dispatch[0xAB] = opStos
	dispatch[0xAC] = opLods
	dispatch[0xAD] = opLods
	dispatch[0xAE] = opScas
	dispatch[0xAF] = opScas

	dispatch[0xC0] = opGroup2
	dispatch[0xC1] = opGroup2
	dispatch[0xC2] = opRet
	dispatch[0xC3] = opRet
	dispatch[0xC4] = opLoadFar
	dispatch[0xC5] = opLoadFar
	dispatch[0xC6] = opMovRMImm
	dispatch[0xC7] = opMovRMImm
	dispatch[0xC8] = opEnter
	dispatch[0xC9] = opLeave
	dispatch[0xCA] = opRet
	dispatch[0xCB] = opRet
	dispatch[0xCC] = opInt3
	dispatch[0xCD] = opInt
	dispatch[0xCE] = opInto
	dispatch[0xCF] = opIret

	for op := 0xD0; op <= 0xD3; op++ {
		dispatch[op] = opGroup2
	}
	dispatch[0xD4] = opAAM
	dispatch[0xD5] = opAAD
	dispatch[0xD6] = opSALC
	dispatch[0xD7] = opXLAT
	for op := 0xD8; op <= 0xDF; op++ {
		dispatch[op] = opEsc
	}

	for op := 0xE0; op <= 0xE3; op++ {
		dispatch[op] = opLoop
	}
	dispatch[0xE4] = opIn
	dispatch[0xE5] = opIn
	dispatch[0xE6] = opOut
	dispatch[0xE7] = opOut
	dispatch[0xE8] = opCallNear
	dispatch[0xE9] = opJmpNear
	dispatch[0xEA] = opJmpFar
	dispatch[0xEB] = opJmpShort
	dispatch[0xEC] = opIn
	dispatch[0xED] = opIn
	dispatch[0xEE] = opOut
	dispatch[0xEF] = opOut

	dispatch[0xF4] = opHLT
	dispatch[0xF5] = opFlag
	dispatch[0xF6] = opGroup3Byte
	dispatch[0xF7] = opGroup3Word
	for op := 0xF8; op <= 0xFD; op++ {
		dispatch[op] = opFlag
	}
	dispatch[0xFE] = opGroup4
	dispatch[0xFF] = opGroup5
}
