package emu

// Group 2 operation numbers.
const (
	OpROL = 0
	OpROR = 1
	OpRCL = 2
	OpRCR = 3
	OpSHL = 4
	OpSHR = 5
	OpSAL = 6
	OpSAR = 7
)

// Shift8 performs group 2 operation op on a byte, count times. A count of
// zero leaves the value and the flags untouched. Shifts set SF, ZF and PF;
// rotates only touch CF and OF.
func (a *ALU) Shift8(op int, v byte, count byte) byte {
	if count == 0 {
		return v
	}
	f := &a.regFile.Flags
	orig := v

	for i := byte(0); i < count; i++ {
		switch op {
		case OpROL:
			f.CF = v&0x80 != 0
			v = v<<1 | byte(carryIn(f.CF))
		case OpROR:
			f.CF = v&1 != 0
			v = v>>1 | byte(carryIn(f.CF))<<7
		case OpRCL:
			out := v&0x80 != 0
			v = v<<1 | byte(carryIn(f.CF))
			f.CF = out
		case OpRCR:
			out := v&1 != 0
			v = v>>1 | byte(carryIn(f.CF))<<7
			f.CF = out
		case OpSHL, OpSAL:
			f.CF = v&0x80 != 0
			v <<= 1
		case OpSHR:
			f.CF = v&1 != 0
			v >>= 1
		case OpSAR:
			f.CF = v&1 != 0
			v = byte(int8(v) >> 1)
		}
	}

	msb := v&0x80 != 0
	switch op {
	case OpROL, OpRCL, OpSHL, OpSAL:
		f.OF = msb != f.CF
	case OpROR, OpRCR:
		f.OF = msb != (v&0x40 != 0)
	case OpSHR:
		f.OF = orig&0x80 != 0
	case OpSAR:
		f.OF = false
	}

	if op >= OpSHL {
		a.szp8(v)
	}
	return v
}

// Shift16 performs group 2 operation op on a word, count times.
func (a *ALU) Shift16(op int, v uint16, count byte) uint16 {
	if count == 0 {
		return v
	}
	f := &a.regFile.Flags
	orig := v

	for i := byte(0); i < count; i++ {
		switch op {
		case OpROL:
			f.CF = v&0x8000 != 0
			v = v<<1 | uint16(carryIn(f.CF))
		case OpROR:
			f.CF = v&1 != 0
			v = v>>1 | uint16(carryIn(f.CF))<<15
		case OpRCL:
			out := v&0x8000 != 0
			v = v<<1 | uint16(carryIn(f.CF))
			f.CF = out
		case OpRCR:
			out := v&1 != 0
			v = v>>1 | uint16(carryIn(f.CF))<<15
			f.CF = out
		case OpSHL, OpSAL:
			f.CF = v&0x8000 != 0
			v <<= 1
		case OpSHR:
			f.CF = v&1 != 0
			v >>= 1
		case OpSAR:
			f.CF = v&1 != 0
			v = uint16(int16(v) >> 1)
		}
	}

	msb := v&0x8000 != 0
	switch op {
	case OpROL, OpRCL, OpSHL, OpSAL:
		f.OF = msb != f.CF
	case OpROR, OpRCR:
		f.OF = msb != (v&0x4000 != 0)
	case OpSHR:
		f.OF = orig&0x8000 != 0
	case OpSAR:
		f.OF = false
	}

	if op >= OpSHL {
		a.szp16(v)
	}
	return v
}
