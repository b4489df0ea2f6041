package emu

// Group 1 operation numbers, as encoded in opcode bits 3-5 and in the ModRM
// reg field of opcodes 0x80-0x83.
const (
	OpADD = 0
	OpOR  = 1
	OpADC = 2
	OpSBB = 3
	OpAND = 4
	OpSUB = 5
	OpXOR = 6
	OpCMP = 7
)

var parity = func() [256]bool {
	var t [256]bool
	for i := range t {
		ones := 0
		for v := i; v != 0; v >>= 1 {
			ones += v & 1
		}
		t[i] = ones%2 == 0
	}
	return t
}()

// ALU implements the 8086 arithmetic and logic operations. Results are
// returned to the caller; the flags in the register file are updated.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

func (a *ALU) szp8(v byte) {
	f := &a.regFile.Flags
	f.ZF = v == 0
	f.SF = v&0x80 != 0
	f.PF = parity[v]
}

func (a *ALU) szp16(v uint16) {
	f := &a.regFile.Flags
	f.ZF = v == 0
	f.SF = v&0x8000 != 0
	f.PF = parity[byte(v)]
}

func carryIn(cf bool) uint32 {
	if cf {
		return 1
	}
	return 0
}

// Add8 returns a+b+carry and sets CF, OF, AF, SF, ZF and PF.
func (a *ALU) Add8(x, y byte, carry bool) byte {
	res := uint32(x) + uint32(y) + carryIn(carry)
	r := byte(res)
	f := &a.regFile.Flags
	f.CF = res > 0xFF
	f.OF = (r^x)&(r^y)&0x80 != 0
	f.AF = (x^y^r)&0x10 != 0
	a.szp8(r)
	return r
}

// Add16 returns a+b+carry and sets CF, OF, AF, SF, ZF and PF.
func (a *ALU) Add16(x, y uint16, carry bool) uint16 {
	res := uint32(x) + uint32(y) + carryIn(carry)
	r := uint16(res)
	f := &a.regFile.Flags
	f.CF = res > 0xFFFF
	f.OF = (r^x)&(r^y)&0x8000 != 0
	f.AF = (x^y^r)&0x10 != 0
	a.szp16(r)
	return r
}

// Sub8 returns a-b-borrow and sets CF, OF, AF, SF, ZF and PF.
func (a *ALU) Sub8(x, y byte, borrow bool) byte {
	sub := uint32(y) + carryIn(borrow)
	r := byte(uint32(x) - sub)
	f := &a.regFile.Flags
	f.CF = uint32(x) < sub
	f.OF = (x^y)&(x^r)&0x80 != 0
	f.AF = (x^y^r)&0x10 != 0
	a.szp8(r)
	return r
}

// Sub16 returns a-b-borrow and sets CF, OF, AF, SF, ZF and PF.
func (a *ALU) Sub16(x, y uint16, borrow bool) uint16 {
	sub := uint32(y) + carryIn(borrow)
	r := uint16(uint32(x) - sub)
	f := &a.regFile.Flags
	f.CF = uint32(x) < sub
	f.OF = (x^y)&(x^r)&0x8000 != 0
	f.AF = (x^y^r)&0x10 != 0
	a.szp16(r)
	return r
}

// Logic8 sets the flags of a logical result: CF and OF cleared.
func (a *ALU) Logic8(r byte) byte {
	a.regFile.Flags.CF = false
	a.regFile.Flags.OF = false
	a.szp8(r)
	return r
}

// Logic16 sets the flags of a logical result: CF and OF cleared.
func (a *ALU) Logic16(r uint16) uint16 {
	a.regFile.Flags.CF = false
	a.regFile.Flags.OF = false
	a.szp16(r)
	return r
}

// Op8 performs group 1 operation op. The second result is false for CMP,
// whose result is discarded.
func (a *ALU) Op8(op int, x, y byte) (byte, bool) {
	cf := a.regFile.Flags.CF
	switch op {
	case OpADD:
		return a.Add8(x, y, false), true
	case OpOR:
		return a.Logic8(x | y), true
	case OpADC:
		return a.Add8(x, y, cf), true
	case OpSBB:
		return a.Sub8(x, y, cf), true
	case OpAND:
		return a.Logic8(x & y), true
	case OpSUB:
		return a.Sub8(x, y, false), true
	case OpXOR:
		return a.Logic8(x ^ y), true
	default:
		a.Sub8(x, y, false)
		return x, false
	}
}

// Op16 performs group 1 operation op on words.
func (a *ALU) Op16(op int, x, y uint16) (uint16, bool) {
	cf := a.regFile.Flags.CF
	switch op {
	case OpADD:
		return a.Add16(x, y, false), true
	case OpOR:
		return a.Logic16(x | y), true
	case OpADC:
		return a.Add16(x, y, cf), true
	case OpSBB:
		return a.Sub16(x, y, cf), true
	case OpAND:
		return a.Logic16(x & y), true
	case OpSUB:
		return a.Sub16(x, y, false), true
	case OpXOR:
		return a.Logic16(x ^ y), true
	default:
		a.Sub16(x, y, false)
		return x, false
	}
}

// Inc8 increments v. CF is preserved.
func (a *ALU) Inc8(v byte) byte {
	cf := a.regFile.Flags.CF
	r := a.Add8(v, 1, false)
	a.regFile.Flags.CF = cf
	return r
}

// Dec8 decrements v. CF is preserved.
func (a *ALU) Dec8(v byte) byte {
	cf := a.regFile.Flags.CF
	r := a.Sub8(v, 1, false)
	a.regFile.Flags.CF = cf
	return r
}

// Inc16 increments v. CF is preserved.
func (a *ALU) Inc16(v uint16) uint16 {
	cf := a.regFile.Flags.CF
	r := a.Add16(v, 1, false)
	a.regFile.Flags.CF = cf
	return r
}

// Dec16 decrements v. CF is preserved.
func (a *ALU) Dec16(v uint16) uint16 {
	cf := a.regFile.Flags.CF
	r := a.Sub16(v, 1, false)
	a.regFile.Flags.CF = cf
	return r
}

// Neg8 returns 0-v. CF is set unless v is zero.
func (a *ALU) Neg8(v byte) byte {
	return a.Sub8(0, v, false)
}

// Neg16 returns 0-v. CF is set unless v is zero.
func (a *ALU) Neg16(v uint16) uint16 {
	return a.Sub16(0, v, false)
}
