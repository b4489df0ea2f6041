package emu

import "github.com/sarchlab/x86sim/insts"

// General register numbers.
const (
	AX = 0
	CX = 1
	DX = 2
	BX = 3
	SP = 4
	BP = 5
	SI = 6
	DI = 7
)

// Segment register numbers.
const (
	ES = insts.ES
	CS = insts.CS
	SS = insts.SS
	DS = insts.DS
)

// RegFile represents the 8086 register file.
// It contains eight 16-bit general registers, four segment registers,
// the instruction pointer and the flags.
type RegFile struct {
	// R holds AX, CX, DX, BX, SP, BP, SI and DI.
	R [8]uint16

	// Seg holds ES, CS, SS and DS.
	Seg [4]uint16

	// IP is the instruction pointer.
	IP uint16

	// Flags holds the status and control flags.
	Flags Flags
}

// Flags holds the nine 8086 flags.
type Flags struct {
	CF bool
	PF bool
	AF bool
	ZF bool
	SF bool
	TF bool
	IF bool
	DF bool
	OF bool
}

// Word packs the flags into the FLAGS register layout. Bit 1 always reads
// as 1.
func (f *Flags) Word() uint16 {
	w := uint16(2)
	set := func(on bool, bit uint) {
		if on {
			w |= 1 << bit
		}
	}
	set(f.CF, 0)
	set(f.PF, 2)
	set(f.AF, 4)
	set(f.ZF, 6)
	set(f.SF, 7)
	set(f.TF, 8)
	set(f.IF, 9)
	set(f.DF, 10)
	set(f.OF, 11)
	return w
}

// SetWord unpacks a FLAGS register value.
func (f *Flags) SetWord(w uint16) {
	f.CF = w&(1<<0) != 0
	f.PF = w&(1<<2) != 0
	f.AF = w&(1<<4) != 0
	f.ZF = w&(1<<6) != 0
	f.SF = w&(1<<7) != 0
	f.TF = w&(1<<8) != 0
	f.IF = w&(1<<9) != 0
	f.DF = w&(1<<10) != 0
	f.OF = w&(1<<11) != 0
}

// Reg8 reads a byte register. Numbers 0-3 are AL, CL, DL, BL and 4-7 are
// AH, CH, DH, BH.
func (r *RegFile) Reg8(i uint8) byte {
	if i < 4 {
		return byte(r.R[i])
	}
	return byte(r.R[i-4] >> 8)
}

// SetReg8 writes a byte register.
func (r *RegFile) SetReg8(i uint8, v byte) {
	if i < 4 {
		r.R[i] = r.R[i]&0xFF00 | uint16(v)
		return
	}
	r.R[i-4] = r.R[i-4]&0x00FF | uint16(v)<<8
}

// Reg16 reads a word register.
func (r *RegFile) Reg16(i uint8) uint16 {
	return r.R[i&7]
}

// SetReg16 writes a word register.
func (r *RegFile) SetReg16(i uint8, v uint16) {
	r.R[i&7] = v
}

// AL returns the low byte of AX.
func (r *RegFile) AL() byte { return byte(r.R[AX]) }

// AH returns the high byte of AX.
func (r *RegFile) AH() byte { return byte(r.R[AX] >> 8) }

// SetAL writes the low byte of AX.
func (r *RegFile) SetAL(v byte) { r.SetReg8(0, v) }

// SetAH writes the high byte of AX.
func (r *RegFile) SetAH(v byte) { r.SetReg8(4, v) }
