package emu

import "github.com/sarchlab/x86sim/insts"

// BranchUnit evaluates jump conditions and performs relative transfers.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// CheckCondition evaluates a Jcc condition against the current flags.
func (b *BranchUnit) CheckCondition(cond insts.Cond) bool {
	f := &b.regFile.Flags
	var result bool

	switch cond &^ 1 {
	case insts.CondO:
		result = f.OF
	case insts.CondB:
		result = f.CF
	case insts.CondZ:
		result = f.ZF
	case insts.CondBE:
		result = f.CF || f.ZF
	case insts.CondS:
		result = f.SF
	case insts.CondP:
		result = f.PF
	case insts.CondL:
		result = f.SF != f.OF
	case insts.CondLE:
		result = f.ZF || f.SF != f.OF
	}

	// Odd encodings are the negated forms.
	if cond&1 != 0 {
		return !result
	}
	return result
}

// Jump8 adds a signed 8-bit displacement to IP.
func (b *BranchUnit) Jump8(disp byte) {
	b.regFile.IP += uint16(int16(int8(disp)))
}

// Jump16 adds a 16-bit displacement to IP.
func (b *BranchUnit) Jump16(disp uint16) {
	b.regFile.IP += disp
}

// Loop decrements CX and reports whether it is still non-zero.
func (b *BranchUnit) Loop() bool {
	b.regFile.R[CX]--
	return b.regFile.R[CX] != 0
}
