package emu

// DAA adjusts AL after adding two packed BCD values.
func (a *ALU) DAA() {
	r := a.regFile
	f := &r.Flags
	al := r.AL()
	oldAL, oldCF := al, f.CF

	f.CF = false
	if al&0x0F > 9 || f.AF {
		f.CF = oldCF || al > 0xF9
		al += 6
		f.AF = true
	} else {
		f.AF = false
	}
	if oldAL > 0x99 || oldCF {
		al += 0x60
		f.CF = true
	} else {
		f.CF = false
	}

	r.SetAL(al)
	a.szp8(al)
}

// DAS adjusts AL after subtracting two packed BCD values.
func (a *ALU) DAS() {
	r := a.regFile
	f := &r.Flags
	al := r.AL()
	oldAL, oldCF := al, f.CF

	f.CF = false
	if al&0x0F > 9 || f.AF {
		f.CF = oldCF || al < 6
		al -= 6
		f.AF = true
	} else {
		f.AF = false
	}
	if oldAL > 0x99 || oldCF {
		al -= 0x60
		f.CF = true
	}

	r.SetAL(al)
	a.szp8(al)
}

// AAA adjusts AX after adding two unpacked BCD digits.
func (a *ALU) AAA() {
	r := a.regFile
	f := &r.Flags
	if r.AL()&0x0F > 9 || f.AF {
		r.SetAL(r.AL() + 6)
		r.SetAH(r.AH() + 1)
		f.AF = true
		f.CF = true
	} else {
		f.AF = false
		f.CF = false
	}
	r.SetAL(r.AL() & 0x0F)
}

// AAS adjusts AX after subtracting two unpacked BCD digits.
func (a *ALU) AAS() {
	r := a.regFile
	f := &r.Flags
	if r.AL()&0x0F > 9 || f.AF {
		r.SetAL(r.AL() - 6)
		r.SetAH(r.AH() - 1)
		f.AF = true
		f.CF = true
	} else {
		f.AF = false
		f.CF = false
	}
	r.SetAL(r.AL() & 0x0F)
}

// AAM splits AL into unpacked digits of the given base. It reports false
// for base zero, which must raise a divide error.
func (a *ALU) AAM(base byte) bool {
	if base == 0 {
		return false
	}
	r := a.regFile
	al := r.AL()
	r.SetAH(al / base)
	r.SetAL(al % base)
	a.szp8(r.AL())
	return true
}

// AAD folds the unpacked digits in AX into AL.
func (a *ALU) AAD(base byte) {
	r := a.regFile
	al := r.AL() + r.AH()*base
	r.SetAL(al)
	r.SetAH(0)
	a.szp8(al)
}
