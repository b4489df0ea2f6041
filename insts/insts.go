// Package insts provides 8086/80186 instruction definitions and decoding.
//
// The package describes every one-byte opcode (mnemonic and operand
// encoding), decodes ModRM bytes, and decodes complete instructions from a
// byte stream. The emulator uses the ModRM and condition helpers; the
// tracer and debugger use the full decoder.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode([]byte{0xB0, 0x05}) // MOV AL, 5
//	fmt.Printf("%s len=%d imm=%d\n", inst.Mnemonic(), inst.Len, inst.Imm)
package insts

// Format describes the operand bytes that follow an opcode.
type Format uint8

// Operand encodings.
const (
	FormatNone      Format = iota // no operand bytes
	FormatModRM                   // ModRM (+disp)
	FormatModRMImm8               // ModRM (+disp) + imm8
	FormatModRMImm16              // ModRM (+disp) + imm16
	FormatGroup3                  // ModRM; imm8/imm16 when reg is TEST
	FormatImm8                    // imm8
	FormatImm16                   // imm16
	FormatImm16Imm8               // imm16 + imm8 (ENTER)
	FormatRel8                    // signed 8-bit displacement
	FormatRel16                   // signed 16-bit displacement
	FormatFar                     // offset16 + segment16
	FormatMoffs                   // 16-bit memory offset
	FormatPrefix                  // prefix byte
	FormatInvalid                 // undefined opcode
)

// Info describes one opcode.
type Info struct {
	// Mnemonic is the instruction name, or a group name for ModRM groups.
	Mnemonic string
	// Format is the operand encoding.
	Format Format
	// Wide is set for word-sized operations.
	Wide bool
	// Since186 marks encodings introduced with the 80186/V20.
	Since186 bool
}

// Segment register numbers as encoded in ModRM reg fields and prefixes.
const (
	ES = 0
	CS = 1
	SS = 2
	DS = 3
)

// Prefix bytes.
const (
	PrefixES    = 0x26
	PrefixCS    = 0x2E
	PrefixSS    = 0x36
	PrefixDS    = 0x3E
	PrefixLock  = 0xF0
	PrefixRepNE = 0xF2
	PrefixRep   = 0xF3
)

// SegmentPrefix returns the segment selected by a prefix byte.
func SegmentPrefix(b byte) (int, bool) {
	switch b {
	case PrefixES:
		return ES, true
	case PrefixCS:
		return CS, true
	case PrefixSS:
		return SS, true
	case PrefixDS:
		return DS, true
	}
	return 0, false
}

// IsPrefix reports whether b is an instruction prefix.
func IsPrefix(b byte) bool {
	if _, ok := SegmentPrefix(b); ok {
		return true
	}
	return b == PrefixLock || b == PrefixRepNE || b == PrefixRep
}

// Cond is the condition encoded in the low nibble of Jcc opcodes.
type Cond uint8

// Conditions, in encoding order.
const (
	CondO Cond = iota
	CondNO
	CondB
	CondNB
	CondZ
	CondNZ
	CondBE
	CondA
	CondS
	CondNS
	CondP
	CondNP
	CondL
	CondNL
	CondLE
	CondG
)

var condNames = [16]string{
	"JO", "JNO", "JB", "JNB", "JZ", "JNZ", "JBE", "JA",
	"JS", "JNS", "JP", "JNP", "JL", "JNL", "JLE", "JG",
}

// String returns the jump mnemonic for the condition.
func (c Cond) String() string {
	return condNames[c&15]
}

// Register names indexed by ModRM reg/rm number.
var (
	Reg8Names   = [8]string{"AL", "CL", "DL", "BL", "AH", "CH", "DH", "BH"}
	Reg16Names  = [8]string{"AX", "CX", "DX", "BX", "SP", "BP", "SI", "DI"}
	SegRegNames = [4]string{"ES", "CS", "SS", "DS"}
)

// Group mnemonics indexed by the ModRM reg field.
var (
	Group1Names = [8]string{"ADD", "OR", "ADC", "SBB", "AND", "SUB", "XOR", "CMP"}
	Group2Names = [8]string{"ROL", "ROR", "RCL", "RCR", "SHL", "SHR", "SAL", "SAR"}
	Group3Names = [8]string{"TEST", "TEST", "NOT", "NEG", "MUL", "IMUL", "DIV", "IDIV"}
	Group4Names = [8]string{"INC", "DEC", "", "", "", "", "", ""}
	Group5Names = [8]string{"INC", "DEC", "CALL", "CALLF", "JMP", "JMPF", "PUSH", ""}
)

// Table describes all 256 one-byte opcodes.
var Table [256]Info

func set(op int, mnemonic string, format Format, wide bool) {
	Table[op] = Info{Mnemonic: mnemonic, Format: format, Wide: wide}
}

func init() {
	for i := range Table {
		Table[i] = Info{Mnemonic: "(bad)", Format: FormatInvalid}
	}

	// ALU blocks 00-3F: op r/m,r; op r,r/m; op AL,imm8; op AX,imm16.
	for i, name := range Group1Names {
		base := i * 8
		set(base+0, name, FormatModRM, false)
		set(base+1, name, FormatModRM, true)
		set(base+2, name, FormatModRM, false)
		set(base+3, name, FormatModRM, true)
		set(base+4, name, FormatImm8, false)
		set(base+5, name, FormatImm16, true)
	}
	for seg, name := range SegRegNames {
		set(0x06+seg*8, "PUSH "+name, FormatNone, true)
		set(0x07+seg*8, "POP "+name, FormatNone, true)
	}
	for _, p := range []int{PrefixES, PrefixCS, PrefixSS, PrefixDS} {
		set(p, "SEG", FormatPrefix, false)
	}
	set(0x27, "DAA", FormatNone, false)
	set(0x2F, "DAS", FormatNone, false)
	set(0x37, "AAA", FormatNone, false)
	set(0x3F, "AAS", FormatNone, false)

	for r := 0; r < 8; r++ {
		set(0x40+r, "INC "+Reg16Names[r], FormatNone, true)
		set(0x48+r, "DEC "+Reg16Names[r], FormatNone, true)
		set(0x50+r, "PUSH "+Reg16Names[r], FormatNone, true)
		set(0x58+r, "POP "+Reg16Names[r], FormatNone, true)
		set(0x90+r, "XCHG AX,"+Reg16Names[r], FormatNone, true)
		set(0xB0+r, "MOV "+Reg8Names[r], FormatImm8, false)
		set(0xB8+r, "MOV "+Reg16Names[r], FormatImm16, true)
	}
	set(0x90, "NOP", FormatNone, false)

	set186 := func(op int, mnemonic string, format Format, wide bool) {
		Table[op] = Info{Mnemonic: mnemonic, Format: format, Wide: wide, Since186: true}
	}
	set186(0x60, "PUSHA", FormatNone, true)
	set186(0x61, "POPA", FormatNone, true)
	set186(0x62, "BOUND", FormatModRM, true)
	set186(0x68, "PUSH", FormatImm16, true)
	set186(0x69, "IMUL", FormatModRMImm16, true)
	set186(0x6A, "PUSH", FormatImm8, true)
	set186(0x6B, "IMUL", FormatModRMImm8, true)
	set186(0x6C, "INSB", FormatNone, false)
	set186(0x6D, "INSW", FormatNone, true)
	set186(0x6E, "OUTSB", FormatNone, false)
	set186(0x6F, "OUTSW", FormatNone, true)

	for c := 0; c < 16; c++ {
		set(0x70+c, Cond(c).String(), FormatRel8, false)
	}

	set(0x80, "GRP1", FormatModRMImm8, false)
	set(0x81, "GRP1", FormatModRMImm16, true)
	set(0x82, "GRP1", FormatModRMImm8, false)
	set(0x83, "GRP1", FormatModRMImm8, true)
	set(0x84, "TEST", FormatModRM, false)
	set(0x85, "TEST", FormatModRM, true)
	set(0x86, "XCHG", FormatModRM, false)
	set(0x87, "XCHG", FormatModRM, true)
	set(0x88, "MOV", FormatModRM, false)
	set(0x89, "MOV", FormatModRM, true)
	set(0x8A, "MOV", FormatModRM, false)
	set(0x8B, "MOV", FormatModRM, true)
	set(0x8C, "MOV", FormatModRM, true)
	set(0x8D, "LEA", FormatModRM, true)
	set(0x8E, "MOV", FormatModRM, true)
	set(0x8F, "POP", FormatModRM, true)

	set(0x98, "CBW", FormatNone, false)
	set(0x99, "CWD", FormatNone, true)
	set(0x9A, "CALLF", FormatFar, true)
	set(0x9B, "WAIT", FormatNone, false)
	set(0x9C, "PUSHF", FormatNone, true)
	set(0x9D, "POPF", FormatNone, true)
	set(0x9E, "SAHF", FormatNone, false)
	set(0x9F, "LAHF", FormatNone, false)

	set(0xA0, "MOV AL", FormatMoffs, false)
	set(0xA1, "MOV AX", FormatMoffs, true)
	set(0xA2, "MOV [moffs],AL", FormatMoffs, false)
	set(0xA3, "MOV [moffs],AX", FormatMoffs, true)
	set(0xA4, "MOVSB", FormatNone, false)
	set(0xA5, "MOVSW", FormatNone, true)
	set(0xA6, "CMPSB", FormatNone, false)
	set(0xA7, "CMPSW", FormatNone, true)
	set(0xA8, "TEST AL", FormatImm8, false)
	set(0xA9, "TEST AX", FormatImm16, true)
	set(0xAA, "STOSB", FormatNone, false)
	set(0xAB, "STOSW", FormatNone, true)
	set(0xAC, "LODSB", FormatNone, false)
	set(0xAD, "LODSW", FormatNone, true)
	set(0xAE, "SCASB", FormatNone, false)
	set(0xAF, "SCASW", FormatNone, true)

	set186(0xC0, "GRP2", FormatModRMImm8, false)
	set186(0xC1, "GRP2", FormatModRMImm8, true)
	set(0xC2, "RET", FormatImm16, true)
	set(0xC3, "RET", FormatNone, true)
	set(0xC4, "LES", FormatModRM, true)
	set(0xC5, "LDS", FormatModRM, true)
	set(0xC6, "MOV", FormatModRMImm8, false)
	set(0xC7, "MOV", FormatModRMImm16, true)
	set186(0xC8, "ENTER", FormatImm16Imm8, true)
	set186(0xC9, "LEAVE", FormatNone, true)
	set(0xCA, "RETF", FormatImm16, true)
	set(0xCB, "RETF", FormatNone, true)
	set(0xCC, "INT3", FormatNone, false)
	set(0xCD, "INT", FormatImm8, false)
	set(0xCE, "INTO", FormatNone, false)
	set(0xCF, "IRET", FormatNone, true)

	set(0xD0, "GRP2", FormatModRM, false)
	set(0xD1, "GRP2", FormatModRM, true)
	set(0xD2, "GRP2", FormatModRM, false)
	set(0xD3, "GRP2", FormatModRM, true)
	set(0xD4, "AAM", FormatImm8, false)
	set(0xD5, "AAD", FormatImm8, false)
	set(0xD6, "SALC", FormatNone, false)
	set(0xD7, "XLAT", FormatNone, false)
	for op := 0xD8; op <= 0xDF; op++ {
		set(op, "ESC", FormatModRM, false)
	}

	set(0xE0, "LOOPNZ", FormatRel8, false)
	set(0xE1, "LOOPZ", FormatRel8, false)
	set(0xE2, "LOOP", FormatRel8, false)
	set(0xE3, "JCXZ", FormatRel8, false)
	set(0xE4, "IN AL", FormatImm8, false)
	set(0xE5, "IN AX", FormatImm8, true)
	set(0xE6, "OUT", FormatImm8, false)
	set(0xE7, "OUT", FormatImm8, true)
	set(0xE8, "CALL", FormatRel16, true)
	set(0xE9, "JMP", FormatRel16, true)
	set(0xEA, "JMPF", FormatFar, true)
	set(0xEB, "JMP", FormatRel8, false)
	set(0xEC, "IN AL,DX", FormatNone, false)
	set(0xED, "IN AX,DX", FormatNone, true)
	set(0xEE, "OUT DX,AL", FormatNone, false)
	set(0xEF, "OUT DX,AX", FormatNone, true)

	set(PrefixLock, "LOCK", FormatPrefix, false)
	set(PrefixRepNE, "REPNE", FormatPrefix, false)
	set(PrefixRep, "REP", FormatPrefix, false)
	set(0xF4, "HLT", FormatNone, false)
	set(0xF5, "CMC", FormatNone, false)
	set(0xF6, "GRP3", FormatGroup3, false)
	set(0xF7, "GRP3", FormatGroup3, true)
	set(0xF8, "CLC", FormatNone, false)
	set(0xF9, "STC", FormatNone, false)
	set(0xFA, "CLI", FormatNone, false)
	set(0xFB, "STI", FormatNone, false)
	set(0xFC, "CLD", FormatNone, false)
	set(0xFD, "STD", FormatNone, false)
	set(0xFE, "GRP4", FormatModRM, false)
	set(0xFF, "GRP5", FormatModRM, true)
}
