package insts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTruncated is returned when the byte stream ends inside an instruction.
var ErrTruncated = errors.New("truncated instruction")

// maxPrefixes bounds the prefix run accepted before an opcode.
const maxPrefixes = 14

// ModRM is a decoded ModRM byte.
type ModRM struct {
	Mod uint8
	Reg uint8
	RM  uint8
}

// DecodeModRM splits a ModRM byte into its fields.
func DecodeModRM(b byte) ModRM {
	return ModRM{
		Mod: b >> 6,
		Reg: (b >> 3) & 7,
		RM:  b & 7,
	}
}

// IsRegister reports whether the r/m operand names a register.
func (m ModRM) IsRegister() bool {
	return m.Mod == 3
}

// DispSize returns the number of displacement bytes following the ModRM.
func (m ModRM) DispSize() int {
	switch m.Mod {
	case 0:
		if m.RM == 6 {
			return 2
		}
		return 0
	case 1:
		return 1
	case 2:
		return 2
	}
	return 0
}

// DefaultSegment returns the segment used by the memory operand when no
// override is present. BP-based forms default to SS.
func (m ModRM) DefaultSegment() int {
	switch m.RM {
	case 2, 3:
		return SS
	case 6:
		if m.Mod == 1 || m.Mod == 2 {
			return SS
		}
	}
	return DS
}

var eaBaseNames = [8]string{"BX+SI", "BX+DI", "BP+SI", "BP+DI", "SI", "DI", "BP", "BX"}

// Instruction is a decoded instruction.
type Instruction struct {
	// Opcode is the primary opcode byte.
	Opcode byte
	// Info describes the opcode.
	Info Info
	// Segment is the override segment, or -1.
	Segment int
	// Rep is PrefixRep, PrefixRepNE or 0.
	Rep byte
	// Lock is set when a LOCK prefix was seen.
	Lock bool

	HasModRM bool
	ModRM    ModRM
	Disp     int16

	// Imm holds the first immediate. Far pointers keep the offset here and
	// the segment in Imm2; ENTER keeps its level in Imm2.
	Imm  uint16
	Imm2 uint16

	// Len is the total length including prefixes.
	Len int
}

// Mnemonic returns the instruction name with ModRM groups resolved.
func (i *Instruction) Mnemonic() string {
	switch i.Info.Mnemonic {
	case "GRP1":
		return Group1Names[i.ModRM.Reg]
	case "GRP2":
		return Group2Names[i.ModRM.Reg]
	case "GRP3":
		return Group3Names[i.ModRM.Reg]
	case "GRP4", "GRP5":
		name := Group5Names[i.ModRM.Reg]
		if i.Info.Mnemonic == "GRP4" {
			name = Group4Names[i.ModRM.Reg]
		}
		if name == "" {
			return "(bad)"
		}
		return name
	}
	return i.Info.Mnemonic
}

// MemOperand renders the r/m operand.
func (i *Instruction) MemOperand() string {
	if !i.HasModRM {
		return ""
	}
	if i.ModRM.IsRegister() {
		if i.Info.Wide {
			return Reg16Names[i.ModRM.RM]
		}
		return Reg8Names[i.ModRM.RM]
	}

	var sb strings.Builder
	if i.Segment >= 0 {
		sb.WriteString(SegRegNames[i.Segment])
		sb.WriteByte(':')
	}
	sb.WriteByte('[')
	if i.ModRM.Mod == 0 && i.ModRM.RM == 6 {
		fmt.Fprintf(&sb, "0x%04X", uint16(i.Disp))
	} else {
		sb.WriteString(eaBaseNames[i.ModRM.RM])
		if i.Disp > 0 {
			fmt.Fprintf(&sb, "+0x%X", i.Disp)
		} else if i.Disp < 0 {
			fmt.Fprintf(&sb, "-0x%X", -int(i.Disp))
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// String renders a short listing of the instruction.
func (i *Instruction) String() string {
	var parts []string
	if i.Rep == PrefixRep {
		parts = append(parts, "REP")
	} else if i.Rep == PrefixRepNE {
		parts = append(parts, "REPNE")
	}
	parts = append(parts, i.Mnemonic())

	var operands []string
	if i.HasModRM {
		operands = append(operands, i.MemOperand())
	}
	switch i.Info.Format {
	case FormatImm8, FormatModRMImm8, FormatRel8:
		operands = append(operands, fmt.Sprintf("0x%02X", i.Imm))
	case FormatImm16, FormatModRMImm16, FormatRel16, FormatMoffs:
		operands = append(operands, fmt.Sprintf("0x%04X", i.Imm))
	case FormatGroup3:
		if i.ModRM.Reg < 2 {
			operands = append(operands, fmt.Sprintf("0x%X", i.Imm))
		}
	case FormatFar:
		operands = append(operands, fmt.Sprintf("0x%04X:0x%04X", i.Imm2, i.Imm))
	case FormatImm16Imm8:
		operands = append(operands, fmt.Sprintf("0x%04X", i.Imm), fmt.Sprintf("%d", i.Imm2))
	}
	if len(operands) > 0 {
		return strings.Join(parts, " ") + " " + strings.Join(operands, ", ")
	}
	return strings.Join(parts, " ")
}

// Decoder decodes instructions from byte streams.
type Decoder struct{}

// NewDecoder creates a new decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes the instruction at the start of code.
func (d *Decoder) Decode(code []byte) (*Instruction, error) {
	inst := &Instruction{Segment: -1}
	pos := 0

	next := func() (byte, error) {
		if pos >= len(code) {
			return 0, ErrTruncated
		}
		b := code[pos]
		pos++
		return b, nil
	}
	word := func() (uint16, error) {
		lo, err := next()
		if err != nil {
			return 0, err
		}
		hi, err := next()
		if err != nil {
			return 0, err
		}
		return uint16(lo) | uint16(hi)<<8, nil
	}

	var op byte
	for {
		b, err := next()
		if err != nil {
			return nil, err
		}
		if !IsPrefix(b) || pos > maxPrefixes {
			op = b
			break
		}
		if seg, ok := SegmentPrefix(b); ok {
			inst.Segment = seg
		} else if b == PrefixLock {
			inst.Lock = true
		} else {
			inst.Rep = b
		}
	}

	inst.Opcode = op
	inst.Info = Table[op]

	switch inst.Info.Format {
	case FormatModRM, FormatModRMImm8, FormatModRMImm16, FormatGroup3:
		if err := d.decodeModRM(inst, next, word); err != nil {
			return nil, err
		}
	}

	var err error
	switch inst.Info.Format {
	case FormatModRMImm8, FormatImm8, FormatRel8:
		var b byte
		b, err = next()
		inst.Imm = uint16(b)
	case FormatModRMImm16, FormatImm16, FormatRel16, FormatMoffs:
		inst.Imm, err = word()
	case FormatGroup3:
		if inst.ModRM.Reg < 2 {
			if inst.Info.Wide {
				inst.Imm, err = word()
			} else {
				var b byte
				b, err = next()
				inst.Imm = uint16(b)
			}
		}
	case FormatFar:
		inst.Imm, err = word()
		if err == nil {
			inst.Imm2, err = word()
		}
	case FormatImm16Imm8:
		inst.Imm, err = word()
		if err == nil {
			var b byte
			b, err = next()
			inst.Imm2 = uint16(b)
		}
	}
	if err != nil {
		return nil, err
	}

	inst.Len = pos
	return inst, nil
}

func (d *Decoder) decodeModRM(inst *Instruction, next func() (byte, error), word func() (uint16, error)) error {
	b, err := next()
	if err != nil {
		return err
	}
	inst.HasModRM = true
	inst.ModRM = DecodeModRM(b)

	switch inst.ModRM.DispSize() {
	case 1:
		disp, err := next()
		if err != nil {
			return err
		}
		inst.Disp = int16(int8(disp))
	case 2:
		disp, err := word()
		if err != nil {
			return err
		}
		inst.Disp = int16(disp)
	}
	return nil
}
