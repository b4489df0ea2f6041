package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/x86sim/emu"
)

var _ = Describe("Instructions", func() {
	var (
		e *emu.Emulator
		r *emu.RegFile
	)

	BeforeEach(func() {
		e = emu.NewEmulator()
		r = boot(e)
	})

	Describe("Addressing", func() {
		It("should use DS for [BX+SI+disp8]", func() {
			r.Seg[emu.DS] = 0x0100
			r.R[emu.BX] = 0x10
			r.R[emu.SI] = 0x02
			e.WriteWord(0x0100, 0x15, 0xBEEF)
			load(e, 0, 0x7C00, 0x8B, 0x40, 0x03) // MOV AX, [BX+SI+3]

			e.Step()

			Expect(r.R[emu.AX]).To(Equal(uint16(0xBEEF)))
		})

		It("should use SS for [BP+disp8]", func() {
			r.Seg[emu.SS] = 0x0200
			r.Seg[emu.DS] = 0x0300
			r.R[emu.BP] = 0x20
			e.WriteByte(0x0200, 0x1E, 0x77)
			load(e, 0, 0x7C00, 0x8A, 0x46, 0xFE) // MOV AL, [BP-2]

			e.Step()

			Expect(r.AL()).To(Equal(byte(0x77)))
		})

		It("should honour a segment override", func() {
			r.Seg[emu.ES] = 0x0400
			e.WriteByte(0x0400, 0x1234, 0x99)
			load(e, 0, 0x7C00, 0x26, 0xA0, 0x34, 0x12) // MOV AL, ES:[0x1234]

			e.Step()

			Expect(r.AL()).To(Equal(byte(0x99)))
			Expect(r.IP).To(Equal(uint16(0x7C04)))
		})

		It("should load the offset with LEA", func() {
			r.R[emu.BX] = 0x1000
			r.R[emu.DI] = 0x0020
			load(e, 0, 0x7C00, 0x8D, 0x81, 0x00, 0x01) // LEA AX, [BX+DI+0x100]

			e.Step()

			Expect(r.R[emu.AX]).To(Equal(uint16(0x1120)))
		})

		It("should load far pointers with LES", func() {
			e.WriteWord(0, 0x0600, 0x1111)
			e.WriteWord(0, 0x0602, 0x2222)
			load(e, 0, 0x7C00, 0xC4, 0x1E, 0x00, 0x06) // LES BX, [0x600]

			e.Step()

			Expect(r.R[emu.BX]).To(Equal(uint16(0x1111)))
			Expect(r.Seg[emu.ES]).To(Equal(uint16(0x2222)))
		})
	})

	Describe("Arithmetic", func() {
		It("should sign-extend the 0x83 immediate", func() {
			r.R[emu.CX] = 0x0010
			load(e, 0, 0x7C00, 0x83, 0xC1, 0xFF) // ADD CX, -1

			e.Step()

			Expect(r.R[emu.CX]).To(Equal(uint16(0x000F)))
			Expect(r.Flags.CF).To(BeTrue())
		})

		It("should divide signed bytes", func() {
			r.R[emu.AX] = 0xFFF9 // -7
			r.SetReg8(3, 2)
			load(e, 0, 0x7C00, 0xF6, 0xFB) // IDIV BL

			e.Step()

			Expect(r.AL()).To(Equal(byte(0xFD)))
			Expect(r.AH()).To(Equal(byte(0xFF)))
		})

		It("should fault on signed quotient overflow", func() {
			setVector(e, 0, 0x3000, 0)
			r.R[emu.AX] = 0x7FFF
			r.SetReg8(3, 1)
			load(e, 0, 0x7C00, 0xF6, 0xFB)

			e.Step()

			Expect(r.R[emu.AX]).To(Equal(uint16(0x7FFF)))
			Expect(r.Seg[emu.CS]).To(Equal(uint16(0x3000)))
		})

		It("should divide DX:AX by a word", func() {
			r.R[emu.DX] = 0x0001
			r.R[emu.AX] = 0x0000
			r.R[emu.CX] = 0x0010
			load(e, 0, 0x7C00, 0xF7, 0xF1) // DIV CX

			e.Step()

			Expect(r.R[emu.AX]).To(Equal(uint16(0x1000)))
			Expect(r.R[emu.DX]).To(Equal(uint16(0)))
		})

		It("should flag a significant upper half after MUL", func() {
			r.R[emu.AX] = 0x0100
			r.R[emu.BX] = 0x0100
			load(e, 0, 0x7C00, 0xF7, 0xE3) // MUL BX

			e.Step()

			Expect(r.R[emu.DX]).To(Equal(uint16(0x0001)))
			Expect(r.R[emu.AX]).To(Equal(uint16(0)))
			Expect(r.Flags.CF).To(BeTrue())
			Expect(r.Flags.OF).To(BeTrue())
		})

		It("should keep CF clear when IMUL fits", func() {
			r.SetAL(0xFE) // -2
			r.SetReg8(3, 3)
			load(e, 0, 0x7C00, 0xF6, 0xEB) // IMUL BL

			e.Step()

			Expect(r.R[emu.AX]).To(Equal(uint16(0xFFFA)))
			Expect(r.Flags.CF).To(BeFalse())
		})

		It("should multiply by an immediate", func() {
			r.R[emu.CX] = 7
			load(e, 0, 0x7C00, 0x6B, 0xC1, 0xFD) // IMUL AX, CX, -3

			e.Step()

			Expect(r.R[emu.AX]).To(Equal(uint16(0xFFEB)))
		})

		It("should mask shift counts on the V20", func() {
			r.SetAL(0x01)
			r.SetReg8(1, 0x21)
			load(e, 0, 0x7C00, 0xD2, 0xE0) // SHL AL, CL

			e.Step()

			Expect(r.AL()).To(Equal(byte(0x02)))
		})

		It("should shift by an immediate count", func() {
			r.R[emu.AX] = 0x0001
			load(e, 0, 0x7C00, 0xC1, 0xE0, 0x04) // SHL AX, 4

			e.Step()

			Expect(r.R[emu.AX]).To(Equal(uint16(0x0010)))
		})
	})

	Describe("Control transfer", func() {
		It("should call and return", func() {
			load(e, 0, 0x7C00, 0xE8, 0x03, 0x00)
			load(e, 0, 0x7C06, 0xC3)

			e.Step()
			Expect(r.IP).To(Equal(uint16(0x7C06)))

			e.Step()
			Expect(r.IP).To(Equal(uint16(0x7C03)))
			Expect(r.R[emu.SP]).To(Equal(uint16(0x7000)))
		})

		It("should call far and return with a stack adjustment", func() {
			load(e, 0, 0x7C00, 0x9A, 0x00, 0x00, 0x00, 0x10) // CALL 1000:0000
			load(e, 0x1000, 0, 0xCA, 0x04, 0x00)             // RETF 4

			e.Step()
			Expect(r.Seg[emu.CS]).To(Equal(uint16(0x1000)))

			e.Step()
			Expect(r.Seg[emu.CS]).To(Equal(uint16(0)))
			Expect(r.IP).To(Equal(uint16(0x7C05)))
			Expect(r.R[emu.SP]).To(Equal(uint16(0x7004)))
		})

		It("should loop until CX reaches zero", func() {
			r.R[emu.CX] = 3
			load(e, 0, 0x7C00, 0xE2, 0xFE)

			e.Exec86(3)

			Expect(r.R[emu.CX]).To(Equal(uint16(0)))
			Expect(r.IP).To(Equal(uint16(0x7C02)))
		})

		DescribeTable("conditional jumps",
			func(op byte, setup func(f *emu.Flags), taken bool) {
				setup(&r.Flags)
				load(e, 0, 0x7C00, op, 0x10)

				e.Step()

				if taken {
					Expect(r.IP).To(Equal(uint16(0x7C12)))
				} else {
					Expect(r.IP).To(Equal(uint16(0x7C02)))
				}
			},
			Entry("JZ taken", byte(0x74), func(f *emu.Flags) { f.ZF = true }, true),
			Entry("JZ not taken", byte(0x74), func(f *emu.Flags) {}, false),
			Entry("JNZ taken", byte(0x75), func(f *emu.Flags) {}, true),
			Entry("JA not taken on CF", byte(0x77), func(f *emu.Flags) { f.CF = true }, false),
			Entry("JL on SF!=OF", byte(0x7C), func(f *emu.Flags) { f.SF = true }, true),
			Entry("JG not taken on SF!=OF", byte(0x7F), func(f *emu.Flags) { f.OF = true }, false),
			Entry("JLE on ZF", byte(0x7E), func(f *emu.Flags) { f.ZF = true }, true),
			Entry("JP on PF", byte(0x7A), func(f *emu.Flags) { f.PF = true }, true),
			Entry("JNO", byte(0x71), func(f *emu.Flags) {}, true),
		)

		It("should jump backwards with a negative displacement", func() {
			load(e, 0, 0x7C00, 0xEB, 0xFC)

			e.Step()

			Expect(r.IP).To(Equal(uint16(0x7BFE)))
		})
	})

	Describe("Stack", func() {
		It("should round trip PUSHF and POPF", func() {
			r.Flags.CF = true
			r.Flags.DF = true
			load(e, 0, 0x7C00, 0x9C, 0xF8, 0xFC, 0x9D)

			e.Step()
			Expect(e.ReadWord(0, r.R[emu.SP]) & 0xF000).To(Equal(uint16(0xF000)))

			e.Exec86(3)
			Expect(r.Flags.CF).To(BeTrue())
			Expect(r.Flags.DF).To(BeTrue())
		})

		It("should save and restore all registers with PUSHA and POPA", func() {
			for i := range r.R {
				if i != emu.SP {
					r.R[i] = uint16(0x1000 + i)
				}
			}
			load(e, 0, 0x7C00, 0x60, 0x61)

			e.Step()
			Expect(r.R[emu.SP]).To(Equal(uint16(0x7000 - 16)))
			Expect(e.ReadWord(0, 0x7000-10)).To(Equal(uint16(0x7000)))

			r.R[emu.AX] = 0
			r.R[emu.DI] = 0
			e.Step()
			Expect(r.R[emu.AX]).To(Equal(uint16(0x1000)))
			Expect(r.R[emu.DI]).To(Equal(uint16(0x1007)))
			Expect(r.R[emu.SP]).To(Equal(uint16(0x7000)))
		})

		It("should sign-extend PUSH imm8", func() {
			load(e, 0, 0x7C00, 0x6A, 0x80)

			e.Step()

			Expect(e.ReadWord(0, r.R[emu.SP])).To(Equal(uint16(0xFF80)))
		})

		It("should build and tear down frames with ENTER and LEAVE", func() {
			r.R[emu.BP] = 0x1234
			load(e, 0, 0x7C00, 0xC8, 0x08, 0x00, 0x00, 0xC9)

			e.Step()
			Expect(r.R[emu.BP]).To(Equal(uint16(0x6FFE)))
			Expect(r.R[emu.SP]).To(Equal(uint16(0x6FFE - 8)))

			e.Step()
			Expect(r.R[emu.BP]).To(Equal(uint16(0x1234)))
			Expect(r.R[emu.SP]).To(Equal(uint16(0x7000)))
		})

		It("should raise interrupt 5 when BOUND fails", func() {
			setVector(e, 5, 0x5000, 0)
			e.WriteWord(0, 0x0600, 0)
			e.WriteWord(0, 0x0602, 10)
			r.R[emu.AX] = 11
			load(e, 0, 0x7C00, 0x62, 0x06, 0x00, 0x06) // BOUND AX, [0x600]

			e.Step()

			Expect(r.Seg[emu.CS]).To(Equal(uint16(0x5000)))
		})
	})

	Describe("String operations", func() {
		BeforeEach(func() {
			r.Seg[emu.DS] = 0x0100
			r.Seg[emu.ES] = 0x0200
			r.R[emu.SI] = 0
			r.R[emu.DI] = 0
		})

		It("should run one REP MOVSB iteration per slot", func() {
			load(e, 0x0100, 0, 1, 2, 3, 4)
			r.R[emu.CX] = 4
			load(e, 0, 0x7C00, 0xF3, 0xA4)

			e.Step()
			Expect(r.R[emu.CX]).To(Equal(uint16(3)))
			Expect(r.IP).To(Equal(uint16(0x7C00)))

			e.Exec86(3)
			Expect(r.R[emu.CX]).To(Equal(uint16(0)))
			Expect(r.IP).To(Equal(uint16(0x7C02)))
			for i := uint16(0); i < 4; i++ {
				Expect(e.ReadByte(0x0200, i)).To(Equal(byte(i + 1)))
			}
		})

		It("should skip REP with CX zero", func() {
			r.R[emu.CX] = 0
			load(e, 0, 0x7C00, 0xF3, 0xAA)

			e.Step()

			Expect(r.IP).To(Equal(uint16(0x7C02)))
			Expect(r.R[emu.DI]).To(Equal(uint16(0)))
		})

		It("should stop REPE CMPSB at the first difference", func() {
			load(e, 0x0100, 0, 'a', 'b', 'c', 'X')
			load(e, 0x0200, 0, 'a', 'b', 'c', 'Y')
			r.R[emu.CX] = 10
			load(e, 0, 0x7C00, 0xF3, 0xA6, 0xF4)

			e.Exec86(20)

			Expect(e.Halted()).To(BeTrue())
			Expect(r.R[emu.CX]).To(Equal(uint16(6)))
			Expect(r.R[emu.SI]).To(Equal(uint16(4)))
			Expect(r.Flags.ZF).To(BeFalse())
		})

		It("should find a byte with REPNE SCASB", func() {
			load(e, 0x0200, 0, 1, 2, 3, 0x42, 5)
			r.SetAL(0x42)
			r.R[emu.CX] = 0xFFFF
			load(e, 0, 0x7C00, 0xF2, 0xAE, 0xF4)

			e.Exec86(20)

			Expect(r.R[emu.DI]).To(Equal(uint16(4)))
			Expect(r.Flags.ZF).To(BeTrue())
		})

		It("should walk backwards with DF set", func() {
			r.Flags.DF = true
			r.R[emu.DI] = 0x10
			r.R[emu.AX] = 0xABCD
			load(e, 0, 0x7C00, 0xAB)

			e.Step()

			Expect(e.ReadWord(0x0200, 0x10)).To(Equal(uint16(0xABCD)))
			Expect(r.R[emu.DI]).To(Equal(uint16(0x0E)))
		})

		It("should load with LODSW", func() {
			e.WriteWord(0x0100, 0, 0x5678)
			load(e, 0, 0x7C00, 0xAD)

			e.Step()

			Expect(r.R[emu.AX]).To(Equal(uint16(0x5678)))
			Expect(r.R[emu.SI]).To(Equal(uint16(2)))
		})
	})

	Describe("Flag transfer", func() {
		It("should move the low flags through AH", func() {
			r.SetAH(0xD5) // SF ZF AF PF CF
			load(e, 0, 0x7C00, 0x9E, 0x9F)

			e.Step()
			Expect(r.Flags.SF).To(BeTrue())
			Expect(r.Flags.ZF).To(BeTrue())
			Expect(r.Flags.AF).To(BeTrue())
			Expect(r.Flags.PF).To(BeTrue())
			Expect(r.Flags.CF).To(BeTrue())

			r.SetAH(0)
			e.Step()
			Expect(r.AH()).To(Equal(byte(0xD7)))
		})
	})
})
