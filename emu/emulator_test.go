package emu_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/x86sim/devices/pic"
	"github.com/sarchlab/x86sim/emu"
)

var _ = Describe("Emulator", func() {
	var (
		e *emu.Emulator
		r *emu.RegFile
	)

	BeforeEach(func() {
		e = emu.NewEmulator()
		r = boot(e)
	})

	Describe("Reset", func() {
		It("should enter at FFFF:0000", func() {
			r.R[emu.AX] = 0x1234
			e.Reset()

			Expect(r.Seg[emu.CS]).To(Equal(uint16(0xFFFF)))
			Expect(r.IP).To(Equal(uint16(0)))
			Expect(r.R[emu.AX]).To(Equal(uint16(0x1234)))
			Expect(e.Halted()).To(BeFalse())
		})
	})

	Describe("Scenarios", func() {
		It("should load AL with MOV AL, imm8 and leave the flags alone", func() {
			load(e, 0, 0x7C00, 0xB0, 0x05)
			r.Flags.CF = true
			flags := r.Flags.Word()

			Expect(e.Exec86(1)).To(Equal(1))

			Expect(r.AL()).To(Equal(byte(5)))
			Expect(r.IP).To(Equal(uint16(0x7C02)))
			Expect(r.Flags.Word()).To(Equal(flags))
		})

		It("should divide AX by BL", func() {
			load(e, 0, 0x7C00, 0xF6, 0xF3)
			r.R[emu.AX] = 10
			r.SetReg8(3, 3)

			e.Step()

			Expect(r.AL()).To(Equal(byte(3)))
			Expect(r.AH()).To(Equal(byte(1)))
		})
	})

	Describe("Exec86", func() {
		It("should run the requested number of slots", func() {
			load(e, 0, 0x7C00, 0x90, 0x90, 0x90, 0x90, 0x90)

			Expect(e.Exec86(5)).To(Equal(5))
			Expect(e.InstructionCount()).To(Equal(uint64(5)))
			Expect(r.IP).To(Equal(uint16(0x7C05)))
		})

		It("should return immediately when the running flag is clear", func() {
			load(e, 0, 0x7C00, 0x90)
			e.Stop()

			Expect(e.Exec86(100)).To(Equal(0))
			Expect(r.IP).To(Equal(uint16(0x7C00)))

			e.SetRunning(true)
			Expect(e.Exec86(1)).To(Equal(1))
		})

		It("should tick the scheduler every 16 slots, halted or not", func() {
			ticker := &countingTicker{}
			e = emu.NewEmulator(emu.WithScheduler(ticker))
			r = boot(e)
			load(e, 0, 0x7C00, 0xF4)

			e.Exec86(64)

			Expect(e.Halted()).To(BeTrue())
			Expect(ticker.ticks).To(Equal(4))
		})
	})

	Describe("Interrupts", func() {
		It("should push FLAGS, CS and IP and clear IF and TF", func() {
			setVector(e, 0x21, 0x1000, 0x0020)
			load(e, 0, 0x7C00, 0xCD, 0x21)
			r.Flags.IF = true

			e.Step()

			Expect(r.Seg[emu.CS]).To(Equal(uint16(0x1000)))
			Expect(r.IP).To(Equal(uint16(0x0020)))
			Expect(r.Flags.IF).To(BeFalse())
			Expect(r.R[emu.SP]).To(Equal(uint16(0x7000 - 6)))
			Expect(e.ReadWord(0, 0x7000-6)).To(Equal(uint16(0x7C02)))
			Expect(e.ReadWord(0, 0x7000-4)).To(Equal(uint16(0)))
			Expect(e.ReadWord(0, 0x7000-2) & 0x0200).To(Equal(uint16(0x0200)))
		})

		It("should return with IRET", func() {
			setVector(e, 0x21, 0x1000, 0)
			load(e, 0, 0x7C00, 0xCD, 0x21)
			load(e, 0x1000, 0, 0xCF)
			r.Flags.IF = true

			e.Exec86(2)

			Expect(r.Seg[emu.CS]).To(Equal(uint16(0)))
			Expect(r.IP).To(Equal(uint16(0x7C02)))
			Expect(r.Flags.IF).To(BeTrue())
			Expect(r.R[emu.SP]).To(Equal(uint16(0x7000)))
		})

		It("should let a hook service an interrupt", func() {
			e.SetInterruptHook(func(e *emu.Emulator, vector byte) bool {
				if vector != 0x21 {
					return false
				}
				e.RegFile().R[emu.AX] = 0x1234
				return true
			})
			load(e, 0, 0x7C00, 0xCD, 0x21)

			e.Step()

			Expect(r.R[emu.AX]).To(Equal(uint16(0x1234)))
			Expect(r.IP).To(Equal(uint16(0x7C02)))
			Expect(r.R[emu.SP]).To(Equal(uint16(0x7000)))
		})

		It("should raise interrupt 0 on divide by zero without touching AX", func() {
			setVector(e, 0, 0x3000, 0)
			load(e, 0, 0x7C00, 0xF6, 0xF3)
			r.R[emu.AX] = 0x1234

			e.Step()

			Expect(r.R[emu.AX]).To(Equal(uint16(0x1234)))
			Expect(r.Seg[emu.CS]).To(Equal(uint16(0x3000)))
		})

		It("should wake from HLT on a hardware interrupt", func() {
			p := &fakePIC{}
			e = emu.NewEmulator(emu.WithInterruptController(p))
			r = boot(e)
			setVector(e, 8, 0x1000, 0)
			load(e, 0, 0x7C00, 0xFB, 0xF4)
			load(e, 0x1000, 0, 0x90)

			e.Exec86(2)
			Expect(e.Halted()).To(BeTrue())

			res := e.Step()
			Expect(res.Halted).To(BeTrue())
			Expect(r.IP).To(Equal(uint16(0x7C02)))

			p.pending = []byte{8}
			res = e.Step()
			Expect(res.Halted).To(BeFalse())
			Expect(r.Seg[emu.CS]).To(Equal(uint16(0x1000)))
			Expect(r.IP).To(Equal(uint16(1)))
		})

		It("should take interrupts from the 8259", func() {
			ctrl := pic.New()
			ctrl.WritePort(0x20, 0x13)
			ctrl.WritePort(0x21, 0x08)
			ctrl.WritePort(0x21, 0x09)
			e = emu.NewEmulator(emu.WithInterruptController(ctrl))
			r = boot(e)
			setVector(e, 9, 0x1000, 0)
			load(e, 0, 0x7C00, 0x90, 0x90)
			load(e, 0x1000, 0, 0x90)

			ctrl.DoIRQ(1)
			e.Step()
			Expect(r.IP).To(Equal(uint16(0x7C01)))

			r.Flags.IF = true
			e.Step()
			Expect(r.Seg[emu.CS]).To(Equal(uint16(0x1000)))
			Expect(ctrl.ISR()).To(Equal(byte(0x02)))
		})

		It("should single step through interrupt 1", func() {
			setVector(e, 1, 0x2000, 0)
			load(e, 0, 0x7C00, 0x90, 0x90)
			load(e, 0x2000, 0, 0x90)
			r.Flags.TF = true

			e.Step()
			Expect(r.IP).To(Equal(uint16(0x7C01)))

			e.Step()
			Expect(r.Seg[emu.CS]).To(Equal(uint16(0x2000)))
			Expect(r.IP).To(Equal(uint16(1)))
			Expect(r.Flags.TF).To(BeFalse())
			Expect(e.ReadWord(0, r.R[emu.SP]+4) & 0x0100).To(Equal(uint16(0x0100)))
		})
	})

	Describe("Illegal opcodes", func() {
		It("should raise interrupt 6 when trapping", func() {
			e = emu.NewEmulator(emu.WithIllegalOpcodeTrap(true))
			r = boot(e)
			setVector(e, 6, 0x4000, 0)
			load(e, 0, 0x7C00, 0x0F)

			e.Step()

			Expect(r.Seg[emu.CS]).To(Equal(uint16(0x4000)))
		})

		It("should skip the opcode otherwise", func() {
			load(e, 0, 0x7C00, 0x0F, 0x90)

			e.Step()

			Expect(r.Seg[emu.CS]).To(Equal(uint16(0)))
			Expect(r.IP).To(Equal(uint16(0x7C01)))
		})
	})

	Describe("CPU models", func() {
		It("should pop CS on the 8086", func() {
			e = emu.NewEmulator(emu.WithCPUModel(emu.Model8086))
			r = boot(e)
			e.Push(0x1234)
			load(e, 0, 0x7C00, 0x0F)

			e.Step()

			Expect(r.Seg[emu.CS]).To(Equal(uint16(0x1234)))
		})

		It("should execute SALC on the 8086 and XLAT on the V20", func() {
			e = emu.NewEmulator(emu.WithCPUModel(emu.Model8086))
			r = boot(e)
			load(e, 0, 0x7C00, 0xD6)
			r.Flags.CF = true
			e.Step()
			Expect(r.AL()).To(Equal(byte(0xFF)))

			e = emu.NewEmulator()
			r = boot(e)
			load(e, 0, 0x7C00, 0xD6)
			load(e, 0, 0x0505, 0x42)
			r.R[emu.BX] = 0x0500
			r.SetAL(5)
			e.Step()
			Expect(r.AL()).To(Equal(byte(0x42)))
		})

		It("should push the decremented SP on the 8086", func() {
			e = emu.NewEmulator(emu.WithCPUModel(emu.Model8086))
			r = boot(e)
			load(e, 0, 0x7C00, 0x54)
			e.Step()
			Expect(e.ReadWord(0, 0x6FFE)).To(Equal(uint16(0x6FFE)))

			e = emu.NewEmulator()
			r = boot(e)
			load(e, 0, 0x7C00, 0x54)
			e.Step()
			Expect(e.ReadWord(0, 0x6FFE)).To(Equal(uint16(0x7000)))
		})

		It("should decode 0x70-aliases as jumps on the 8086", func() {
			e = emu.NewEmulator(emu.WithCPUModel(emu.Model8086))
			r = boot(e)
			load(e, 0, 0x7C00, 0x64, 0x10) // JZ +0x10
			r.Flags.ZF = true

			e.Step()

			Expect(r.IP).To(Equal(uint16(0x7C12)))
		})

		It("should clear ZF after MUL only on the 8086", func() {
			e = emu.NewEmulator(emu.WithCPUModel(emu.Model8086))
			r = boot(e)
			load(e, 0, 0x7C00, 0xF6, 0xE3) // MUL BL
			r.SetAL(0)
			r.SetReg8(3, 5)
			e.Step()
			Expect(r.Flags.ZF).To(BeFalse())

			e = emu.NewEmulator()
			r = boot(e)
			load(e, 0, 0x7C00, 0xF6, 0xE3)
			r.SetAL(0)
			r.SetReg8(3, 5)
			e.Step()
			Expect(r.Flags.ZF).To(BeTrue())
		})
	})

	Describe("Breakpoints", func() {
		It("should stop in front of a breakpoint and resume past it", func() {
			load(e, 0, 0x7C00, 0x90, 0x90, 0x90, 0x90)
			e.AddBreakpoint(0, 0x7C02)

			Expect(e.Exec86(10)).To(Equal(2))
			Expect(e.Running()).To(BeFalse())
			Expect(r.IP).To(Equal(uint16(0x7C02)))

			e.SetRunning(true)
			Expect(e.Exec86(1)).To(Equal(1))
			Expect(r.IP).To(Equal(uint16(0x7C03)))
		})

		It("should run every iteration of a REP MOVSB it resumed from", func() {
			load(e, 0, 0x7C00, 0xF3, 0xA4, 0x90)
			r.R[emu.CX] = 3
			r.R[emu.SI] = 0x100
			r.R[emu.DI] = 0x200
			e.AddBreakpoint(0, 0x7C00)

			Expect(e.Exec86(10)).To(Equal(0))
			Expect(r.R[emu.CX]).To(Equal(uint16(3)))

			e.SetRunning(true)
			Expect(e.Exec86(10)).To(Equal(10))
			Expect(r.R[emu.CX]).To(BeZero())
			Expect(r.IP).To(BeNumerically(">", 0x7C02))
			Expect(e.Running()).To(BeTrue())
		})

		It("should stop again when the loop comes back to the breakpoint", func() {
			// 7C00: NOP; 7C01: JMP 7C00
			load(e, 0, 0x7C00, 0x90, 0xEB, 0xFD)
			e.AddBreakpoint(0, 0x7C00)

			Expect(e.Exec86(10)).To(Equal(0))
			e.SetRunning(true)
			Expect(e.Exec86(10)).To(Equal(2))
			Expect(r.IP).To(Equal(uint16(0x7C00)))
		})
	})

	Describe("Tracer", func() {
		It("should write one line per instruction", func() {
			var buf bytes.Buffer
			e = emu.NewEmulator(emu.WithTracer(emu.NewTracer(&buf, 0)))
			r = boot(e)
			load(e, 0, 0x7C00, 0xB0, 0x05, 0x90)

			e.Exec86(2)

			Expect(buf.String()).To(ContainSubstring("0000:7C00"))
			Expect(buf.String()).To(ContainSubstring("mov al, 0x5"))
			Expect(bytes.Count(buf.Bytes(), []byte("\n"))).To(Equal(2))
		})

		It("should disassemble through Peek instead of ReadByte", func() {
			var buf bytes.Buffer
			mem := &peekingMemory{}
			e = emu.NewEmulator(
				emu.WithMemory(mem),
				emu.WithTracer(emu.NewTracer(&buf, 0)))
			r = boot(e)
			mem.ram[0x7C00] = 0x90

			Expect(e.Exec86(1)).To(Equal(1))
			Expect(buf.String()).To(ContainSubstring("nop"))
			Expect(mem.reads).To(Equal(1))
			Expect(mem.peeks).To(BeNumerically(">", 1))
		})
	})
})
