package memory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/x86sim/memory"
)

type recordingDisplay struct {
	addrs  []uint32
	values []byte
}

func (d *recordingDisplay) OnMemoryWrite(addr uint32, value byte) {
	d.addrs = append(d.addrs, addr)
	d.values = append(d.values, value)
}

var _ = Describe("AddressSpace", func() {
	var (
		mem     *memory.AddressSpace
		display *recordingDisplay
	)

	BeforeEach(func() {
		display = &recordingDisplay{}
		mem = memory.New(memory.WithDisplay(display))
	})

	Describe("Linear", func() {
		It("should combine segment and offset", func() {
			Expect(memory.Linear(0x07C0, 0x0010)).To(Equal(uint32(0x7C10)))
		})

		It("should wrap at 1 MiB", func() {
			Expect(memory.Linear(0xFFFF, 0x0010)).To(Equal(uint32(0x00000)))
			Expect(memory.Linear(0xFFFF, 0xFFFF)).To(Equal(uint32(0xFFEF)))
		})
	})

	Describe("byte access", func() {
		It("should read back a written byte", func() {
			for _, addr := range []uint32{0x0, 0x500, 0x7C00, 0x9FFFF} {
				mem.WriteByte(addr, 0x5A)
				Expect(mem.ReadByte(addr)).To(Equal(byte(0x5A)))
			}
		})

		It("should wrap addresses above 20 bits", func() {
			mem.WriteByte(0x100123, 0x77)
			Expect(mem.ReadByte(0x123)).To(Equal(byte(0x77)))
		})

		It("should drop writes to read-only addresses", func() {
			Expect(mem.LoadImage(0x8000, []byte{1, 2, 3}, true)).To(Succeed())
			mem.WriteByte(0x8001, 0xEE)
			Expect(mem.ReadByte(0x8001)).To(Equal(byte(2)))
			Expect(mem.IsReadOnly(0x8001)).To(BeTrue())
		})

		It("should drop writes to the ROM area", func() {
			mem.WriteByte(0xF0000, 0x12)
			Expect(mem.ReadByte(0xF0000)).To(Equal(byte(0)))
		})

		It("should allow writes once protection is cleared", func() {
			Expect(mem.LoadImage(0x8000, []byte{1}, true)).To(Succeed())
			mem.SetReadOnly(0x8000, 1, false)
			mem.WriteByte(0x8000, 9)
			Expect(mem.ReadByte(0x8000)).To(Equal(byte(9)))
		})
	})

	Describe("video window", func() {
		It("should store and notify the display", func() {
			mem.WriteByte(0xB8000, 'A')
			mem.WriteByte(0xB8001, 0x07)

			Expect(mem.ReadByte(0xB8000)).To(Equal(byte('A')))
			Expect(display.addrs).To(Equal([]uint32{0xB8000, 0xB8001}))
			Expect(display.values).To(Equal([]byte{'A', 0x07}))
		})

		It("should not notify for ordinary RAM", func() {
			mem.WriteByte(0x1000, 1)
			Expect(display.addrs).To(BeEmpty())
		})
	})

	Describe("word access", func() {
		It("should be little-endian", func() {
			mem.WriteWord(0x2000, 0xBEEF)
			Expect(mem.ReadByte(0x2000)).To(Equal(byte(0xEF)))
			Expect(mem.ReadByte(0x2001)).To(Equal(byte(0xBE)))
			Expect(mem.ReadWord(0x2000)).To(Equal(uint16(0xBEEF)))
		})

		It("should split a word across the video window boundary", func() {
			mem.WriteWord(0x9FFFF, 0x1234)
			Expect(mem.ReadByte(0x9FFFF)).To(Equal(byte(0x34)))
			Expect(mem.ReadByte(0xA0000)).To(Equal(byte(0x12)))
		})
	})

	Describe("BIOS data area patches", func() {
		It("should patch equipment and disk count before bootstrap", func() {
			mem.SetHardDiskCount(2)
			mem.ReadByte(0)
			Expect(mem.Peek(0x410)).To(Equal(byte(0x41)))
			Expect(mem.Peek(0x475)).To(Equal(byte(2)))
		})

		It("should stop patching after bootstrap", func() {
			mem.SetBootstrapped(true)
			mem.WriteByte(0x410, 0x21)
			Expect(mem.ReadByte(0x410)).To(Equal(byte(0x21)))
		})
	})

	Describe("LoadImage", func() {
		It("should reject images that do not fit", func() {
			err := mem.LoadImage(0xFFFF0, make([]byte, 32), true)
			Expect(err).To(HaveOccurred())
		})

		It("should load images into the ROM area", func() {
			Expect(mem.LoadImage(0xFE000, []byte{0xEA, 0x5B}, true)).To(Succeed())
			Expect(mem.ReadByte(0xFE000)).To(Equal(byte(0xEA)))
		})
	})
})

var _ = Describe("AddressSpace with less than 1 MiB of RAM", func() {
	It("should read a tiny address space without touching the data area", func() {
		mem := memory.New(memory.WithSize(0x400))
		Expect(func() { mem.ReadByte(0) }).NotTo(Panic())
		Expect(mem.ReadByte(0x410)).To(Equal(byte(0xFF)))
		Expect(mem.Size()).To(Equal(0x400))
	})

	It("should leave the hole between RAM and the video window unpopulated", func() {
		mem := memory.New(memory.WithSize(640 * 1024))
		mem.WriteByte(0x9FFFF, 0x12)
		Expect(mem.ReadByte(0x9FFFF)).To(Equal(byte(0x12)))

		small := memory.New(memory.WithSize(512 * 1024))
		small.WriteByte(0x90000, 0x34)
		Expect(small.ReadByte(0x90000)).To(Equal(byte(0xFF)))
		Expect(small.Populated(0x90000)).To(BeFalse())
		Expect(small.IsReadOnly(0x90000)).To(BeTrue())
		Expect(small.Slice(0x7FFF0, 64)).To(HaveLen(16))
	})

	It("should keep the ROM area and the video window backed", func() {
		mem := memory.New(memory.WithSize(256 * 1024))
		Expect(mem.LoadImage(0xFE000, []byte{0xEA, 0x5B}, true)).To(Succeed())
		Expect(mem.ReadByte(0xFE000)).To(Equal(byte(0xEA)))

		mem.WriteByte(0xB8000, 0x41)
		Expect(mem.ReadByte(0xB8000)).To(Equal(byte(0x41)))
	})

	It("should reject images that reach into the hole", func() {
		mem := memory.New(memory.WithSize(256 * 1024))
		Expect(mem.LoadImage(0x3FFF0, make([]byte, 32), false)).NotTo(Succeed())
		Expect(mem.LoadImage(0x50000, []byte{1}, false)).NotTo(Succeed())
		Expect(mem.LoadImage(0x3FFF0, make([]byte, 16), false)).To(Succeed())
	})

	It("should patch the data area once it is installed", func() {
		mem := memory.New(memory.WithSize(0x500))
		mem.SetHardDiskCount(1)
		Expect(mem.ReadByte(0x410)).To(Equal(byte(0x41)))
		Expect(mem.ReadByte(0x475)).To(Equal(byte(1)))
	})
})

var _ = Describe("AddressSpace word wrap", func() {
	It("should wrap the high byte of a word at the top of memory", func() {
		mem := memory.New()
		mem.Poke(0xFFFFF, 0xCD)
		mem.Poke(0x00000, 0xAB)
		Expect(mem.ReadWord(0xFFFFF)).To(Equal(uint16(0xABCD)))
	})
})
