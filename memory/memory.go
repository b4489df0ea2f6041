// Package memory provides the physical address space of the emulated PC.
package memory

import "fmt"

const (
	// DefaultSize is the size of the real-mode physical address space (1 MiB).
	DefaultSize = 0x100000

	// AddrMask wraps physical addresses to 20 bits (no A20 gate).
	AddrMask = 0xFFFFF

	// VideoStart is the first address of the memory-mapped display window.
	VideoStart = 0xA0000
	// VideoEnd is one past the last address of the display window.
	VideoEnd = 0xC0000
)

// BIOS data area locations patched until the guest has bootstrapped.
const (
	equipmentByte = 0x410
	hardDiskCount = 0x475
)

// Display receives writes that land in the video window.
type Display interface {
	OnMemoryWrite(addr uint32, value byte)
}

// AddressSpace is a flat physical memory with a read-only bitmap.
// Effective addresses are wrapped to 20 bits before every access.
// Conventional RAM spans [0, size); the video window and the ROM area above
// it are always present. Addresses in between are unpopulated.
type AddressSpace struct {
	ram      []byte
	readOnly []uint64
	size     int

	display Display

	bootstrapped bool
	hdCount      byte
}

// Option configures an AddressSpace.
type Option func(*AddressSpace)

// WithDisplay attaches the collaborator notified of video window writes.
func WithDisplay(d Display) Option {
	return func(a *AddressSpace) {
		a.display = d
	}
}

// WithSize sets the installed conventional RAM in bytes. Sizes outside
// (0, 1 MiB] select 1 MiB.
func WithSize(size int) Option {
	return func(a *AddressSpace) {
		if size <= 0 || size > DefaultSize {
			size = DefaultSize
		}
		a.size = size
	}
}

// New creates an address space. The default size is 1 MiB.
func New(opts ...Option) *AddressSpace {
	a := &AddressSpace{
		ram:      make([]byte, DefaultSize),
		readOnly: make([]uint64, DefaultSize/64),
		size:     DefaultSize,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Linear converts a segment:offset pair to a 20-bit physical address.
func Linear(seg, off uint16) uint32 {
	return (uint32(seg)<<4 + uint32(off)) & AddrMask
}

// Size returns the number of bytes of conventional RAM.
func (a *AddressSpace) Size() int {
	return a.size
}

// Populated reports whether addr is backed by RAM, the video window or ROM.
func (a *AddressSpace) Populated(addr uint32) bool {
	addr &= AddrMask
	return int(addr) < a.size || addr >= VideoStart
}

// SetDisplay attaches the display collaborator after construction.
func (a *AddressSpace) SetDisplay(d Display) {
	a.display = d
}

// SetBootstrapped records that the guest has started executing a boot
// sector. Until then reads keep the BIOS data area equipment patches alive.
func (a *AddressSpace) SetBootstrapped(v bool) {
	a.bootstrapped = v
}

// Bootstrapped reports whether the guest has been bootstrapped.
func (a *AddressSpace) Bootstrapped() bool {
	return a.bootstrapped
}

// SetHardDiskCount sets the value patched into the BIOS data area.
func (a *AddressSpace) SetHardDiskCount(n byte) {
	a.hdCount = n
}

// IsReadOnly reports whether the address is write protected.
func (a *AddressSpace) IsReadOnly(addr uint32) bool {
	addr &= AddrMask
	if !a.Populated(addr) {
		return true
	}
	return a.readOnly[addr>>6]&(1<<(addr&63)) != 0
}

// SetReadOnly marks or clears write protection for [addr, addr+length).
func (a *AddressSpace) SetReadOnly(addr uint32, length int, ro bool) {
	for i := 0; i < length; i++ {
		p := (addr + uint32(i)) & AddrMask
		if ro {
			a.readOnly[p>>6] |= 1 << (p & 63)
		} else {
			a.readOnly[p>>6] &^= 1 << (p & 63)
		}
	}
}

// ReadByte reads a byte from physical memory.
func (a *AddressSpace) ReadByte(addr uint32) byte {
	addr &= AddrMask
	if !a.bootstrapped && a.size > hardDiskCount {
		a.ram[equipmentByte] = 0x41
		a.ram[hardDiskCount] = a.hdCount
	}
	if !a.Populated(addr) {
		return 0xFF
	}
	return a.ram[addr]
}

// WriteByte writes a byte to physical memory. Writes to read-only
// addresses and to the ROM area at and above 0xC0000 are dropped.
func (a *AddressSpace) WriteByte(addr uint32, value byte) {
	addr &= AddrMask
	if addr >= VideoEnd || a.IsReadOnly(addr) {
		return
	}

	a.ram[addr] = value

	if addr >= VideoStart && a.display != nil {
		a.display.OnMemoryWrite(addr, value)
	}
}

// ReadWord reads a little-endian word. The high byte address wraps at 1 MiB.
func (a *AddressSpace) ReadWord(addr uint32) uint16 {
	return uint16(a.ReadByte(addr)) | uint16(a.ReadByte(addr+1))<<8
}

// WriteWord writes a little-endian word.
func (a *AddressSpace) WriteWord(addr uint32, value uint16) {
	a.WriteByte(addr, byte(value))
	a.WriteByte(addr+1, byte(value>>8))
}

// Peek reads a byte without side effects. Renderers and debuggers use it.
func (a *AddressSpace) Peek(addr uint32) byte {
	addr &= AddrMask
	if !a.Populated(addr) {
		return 0xFF
	}
	return a.ram[addr]
}

// Poke stores a byte bypassing write protection and display notification.
func (a *AddressSpace) Poke(addr uint32, value byte) {
	addr &= AddrMask
	if !a.Populated(addr) {
		return
	}
	a.ram[addr] = value
}

// Slice returns a view of n bytes starting at addr, clipped to the end of
// the populated region containing addr. The view aliases the backing store.
func (a *AddressSpace) Slice(addr uint32, n int) []byte {
	addr &= AddrMask
	if !a.Populated(addr) {
		return nil
	}
	limit := len(a.ram)
	if int(addr) < a.size {
		limit = a.size
	}
	end := int(addr) + n
	if end > limit {
		end = limit
	}
	return a.ram[addr:end]
}

// LoadImage copies data to addr and optionally write-protects it. The whole
// image must land in populated memory.
func (a *AddressSpace) LoadImage(addr uint32, data []byte, readOnly bool) error {
	end := int(addr) + len(data)
	if end > len(a.ram) {
		return fmt.Errorf("image of %d bytes at 0x%05X exceeds %d bytes of memory",
			len(data), addr, len(a.ram))
	}
	if len(data) > 0 && (!a.Populated(addr) || !a.Populated(uint32(end-1)) ||
		(int(addr) < a.size && end > a.size && a.size < VideoStart)) {
		return fmt.Errorf("image of %d bytes at 0x%05X overlaps unpopulated memory above 0x%05X",
			len(data), addr, a.size)
	}

	copy(a.ram[addr:], data)
	a.SetReadOnly(addr, len(data), readOnly)

	return nil
}

// Clear zeroes RAM and drops all write protection.
func (a *AddressSpace) Clear() {
	for i := range a.ram {
		a.ram[i] = 0
	}
	for i := range a.readOnly {
		a.readOnly[i] = 0
	}
	a.bootstrapped = false
}
