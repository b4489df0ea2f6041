package emu

// LoadStoreUnit performs segmented memory accesses.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// Linear converts seg:off into a 20-bit physical address.
func Linear(seg, off uint16) uint32 {
	return (uint32(seg)<<4 + uint32(off)) & 0xFFFFF
}

// Read8 reads the byte at seg:off.
func (lsu *LoadStoreUnit) Read8(seg, off uint16) byte {
	return lsu.memory.ReadByte(Linear(seg, off))
}

// Peek8 reads the byte at seg:off through Peeker when the memory has one.
func (lsu *LoadStoreUnit) Peek8(seg, off uint16) byte {
	if p, ok := lsu.memory.(Peeker); ok {
		return p.Peek(Linear(seg, off))
	}
	return lsu.memory.ReadByte(Linear(seg, off))
}

// Write8 writes the byte at seg:off.
func (lsu *LoadStoreUnit) Write8(seg, off uint16, v byte) {
	lsu.memory.WriteByte(Linear(seg, off), v)
}

// Read16 reads a little-endian word at seg:off. The offset wraps within the
// segment.
func (lsu *LoadStoreUnit) Read16(seg, off uint16) uint16 {
	lo := lsu.memory.ReadByte(Linear(seg, off))
	hi := lsu.memory.ReadByte(Linear(seg, off+1))
	return uint16(lo) | uint16(hi)<<8
}

// Write16 writes a little-endian word at seg:off.
func (lsu *LoadStoreUnit) Write16(seg, off uint16, v uint16) {
	lsu.memory.WriteByte(Linear(seg, off), byte(v))
	lsu.memory.WriteByte(Linear(seg, off+1), byte(v>>8))
}

// Fetch8 reads the byte at CS:IP and advances IP.
func (lsu *LoadStoreUnit) Fetch8() byte {
	r := lsu.regFile
	v := lsu.Read8(r.Seg[CS], r.IP)
	r.IP++
	return v
}

// Fetch16 reads the word at CS:IP and advances IP.
func (lsu *LoadStoreUnit) Fetch16() uint16 {
	r := lsu.regFile
	v := lsu.Read16(r.Seg[CS], r.IP)
	r.IP += 2
	return v
}

// Push stores a word at SS:SP-2.
func (lsu *LoadStoreUnit) Push(v uint16) {
	r := lsu.regFile
	r.R[SP] -= 2
	lsu.Write16(r.Seg[SS], r.R[SP], v)
}

// Pop loads the word at SS:SP.
func (lsu *LoadStoreUnit) Pop() uint16 {
	r := lsu.regFile
	v := lsu.Read16(r.Seg[SS], r.R[SP])
	r.R[SP] += 2
	return v
}
