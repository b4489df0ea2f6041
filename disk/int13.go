package disk

import (
	"errors"

	"github.com/sarchlab/x86sim/emu"
)

// INT 13h status codes.
const (
	StatusOK          = 0x00
	StatusBadCommand  = 0x01
	StatusNotFound    = 0x04
	StatusNoDrive     = 0xAA
	hardDiskStatusBDA = 0x474
)

// HandleInt13 services a BIOS disk request from the CPU registers.
func (m *Manager) HandleInt13(e *emu.Emulator) {
	r := e.RegFile()
	fn := r.AH()
	num := byte(r.R[emu.DX])

	switch fn {
	case 0x00:
		m.setStatus(e, num, StatusOK, false)
	case 0x01:
		r.SetAH(m.lastAH[num])
		r.Flags.CF = m.lastCF[num]
		return
	case 0x02, 0x03:
		m.transfer(e, fn == 0x03)
	case 0x04, 0x05:
		m.setStatus(e, num, StatusOK, false)
	case 0x08:
		m.parameters(e)
	default:
		m.setStatus(e, num, StatusBadCommand, true)
	}
}

func (m *Manager) setStatus(e *emu.Emulator, num, status byte, failed bool) {
	r := e.RegFile()
	r.SetAH(status)
	r.Flags.CF = failed
	m.lastAH[num] = status
	m.lastCF[num] = failed
	if num >= DriveC {
		e.Memory().WriteByte(hardDiskStatusBDA, status)
	}
}

func (m *Manager) transfer(e *emu.Emulator, write bool) {
	r := e.RegFile()
	num := byte(r.R[emu.DX])
	cx := r.R[emu.CX]
	cyl := cx>>8 | (cx&0xC0)<<2
	sect := cx & 0x3F
	head := r.R[emu.DX] >> 8
	count := uint16(r.AL())
	seg, off := r.Seg[emu.ES], r.R[emu.BX]

	var (
		n   int
		err error
	)
	if write {
		n, err = m.WriteSectors(e.Memory(), num, cyl, sect, head, count, seg, off)
	} else {
		n, err = m.ReadSectors(e.Memory(), num, cyl, sect, head, count, seg, off)
	}

	r.SetAL(byte(n))
	switch {
	case errors.Is(err, ErrNoDisk):
		m.setStatus(e, num, StatusNoDrive, true)
	case err != nil, n == 0 && count != 0:
		m.setStatus(e, num, StatusNotFound, true)
	default:
		m.setStatus(e, num, StatusOK, false)
	}
}

func (m *Manager) parameters(e *emu.Emulator) {
	r := e.RegFile()
	num := byte(r.R[emu.DX])
	geom, err := m.Geometry(num)
	if err != nil {
		m.setStatus(e, num, StatusNoDrive, true)
		return
	}

	lastCyl := geom.Cylinders - 1
	r.R[emu.CX] = lastCyl<<8 | (lastCyl>>2)&0xC0 | geom.Sectors&0x3F
	r.SetReg8(6, byte(geom.Heads-1)) // DH
	if num < DriveC {
		r.SetReg8(3, 4) // BL: 1.44M
		r.SetReg8(2, 2) // DL: two floppy drives
	} else {
		r.SetReg8(2, m.hdCount)
	}
	m.setStatus(e, num, StatusOK, false)
}
