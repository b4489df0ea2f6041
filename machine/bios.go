package machine

import (
	"github.com/sarchlab/x86sim/config"
	"github.com/sarchlab/x86sim/emu"
)

// Interrupts serviced by the machine instead of the ROM BIOS.
const (
	intVideo     = 0x10
	intDisk      = 0x13
	intBootstrap = 0x19
	intDiskAlias = 0xFD
)

// Boot sector load address and the ROM BASIC entry point.
const (
	bootSegment = 0x07C0
	bootIP      = 0x7C00
	romBasicSeg = 0xF600
)

func (m *Machine) interruptHook(e *emu.Emulator, vector byte) bool {
	switch vector {
	case intVideo:
		return m.display.HandleInt10(e)
	case intBootstrap:
		m.mem.SetBootstrapped(true)
		if !m.cfg.DirectDisk {
			return false
		}
		m.bootstrap(e)
		return true
	case intDisk, intDiskAlias:
		if !m.cfg.DirectDisk {
			return false
		}
		m.disks.HandleInt13(e)
		return true
	}
	return false
}

// bootstrap loads the first sector of the boot drive to 0000:7C00 and jumps
// to it, or enters ROM BASIC when there is no boot drive.
func (m *Machine) bootstrap(e *emu.Emulator) {
	r := e.RegFile()

	if m.bootDrive >= config.BootROMBasic {
		r.Seg[emu.CS] = romBasicSeg
		r.IP = 0
		return
	}

	drive := byte(m.bootDrive)
	r.SetReg8(2, drive) // DL
	if _, err := m.disks.ReadSectors(m.mem, drive, 0, 1, 0, 1, bootSegment, 0); err != nil {
		m.logger.Warn("boot sector not read", "drive", drive, "error", err)
	}
	r.Seg[emu.CS] = 0
	r.IP = bootIP
}
