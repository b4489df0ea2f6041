package disk

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// BIOS drive numbers.
const (
	DriveA = 0x00
	DriveB = 0x01
	DriveC = 0x80
	DriveD = 0x81
)

// Geometry is the CHS layout of a drive.
type Geometry struct {
	Cylinders uint16
	Heads     uint16
	Sectors   uint16
}

// LBA converts a CHS address (sectors counted from 1) into a sector index.
func (g Geometry) LBA(cyl, head, sect uint16) uint32 {
	return (uint32(cyl)*uint32(g.Heads)+uint32(head))*uint32(g.Sectors) + uint32(sect) - 1
}

// Memory is the address space disk transfers read and write.
type Memory interface {
	ReadByte(addr uint32) byte
	WriteByte(addr uint32, value byte)
}

type drive struct {
	image Image
	cache *SectorCache
	geom  Geometry
}

// Manager owns the drives of a machine.
type Manager struct {
	drives      [256]*drive
	hdCount     byte
	cacheConfig CacheConfig
	logger      *slog.Logger

	lastAH [256]byte
	lastCF [256]bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for drive events.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithCacheConfig sets the sector cache placed in front of every image.
func WithCacheConfig(c CacheConfig) ManagerOption {
	return func(m *Manager) {
		m.cacheConfig = c
	}
}

// NewManager creates a manager with no disks inserted.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		cacheConfig: DefaultCacheConfig(),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Insert places image in the drive and derives its geometry. A disk
// already in the drive is ejected first.
func (m *Manager) Insert(num byte, image Image) error {
	if image == nil {
		return ErrNoDisk
	}
	if m.drives[num] != nil {
		if err := m.Eject(num); err != nil {
			return err
		}
	}

	d := &drive{
		image: image,
		cache: NewSectorCache(m.cacheConfig, image),
	}

	if num >= DriveC {
		geom, err := hardDiskGeometry(d.cache)
		if err != nil {
			return fmt.Errorf("failed to read master boot record: %w", err)
		}
		d.geom = geom
		m.hdCount++
	} else {
		d.geom = floppyGeometry(image.Size())
	}

	m.drives[num] = d
	m.logger.Info("disk inserted",
		"drive", fmt.Sprintf("0x%02X", num),
		"bytes", image.Size(),
		"cylinders", d.geom.Cylinders,
		"heads", d.geom.Heads,
		"sectors", d.geom.Sectors)

	return nil
}

func floppyGeometry(size int64) Geometry {
	g := Geometry{Cylinders: 80, Heads: 2, Sectors: 18}
	if size <= 1228800 {
		g.Sectors = 15
	}
	if size <= 737280 {
		g.Sectors = 9
	}
	if size <= 368640 {
		g.Cylinders = 40
		g.Sectors = 9
	}
	if size <= 163840 {
		g.Cylinders = 40
		g.Sectors = 8
		g.Heads = 1
	}
	return g
}

// hardDiskGeometry takes the geometry from the end CHS of an active first
// partition, or assumes 16 heads of 63 sectors.
func hardDiskGeometry(img Image) (Geometry, error) {
	var mbr [SectorSize]byte
	if _, err := img.ReadAt(mbr[:], 0); err != nil && !errors.Is(err, io.EOF) {
		return Geometry{}, err
	}

	const entry = 0x1BE
	if mbr[entry] == 0x80 {
		headEnd := uint16(mbr[entry+5])
		sectEnd := uint16(mbr[entry+6] & 0x3F)
		cylEnd := uint16(mbr[entry+7]) | uint16(mbr[entry+6]&0xC0)<<2
		if sectEnd != 0 {
			return Geometry{
				Cylinders: cylEnd + 1,
				Heads:     headEnd + 1,
				Sectors:   sectEnd,
			}, nil
		}
	}

	return Geometry{
		Cylinders: uint16(img.Size() / (63 * 16 * SectorSize)),
		Heads:     16,
		Sectors:   63,
	}, nil
}

// Eject flushes and removes the disk in the drive.
func (m *Manager) Eject(num byte) error {
	d := m.drives[num]
	if d == nil {
		return nil
	}
	m.drives[num] = nil
	if num >= DriveC {
		m.hdCount--
	}
	if err := d.cache.Flush(); err != nil {
		return fmt.Errorf("failed to flush drive 0x%02X: %w", num, err)
	}
	return nil
}

// Inserted reports whether the drive holds a disk.
func (m *Manager) Inserted(num byte) bool {
	return m.drives[num] != nil
}

// HardDiskCount returns the number of hard disks inserted.
func (m *Manager) HardDiskCount() byte {
	return m.hdCount
}

// Geometry returns the CHS layout of the disk in the drive.
func (m *Manager) Geometry(num byte) (Geometry, error) {
	d := m.drives[num]
	if d == nil {
		return Geometry{}, ErrNoDisk
	}
	return d.geom, nil
}

// CacheStats returns the sector cache statistics of a drive.
func (m *Manager) CacheStats(num byte) CacheStats {
	if d := m.drives[num]; d != nil {
		return d.cache.Stats()
	}
	return CacheStats{}
}

// Flush writes every cached sector back to its image.
func (m *Manager) Flush() error {
	for num, d := range m.drives {
		if d == nil {
			continue
		}
		if err := d.cache.Flush(); err != nil {
			return fmt.Errorf("failed to flush drive 0x%02X: %w", num, err)
		}
	}
	return nil
}

func (m *Manager) locate(num byte, cyl, sect, head uint16) (*drive, int64, error) {
	d := m.drives[num]
	if d == nil {
		return nil, 0, ErrNoDisk
	}
	if sect == 0 {
		return nil, 0, ErrOutOfRange
	}
	off := int64(d.geom.LBA(cyl, head, sect)) * SectorSize
	if off >= d.image.Size() {
		return nil, 0, ErrOutOfRange
	}
	return d, off, nil
}

// ReadSectors copies count sectors starting at cyl/sect/head into memory at
// seg:off and returns the number of whole sectors transferred. Memory is
// written byte by byte so read-only regions stay intact.
func (m *Manager) ReadSectors(mem Memory, num byte, cyl, sect, head, count, seg, off uint16) (int, error) {
	d, pos, err := m.locate(num, cyl, sect, head)
	if err != nil {
		return 0, err
	}

	dest := uint32(seg)<<4 + uint32(off)
	var buf [SectorSize]byte
	done := 0
	for ; done < int(count); done++ {
		n, err := d.cache.ReadAt(buf[:], pos)
		if n < SectorSize {
			if err != nil && !errors.Is(err, io.EOF) {
				return done, err
			}
			break
		}
		for _, b := range buf {
			mem.WriteByte(dest&0xFFFFF, b)
			dest++
		}
		pos += SectorSize
	}
	return done, nil
}

// WriteSectors copies count sectors from memory at seg:off to the disk.
func (m *Manager) WriteSectors(mem Memory, num byte, cyl, sect, head, count, seg, off uint16) (int, error) {
	d, pos, err := m.locate(num, cyl, sect, head)
	if err != nil {
		return 0, err
	}

	src := uint32(seg)<<4 + uint32(off)
	var buf [SectorSize]byte
	done := 0
	for ; done < int(count); done++ {
		for i := range buf {
			buf[i] = mem.ReadByte(src & 0xFFFFF)
			src++
		}
		if _, err := d.cache.WriteAt(buf[:], pos); err != nil {
			if errors.Is(err, ErrOutOfRange) {
				break
			}
			return done, err
		}
		pos += SectorSize
	}
	return done, nil
}
