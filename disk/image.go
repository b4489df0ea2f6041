// Package disk provides floppy and hard disk images, a sector cache in front
// of them, and the BIOS disk services that read and write them.
package disk

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// SectorSize is the size of one disk sector in bytes.
const SectorSize = 512

var (
	// ErrNoDisk is returned for operations on an empty drive.
	ErrNoDisk = errors.New("no disk in drive")
	// ErrOutOfRange is returned when a CHS address lies outside the image.
	ErrOutOfRange = errors.New("sector out of range")
)

// Image is the backing store of one drive.
type Image interface {
	io.ReaderAt
	io.WriterAt
	// Size returns the image length in bytes.
	Size() int64
}

// MemImage is an Image held in memory.
type MemImage struct {
	data []byte
}

// NewMemImage wraps data as an image. Writes modify data in place.
func NewMemImage(data []byte) *MemImage {
	return &MemImage{data: data}
}

// Bytes returns the image contents.
func (m *MemImage) Bytes() []byte {
	return m.data
}

// Size implements Image.
func (m *MemImage) Size() int64 {
	return int64(len(m.data))
}

// ReadAt implements io.ReaderAt.
func (m *MemImage) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt. Images never grow.
func (m *MemImage) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.data)) {
		return 0, ErrOutOfRange
	}
	n := copy(m.data[off:], p)
	if n < len(p) {
		return n, ErrOutOfRange
	}
	return n, nil
}

// FileImage is an Image backed by a host file.
type FileImage struct {
	f    *os.File
	size int64
}

// OpenFile opens a disk image file. Read-only images reject writes.
func OpenFile(path string, readOnly bool) (*FileImage, error) {
	flag := os.O_RDWR
	if readOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open disk image: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to stat disk image: %w", err)
	}
	return &FileImage{f: f, size: info.Size()}, nil
}

// Size implements Image.
func (fi *FileImage) Size() int64 {
	return fi.size
}

// ReadAt implements io.ReaderAt.
func (fi *FileImage) ReadAt(p []byte, off int64) (int, error) {
	return fi.f.ReadAt(p, off)
}

// WriteAt implements io.WriterAt. Writes past the end are refused.
func (fi *FileImage) WriteAt(p []byte, off int64) (int, error) {
	if off+int64(len(p)) > fi.size {
		return 0, ErrOutOfRange
	}
	return fi.f.WriteAt(p, off)
}

// Close closes the file.
func (fi *FileImage) Close() error {
	return fi.f.Close()
}
