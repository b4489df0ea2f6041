// Package loader reads BIOS ROMs and character fonts from disk.
package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/sarchlab/x86sim/video"
)

// ErrInvalidImage is returned for a ROM or font file of unusable size.
var ErrInvalidImage = errors.New("invalid image")

// MaxROMSize is the largest ROM that fits below the 1 MiB boundary.
const MaxROMSize = 0x40000

// Font file layouts.
const (
	// PackedFontSize is 256 glyphs of 16 one-byte rows.
	PackedFontSize = 256 * video.GlyphHeight
	// ExpandedFontSize is 256 glyphs of 16x8 pixels, one byte per pixel.
	ExpandedFontSize = PackedFontSize * video.GlyphWidth
)

// LoadROM reads a ROM image.
func LoadROM(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM: %w", err)
	}

	if len(data) == 0 || len(data) > MaxROMSize {
		return nil, fmt.Errorf("ROM %s is %d bytes: %w", path, len(data), ErrInvalidImage)
	}

	return data, nil
}

// LoadFont reads a font file in either packed or expanded layout.
func LoadFont(path string) (*video.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}

	f, err := ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}

	return f, nil
}

// ParseFont decodes font data. Expanded fonts store glyph c row y column x
// at c*128 + y*8 + x, nonzero for a lit pixel.
func ParseFont(data []byte) (*video.Font, error) {
	f := new(video.Font)

	switch len(data) {
	case PackedFontSize:
		copy(f[:], data)
	case ExpandedFontSize:
		for i := range f {
			var row byte
			for x := 0; x < video.GlyphWidth; x++ {
				if data[i*video.GlyphWidth+x] != 0 {
					row |= 0x80 >> x
				}
			}
			f[i] = row
		}
	default:
		return nil, fmt.Errorf("font is %d bytes: %w", len(data), ErrInvalidImage)
	}

	return f, nil
}
