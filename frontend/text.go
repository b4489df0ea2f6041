package frontend

import (
	"bufio"
	"fmt"
	"io"

	"golang.org/x/text/encoding/charmap"

	"github.com/sarchlab/x86sim/machine"
)

// cp437Low holds the glyphs code page 437 shows for control bytes.
var cp437Low = []rune(" ☺☻♥♦♣♠•◘○◙♂♀♪♫☼►◄↕‼¶§▬↨↑↓→←∟↔▲▼")

// GlyphRune returns the Unicode character for a code page 437 byte.
func GlyphRune(b byte) rune {
	switch {
	case b < 0x20:
		return cp437Low[b]
	case b == 0x7F:
		return '⌂'
	case b == 0xFF:
		return ' '
	}
	return charmap.CodePage437.DecodeByte(b)
}

// cgaToANSI maps the low three bits of a CGA colour to an ANSI colour.
var cgaToANSI = [8]int{0, 4, 2, 6, 1, 5, 3, 7}

// sgr returns the escape sequence selecting a CGA attribute's colours.
func sgr(attr byte) string {
	fg := 30 + cgaToANSI[attr&7]
	if attr&0x08 != 0 {
		fg += 60
	}
	bg := 40 + cgaToANSI[attr>>4&7]
	return fmt.Sprintf("\x1b[%d;%dm", fg, bg)
}

// DrawText writes a full redraw of a text screen to w using ANSI escapes.
// Graphics modes are reported with a one-line notice.
func DrawText(w io.Writer, t machine.TextScreen) error {
	bw := bufio.NewWriter(w)
	_, _ = bw.WriteString("\x1b[H\x1b[?25l")

	if !t.Text {
		_, _ = bw.WriteString("\x1b[0m\x1b[2J[graphics mode]")
		return bw.Flush()
	}

	for row := 0; row < t.Rows; row++ {
		last := -1
		for col := 0; col < t.Cols; col++ {
			ch, attr := t.Cell(col, row)
			if int(attr) != last {
				_, _ = bw.WriteString(sgr(attr))
				last = int(attr)
			}
			_, _ = bw.WriteRune(GlyphRune(ch))
		}
		_, _ = bw.WriteString("\x1b[0m")
		if row < t.Rows-1 {
			_, _ = bw.WriteString("\r\n")
		}
	}

	fmt.Fprintf(bw, "\x1b[%d;%dH\x1b[?25h", t.CursorRow+1, t.CursorCol+1)
	return bw.Flush()
}
