package video

// Kind classifies how a mode lays out video memory.
type Kind uint8

// Layouts understood by the renderer.
const (
	KindText Kind = iota
	KindCGA4
	KindCGA2
	KindTandy16
	KindLinear256
)

// Mode describes one BIOS video mode.
type Mode struct {
	Number byte
	Kind   Kind
	Cols   int
	Rows   int
	// Color is false for the monochrome variants of a layout.
	Color bool
	Base  uint32
	// Width and Height are the native pixel dimensions of a frame.
	Width  int
	Height int
}

// Graphics reports whether the mode is an all-points-addressable mode.
func (m Mode) Graphics() bool {
	return m.Kind != KindText
}

// TextBase is the start of CGA video memory.
const TextBase = 0xB8000

// GraphicsBase is the start of the VGA graphics window.
const GraphicsBase = 0xA0000

var modes = map[byte]Mode{
	0x00: {Number: 0x00, Kind: KindText, Cols: 40, Rows: 25, Base: TextBase, Width: 640, Height: 400},
	0x01: {Number: 0x01, Kind: KindText, Cols: 40, Rows: 25, Color: true, Base: TextBase, Width: 640, Height: 400},
	0x02: {Number: 0x02, Kind: KindText, Cols: 80, Rows: 25, Color: true, Base: TextBase, Width: 640, Height: 400},
	0x03: {Number: 0x03, Kind: KindText, Cols: 80, Rows: 25, Color: true, Base: TextBase, Width: 640, Height: 400},
	0x04: {Number: 0x04, Kind: KindCGA4, Cols: 40, Rows: 25, Color: true, Base: TextBase, Width: 320, Height: 200},
	0x05: {Number: 0x05, Kind: KindCGA4, Cols: 40, Rows: 25, Base: TextBase, Width: 320, Height: 200},
	0x06: {Number: 0x06, Kind: KindCGA2, Cols: 80, Rows: 25, Base: TextBase, Width: 640, Height: 200},
	0x07: {Number: 0x07, Kind: KindText, Cols: 80, Rows: 25, Color: true, Base: TextBase, Width: 640, Height: 400},
	0x09: {Number: 0x09, Kind: KindTandy16, Cols: 40, Rows: 25, Color: true, Base: TextBase, Width: 320, Height: 200},
	0x13: {Number: 0x13, Kind: KindLinear256, Cols: 40, Rows: 25, Color: true, Base: GraphicsBase, Width: 320, Height: 200},
}

// LookupMode returns the mode with the given BIOS number.
func LookupMode(n byte) (Mode, bool) {
	m, ok := modes[n]
	return m, ok
}
