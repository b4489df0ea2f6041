package frontend

import "github.com/sarchlab/x86sim/input"

// KeySink receives key events for the guest.
type KeySink interface {
	KeyDown(code uint16)
	KeyUp(code uint16)
	Type(r rune) bool
}

// QuitByte is the terminal byte (Ctrl+]) that ends a session instead of
// reaching the guest.
const QuitByte = 0x1D

var escapeKeys = map[string]uint16{
	"[A":  input.Up,
	"[B":  input.Down,
	"[C":  input.Right,
	"[D":  input.Left,
	"[H":  input.Home,
	"[F":  input.End,
	"OH":  input.Home,
	"OF":  input.End,
	"[1~": input.Home,
	"[4~": input.End,
	"[2~": input.Insert,
	"[3~": input.Delete,
	"[5~": input.PageUp,
	"[6~": input.PageDown,
	"OP":  input.F1,
	"OQ":  input.F1 + 1,
	"OR":  input.F1 + 2,
	"OS":  input.F1 + 3,
}

// function keys sent as ESC [ n ~
var tildeFunctionKeys = map[string]int{
	"[15~": 5, "[17~": 6, "[18~": 7, "[19~": 8,
	"[20~": 9, "[21~": 10, "[23~": 11, "[24~": 12,
}

func press(sink KeySink, code uint16) {
	sink.KeyDown(code)
	sink.KeyUp(code)
}

// FeedTerminal translates one chunk of raw terminal input into key
// events. Escape sequences must arrive whole within a chunk; a lone ESC is
// the Escape key. It reports whether the quit byte was seen, in which case
// the rest of the chunk is dropped.
func FeedTerminal(sink KeySink, chunk []byte) (quit bool) {
	for i := 0; i < len(chunk); i++ {
		b := chunk[i]
		switch {
		case b == QuitByte:
			return true
		case b == 0x1B:
			n := feedEscape(sink, chunk[i+1:])
			i += n
		case b == '\r' || b == '\n':
			press(sink, input.Enter)
		case b == '\t':
			press(sink, input.Tab)
		case b == 0x7F || b == '\b':
			press(sink, input.Backspace)
		case b >= 0x01 && b <= 0x1A:
			sink.KeyDown(input.LeftCtrl)
			sink.Type(rune('a' + b - 1))
			sink.KeyUp(input.LeftCtrl)
		case b < 0x80:
			sink.Type(rune(b))
		}
	}
	return false
}

// feedEscape handles the bytes after an ESC and returns how many it used.
func feedEscape(sink KeySink, rest []byte) int {
	if len(rest) == 0 || rest[0] == 0x1B {
		press(sink, input.Escape)
		return 0
	}
	if rest[0] != '[' && rest[0] != 'O' {
		// Alt+key: deliver the key with Alt held.
		sink.KeyDown(input.LeftAlt)
		sink.Type(rune(rest[0]))
		sink.KeyUp(input.LeftAlt)
		return 1
	}

	// A sequence ends at its first byte in 0x40-0x7E after the introducer.
	end := 1
	for end < len(rest) && !(rest[end] >= 0x40 && rest[end] <= 0x7E) {
		end++
	}
	if end == len(rest) {
		press(sink, input.Escape)
		return 0
	}
	seq := string(rest[:end+1])

	if code, ok := escapeKeys[seq]; ok {
		press(sink, code)
	} else if n, ok := tildeFunctionKeys[seq]; ok {
		code, _ := input.FunctionKey(n)
		press(sink, code)
	}
	return end + 1
}
