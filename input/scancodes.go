package input

// Set 1 make codes of keys used outside the character table.
const (
	Escape     uint16 = 0x01
	Backspace  uint16 = 0x0E
	Tab        uint16 = 0x0F
	Enter      uint16 = 0x1C
	LeftCtrl   uint16 = 0x1D
	LeftShift  uint16 = 0x2A
	RightShift uint16 = 0x36
	LeftAlt    uint16 = 0x38
	Space      uint16 = 0x39
	CapsLock   uint16 = 0x3A
	F1         uint16 = 0x3B
	F10        uint16 = 0x44
	F11        uint16 = 0x57
	F12        uint16 = 0x58
	NumLock    uint16 = 0x45
	ScrollLock uint16 = 0x46

	Home     uint16 = 0xE047
	Up       uint16 = 0xE048
	PageUp   uint16 = 0xE049
	Left     uint16 = 0xE04B
	Right    uint16 = 0xE04D
	End      uint16 = 0xE04F
	Down     uint16 = 0xE050
	PageDown uint16 = 0xE051
	Insert   uint16 = 0xE052
	Delete   uint16 = 0xE053
)

// FunctionKey returns the make code of F1-F12.
func FunctionKey(n int) (uint16, bool) {
	switch {
	case n >= 1 && n <= 10:
		return F1 + uint16(n-1), true
	case n == 11:
		return F11, true
	case n == 12:
		return F12, true
	}
	return 0, false
}

type keyEntry struct {
	code  uint16
	shift bool
}

var keys = map[rune]keyEntry{}

func init() {
	rows := []struct {
		first       uint16
		plain, shft string
	}{
		{0x02, "1234567890-=", "!@#$%^&*()_+"},
		{0x10, "qwertyuiop[]", "QWERTYUIOP{}"},
		{0x1E, "asdfghjkl;'`", "ASDFGHJKL:\"~"},
		{0x2B, "\\zxcvbnm,./", "|ZXCVBNM<>?"},
	}
	for _, row := range rows {
		shifted := []rune(row.shft)
		for i, r := range row.plain {
			keys[r] = keyEntry{code: row.first + uint16(i)}
			keys[shifted[i]] = keyEntry{code: row.first + uint16(i), shift: true}
		}
	}
	keys[' '] = keyEntry{code: Space}
	keys['\r'] = keyEntry{code: Enter}
	keys['\n'] = keyEntry{code: Enter}
	keys['\t'] = keyEntry{code: Tab}
	keys['\b'] = keyEntry{code: Backspace}
	keys[0x7F] = keyEntry{code: Backspace}
	keys[0x1B] = keyEntry{code: Escape}
}

// Lookup returns the make code for an ASCII character and whether shift
// must be held.
func Lookup(r rune) (code uint16, shift, ok bool) {
	e, ok := keys[r]
	return e.code, e.shift, ok
}
