//go:build !headless

package desktop

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/sarchlab/x86sim/input"
)

// keymap translates host keys to guest scan codes.
var keymap = buildKeymap()

func buildKeymap() map[ebiten.Key]uint16 {
	m := map[ebiten.Key]uint16{
		ebiten.KeyEscape:       input.Escape,
		ebiten.KeyBackspace:    input.Backspace,
		ebiten.KeyTab:          input.Tab,
		ebiten.KeyEnter:        input.Enter,
		ebiten.KeyNumpadEnter:  input.Enter,
		ebiten.KeySpace:        input.Space,
		ebiten.KeyControlLeft:  input.LeftCtrl,
		ebiten.KeyControlRight: input.LeftCtrl,
		ebiten.KeyShiftLeft:    input.LeftShift,
		ebiten.KeyShiftRight:   input.RightShift,
		ebiten.KeyAltLeft:      input.LeftAlt,
		ebiten.KeyAltRight:     input.LeftAlt,
		ebiten.KeyCapsLock:     input.CapsLock,
		ebiten.KeyNumLock:      input.NumLock,
		ebiten.KeyScrollLock:   input.ScrollLock,
		ebiten.KeyArrowUp:      input.Up,
		ebiten.KeyArrowDown:    input.Down,
		ebiten.KeyArrowLeft:    input.Left,
		ebiten.KeyArrowRight:   input.Right,
		ebiten.KeyHome:         input.Home,
		ebiten.KeyEnd:          input.End,
		ebiten.KeyPageUp:       input.PageUp,
		ebiten.KeyPageDown:     input.PageDown,
		ebiten.KeyInsert:       input.Insert,
		ebiten.KeyDelete:       input.Delete,
	}

	fkeys := []ebiten.Key{
		ebiten.KeyF1, ebiten.KeyF2, ebiten.KeyF3, ebiten.KeyF4,
		ebiten.KeyF5, ebiten.KeyF6, ebiten.KeyF7, ebiten.KeyF8,
		ebiten.KeyF9, ebiten.KeyF10, ebiten.KeyF11, ebiten.KeyF12,
	}
	for i, k := range fkeys {
		code, _ := input.FunctionKey(i + 1)
		m[k] = code
	}

	byRune := func(k ebiten.Key, r rune) {
		if code, _, ok := input.Lookup(r); ok {
			m[k] = code
		}
	}
	letters := []ebiten.Key{
		ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE,
		ebiten.KeyF, ebiten.KeyG, ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ,
		ebiten.KeyK, ebiten.KeyL, ebiten.KeyM, ebiten.KeyN, ebiten.KeyO,
		ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR, ebiten.KeyS, ebiten.KeyT,
		ebiten.KeyU, ebiten.KeyV, ebiten.KeyW, ebiten.KeyX, ebiten.KeyY,
		ebiten.KeyZ,
	}
	for i, k := range letters {
		byRune(k, rune('a'+i))
	}
	digits := []ebiten.Key{
		ebiten.KeyDigit0, ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3,
		ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7,
		ebiten.KeyDigit8, ebiten.KeyDigit9,
	}
	for i, k := range digits {
		byRune(k, rune('0'+i))
	}
	byRune(ebiten.KeyMinus, '-')
	byRune(ebiten.KeyEqual, '=')
	byRune(ebiten.KeyBracketLeft, '[')
	byRune(ebiten.KeyBracketRight, ']')
	byRune(ebiten.KeyBackslash, '\\')
	byRune(ebiten.KeySemicolon, ';')
	byRune(ebiten.KeyQuote, '\'')
	byRune(ebiten.KeyBackquote, '`')
	byRune(ebiten.KeyComma, ',')
	byRune(ebiten.KeyPeriod, '.')
	byRune(ebiten.KeySlash, '/')

	return m
}
