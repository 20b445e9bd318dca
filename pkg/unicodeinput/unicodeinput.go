// Package unicodeinput turns text into the key strokes a host input method needs
// to type arbitrary unicode characters.
package unicodeinput

import (
	"errors"
	"fmt"
	"github.com/holoplot/go-evdev"
	"strings"
	"unicode"
	"unicode/utf16"
)

type Mode int

const (
	// Linux uses the IBus/GTK Ctrl+Shift+U entry: hex digits, then space.
	Linux Mode = iota
	// MacOS uses the "Unicode Hex Input" source: Option held while typing 4 hex
	// digits per UTF-16 unit.
	MacOS
	// WinCompose uses the WinCompose compose key sequence RAlt, U, hex, Enter.
	WinCompose
)

var ErrUnknownMode = errors.New("unknown unicode input mode")

var modeNames = map[Mode]string{
	Linux:      "linux",
	MacOS:      "macos",
	WinCompose: "wincompose",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	for mode, name := range modeNames {
		if strings.EqualFold(s, name) {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownMode)
}

// Stroke is a single key transition.
type Stroke struct {
	Code evdev.EvCode
	Down bool
}

var hexKeys = [16]evdev.EvCode{
	evdev.KEY_0, evdev.KEY_1, evdev.KEY_2, evdev.KEY_3,
	evdev.KEY_4, evdev.KEY_5, evdev.KEY_6, evdev.KEY_7,
	evdev.KEY_8, evdev.KEY_9, evdev.KEY_A, evdev.KEY_B,
	evdev.KEY_C, evdev.KEY_D, evdev.KEY_E, evdev.KEY_F,
}

type encoder struct {
	strokes []Stroke
}

func (e *encoder) down(code evdev.EvCode) { e.strokes = append(e.strokes, Stroke{code, true}) }
func (e *encoder) up(code evdev.EvCode)   { e.strokes = append(e.strokes, Stroke{code, false}) }

func (e *encoder) tap(code evdev.EvCode) {
	e.down(code)
	e.up(code)
}

// hex types v as lowercase hex, at least minDigits long.
func (e *encoder) hex(v uint32, minDigits int) {
	digits := make([]evdev.EvCode, 0, 8)
	for v > 0 || len(digits) < minDigits {
		digits = append(digits, hexKeys[v&0xf])
		v >>= 4
	}
	for i := len(digits) - 1; i >= 0; i-- {
		e.tap(digits[i])
	}
}

// Encode returns the strokes that type text in the given mode.
func Encode(mode Mode, text string) ([]Stroke, error) {
	if _, ok := modeNames[mode]; !ok {
		return nil, fmt.Errorf("%s: %w", mode, ErrUnknownMode)
	}

	e := &encoder{strokes: make([]Stroke, 0, len(text)*12)}

	for _, r := range text {
		switch mode {
		case Linux:
			e.down(evdev.KEY_LEFTCTRL)
			e.down(evdev.KEY_LEFTSHIFT)
			e.tap(evdev.KEY_U)
			e.up(evdev.KEY_LEFTSHIFT)
			e.up(evdev.KEY_LEFTCTRL)
			e.hex(uint32(r), 1)
			e.tap(evdev.KEY_SPACE)

		case MacOS:
			e.down(evdev.KEY_LEFTALT)
			if r1, r2 := utf16.EncodeRune(r); r1 != unicode.ReplacementChar {
				e.hex(uint32(r1), 4)
				e.hex(uint32(r2), 4)
			} else {
				e.hex(uint32(r), 4)
			}
			e.up(evdev.KEY_LEFTALT)

		case WinCompose:
			e.tap(evdev.KEY_RIGHTALT)
			e.tap(evdev.KEY_U)
			e.hex(uint32(r), 1)
			e.tap(evdev.KEY_ENTER)
		}
	}

	return e.strokes, nil
}
