package keymap

import (
	"github.com/holoplot/go-evdev"
	"strings"
)

// Mods is a set of modifier keys.
type Mods uint8

const (
	ModLCtrl Mods = 1 << iota
	ModLShift
	ModLAlt
	ModLGui
	ModRCtrl
	ModRShift
	ModRAlt
	ModRGui
)

var modCodes = [...]struct {
	mod  Mods
	code evdev.EvCode
	name string
}{
	{ModLCtrl, evdev.KEY_LEFTCTRL, "LCtrl"},
	{ModLShift, evdev.KEY_LEFTSHIFT, "LShift"},
	{ModLAlt, evdev.KEY_LEFTALT, "LAlt"},
	{ModLGui, evdev.KEY_LEFTMETA, "LGui"},
	{ModRCtrl, evdev.KEY_RIGHTCTRL, "RCtrl"},
	{ModRShift, evdev.KEY_RIGHTSHIFT, "RShift"},
	{ModRAlt, evdev.KEY_RIGHTALT, "RAlt"},
	{ModRGui, evdev.KEY_RIGHTMETA, "RGui"},
}

// Codes returns the key codes of the modifiers in the set, left hand first.
func (m Mods) Codes() []evdev.EvCode {
	if m == 0 {
		return nil
	}

	codes := make([]evdev.EvCode, 0, 2)
	for _, mc := range modCodes {
		if m&mc.mod != 0 {
			codes = append(codes, mc.code)
		}
	}
	return codes
}

func (m Mods) String() string {
	if m == 0 {
		return "none"
	}

	names := make([]string, 0, 2)
	for _, mc := range modCodes {
		if m&mc.mod != 0 {
			names = append(names, mc.name)
		}
	}
	return strings.Join(names, "+")
}

// ModForCode reports the modifier a key code stands for, if any.
func ModForCode(code evdev.EvCode) (Mods, bool) {
	for _, mc := range modCodes {
		if mc.code == code {
			return mc.mod, true
		}
	}
	return 0, false
}
