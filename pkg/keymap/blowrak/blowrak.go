// Package blowrak holds the blowrak ErgoDox keymap: a Dvorak-like base layer
// for a Swedish host layout, plus symbol, media and qwerty layers.
package blowrak

import (
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"github.com/holoplot/go-evdev"
)

const (
	Base   = 0
	Symb   = 1
	Media  = 2
	Qwerty = 3
)

var _______ = keymap.Trans

// Swedish host layout keys, named after the glyph they produce.
var (
	sePlus = keymap.Key(evdev.KEY_MINUS)
	seAcut = keymap.Key(evdev.KEY_EQUAL)
	seAo   = keymap.Key(evdev.KEY_LEFTBRACE)
	seCirc = keymap.Key(evdev.KEY_RIGHTBRACE)
	seQuot = keymap.Key(evdev.KEY_BACKSLASH)
	seOe   = keymap.Key(evdev.KEY_SEMICOLON)
	seAe   = keymap.Key(evdev.KEY_APOSTROPHE)
	seMins = keymap.Key(evdev.KEY_SLASH)
	seLtgt = keymap.Key(evdev.KEY_102ND)
	seLcbr = keymap.RAlt(evdev.KEY_7)
	seLbrc = keymap.RAlt(evdev.KEY_8)
	seRbrc = keymap.RAlt(evdev.KEY_9)
	seRcbr = keymap.RAlt(evdev.KEY_0)
	sePipe = seLtgt.With(keymap.ModRAlt)
	seBsls = sePlus.With(keymap.ModRAlt)

	aTilde = seCirc.With(keymap.ModRAlt)
)

// IDE shortcuts.
var (
	ideRun     = keymap.RSft(evdev.KEY_F10)
	ideBuild   = keymap.LCtl(evdev.KEY_F9)
	ideRebuild = keymap.LSA(evdev.KEY_M)
)

func k(code evdev.EvCode) keymap.Action { return keymap.Key(code) }

func altNum(code evdev.EvCode) keymap.Action { return keymap.RAlt(code) }

func baseLayer(qwertyToggle keymap.Action, rightShift keymap.Action) keymap.Layer {
	return keymap.Layer{Name: "base", Grid: Layout(
		k(evdev.KEY_ESC), k(evdev.KEY_1), k(evdev.KEY_2), k(evdev.KEY_3), k(evdev.KEY_4), k(evdev.KEY_5), _______,
		k(evdev.KEY_TAB), seAo, seAe, seOe, k(evdev.KEY_P), k(evdev.KEY_Y), ideRebuild,
		k(evdev.KEY_LEFTCTRL), k(evdev.KEY_A), k(evdev.KEY_O), k(evdev.KEY_E), k(evdev.KEY_U), k(evdev.KEY_I),
		k(evdev.KEY_LEFTSHIFT), k(evdev.KEY_DOT), k(evdev.KEY_Q), k(evdev.KEY_J), k(evdev.KEY_K), k(evdev.KEY_B), _______,
		keymap.MO(Media), _______, _______, k(evdev.KEY_LEFTMETA), k(evdev.KEY_LEFTALT),
		k(evdev.KEY_INSERT), k(evdev.KEY_DELETE),
		k(evdev.KEY_HOME),
		k(evdev.KEY_SPACE), k(evdev.KEY_BACKSPACE), k(evdev.KEY_END),

		qwertyToggle, k(evdev.KEY_6), k(evdev.KEY_7), k(evdev.KEY_8), k(evdev.KEY_9), k(evdev.KEY_0), sePlus,
		ideRun, k(evdev.KEY_F), k(evdev.KEY_G), k(evdev.KEY_C), k(evdev.KEY_R), k(evdev.KEY_L), k(evdev.KEY_COMMA),
		k(evdev.KEY_H), k(evdev.KEY_D), k(evdev.KEY_T), k(evdev.KEY_N), k(evdev.KEY_S), keymap.ModTap(keymap.ModRAlt, evdev.KEY_SLASH),
		ideBuild, k(evdev.KEY_X), k(evdev.KEY_M), k(evdev.KEY_W), k(evdev.KEY_V), k(evdev.KEY_Z), rightShift,
		keymap.MO(Symb), k(evdev.KEY_LEFT), k(evdev.KEY_DOWN), k(evdev.KEY_UP), k(evdev.KEY_RIGHT),
		k(evdev.KEY_PREVIOUSSONG), k(evdev.KEY_NEXTSONG),
		k(evdev.KEY_PAGEUP),
		k(evdev.KEY_PAGEDOWN), keymap.ModTap(keymap.ModLCtrl, evdev.KEY_TAB), k(evdev.KEY_ENTER),
	)}
}

func symbLayer() keymap.Layer {
	return keymap.Layer{Name: "symb", Grid: Layout(
		_______, altNum(evdev.KEY_1), altNum(evdev.KEY_2), altNum(evdev.KEY_3), altNum(evdev.KEY_4), altNum(evdev.KEY_5), _______,
		_______, seLcbr, sePipe, seRcbr, _______, _______, _______,
		_______, seLbrc, seBsls, seRbrc, seQuot, _______,
		_______, seLtgt, seCirc, _______, _______, seAcut, _______,
		_______, _______, _______, _______, _______,
		_______, keymap.Custom(keymap.TableFlip),
		keymap.Custom(keymap.Shrug),
		_______, _______, keymap.Custom(keymap.Why),

		_______, altNum(evdev.KEY_6), altNum(evdev.KEY_7), altNum(evdev.KEY_8), altNum(evdev.KEY_9), altNum(evdev.KEY_0), _______,
		_______, _______, _______, _______, _______, _______, aTilde,
		_______, _______, _______, _______, _______, _______,
		_______, _______, _______, _______, _______, _______, _______,
		_______, _______, _______, _______, _______,
		_______, _______,
		_______,
		_______, _______, _______,
	)}
}

func mediaLayer() keymap.Layer {
	return keymap.Layer{Name: "media", Grid: Layout(
		_______, k(evdev.KEY_F1), k(evdev.KEY_F2), k(evdev.KEY_F3), k(evdev.KEY_F4), k(evdev.KEY_F5), _______,
		_______, _______, _______, _______, _______, _______, _______,
		_______, _______, _______, _______, _______, _______,
		_______, _______, _______, _______, _______, _______, _______,
		_______, _______, _______, _______, _______,
		keymap.BacklightKey(keymap.BacklightStep), k(evdev.KEY_PLAYPAUSE),
		keymap.BacklightKey(keymap.BacklightInc),
		_______, _______, keymap.BacklightKey(keymap.BacklightDec),

		_______, k(evdev.KEY_F6), k(evdev.KEY_F7), k(evdev.KEY_F8), k(evdev.KEY_F9), k(evdev.KEY_F10), k(evdev.KEY_F11),
		_______, _______, _______, _______, _______, _______, k(evdev.KEY_F12),
		_______, _______, _______, _______, _______, _______,
		_______, _______, _______, _______, _______, _______, _______,
		_______, _______, _______, _______, _______,
		_______, _______,
		k(evdev.KEY_VOLUMEUP),
		k(evdev.KEY_VOLUMEDOWN), _______, _______,
	)}
}

func qwertyLayer() keymap.Layer {
	return keymap.Layer{Name: "qwerty", Grid: Layout(
		_______, _______, k(evdev.KEY_2), k(evdev.KEY_3), k(evdev.KEY_4), k(evdev.KEY_5), _______,
		_______, k(evdev.KEY_Q), k(evdev.KEY_W), k(evdev.KEY_E), k(evdev.KEY_R), k(evdev.KEY_T), _______,
		_______, k(evdev.KEY_A), k(evdev.KEY_S), k(evdev.KEY_D), k(evdev.KEY_F), k(evdev.KEY_G),
		_______, k(evdev.KEY_Z), k(evdev.KEY_X), k(evdev.KEY_C), k(evdev.KEY_V), k(evdev.KEY_B), _______,
		_______, _______, _______, _______, _______,
		_______, _______,
		_______,
		_______, _______, _______,

		_______, _______, _______, _______, _______, _______, _______,
		_______, k(evdev.KEY_Y), k(evdev.KEY_U), k(evdev.KEY_I), k(evdev.KEY_O), k(evdev.KEY_P), seAo,
		k(evdev.KEY_H), k(evdev.KEY_J), k(evdev.KEY_K), k(evdev.KEY_L), seOe, seAe,
		_______, k(evdev.KEY_N), k(evdev.KEY_M), k(evdev.KEY_COMMA), k(evdev.KEY_DOT), seMins, _______,
		_______, _______, _______, _______, _______,
		_______, _______,
		_______,
		_______, _______, _______,
	)}
}
