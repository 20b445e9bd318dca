package blowrak

import (
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"fmt"
	"github.com/holoplot/go-evdev"
)

// ErgoDox grid: rows 0-5 are the left hand, rows 6-11 the right hand. Each hand has
// four main rows, a bottom row and a thumb cluster row.
const (
	Rows = 12
	Cols = 7

	ergodoxKeys = 76
)

// ergodoxSlots lists grid positions in LAYOUT_ergodox argument order.
var ergodoxSlots = buildSlots()

func buildSlots() []keymap.Position {
	slots := make([]keymap.Position, 0, ergodoxKeys)
	span := func(row, from, to int) {
		for c := from; c <= to; c++ {
			slots = append(slots, keymap.Position{Row: row, Col: c})
		}
	}

	// left hand
	span(0, 0, 6)
	span(1, 0, 6)
	span(2, 0, 5)
	span(3, 0, 6)
	span(4, 0, 4)
	span(5, 0, 5) // thumbs: 2 + 1 + 3

	// right hand, column 0 is the inner column
	span(6, 0, 6)
	span(7, 0, 6)
	span(8, 1, 6)
	span(9, 0, 6)
	span(10, 2, 6)
	span(11, 0, 5)

	return slots
}

// Layout places the 76 actions of an ErgoDox layer, given in LAYOUT_ergodox order,
// onto the grid. Cells without a key are left transparent.
func Layout(keys ...keymap.Action) [][]keymap.Action {
	if len(keys) != ergodoxKeys {
		panic(fmt.Sprintf("ergodox layout needs %d keys, got %d", ergodoxKeys, len(keys)))
	}

	grid := make([][]keymap.Action, Rows)
	for r := range grid {
		grid[r] = make([]keymap.Action, Cols)
	}
	for i, pos := range ergodoxSlots {
		grid[pos.Row][pos.Col] = keys[i]
	}
	return grid
}

// Wiring binds the 76 source key codes, given in LAYOUT_ergodox order, to grid
// positions.
func Wiring(codes ...evdev.EvCode) keymap.Matrix {
	if len(codes) != ergodoxKeys {
		panic(fmt.Sprintf("ergodox wiring needs %d codes, got %d", ergodoxKeys, len(codes)))
	}

	m := make(keymap.Matrix, ergodoxKeys)
	for i, pos := range ergodoxSlots {
		m[codes[i]] = pos
	}
	return m
}

// ANSI binds a standard ANSI keyboard onto the ErgoDox grid. Keys the ANSI board
// lacks (inner columns, extra thumb keys) come from the function row.
var ANSI = Wiring(
	evdev.KEY_ESC, evdev.KEY_1, evdev.KEY_2, evdev.KEY_3, evdev.KEY_4, evdev.KEY_5, evdev.KEY_F5,
	evdev.KEY_TAB, evdev.KEY_Q, evdev.KEY_W, evdev.KEY_E, evdev.KEY_R, evdev.KEY_T, evdev.KEY_F6,
	evdev.KEY_CAPSLOCK, evdev.KEY_A, evdev.KEY_S, evdev.KEY_D, evdev.KEY_F, evdev.KEY_G,
	evdev.KEY_LEFTSHIFT, evdev.KEY_Z, evdev.KEY_X, evdev.KEY_C, evdev.KEY_V, evdev.KEY_B, evdev.KEY_F7,
	evdev.KEY_LEFTCTRL, evdev.KEY_F1, evdev.KEY_F2, evdev.KEY_LEFTMETA, evdev.KEY_LEFTALT,
	evdev.KEY_INSERT, evdev.KEY_DELETE,
	evdev.KEY_HOME,
	evdev.KEY_SPACE, evdev.KEY_BACKSPACE, evdev.KEY_END,

	evdev.KEY_F8, evdev.KEY_6, evdev.KEY_7, evdev.KEY_8, evdev.KEY_9, evdev.KEY_0, evdev.KEY_MINUS,
	evdev.KEY_F9, evdev.KEY_Y, evdev.KEY_U, evdev.KEY_I, evdev.KEY_O, evdev.KEY_P, evdev.KEY_LEFTBRACE,
	evdev.KEY_H, evdev.KEY_J, evdev.KEY_K, evdev.KEY_L, evdev.KEY_SEMICOLON, evdev.KEY_APOSTROPHE,
	evdev.KEY_F10, evdev.KEY_N, evdev.KEY_M, evdev.KEY_COMMA, evdev.KEY_DOT, evdev.KEY_SLASH, evdev.KEY_RIGHTSHIFT,
	evdev.KEY_RIGHTALT, evdev.KEY_LEFT, evdev.KEY_DOWN, evdev.KEY_UP, evdev.KEY_RIGHT,
	evdev.KEY_F11, evdev.KEY_F12,
	evdev.KEY_PAGEUP,
	evdev.KEY_PAGEDOWN, evdev.KEY_RIGHTCTRL, evdev.KEY_ENTER,
)
