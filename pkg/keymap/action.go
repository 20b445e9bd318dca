package keymap

import (
	"fmt"
	"github.com/holoplot/go-evdev"
)

// Kind tags the variant held by an Action.
type Kind uint8

const (
	// KindTransparent defers to the next active layer below. It is the zero value,
	// so unassigned grid cells fall through.
	KindTransparent Kind = iota
	KindNone
	KindKey
	KindModTap
	KindMomentary
	KindToggle
	KindCustom
	KindMacro
	KindBacklight
)

var kindNames = map[Kind]string{
	KindTransparent: "transparent",
	KindNone:        "none",
	KindKey:         "key",
	KindModTap:      "mod-tap",
	KindMomentary:   "momentary",
	KindToggle:      "toggle",
	KindCustom:      "custom",
	KindMacro:       "macro",
	KindBacklight:   "backlight",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Action is what a key position does on a given layer. Only the fields relevant
// to Kind are set.
type Action struct {
	Kind      Kind
	Code      evdev.EvCode
	Mods      Mods
	Layer     int
	Custom    CustomCode
	Macro     Macro
	Backlight BacklightOp
}

func (a Action) String() string {
	switch a.Kind {
	case KindKey:
		if a.Mods == 0 {
			return evdev.CodeName(evdev.EV_KEY, a.Code)
		}
		return fmt.Sprintf("%s(%s)", a.Mods, evdev.CodeName(evdev.EV_KEY, a.Code))
	case KindModTap:
		return fmt.Sprintf("%s_T(%s)", a.Mods, evdev.CodeName(evdev.EV_KEY, a.Code))
	case KindMomentary:
		return fmt.Sprintf("MO(%d)", a.Layer)
	case KindToggle:
		return fmt.Sprintf("TG(%d)", a.Layer)
	case KindCustom:
		return a.Custom.String()
	case KindMacro:
		return fmt.Sprintf("M(%d)", a.Macro)
	case KindBacklight:
		return a.Backlight.String()
	}
	return a.Kind.String()
}

// Trans is the transparent action.
var Trans = Action{Kind: KindTransparent}

// NoKey blocks lower layers and does nothing.
var NoKey = Action{Kind: KindNone}

func Key(code evdev.EvCode) Action {
	return Action{Kind: KindKey, Code: code}
}

// With adds modifiers to a key action.
func (a Action) With(mods Mods) Action {
	a.Mods |= mods
	return a
}

func LCtl(code evdev.EvCode) Action { return Key(code).With(ModLCtrl) }
func LSft(code evdev.EvCode) Action { return Key(code).With(ModLShift) }
func RSft(code evdev.EvCode) Action { return Key(code).With(ModRShift) }
func RAlt(code evdev.EvCode) Action { return Key(code).With(ModRAlt) }

// LSA is Left Shift + Left Alt.
func LSA(code evdev.EvCode) Action { return Key(code).With(ModLShift | ModLAlt) }

// ModTap acts as mods when held and as code when tapped.
func ModTap(mods Mods, code evdev.EvCode) Action {
	return Action{Kind: KindModTap, Code: code, Mods: mods}
}

// MO activates layer while held.
func MO(layer int) Action {
	return Action{Kind: KindMomentary, Layer: layer}
}

// TG toggles layer on every press.
func TG(layer int) Action {
	return Action{Kind: KindToggle, Layer: layer}
}

func Custom(code CustomCode) Action {
	return Action{Kind: KindCustom, Custom: code}
}

func MacroKey(m Macro) Action {
	return Action{Kind: KindMacro, Macro: m}
}

func BacklightKey(op BacklightOp) Action {
	return Action{Kind: KindBacklight, Backlight: op}
}

// CustomCode identifies a key that types a fixed glyph string instead of a keycode.
type CustomCode uint16

const (
	Shrug CustomCode = iota + 1
	TableFlip
	Why
)

// Text returns the glyphs typed for the code.
func (c CustomCode) Text() (string, bool) {
	switch c {
	case Shrug:
		return "ლ(ಠ益ಠლ)", true
	case TableFlip:
		return "(ノಠ益ಠ)ノ彡┻━┻", true
	case Why:
		return `¯\_(ツ)_/¯`, true
	default:
		return "", false
	}
}

func (c CustomCode) String() string {
	switch c {
	case Shrug:
		return "shrug"
	case TableFlip:
		return "table-flip"
	case Why:
		return "why"
	default:
		return fmt.Sprintf("custom(%d)", uint16(c))
	}
}

// Macro identifies a press/release macro.
type Macro uint8

const (
	// HoldRightShift registers Right Shift while the key is held.
	HoldRightShift Macro = iota
)

type BacklightOp uint8

const (
	BacklightStep BacklightOp = iota
	BacklightInc
	BacklightDec
)

func (op BacklightOp) String() string {
	switch op {
	case BacklightStep:
		return "BL_STEP"
	case BacklightInc:
		return "BL_INC"
	case BacklightDec:
		return "BL_DEC"
	}
	return fmt.Sprintf("BL(%d)", uint8(op))
}
