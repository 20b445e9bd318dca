package ergolayer

import (
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"fmt"
	"github.com/holoplot/go-evdev"
	"time"
)

// KeyEvent is a single key transition reported by the physical keyboard.
type KeyEvent struct {
	Code    evdev.EvCode
	Pressed bool
	Time    time.Time
}

type EventSource interface {
	ReadEvent() (KeyEvent, error)
}

// HostOutput is where resolved keys and text go.
type HostOutput interface {
	RegisterKey(code evdev.EvCode) error
	UnregisterKey(code evdev.EvCode) error
	EmitText(text string) error
}

// Mode is the global indicator mode.
type Mode int

const (
	ModeSolid Mode = iota
	ModeBreathing
)

func (m Mode) String() string {
	switch m {
	case ModeSolid:
		return "solid"
	case ModeBreathing:
		return "breathing"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// LayerLEDs is the number of discrete layer indicator LEDs, numbered 1..LayerLEDs.
const LayerLEDs = 3

type Indicator interface {
	SetMode(mode Mode) error
	SetLayerLED(index int, on bool) error
}

type Backlight interface {
	Step() error
	Adjust(delta int) error
}

// Observer is told about resolved presses and state changes. Observers are called
// from the responder loop and must return promptly.
type Observer interface {
	Pressed(layer int, pos keymap.Position, action keymap.Action)
	LayerChanged(top int)
	ModeChanged(mode Mode)
}

// PressCount is the number of presses of one key position on one layer.
type PressCount struct {
	Layer int             `json:"layer"`
	Pos   keymap.Position `json:"pos"`
	Count int64           `json:"count"`
}

type StatsStore interface {
	AddPresses(counts []PressCount) error
	GetPresses(layer int) ([]PressCount, error)
}
