package evdevio

import (
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"errors"
	"fmt"
	"github.com/holoplot/go-evdev"
	"strings"
)

var (
	ErrUnknownLED = errors.New("unknown led")
	ErrUnknownKey = errors.New("unknown key")
)

// DefaultLayerLEDs are the lock LEDs used as layer indicators 1, 2 and 3.
var DefaultLayerLEDs = []evdev.EvCode{evdev.LED_NUML, evdev.LED_CAPSL, evdev.LED_SCROLLL}

type LEDWriter interface {
	SetLED(code evdev.EvCode, on bool) error
}

// LEDIndicator shows the active layer on a keyboard's lock LEDs. Plain keyboard
// LEDs cannot breathe, so mode changes are ignored.
type LEDIndicator struct {
	out  LEDWriter
	leds []evdev.EvCode
}

var _ ergolayer.Indicator = (*LEDIndicator)(nil)

func NewLEDIndicator(out LEDWriter, leds ...evdev.EvCode) *LEDIndicator {
	if len(leds) == 0 {
		leds = DefaultLayerLEDs
	}
	return &LEDIndicator{out: out, leds: leds}
}

func (i *LEDIndicator) SetMode(ergolayer.Mode) error {
	return nil
}

// SetLayerLED switches layer LED index (1-based). Indexes without a LED are ignored.
func (i *LEDIndicator) SetLayerLED(index int, on bool) error {
	if index < 1 || index > len(i.leds) {
		return nil
	}
	return i.out.SetLED(i.leds[index-1], on)
}

// ParseKey looks up a key code by name, with or without the KEY_ prefix.
func ParseKey(name string) (evdev.EvCode, error) {
	if code, ok := lookupName(evdev.KEYToString, "KEY_", name); ok {
		return code, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownKey)
}

// ParseLED looks up an LED code by name, with or without the LED_ prefix.
func ParseLED(name string) (evdev.EvCode, error) {
	if code, ok := lookupName(evdev.LEDToString, "LED_", name); ok {
		return code, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownLED)
}

func lookupName(names map[evdev.EvCode]string, prefix, name string) (evdev.EvCode, bool) {
	want := strings.ToUpper(name)
	if !strings.HasPrefix(want, prefix) {
		want = prefix + want
	}
	for code, n := range names {
		if n == want {
			return code, true
		}
	}
	return 0, false
}
