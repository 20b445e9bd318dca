package config

import (
	"codeberg.org/miketth/ergolayer/pkg/evdevio"
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"fmt"
	"github.com/holoplot/go-evdev"
)

// ResolveMatrix applies the configured matrix overrides on top of base. A
// position taken over by an override is unbound from its previous key.
func (c Config) ResolveMatrix(base keymap.Matrix) (keymap.Matrix, error) {
	out := make(keymap.Matrix, len(base)+len(c.Matrix))
	for code, pos := range base {
		out[code] = pos
	}

	for name, pos := range c.Matrix {
		code, err := evdevio.ParseKey(name)
		if err != nil {
			return nil, fmt.Errorf("matrix: %w", err)
		}
		for other, p := range out {
			if p == pos && other != code {
				delete(out, other)
			}
		}
		out[code] = pos
	}

	return out, nil
}

// ResolveLEDs returns the layer indicator LEDs in order.
func (c Config) ResolveLEDs() ([]evdev.EvCode, error) {
	leds := make([]evdev.EvCode, 0, len(c.LayerLEDs))
	for _, name := range c.LayerLEDs {
		code, err := evdevio.ParseLED(name)
		if err != nil {
			return nil, fmt.Errorf("layer_leds: %w", err)
		}
		leds = append(leds, code)
	}
	return leds, nil
}
