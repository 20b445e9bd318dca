package blowrak

import (
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"errors"
	"fmt"
	"github.com/holoplot/go-evdev"
	"sort"
	"time"
)

// IdleTimeout is how long the keyboard may sit untouched before the backlight
// starts breathing.
const IdleTimeout = 30 * time.Second

var ErrUnknownVariant = errors.New("unknown keymap variant")

// Variant is a compiled-in keymap together with its source wiring and idle
// behaviour. An IdleTimeout of zero disables idle dimming.
type Variant struct {
	Name        string
	Keymap      *keymap.Keymap
	Matrix      keymap.Matrix
	IdleTimeout time.Duration
}

var variants = map[string]func() Variant{
	"blowrak":         Blowrak,
	"blowrak-classic": Classic,
}

// Blowrak is the four layer keymap with the qwerty toggle and idle dimming.
func Blowrak() Variant {
	return Variant{
		Name: "blowrak",
		Keymap: keymap.MustNew("blowrak", Rows, Cols,
			baseLayer(keymap.TG(Qwerty), k(evdev.KEY_RIGHTSHIFT)),
			symbLayer(),
			mediaLayer(),
			qwertyLayer(),
		),
		Matrix:      ANSI,
		IdleTimeout: IdleTimeout,
	}
}

// Classic is the earlier three layer keymap. It has no qwerty layer, drives right
// shift through the hold macro and never dims.
func Classic() Variant {
	return Variant{
		Name: "blowrak-classic",
		Keymap: keymap.MustNew("blowrak-classic", Rows, Cols,
			baseLayer(_______, keymap.MacroKey(keymap.HoldRightShift)),
			symbLayer(),
			mediaLayer(),
		),
		Matrix: ANSI,
	}
}

func Lookup(name string) (Variant, error) {
	build, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("%q: %w", name, ErrUnknownVariant)
	}
	return build(), nil
}

func Names() []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
