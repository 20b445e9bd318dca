// Package indicator drives keyboard backlights and combines indicators.
package indicator

import (
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultSysfsRoot = "/sys/class/leds"

	// BacklightLevels is the number of steps between off and full brightness.
	BacklightLevels = 4

	breathOnMs  = 1000
	breathOffMs = 1000
)

var ErrNoTimerTrigger = errors.New("led does not support the timer trigger")

// Backlight is an LED class device used as keyboard backlight. Solid mode holds
// the selected brightness, breathing mode hands the LED to the kernel timer
// trigger.
type Backlight struct {
	dir   string
	max   int
	level int
	mode  ergolayer.Mode
}

var (
	_ ergolayer.Indicator = (*Backlight)(nil)
	_ ergolayer.Backlight = (*Backlight)(nil)
)

// OpenBacklight opens the LED called name below root, typically
// /sys/class/leds/<name>. It starts at full brightness.
func OpenBacklight(root, name string) (*Backlight, error) {
	if root == "" {
		root = DefaultSysfsRoot
	}
	dir := filepath.Join(root, name)

	max, err := readInt(filepath.Join(dir, "max_brightness"))
	if err != nil {
		return nil, fmt.Errorf("read max brightness: %w", err)
	}

	return &Backlight{
		dir:   dir,
		max:   max,
		level: BacklightLevels,
		mode:  ergolayer.ModeSolid,
	}, nil
}

func (b *Backlight) SetMode(mode ergolayer.Mode) error {
	switch mode {
	case ergolayer.ModeBreathing:
		if err := b.write("trigger", "timer"); err != nil {
			return fmt.Errorf("%w: %v", ErrNoTimerTrigger, err)
		}
		if err := b.write("delay_on", strconv.Itoa(breathOnMs)); err != nil {
			return err
		}
		if err := b.write("delay_off", strconv.Itoa(breathOffMs)); err != nil {
			return err
		}

	default:
		if err := b.write("trigger", "none"); err != nil {
			return err
		}
		b.mode = mode
		return b.applyLevel()
	}

	b.mode = mode
	return nil
}

// SetLayerLED is a no-op, the backlight does not show layers.
func (b *Backlight) SetLayerLED(int, bool) error {
	return nil
}

// Step cycles through the brightness levels, wrapping from full to off.
func (b *Backlight) Step() error {
	b.level = (b.level + 1) % (BacklightLevels + 1)
	return b.applyLevel()
}

func (b *Backlight) Adjust(delta int) error {
	level := b.level + delta
	if level < 0 {
		level = 0
	}
	if level > BacklightLevels {
		level = BacklightLevels
	}
	b.level = level
	return b.applyLevel()
}

func (b *Backlight) Level() int {
	return b.level
}

func (b *Backlight) applyLevel() error {
	if b.mode == ergolayer.ModeBreathing {
		return nil
	}
	return b.write("brightness", strconv.Itoa(b.max*b.level/BacklightLevels))
}

func (b *Backlight) write(attr, value string) error {
	path := filepath.Join(b.dir, attr)
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func readInt(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}
