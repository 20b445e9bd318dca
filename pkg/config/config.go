// Package config loads the daemon configuration from YAML.
package config

import (
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"codeberg.org/miketth/ergolayer/pkg/keymap/blowrak"
	"codeberg.org/miketth/ergolayer/pkg/unicodeinput"
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"time"
)

const (
	appName  = "ergolayer"
	fileName = "config.yaml"

	BackendMemory = "memory"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

var (
	ErrBadDuration    = errors.New("duration must not be negative")
	ErrNoDevice       = errors.New("no input device configured")
	ErrUnknownBackend = errors.New("unknown stats backend")
)

type Config struct {
	// Device is an event device path or the kernel name of the keyboard.
	Device  string `yaml:"device"`
	Grab    bool   `yaml:"grab"`
	Variant string `yaml:"variant"`

	// Matrix rebinds source key names (KEY_A or a) to grid positions on top of
	// the variant's wiring.
	Matrix map[string]keymap.Position `yaml:"matrix"`

	TickInterval time.Duration `yaml:"tick_interval"`
	TappingTerm  time.Duration `yaml:"tapping_term"`
	// IdleTimeout overrides the variant's idle timeout when set. Zero disables
	// idle dimming.
	IdleTimeout *time.Duration `yaml:"idle_timeout"`

	UnicodeMode string   `yaml:"unicode_mode"`
	LayerLEDs   []string `yaml:"layer_leds"`

	Backlight BacklightConfig `yaml:"backlight"`
	Stats     StatsConfig     `yaml:"stats"`
	Status    StatusConfig    `yaml:"status"`
}

type BacklightConfig struct {
	// LED is the name of an LED class device, empty when there is none.
	LED       string `yaml:"led"`
	SysfsRoot string `yaml:"sysfs_root"`
}

type StatsConfig struct {
	Backend       string        `yaml:"backend"`
	Path          string        `yaml:"path"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

type StatusConfig struct {
	// Listen is the address of the status API, empty disables it.
	Listen string `yaml:"listen"`
}

func Default() Config {
	return Config{
		Grab:         true,
		Variant:      "blowrak",
		TickInterval: 10 * time.Millisecond,
		TappingTerm:  200 * time.Millisecond,
		UnicodeMode:  unicodeinput.Linux.String(),
		LayerLEDs:    []string{"numl", "capsl", "scrolll"},
		Stats: StatsConfig{
			Backend:       BackendSQLite,
			FlushInterval: time.Minute,
		},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, fileName)
}

// Load reads the config at path over the defaults. With an empty path the XDG
// config directories are searched, and a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		found, err := xdg.SearchConfigFile(filepath.Join(appName, fileName))
		if err != nil {
			return cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Device == "" {
		return ErrNoDevice
	}

	if _, err := blowrak.Lookup(c.Variant); err != nil {
		return err
	}

	if _, err := unicodeinput.ParseMode(c.UnicodeMode); err != nil {
		return err
	}

	for name, d := range map[string]time.Duration{
		"tick_interval":  c.TickInterval,
		"tapping_term":   c.TappingTerm,
		"flush_interval": c.Stats.FlushInterval,
	} {
		if d < 0 {
			return fmt.Errorf("%s: %w", name, ErrBadDuration)
		}
	}
	if c.IdleTimeout != nil && *c.IdleTimeout < 0 {
		return fmt.Errorf("idle_timeout: %w", ErrBadDuration)
	}

	switch c.Stats.Backend {
	case BackendMemory, BackendJSON, BackendSQLite, BackendNone:
	default:
		return fmt.Errorf("%q: %w", c.Stats.Backend, ErrUnknownBackend)
	}

	return nil
}

// StatsPath returns the configured stats file, or one in the XDG data directory
// named after the backend.
func (c Config) StatsPath() (string, error) {
	if c.Stats.Path != "" {
		return c.Stats.Path, nil
	}

	name := "stats.db"
	if c.Stats.Backend == BackendJSON {
		name = "stats.json"
	}

	path, err := xdg.DataFile(filepath.Join(appName, name))
	if err != nil {
		return "", fmt.Errorf("get data file: %w", err)
	}
	return path, nil
}
