package config

import (
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"codeberg.org/miketth/ergolayer/pkg/keymap/blowrak"
	"codeberg.org/miketth/ergolayer/pkg/unicodeinput"
	"github.com/adrg/xdg"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleConfig = `
device: /dev/input/by-id/usb-ErgoDox_EZ-event-kbd
variant: blowrak-classic
tapping_term: 150ms
idle_timeout: 0s
unicode_mode: macos
layer_leds: [capsl, numl]
matrix:
  KEY_CAPSLOCK: {row: 3, col: 0}
backlight:
  led: input3::kbd_backlight
stats:
  backend: json
  flush_interval: 30s
status:
  listen: 127.0.0.1:7400
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/dev/input/by-id/usb-ErgoDox_EZ-event-kbd", cfg.Device)
	assert.Equal(t, "blowrak-classic", cfg.Variant)
	assert.True(t, cfg.Grab, "defaults survive")
	assert.Equal(t, 10*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 150*time.Millisecond, cfg.TappingTerm)
	require.NotNil(t, cfg.IdleTimeout)
	assert.Zero(t, *cfg.IdleTimeout)
	assert.Equal(t, unicodeinput.MacOS.String(), cfg.UnicodeMode)
	assert.Equal(t, []string{"capsl", "numl"}, cfg.LayerLEDs)
	assert.Equal(t, keymap.Position{Row: 3, Col: 0}, cfg.Matrix["KEY_CAPSLOCK"])
	assert.Equal(t, "input3::kbd_backlight", cfg.Backlight.LED)
	assert.Equal(t, BackendJSON, cfg.Stats.Backend)
	assert.Equal(t, 30*time.Second, cfg.Stats.FlushInterval)
	assert.Equal(t, "127.0.0.1:7400", cfg.Status.Listen)
}

func TestLoadMissingExplicitPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSearchesXDG(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.MkdirAll(filepath.Join(home, "ergolayer"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "ergolayer", "config.yaml"), []byte("device: kbd\n"), 0o644))
	assert.Equal(t, filepath.Join(home, "ergolayer", "config.yaml"), DefaultPath())

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "kbd", cfg.Device)
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := Load(writeConfig(t, "device: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.Device = "kbd"
	require.NoError(t, valid.Validate())

	negative := -time.Second
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"no device", func(c *Config) { c.Device = "" }, ErrNoDevice},
		{"unknown variant", func(c *Config) { c.Variant = "dvorak" }, blowrak.ErrUnknownVariant},
		{"unknown unicode mode", func(c *Config) { c.UnicodeMode = "emacs" }, unicodeinput.ErrUnknownMode},
		{"negative tapping term", func(c *Config) { c.TappingTerm = -time.Millisecond }, ErrBadDuration},
		{"negative idle timeout", func(c *Config) { c.IdleTimeout = &negative }, ErrBadDuration},
		{"unknown backend", func(c *Config) { c.Stats.Backend = "postgres" }, ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestStatsPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	cfg := Default()
	path, err := cfg.StatsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg.DataHome, "ergolayer", "stats.db"), path)

	cfg.Stats.Backend = BackendJSON
	path, err = cfg.StatsPath()
	require.NoError(t, err)
	assert.Equal(t, "stats.json", filepath.Base(path))

	cfg.Stats.Path = "/tmp/elsewhere.db"
	path, err = cfg.StatsPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/elsewhere.db", path)
}

func TestResolveMatrix(t *testing.T) {
	base := keymap.Matrix{
		evdev.KEY_A: {Row: 2, Col: 1},
		evdev.KEY_B: {Row: 3, Col: 5},
	}
	cfg := Default()
	cfg.Matrix = map[string]keymap.Position{
		"capslock": {Row: 2, Col: 1},
		"KEY_B":    {Row: 0, Col: 0},
	}

	m, err := cfg.ResolveMatrix(base)
	require.NoError(t, err)
	assert.Equal(t, keymap.Matrix{
		evdev.KEY_CAPSLOCK: {Row: 2, Col: 1},
		evdev.KEY_B:        {Row: 0, Col: 0},
	}, m)
	assert.Len(t, base, 2, "base is left alone")

	cfg.Matrix = map[string]keymap.Position{"KEY_NOPE": {}}
	_, err = cfg.ResolveMatrix(base)
	assert.Error(t, err)
}

func TestResolveLEDs(t *testing.T) {
	cfg := Default()
	leds, err := cfg.ResolveLEDs()
	require.NoError(t, err)
	assert.Equal(t, []evdev.EvCode{evdev.LED_NUML, evdev.LED_CAPSL, evdev.LED_SCROLLL}, leds)

	cfg.LayerLEDs = []string{"disco"}
	_, err = cfg.ResolveLEDs()
	assert.Error(t, err)
}
