package indicator

import (
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fakeLED(t *testing.T, max string) (string, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "kbd_backlight")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "max_brightness"), []byte(max+"\n"), 0o644))
	return root, dir
}

func readAttr(t *testing.T, dir, attr string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, attr))
	require.NoError(t, err)
	return strings.TrimSpace(string(data))
}

func TestBacklightModes(t *testing.T) {
	root, dir := fakeLED(t, "200")
	bl, err := OpenBacklight(root, "kbd_backlight")
	require.NoError(t, err)

	require.NoError(t, bl.SetMode(ergolayer.ModeSolid))
	assert.Equal(t, "none", readAttr(t, dir, "trigger"))
	assert.Equal(t, "200", readAttr(t, dir, "brightness"))

	require.NoError(t, bl.SetMode(ergolayer.ModeBreathing))
	assert.Equal(t, "timer", readAttr(t, dir, "trigger"))
	assert.Equal(t, "1000", readAttr(t, dir, "delay_on"))
	assert.Equal(t, "1000", readAttr(t, dir, "delay_off"))

	// brightness changes while breathing only take effect once solid again
	require.NoError(t, bl.Adjust(-2))
	assert.Equal(t, "200", readAttr(t, dir, "brightness"))
	require.NoError(t, bl.SetMode(ergolayer.ModeSolid))
	assert.Equal(t, "100", readAttr(t, dir, "brightness"))
}

func TestBacklightLevels(t *testing.T) {
	root, dir := fakeLED(t, "3")
	bl, err := OpenBacklight(root, "kbd_backlight")
	require.NoError(t, err)
	assert.Equal(t, BacklightLevels, bl.Level())

	require.NoError(t, bl.Step())
	assert.Equal(t, 0, bl.Level())
	assert.Equal(t, "0", readAttr(t, dir, "brightness"))

	require.NoError(t, bl.Step())
	assert.Equal(t, 1, bl.Level())

	require.NoError(t, bl.Adjust(-5))
	assert.Equal(t, 0, bl.Level())

	require.NoError(t, bl.Adjust(10))
	assert.Equal(t, BacklightLevels, bl.Level())
	assert.Equal(t, "3", readAttr(t, dir, "brightness"))
}

func TestOpenBacklightMissing(t *testing.T) {
	_, err := OpenBacklight(t.TempDir(), "nope")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenBacklightGarbage(t *testing.T) {
	root, _ := fakeLED(t, "bright")
	_, err := OpenBacklight(root, "kbd_backlight")
	assert.Error(t, err)
}

type stubIndicator struct {
	modes []ergolayer.Mode
	leds  []int
	err   error
}

func (s *stubIndicator) SetMode(mode ergolayer.Mode) error {
	s.modes = append(s.modes, mode)
	return s.err
}

func (s *stubIndicator) SetLayerLED(index int, on bool) error {
	if on {
		s.leds = append(s.leds, index)
	}
	return s.err
}

func TestMultiReachesEveryIndicator(t *testing.T) {
	errBroken := errors.New("broken")
	first := &stubIndicator{err: errBroken}
	second := &stubIndicator{}
	m := Multi{first, second}

	err := m.SetMode(ergolayer.ModeBreathing)
	assert.ErrorIs(t, err, errBroken)
	assert.Equal(t, []ergolayer.Mode{ergolayer.ModeBreathing}, second.modes)

	err = m.SetLayerLED(2, true)
	assert.ErrorIs(t, err, errBroken)
	assert.Equal(t, []int{2}, second.leds)

	first.err = nil
	assert.NoError(t, m.SetLayerLED(1, false))
}
