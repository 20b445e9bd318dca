package metrics

import (
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"github.com/holoplot/go-evdev"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestObserver(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	o, err := NewObserver(reg)
	require.NoError(t, err)

	pos := keymap.Position{Row: 1, Col: 1}
	o.Pressed(0, pos, keymap.Key(evdev.KEY_A))
	o.Pressed(0, pos, keymap.Key(evdev.KEY_B))
	o.Pressed(1, pos, keymap.Custom(keymap.Shrug))
	o.Pressed(1, pos, keymap.Custom(keymap.CustomCode(99)))
	o.LayerChanged(2)
	o.ModeChanged(ergolayer.ModeBreathing)

	assert.Equal(t, 2.0, testutil.ToFloat64(o.presses.WithLabelValues("0", "key")))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.presses.WithLabelValues("1", "custom")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.texts.WithLabelValues("shrug")))
	assert.Equal(t, 1, testutil.CollectAndCount(o.texts))
	assert.Equal(t, 2.0, testutil.ToFloat64(o.layer))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.breathing))

	o.ModeChanged(ergolayer.ModeSolid)
	assert.Equal(t, 0.0, testutil.ToFloat64(o.breathing))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestObserverRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewObserver(reg)
	require.NoError(t, err)

	_, err = NewObserver(reg)
	assert.Error(t, err)
}
