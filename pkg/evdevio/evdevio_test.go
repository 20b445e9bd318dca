package evdevio

import (
	"codeberg.org/miketth/ergolayer/pkg/unicodeinput"
	"context"
	"github.com/holoplot/go-evdev"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type recordingWriter struct {
	events []evdev.InputEvent
}

func (w *recordingWriter) WriteOne(ev *evdev.InputEvent) error {
	w.events = append(w.events, *ev)
	return nil
}

type ledCall struct {
	code evdev.EvCode
	on   bool
}

type recordingLEDs struct {
	calls []ledCall
}

func (l *recordingLEDs) SetLED(code evdev.EvCode, on bool) error {
	l.calls = append(l.calls, ledCall{code, on})
	return nil
}

type fakeDevice struct {
	recordingWriter
	ungrabs int
	closes  int
}

func (d *fakeDevice) ReadOne() (*evdev.InputEvent, error) { return nil, os.ErrClosed }

func (d *fakeDevice) Ungrab() error {
	d.ungrabs++
	return nil
}

func (d *fakeDevice) Close() error {
	d.closes++
	if d.closes > 1 {
		return os.ErrClosed
	}
	return nil
}

func TestSourceCloseIsIdempotent(t *testing.T) {
	dev := &fakeDevice{}
	s := &Source{dev: dev, name: "test keyboard", grabbed: true, clock: clockwork.NewFakeClock(), log: zaptest.NewLogger(t).Sugar()}

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, dev.ungrabs)
	assert.Equal(t, 1, dev.closes)

	_, err := s.ReadEvent()
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestSourceSetLEDWritesSync(t *testing.T) {
	dev := &fakeDevice{}
	s := &Source{dev: dev, name: "test keyboard", clock: clockwork.NewFakeClock(), log: zaptest.NewLogger(t).Sugar()}

	require.NoError(t, s.SetLED(evdev.LED_CAPSL, true))
	require.Len(t, dev.events, 2)
	assert.Equal(t, evdev.InputEvent{Type: evdev.EV_LED, Code: evdev.LED_CAPSL, Value: 1}, dev.events[0])
	assert.Equal(t, evdev.EV_SYN, dev.events[1].Type)
}

func TestToKeyEvent(t *testing.T) {
	clock := clockwork.NewFakeClock()

	down, ok := toKeyEvent(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 1}, clock)
	require.True(t, ok)
	assert.True(t, down.Pressed)
	assert.Equal(t, evdev.EvCode(evdev.KEY_A), down.Code)
	assert.Equal(t, clock.Now(), down.Time)

	up, ok := toKeyEvent(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 0}, clock)
	require.True(t, ok)
	assert.False(t, up.Pressed)

	_, ok = toKeyEvent(&evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 2}, clock)
	assert.False(t, ok, "autorepeat is dropped")

	_, ok = toKeyEvent(&evdev.InputEvent{Type: evdev.EV_MSC, Code: evdev.MSC_SCAN, Value: 30}, clock)
	assert.False(t, ok)
}

func TestLEDIndicator(t *testing.T) {
	leds := &recordingLEDs{}
	ind := NewLEDIndicator(leds)

	require.NoError(t, ind.SetLayerLED(1, true))
	require.NoError(t, ind.SetLayerLED(3, false))
	require.NoError(t, ind.SetLayerLED(4, true))
	require.NoError(t, ind.SetLayerLED(0, true))
	require.NoError(t, ind.SetMode(1))

	assert.Equal(t, []ledCall{{evdev.LED_NUML, true}, {evdev.LED_SCROLLL, false}}, leds.calls)
}

func TestParseLED(t *testing.T) {
	code, err := ParseLED("capsl")
	require.NoError(t, err)
	assert.Equal(t, evdev.EvCode(evdev.LED_CAPSL), code)

	code, err = ParseLED("LED_SCROLLL")
	require.NoError(t, err)
	assert.Equal(t, evdev.EvCode(evdev.LED_SCROLLL), code)

	_, err = ParseLED("disco")
	assert.ErrorIs(t, err, ErrUnknownLED)
}

func TestVirtualKeyboardWrites(t *testing.T) {
	w := &recordingWriter{}
	kb := &VirtualKeyboard{dev: w, mode: unicodeinput.WinCompose}

	require.NoError(t, kb.RegisterKey(evdev.KEY_A))
	require.NoError(t, kb.UnregisterKey(evdev.KEY_A))
	require.Len(t, w.events, 4)
	assert.Equal(t, evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 1}, w.events[0])
	assert.Equal(t, evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}, w.events[1])
	assert.Equal(t, evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_A, Value: 0}, w.events[2])

	w.events = nil
	require.NoError(t, kb.EmitText("_"))
	strokes, err := unicodeinput.Encode(unicodeinput.WinCompose, "_")
	require.NoError(t, err)
	require.Len(t, w.events, len(strokes)*2)
	for i, s := range strokes {
		ev := w.events[i*2]
		assert.Equal(t, s.Code, ev.Code)
		assert.Equal(t, s.Down, ev.Value == 1)
	}
}

func TestKeyboardKeysSkipsButtons(t *testing.T) {
	keys := keyboardKeys()
	assert.Contains(t, keys, evdev.EvCode(evdev.KEY_A))
	assert.Contains(t, keys, evdev.EvCode(evdev.KEY_VOLUMEUP))
	assert.NotContains(t, keys, evdev.EvCode(evdev.BTN_LEFT))
	assert.NotContains(t, keys, evdev.EvCode(evdev.KEY_RESERVED))
}

func TestWaitForDevice(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()
	dir := t.TempDir()
	path := filepath.Join(dir, "event7")

	t.Run("already there", func(t *testing.T) {
		existing := filepath.Join(dir, "event3")
		require.NoError(t, os.WriteFile(existing, nil, 0o600))
		assert.NoError(t, WaitForDevice(context.Background(), existing, log))
	})

	t.Run("appears later", func(t *testing.T) {
		done := make(chan error, 1)
		go func() {
			done <- WaitForDevice(context.Background(), path, log)
		}()

		time.Sleep(50 * time.Millisecond)
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("device never noticed")
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		err := WaitForDevice(ctx, filepath.Join(dir, "never"), log)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
