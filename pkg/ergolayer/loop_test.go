package ergolayer

import (
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"codeberg.org/miketth/ergolayer/pkg/keymap/blowrak"
	"context"
	"errors"
	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
	"time"
)

func TestRunDispatchesEventsAndTicks(t *testing.T) {
	h := newHarness(t, blowrak.Blowrak())
	source := &fakeSource{events: make(chan KeyEvent)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- h.r.Run(ctx, source, 10*time.Millisecond)
	}()

	source.events <- KeyEvent{Code: srcSymb, Pressed: true, Time: h.clock.Now()}
	assert.Eventually(t, func() bool {
		return h.r.Snapshot().TopLayer == blowrak.Symb
	}, time.Second, time.Millisecond)

	require.NoError(t, h.clock.BlockUntilContext(ctx, 1))
	h.clock.Advance(blowrak.IdleTimeout + time.Second)
	assert.Eventually(t, func() bool {
		return h.r.Snapshot().Mode == ModeBreathing.String()
	}, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestRunStopsOnSourceError(t *testing.T) {
	h := newHarness(t, blowrak.Blowrak())
	source := &fakeSource{events: make(chan KeyEvent)}
	close(source.events)

	err := h.r.Run(context.Background(), source, time.Millisecond)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestTallyFlush(t *testing.T) {
	tally := NewTally()
	a := keymap.Key(evdev.KEY_A)

	tally.Pressed(0, keymap.Position{Row: 1, Col: 2}, a)
	tally.Pressed(0, keymap.Position{Row: 1, Col: 2}, a)
	tally.Pressed(1, keymap.Position{Row: 0, Col: 0}, a)

	failing := &memStore{err: errors.New("disk full")}
	assert.Error(t, tally.Flush(failing))

	store := &memStore{}
	require.NoError(t, tally.Flush(store))
	assert.Equal(t, []PressCount{
		{Layer: 0, Pos: keymap.Position{Row: 1, Col: 2}, Count: 2},
		{Layer: 1, Pos: keymap.Position{Row: 0, Col: 0}, Count: 1},
	}, store.counts)

	// drained
	require.NoError(t, tally.Flush(store))
	assert.Len(t, store.counts, 2)
}
