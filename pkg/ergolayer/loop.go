package ergolayer

import (
	"context"
	"fmt"
	"time"
)

// DefaultTickInterval is how often Tick runs when no interval is given.
const DefaultTickInterval = 10 * time.Millisecond

// Snapshot is a read-only copy of the responder state for status reporting.
type Snapshot struct {
	Keymap       string    `json:"keymap"`
	ActiveLayers []int     `json:"active_layers"`
	TopLayer     int       `json:"top_layer"`
	LayerName    string    `json:"layer_name"`
	Mode         string    `json:"mode"`
	LastActivity time.Time `json:"last_activity"`
	HeldKeys     int       `json:"held_keys"`
}

// Snapshot returns the state as of the last processed event or tick.
func (r *Responder) Snapshot() Snapshot {
	return *r.snapshot.Load()
}

func (r *Responder) publish() {
	top := r.layers.Highest()
	name := ""
	if top < len(r.keymap.Layers) {
		name = r.keymap.Layers[top].Name
	}

	r.snapshot.Store(&Snapshot{
		Keymap:       r.keymap.Name,
		ActiveLayers: r.layers.Active(),
		TopLayer:     top,
		LayerName:    name,
		Mode:         r.mode.String(),
		LastActivity: r.lastActivity,
		HeldKeys:     len(r.pressed),
	})
}

// Run feeds events from source into the responder and ticks it every interval
// until ctx is done or the source fails. Events and ticks are handled on the
// calling goroutine only.
func (r *Responder) Run(ctx context.Context, source EventSource, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	if err := r.Reset(); err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	events := make(chan KeyEvent)
	errCh := make(chan error, 1)
	go func() {
		for {
			ev, err := source.ReadEvent()
			if err != nil {
				errCh <- err
				return
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if err := r.ProcessKey(ev); err != nil {
				return fmt.Errorf("process key: %w", err)
			}
		case <-ticker.Chan():
			if err := r.Tick(); err != nil {
				return fmt.Errorf("tick: %w", err)
			}
		case err := <-errCh:
			return fmt.Errorf("read event: %w", err)
		}
	}
}
