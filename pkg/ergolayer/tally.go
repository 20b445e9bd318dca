package ergolayer

import (
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"fmt"
	"sort"
	"sync"
)

type tallyKey struct {
	layer int
	pos   keymap.Position
}

// Tally counts presses in memory until they are flushed to a StatsStore. It is
// fed from the responder loop and flushed from elsewhere.
type Tally struct {
	lock   sync.Mutex
	counts map[tallyKey]int64
}

func NewTally() *Tally {
	return &Tally{counts: make(map[tallyKey]int64)}
}

func (t *Tally) Pressed(layer int, pos keymap.Position, _ keymap.Action) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.counts[tallyKey{layer, pos}]++
}

func (t *Tally) LayerChanged(int) {}
func (t *Tally) ModeChanged(Mode) {}

// Drain returns and clears the counts collected so far.
func (t *Tally) Drain() []PressCount {
	t.lock.Lock()
	counts := t.counts
	t.counts = make(map[tallyKey]int64)
	t.lock.Unlock()

	out := make([]PressCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, PressCount{Layer: k.layer, Pos: k.pos, Count: n})
	}
	SortPressCounts(out)
	return out
}

// Flush drains the tally into store. On failure the counts are put back so the
// next flush retries them.
func (t *Tally) Flush(store StatsStore) error {
	counts := t.Drain()
	if len(counts) == 0 {
		return nil
	}

	if err := store.AddPresses(counts); err != nil {
		t.lock.Lock()
		for _, c := range counts {
			t.counts[tallyKey{c.Layer, c.Pos}] += c.Count
		}
		t.lock.Unlock()
		return fmt.Errorf("add presses: %w", err)
	}
	return nil
}

// SortPressCounts orders counts by layer, then row, then column.
func SortPressCounts(counts []PressCount) {
	sort.Slice(counts, func(i, j int) bool {
		a, b := counts[i], counts[j]
		if a.Layer != b.Layer {
			return a.Layer < b.Layer
		}
		if a.Pos.Row != b.Pos.Row {
			return a.Pos.Row < b.Pos.Row
		}
		return a.Pos.Col < b.Pos.Col
	})
}
