package memory

import (
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"codeberg.org/miketth/ergolayer/pkg/keymap"
	"sync"
)

type StatsStore struct {
	lock    sync.Mutex
	presses map[int]map[keymap.Position]int64
}

func NewStatsStore() *StatsStore {
	return &StatsStore{
		presses: make(map[int]map[keymap.Position]int64),
	}
}

func (s *StatsStore) AddPresses(counts []ergolayer.PressCount) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, c := range counts {
		layer, ok := s.presses[c.Layer]
		if !ok {
			layer = make(map[keymap.Position]int64)
			s.presses[c.Layer] = layer
		}
		layer[c.Pos] += c.Count
	}
	return nil
}

func (s *StatsStore) GetPresses(layer int) ([]ergolayer.PressCount, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	out := make([]ergolayer.PressCount, 0, len(s.presses[layer]))
	for pos, n := range s.presses[layer] {
		out = append(out, ergolayer.PressCount{Layer: layer, Pos: pos, Count: n})
	}
	ergolayer.SortPressCounts(out)
	return out, nil
}
