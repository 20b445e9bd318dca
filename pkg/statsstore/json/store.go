package json

import (
	"codeberg.org/miketth/ergolayer/pkg/ergolayer"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"
)

// DefaultSaveInterval is how often SaveLooper writes pending counts to disk.
const DefaultSaveInterval = time.Minute

// document is the on-disk format: keymap name, then layer, then "rRcC" position.
type document map[string]map[string]map[string]ergolayer.PressCount

type StatsStore struct {
	keymap string
	doc    document
	file   *os.File
	lock   sync.Mutex
	dirty  bool
}

func NewStatsStore(filename, keymap string) (*StatsStore, error) {
	fileExists := true
	_, err := os.Stat(filename)
	if os.IsNotExist(err) {
		fileExists = false
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	store := &StatsStore{
		keymap: keymap,
		doc:    make(document),
		file:   file,
		dirty:  true,
	}

	if fileExists {
		err = store.load()
		if err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("load: %w", err)
		}

		store.dirty = false
	}

	return store, nil
}

func (s *StatsStore) Close() error {
	return s.file.Close()
}

func (s *StatsStore) load() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	_, err := s.file.Seek(0, io.SeekStart)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	dec := json.NewDecoder(s.file)
	err = dec.Decode(&s.doc)
	switch {
	case err == io.EOF:
		s.doc = make(document)
	case err != nil:
		return fmt.Errorf("decode json: %w", err)
	}

	return nil
}

// Save writes the counts to disk if anything changed since the last save.
func (s *StatsStore) Save() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.dirty {
		return nil
	}

	_, err := s.file.Seek(0, io.SeekStart)
	if err != nil {
		return fmt.Errorf("seek to start of file: %w", err)
	}

	err = s.file.Truncate(0)
	if err != nil {
		return fmt.Errorf("truncate file: %w", err)
	}

	enc := json.NewEncoder(s.file)
	err = enc.Encode(s.doc)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	s.dirty = false

	return nil
}

func (s *StatsStore) SaveLooper(ctx context.Context, interval time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			err := s.Save()
			if err != nil {
				return fmt.Errorf("save: %w", err)
			}

			return ctx.Err()
		case <-time.After(interval):
			err := s.Save()
			if err != nil {
				return fmt.Errorf("save: %w", err)
			}
		}
	}
}

func (s *StatsStore) AddPresses(counts []ergolayer.PressCount) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	layers, ok := s.doc[s.keymap]
	if !ok {
		layers = make(map[string]map[string]ergolayer.PressCount)
		s.doc[s.keymap] = layers
	}

	for _, c := range counts {
		key := strconv.Itoa(c.Layer)
		positions, ok := layers[key]
		if !ok {
			positions = make(map[string]ergolayer.PressCount)
			layers[key] = positions
		}

		entry := positions[c.Pos.String()]
		entry.Layer = c.Layer
		entry.Pos = c.Pos
		entry.Count += c.Count
		positions[c.Pos.String()] = entry
	}

	if len(counts) > 0 {
		s.dirty = true
	}
	return nil
}

func (s *StatsStore) GetPresses(layer int) ([]ergolayer.PressCount, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	positions := s.doc[s.keymap][strconv.Itoa(layer)]
	out := make([]ergolayer.PressCount, 0, len(positions))
	for _, c := range positions {
		out = append(out, c)
	}
	ergolayer.SortPressCounts(out)
	return out, nil
}
