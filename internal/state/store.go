// Package state persists the small per-persona mood/state blob as a single
// whole-file JSON document. Callers load the full mapping, overlay changed
// keys and write the merged mapping back; there is no partial-field
// persistence primitive and no support for concurrent writers beyond the
// in-process mutex.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted mapping. No prior state and corrupt prior state
// are the same condition: an empty mapping.
func (s *Store) Load() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUnlocked()
}

// Save overlays partial onto the current mapping (shallow merge, new values
// win) and writes the whole merged document back.
func (s *Store) Save(partial map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.loadUnlocked()
	for k, v := range partial {
		st[k] = v
	}
	return s.saveUnlocked(st)
}

// Mood returns the current mood label, empty when none has been derived yet.
func (s *Store) Mood() string {
	mood, _ := s.Load()["mood"].(string)
	return mood
}

// Turn returns the persisted turn counter.
func (s *Store) Turn() int {
	// JSON round-trips numbers as float64.
	if n, ok := s.Load()["turn"].(float64); ok {
		return int(n)
	}
	return 0
}

func (s *Store) loadUnlocked() map[string]any {
	f, err := os.Open(s.path)
	if err != nil {
		return map[string]any{}
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	var st map[string]any
	dec := json.NewDecoder(f)
	if err := dec.Decode(&st); err != nil || st == nil {
		return map[string]any{}
	}
	return st
}

func (s *Store) saveUnlocked(st map[string]any) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	enc := json.NewEncoder(f)
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return nil
}
