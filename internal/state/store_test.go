package state

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAbsentFileIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.json"))
	if st := s.Load(); len(st) != 0 {
		t.Fatalf("want empty state, got %v", st)
	}
	if s.Mood() != "" {
		t.Fatalf("want empty mood")
	}
	if s.Turn() != 0 {
		t.Fatalf("want turn 0")
	}
}

func TestSaveMergesShallow(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.json"))
	if err := s.Save(map[string]any{"mood": "calm", "turn": 3}); err != nil {
		t.Fatalf("save1: %v", err)
	}
	if err := s.Save(map[string]any{"mood": "curious"}); err != nil {
		t.Fatalf("save2: %v", err)
	}

	if s.Mood() != "curious" {
		t.Fatalf("new values must win, got %q", s.Mood())
	}
	if s.Turn() != 3 {
		t.Fatalf("untouched keys must survive, got %d", s.Turn())
	}
}

func TestSaveRoundTripsThroughRestart(t *testing.T) {
	p := filepath.Join(t.TempDir(), "state.json")
	if err := NewStore(p).Save(map[string]any{"mood": "tired"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if mood := NewStore(p).Mood(); mood != "tired" {
		t.Fatalf("want tired after restart, got %q", mood)
	}
}

func TestCorruptStateReadsAsEmpty(t *testing.T) {
	p := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(p, []byte("{{{{nope"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := NewStore(p)
	if st := s.Load(); len(st) != 0 {
		t.Fatalf("corrupt state must read as empty, got %v", st)
	}
	// And saving over it recovers.
	if err := s.Save(map[string]any{"mood": "ok"}); err != nil {
		t.Fatalf("save over corrupt: %v", err)
	}
	if s.Mood() != "ok" {
		t.Fatalf("save over corrupt state failed")
	}
}
