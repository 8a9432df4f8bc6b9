package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type FileLedger struct {
	path string
	mu   sync.Mutex
}

func NewFileLedger(path string) (*FileLedger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to init ledger file: %w", err)
	}
	_ = f.Close()
	return &FileLedger{path: path}, nil
}

func (l *FileLedger) Append(role, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open append: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	ev := Event{
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Role:      role,
		Text:      text,
	}
	enc := json.NewEncoder(f)
	if err := enc.Encode(ev); err != nil {
		return fmt.Errorf("encode append: %w", err)
	}
	return nil
}

// ReadRecent returns up to the last n events in append order. Malformed
// lines are skipped; an absent or unreadable file yields an empty result.
func (l *FileLedger) ReadRecent(n int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.Open(l.path)
	if err != nil {
		log.Printf("event ledger unreadable at %s: %v", l.path, err)
		return nil
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	s := bufio.NewScanner(f)
	buf := make([]byte, 0, 1024*1024)
	s.Buffer(buf, 10*1024*1024)
	var events []Event
	for s.Scan() {
		line := s.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := s.Err(); err != nil {
		log.Printf("event ledger scan failed at %s: %v", l.path, err)
		return nil
	}
	if n >= 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	return events
}
