// Package memory implements the deduplicating long-term memory store: an
// append-only versioned JSONL ledger plus a whole-file key→latest-id index.
// All versions of the same logical memory share an id; writes never mutate
// or delete earlier lines.
package memory

import (
	"bufio"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	ledgerFile = "memories.jsonl"
	indexFile  = "memories_index.json"
)

// Record is one version of a deduplicated long-term fact. Repeated upserts
// of texts that normalize to the same key append new versions under the
// original id with merged tags, max importance and a bumped times_seen.
type Record struct {
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	NormKey    string   `json:"norm_key"`
	Tags       []string `json:"tags"`
	Importance float64  `json:"importance"`
	TimesSeen  int      `json:"times_seen"`
	Source     string   `json:"source"`
	CreatedAt  float64  `json:"created_at"`
	UpdatedAt  float64  `json:"updated_at"`
}

type Store struct {
	mu         sync.Mutex
	ledgerPath string
	indexPath  string
	entropy    *ulid.MonotonicEntropy
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure memory dir: %w", err)
	}
	return &Store{
		ledgerPath: filepath.Join(dir, ledgerFile),
		indexPath:  filepath.Join(dir, indexFile),
		entropy:    ulid.Monotonic(rand.Reader, 0),
	}, nil
}

// Upsert stores text under its normalized key. A new key creates version 1
// with a fresh id; an existing key appends a new version for the same id
// with tags merged, importance = max(previous, new) and times_seen bumped.
// The index is persisted synchronously on create only, since updates do not
// change it. An index entry pointing at an id absent from the ledger is
// treated as a fresh creation, not an error.
func (s *Store) Upsert(text string, tags []string, importance float64, source string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := float64(time.Now().UnixNano()) / 1e9
	key := Normalize(text)
	idx := s.loadIndex()

	if id, ok := idx[key]; ok {
		if prev, found := s.latestByID(id); found {
			rec := prev
			rec.Text = text
			rec.NormKey = key
			rec.Tags = mergeTags(prev.Tags, tags)
			rec.Importance = math.Max(prev.Importance, importance)
			rec.TimesSeen = prev.TimesSeen + 1
			rec.Source = source
			rec.UpdatedAt = now
			if err := s.appendRecord(rec); err != nil {
				return Record{}, err
			}
			return rec, nil
		}
		// Index pointed at a missing id; fall through and create fresh.
	}

	rec := Record{
		ID:         s.newID(),
		Text:       text,
		NormKey:    key,
		Tags:       mergeTags(nil, tags),
		Importance: importance,
		TimesSeen:  1,
		Source:     source,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.appendRecord(rec); err != nil {
		return Record{}, err
	}
	idx[key] = rec.ID
	if err := s.saveIndex(idx); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// FindExact returns the latest version of the memory whose normalized key
// matches text. A key absent from the index, or an index entry whose id has
// no ledger record, is "not found", never an error.
func (s *Store) FindExact(text string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := Normalize(text)
	id, ok := s.loadIndex()[key]
	if !ok {
		return Record{}, false
	}
	return s.latestByID(id)
}

// Recent returns the last n ledger lines in append order.
func (s *Store) Recent(n int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.readAll()
	if n >= 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}

func (s *Store) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// latestByID scans the ledger backward; append-only writes mean the last
// line carrying the id is the true latest version.
func (s *Store) latestByID(id string) (Record, bool) {
	all := s.readAll()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].ID == id {
			return all[i], true
		}
	}
	return Record{}, false
}

func (s *Store) readAll() []Record {
	f, err := os.Open(s.ledgerPath)
	if err != nil {
		return nil
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	sc := bufio.NewScanner(f)
	buf := make([]byte, 0, 1024*1024)
	sc.Buffer(buf, 10*1024*1024)
	var out []Record
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (s *Store) appendRecord(rec Record) error {
	f, err := os.OpenFile(s.ledgerPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open append: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	enc := json.NewEncoder(f)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("encode append: %w", err)
	}
	return nil
}

// loadIndex degrades to an empty map when the index file is absent or
// malformed, preserving forward progress over strict consistency.
func (s *Store) loadIndex() map[string]string {
	f, err := os.Open(s.indexPath)
	if err != nil {
		return map[string]string{}
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	var idx map[string]string
	dec := json.NewDecoder(f)
	if err := dec.Decode(&idx); err != nil || idx == nil {
		return map[string]string{}
	}
	return idx
}

func (s *Store) saveIndex(idx map[string]string) error {
	f, err := os.OpenFile(s.indexPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idx); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return nil
}

func mergeTags(prev, extra []string) []string {
	set := make(map[string]struct{}, len(prev)+len(extra))
	for _, t := range prev {
		set[t] = struct{}{}
	}
	for _, t := range extra {
		set[t] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
