package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestFileLedgerAppendAndReadRecent(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "events.jsonl")
	l, err := NewFileLedger(p)
	if err != nil {
		t.Fatalf("init ledger: %v", err)
	}

	if err := l.Append(RoleUser, "hi"); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := l.Append(RoleAssistant, "hello"); err != nil {
		t.Fatalf("append2: %v", err)
	}

	events := l.ReadRecent(10)
	if len(events) != 2 {
		t.Fatalf("want 2 events, got %d", len(events))
	}
	if events[0].Role != RoleUser || events[0].Text != "hi" {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Role != RoleAssistant || events[1].Text != "hello" {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if events[0].Timestamp <= 0 || events[1].Timestamp < events[0].Timestamp {
		t.Fatalf("timestamps not chronological: %v %v", events[0].Timestamp, events[1].Timestamp)
	}
}

func TestFileLedgerWindowAndOrdering(t *testing.T) {
	dir := t.TempDir()
	l, err := NewFileLedger(filepath.Join(dir, "events.jsonl"))
	if err != nil {
		t.Fatalf("init ledger: %v", err)
	}
	for i := 0; i < 25; i++ {
		if err := l.Append(RoleUser, fmt.Sprintf("msg-%d", i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events := l.ReadRecent(20)
	if len(events) != 20 {
		t.Fatalf("want 20, got %d", len(events))
	}
	for i, ev := range events {
		if want := fmt.Sprintf("msg-%d", i+5); ev.Text != want {
			t.Fatalf("event %d: want %q, got %q", i, want, ev.Text)
		}
	}

	// Appending must not alter what earlier reads would have returned.
	if err := l.Append(RoleUser, "later"); err != nil {
		t.Fatalf("append: %v", err)
	}
	again := l.ReadRecent(20)
	if again[len(again)-1].Text != "later" || again[0].Text != "msg-6" {
		t.Fatalf("window did not slide by one: first=%q last=%q", again[0].Text, again[len(again)-1].Text)
	}
}

func TestFileLedgerCrashRecovery(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "events.jsonl")
	l, err := NewFileLedger(p)
	if err != nil {
		t.Fatalf("init ledger: %v", err)
	}
	for i := 0; i < 25; i++ {
		if err := l.Append(RoleAssistant, fmt.Sprintf("turn-%d", i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	// A fresh process sees the same suffix in the same order.
	reopened, err := NewFileLedger(p)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	events := reopened.ReadRecent(20)
	if len(events) != 20 {
		t.Fatalf("want 20 after restart, got %d", len(events))
	}
	if events[0].Text != "turn-5" || events[19].Text != "turn-24" {
		t.Fatalf("order lost after restart: first=%q last=%q", events[0].Text, events[19].Text)
	}
}

func TestFileLedgerAbsentFileReadsEmpty(t *testing.T) {
	l := &FileLedger{path: filepath.Join(t.TempDir(), "missing.jsonl")}
	if events := l.ReadRecent(10); len(events) != 0 {
		t.Fatalf("want empty, got %d events", len(events))
	}
}

func TestFileLedgerSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "events.jsonl")
	l, err := NewFileLedger(p)
	if err != nil {
		t.Fatalf("init ledger: %v", err)
	}
	if err := l.Append(RoleUser, "before"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("garbage line\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = f.Close()
	if err := l.Append(RoleUser, "after"); err != nil {
		t.Fatalf("append: %v", err)
	}

	events := l.ReadRecent(10)
	if len(events) != 2 || events[0].Text != "before" || events[1].Text != "after" {
		t.Fatalf("malformed line not skipped cleanly: %+v", events)
	}
}
