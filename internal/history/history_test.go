package history

import (
	"testing"

	"ai-companion/internal/storage"
)

func TestLogAppendAndRecent(t *testing.T) {
	l := New()
	l.AppendUser("hello")
	l.AppendAssistant("hi")
	l.AppendUser("how are you")

	msgs := l.Recent(2)
	if len(msgs) != 2 {
		t.Fatalf("want 2, got %d", len(msgs))
	}
	if msgs[0].Role != "assistant" || msgs[0].Content != "hi" {
		t.Fatalf("unexpected [0]: %+v", msgs[0])
	}
	if msgs[1].Role != "user" || msgs[1].Content != "how are you" {
		t.Fatalf("unexpected [1]: %+v", msgs[1])
	}
	if l.Len() != 3 {
		t.Fatalf("want len 3, got %d", l.Len())
	}

	// Copy semantics: mutating the returned slice must not touch the log.
	msgs[0] = Message{Role: "user", Content: "mutated"}
	again := l.Recent(3)
	if again[1].Content != "hi" {
		t.Fatalf("internal state mutated via returned slice")
	}
}

func TestFromEventsFiltersRoles(t *testing.T) {
	events := []storage.Event{
		{Role: storage.RoleUser, Text: "hi"},
		{Role: "system", Text: "ignored"},
		{Role: storage.RoleAssistant, Text: "hello"},
	}
	l := FromEvents(events)
	msgs := l.Recent(10)
	if len(msgs) != 2 {
		t.Fatalf("want 2, got %d", len(msgs))
	}
	if msgs[0].Content != "hi" || msgs[1].Content != "hello" {
		t.Fatalf("unexpected messages: %+v", msgs)
	}
}
