package history

import (
	"sync"

	"ai-companion/internal/storage"
)

type Message struct {
	Role    string
	Content string
}

// Log is the session-scoped rolling history cache. It is derived from, but
// not authoritative over, the event ledger: a ledger write failure does not
// keep a turn out of the log.
type Log struct {
	mu   sync.RWMutex
	msgs []Message
}

func New() *Log {
	return &Log{}
}

// FromEvents warm-starts a log from ledger events, keeping only user and
// assistant turns.
func FromEvents(events []storage.Event) *Log {
	l := New()
	for _, ev := range events {
		if ev.Role != storage.RoleUser && ev.Role != storage.RoleAssistant {
			continue
		}
		l.Append(ev.Role, ev.Text)
	}
	return l
}

func (l *Log) AppendUser(content string)      { l.Append(storage.RoleUser, content) }
func (l *Log) AppendAssistant(content string) { l.Append(storage.RoleAssistant, content) }

func (l *Log) Append(role, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, Message{Role: role, Content: content})
}

// Recent returns a copy of the last k messages in order.
func (l *Log) Recent(k int) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	msgs := l.msgs
	if k >= 0 && len(msgs) > k {
		msgs = msgs[len(msgs)-k:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.msgs)
}
