package storage

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Event is one conversational turn fragment. Events are immutable once
// written; the ledger is append-only and append order is chronological order.
type Event struct {
	Timestamp float64 `json:"timestamp"`
	Role      string  `json:"role"`
	Text      string  `json:"text"`
}

// Ledger abstracts persistence of conversation events.
// Append writes one record with a freshly captured timestamp; it fails only
// on unwritable storage and callers do not retry. ReadRecent returns up to
// the last n events in append order; an absent or unreadable backing store
// yields an empty slice, never an error.
type Ledger interface {
	Append(role, text string) error
	ReadRecent(n int) []Event
}
