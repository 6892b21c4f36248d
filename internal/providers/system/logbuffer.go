package system

import (
	"sync"
	"time"
)

// LogEntry is a log line forwarded by the front end
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Source    string    `json:"source,omitempty"`
	ClientID  string    `json:"client_id,omitempty"`
}

// LogBuffer keeps the most recent entries in a fixed-size ring.
type LogBuffer struct {
	mu      sync.Mutex
	entries []LogEntry
	next    int
	full    bool
}

// NewLogBuffer creates a buffer holding at most capacity entries.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &LogBuffer{entries: make([]LogEntry, capacity)}
}

// Add appends an entry, overwriting the oldest when full
func (b *LogBuffer) Add(entry LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.next] = entry
	b.next = (b.next + 1) % len(b.entries)
	if b.next == 0 {
		b.full = true
	}
}

// Recent returns up to limit entries, newest first, optionally filtered by level.
func (b *LogBuffer) Recent(limit int, level string) []LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	size := b.next
	if b.full {
		size = len(b.entries)
	}

	result := make([]LogEntry, 0, min(limit, size))
	for i := 0; i < size && len(result) < limit; i++ {
		idx := (b.next - 1 - i + len(b.entries)) % len(b.entries)
		if level == "" || b.entries[idx].Level == level {
			result = append(result, b.entries[idx])
		}
	}
	return result
}
