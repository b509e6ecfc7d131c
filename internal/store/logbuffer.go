package store

import "github.com/DiegoPama01/FrameForge-sub000/internal/domain"

// DefaultLogCapacity is the ring size for retained worker log entries,
// matching the worker's own persisted-log window.
const DefaultLogCapacity = 500

// LogBuffer is an append-only capped buffer of the most recent log
// entries, oldest evicted first. It is not internally synchronized; the
// owning Store serializes access.
type LogBuffer struct {
	capacity int
	entries  []domain.LogEntry
}

// NewLogBuffer creates a buffer with the given capacity; non-positive
// values fall back to DefaultLogCapacity.
func NewLogBuffer(capacity int) *LogBuffer {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &LogBuffer{capacity: capacity}
}

// Append adds an entry, evicting the oldest when full.
func (b *LogBuffer) Append(e domain.LogEntry) {
	if len(b.entries) == b.capacity {
		copy(b.entries, b.entries[1:])
		b.entries[len(b.entries)-1] = e
		return
	}
	b.entries = append(b.entries, e)
}

// Replace seeds the buffer with entries, keeping only the most recent
// capacity-many. Used when warming from the worker's persisted logs.
func (b *LogBuffer) Replace(entries []domain.LogEntry) {
	if len(entries) > b.capacity {
		entries = entries[len(entries)-b.capacity:]
	}
	b.entries = append(b.entries[:0], entries...)
}

// All returns the retained entries, oldest first.
func (b *LogBuffer) All() []domain.LogEntry {
	return append([]domain.LogEntry(nil), b.entries...)
}

// ForProject returns the retained entries tagged with the given project
// id, oldest first.
func (b *LogBuffer) ForProject(projectID string) []domain.LogEntry {
	var out []domain.LogEntry
	for _, e := range b.entries {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of retained entries.
func (b *LogBuffer) Len() int {
	return len(b.entries)
}
