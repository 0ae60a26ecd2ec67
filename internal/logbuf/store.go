// Package logbuf holds the process-local log entries shown in the log
// viewer. The store is bounded and is passed to its users explicitly.
package logbuf

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nixlim/hva-top/internal/diagnose"
	"github.com/nixlim/hva-top/internal/ring"
)

// DefaultMaxEntries is the store capacity when none is configured.
const DefaultMaxEntries = 500

// Level is the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// ParseLevel maps a level name to a Level. Unknown names map to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR", "FATAL", "PANIC":
		return LevelError
	default:
		return LevelInfo
	}
}

// Entry is one local log line.
type Entry struct {
	ID        string
	Timestamp time.Time
	Level     Level
	Message   string
	Details   map[string]any
}

// Diagnose classifies the entry. Only WARN and ERROR entries are eligible;
// for anything else ok is false.
func (e Entry) Diagnose() (diagnose.Diagnosis, bool) {
	if !diagnose.Qualifies(string(e.Level)) {
		return diagnose.Diagnosis{}, false
	}
	in := diagnose.Input{Message: e.Message}
	if len(e.Details) > 0 {
		in.Details = e.Details
	}
	return diagnose.Diagnose(in), true
}

// Store is a bounded FIFO of log entries. It is safe for concurrent use.
type Store struct {
	buf *ring.Buffer[Entry]
	now func() time.Time
}

// NewStore creates a store retaining at most maxEntries entries. A
// non-positive value selects DefaultMaxEntries.
func NewStore(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{buf: ring.New[Entry](maxEntries), now: time.Now}
}

// Append stores e, filling in a missing ID or timestamp. It returns the
// stored entry.
func (s *Store) Append(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	if e.Level == "" {
		e.Level = LevelInfo
	}
	e.Details = redact(e.Details)
	s.buf.Add(e)
	return e
}

// Add stores a new entry built from its parts.
func (s *Store) Add(level Level, message string, details map[string]any) Entry {
	return s.Append(Entry{Level: level, Message: message, Details: details})
}

// List returns all entries, oldest first.
func (s *Store) List() []Entry {
	return s.buf.List()
}

// ListByLevel returns the entries at the given levels, oldest first. With
// no levels it returns every entry.
func (s *Store) ListByLevel(levels ...Level) []Entry {
	if len(levels) == 0 {
		return s.List()
	}
	return s.buf.Filter(func(e Entry) bool {
		for _, l := range levels {
			if e.Level == l {
				return true
			}
		}
		return false
	})
}

// Get returns the entry with the given ID.
func (s *Store) Get(id string) (Entry, bool) {
	for _, e := range s.buf.List() {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of stored entries.
func (s *Store) Len() int { return s.buf.Len() }

// Cap returns the store capacity.
func (s *Store) Cap() int { return s.buf.Cap() }

// Clear removes every entry.
func (s *Store) Clear() { s.buf.Clear() }
