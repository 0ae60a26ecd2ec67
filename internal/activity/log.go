// Package activity folds channel frames into the live activity feed: a
// bounded list of entries plus the single in-flight model invocation.
package activity

import (
	"fmt"
	"sync"
	"time"

	"github.com/nixlim/hva-top/internal/frame"
	"github.com/nixlim/hva-top/internal/ring"
)

// DefaultMaxEntries is the number of entries retained before the oldest is
// evicted.
const DefaultMaxEntries = 50

// EntryType classifies an activity entry for display.
type EntryType string

const (
	EntryInfo    EntryType = "info"
	EntrySuccess EntryType = "success"
	EntrySkip    EntryType = "skip"
	EntryProcess EntryType = "process"
)

// Entry is one line in the activity feed.
type Entry struct {
	Type      EntryType
	Message   string
	Status    string // task_progress status, empty otherwise
	Timestamp time.Time
}

// ActiveTask is the model invocation currently in flight.
type ActiveTask struct {
	Model     string
	Task      string
	Details   string
	StartTime time.Time
}

// Elapsed returns how long the task has been running at now.
func (a ActiveTask) Elapsed(now time.Time) time.Duration {
	if now.Before(a.StartTime) {
		return 0
	}
	return now.Sub(a.StartTime)
}

// Option configures a Log.
type Option func(*Log)

// WithClock overrides the wall clock used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithObserver registers fn to receive every entry as it is appended. fn
// runs on the folding goroutine after the log's lock is released.
func WithObserver(fn func(Entry)) Option {
	return func(l *Log) { l.observe = fn }
}

// Log is the activity-feed state. Fold is the only mutator besides Clear;
// readers get copies.
type Log struct {
	mu      sync.RWMutex
	entries *ring.Buffer[Entry]
	active  *ActiveTask
	now     func() time.Time
	observe func(Entry)
}

// NewLog creates a Log retaining at most maxEntries entries. A non-positive
// maxEntries selects DefaultMaxEntries.
func NewLog(maxEntries int, opts ...Option) *Log {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	l := &Log{
		entries: ring.New[Entry](maxEntries),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fold applies one frame. Frames with other tags, including status frames,
// leave the log unchanged.
func (l *Log) Fold(f frame.Frame) {
	e, ok := l.fold(f)
	if ok && l.observe != nil {
		l.observe(e)
	}
}

func (l *Log) fold(f frame.Frame) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	switch f.Type {
	case frame.TypeLLMStart:
		l.active = &ActiveTask{
			Model:     f.Model,
			Task:      f.Task,
			Details:   f.Details.String(),
			StartTime: now,
		}
		return l.append(EntryInfo, fmt.Sprintf("🤖 %s started: %s", f.Model, f.Task), "", now), true

	case frame.TypeLLMEnd:
		l.active = nil
		return l.append(EntrySuccess, fmt.Sprintf("✅ %s finished (Cost: $%s)", f.Model, FormatCost(f.CostOrZero())), "", now), true

	case frame.TypeTaskProgress:
		typ := EntryProcess
		if f.Status == frame.StatusSkipped {
			typ = EntrySkip
		}
		return l.append(typ, fmt.Sprintf("%s: %s", f.File, f.Details), f.Status, now), true

	case frame.TypeLog:
		return l.append(EntryInfo, f.Message, "", now), true
	}
	return Entry{}, false
}

func (l *Log) append(typ EntryType, msg, status string, at time.Time) Entry {
	e := Entry{Type: typ, Message: msg, Status: status, Timestamp: at}
	l.entries.Add(e)
	return e
}

// FormatCost renders a cost with four decimal places.
func FormatCost(cost float64) string {
	return fmt.Sprintf("%.4f", cost)
}

// Entries returns the retained entries, oldest first.
func (l *Log) Entries() []Entry {
	return l.entries.List()
}

// EntriesByType returns the retained entries of the given type, oldest first.
func (l *Log) EntriesByType(typ EntryType) []Entry {
	return l.entries.Filter(func(e Entry) bool { return e.Type == typ })
}

// ActiveTask returns the in-flight task, if any.
func (l *Log) ActiveTask() (ActiveTask, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.active == nil {
		return ActiveTask{}, false
	}
	return *l.active, true
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	return l.entries.Len()
}

// Clear drops all entries and the active task.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries.Clear()
	l.active = nil
}
