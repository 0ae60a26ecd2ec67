// Package notice carries short-lived user-facing messages, such as a failed
// listening toggle, and optionally mirrors them to desktop notifications.
package notice

import (
	"sync"
	"time"

	"github.com/nixlim/hva-top/internal/ring"
)

// DefaultTTL is how long a notice stays visible.
const DefaultTTL = 5 * time.Second

const boardCapacity = 20

// Severity constants.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Notice is a transient message for the user.
type Notice struct {
	Severity string
	Title    string
	Message  string
	At       time.Time
}

// Notifier mirrors notices to a platform mechanism. Implementations must
// not block.
type Notifier interface {
	Notify(n Notice)
}

// Poster accepts notices.
type Poster interface {
	Post(n Notice)
}

// Board keeps the most recent notices.
type Board struct {
	buf      *ring.Buffer[Notice]
	notifier Notifier

	mu  sync.Mutex
	now func() time.Time
}

// NewBoard creates a board. A nil notifier disables desktop mirroring.
func NewBoard(notifier Notifier) *Board {
	return &Board{
		buf:      ring.New[Notice](boardCapacity),
		notifier: notifier,
		now:      time.Now,
	}
}

// Post records n, stamping it if At is zero, and forwards it to the
// notifier.
func (b *Board) Post(n Notice) {
	if n.At.IsZero() {
		b.mu.Lock()
		n.At = b.now()
		b.mu.Unlock()
	}
	if n.Severity == "" {
		n.Severity = SeverityInfo
	}
	b.buf.Add(n)
	if b.notifier != nil {
		b.notifier.Notify(n)
	}
}

// Latest returns the newest notice if it is younger than ttl at now.
func (b *Board) Latest(now time.Time, ttl time.Duration) (Notice, bool) {
	n, ok := b.buf.Last()
	if !ok {
		return Notice{}, false
	}
	if now.Sub(n.At) >= ttl {
		return Notice{}, false
	}
	return n, true
}

// Recent returns every retained notice, oldest first.
func (b *Board) Recent() []Notice {
	return b.buf.List()
}

// truncate shortens s to max runes for notification bodies.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
