package notice

import (
	"sync"
	"testing"
	"time"
)

type recordingNotifier struct {
	mu   sync.Mutex
	seen []Notice
}

func (r *recordingNotifier) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

func TestBoard_LatestWithinTTL(t *testing.T) {
	b := NewBoard(nil)
	at := time.Date(2026, 5, 5, 8, 0, 0, 0, time.UTC)
	b.Post(Notice{Title: "listen", Message: "failed", At: at})

	n, ok := b.Latest(at.Add(2*time.Second), DefaultTTL)
	if !ok {
		t.Fatal("expected a visible notice")
	}
	if n.Message != "failed" || n.Severity != SeverityInfo {
		t.Errorf("unexpected notice %+v", n)
	}

	if _, ok := b.Latest(at.Add(DefaultTTL), DefaultTTL); ok {
		t.Error("expected notice to expire at TTL")
	}
}

func TestBoard_Empty(t *testing.T) {
	if _, ok := NewBoard(nil).Latest(time.Now(), DefaultTTL); ok {
		t.Error("expected no notice on an empty board")
	}
}

func TestBoard_StampsAndForwards(t *testing.T) {
	rec := &recordingNotifier{}
	b := NewBoard(rec)
	fixed := time.Date(2026, 5, 5, 8, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return fixed }

	b.Post(Notice{Severity: SeverityError, Title: "x", Message: "y"})

	recent := b.Recent()
	if len(recent) != 1 || !recent[0].At.Equal(fixed) {
		t.Fatalf("expected stamped notice, got %+v", recent)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.seen) != 1 || rec.seen[0].Severity != SeverityError {
		t.Errorf("expected notice forwarded to notifier, got %+v", rec.seen)
	}
}

func TestBoard_Bounded(t *testing.T) {
	b := NewBoard(nil)
	for i := 0; i < boardCapacity+5; i++ {
		b.Post(Notice{Message: "m"})
	}
	if got := len(b.Recent()); got != boardCapacity {
		t.Errorf("expected %d notices, got %d", boardCapacity, got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"longer text", 6, "longer..."},
		{"مرحبا بالعالم", 5, "مرحبا..."},
	}
	for _, tc := range tests {
		if got := truncate(tc.in, tc.max); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
