// Package status tracks the listening indicator: the local channel state plus
// the backend's authoritative listening flag.
package status

import (
	"sync"
	"time"

	"github.com/nixlim/hva-top/internal/channel"
	"github.com/nixlim/hva-top/internal/frame"
)

// Snapshot is a point-in-time view of the indicator.
type Snapshot struct {
	Channel   channel.State
	Listening bool
	// Since is when either field last changed.
	Since time.Time
}

// Indicator folds status frames and channel state changes.
type Indicator struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewIndicator returns an indicator in the Disconnected, not-listening state.
func NewIndicator() *Indicator {
	return &Indicator{now: time.Now, snap: Snapshot{Channel: channel.Disconnected, Since: time.Now()}}
}

// Fold applies a status frame. Other frames are ignored.
func (i *Indicator) Fold(f frame.Frame) {
	if f.Type != frame.TypeStatus {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.snap.Listening != f.Listening {
		i.snap.Listening = f.Listening
		i.snap.Since = i.now()
	}
}

// SetChannelState records a channel transition. Losing the channel resets
// the listening flag since the remote state is no longer known.
func (i *Indicator) SetChannelState(s channel.State) {
	i.mu.Lock()
	defer i.mu.Unlock()
	changed := i.snap.Channel != s
	i.snap.Channel = s
	if s == channel.Disconnected && i.snap.Listening {
		i.snap.Listening = false
		changed = true
	}
	if changed {
		i.snap.Since = i.now()
	}
}

// Snapshot returns the current state.
func (i *Indicator) Snapshot() Snapshot {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.snap
}

// Listening reports the backend's last known listening flag.
func (i *Indicator) Listening() bool {
	return i.Snapshot().Listening
}

// Label renders the indicator as a short status string.
func (s Snapshot) Label() string {
	switch {
	case s.Channel != channel.Connected:
		return s.Channel.String()
	case s.Listening:
		return "listening"
	default:
		return "idle"
	}
}
