//go:build linux

package notice

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNotifySendNotifier_Disabled(t *testing.T) {
	n := NewNotifySendNotifier(false, zerolog.Nop())
	// Disabled notifiers never shell out.
	n.Notify(Notice{Title: "t", Message: `with "quotes"`})
	if n.enabled {
		t.Error("expected notifier to be disabled")
	}
	if _, ok := NewPlatformNotifier(true, zerolog.Nop()).(*NotifySendNotifier); !ok {
		t.Error("expected notify-send notifier on linux")
	}
}
