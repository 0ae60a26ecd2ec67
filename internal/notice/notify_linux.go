//go:build linux

package notice

import (
	"os/exec"

	"github.com/rs/zerolog"
)

// NotifySendNotifier sends Linux desktop notifications via notify-send.
// Notifications are sent in a goroutine so a slow notification daemon never
// stalls the caller.
type NotifySendNotifier struct {
	enabled bool
	log     zerolog.Logger
}

// NewNotifySendNotifier creates a Linux notification sender. If enabled is
// false, notices are silently dropped.
func NewNotifySendNotifier(enabled bool, log zerolog.Logger) *NotifySendNotifier {
	return &NotifySendNotifier{enabled: enabled, log: log}
}

// NewPlatformNotifier creates the platform-appropriate notifier for Linux.
func NewPlatformNotifier(enabled bool, log zerolog.Logger) Notifier {
	return NewNotifySendNotifier(enabled, log)
}

// Notify sends a desktop notification for n.
func (n *NotifySendNotifier) Notify(nt Notice) {
	if !n.enabled {
		return
	}

	title := "hva-top: " + nt.Title
	body := truncate(nt.Message, 200)
	urgency := "normal"
	if nt.Severity == SeverityError {
		urgency = "critical"
	}

	go func() {
		if err := sendNotifySend(title, body, urgency); err != nil {
			n.log.Warn().Err(err).Msg("failed to send desktop notification")
		}
	}()
}

func sendNotifySend(title, body, urgency string) error {
	cmd := exec.Command("notify-send", "--urgency", urgency, "--app-name", "hva-top", title, body)
	return cmd.Run()
}
