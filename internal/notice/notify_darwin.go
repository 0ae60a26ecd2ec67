//go:build darwin

package notice

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// OSAScriptNotifier sends macOS notifications via osascript.
type OSAScriptNotifier struct {
	enabled bool
	log     zerolog.Logger
}

// NewOSAScriptNotifier creates a macOS notification sender. If enabled is
// false, notices are silently dropped.
func NewOSAScriptNotifier(enabled bool, log zerolog.Logger) *OSAScriptNotifier {
	return &OSAScriptNotifier{enabled: enabled, log: log}
}

// NewPlatformNotifier creates the platform-appropriate notifier for macOS.
func NewPlatformNotifier(enabled bool, log zerolog.Logger) Notifier {
	return NewOSAScriptNotifier(enabled, log)
}

// Notify sends a macOS notification for nt without blocking.
func (n *OSAScriptNotifier) Notify(nt Notice) {
	if !n.enabled {
		return
	}

	title := "hva-top: " + nt.Title
	message := truncate(nt.Message, 200)

	go func() {
		if err := sendOSANotification(title, message); err != nil {
			n.log.Warn().Err(err).Msg("failed to send desktop notification")
		}
	}()
}

func sendOSANotification(title, message string) error {
	script := fmt.Sprintf(
		`display notification "%s" with title "%s"`,
		escapeAppleScript(message), escapeAppleScript(title),
	)
	return exec.Command("osascript", "-e", script).Run()
}

// escapeAppleScript escapes characters that could break AppleScript strings.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
