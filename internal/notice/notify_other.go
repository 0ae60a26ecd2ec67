//go:build !linux && !darwin

package notice

import "github.com/rs/zerolog"

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}

// NewPlatformNotifier returns a notifier that drops every notice; this
// platform has no supported notification mechanism.
func NewPlatformNotifier(bool, zerolog.Logger) Notifier {
	return nopNotifier{}
}
