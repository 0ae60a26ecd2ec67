package control

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nixlim/hva-top/internal/notice"
)

// Listener is the subset of Client the Toggler drives.
type Listener interface {
	StartListening(ctx context.Context) error
	StopListening(ctx context.Context) error
}

// ListeningSource reports the backend's last known listening flag.
type ListeningSource interface {
	Listening() bool
}

// Toggler issues listening control actions on behalf of the UI. Failures
// are logged and posted as a transient notice; they never reach the caller.
type Toggler struct {
	api     Listener
	state   ListeningSource
	notices notice.Poster
	log     zerolog.Logger
}

// NewToggler creates a Toggler. notices may be nil.
func NewToggler(api Listener, state ListeningSource, notices notice.Poster, log zerolog.Logger) *Toggler {
	return &Toggler{api: api, state: state, notices: notices, log: log}
}

// Toggle stops listening if the backend reports it is listening and starts
// it otherwise. It reports whether the request succeeded.
func (t *Toggler) Toggle(ctx context.Context) bool {
	if t.state != nil && t.state.Listening() {
		return t.Stop(ctx)
	}
	return t.Start(ctx)
}

// Start requests listening. It reports whether the request succeeded.
func (t *Toggler) Start(ctx context.Context) bool {
	return t.do(ctx, "start listening", t.api.StartListening)
}

// Stop requests the end of listening. It reports whether the request
// succeeded.
func (t *Toggler) Stop(ctx context.Context) bool {
	return t.do(ctx, "stop listening", t.api.StopListening)
}

func (t *Toggler) do(ctx context.Context, action string, fn func(context.Context) error) bool {
	err := fn(ctx)
	if err == nil {
		t.log.Info().Str("action", action).Msg("control action sent")
		return true
	}

	t.log.Warn().Err(err).Str("action", action).Msg("control action failed")
	if t.notices != nil {
		t.notices.Post(notice.Notice{
			Severity: notice.SeverityWarning,
			Title:    "Failed to " + action,
			Message:  err.Error(),
		})
	}
	return false
}
