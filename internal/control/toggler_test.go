package control

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nixlim/hva-top/internal/notice"
)

type fakeListener struct {
	err   error
	calls []string
}

func (f *fakeListener) StartListening(context.Context) error {
	f.calls = append(f.calls, "start")
	return f.err
}

func (f *fakeListener) StopListening(context.Context) error {
	f.calls = append(f.calls, "stop")
	return f.err
}

type staticState bool

func (s staticState) Listening() bool { return bool(s) }

type collectPoster struct{ got []notice.Notice }

func (c *collectPoster) Post(n notice.Notice) { c.got = append(c.got, n) }

func TestToggler_PicksActionFromState(t *testing.T) {
	api := &fakeListener{}
	NewToggler(api, staticState(false), nil, zerolog.Nop()).Toggle(context.Background())
	NewToggler(api, staticState(true), nil, zerolog.Nop()).Toggle(context.Background())
	assert.Equal(t, []string{"start", "stop"}, api.calls)
}

func TestToggler_FailureIsSwallowedAndPosted(t *testing.T) {
	api := &fakeListener{err: errors.New("connection refused")}
	posts := &collectPoster{}
	tg := NewToggler(api, staticState(false), posts, zerolog.Nop())

	ok := tg.Toggle(context.Background())
	assert.False(t, ok)
	require.Len(t, posts.got, 1)
	assert.Equal(t, notice.SeverityWarning, posts.got[0].Severity)
	assert.Equal(t, "Failed to start listening", posts.got[0].Title)
	assert.Contains(t, posts.got[0].Message, "connection refused")
}

func TestToggler_SuccessPostsNothing(t *testing.T) {
	posts := &collectPoster{}
	tg := NewToggler(&fakeListener{}, nil, posts, zerolog.Nop())
	assert.True(t, tg.Stop(context.Background()))
	assert.Empty(t, posts.got)
}
