// Package channel owns the persistent connection to the assistant backend's
// event stream. It reconnects on transient failures, decodes inbound frames
// and fans them out to registered handlers in arrival order.
package channel

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nixlim/hva-top/internal/frame"
)

// DefaultReconnectDelay is the fixed pause between a failure and the next
// connection attempt.
const DefaultReconnectDelay = 3 * time.Second

// Handler receives every decoded frame. Handlers run on the reader goroutine,
// one frame at a time, and must not block. They must not call Connect or
// Disconnect.
type Handler func(frame.Frame)

// StateHandler observes lifecycle transitions. The same restrictions as for
// Handler apply.
type StateHandler func(State)

// Conn is a message-oriented connection.
type Conn interface {
	// Read blocks until the next message arrives or the connection fails.
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// Dialer opens connections to the endpoint.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithReconnectDelay overrides DefaultReconnectDelay.
func WithReconnectDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.delay = d
		}
	}
}

// WithLogger sets the logger used for lifecycle and decode messages.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

type handlerEntry[H any] struct {
	id uint64
	fn H
}

// Manager maintains at most one live connection to a fixed endpoint.
// All methods are safe for concurrent use.
type Manager struct {
	url    string
	dialer Dialer
	delay  time.Duration
	log    zerolog.Logger

	// nmu orders every state transition with its notification and fences
	// frame delivery against teardown. It is taken before mu.
	nmu sync.Mutex

	mu     sync.Mutex
	state  State
	gen    uint64 // bumped per connection attempt; stale attempts compare unequal
	conn   Conn
	cancel context.CancelFunc
	timer  *time.Timer
	halted bool // set by Disconnect; suppresses automatic reconnects

	hmu           sync.RWMutex
	nextID        uint64
	handlers      []handlerEntry[Handler]
	stateHandlers []handlerEntry[StateHandler]
}

// NewManager creates a Manager for url. No connection is made until Connect.
func NewManager(url string, dialer Dialer, opts ...Option) *Manager {
	m := &Manager{
		url:    url,
		dialer: dialer,
		delay:  DefaultReconnectDelay,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With().Str("component", "channel").Str("url", url).Logger()
	return m
}

// URL returns the endpoint this manager connects to.
func (m *Manager) URL() string { return m.url }

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connect opens the channel. It is a no-op while a connection is live or an
// attempt is in flight. Calling Connect after Disconnect re-enables
// automatic reconnects.
func (m *Manager) Connect() {
	m.connect(false)
}

func (m *Manager) connect(auto bool) {
	m.nmu.Lock()
	defer m.nmu.Unlock()

	m.mu.Lock()
	if auto && m.halted {
		m.mu.Unlock()
		return
	}
	if m.state != Disconnected {
		m.mu.Unlock()
		return
	}
	m.halted = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
	gen := m.gen
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.state = Connecting
	m.mu.Unlock()

	m.notifyState(Connecting)
	go m.run(ctx, gen)
}

// Disconnect closes the channel and suppresses automatic reconnects until the
// next explicit Connect. Close events that arrive afterwards are ignored and
// no frame is delivered once Disconnect has returned.
func (m *Manager) Disconnect() {
	m.nmu.Lock()
	m.mu.Lock()
	m.halted = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
	cancel, conn := m.cancel, m.conn
	m.cancel, m.conn = nil, nil
	prev := m.state
	m.state = Disconnected
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if prev != Disconnected {
		m.log.Info().Msg("channel disconnected")
		m.notifyState(Disconnected)
	}
	m.nmu.Unlock()

	// Closing may wait on the close handshake, so it happens outside nmu.
	if conn != nil {
		if err := conn.Close(); err != nil {
			m.log.Debug().Err(err).Msg("close after disconnect")
		}
	}
}

// OnEvent registers h for every inbound frame. The returned function removes
// the registration; it does not affect the connection.
func (m *Manager) OnEvent(h Handler) func() {
	m.hmu.Lock()
	defer m.hmu.Unlock()
	m.nextID++
	id := m.nextID
	m.handlers = append(m.handlers, handlerEntry[Handler]{id: id, fn: h})
	return func() {
		m.hmu.Lock()
		defer m.hmu.Unlock()
		m.handlers = removeEntry(m.handlers, id)
	}
}

// OnStateChange registers h for lifecycle transitions.
func (m *Manager) OnStateChange(h StateHandler) func() {
	m.hmu.Lock()
	defer m.hmu.Unlock()
	m.nextID++
	id := m.nextID
	m.stateHandlers = append(m.stateHandlers, handlerEntry[StateHandler]{id: id, fn: h})
	return func() {
		m.hmu.Lock()
		defer m.hmu.Unlock()
		m.stateHandlers = removeEntry(m.stateHandlers, id)
	}
}

func removeEntry[H any](entries []handlerEntry[H], id uint64) []handlerEntry[H] {
	out := entries[:0:0]
	for _, e := range entries {
		if e.id != id {
			out = append(out, e)
		}
	}
	return out
}

// run dials and then reads until the connection fails or is cancelled.
func (m *Manager) run(ctx context.Context, gen uint64) {
	m.log.Debug().Msg("connecting")
	conn, err := m.dialer.Dial(ctx, m.url)
	if err != nil {
		m.log.Warn().Err(err).Msg("channel connect failed")
		m.closed(gen)
		return
	}

	m.nmu.Lock()
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		m.nmu.Unlock()
		_ = conn.Close()
		return
	}
	m.conn = conn
	m.state = Connected
	m.mu.Unlock()

	m.log.Info().Msg("channel connected")
	m.notifyState(Connected)
	m.nmu.Unlock()

	for {
		data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				m.log.Warn().Err(err).Msg("channel closed unexpectedly")
			}
			_ = conn.Close()
			m.closed(gen)
			return
		}

		f, err := frame.Decode(data)
		if err != nil {
			m.log.Warn().Err(err).Int("bytes", len(data)).Msg("dropping malformed frame")
			continue
		}
		if !m.deliver(gen, f) {
			_ = conn.Close()
			return
		}
	}
}

// deliver dispatches f unless attempt gen has been superseded.
func (m *Manager) deliver(gen uint64, f frame.Frame) bool {
	m.nmu.Lock()
	defer m.nmu.Unlock()
	if !m.current(gen) {
		return false
	}
	m.dispatch(f)
	return true
}

// closed records the end of connection attempt gen and schedules the single
// reconnect for it. Failures from superseded attempts are ignored.
func (m *Manager) closed(gen uint64) {
	m.nmu.Lock()
	defer m.nmu.Unlock()

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	// Invalidate gen so a second failure report for it is a no-op.
	m.gen++
	m.conn = nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.state = Disconnected
	if !m.halted && m.timer == nil {
		m.timer = time.AfterFunc(m.delay, m.reconnect)
		m.log.Info().Dur("delay", m.delay).Msg("reconnect scheduled")
	}
	m.mu.Unlock()

	m.notifyState(Disconnected)
}

func (m *Manager) reconnect() {
	m.mu.Lock()
	m.timer = nil
	m.mu.Unlock()
	m.connect(true)
}

func (m *Manager) current(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gen == m.gen
}

func (m *Manager) dispatch(f frame.Frame) {
	m.hmu.RLock()
	handlers := make([]Handler, len(m.handlers))
	for i, e := range m.handlers {
		handlers[i] = e.fn
	}
	m.hmu.RUnlock()

	for _, h := range handlers {
		m.safeCall(f, h)
	}
}

func (m *Manager) safeCall(f frame.Frame, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().Interface("panic", r).Str("type", string(f.Type)).Msg("frame handler panicked")
		}
	}()
	h(f)
}

func (m *Manager) notifyState(s State) {
	m.hmu.RLock()
	handlers := make([]StateHandler, len(m.stateHandlers))
	for i, e := range m.stateHandlers {
		handlers[i] = e.fn
	}
	m.hmu.RUnlock()

	for _, h := range handlers {
		h(s)
	}
}
