package channel

import "sync"

// Shared gives several independent consumers one underlying Manager. The
// first subscription connects it and the last unsubscribe disconnects it.
type Shared struct {
	mgr *Manager

	mu   sync.Mutex
	refs int
}

// NewShared wraps mgr.
func NewShared(mgr *Manager) *Shared {
	return &Shared{mgr: mgr}
}

// Manager returns the wrapped manager.
func (s *Shared) Manager() *Manager { return s.mgr }

// Subscribe registers h and returns its cancel function. Calling the cancel
// function more than once is harmless.
func (s *Shared) Subscribe(h Handler) func() {
	off := s.mgr.OnEvent(h)

	s.mu.Lock()
	s.refs++
	first := s.refs == 1
	s.mu.Unlock()
	if first {
		s.mgr.Connect()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			off()
			s.mu.Lock()
			s.refs--
			last := s.refs == 0
			s.mu.Unlock()
			if last {
				s.mgr.Disconnect()
			}
		})
	}
}
