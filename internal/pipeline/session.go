package pipeline

import (
	"context"
	"sync"
)

// Session serializes runs started from one place (a UI, a CLI). Beginning a
// run cancels the previous one, and only the latest generation may publish.
type Session struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func NewSession() *Session { return &Session{} }

// Begin starts a new generation and returns its context. The context of the
// previous generation is cancelled.
func (s *Session) Begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	s.cancel = cancel
	return ctx, s.gen
}

// Current reports whether gen is still the latest generation.
func (s *Session) Current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// Abort cancels the current run and invalidates its generation.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
}

// end releases the context of gen if it is still current.
func (s *Session) end(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
