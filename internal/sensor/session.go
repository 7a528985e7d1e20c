package sensor

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Session scopes a sampling interval and a set of subscriptions to one owner.
// While open, its interval takes precedence over the hub's base interval;
// closing it releases the subscriptions and the interval override.
type Session struct {
	hub      *Hub
	interval time.Duration

	mu     sync.Mutex
	subs   []*Subscription
	closed bool
}

// OpenSession applies interval for as long as the returned session is open
func (h *Hub) OpenSession(interval time.Duration) (*Session, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid session interval %v", interval)
	}
	s := &Session{hub: h, interval: interval}

	h.mu.Lock()
	h.sessions = append(h.sessions, s)
	h.applyLocked()
	h.mu.Unlock()

	h.logger.Debug("Sensor session opened", zap.Duration("interval", interval))
	return s, nil
}

// Interval returns the interval requested by this session
func (s *Session) Interval() time.Duration {
	return s.interval
}

// Subscribe registers fn on the hub, owned by this session
func (s *Session) Subscribe(fn Callback) (*Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	sub := s.hub.Subscribe(fn)
	s.subs = append(s.subs, sub)
	return sub, nil
}

// Close unsubscribes everything registered through the session and
// withdraws its interval. Only the first call has an effect.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}

	h := s.hub
	h.mu.Lock()
	for i, open := range h.sessions {
		if open == s {
			h.sessions = append(h.sessions[:i], h.sessions[i+1:]...)
			break
		}
	}
	h.applyLocked()
	restored := h.effectiveLocked()
	h.mu.Unlock()

	h.logger.Debug("Sensor session closed", zap.Duration("restoredInterval", restored))
}
