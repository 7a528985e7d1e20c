package sensor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/genricoloni/camrec/internal/domain"
	"go.uber.org/zap"
)

// DefaultUpdateInterval is the sampling interval before anyone configures the hub
const DefaultUpdateInterval = 500 * time.Millisecond

// ErrSessionClosed is returned when subscribing through a closed session
var ErrSessionClosed = errors.New("sensor session closed")

// Callback receives orientation samples
type Callback func(domain.OrientationReading)

// Hub samples a Source at a process-wide interval and fans the readings out
// to subscribers. Each subscriber sees samples in emission order; a slow
// subscriber only gets the latest pending sample.
type Hub struct {
	logger *zap.Logger
	source Source

	mu              sync.Mutex
	base            time.Duration
	sessions        []*Session // open sessions, most recent last
	subs            map[uint64]*Subscription
	nextID          uint64
	running         bool
	cancel          context.CancelFunc
	intervalCh      chan time.Duration
	lastDropWarning time.Time
	lastReadWarning time.Time

	wg sync.WaitGroup // sampling loop
}

// NewHub creates a hub over src sampling at DefaultUpdateInterval
func NewHub(logger *zap.Logger, src Source) *Hub {
	return &Hub{
		logger:     logger,
		source:     src,
		base:       DefaultUpdateInterval,
		subs:       make(map[uint64]*Subscription),
		intervalCh: make(chan time.Duration, 1),
	}
}

// Start launches the sampling loop in a goroutine.
// It returns immediately (non-blocking).
func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.running = true

	h.wg.Add(1)
	go h.run(loopCtx, h.effectiveLocked())

	h.logger.Info("Orientation hub started", zap.Duration("interval", h.effectiveLocked()))
	return nil
}

// Stop halts sampling and drops every remaining subscription
func (h *Hub) Stop(ctx context.Context) error {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return nil
	}
	h.cancel()
	h.running = false
	h.mu.Unlock()

	h.wg.Wait()

	h.mu.Lock()
	remaining := make([]*Subscription, 0, len(h.subs))
	for _, s := range h.subs {
		remaining = append(remaining, s)
	}
	h.mu.Unlock()

	for _, s := range remaining {
		s.Unsubscribe()
	}

	if closer, ok := h.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			h.logger.Warn("Failed to close orientation source", zap.Error(err))
		}
	}

	h.logger.Info("Orientation hub stopped")
	return nil
}

// SetUpdateInterval changes the process-wide base interval.
// Open sessions keep precedence over it until they are closed.
func (h *Hub) SetUpdateInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("invalid update interval %v", d)
	}
	h.mu.Lock()
	h.base = d
	h.applyLocked()
	h.mu.Unlock()
	return nil
}

// UpdateInterval returns the interval currently in effect
func (h *Hub) UpdateInterval() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.effectiveLocked()
}

// Subscribe registers fn for every future sample
func (h *Hub) Subscribe(fn Callback) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	s := &Subscription{
		hub:    h,
		id:     h.nextID,
		fn:     fn,
		ch:     make(chan domain.OrientationReading, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	h.subs[s.id] = s
	go s.deliver()

	h.logger.Debug("Orientation subscriber added", zap.Uint64("id", s.id), zap.Int("subscribers", len(h.subs)))
	return s
}

// Subscribers returns the number of active subscriptions
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) effectiveLocked() time.Duration {
	if n := len(h.sessions); n > 0 {
		return h.sessions[n-1].interval
	}
	return h.base
}

// applyLocked forwards the effective interval to the sampling loop, replacing
// any change it has not picked up yet
func (h *Hub) applyLocked() {
	d := h.effectiveLocked()
	select {
	case <-h.intervalCh:
	default:
	}
	h.intervalCh <- d
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	delete(h.subs, id)
	n := len(h.subs)
	h.mu.Unlock()
	h.logger.Debug("Orientation subscriber removed", zap.Uint64("id", id), zap.Int("subscribers", n))
}

// run is the sampling loop
func (h *Hub) run(ctx context.Context, interval time.Duration) {
	defer h.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-h.intervalCh:
			ticker.Reset(d)
			h.logger.Debug("Sampling interval changed", zap.Duration("interval", d))
		case <-ticker.C:
			h.sample(ctx)
		}
	}
}

func (h *Hub) sample(ctx context.Context) {
	reading, err := h.source.Read(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		h.rateLimitedWarn(&h.lastReadWarning, "Failed to read orientation, skipping sample", zap.Error(err))
		return
	}

	h.mu.Lock()
	targets := make([]*Subscription, 0, len(h.subs))
	for _, s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		if !s.offer(reading) {
			h.rateLimitedWarn(&h.lastDropWarning, "Orientation subscriber is slow, coalescing samples",
				zap.Uint64("id", s.id))
		}
	}
}

// rateLimitedWarn logs at most one warning per interval for the given slot
func (h *Hub) rateLimitedWarn(last *time.Time, msg string, fields ...zap.Field) {
	const warningInterval = 5 * time.Second

	h.mu.Lock()
	now := time.Now()
	if now.Sub(*last) < warningInterval {
		h.mu.Unlock()
		return
	}
	*last = now
	h.mu.Unlock()

	h.logger.Warn(msg, fields...)
}

// Subscription is a registered callback on a Hub
type Subscription struct {
	hub    *Hub
	id     uint64
	fn     Callback
	ch     chan domain.OrientationReading
	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// offer hands a sample to the subscriber. When the previous sample has not
// been consumed yet it is replaced and offer reports false.
func (s *Subscription) offer(r domain.OrientationReading) bool {
	select {
	case s.ch <- r:
		return true
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- r:
	default:
	}
	return false
}

func (s *Subscription) deliver() {
	defer close(s.exited)
	for {
		select {
		case <-s.done:
			return
		case r := <-s.ch:
			select {
			case <-s.done:
				return
			default:
			}
			s.fn(r)
		}
	}
}

// Unsubscribe detaches the callback. It is idempotent; once it returns the
// callback is not invoked again. It must not be called from inside the callback.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		<-s.exited
		s.hub.remove(s.id)
	})
}
