package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/devkhadem/samsungonlineshop/cart"
	"github.com/devkhadem/samsungonlineshop/cartstore"
	"github.com/devkhadem/samsungonlineshop/page"
)

// DefaultIdleTTL is how long a session may go unused before it is evicted.
const DefaultIdleTTL = 30 * time.Minute

// Session is one shopper's page: its cart store wired to its own surface
// and notification toast.
type Session struct {
	ID      string
	Store   *cart.Store
	Surface *page.HTMLSurface
	Toast   *cart.Toast

	ready sync.Once

	// Guarded by CartService.mu.
	lastSeen    time.Time
	stopWelcome func() bool
}

// Option configures a CartService.
type Option func(*CartService)

// WithIdleTTL sets how long an unused session is kept. Non-positive
// values keep DefaultIdleTTL.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *CartService) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

// WithWelcome shows cart.MsgWelcome on a new session's surface after
// delay. A non-positive delay disables the greeting.
func WithWelcome(delay time.Duration) Option {
	return func(s *CartService) { s.welcomeDelay = delay }
}

// CartService keeps one Session per shopper, all persisting to the same
// slot backend under per-session keys. Sessions unused for longer than
// the idle TTL are ended by EvictIdle.
type CartService struct {
	store        cartstore.ICartStore
	slotKey      string
	toastTTL     time.Duration
	idleTTL      time.Duration
	welcomeDelay time.Duration
	log          logrus.FieldLogger
	tracer       trace.Tracer

	now       func() time.Time
	afterFunc func(d time.Duration, f func()) (stop func() bool)

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewCartService creates a service with a store and tracer injected.
func NewCartService(store cartstore.ICartStore, slotKey string, toastTTL time.Duration, log logrus.FieldLogger, opts ...Option) *CartService {
	if slotKey == "" {
		slotKey = cart.DefaultSlotKey
	}
	s := &CartService{
		store:    store,
		slotKey:  slotKey,
		toastTTL: toastTTL,
		idleTTL:  DefaultIdleTTL,
		log:      log,
		tracer:   otel.Tracer("cartservice"),
		now:      time.Now,
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SlotKey is the persisted slot name for a session.
func (s *CartService) SlotKey(sessionID string) string {
	return s.slotKey + ":" + sessionID
}

// Session returns the session for sessionID, loading its cart from the
// slot the first time it is seen. The slot is read outside the service
// lock; callers racing on a new id wait for the same load.
func (s *CartService) Session(ctx context.Context, sessionID string) *Session {
	ctx, span := s.tracer.Start(ctx, "Session")
	defer span.End()
	span.SetAttributes(attribute.String("app.session_id", sessionID))

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		surface := page.NewHTMLSurface()
		toast := cart.NewToast(surface, s.toastTTL)
		log := s.log.WithField("session", sessionID)
		sess = &Session{
			ID:      sessionID,
			Store:   cart.NewStore(s.SlotKey(sessionID), s.store, surface, toast, log),
			Surface: surface,
			Toast:   toast,
		}
		s.sessions[sessionID] = sess
		span.SetAttributes(attribute.Bool("app.session_new", true))
	}
	sess.lastSeen = s.now()
	s.mu.Unlock()

	sess.ready.Do(func() {
		sess.Store.Initialize(ctx)
		s.scheduleWelcome(sess)
	})
	return sess
}

func (s *CartService) scheduleWelcome(sess *Session) {
	if s.welcomeDelay <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// Ended before its first load finished.
	if s.sessions[sess.ID] != sess {
		return
	}
	sess.stopWelcome = s.afterFunc(s.welcomeDelay, func() {
		sess.Toast.Notify(cart.MsgWelcome)
	})
}

// End tears a session down. Its persisted cart stays in the slot.
func (s *CartService) End(sessionID string) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	var stopWelcome func() bool
	if ok {
		stopWelcome = s.detachLocked(sess)
	}
	s.mu.Unlock()

	if ok {
		s.teardown(sess, stopWelcome)
	}
}

// EvictIdle ends every session not seen within the idle TTL and returns
// how many were ended.
func (s *CartService) EvictIdle() int {
	cutoff := s.now().Add(-s.idleTTL)

	type evicted struct {
		sess        *Session
		stopWelcome func() bool
	}
	var idle []evicted
	s.mu.Lock()
	for _, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			idle = append(idle, evicted{sess, s.detachLocked(sess)})
		}
	}
	s.mu.Unlock()

	for _, e := range idle {
		s.teardown(e.sess, e.stopWelcome)
	}
	if len(idle) > 0 {
		s.log.WithField("sessions", len(idle)).Info("idle sessions evicted")
	}
	return len(idle)
}

func (s *CartService) detachLocked(sess *Session) func() bool {
	delete(s.sessions, sess.ID)
	stop := sess.stopWelcome
	sess.stopWelcome = nil
	return stop
}

func (s *CartService) teardown(sess *Session, stopWelcome func() bool) {
	if stopWelcome != nil {
		stopWelcome()
	}
	sess.Toast.Stop()
	sess.Store.Teardown()
	s.log.WithField("session", sess.ID).Debug("session ended")
}

// Len is the number of live sessions.
func (s *CartService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run evicts idle sessions periodically until ctx is done.
func (s *CartService) Run(ctx context.Context) {
	interval := s.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle()
		}
	}
}

// Close ends every session.
func (s *CartService) Close() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.End(id)
	}
}
