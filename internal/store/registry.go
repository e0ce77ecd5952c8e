package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultIdleTTL is how long an unused session stays in memory.
const DefaultIdleTTL = 30 * time.Minute

// OptionsFunc builds the per-session options, e.g. a persister bound to the
// session id.
type OptionsFunc func(sessionID string) []Option

type registryEntry struct {
	session  *Session
	lastUsed atomic.Int64
}

// Registry hands out one Session per shopper, opening it on first use.
// Sessions idle for longer than the TTL are dropped by Run; their persisted
// snapshot is reloaded on the next request.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*registryEntry
	options  OptionsFunc
	opening  singleflight.Group
	now      func() time.Time
}

func NewRegistry(options OptionsFunc) *Registry {
	return &Registry{
		sessions: make(map[string]*registryEntry),
		options:  options,
		now:      time.Now,
	}
}

// Session returns the open session for id. Loading a new session does not
// block lookups of other sessions.
func (r *Registry) Session(ctx context.Context, id string) (*Session, error) {
	if s, ok := r.lookup(id); ok {
		return s, nil
	}

	v, err, _ := r.opening.Do(id, func() (interface{}, error) {
		if s, ok := r.lookup(id); ok {
			return s, nil
		}

		var opts []Option
		if r.options != nil {
			opts = r.options(id)
		}
		s := NewSession(id, opts...)
		if err := s.Open(ctx); err != nil {
			return nil, err
		}

		e := &registryEntry{session: s}
		e.lastUsed.Store(r.now().UnixNano())
		r.mu.Lock()
		r.sessions[id] = e
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (r *Registry) lookup(id string) (*Session, bool) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	e.lastUsed.Store(r.now().UnixNano())
	return e.session, true
}

// ClearCart empties a shopper's cart, e.g. once their checkout completed.
func (r *Registry) ClearCart(ctx context.Context, sessionID string) error {
	s, err := r.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	if _, err := s.ClearCart(ctx); err != nil {
		return fmt.Errorf("clear cart for %s: %w", sessionID, err)
	}
	return nil
}

// Evict drops a session from memory. Its persisted snapshot is kept.
func (r *Registry) Evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// EvictIdle drops every session unused for longer than maxIdle and returns
// how many were dropped.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle).UnixNano()

	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, e := range r.sessions {
		if e.lastUsed.Load() < cutoff {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run evicts idle sessions until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, maxIdle time.Duration, logger *zap.Logger) error {
	if maxIdle <= 0 {
		maxIdle = DefaultIdleTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ticker := time.NewTicker(max(maxIdle/4, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.EvictIdle(maxIdle); n > 0 {
				logger.Info("evicted idle sessions", zap.Int("count", n), zap.Int("open", r.Len()))
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
