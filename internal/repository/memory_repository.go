package repository

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/google/uuid"
)

// CleanupInterval is how often expired snapshots are dropped.
const CleanupInterval = time.Hour

// MemoryRepository keeps snapshots in process. It backs the service when no
// MongoDB URI is configured and expires idle snapshots like the TTL index does.
type MemoryRepository struct {
	mu        sync.RWMutex
	snapshots map[string]domain.Snapshot
	ttl       time.Duration
	now       func() time.Time

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewMemoryRepository(ttl time.Duration) *MemoryRepository {
	if ttl <= 0 {
		ttl = SnapshotTTL
	}
	r := &MemoryRepository{
		snapshots:   make(map[string]domain.Snapshot),
		ttl:         ttl,
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop()

	return r
}

func (r *MemoryRepository) cleanupLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.expire()
		case <-r.stopCleanup:
			return
		}
	}
}

func (r *MemoryRepository) expire() {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.ttl)
	for id, snap := range r.snapshots {
		if snap.UpdatedAt.Before(cutoff) {
			delete(r.snapshots, id)
		}
	}
}

func (r *MemoryRepository) GetSnapshot(_ context.Context, sessionID string) (*domain.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.snapshots[sessionID]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	snap.Cart = append([]domain.LineItem(nil), snap.Cart...)
	snap.Wishlist = append([]domain.WishlistEntry(nil), snap.Wishlist...)
	return &snap, nil
}

func (r *MemoryRepository) UpsertSnapshot(_ context.Context, snapshot *domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if existing, ok := r.snapshots[snapshot.SessionID]; ok {
		snapshot.ID = existing.ID
		snapshot.CreatedAt = existing.CreatedAt
	}
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = now
	}
	snapshot.UpdatedAt = now

	stored := *snapshot
	stored.Cart = append([]domain.LineItem(nil), snapshot.Cart...)
	stored.Wishlist = append([]domain.WishlistEntry(nil), snapshot.Wishlist...)
	r.snapshots[snapshot.SessionID] = stored
	return nil
}

func (r *MemoryRepository) DeleteSnapshot(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.snapshots[sessionID]; !ok {
		return ErrSnapshotNotFound
	}
	delete(r.snapshots, sessionID)
	return nil
}

// Close stops the background cleanup and waits for it to finish
func (r *MemoryRepository) Close() error {
	close(r.stopCleanup)
	r.wg.Wait()
	return nil
}
