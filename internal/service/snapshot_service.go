package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/fjod/go_cart/storefront/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SnapshotService persists session snapshots with a cache-aside read path.
type SnapshotService struct {
	repo   repository.SnapshotRepository
	cache  cache.SnapshotCache
	logger *zap.Logger
	sfg    singleflight.Group // Prevents cache stampede
}

func NewSnapshotService(repo repository.SnapshotRepository, cache cache.SnapshotCache, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// GetSnapshot returns the stored snapshot, or an empty one for a session
// that was never saved.
func (s *SnapshotService) GetSnapshot(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		snap, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cache get error", zap.String("session_id", sessionID), zap.Error(err))
		}

		snap, err = s.repo.GetSnapshot(ctx, sessionID)
		if errors.Is(err, repository.ErrSnapshotNotFound) {
			now := time.Now().UTC()
			return &domain.Snapshot{
				SessionID: sessionID,
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		if err != nil {
			return nil, err
		}

		go func() {
			if err := s.cache.Set(context.Background(), sessionID, snap); err != nil {
				s.logger.Warn("cache set error", zap.String("session_id", sessionID), zap.Error(err))
			}
		}()

		return snap, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Snapshot), nil
}

func (s *SnapshotService) SaveSnapshot(ctx context.Context, snapshot *domain.Snapshot) error {
	if err := s.repo.UpsertSnapshot(ctx, snapshot); err != nil {
		s.logger.Error("repo upsert snapshot error", zap.String("session_id", snapshot.SessionID), zap.Error(err))
		return err
	}

	s.invalidateCache(snapshot.SessionID)
	return nil
}

// DeleteSnapshot forgets a session. Deleting an unknown session is not an error.
func (s *SnapshotService) DeleteSnapshot(ctx context.Context, sessionID string) error {
	err := s.repo.DeleteSnapshot(ctx, sessionID)
	if err != nil && !errors.Is(err, repository.ErrSnapshotNotFound) {
		s.logger.Error("repo delete snapshot error", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}

	s.invalidateCache(sessionID)
	return nil
}

func (s *SnapshotService) invalidateCache(sessionID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("cache invalidate error", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// ForSession binds the service to one session so it can back a store.Session.
func (s *SnapshotService) ForSession(sessionID string) store.Persister {
	return sessionPersister{svc: s, sessionID: sessionID}
}

type sessionPersister struct {
	svc       *SnapshotService
	sessionID string
}

func (p sessionPersister) Load(ctx context.Context) (domain.Snapshot, error) {
	snap, err := p.svc.GetSnapshot(ctx, p.sessionID)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return *snap, nil
}

// Save drops the stored snapshot once both the cart and the wishlist are
// empty, so abandoned sessions do not linger in the repository.
func (p sessionPersister) Save(ctx context.Context, snapshot domain.Snapshot) error {
	if len(snapshot.Cart) == 0 && len(snapshot.Wishlist) == 0 {
		return p.svc.DeleteSnapshot(ctx, p.sessionID)
	}
	snapshot.SessionID = p.sessionID
	return p.svc.SaveSnapshot(ctx, &snapshot)
}
