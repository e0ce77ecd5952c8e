package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// SnapshotCache keeps recently used session snapshots close to the service.
type SnapshotCache interface {
	Get(ctx context.Context, sessionID string) (*domain.Snapshot, error)
	Set(ctx context.Context, sessionID string, snapshot *domain.Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")
