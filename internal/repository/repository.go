package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// SnapshotTTL is how long an untouched session snapshot is kept.
const SnapshotTTL = 90 * 24 * time.Hour

var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotRepository stores one snapshot per session.
// Consumers define this interface, not the MongoDB implementation
type SnapshotRepository interface {
	GetSnapshot(ctx context.Context, sessionID string) (*domain.Snapshot, error)
	UpsertSnapshot(ctx context.Context, snapshot *domain.Snapshot) error
	DeleteSnapshot(ctx context.Context, sessionID string) error
}
