package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Remote is the server-side cart and wishlist a session mirrors its
// mutations to. Implementations return errors wrapping domain.ErrNetwork
// for transport failures.
type Remote interface {
	AddToCart(ctx context.Context, id domain.ProductID, quantity int) error
	UpdateCartItem(ctx context.Context, id domain.ProductID, quantity int) error
	RemoveCartItem(ctx context.Context, id domain.ProductID) error
	ClearCart(ctx context.Context) error
	MoveToWishlist(ctx context.Context, id domain.ProductID) error

	AddToWishlist(ctx context.Context, id domain.ProductID) error
	RemoveWishlistItem(ctx context.Context, id domain.ProductID) error
	ClearWishlist(ctx context.Context) error
	MoveToCart(ctx context.Context, id domain.ProductID) error
	MoveAllToCart(ctx context.Context) error
}

// RemoteLine is one product's quantity in the remote cart.
type RemoteLine struct {
	ProductID domain.ProductID
	Quantity  int
}

// RemoteState is what the remote currently holds for a shopper.
type RemoteState struct {
	Cart     []RemoteLine
	Wishlist []domain.ProductID
}

// Reconciler is implemented by remotes that can report their contents.
// Sessions in SyncApplyThenReconcile mode use it after every mirrored
// mutation to correct the local stores.
type Reconciler interface {
	RemoteState(ctx context.Context) (RemoteState, error)
}

// SyncStrategy decides when a mutation reaches the remote relative to the
// local commit. Both restore the pre-mutation stores when the remote fails.
type SyncStrategy string

const (
	// SyncPessimistic waits for the remote before committing locally.
	SyncPessimistic SyncStrategy = "pessimistic"
	// SyncApplyThenReconcile commits locally first, so readers see the
	// change while the remote call is in flight, and restores the previous
	// state if the remote rejects it. Afterwards the stores are reconciled
	// with the remote contents when the remote is a Reconciler.
	SyncApplyThenReconcile SyncStrategy = "apply-then-reconcile"
)

func ParseSyncStrategy(s string) (SyncStrategy, error) {
	switch st := SyncStrategy(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return SyncPessimistic, nil
	case SyncPessimistic, SyncApplyThenReconcile:
		return st, nil
	default:
		return "", fmt.Errorf("unknown sync strategy %q: %w", s, domain.ErrValidation)
	}
}

// BulkMode controls whether "add all available to cart" keeps the entries
// on the wishlist.
type BulkMode string

const (
	BulkCopy BulkMode = "copy"
	BulkMove BulkMode = "move"
)

func ParseBulkMode(s string) (BulkMode, error) {
	switch m := BulkMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return BulkCopy, nil
	case BulkCopy, BulkMove:
		return m, nil
	default:
		return "", fmt.Errorf("unknown bulk mode %q: %w", s, domain.ErrValidation)
	}
}

type syncFunc func(ctx context.Context, r Remote) error

// ignoreNotFound treats a remote 404 on a removal as already done.
func ignoreNotFound(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}
