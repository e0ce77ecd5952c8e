package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"go.uber.org/zap"
)

// BulkResult reports which wishlist entries reached the cart.
type BulkResult struct {
	Added   []domain.ProductID `json:"added"`
	Skipped []domain.ProductID `json:"skipped"`
}

// MoveToWishlist takes a line out of the cart and saves the product to the
// wishlist. Stock is not checked. If the product is already on the wishlist
// the line is still removed and no duplicate is created.
func (s *Session) MoveToWishlist(ctx context.Context, key domain.Key) (State, error) {
	return s.mutate(ctx, "move to wishlist", func(cart *Cart, wishlist *Wishlist) (syncFunc, error) {
		item, ok := cart.Take(key)
		if !ok {
			return nil, errUnchanged
		}
		entry, err := domain.NewWishlistEntry(item.Product())
		if err != nil {
			return nil, err
		}
		if _, err := wishlist.Add(entry); err != nil {
			return nil, err
		}
		return func(ctx context.Context, r Remote) error {
			return r.MoveToWishlist(ctx, key.ProductID)
		}, nil
	})
}

// MoveToCart adds one unit of a wishlist product to the cart, without a
// variant, and drops it from the wishlist. An entry that is not in stock is
// rejected with domain.ErrOutOfStock and both stores stay as they were.
func (s *Session) MoveToCart(ctx context.Context, id domain.ProductID) (State, error) {
	return s.mutate(ctx, "move to cart", func(cart *Cart, wishlist *Wishlist) (syncFunc, error) {
		entry, ok := wishlist.Get(id)
		if !ok {
			return nil, errUnchanged
		}
		if err := s.copyToCart(ctx, cart, entry); err != nil {
			return nil, err
		}
		wishlist.Remove(id)
		return func(ctx context.Context, r Remote) error {
			return r.MoveToCart(ctx, id)
		}, nil
	})
}

// AddAllAvailableToCart copies every in-stock entry into the cart. Entries
// stay on the wishlist unless the session runs in BulkMove mode. Entries
// whose line is already at its stock ceiling are skipped.
func (s *Session) AddAllAvailableToCart(ctx context.Context) (State, BulkResult, error) {
	var result BulkResult
	state, err := s.mutate(ctx, "add all to cart", func(cart *Cart, wishlist *Wishlist) (syncFunc, error) {
		result = BulkResult{}
		prior := cart.productTotals()
		for _, entry := range wishlist.Items() {
			if !entry.InStock {
				continue
			}
			err := s.copyToCart(ctx, cart, entry)
			if err != nil {
				if errors.Is(err, domain.ErrOutOfStock) {
					result.Skipped = append(result.Skipped, entry.ProductID)
					continue
				}
				return nil, err
			}
			result.Added = append(result.Added, entry.ProductID)
			if s.bulkMode == BulkMove {
				wishlist.Remove(entry.ProductID)
			}
		}
		if len(result.Added) == 0 {
			return nil, errUnchanged
		}

		added := append([]domain.ProductID(nil), result.Added...)
		if s.bulkMode == BulkMove {
			return func(ctx context.Context, r Remote) error {
				return r.MoveAllToCart(ctx)
			}, nil
		}
		return func(ctx context.Context, r Remote) error {
			for i, id := range added {
				if err := r.AddToCart(ctx, id, 1); err != nil {
					s.undoAdds(ctx, r, added[:i], prior)
					return err
				}
			}
			return nil
		}, nil
	})
	if err != nil {
		return state, BulkResult{}, err
	}
	return state, result, nil
}

// undoAdds puts the remote quantities of already pushed products back to
// what they were before a bulk add that failed part way.
func (s *Session) undoAdds(ctx context.Context, r Remote, pushed []domain.ProductID, prior map[domain.ProductID]int) {
	for _, id := range pushed {
		var err error
		if q := prior[id]; q > 0 {
			err = r.UpdateCartItem(ctx, id, q)
		} else {
			err = ignoreNotFound(r.RemoveCartItem(ctx, id))
		}
		if err != nil {
			logger.WithTrace(ctx, s.logger).Error("undo bulk add failed",
				zap.String("product_id", string(id)), zap.Error(err))
		}
	}
}

func (s *Session) copyToCart(ctx context.Context, cart *Cart, entry domain.WishlistEntry) error {
	if !entry.InStock {
		return fmt.Errorf("move %s to cart: %w", entry.ProductID, domain.ErrOutOfStock)
	}
	item, err := domain.NewLineItem(entry.Product(s.stockFor(ctx, entry)), "", "")
	if err != nil {
		return err
	}
	return cart.Add(item, 1)
}

// stockFor picks the cart ceiling for a wishlist product: the cached figure,
// then the catalog, then MaxQuantity.
func (s *Session) stockFor(ctx context.Context, entry domain.WishlistEntry) int {
	if entry.AvailableStock > 0 {
		return entry.AvailableStock
	}
	if p, ok := s.lookup(ctx, entry.ProductID); ok {
		return p.Stock
	}
	return domain.MaxQuantity
}
