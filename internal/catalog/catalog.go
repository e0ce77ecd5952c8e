package catalog

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var ErrProductNotFound = fmt.Errorf("product %w", domain.ErrNotFound)

// Catalog is the read side of the product catalog. GetProduct also satisfies
// store.ProductLookup.
type Catalog interface {
	GetProduct(ctx context.Context, id domain.ProductID) (*domain.Product, error)
	ListProducts(ctx context.Context, category string) ([]*domain.Product, error)
}
