package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// MemoryCatalog implements Catalog with in-memory storage
type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[domain.ProductID]domain.Product
}

func NewMemoryCatalog(products ...domain.Product) *MemoryCatalog {
	c := &MemoryCatalog{products: make(map[domain.ProductID]domain.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *MemoryCatalog) GetProduct(_ context.Context, id domain.ProductID) (*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.products[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrProductNotFound)
	}
	return &p, nil
}

func (c *MemoryCatalog) ListProducts(_ context.Context, category string) ([]*domain.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*domain.Product, 0, len(c.products))
	for _, p := range c.products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		p := p
		result = append(result, &p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Upsert validates and stores a product.
func (c *MemoryCatalog) Upsert(p domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[p.ID] = p
	return nil
}
