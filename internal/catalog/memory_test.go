package catalog

import (
	"context"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoProducts() []domain.Product {
	return []domain.Product{
		{ID: "2", Name: "Swiss Chronograph Watch", Category: "Watches", Price: domain.Dollars(5899), Stock: 3},
		{ID: "1", Name: "Diamond Tennis Bracelet Elite", Category: "Jewelry", Price: domain.Dollars(3299), Stock: 8},
		{ID: "4", Name: "Pearl Drop Earrings", Category: "Jewelry", Price: domain.Dollars(899), Stock: 25},
	}
}

func TestMemoryCatalog_GetProduct(t *testing.T) {
	c := NewMemoryCatalog(demoProducts()...)

	p, err := c.GetProduct(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock)

	_, err = c.GetProduct(context.Background(), "9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryCatalog_ListProducts(t *testing.T) {
	c := NewMemoryCatalog(demoProducts()...)

	all, err := c.ListProducts(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.ProductID("1"), all[0].ID)
	assert.Equal(t, domain.ProductID("4"), all[2].ID)

	jewelry, err := c.ListProducts(context.Background(), "JEWELRY")
	require.NoError(t, err)
	assert.Len(t, jewelry, 2)
}

func TestMemoryCatalog_Upsert(t *testing.T) {
	c := NewMemoryCatalog()

	assert.ErrorIs(t, c.Upsert(domain.Product{ID: "1"}), domain.ErrValidation)
	require.NoError(t, c.Upsert(domain.Product{ID: "1", Name: "Ring", Price: 100}))

	p, err := c.GetProduct(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "Ring", p.Name)
}

func TestMemoryCatalog_ReturnsCopies(t *testing.T) {
	c := NewMemoryCatalog(demoProducts()...)

	p, err := c.GetProduct(context.Background(), "1")
	require.NoError(t, err)
	p.Stock = 0

	again, err := c.GetProduct(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 8, again.Stock)
}
