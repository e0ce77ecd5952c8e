package domain

import (
	"fmt"
	"strings"
	"time"
)

// ProductID is an opaque catalog identifier.
type ProductID string

// MaxQuantity caps a line when no stock figure is known.
const MaxQuantity = 99

// Product is the catalog snapshot line items and wishlist entries are built from.
type Product struct {
	ID            ProductID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	ImageURL      string    `json:"imageUrl"`
	Category      string    `json:"category"`
	Brand         string    `json:"brand"`
	Price         Money     `json:"price"`
	OriginalPrice Money     `json:"originalPrice,omitempty"`
	Stock         int       `json:"stock"`
	OnSale        bool      `json:"onSale"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Validate rejects shapes that would leak zero values into arithmetic.
func (p Product) Validate() error {
	if strings.TrimSpace(string(p.ID)) == "" {
		return fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product %s: name is required: %w", p.ID, ErrValidation)
	}
	if p.Price < 0 || p.OriginalPrice < 0 {
		return fmt.Errorf("product %s: negative price: %w", p.ID, ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("product %s: negative stock: %w", p.ID, ErrValidation)
	}
	return nil
}
