package domain

import "time"

type WishlistEntry struct {
	ProductID         ProductID `json:"productId" bson:"product_id"`
	Name              string    `json:"name" bson:"name"`
	ImageURL          string    `json:"imageUrl" bson:"image_url"`
	Category          string    `json:"category" bson:"category"`
	Brand             string    `json:"brand" bson:"brand"`
	UnitPrice         Money     `json:"unitPrice" bson:"unit_price"`
	OriginalUnitPrice Money     `json:"originalUnitPrice,omitempty" bson:"original_unit_price,omitempty"`
	InStock           bool      `json:"inStock" bson:"in_stock"`
	// AvailableStock is the cached ceiling for a later move to the cart; 0 means unknown.
	AvailableStock int       `json:"availableStock,omitempty" bson:"available_stock,omitempty"`
	OnSale         bool      `json:"onSale" bson:"on_sale"`
	DateAdded      time.Time `json:"dateAdded" bson:"date_added"`
}

// NewWishlistEntry snapshots a product. DateAdded is stamped by the wishlist on insert.
func NewWishlistEntry(p Product) (WishlistEntry, error) {
	if err := p.Validate(); err != nil {
		return WishlistEntry{}, err
	}
	return WishlistEntry{
		ProductID:         p.ID,
		Name:              p.Name,
		ImageURL:          p.ImageURL,
		Category:          p.Category,
		Brand:             p.Brand,
		UnitPrice:         p.Price,
		OriginalUnitPrice: p.OriginalPrice,
		InStock:           p.Stock > 0,
		AvailableStock:    p.Stock,
		OnSale:            p.OnSale || p.OriginalPrice > p.Price,
	}, nil
}

// Product returns the snapshot used when the entry moves to the cart.
func (e WishlistEntry) Product(stock int) Product {
	return Product{
		ID:            e.ProductID,
		Name:          e.Name,
		ImageURL:      e.ImageURL,
		Category:      e.Category,
		Brand:         e.Brand,
		Price:         e.UnitPrice,
		OriginalPrice: e.OriginalUnitPrice,
		Stock:         stock,
		OnSale:        e.OnSale,
	}
}
