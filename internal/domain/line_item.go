package domain

import "fmt"

// Key identifies a line item. Two adds of the same product with a different
// size or color produce separate lines.
type Key struct {
	ProductID ProductID `json:"productId"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s", k.ProductID, k.Size, k.Color)
}

type LineItem struct {
	ProductID         ProductID `json:"productId" bson:"product_id"`
	Name              string    `json:"name" bson:"name"`
	ImageURL          string    `json:"imageUrl" bson:"image_url"`
	Category          string    `json:"category" bson:"category"`
	Brand             string    `json:"brand" bson:"brand"`
	UnitPrice         Money     `json:"unitPrice" bson:"unit_price"`
	OriginalUnitPrice Money     `json:"originalUnitPrice,omitempty" bson:"original_unit_price,omitempty"`
	Quantity          int       `json:"quantity" bson:"quantity"`
	Size              string    `json:"size,omitempty" bson:"size,omitempty"`
	Color             string    `json:"color,omitempty" bson:"color,omitempty"`
	AvailableStock    int       `json:"availableStock" bson:"available_stock"`
}

// NewLineItem snapshots a product into a cart line with quantity 1. Display
// attributes and price are copied now and never re-fetched.
func NewLineItem(p Product, size, color string) (LineItem, error) {
	if err := p.Validate(); err != nil {
		return LineItem{}, err
	}
	return LineItem{
		ProductID:         p.ID,
		Name:              p.Name,
		ImageURL:          p.ImageURL,
		Category:          p.Category,
		Brand:             p.Brand,
		UnitPrice:         p.Price,
		OriginalUnitPrice: p.OriginalPrice,
		Quantity:          1,
		Size:              size,
		Color:             color,
		AvailableStock:    p.Stock,
	}, nil
}

func (i LineItem) Key() Key {
	return Key{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

// LineTotal is unit price times quantity.
func (i LineItem) LineTotal() Money {
	return i.UnitPrice.Times(i.Quantity)
}

// Product rebuilds the catalog snapshot the line was created from.
func (i LineItem) Product() Product {
	return Product{
		ID:            i.ProductID,
		Name:          i.Name,
		ImageURL:      i.ImageURL,
		Category:      i.Category,
		Brand:         i.Brand,
		Price:         i.UnitPrice,
		OriginalPrice: i.OriginalUnitPrice,
		Stock:         i.AvailableStock,
		OnSale:        i.OriginalUnitPrice > i.UnitPrice,
	}
}
