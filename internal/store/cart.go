package store

import (
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

// CartState is the read-only view handed to callers. Totals are flattened
// so the JSON matches {items, subtotal, shipping, tax, total, totalItems}.
type CartState struct {
	Items []domain.LineItem `json:"items"`
	pricing.Totals
	FreeShipping pricing.Progress `json:"freeShipping"`
	Savings      domain.Money     `json:"savings"`
}

// Cart holds line items keyed by (productId, size, color). It is not safe
// for concurrent use; Session serializes access.
type Cart struct {
	items []domain.LineItem
}

// NewCart rebuilds a cart from stored lines, dropping empty lines and
// merging duplicate keys.
func NewCart(items []domain.LineItem) *Cart {
	c := &Cart{items: make([]domain.LineItem, 0, len(items))}
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if i := c.index(item.Key()); i >= 0 {
			c.items[i].Quantity += item.Quantity
			continue
		}
		c.items = append(c.items, item)
	}
	return c
}

func (c *Cart) index(key domain.Key) int {
	for i := range c.items {
		if c.items[i].Key() == key {
			return i
		}
	}
	return -1
}

// Add merges the candidate into an existing line with the same key or
// appends a new line. Exceeding the cached stock is rejected, never capped.
func (c *Cart) Add(candidate domain.LineItem, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("add %s: quantity %d: %w", candidate.ProductID, quantity, domain.ErrValidation)
	}
	if err := candidate.Product().Validate(); err != nil {
		return err
	}

	key := candidate.Key()
	if i := c.index(key); i >= 0 {
		existing := &c.items[i]
		want := existing.Quantity + quantity
		if want > existing.AvailableStock {
			return fmt.Errorf("add %s: %d requested, %d available: %w", key, want, existing.AvailableStock, domain.ErrOutOfStock)
		}
		existing.Quantity = want
		return nil
	}

	if quantity > candidate.AvailableStock {
		return fmt.Errorf("add %s: %d requested, %d available: %w", key, quantity, candidate.AvailableStock, domain.ErrOutOfStock)
	}
	candidate.Quantity = quantity
	c.items = append(c.items, candidate)
	return nil
}

// UpdateQuantity sets a line's quantity. Anything below 1 removes the line,
// an unknown key is ignored.
func (c *Cart) UpdateQuantity(key domain.Key, quantity int) error {
	i := c.index(key)
	if i < 0 {
		return nil
	}
	if quantity < 1 {
		c.removeAt(i)
		return nil
	}

	item := &c.items[i]
	if quantity > item.AvailableStock {
		if quantity > item.Quantity {
			return fmt.Errorf("update %s: %d requested, %d available: %w", key, quantity, item.AvailableStock, domain.ErrOutOfStock)
		}
		quantity = item.AvailableStock
		if quantity < 1 {
			c.removeAt(i)
			return nil
		}
	}
	item.Quantity = quantity
	return nil
}

// Remove reports whether a line was deleted.
func (c *Cart) Remove(key domain.Key) bool {
	i := c.index(key)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

// Take removes and returns a line.
func (c *Cart) Take(key domain.Key) (domain.LineItem, bool) {
	i := c.index(key)
	if i < 0 {
		return domain.LineItem{}, false
	}
	item := c.items[i]
	c.removeAt(i)
	return item, true
}

func (c *Cart) Get(key domain.Key) (domain.LineItem, bool) {
	i := c.index(key)
	if i < 0 {
		return domain.LineItem{}, false
	}
	return c.items[i], true
}

func (c *Cart) Clear() {
	c.items = c.items[:0]
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) Items() []domain.LineItem {
	out := make([]domain.LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) State() CartState {
	items := c.Items()
	totals := pricing.ComputeTotals(items)
	return CartState{
		Items:        items,
		Totals:       totals,
		FreeShipping: pricing.FreeShipping(totals.Subtotal),
		Savings:      pricing.Savings(items),
	}
}

// productTotals sums line quantities per product across variants.
func (c *Cart) productTotals() map[domain.ProductID]int {
	totals := make(map[domain.ProductID]int, len(c.items))
	for _, item := range c.items {
		totals[item.ProductID] += item.Quantity
	}
	return totals
}

// setProductTotal adjusts the lines of one product so their quantities sum
// to want. Surplus comes off the newest lines first; a shortfall goes to the
// oldest line, up to its stock. It reports whether anything changed.
func (c *Cart) setProductTotal(id domain.ProductID, want int) bool {
	var idx []int
	have := 0
	for i, item := range c.items {
		if item.ProductID == id {
			idx = append(idx, i)
			have += item.Quantity
		}
	}
	if len(idx) == 0 || have == want {
		return false
	}

	if want > have {
		first := &c.items[idx[0]]
		q := min(first.Quantity+want-have, first.AvailableStock)
		if q == first.Quantity {
			return false
		}
		first.Quantity = q
		return true
	}

	surplus := have - want
	for j := len(idx) - 1; j >= 0 && surplus > 0; j-- {
		item := &c.items[idx[j]]
		take := min(item.Quantity, surplus)
		item.Quantity -= take
		surplus -= take
	}
	kept := c.items[:0]
	for _, item := range c.items {
		if item.Quantity > 0 {
			kept = append(kept, item)
		}
	}
	c.items = kept
	return true
}

func (c *Cart) clone() *Cart {
	return &Cart{items: c.Items()}
}

func (c *Cart) removeAt(i int) {
	c.items = append(c.items[:i], c.items[i+1:]...)
}
