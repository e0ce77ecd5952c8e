package store

import (
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

type WishlistState struct {
	Items      []domain.WishlistEntry `json:"items"`
	TotalItems int                    `json:"totalItems"`
	Value      domain.Money           `json:"value"`
	Savings    domain.Money           `json:"savings"`
}

// Wishlist keeps one entry per product in insertion order. Not safe for
// concurrent use.
type Wishlist struct {
	entries []domain.WishlistEntry
	now     func() time.Time
}

func NewWishlist(entries []domain.WishlistEntry, now func() time.Time) *Wishlist {
	if now == nil {
		now = time.Now
	}
	w := &Wishlist{entries: make([]domain.WishlistEntry, 0, len(entries)), now: now}
	for _, e := range entries {
		if w.index(e.ProductID) >= 0 {
			continue
		}
		w.entries = append(w.entries, e)
	}
	return w
}

func (w *Wishlist) index(id domain.ProductID) int {
	for i := range w.entries {
		if w.entries[i].ProductID == id {
			return i
		}
	}
	return -1
}

// Add stamps DateAdded and inserts the entry. Adding a product that is
// already present changes nothing and returns false.
func (w *Wishlist) Add(entry domain.WishlistEntry) (bool, error) {
	if err := entry.Product(entry.AvailableStock).Validate(); err != nil {
		return false, err
	}
	if w.index(entry.ProductID) >= 0 {
		return false, nil
	}
	entry.DateAdded = w.now()
	w.entries = append(w.entries, entry)
	return true, nil
}

func (w *Wishlist) Remove(id domain.ProductID) bool {
	i := w.index(id)
	if i < 0 {
		return false
	}
	w.entries = append(w.entries[:i], w.entries[i+1:]...)
	return true
}

func (w *Wishlist) Get(id domain.ProductID) (domain.WishlistEntry, bool) {
	i := w.index(id)
	if i < 0 {
		return domain.WishlistEntry{}, false
	}
	return w.entries[i], true
}

func (w *Wishlist) Contains(id domain.ProductID) bool {
	return w.index(id) >= 0
}

func (w *Wishlist) Clear() {
	w.entries = w.entries[:0]
}

func (w *Wishlist) Len() int {
	return len(w.entries)
}

func (w *Wishlist) Items() []domain.WishlistEntry {
	out := make([]domain.WishlistEntry, len(w.entries))
	copy(out, w.entries)
	return out
}

// State returns a sorted and filtered view. TotalItems always counts the
// whole wishlist.
func (w *Wishlist) State(order SortOrder, filter Filter) WishlistState {
	items := View(w.entries, order, filter)
	return WishlistState{
		Items:      items,
		TotalItems: len(w.entries),
		Value:      pricing.WishlistValue(items),
		Savings:    pricing.WishlistSavings(items),
	}
}

func (w *Wishlist) clone() *Wishlist {
	return &Wishlist{entries: w.Items(), now: w.now}
}
