package store

import (
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock returns a clock that advances one minute per call.
func tickingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func entry(t *testing.T, id, name string, price domain.Money, stock int, onSale bool) domain.WishlistEntry {
	t.Helper()
	p := product(id, price, stock)
	p.Name = name
	p.OnSale = onSale
	e, err := domain.NewWishlistEntry(p)
	require.NoError(t, err)
	return e
}

func TestWishlist_Add_StampsDate(t *testing.T) {
	w := NewWishlist(nil, tickingClock())
	added, err := w.Add(entry(t, "1", "Ring", domain.Dollars(10), 1, false))
	require.NoError(t, err)
	assert.True(t, added)

	e, ok := w.Get("1")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 1, 0, 0, time.UTC), e.DateAdded)
}

func TestWishlist_Add_Dedup(t *testing.T) {
	w := NewWishlist(nil, tickingClock())
	e := entry(t, "1", "Ring", domain.Dollars(10), 1, false)
	_, err := w.Add(e)
	require.NoError(t, err)
	before := w.State(SortNewest, FilterAll)

	added, err := w.Add(e)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, before, w.State(SortNewest, FilterAll))
	assert.Equal(t, 1, before.TotalItems)
}

func TestWishlist_Add_Invalid(t *testing.T) {
	w := NewWishlist(nil, nil)
	_, err := w.Add(domain.WishlistEntry{ProductID: "1"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWishlist_RemoveAndClear(t *testing.T) {
	w := NewWishlist(nil, tickingClock())
	_, _ = w.Add(entry(t, "1", "Ring", domain.Dollars(10), 1, false))
	_, _ = w.Add(entry(t, "2", "Watch", domain.Dollars(20), 1, false))

	assert.True(t, w.Remove("1"))
	assert.False(t, w.Remove("1"))
	assert.Equal(t, 1, w.Len())

	w.Clear()
	assert.Equal(t, 0, w.Len())
}

func newSortedWishlist(t *testing.T) *Wishlist {
	w := NewWishlist(nil, tickingClock())
	for _, e := range []domain.WishlistEntry{
		entry(t, "1", "bracelet", domain.Dollars(3299), 2, true),
		entry(t, "2", "Watch", domain.Dollars(5899), 1, false),
		entry(t, "3", "earrings", domain.Dollars(899), 0, true),
		entry(t, "4", "Anklet", domain.Dollars(2499), 4, false),
	} {
		_, err := w.Add(e)
		require.NoError(t, err)
	}
	return w
}

func ids(entries []domain.WishlistEntry) []domain.ProductID {
	out := make([]domain.ProductID, len(entries))
	for i, e := range entries {
		out[i] = e.ProductID
	}
	return out
}

func TestWishlist_Sort(t *testing.T) {
	w := newSortedWishlist(t)

	cases := map[SortOrder][]domain.ProductID{
		SortNewest:    {"4", "3", "2", "1"},
		SortOldest:    {"1", "2", "3", "4"},
		SortPriceLow:  {"3", "4", "1", "2"},
		SortPriceHigh: {"2", "1", "4", "3"},
		SortName:      {"4", "1", "3", "2"},
	}
	for order, want := range cases {
		assert.Equal(t, want, ids(w.State(order, FilterAll).Items), "sort %s", order)
	}
}

func TestWishlist_SortDoesNotMutateStoredOrder(t *testing.T) {
	w := newSortedWishlist(t)
	_ = w.State(SortPriceHigh, FilterAll)
	assert.Equal(t, []domain.ProductID{"1", "2", "3", "4"}, ids(w.Items()))
}

func TestWishlist_NewestTieBreaksByInsertion(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := NewWishlist(nil, func() time.Time { return fixed })
	_, _ = w.Add(entry(t, "1", "a", 1, 1, false))
	_, _ = w.Add(entry(t, "2", "b", 1, 1, false))

	assert.Equal(t, []domain.ProductID{"2", "1"}, ids(w.State(SortNewest, FilterAll).Items))
	assert.Equal(t, []domain.ProductID{"1", "2"}, ids(w.State(SortOldest, FilterAll).Items))
}

func TestWishlist_Filter(t *testing.T) {
	w := newSortedWishlist(t)

	inStock := w.State(SortOldest, FilterInStock)
	assert.Equal(t, []domain.ProductID{"1", "2", "4"}, ids(inStock.Items))
	assert.Equal(t, 4, inStock.TotalItems)

	onSale := w.State(SortOldest, FilterOnSale)
	assert.Equal(t, []domain.ProductID{"1", "3"}, ids(onSale.Items))
}

func TestParseSortAndFilter(t *testing.T) {
	o, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortNewest, o)

	o, err = ParseSort("Price-High")
	require.NoError(t, err)
	assert.Equal(t, SortPriceHigh, o)

	_, err = ParseSort("rating")
	assert.ErrorIs(t, err, domain.ErrValidation)

	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)

	_, err = ParseFilter("cheap")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
