package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortName      SortOrder = "name"
)

type Filter string

const (
	FilterAll     Filter = "all"
	FilterInStock Filter = "in-stock"
	FilterOnSale  Filter = "on-sale"
)

func ParseSort(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case "":
		return SortNewest, nil
	case SortNewest, SortOldest, SortPriceLow, SortPriceHigh, SortName:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort %q: %w", s, domain.ErrValidation)
	}
}

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterInStock, FilterOnSale:
		return f, nil
	default:
		return "", fmt.Errorf("unknown filter %q: %w", s, domain.ErrValidation)
	}
}

// View filters and orders a copy of entries. The input slice is not touched.
// Ties fall back to insertion order (newest first for SortNewest).
func View(entries []domain.WishlistEntry, order SortOrder, filter Filter) []domain.WishlistEntry {
	type indexed struct {
		seq   int
		entry domain.WishlistEntry
	}

	selected := make([]indexed, 0, len(entries))
	for i, e := range entries {
		switch filter {
		case FilterInStock:
			if !e.InStock {
				continue
			}
		case FilterOnSale:
			if !e.OnSale {
				continue
			}
		}
		selected = append(selected, indexed{seq: i, entry: e})
	}

	less := func(a, b indexed) bool {
		switch order {
		case SortOldest:
			if !a.entry.DateAdded.Equal(b.entry.DateAdded) {
				return a.entry.DateAdded.Before(b.entry.DateAdded)
			}
			return a.seq < b.seq
		case SortPriceLow:
			if a.entry.UnitPrice != b.entry.UnitPrice {
				return a.entry.UnitPrice < b.entry.UnitPrice
			}
		case SortPriceHigh:
			if a.entry.UnitPrice != b.entry.UnitPrice {
				return a.entry.UnitPrice > b.entry.UnitPrice
			}
		case SortName:
			an, bn := strings.ToLower(a.entry.Name), strings.ToLower(b.entry.Name)
			if an != bn {
				return an < bn
			}
		default:
			if !a.entry.DateAdded.Equal(b.entry.DateAdded) {
				return a.entry.DateAdded.After(b.entry.DateAdded)
			}
			return a.seq > b.seq
		}
		return a.seq < b.seq
	}
	sort.SliceStable(selected, func(i, j int) bool { return less(selected[i], selected[j]) })

	out := make([]domain.WishlistEntry, len(selected))
	for i, s := range selected {
		out[i] = s.entry
	}
	return out
}
