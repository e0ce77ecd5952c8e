// Package pricing derives cart and checkout figures from line items. Every
// function is pure; amounts are integer cents.
package pricing

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	FreeShippingThreshold = domain.Money(50000)
	StandardShippingFee   = domain.Money(2500)
)

var TaxRate = decimal.RequireFromString("0.08")

type Totals struct {
	TotalItems int          `json:"totalItems"`
	Subtotal   domain.Money `json:"subtotal"`
	Shipping   domain.Money `json:"shipping"`
	Tax        domain.Money `json:"tax"`
	Total      domain.Money `json:"total"`
}

// ComputeTotals is order-independent. An empty cart has no shipping fee.
func ComputeTotals(items []domain.LineItem) Totals {
	var t Totals
	for _, item := range items {
		t.TotalItems += item.Quantity
		t.Subtotal += item.LineTotal()
	}
	if t.TotalItems == 0 {
		return Totals{}
	}
	if t.Subtotal < FreeShippingThreshold {
		t.Shipping = StandardShippingFee
	}
	t.Tax = Tax(t.Subtotal)
	t.Total = t.Subtotal + t.Shipping + t.Tax
	return t
}

func Tax(subtotal domain.Money) domain.Money {
	return subtotal.MulRate(TaxRate)
}

// Progress describes how far a subtotal is from free shipping.
type Progress struct {
	Qualified bool         `json:"qualified"`
	Remaining domain.Money `json:"remaining"`
	Percent   int          `json:"percent"`
}

func FreeShipping(subtotal domain.Money) Progress {
	if subtotal >= FreeShippingThreshold {
		return Progress{Qualified: true, Percent: 100}
	}
	if subtotal < 0 {
		subtotal = 0
	}
	return Progress{
		Remaining: FreeShippingThreshold - subtotal,
		Percent:   int(int64(subtotal) * 100 / int64(FreeShippingThreshold)),
	}
}

// Savings sums the strikethrough discount across the cart. Display only.
func Savings(items []domain.LineItem) domain.Money {
	var s domain.Money
	for _, item := range items {
		if item.OriginalUnitPrice > item.UnitPrice {
			s += (item.OriginalUnitPrice - item.UnitPrice).Times(item.Quantity)
		}
	}
	return s
}

// WishlistValue prices on-sale entries at their sale price and everything
// else at the original price when one is known.
func WishlistValue(entries []domain.WishlistEntry) domain.Money {
	var v domain.Money
	for _, e := range entries {
		switch {
		case e.OnSale && e.OriginalUnitPrice > 0:
			v += e.UnitPrice
		case e.OriginalUnitPrice > 0:
			v += e.OriginalUnitPrice
		default:
			v += e.UnitPrice
		}
	}
	return v
}

func WishlistSavings(entries []domain.WishlistEntry) domain.Money {
	var s domain.Money
	for _, e := range entries {
		if e.OnSale && e.OriginalUnitPrice > e.UnitPrice {
			s += e.OriginalUnitPrice - e.UnitPrice
		}
	}
	return s
}
