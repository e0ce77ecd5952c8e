package pricing

import (
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	ExpressShippingFee = domain.Money(2500)
	GiftWrapFee        = domain.Money(1500)
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

type CheckoutOptions struct {
	Method   ShippingMethod `json:"shippingMethod"`
	GiftWrap bool           `json:"giftWrap"`
}

type CheckoutTotals struct {
	Method      ShippingMethod `json:"shippingMethod"`
	TotalItems  int            `json:"totalItems"`
	Subtotal    domain.Money   `json:"subtotal"`
	Shipping    domain.Money   `json:"shipping"`
	Tax         domain.Money   `json:"tax"`
	GiftWrapFee domain.Money   `json:"giftWrapFee"`
	Total       domain.Money   `json:"total"`
}

// Checkout prices the checkout form. It differs from ComputeTotals: express
// always pays the fee and standard is free only strictly above the threshold.
func Checkout(items []domain.LineItem, opts CheckoutOptions) (CheckoutTotals, error) {
	method := opts.Method
	if method == "" {
		method = ShippingStandard
	}
	if method != ShippingStandard && method != ShippingExpress {
		return CheckoutTotals{}, fmt.Errorf("unknown shipping method %q: %w", opts.Method, domain.ErrValidation)
	}

	ct := CheckoutTotals{Method: method}
	for _, item := range items {
		ct.TotalItems += item.Quantity
		ct.Subtotal += item.LineTotal()
	}
	if ct.TotalItems == 0 {
		return CheckoutTotals{}, ErrEmptyCart
	}

	switch {
	case method == ShippingExpress:
		ct.Shipping = ExpressShippingFee
	case ct.Subtotal > FreeShippingThreshold:
		ct.Shipping = 0
	default:
		ct.Shipping = StandardShippingFee
	}
	if opts.GiftWrap {
		ct.GiftWrapFee = GiftWrapFee
	}
	ct.Tax = Tax(ct.Subtotal)
	ct.Total = ct.Subtotal + ct.Shipping + ct.Tax + ct.GiftWrapFee
	return ct, nil
}
