package pricing

import (
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id string, price domain.Money, qty int) domain.LineItem {
	return domain.LineItem{ProductID: domain.ProductID(id), Name: id, UnitPrice: price, Quantity: qty, AvailableStock: 10}
}

func TestComputeTotals_UnderThreshold(t *testing.T) {
	totals := ComputeTotals([]domain.LineItem{
		line("1", domain.Dollars(100), 2),
		line("2", domain.Dollars(50), 1),
	})

	assert.Equal(t, 3, totals.TotalItems)
	assert.Equal(t, domain.Dollars(250), totals.Subtotal)
	assert.Equal(t, domain.Dollars(25), totals.Shipping)
	assert.Equal(t, domain.Dollars(20), totals.Tax)
	assert.Equal(t, domain.Dollars(295), totals.Total)
	assert.Equal(t, "295.00", totals.Total.String())
}

func TestComputeTotals_FreeShipping(t *testing.T) {
	totals := ComputeTotals([]domain.LineItem{line("1", domain.Dollars(300), 2)})

	assert.Equal(t, domain.Dollars(600), totals.Subtotal)
	assert.Equal(t, domain.Money(0), totals.Shipping)
	assert.Equal(t, domain.Dollars(48), totals.Tax)
	assert.Equal(t, domain.Dollars(648), totals.Total)
}

func TestComputeTotals_Empty(t *testing.T) {
	assert.Equal(t, Totals{}, ComputeTotals(nil))
	assert.Equal(t, Totals{}, ComputeTotals([]domain.LineItem{}))
}

func TestComputeTotals_ThresholdBoundary(t *testing.T) {
	at := ComputeTotals([]domain.LineItem{line("1", domain.Money(50000), 1)})
	assert.Equal(t, domain.Money(0), at.Shipping)

	below := ComputeTotals([]domain.LineItem{line("1", domain.Money(49999), 1)})
	assert.Equal(t, StandardShippingFee, below.Shipping)
}

func TestComputeTotals_OrderIndependent(t *testing.T) {
	items := []domain.LineItem{
		line("a", domain.Money(1999), 3),
		line("b", domain.Money(10), 7),
		line("c", domain.Money(33333), 1),
	}
	reversed := []domain.LineItem{items[2], items[1], items[0]}
	rotated := []domain.LineItem{items[1], items[2], items[0]}

	want := ComputeTotals(items)
	assert.Equal(t, want, ComputeTotals(reversed))
	assert.Equal(t, want, ComputeTotals(rotated))
}

func TestComputeTotals_NoFloatDrift(t *testing.T) {
	// 3 x 0.1 style sums are exact in cents.
	totals := ComputeTotals([]domain.LineItem{
		line("1", domain.Money(10), 1),
		line("2", domain.Money(20), 1),
		line("3", domain.Money(58329), 1),
	})
	assert.Equal(t, "583.59", totals.Subtotal.String())
	assert.Equal(t, "46.69", totals.Tax.String())
	assert.Equal(t, "630.28", totals.Total.String())
}

func TestFreeShipping(t *testing.T) {
	p := FreeShipping(domain.Dollars(250))
	assert.False(t, p.Qualified)
	assert.Equal(t, domain.Dollars(250), p.Remaining)
	assert.Equal(t, 50, p.Percent)

	p = FreeShipping(domain.Dollars(700))
	assert.True(t, p.Qualified)
	assert.Equal(t, domain.Money(0), p.Remaining)
	assert.Equal(t, 100, p.Percent)
}

func TestSavings(t *testing.T) {
	items := []domain.LineItem{
		{ProductID: "1", UnitPrice: domain.Dollars(80), OriginalUnitPrice: domain.Dollars(100), Quantity: 2},
		{ProductID: "2", UnitPrice: domain.Dollars(50), Quantity: 1},
	}
	assert.Equal(t, domain.Dollars(40), Savings(items))
}

func TestWishlistValueAndSavings(t *testing.T) {
	entries := []domain.WishlistEntry{
		{ProductID: "1", UnitPrice: domain.Dollars(80), OriginalUnitPrice: domain.Dollars(100), OnSale: true},
		{ProductID: "2", UnitPrice: domain.Dollars(90), OriginalUnitPrice: domain.Dollars(120)},
		{ProductID: "3", UnitPrice: domain.Dollars(10)},
	}
	assert.Equal(t, domain.Dollars(80+120+10), WishlistValue(entries))
	assert.Equal(t, domain.Dollars(20), WishlistSavings(entries))
}

func TestCheckout_ExpressWithGiftWrap(t *testing.T) {
	ct, err := Checkout([]domain.LineItem{line("1", domain.Dollars(300), 2)}, CheckoutOptions{
		Method:   ShippingExpress,
		GiftWrap: true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.Dollars(600), ct.Subtotal)
	assert.Equal(t, domain.Dollars(25), ct.Shipping)
	assert.Equal(t, domain.Dollars(48), ct.Tax)
	assert.Equal(t, domain.Dollars(15), ct.GiftWrapFee)
	assert.Equal(t, domain.Dollars(688), ct.Total)
}

func TestCheckout_StandardStrictlyAboveThreshold(t *testing.T) {
	at, err := Checkout([]domain.LineItem{line("1", domain.Dollars(500), 1)}, CheckoutOptions{})
	require.NoError(t, err)
	assert.Equal(t, ShippingStandard, at.Method)
	assert.Equal(t, StandardShippingFee, at.Shipping)

	above, err := Checkout([]domain.LineItem{line("1", domain.Money(50001), 1)}, CheckoutOptions{Method: ShippingStandard})
	require.NoError(t, err)
	assert.Equal(t, domain.Money(0), above.Shipping)
}

func TestCheckout_Errors(t *testing.T) {
	_, err := Checkout(nil, CheckoutOptions{})
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = Checkout([]domain.LineItem{line("1", domain.Dollars(1), 1)}, CheckoutOptions{Method: "drone"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
