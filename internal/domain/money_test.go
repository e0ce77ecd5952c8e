package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("499.99")
	require.NoError(t, err)
	assert.Equal(t, Money(49999), m)
	assert.Equal(t, "499.99", m.String())

	_, err = ParseMoney("abc")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMoney_MulRateRoundsToCent(t *testing.T) {
	rate := decimal.RequireFromString("0.08")
	assert.Equal(t, Money(2000), Dollars(250).MulRate(rate))
	// 0.08 * 12.345 cents-wise: 1234 * 0.08 = 98.72 -> 99
	assert.Equal(t, Money(99), Money(1234).MulRate(rate))
}

func TestMoney_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{Total: Money(29500)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total": 295.00}`, string(b))

	var out struct {
		Total Money `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"total": 629.99}`), &out))
	assert.Equal(t, Money(62999), out.Total)

	require.NoError(t, json.Unmarshal([]byte(`{"total": "10.5"}`), &out))
	assert.Equal(t, Money(1050), out.Total)
}

func TestNewLineItem_Validates(t *testing.T) {
	_, err := NewLineItem(Product{Name: "no id", Price: 100}, "", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewLineItem(Product{ID: "1", Name: "neg", Price: -1}, "", "")
	assert.ErrorIs(t, err, ErrValidation)

	item, err := NewLineItem(Product{ID: "1", Name: "Watch", Price: Dollars(100), Stock: 3}, "M", "gold")
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, 3, item.AvailableStock)
	assert.Equal(t, Key{ProductID: "1", Size: "M", Color: "gold"}, item.Key())
}

func TestNewWishlistEntry_DerivesFlags(t *testing.T) {
	e, err := NewWishlistEntry(Product{ID: "2", Name: "Ring", Price: Dollars(80), OriginalPrice: Dollars(100)})
	require.NoError(t, err)
	assert.False(t, e.InStock)
	assert.True(t, e.OnSale)

	e, err = NewWishlistEntry(Product{ID: "3", Name: "Chain", Price: Dollars(80), Stock: 2})
	require.NoError(t, err)
	assert.True(t, e.InStock)
	assert.False(t, e.OnSale)
}
