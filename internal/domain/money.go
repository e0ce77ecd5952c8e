package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents. Arithmetic stays in integers; decimals only
// appear when parsing input or rendering output.
type Money int64

var hundred = decimal.NewFromInt(100)

// Dollars returns whole currency units as Money.
func Dollars(units int64) Money {
	return Money(units * 100)
}

// FromDecimal converts a decimal amount to cents, rounding half away from zero.
func FromDecimal(d decimal.Decimal) Money {
	return Money(d.Mul(hundred).Round(0).IntPart())
}

// ParseMoney parses a decimal string such as "499.99".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", s, ErrValidation)
	}
	return FromDecimal(d), nil
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// MulRate multiplies by a rate and rounds to the nearest cent.
func (m Money) MulRate(rate decimal.Decimal) Money {
	return Money(decimal.NewFromInt(int64(m)).Mul(rate).Round(0).IntPart())
}

// Times multiplies by an integer quantity.
func (m Money) Times(n int) Money {
	return m * Money(n)
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decode money: %w", err)
	}
	*m = FromDecimal(d)
	return nil
}
