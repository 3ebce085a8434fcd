package common

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	// PriceDecimals is the number of fractional digits a Price carries.
	PriceDecimals = 5
	// PriceScale is the number of Price ticks in one whole unit.
	PriceScale = 100000
)

// Price is an exact fixed-point price in ticks of 1/PriceScale. Two prices
// are the same level iff they are equal.
type Price int64

// NewPrice returns the price of a whole number of units.
func NewPrice(units int64) Price {
	return Price(units * PriceScale)
}

// ParsePrice parses a decimal string such as "4.4" or "20.00001" exactly.
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidPrice, err)
	}

	ticks := d.Shift(PriceDecimals)
	if !ticks.IsInteger() {
		return 0, fmt.Errorf("%w: %s", ErrPricePrecision, s)
	}
	if !ticks.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s out of range", ErrInvalidPrice, s)
	}
	return Price(ticks.IntPart()), nil
}

func (p Price) Decimal() decimal.Decimal {
	return decimal.New(int64(p), -PriceDecimals)
}

func (p Price) String() string {
	return p.Decimal().String()
}
