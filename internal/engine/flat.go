package engine

import . "matchbook/internal/common"

// FlatPriceLevel is a plain view of a price level, convenient for
// comparisons and printing.
type FlatPriceLevel struct {
	PriceLevel Price
	Orders     []*Order
}

// FlattenLevels converts levels to their flat form, preserving order.
func FlattenLevels(levels []*Limit) []FlatPriceLevel {
	flat := make([]FlatPriceLevel, 0, len(levels))
	for _, level := range levels {
		flat = append(flat, FlatPriceLevel{
			PriceLevel: level.price,
			Orders:     level.orders,
		})
	}
	return flat
}
