package engine

import (
	"time"

	. "matchbook/internal/common"
)

// Limit is the bucket of orders resting at one price, kept in arrival order.
type Limit struct {
	price  Price
	orders []*Order
}

func NewLimit(price Price) *Limit {
	return &Limit{price: price}
}

func (l *Limit) Price() Price {
	return l.price
}

// Len returns the number of resting orders.
func (l *Limit) Len() int {
	return len(l.orders)
}

// Orders returns a copy of the resting orders, oldest first.
func (l *Limit) Orders() []Order {
	orders := make([]Order, len(l.orders))
	for i, order := range l.orders {
		orders[i] = *order
	}
	return orders
}

// AddOrder appends the order to the back of the queue. The caller is
// responsible for the order belonging on this side and price.
func (l *Limit) AddOrder(order *Order) {
	l.orders = append(l.orders, order)
}

// TotalVolume sums the remaining quantity at this level. An empty level has
// zero volume.
func (l *Limit) TotalVolume() Quantity {
	var total Quantity
	for _, order := range l.orders {
		total += order.Quantity
	}
	return total
}

// Fill matches incoming against the resting orders in time priority until
// either incoming is filled or the level is exhausted. Resting orders that
// are fully consumed are evicted from the level.
func (l *Limit) Fill(incoming *Order) []Trade {
	var (
		trades []Trade
		i      int
		now    = time.Now()
	)
	for i < len(l.orders) && incoming.Quantity > 0 {
		resting := l.orders[i]

		matchQty := min(incoming.Quantity, resting.Quantity)
		incoming.Quantity -= matchQty
		resting.Quantity -= matchQty

		if matchQty > 0 {
			trades = append(trades, Trade{
				TakerID:   incoming.ID,
				MakerID:   resting.ID,
				TakerSide: incoming.Side,
				Price:     l.price,
				Quantity:  matchQty,
				Timestamp: now,
			})
		}

		// Only move on once the resting order is consumed; otherwise the
		// incoming order is done.
		if resting.Quantity == 0 {
			i++
		}
	}

	if i > 0 {
		clear(l.orders[:i])
		l.orders = l.orders[i:]
	}
	return trades
}

func (l *Limit) clone() *Limit {
	orders := make([]*Order, len(l.orders))
	for i, order := range l.orders {
		o := *order
		orders[i] = &o
	}
	return &Limit{price: l.price, orders: orders}
}
