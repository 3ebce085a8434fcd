package engine

import (
	"fmt"
	"sync"

	. "matchbook/internal/common"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/btree"
)

type PriceLevels = btree.BTreeG[*Limit]

type OrderBook struct {
	// Guards both sides. Insertion and matching never interleave.
	mu sync.Mutex

	// Price levels to orders sat on the price level, sorted by time added
	// as they will be push-back'd. Each tree iterates in matching priority.
	bids *PriceLevels
	asks *PriceLevels
}

// MatchResult describes the outcome of a market order.
type MatchResult struct {
	Trades   []Trade
	Filled   Quantity
	Unfilled Quantity // Remainder left when liquidity ran out. It is dropped.
}

func NewOrderBook() *OrderBook {
	opts := btree.Options{NoLocks: true}
	// Sorted greatest first.
	bids := btree.NewBTreeGOptions(func(a, b *Limit) bool {
		return a.price > b.price
	}, opts)
	// Sorted least first.
	asks := btree.NewBTreeGOptions(func(a, b *Limit) bool {
		return a.price < b.price
	}, opts)
	return &OrderBook{
		bids: bids,
		asks: asks,
	}
}

func (book *OrderBook) levels(side Side) *PriceLevels {
	if side == Bid {
		return book.bids
	}
	return book.asks
}

// AddLimitOrder rests the order at price on its own side of the book. Orders
// at an existing price join the back of that level's queue.
func (book *OrderBook) AddLimitOrder(price Price, order *Order) error {
	if price <= 0 {
		return fmt.Errorf("%w: price %s must be positive", ErrInvalidOrderParameters, price)
	}
	if err := order.Validate(); err != nil {
		return err
	}

	book.mu.Lock()
	defer book.mu.Unlock()

	levels := book.levels(order.Side)

	// Levels comparator only accounts for price levels, so we create a dummy
	// price level for the search.
	level, ok := levels.GetMut(&Limit{price: price})
	if !ok {
		level = NewLimit(price)
		levels.Set(level)
	}
	level.AddOrder(order)

	log.Debug().
		Str("order", order.ID).
		Stringer("side", order.Side).
		Stringer("price", price).
		Uint64("quantity", uint64(order.Quantity)).
		Msg("limit order resting")
	return nil
}

// FillMarketOrder sweeps the opposite side of the book, best price first,
// until the order is filled or liquidity runs out. The order's remaining
// quantity is updated in place; it never rests in the book.
func (book *OrderBook) FillMarketOrder(order *Order) (MatchResult, error) {
	if err := order.Validate(); err != nil {
		return MatchResult{}, err
	}

	book.mu.Lock()
	defer book.mu.Unlock()

	levels := book.levels(order.Side.Opposite())
	start := order.Quantity

	var trades []Trade
	for order.Quantity > 0 {
		// Min is the best price on either side given the comparators.
		level, ok := levels.MinMut()
		if !ok {
			break
		}

		trades = append(trades, level.Fill(order)...)

		// A level is only left non-empty once the order is filled.
		if level.Len() == 0 {
			levels.Delete(level)
		}
	}

	result := MatchResult{
		Trades:   trades,
		Filled:   start - order.Quantity,
		Unfilled: order.Quantity,
	}
	if result.Unfilled > 0 {
		log.Info().
			Str("order", order.ID).
			Stringer("side", order.Side).
			Uint64("unfilled", uint64(result.Unfilled)).
			Msg("market order exhausted book liquidity")
	}
	return result, nil
}

// AskLimits returns a snapshot of the ask levels, lowest price first.
func (book *OrderBook) AskLimits() []*Limit {
	return book.snapshot(Ask)
}

// BidLimits returns a snapshot of the bid levels, highest price first.
func (book *OrderBook) BidLimits() []*Limit {
	return book.snapshot(Bid)
}

func (book *OrderBook) snapshot(side Side) []*Limit {
	book.mu.Lock()
	defer book.mu.Unlock()

	levels := book.levels(side)
	out := make([]*Limit, 0, levels.Len())
	levels.Scan(func(level *Limit) bool {
		out = append(out, level.clone())
		return true
	})
	return out
}

func (book *OrderBook) BestBid() (Price, bool) {
	return book.best(Bid)
}

func (book *OrderBook) BestAsk() (Price, bool) {
	return book.best(Ask)
}

func (book *OrderBook) best(side Side) (Price, bool) {
	book.mu.Lock()
	defer book.mu.Unlock()

	level, ok := book.levels(side).Min()
	if !ok {
		return 0, false
	}
	return level.price, true
}

// Volume returns the resting quantity across all levels of a side.
func (book *OrderBook) Volume(side Side) Quantity {
	book.mu.Lock()
	defer book.mu.Unlock()

	var total Quantity
	book.levels(side).Scan(func(level *Limit) bool {
		total += level.TotalVolume()
		return true
	})
	return total
}
