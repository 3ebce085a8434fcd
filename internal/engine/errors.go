package engine

import (
	"errors"
	"fmt"

	. "matchbook/internal/common"
)

var (
	ErrMarketNotFound = errors.New("market not found")
	ErrMarketExists   = errors.New("market already exists")
)

// MarketNotFoundError is returned when an order is routed to a trading pair
// with no registered book.
type MarketNotFoundError struct {
	Pair TradingPair
}

func (e *MarketNotFoundError) Error() string {
	return fmt.Sprintf("orderbook for given trading pair (%s) does not exist", e.Pair)
}

func (e *MarketNotFoundError) Is(target error) bool {
	return target == ErrMarketNotFound
}
