package common

import (
	"fmt"
	"strings"
)

type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	}
	return fmt.Sprintf("side(%d)", int(s))
}

// Opposite returns the side a market order of side s consumes liquidity from.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

func (s Side) valid() bool {
	return s == Bid || s == Ask
}

// ParseSide accepts "bid"/"buy" and "ask"/"sell", ignoring case.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bid", "buy":
		return Bid, nil
	case "ask", "sell":
		return Ask, nil
	}
	return 0, fmt.Errorf("%w: unknown side %q", ErrInvalidOrderParameters, s)
}

type OrderType int

const (
	// Limit orders rest in the book at their price until filled.
	LimitOrder OrderType = iota
	// Market orders consume resting liquidity immediately and never rest.
	MarketOrder
)

func (t OrderType) String() string {
	switch t {
	case LimitOrder:
		return "limit"
	case MarketOrder:
		return "market"
	}
	return fmt.Sprintf("type(%d)", int(t))
}

func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "limit":
		return LimitOrder, nil
	case "market":
		return MarketOrder, nil
	}
	return 0, fmt.Errorf("%w: unknown order type %q", ErrInvalidOrderParameters, s)
}

// Quantity is a size in whole lots of the base asset.
type Quantity uint64
