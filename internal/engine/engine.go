package engine

import (
	"fmt"
	"sort"
	"sync"

	. "matchbook/internal/common"

	"github.com/rs/zerolog/log"
)

// Reporter receives the trades produced by market orders.
type Reporter interface {
	ReportTrade(pair TradingPair, trade Trade) error
}

// This is the main matching engine. It routes orders to the book of their
// trading pair; books lock independently, so different pairs proceed in
// parallel.
type Engine struct {
	mu       sync.RWMutex
	books    map[TradingPair]*OrderBook
	reporter Reporter
}

func New(pairs ...TradingPair) *Engine {
	engine := &Engine{
		books: make(map[TradingPair]*OrderBook),
	}
	for _, pair := range pairs {
		// Duplicates in the seed list collapse onto one book.
		_ = engine.AddNewMarket(pair)
	}
	return engine
}

func (engine *Engine) SetReporter(reporter Reporter) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.reporter = reporter
}

// AddNewMarket opens an empty book for pair. An existing book is never
// replaced, since that would discard its resting orders.
func (engine *Engine) AddNewMarket(pair TradingPair) error {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if _, ok := engine.books[pair]; ok {
		return fmt.Errorf("%w: %s", ErrMarketExists, pair)
	}
	engine.books[pair] = NewOrderBook()

	log.Info().Stringer("market", pair).Msg("opening new orderbook for market")
	return nil
}

// Book returns the order book of pair, if the market exists.
func (engine *Engine) Book(pair TradingPair) (*OrderBook, bool) {
	engine.mu.RLock()
	defer engine.mu.RUnlock()

	book, ok := engine.books[pair]
	return book, ok
}

// Markets lists the registered trading pairs by canonical name.
func (engine *Engine) Markets() []TradingPair {
	engine.mu.RLock()
	defer engine.mu.RUnlock()

	pairs := make([]TradingPair, 0, len(engine.books))
	for pair := range engine.books {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].String() < pairs[j].String()
	})
	return pairs
}

func (engine *Engine) route(pair TradingPair) (*OrderBook, error) {
	book, ok := engine.Book(pair)
	if !ok {
		return nil, &MarketNotFoundError{Pair: pair}
	}
	return book, nil
}

// PlaceLimitOrder rests order at price in the book of pair.
func (engine *Engine) PlaceLimitOrder(pair TradingPair, price Price, order *Order) error {
	book, err := engine.route(pair)
	if err != nil {
		return err
	}
	if err := book.AddLimitOrder(price, order); err != nil {
		return fmt.Errorf("place limit order on %s: %w", pair, err)
	}

	log.Info().
		Stringer("market", pair).
		Stringer("price", price).
		Msg("placed limit order")
	return nil
}

// PlaceMarketOrder matches order against the book of pair and forwards each
// resulting trade to the reporter, if one is set.
func (engine *Engine) PlaceMarketOrder(pair TradingPair, order *Order) (MatchResult, error) {
	book, err := engine.route(pair)
	if err != nil {
		return MatchResult{}, err
	}
	result, err := book.FillMarketOrder(order)
	if err != nil {
		return MatchResult{}, fmt.Errorf("place market order on %s: %w", pair, err)
	}

	engine.mu.RLock()
	reporter := engine.reporter
	engine.mu.RUnlock()

	for _, trade := range result.Trades {
		engine.Trade(pair, trade)
		if reporter == nil {
			continue
		}
		if err := reporter.ReportTrade(pair, trade); err != nil {
			log.Error().Err(err).Stringer("market", pair).Msg("unable to report trade")
		}
	}
	return result, nil
}

// Trade logs a single match.
func (engine *Engine) Trade(pair TradingPair, trade Trade) {
	log.Info().
		Stringer("market", pair).
		Str("taker", trade.TakerID).
		Str("maker", trade.MakerID).
		Stringer("price", trade.Price).
		Uint64("quantity", uint64(trade.Quantity)).
		Msg("trade")
}
