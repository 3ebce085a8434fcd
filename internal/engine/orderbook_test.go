package engine_test

import (
	"sync"
	"testing"

	. "matchbook/internal/common"
	"matchbook/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Setup & Helpers --------------------------------------------------------

func createTestOrderBook() *engine.OrderBook {
	return engine.NewOrderBook()
}

func testOrder(side Side, qty Quantity) *Order {
	return &Order{
		ID:            "test-id",
		Side:          side,
		Quantity:      qty,
		TotalQuantity: qty,
	}
}

func placeTestOrders(book *engine.OrderBook, price int64, side Side, quantities ...Quantity) error {
	for _, qty := range quantities {
		if err := book.AddLimitOrder(NewPrice(price), testOrder(side, qty)); err != nil {
			return err
		}
	}
	return nil
}

type testQuantity struct {
	quantity      Quantity
	totalQuantity Quantity
}

// newQuantity creates a quantity with regular and total the same value.
func newQuantity(quantity Quantity) testQuantity {
	return testQuantity{quantity, quantity}
}

// buildExpectedLevel constructs the expected level to compare against.
func buildExpectedLevel(price int64, side Side, quantities ...testQuantity) engine.FlatPriceLevel {
	orders := make([]*Order, len(quantities))
	for i, qty := range quantities {
		orders[i] = &Order{
			ID:            "test-id",
			Side:          side,
			Quantity:      qty.quantity,
			TotalQuantity: qty.totalQuantity,
		}
	}
	return engine.FlatPriceLevel{
		PriceLevel: NewPrice(price),
		Orders:     orders,
	}
}

func setupTwoSidedBook(t *testing.T) *engine.OrderBook {
	book := createTestOrderBook()

	// BIDS: Highest price first (99 -> 98)
	require.NoError(t, placeTestOrders(book, 99, Bid, 100, 90, 80))
	require.NoError(t, placeTestOrders(book, 98, Bid, 50))

	// ASKS: Lowest price first (100 -> 101)
	require.NoError(t, placeTestOrders(book, 100, Ask, 100, 90))
	require.NoError(t, placeTestOrders(book, 101, Ask, 20))
	return book
}

// --- Tests ------------------------------------------------------------------

func TestAddLimitOrder(t *testing.T) {
	book := createTestOrderBook()

	assert.NoError(t, placeTestOrders(book, 99, Bid, 100, 90, 80))
	assert.NoError(t, placeTestOrders(book, 100, Ask, 100, 90, 80))

	expectedAsks := []engine.FlatPriceLevel{
		buildExpectedLevel(100, Ask, newQuantity(100), newQuantity(90), newQuantity(80)),
	}
	expectedBids := []engine.FlatPriceLevel{
		buildExpectedLevel(99, Bid, newQuantity(100), newQuantity(90), newQuantity(80)),
	}

	assert.Equal(t, expectedAsks, engine.FlattenLevels(book.AskLimits()))
	assert.Equal(t, expectedBids, engine.FlattenLevels(book.BidLimits()))
}

func TestAddLimitOrder_MultipleLevels(t *testing.T) {
	book := setupTwoSidedBook(t)

	expectedAsks := []engine.FlatPriceLevel{
		buildExpectedLevel(100, Ask, newQuantity(100), newQuantity(90)),
		buildExpectedLevel(101, Ask, newQuantity(20)),
	}
	expectedBids := []engine.FlatPriceLevel{
		buildExpectedLevel(99, Bid, newQuantity(100), newQuantity(90), newQuantity(80)),
		buildExpectedLevel(98, Bid, newQuantity(50)),
	}

	assert.Equal(t, expectedAsks, engine.FlattenLevels(book.AskLimits()), "Asks should be sorted Low -> High")
	assert.Equal(t, expectedBids, engine.FlattenLevels(book.BidLimits()), "Bids should be sorted High -> Low")
}

func TestAddLimitOrder_PriorityIndependentOfInsertion(t *testing.T) {
	book := createTestOrderBook()

	for _, price := range []int64{500, 100, 200, 300} {
		require.NoError(t, placeTestOrders(book, price, Ask, 10))
		require.NoError(t, placeTestOrders(book, price, Bid, 10))
	}

	var asks, bids []Price
	for _, level := range book.AskLimits() {
		asks = append(asks, level.Price())
	}
	for _, level := range book.BidLimits() {
		bids = append(bids, level.Price())
	}

	assert.Equal(t, []Price{NewPrice(100), NewPrice(200), NewPrice(300), NewPrice(500)}, asks)
	assert.Equal(t, []Price{NewPrice(500), NewPrice(300), NewPrice(200), NewPrice(100)}, bids)
}

func TestAddLimitOrder_SamePriceAccumulates(t *testing.T) {
	book := createTestOrderBook()

	first := NewOrder(Bid, 30)
	second := NewOrder(Bid, 12)
	third := NewOrder(Bid, 7)
	for _, order := range []*Order{first, second, third} {
		require.NoError(t, book.AddLimitOrder(NewPrice(4), order))
	}

	levels := book.BidLimits()
	require.Len(t, levels, 1)
	assert.Equal(t, Quantity(49), levels[0].TotalVolume())
	assert.Equal(t, Quantity(49), book.Volume(Bid))

	var ids []string
	for _, order := range levels[0].Orders() {
		ids = append(ids, order.ID)
	}
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, ids, "time priority is arrival order")
}

func TestAddLimitOrder_Invalid(t *testing.T) {
	book := createTestOrderBook()

	tests := []struct {
		name  string
		price Price
		order *Order
	}{
		{"zero size", NewPrice(10), testOrder(Bid, 0)},
		{"zero price", 0, testOrder(Bid, 10)},
		{"negative price", NewPrice(-10), testOrder(Ask, 10)},
		{"unknown side", NewPrice(10), testOrder(Side(7), 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := book.AddLimitOrder(tt.price, tt.order)
			assert.ErrorIs(t, err, ErrInvalidOrderParameters)
		})
	}

	assert.Empty(t, book.AskLimits())
	assert.Empty(t, book.BidLimits())
}

func TestFillMarketOrder_BestAskOnly(t *testing.T) {
	book := createTestOrderBook()

	resting := make(map[int64]*Order)
	for _, price := range []int64{500, 100, 200, 300} {
		order := NewOrder(Ask, 10)
		resting[price] = order
		require.NoError(t, book.AddLimitOrder(NewPrice(price), order))
	}

	incoming := NewOrder(Bid, 10)
	result, err := book.FillMarketOrder(incoming)
	require.NoError(t, err)

	assert.True(t, incoming.IsFilled())
	assert.True(t, resting[100].IsFilled())
	for _, price := range []int64{200, 300, 500} {
		assert.Equal(t, Quantity(10), resting[price].Quantity)
	}

	assert.Equal(t, Quantity(10), result.Filled)
	assert.Equal(t, Quantity(0), result.Unfilled)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, Trade{
		TakerID:   incoming.ID,
		MakerID:   resting[100].ID,
		TakerSide: Bid,
		Price:     NewPrice(100),
		Quantity:  10,
		Timestamp: result.Trades[0].Timestamp,
	}, result.Trades[0])

	best, ok := book.BestAsk()
	require.True(t, ok)
	assert.Equal(t, NewPrice(200), best)
}

func TestFillMarketOrder_Sweep_Bid(t *testing.T) {
	book := setupTwoSidedBook(t)

	// A market bid sweeps 100 entirely and part of 101.
	incoming := testOrder(Bid, 200)
	result, err := book.FillMarketOrder(incoming)
	require.NoError(t, err)

	assert.Equal(t, Quantity(200), result.Filled)
	assert.Len(t, result.Trades, 3)

	expectedAsks := []engine.FlatPriceLevel{
		buildExpectedLevel(101, Ask, testQuantity{10, 20}),
	}
	assert.Equal(t, expectedAsks, engine.FlattenLevels(book.AskLimits()))

	// Bids are untouched by a market bid.
	expectedBids := []engine.FlatPriceLevel{
		buildExpectedLevel(99, Bid, newQuantity(100), newQuantity(90), newQuantity(80)),
		buildExpectedLevel(98, Bid, newQuantity(50)),
	}
	assert.Equal(t, expectedBids, engine.FlattenLevels(book.BidLimits()))
}

func TestFillMarketOrder_Sweep_Ask(t *testing.T) {
	book := setupTwoSidedBook(t)

	incoming := testOrder(Ask, 310)
	result, err := book.FillMarketOrder(incoming)
	require.NoError(t, err)

	assert.True(t, incoming.IsFilled())
	assert.Equal(t, Quantity(310), result.Filled)
	assert.Len(t, result.Trades, 4)

	expectedBids := []engine.FlatPriceLevel{
		buildExpectedLevel(98, Bid, testQuantity{10, 50}),
	}
	assert.Equal(t, expectedBids, engine.FlattenLevels(book.BidLimits()))

	// Asks are untouched by a market ask.
	assert.Equal(t, Quantity(210), book.Volume(Ask))
}

func TestFillMarketOrder_InsufficientLiquidity(t *testing.T) {
	book := createTestOrderBook()
	require.NoError(t, placeTestOrders(book, 100, Ask, 20))
	require.NoError(t, placeTestOrders(book, 101, Ask, 5))

	incoming := testOrder(Bid, 50)
	result, err := book.FillMarketOrder(incoming)
	require.NoError(t, err)

	assert.Equal(t, Quantity(25), result.Filled)
	assert.Equal(t, Quantity(25), result.Unfilled)
	assert.Equal(t, Quantity(25), incoming.Quantity)
	assert.Empty(t, book.AskLimits())

	_, ok := book.BestAsk()
	assert.False(t, ok)
}

func TestFillMarketOrder_EmptyBook(t *testing.T) {
	book := createTestOrderBook()

	result, err := book.FillMarketOrder(testOrder(Ask, 5))
	require.NoError(t, err)
	assert.Empty(t, result.Trades)
	assert.Equal(t, Quantity(5), result.Unfilled)
}

func TestFillMarketOrder_Invalid(t *testing.T) {
	book := setupTwoSidedBook(t)

	_, err := book.FillMarketOrder(testOrder(Bid, 0))
	assert.ErrorIs(t, err, ErrInvalidOrderParameters)
	assert.Equal(t, Quantity(210), book.Volume(Ask))
}

func TestLimits_AreSnapshots(t *testing.T) {
	book := setupTwoSidedBook(t)

	levels := book.AskLimits()
	levels[0].AddOrder(testOrder(Ask, 1000))

	assert.Equal(t, Quantity(210), book.Volume(Ask))
}

func TestBestPrices(t *testing.T) {
	book := createTestOrderBook()

	_, ok := book.BestBid()
	assert.False(t, ok)

	book = setupTwoSidedBook(t)
	bid, ok := book.BestBid()
	require.True(t, ok)
	assert.Equal(t, NewPrice(99), bid)

	ask, ok := book.BestAsk()
	require.True(t, ok)
	assert.Equal(t, NewPrice(100), ask)
}

func TestOrderBook_ConcurrentInsertAndFill(t *testing.T) {
	book := createTestOrderBook()

	const n = 100
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, placeTestOrders(book, int64(100+i%5), Ask, 2))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, placeTestOrders(book, int64(90+i%5), Bid, 3))
		}()
	}
	wg.Wait()

	assert.Equal(t, Quantity(2*n), book.Volume(Ask))
	assert.Equal(t, Quantity(3*n), book.Volume(Bid))

	var filled Quantity
	var mu sync.Mutex
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := book.FillMarketOrder(testOrder(Bid, 15))
			assert.NoError(t, err)
			mu.Lock()
			filled += result.Filled
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, Quantity(150), filled)
	assert.Equal(t, Quantity(2*n-150), book.Volume(Ask))
}
