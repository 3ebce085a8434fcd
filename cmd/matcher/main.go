package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	. "matchbook/internal/common"
	"matchbook/internal/config"
	"matchbook/internal/engine"
	"matchbook/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// logReporter writes every trade to the log.
type logReporter struct{}

func (logReporter) ReportTrade(pair TradingPair, trade Trade) error {
	log.Debug().Stringer("market", pair).Msgf("execution report\n%s", trade)
	return nil
}

func main() {
	configPath := flag.String("config", "", "Path to the YAML config (defaults to $CONFIG_FILE)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load config")
	}
	level, _ := cfg.Level()
	zerolog.SetGlobalLevel(level)

	requests, err := cfg.Requests()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid orders in config")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	eng := engine.New(cfg.Pairs()...)
	eng.SetReporter(logReporter{})

	run(ctx, eng, cfg.Workers, requests)

	for _, pair := range eng.Markets() {
		book, _ := eng.Book(pair)
		event := log.Info().
			Stringer("market", pair).
			Uint64("bid_volume", uint64(book.Volume(Bid))).
			Uint64("ask_volume", uint64(book.Volume(Ask)))
		if bid, ok := book.BestBid(); ok {
			event = event.Stringer("best_bid", bid)
		}
		if ask, ok := book.BestAsk(); ok {
			event = event.Stringer("best_ask", ask)
		}
		event.Msg("book summary")
	}
}

// run rests the limit orders through the worker pool, then executes the
// market orders in the order they were given.
func run(ctx context.Context, eng *engine.Engine, workers int, requests []config.OrderRequest) {
	t, _ := tomb.WithContext(ctx)
	pool := worker.NewPool(workers)

	var wg sync.WaitGroup
	pool.Start(t, func(_ *tomb.Tomb, task any) error {
		defer wg.Done()
		req := task.(config.OrderRequest)
		if err := eng.PlaceLimitOrder(req.Pair, req.Price, req.Order); err != nil {
			log.Error().Err(err).Str("order", req.Order.ID).Msg("limit order rejected")
		}
		return nil
	})

	var markets []config.OrderRequest
	for _, req := range requests {
		if req.Type == MarketOrder {
			markets = append(markets, req)
			continue
		}
		wg.Add(1)
		if err := pool.Submit(t, req); err != nil {
			wg.Done()
			log.Warn().Err(err).Msg("shutting down before all orders were placed")
			break
		}
	}

	// Queued tasks are abandoned if the tomb dies first.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-t.Dying():
	}
	t.Kill(nil)
	if err := t.Wait(); err != nil {
		log.Error().Err(err).Msg("worker pool failed")
	}

	for _, req := range markets {
		if ctx.Err() != nil {
			return
		}
		result, err := eng.PlaceMarketOrder(req.Pair, req.Order)
		if err != nil {
			log.Error().Err(err).Str("order", req.Order.ID).Msg("market order rejected")
			continue
		}
		log.Info().
			Stringer("market", req.Pair).
			Str("order", req.Order.ID).
			Int("trades", len(result.Trades)).
			Uint64("filled", uint64(result.Filled)).
			Uint64("unfilled", uint64(result.Unfilled)).
			Msg("market order done")
	}
}
