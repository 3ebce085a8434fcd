package config

import (
	"errors"
	"fmt"
	"os"

	. "matchbook/internal/common"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoConfigFile  = errors.New("no config file given")
	ErrUnknownMarket = errors.New("order references unknown market")
)

type MarketConfig struct {
	Base  string `yaml:"base"`
	Quote string `yaml:"quote"`
}

func (m MarketConfig) Pair() TradingPair {
	return NewTradingPair(m.Base, m.Quote)
}

type OrderConfig struct {
	Market MarketConfig `yaml:"market"`
	Side   string       `yaml:"side"`
	Type   string       `yaml:"type"`
	Price  string       `yaml:"price"`
	Size   uint64       `yaml:"size"`
	Owner  string       `yaml:"owner"`
}

type AppConfig struct {
	LogLevel string         `yaml:"log_level"`
	Workers  int            `yaml:"workers"`
	Markets  []MarketConfig `yaml:"markets"`
	Orders   []OrderConfig  `yaml:"orders"`
}

// OrderRequest is a configured order converted to domain types.
type OrderRequest struct {
	Pair  TradingPair
	Type  OrderType
	Price Price // Zero for market orders.
	Order *Order
}

// Load reads the config from filePath, falling back to the CONFIG_FILE
// environment variable.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}
	if len(filePath) == 0 {
		return nil, ErrNoConfigFile
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*AppConfig, error) {
	cfg := &AppConfig{
		LogLevel: "info",
		Workers:  4,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	return cfg, nil
}

func (cfg *AppConfig) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}

func (cfg *AppConfig) Pairs() []TradingPair {
	pairs := make([]TradingPair, 0, len(cfg.Markets))
	for _, m := range cfg.Markets {
		pairs = append(pairs, m.Pair())
	}
	return pairs
}

// Requests converts the configured orders, in file order.
func (cfg *AppConfig) Requests() ([]OrderRequest, error) {
	known := make(map[TradingPair]struct{}, len(cfg.Markets))
	for _, pair := range cfg.Pairs() {
		known[pair] = struct{}{}
	}

	requests := make([]OrderRequest, 0, len(cfg.Orders))
	for i, o := range cfg.Orders {
		pair := o.Market.Pair()
		if _, ok := known[pair]; !ok {
			return nil, fmt.Errorf("order %d: %w: %s", i, ErrUnknownMarket, pair)
		}
		side, err := ParseSide(o.Side)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
		orderType, err := ParseOrderType(o.Type)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}

		req := OrderRequest{
			Pair: pair,
			Type: orderType,
		}
		if orderType == LimitOrder {
			if req.Price, err = ParsePrice(o.Price); err != nil {
				return nil, fmt.Errorf("order %d: %w", i, err)
			}
		}
		req.Order = NewOrder(side, Quantity(o.Size))
		req.Order.Owner = o.Owner
		requests = append(requests, req)
	}
	return requests, nil
}
