package common

import "fmt"

// TradingPair identifies one market, e.g. BTC (base) priced in USD (quote).
type TradingPair struct {
	Base  string
	Quote string
}

func NewTradingPair(base, quote string) TradingPair {
	return TradingPair{Base: base, Quote: quote}
}

// String is the canonical "{base}_{quote}" form, used for diagnostics only.
func (p TradingPair) String() string {
	return fmt.Sprintf("%s_%s", p.Base, p.Quote)
}
