package brokerage

import (
	"fmt"
	"sync"
)

// PriceOracle resolves the current unit price of a ticker symbol.
//
// Implementations must return a strictly positive price or an error
// wrapping ErrPriceUnavailable for symbols they do not know. They receive
// symbols already normalized to uppercase; case-insensitivity is the
// ledger's responsibility, not the oracle's.
type PriceOracle interface {
	Price(symbol string) (Money, error)
}

// PriceFunc adapts a plain lookup function to the PriceOracle interface.
type PriceFunc func(symbol string) (Money, error)

func (f PriceFunc) Price(symbol string) (Money, error) { return f(symbol) }

// StaticOracle serves prices from a fixed in-memory table. It is safe for
// concurrent use and is mainly intended for tests and simulations.
type StaticOracle struct {
	mu     sync.RWMutex
	prices map[string]Money
}

// NewStaticOracle creates an oracle serving the given price table.
func NewStaticOracle(prices map[string]Money) *StaticOracle {
	table := make(map[string]Money, len(prices))
	for symbol, price := range prices {
		table[symbol] = price
	}
	return &StaticOracle{prices: table}
}

// NewReferenceOracle creates the reference oracle used for deterministic
// testing. It knows three well-known tickers and fails for anything else.
func NewReferenceOracle() *StaticOracle {
	return NewStaticOracle(map[string]Money{
		"AAPL":  M(150.00, "USD"),
		"TSLA":  M(250.00, "USD"),
		"GOOGL": M(2800.00, "USD"),
	})
}

// Set installs or replaces the price served for a symbol.
func (o *StaticOracle) Set(symbol string, price Money) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.prices[symbol] = price
}

// Price returns the table price for the symbol, or an error wrapping
// ErrPriceUnavailable when the symbol is not in the table.
func (o *StaticOracle) Price(symbol string) (Money, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	price, ok := o.prices[symbol]
	if !ok {
		return Money{}, fmt.Errorf("no price for symbol %q: %w", symbol, ErrPriceUnavailable)
	}
	return price, nil
}
