package brokerage

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"
)

// Cash returns the current cash balance from the cache, without replay.
func (a *Account) Cash() Money {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cash
}

// Holdings returns a copy of the current positions from the cache,
// without replay. Only strictly positive positions appear.
func (a *Account) Holdings() map[string]Quantity {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return maps.Clone(a.holdings)
}

// PortfolioValue values the current holdings with the supplied oracle, or
// with the installed oracle when nil. Any unresolved symbol aborts the
// whole valuation with ErrPriceUnavailable; there is no partial result.
func (a *Account) PortfolioValue(oracle PriceOracle) (Money, error) {
	a.mu.RLock()
	holdings := maps.Clone(a.holdings)
	oracle = a.pick(oracle)
	a.mu.RUnlock()
	return valueHoldings(holdings, oracle, a.currency)
}

// Equity returns the current cash balance plus the current portfolio value.
func (a *Account) Equity(oracle PriceOracle) (Money, error) {
	a.mu.RLock()
	cash := a.cash
	holdings := maps.Clone(a.holdings)
	oracle = a.pick(oracle)
	a.mu.RUnlock()
	value, err := valueHoldings(holdings, oracle, a.currency)
	if err != nil {
		return Money{}, err
	}
	return cash.Add(value).Quantize(), nil
}

// NetContributions returns cumulative deposits minus withdrawals over the
// whole log: the capital baseline for performance measurement.
func (a *Account) NetContributions() Money {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return netContributions(a.log, a.currency)
}

// ProfitLoss returns current equity net of contributions.
func (a *Account) ProfitLoss(oracle PriceOracle) (Money, error) {
	equity, err := a.Equity(oracle)
	if err != nil {
		return Money{}, err
	}
	return equity.Sub(a.NetContributions()).Quantize(), nil
}

// ProfitLossVsFirstDeposit returns current equity minus the amount of the
// first deposit ever recorded, or minus zero when there is none.
func (a *Account) ProfitLossVsFirstDeposit(oracle PriceOracle) (Money, error) {
	equity, err := a.Equity(oracle)
	if err != nil {
		return Money{}, err
	}
	a.mu.RLock()
	first := firstDeposit(a.log, a.currency)
	a.mu.RUnlock()
	return equity.Sub(first).Quantize(), nil
}

// Transactions returns the transactions matching every supplied
// predicate, in original log order. With no predicates it returns the
// whole log. Predicates are built with ByKind, BySymbol and Between.
func (a *Account) Transactions(filters ...func(Transaction) bool) []Transaction {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Transaction, 0, len(a.log))
	for _, tx := range a.log {
		keep := true
		for _, filter := range filters {
			if !filter(tx) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, tx)
		}
	}
	return out
}

// Find returns the transaction with the given identifier, or false when
// no record matches. An absent identifier is not an error.
func (a *Account) Find(id string) (Transaction, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, tx := range a.log {
		if tx.ID() == id {
			return tx, true
		}
	}
	return nil, false
}

func (a *Account) pick(oracle PriceOracle) PriceOracle {
	if oracle != nil {
		return oracle
	}
	return a.oracle
}

// Summary provides a comprehensive, at-a-glance overview of the account's
// state and performance, either current or as of a snapshot's cutoff.
type Summary struct {
	Owner                    string
	Currency                 string
	At                       time.Time
	Cash                     Money
	Holdings                 map[string]Quantity
	PortfolioValue           Money
	Equity                   Money
	NetContributions         Money
	ProfitLoss               Money
	ProfitLossVsFirstDeposit Money
	Positions                int
	Transactions             int
}

// Summary computes the current summary. It is a composition of the other
// read operations, not new logic.
func (a *Account) Summary(oracle PriceOracle) (*Summary, error) {
	a.mu.RLock()
	in := summaryInput{
		owner:    a.owner,
		currency: a.currency,
		at:       a.clock(),
		cash:     a.cash,
		holdings: maps.Clone(a.holdings),
		txs:      a.log[:len(a.log):len(a.log)],
		oracle:   a.pick(oracle),
	}
	a.mu.RUnlock()
	return newSummary(in)
}

type summaryInput struct {
	owner    string
	currency string
	at       time.Time
	cash     Money
	holdings map[string]Quantity
	txs      []Transaction
	oracle   PriceOracle
}

func newSummary(in summaryInput) (*Summary, error) {
	value, err := valueHoldings(in.holdings, in.oracle, in.currency)
	if err != nil {
		return nil, err
	}
	equity := in.cash.Add(value).Quantize()
	contributions := netContributions(in.txs, in.currency)
	return &Summary{
		Owner:                    in.owner,
		Currency:                 in.currency,
		At:                       in.at,
		Cash:                     in.cash,
		Holdings:                 in.holdings,
		PortfolioValue:           value,
		Equity:                   equity,
		NetContributions:         contributions,
		ProfitLoss:               equity.Sub(contributions).Quantize(),
		ProfitLossVsFirstDeposit: equity.Sub(firstDeposit(in.txs, in.currency)).Quantize(),
		Positions:                len(in.holdings),
		Transactions:             len(in.txs),
	}, nil
}

// valueHoldings multiplies each held quantity by its oracle price,
// quantizing per term and in total. Any unresolved or non-positive price
// aborts the whole valuation.
func valueHoldings(holdings map[string]Quantity, oracle PriceOracle, currency string) (Money, error) {
	total := M(0, currency)
	symbols := make([]string, 0, len(holdings))
	for symbol := range holdings {
		symbols = append(symbols, symbol)
	}
	slices.Sort(symbols)
	for _, symbol := range symbols {
		if oracle == nil {
			return Money{}, fmt.Errorf("no price oracle installed for %s: %w", symbol, ErrPriceUnavailable)
		}
		price, err := oracle.Price(symbol)
		if err != nil {
			if errors.Is(err, ErrPriceUnavailable) {
				return Money{}, err
			}
			return Money{}, fmt.Errorf("oracle failed for %s: %v: %w", symbol, err, ErrPriceUnavailable)
		}
		if c := price.Currency(); c != "" && c != currency {
			return Money{}, fmt.Errorf("price currency %s does not match account currency %s: %w", c, currency, ErrPriceUnavailable)
		}
		price = M(price.value, currency).Quantize()
		if !price.IsPositive() {
			return Money{}, fmt.Errorf("price for %s must be positive, got %s: %w", symbol, price, ErrPriceUnavailable)
		}
		total = total.Add(price.Mul(holdings[symbol]).Quantize())
	}
	return total.Quantize(), nil
}

// netContributions folds deposits minus withdrawals over a log prefix.
func netContributions(txs []Transaction, currency string) Money {
	total := M(0, currency)
	for _, tx := range txs {
		switch v := tx.(type) {
		case Deposit:
			total = total.Add(v.Amount)
		case Withdrawal:
			total = total.Sub(v.Amount)
		}
	}
	return total.Quantize()
}

// firstDeposit returns the amount of the earliest deposit in a log
// prefix, or zero when none was recorded yet.
func firstDeposit(txs []Transaction, currency string) Money {
	for _, tx := range txs {
		if v, ok := tx.(Deposit); ok {
			return v.Amount
		}
	}
	return M(0, currency)
}
