package brokerage

import (
	"fmt"
	"sort"
	"time"
)

// Snapshot is a point-in-time view of an account. It is a stateless
// calculator: every metric is reconstructed by folding the transaction
// log prefix with timestamp on or before its cutoff, in log order.
//
// The prefix is captured atomically when the snapshot is taken; appended
// transactions are immutable, so a Snapshot stays valid and consistent
// while the account keeps moving.
type Snapshot struct {
	owner    string
	currency string
	at       time.Time
	txs      []Transaction
	oracle   PriceOracle
}

// On returns a snapshot of the account as of the given instant. The
// cutoff is inclusive; ties on equal timestamps are resolved by append
// order, which the log itself preserves. A zero instant snapshots at the
// account clock's current time.
func (a *Account) On(at time.Time) (*Snapshot, error) {
	if at.IsZero() {
		at = a.clock()
	}
	if at.Location() != time.UTC {
		return nil, fmt.Errorf("cutoff %v is not normalized to UTC: %w", at, ErrAmbiguousTimestamp)
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	// The log is non-decreasing, so the prefix boundary is found by
	// binary search. The slice header is enough: entries never change.
	n := sort.Search(len(a.log), func(i int) bool { return a.log[i].When().After(at) })
	return &Snapshot{
		owner:    a.owner,
		currency: a.currency,
		at:       at,
		txs:      a.log[:n:n],
		oracle:   a.oracle,
	}, nil
}

// At returns the cutoff instant of the snapshot.
func (s *Snapshot) At() time.Time { return s.at }

// replay folds the captured prefix with the same semantics the account
// applies on append, reconstructing cash and holdings as of the cutoff.
func (s *Snapshot) replay() (Money, map[string]Quantity) {
	cash := M(0, s.currency)
	holdings := make(map[string]Quantity)
	for _, tx := range s.txs {
		cash = cash.Add(tx.CashDelta()).Quantize()
		switch v := tx.(type) {
		case Buy:
			holdings[v.Security] = holdings[v.Security].Add(v.Quantity).Quantize()
		case Sell:
			remaining := holdings[v.Security].Sub(v.Quantity).Quantize()
			if remaining.IsZero() {
				delete(holdings, v.Security)
			} else {
				holdings[v.Security] = remaining
			}
		}
	}
	return cash, holdings
}

// Cash returns the cash balance as of the cutoff.
func (s *Snapshot) Cash() Money {
	cash, _ := s.replay()
	return cash
}

// Holdings returns the positions held as of the cutoff. Only strictly
// positive positions appear; a quantity sold back to zero is absent.
func (s *Snapshot) Holdings() map[string]Quantity {
	_, holdings := s.replay()
	return holdings
}

// PortfolioValue values the holdings as of the cutoff with the supplied
// oracle, or with the oracle captured from the account when nil. Any
// unresolved symbol aborts the whole valuation.
func (s *Snapshot) PortfolioValue(oracle PriceOracle) (Money, error) {
	_, holdings := s.replay()
	return valueHoldings(holdings, s.pick(oracle), s.currency)
}

// Equity returns cash plus portfolio value as of the cutoff.
func (s *Snapshot) Equity(oracle PriceOracle) (Money, error) {
	cash, holdings := s.replay()
	value, err := valueHoldings(holdings, s.pick(oracle), s.currency)
	if err != nil {
		return Money{}, err
	}
	return cash.Add(value).Quantize(), nil
}

// NetContributions returns deposits minus withdrawals as of the cutoff.
func (s *Snapshot) NetContributions() Money {
	return netContributions(s.txs, s.currency)
}

// ProfitLoss returns equity net of contributions as of the cutoff: the
// capital-weighted performance since inception.
func (s *Snapshot) ProfitLoss(oracle PriceOracle) (Money, error) {
	equity, err := s.Equity(oracle)
	if err != nil {
		return Money{}, err
	}
	return equity.Sub(s.NetContributions()).Quantize(), nil
}

// ProfitLossVsFirstDeposit returns equity minus the amount of the first
// deposit on or before the cutoff (zero when there is none): a simpler,
// single-reference-point performance metric.
func (s *Snapshot) ProfitLossVsFirstDeposit(oracle PriceOracle) (Money, error) {
	equity, err := s.Equity(oracle)
	if err != nil {
		return Money{}, err
	}
	return equity.Sub(firstDeposit(s.txs, s.currency)).Quantize(), nil
}

// Summary bundles every metric of the snapshot into a single report.
func (s *Snapshot) Summary(oracle PriceOracle) (*Summary, error) {
	cash, holdings := s.replay()
	return newSummary(summaryInput{
		owner:    s.owner,
		currency: s.currency,
		at:       s.at,
		cash:     cash,
		holdings: holdings,
		txs:      s.txs,
		oracle:   s.pick(oracle),
	})
}

func (s *Snapshot) pick(oracle PriceOracle) PriceOracle {
	if oracle != nil {
		return oracle
	}
	return s.oracle
}
