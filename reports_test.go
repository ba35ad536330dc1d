package brokerage

import (
	"errors"
	"testing"
	"time"
)

func txIDs(txs []Transaction) []string {
	ids := make([]string, len(txs))
	for i, tx := range txs {
		ids[i] = tx.ID()
	}
	return ids
}

func TestAccount_TransactionsFilters(t *testing.T) {
	a := fixture(t)
	all := a.Transactions()
	if len(all) != 5 {
		t.Fatalf("len(Transactions()) = %d, want 5", len(all))
	}

	testCases := []struct {
		name    string
		filters []func(Transaction) bool
		want    []string // expected IDs, in log order
	}{
		{
			name:    "no filter returns the whole log in order",
			filters: nil,
			want:    txIDs(all),
		},
		{
			name:    "by kind",
			filters: []func(Transaction) bool{ByKind(KindBuy)},
			want:    []string{all[1].ID(), all[2].ID()},
		},
		{
			name:    "by several kinds",
			filters: []func(Transaction) bool{ByKind(KindDeposit, KindWithdrawal)},
			want:    []string{all[0].ID(), all[4].ID()},
		},
		{
			name:    "by symbol, case-insensitive",
			filters: []func(Transaction) bool{BySymbol("aapl")},
			want:    []string{all[1].ID(), all[3].ID()},
		},
		{
			name: "between with inclusive bounds",
			filters: []func(Transaction) bool{
				Between(mustTime("2025-01-05T00:00:00Z"), mustTime("2025-01-15T00:00:00Z")),
			},
			want: []string{all[1].ID(), all[2].ID(), all[3].ID()},
		},
		{
			name: "open-ended start",
			filters: []func(Transaction) bool{
				Between(mustTime("2025-01-15T00:00:00Z"), time.Time{}),
			},
			want: []string{all[3].ID(), all[4].ID()},
		},
		{
			name: "filters combine as a conjunction",
			filters: []func(Transaction) bool{
				ByKind(KindBuy, KindSell),
				BySymbol("AAPL"),
				Between(mustTime("2025-01-10T00:00:00Z"), mustTime("2025-01-31T00:00:00Z")),
			},
			want: []string{all[3].ID()},
		},
		{
			name:    "no match yields empty result",
			filters: []func(Transaction) bool{BySymbol("MSFT")},
			want:    []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := txIDs(a.Transactions(tc.filters...))
			if len(got) != len(tc.want) {
				t.Fatalf("got %d transactions %v, want %d %v", len(got), got, len(tc.want), tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("transaction %d = %s, want %s", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestAccount_Find(t *testing.T) {
	a := fixture(t)
	want := a.Transactions()[2]

	got, ok := a.Find(want.ID())
	if !ok {
		t.Fatalf("Find(%q) returned false", want.ID())
	}
	if !got.Equal(want) {
		t.Errorf("Find() = %v, want %v", got, want)
	}

	if _, ok := a.Find("no-such-id"); ok {
		t.Error("Find() of an absent identifier returned true, want false")
	}
}

func TestAccount_CurrentMetrics(t *testing.T) {
	a := fixture(t)

	// Current state: cash 3900, 2 GOOGL priced 2800 by the reference oracle.
	pv, err := a.PortfolioValue(nil)
	if err != nil {
		t.Fatalf("PortfolioValue() failed: %v", err)
	}
	if want := USD(5600.00); !pv.Equal(want) {
		t.Errorf("PortfolioValue() = %s, want %s", pv, want)
	}

	equity, err := a.Equity(nil)
	if err != nil {
		t.Fatalf("Equity() failed: %v", err)
	}
	if want := USD(9500.00); !equity.Equal(want) {
		t.Errorf("Equity() = %s, want %s", equity, want)
	}

	if got, want := a.NetContributions(), USD(9500.00); !got.Equal(want) {
		t.Errorf("NetContributions() = %s, want %s", got, want)
	}

	// A price move shows up in both profit metrics, offset differently
	// by the withdrawal.
	a.SetOracle(NewStaticOracle(map[string]Money{"GOOGL": USD(2900.00)}))

	pl, err := a.ProfitLoss(nil)
	if err != nil {
		t.Fatalf("ProfitLoss() failed: %v", err)
	}
	if want := USD(200.00); !pl.Equal(want) {
		t.Errorf("ProfitLoss() = %s, want %s", pl, want)
	}
	plFirst, err := a.ProfitLossVsFirstDeposit(nil)
	if err != nil {
		t.Fatalf("ProfitLossVsFirstDeposit() failed: %v", err)
	}
	if want := USD(-300.00); !plFirst.Equal(want) {
		t.Errorf("ProfitLossVsFirstDeposit() = %s, want %s", plFirst, want)
	}
}

func TestAccount_CashOnlyMetricsNeedNoOracle(t *testing.T) {
	a, err := NewAccount("carol", WithClock(clockAt("2025-01-01T00:00:00Z")))
	if err != nil {
		t.Fatalf("NewAccount() failed: %v", err)
	}
	if _, err := a.Deposit(USD(100)); err != nil {
		t.Fatalf("Deposit() failed: %v", err)
	}

	// No holdings: valuation never consults an oracle.
	equity, err := a.Equity(nil)
	if err != nil {
		t.Fatalf("Equity() failed: %v", err)
	}
	if want := USD(100.00); !equity.Equal(want) {
		t.Errorf("Equity() = %s, want %s", equity, want)
	}
}

func TestAccount_Summary(t *testing.T) {
	a := fixture(t)
	s, err := a.Summary(nil)
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}

	if s.Owner != "alice" {
		t.Errorf("Owner = %q, want %q", s.Owner, "alice")
	}
	if s.Currency != "USD" {
		t.Errorf("Currency = %q, want %q", s.Currency, "USD")
	}
	if !s.Cash.Equal(USD(3900.00)) {
		t.Errorf("Cash = %s, want %s", s.Cash, USD(3900.00))
	}
	if !s.PortfolioValue.Equal(USD(5600.00)) {
		t.Errorf("PortfolioValue = %s, want %s", s.PortfolioValue, USD(5600.00))
	}
	if !s.Equity.Equal(USD(9500.00)) {
		t.Errorf("Equity = %s, want %s", s.Equity, USD(9500.00))
	}
	if !s.NetContributions.Equal(USD(9500.00)) {
		t.Errorf("NetContributions = %s, want %s", s.NetContributions, USD(9500.00))
	}
	if !s.ProfitLoss.Equal(USD(0)) {
		t.Errorf("ProfitLoss = %s, want %s", s.ProfitLoss, USD(0))
	}
	if !s.ProfitLossVsFirstDeposit.Equal(USD(-500.00)) {
		t.Errorf("ProfitLossVsFirstDeposit = %s, want %s", s.ProfitLossVsFirstDeposit, USD(-500.00))
	}
	if s.Positions != 1 {
		t.Errorf("Positions = %d, want 1", s.Positions)
	}
	if s.Transactions != 5 {
		t.Errorf("Transactions = %d, want 5", s.Transactions)
	}
}

func TestSnapshot_Summary(t *testing.T) {
	a := fixture(t)
	snap, err := a.On(mustTime("2025-01-07T00:00:00Z"))
	if err != nil {
		t.Fatalf("On() failed: %v", err)
	}
	s, err := snap.Summary(nil)
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}
	if !s.Cash.Equal(USD(8500.00)) {
		t.Errorf("Cash = %s, want %s", s.Cash, USD(8500.00))
	}
	if !s.PortfolioValue.Equal(USD(1500.00)) {
		t.Errorf("PortfolioValue = %s, want %s", s.PortfolioValue, USD(1500.00))
	}
	if s.Transactions != 2 {
		t.Errorf("Transactions = %d, want 2", s.Transactions)
	}
	if want := mustTime("2025-01-07T00:00:00Z"); !s.At.Equal(want) {
		t.Errorf("At = %v, want %v", s.At, want)
	}
}

func TestAccount_SummaryUnpricedSymbolAborts(t *testing.T) {
	a := fixture(t)
	a.SetOracle(NewStaticOracle(nil))
	if _, err := a.Summary(nil); !errors.Is(err, ErrPriceUnavailable) {
		t.Errorf("Summary() with unpriced holding: error = %v, want %v", err, ErrPriceUnavailable)
	}
}
