package brokerage

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current instant for transactions recorded without an
// explicit timestamp. Injecting it keeps tests deterministic.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// Account is the aggregate root of the ledger: an append-only transaction
// log plus two derived caches (current cash and current holdings) that are
// always a pure function of the log.
//
// Mutations are guarded by a single lock covering the whole
// validate-append-update path. As-of reads replay an atomically
// snapshotted prefix of the log outside the lock; appended transactions
// are never mutated, so replay is safe against concurrent appends.
type Account struct {
	mu       sync.RWMutex
	owner    string
	currency string
	oracle   PriceOracle
	clock    Clock
	log      []Transaction
	cash     Money
	holdings map[string]Quantity
}

type accountOptions struct {
	currency string
	oracle   PriceOracle
	clock    Clock
	seed     Money
	seeded   bool
}

// Option configures an Account at construction time.
type Option func(*accountOptions)

// WithCurrency sets the reference currency label. No conversion is ever
// performed; the label travels on every monetary value for formatting.
func WithCurrency(code string) Option {
	return func(o *accountOptions) { o.currency = code }
}

// WithOracle installs the initial price oracle.
func WithOracle(oracle PriceOracle) Option {
	return func(o *accountOptions) { o.oracle = oracle }
}

// WithClock replaces the wall clock used for implicit timestamps.
func WithClock(clock Clock) Option {
	return func(o *accountOptions) { o.clock = clock }
}

// WithSeedDeposit records an initial deposit at construction time.
func WithSeedDeposit(amount Money) Option {
	return func(o *accountOptions) { o.seed = amount; o.seeded = true }
}

// NewAccount creates an empty account for the given owner. The owner
// label must be non-empty. The reference currency defaults to USD.
// Without an oracle, trades require an explicit execution price.
func NewAccount(owner string, opts ...Option) (*Account, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, errors.New("account owner must be a non-empty label")
	}
	o := accountOptions{currency: "USD", clock: utcNow}
	for _, opt := range opts {
		opt(&o)
	}
	a := &Account{
		owner:    owner,
		currency: o.currency,
		oracle:   o.oracle,
		clock:    o.clock,
		log:      make([]Transaction, 0),
		cash:     M(0, o.currency),
		holdings: make(map[string]Quantity),
	}
	if o.seeded {
		if _, err := a.Deposit(o.seed, WithNote("initial deposit")); err != nil {
			return nil, fmt.Errorf("seed deposit: %w", err)
		}
	}
	return a, nil
}

// Owner returns the account owner label.
func (a *Account) Owner() string { return a.owner }

// Currency returns the reference currency label.
func (a *Account) Currency() string { return a.currency }

// SetOracle replaces the price oracle at runtime. Historical buy and sell
// records keep the price they executed at; swapping the oracle never
// rewrites history.
func (a *Account) SetOracle(oracle PriceOracle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.oracle = oracle
}

// txOptions carries the per-mutation knobs.
type txOptions struct {
	at       time.Time
	note     string
	price    Money
	hasPrice bool
}

// TxOption configures a single mutation.
type TxOption func(*txOptions)

// At sets an explicit timestamp for the transaction. The instant must be
// normalized to UTC; a zero value falls back to the account clock.
func At(at time.Time) TxOption {
	return func(o *txOptions) { o.at = at }
}

// WithNote attaches a free-text annotation to the transaction.
func WithNote(note string) TxOption {
	return func(o *txOptions) { o.note = note }
}

// AtPrice sets an explicit execution price for a buy or sell, bypassing
// the oracle.
func AtPrice(price Money) TxOption {
	return func(o *txOptions) { o.price = price; o.hasPrice = true }
}

func applyTxOptions(opts []TxOption) txOptions {
	var o txOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Deposit records an external cash inflow and returns the created
// transaction. The amount is quantized to 2 fractional digits and must be
// strictly positive.
func (a *Account) Deposit(amount Money, opts ...TxOption) (Transaction, error) {
	o := applyTxOptions(opts)
	a.mu.Lock()
	defer a.mu.Unlock()

	at, err := a.effectiveTime(o.at)
	if err != nil {
		return nil, err
	}
	amt, err := a.cashAmount(amount)
	if err != nil {
		return nil, err
	}
	tx := newDeposit(uuid.NewString(), at, o.note, amt)
	a.append(tx)
	return tx, nil
}

// Withdraw records an external cash outflow and returns the created
// transaction. It fails with ErrInsufficientFunds when the current cash
// balance does not cover the amount.
func (a *Account) Withdraw(amount Money, opts ...TxOption) (Transaction, error) {
	o := applyTxOptions(opts)
	a.mu.Lock()
	defer a.mu.Unlock()

	at, err := a.effectiveTime(o.at)
	if err != nil {
		return nil, err
	}
	amt, err := a.cashAmount(amount)
	if err != nil {
		return nil, err
	}
	if a.cash.LessThan(amt) {
		return nil, fmt.Errorf("cannot withdraw %s, cash balance is %s: %w", amt, a.cash, ErrInsufficientFunds)
	}
	tx := newWithdrawal(uuid.NewString(), at, o.note, amt)
	a.append(tx)
	return tx, nil
}

// Buy records the purchase of a quantity of a security and returns the
// created transaction. The execution price is the explicit AtPrice when
// supplied, otherwise a lazy oracle lookup. It fails with
// ErrInsufficientFunds when the current cash balance does not cover the
// cost.
func (a *Account) Buy(symbol string, quantity Quantity, opts ...TxOption) (Transaction, error) {
	o := applyTxOptions(opts)
	a.mu.Lock()
	defer a.mu.Unlock()

	at, err := a.effectiveTime(o.at)
	if err != nil {
		return nil, err
	}
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	qty, err := positiveQuantity(quantity)
	if err != nil {
		return nil, err
	}
	price, err := a.executionPrice(sym, o)
	if err != nil {
		return nil, err
	}
	cost := price.Mul(qty).Quantize()
	if a.cash.LessThan(cost) {
		return nil, fmt.Errorf("cannot buy %s of %s for %s, cash balance is %s: %w",
			qty, sym, cost, a.cash, ErrInsufficientFunds)
	}
	tx := newBuy(uuid.NewString(), at, o.note, sym, qty, price)
	a.append(tx)
	return tx, nil
}

// Sell records the sale of a quantity of a security and returns the
// created transaction. It fails with ErrInsufficientHoldings when the
// current position does not cover the quantity. A position that reaches
// zero is removed from the holdings cache.
func (a *Account) Sell(symbol string, quantity Quantity, opts ...TxOption) (Transaction, error) {
	o := applyTxOptions(opts)
	a.mu.Lock()
	defer a.mu.Unlock()

	at, err := a.effectiveTime(o.at)
	if err != nil {
		return nil, err
	}
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	qty, err := positiveQuantity(quantity)
	if err != nil {
		return nil, err
	}
	held := a.holdings[sym]
	if held.LessThan(qty) {
		return nil, fmt.Errorf("cannot sell %s of %s, position is only %s: %w",
			qty, sym, held, ErrInsufficientHoldings)
	}
	price, err := a.executionPrice(sym, o)
	if err != nil {
		return nil, err
	}
	tx := newSell(uuid.NewString(), at, o.note, sym, qty, price)
	a.append(tx)
	return tx, nil
}

// effectiveTime resolves the timestamp a mutation executes at and checks
// the append-order invariant. Must be called with the lock held.
func (a *Account) effectiveTime(at time.Time) (time.Time, error) {
	if at.IsZero() {
		at = a.clock()
	}
	if at.Location() != time.UTC {
		return time.Time{}, fmt.Errorf("timestamp %v is not normalized to UTC: %w", at, ErrAmbiguousTimestamp)
	}
	if n := len(a.log); n > 0 {
		if last := a.log[n-1].When(); at.Before(last) {
			return time.Time{}, fmt.Errorf("timestamp %v is before last recorded %v: %w", at, last, ErrOutOfOrderTimestamp)
		}
	}
	return at, nil
}

// cashAmount quantizes a cash amount, checks it is strictly positive and
// stamps it with the account currency.
func (a *Account) cashAmount(amount Money) (Money, error) {
	if c := amount.Currency(); c != "" && c != a.currency {
		return Money{}, fmt.Errorf("amount currency %s does not match account currency %s: %w", c, a.currency, ErrInvalidAmount)
	}
	amt := M(amount.value, a.currency).Quantize()
	if !amt.IsPositive() {
		return Money{}, fmt.Errorf("amount must quantize to a positive value, got %s: %w", amt, ErrInvalidAmount)
	}
	return amt, nil
}

func positiveQuantity(quantity Quantity) (Quantity, error) {
	qty := quantity.Quantize()
	if !qty.IsPositive() {
		return Quantity{}, fmt.Errorf("quantity must quantize to a positive value, got %s: %w", qty, ErrInvalidQuantity)
	}
	return qty, nil
}

// executionPrice resolves the unit price of a trade: the explicit option
// price when supplied, otherwise a lazy lookup on the installed oracle.
func (a *Account) executionPrice(symbol string, o txOptions) (Money, error) {
	var price Money
	if o.hasPrice {
		price = o.price
	} else {
		if a.oracle == nil {
			return Money{}, fmt.Errorf("no price oracle installed for %s: %w", symbol, ErrPriceUnavailable)
		}
		p, err := a.oracle.Price(symbol)
		if err != nil {
			if errors.Is(err, ErrPriceUnavailable) {
				return Money{}, err
			}
			return Money{}, fmt.Errorf("oracle failed for %s: %v: %w", symbol, err, ErrPriceUnavailable)
		}
		price = p
	}
	if c := price.Currency(); c != "" && c != a.currency {
		return Money{}, fmt.Errorf("price currency %s does not match account currency %s: %w", c, a.currency, ErrPriceUnavailable)
	}
	price = M(price.value, a.currency).Quantize()
	if !price.IsPositive() {
		return Money{}, fmt.Errorf("price for %s must be positive, got %s: %w", symbol, price, ErrPriceUnavailable)
	}
	return price, nil
}

// append commits a validated transaction: it extends the log and updates
// both caches in place. Must be called with the lock held, after every
// validation passed; from here on the operation cannot fail.
func (a *Account) append(tx Transaction) {
	a.log = append(a.log, tx)
	a.cash = a.cash.Add(tx.CashDelta()).Quantize()
	switch v := tx.(type) {
	case Buy:
		a.holdings[v.Security] = a.holdings[v.Security].Add(v.Quantity).Quantize()
	case Sell:
		remaining := a.holdings[v.Security].Sub(v.Quantity).Quantize()
		if remaining.IsZero() {
			delete(a.holdings, v.Security)
		} else {
			a.holdings[v.Security] = remaining
		}
	}
}
