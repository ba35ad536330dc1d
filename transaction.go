package brokerage

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Kind is a typed string identifying the nature of a ledger transaction.
type Kind string

// Transaction kinds recorded in the ledger.
const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindBuy        Kind = "buy"
	KindSell       Kind = "sell"
)

// Transaction defines the common interface for all immutable records in
// the ledger. Each kind carries only the fields meaningful to it:
// Deposit and Withdrawal a cash amount, Buy and Sell a security quantity
// and the unit price actually used for execution.
type Transaction interface {
	ID() string      // ID returns the opaque unique identifier of the record.
	What() Kind      // What returns the kind of the transaction.
	When() time.Time // When returns the UTC instant of the transaction.
	Note() string    // Note returns the optional free-text annotation.

	// CashDelta returns the signed net effect of the transaction on the
	// cash balance, quantized to the ledger's monetary precision.
	CashDelta() Money

	Equal(Transaction) bool
}

// baseTx carries the fields shared by every transaction kind.
type baseTx struct {
	id   string
	kind Kind
	at   time.Time
	note string
}

func (t baseTx) ID() string      { return t.id }
func (t baseTx) What() Kind      { return t.kind }
func (t baseTx) When() time.Time { return t.at }
func (t baseTx) Note() string    { return t.note }

// secTx is a component for security-based transactions (buy, sell).
type secTx struct {
	baseTx
	Security  string   // Security is the normalized ticker symbol.
	Quantity  Quantity // Quantity is the number of units traded.
	UnitPrice Money    // UnitPrice is the price actually used for execution.
}

// Deposit represents an external cash inflow.
type Deposit struct {
	baseTx
	Amount Money // Amount is the quantity of cash deposited.
}

func newDeposit(id string, at time.Time, note string, amount Money) Deposit {
	return Deposit{baseTx: baseTx{id: id, kind: KindDeposit, at: at, note: note}, Amount: amount}
}

func (t Deposit) CashDelta() Money { return t.Amount }

func (t Deposit) Equal(other Transaction) bool {
	o, ok := other.(Deposit)
	return ok && t.baseTx == o.baseTx && t.Amount.Equal(o.Amount)
}

// Withdrawal represents an external cash outflow.
type Withdrawal struct {
	baseTx
	Amount Money // Amount is the quantity of cash withdrawn.
}

func newWithdrawal(id string, at time.Time, note string, amount Money) Withdrawal {
	return Withdrawal{baseTx: baseTx{id: id, kind: KindWithdrawal, at: at, note: note}, Amount: amount}
}

func (t Withdrawal) CashDelta() Money { return t.Amount.Neg() }

func (t Withdrawal) Equal(other Transaction) bool {
	o, ok := other.(Withdrawal)
	return ok && t.baseTx == o.baseTx && t.Amount.Equal(o.Amount)
}

// Buy represents the purchase of a quantity of a security at a unit price.
type Buy struct {
	secTx
}

func newBuy(id string, at time.Time, note, security string, quantity Quantity, price Money) Buy {
	return Buy{secTx{
		baseTx:    baseTx{id: id, kind: KindBuy, at: at, note: note},
		Security:  security,
		Quantity:  quantity,
		UnitPrice: price,
	}}
}

func (t Buy) CashDelta() Money { return t.UnitPrice.Mul(t.Quantity).Quantize().Neg() }

func (t Buy) Equal(other Transaction) bool {
	o, ok := other.(Buy)
	return ok && t.baseTx == o.baseTx && t.Security == o.Security &&
		t.Quantity.Equal(o.Quantity) && t.UnitPrice.Equal(o.UnitPrice)
}

// Sell represents the sale of a quantity of a security at a unit price.
type Sell struct {
	secTx
}

func newSell(id string, at time.Time, note, security string, quantity Quantity, price Money) Sell {
	return Sell{secTx{
		baseTx:    baseTx{id: id, kind: KindSell, at: at, note: note},
		Security:  security,
		Quantity:  quantity,
		UnitPrice: price,
	}}
}

func (t Sell) CashDelta() Money { return t.UnitPrice.Mul(t.Quantity).Quantize() }

func (t Sell) Equal(other Transaction) bool {
	o, ok := other.(Sell)
	return ok && t.baseTx == o.baseTx && t.Security == o.Security &&
		t.Quantity.Equal(o.Quantity) && t.UnitPrice.Equal(o.UnitPrice)
}

var symbolRe = regexp.MustCompile(`^[A-Z0-9.-]+$`)

// NormalizeSymbol trims and uppercases a ticker symbol and checks it
// against the accepted alphabet. Lookup everywhere in the ledger is
// performed on the normalized form.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", fmt.Errorf("symbol is empty: %w", ErrInvalidSymbol)
	}
	if !symbolRe.MatchString(s) {
		return "", fmt.Errorf("symbol %q contains invalid characters: %w", symbol, ErrInvalidSymbol)
	}
	return s, nil
}

// ByKind returns a predicate that keeps transactions of any of the given kinds.
func ByKind(kinds ...Kind) func(Transaction) bool {
	return func(tx Transaction) bool {
		for _, k := range kinds {
			if tx.What() == k {
				return true
			}
		}
		return false
	}
}

// BySymbol returns a predicate that keeps buy and sell transactions on the
// given security. The symbol is normalized before matching.
func BySymbol(symbol string) func(Transaction) bool {
	s, err := NormalizeSymbol(symbol)
	if err != nil {
		return func(Transaction) bool { return false }
	}
	return func(tx Transaction) bool {
		switch v := tx.(type) {
		case Buy:
			return v.Security == s
		case Sell:
			return v.Security == s
		default:
			return false
		}
	}
}

// Between returns a predicate that keeps transactions whose timestamp
// falls within [start, end], bounds inclusive. A zero start or end leaves
// that side unbounded.
func Between(start, end time.Time) func(Transaction) bool {
	return func(tx Transaction) bool {
		if !start.IsZero() && tx.When().Before(start) {
			return false
		}
		if !end.IsZero() && tx.When().After(end) {
			return false
		}
		return true
	}
}
