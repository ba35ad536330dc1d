package brokerage

import "errors"

// Every validation failure surfaced by the ledger wraps one of these
// sentinel errors, so callers can classify failures with errors.Is while
// still receiving a message describing the offending operation. A failed
// mutation leaves the log and both caches untouched.
var (
	// ErrInvalidAmount reports a cash amount that does not quantize to a
	// strictly positive value, or that carries a foreign currency label.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidQuantity reports a security quantity that does not
	// quantize to a strictly positive value.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidSymbol reports an empty or malformed ticker symbol.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrInsufficientFunds reports a withdrawal or buy exceeding the
	// current cash balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientHoldings reports a sell exceeding the current
	// position in the security.
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	// ErrPriceUnavailable reports that no positive execution price could
	// be resolved for a symbol.
	ErrPriceUnavailable = errors.New("price unavailable")

	// ErrOutOfOrderTimestamp reports an effective timestamp earlier than
	// the last appended transaction.
	ErrOutOfOrderTimestamp = errors.New("out-of-order timestamp")

	// ErrAmbiguousTimestamp reports a timestamp whose location is not
	// normalized to UTC.
	ErrAmbiguousTimestamp = errors.New("ambiguous timestamp")
)
