// Package brokerage implements a single-owner, in-memory trading ledger:
// an append-only log of cash and equity-trade events with derived caches
// for the current state and replay-based reconstruction of any past state.
//
// The core functionalities include:
//   - Ledger Management: Recording deposits, withdrawals, buys and sells
//     in an immutable, chronological record. The log is the single source
//     of truth; cash and holdings are derived caches kept consistent with
//     it on every append.
//   - As-Of Queries: Reconstructing cash, holdings and every derived
//     metric at any prior instant by replaying the log up to a cutoff.
//   - Reporting: Portfolio valuation, equity, net contributions and
//     profit/loss metrics, plus a bundled summary snapshot.
//   - Price Resolution: A one-method PriceOracle capability, injected at
//     construction and swappable at runtime. Executed trades always store
//     the price actually used, never a reference to the oracle.
//
// All monetary values are fixed-precision decimals (2 fractional digits),
// quantities carry 6 fractional digits, both rounded half-up, so the
// ledger is free of floating-point drift.
package brokerage
