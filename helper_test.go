package brokerage

import "time"

// USD is a helper for tests to create US dollar money from a const.
func USD(v float64) Money { return M(v, "USD") }

// NO is a helper for tests to create money with no currency set.
func NO(v float64) Money { return M(v, "") }

// mustTime parses an RFC 3339 instant or panics. Test fixtures only.
func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// clockAt returns a Clock frozen at the given instant.
func clockAt(s string) Clock {
	frozen := mustTime(s)
	return func() time.Time { return frozen }
}

// sameHoldings compares two holdings maps by value. Quantities with
// different internal representations can still be equal, so this cannot
// be a reflect.DeepEqual.
func sameHoldings(a, b map[string]Quantity) bool {
	if len(a) != len(b) {
		return false
	}
	for symbol, qty := range a {
		other, ok := b[symbol]
		if !ok || !qty.Equal(other) {
			return false
		}
	}
	return true
}
