package brokerage

import (
	"testing"
)

func TestTransaction_CashDelta(t *testing.T) {
	at := mustTime("2025-01-01T00:00:00Z")
	testCases := []struct {
		name string
		tx   Transaction
		want Money
	}{
		{
			name: "deposit is a positive delta",
			tx:   newDeposit("id-1", at, "", USD(100.00)),
			want: USD(100.00),
		},
		{
			name: "withdrawal is a negative delta",
			tx:   newWithdrawal("id-2", at, "", USD(40.50)),
			want: USD(-40.50),
		},
		{
			name: "buy debits quantity times price, quantized",
			tx:   newBuy("id-3", at, "", "AAPL", Q(3), USD(33.34)),
			want: USD(-100.02),
		},
		{
			name: "sell credits quantity times price, quantized half-up",
			tx:   newSell("id-4", at, "", "AAPL", Q(0.333333), USD(150.00)),
			want: USD(50.00), // 0.333333 * 150.00 = 49.99995
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tx.CashDelta(); !got.Equal(tc.want) {
				t.Errorf("CashDelta() = %s, want %s", got, tc.want)
			}
		})
	}
}
