// Package renderer turns brokerage reports into human-readable markdown.
// It produces plain markdown strings; presentation (terminal, web, …) is
// left to the caller.
package renderer

import (
	"bytes"
	"fmt"
	"slices"
	"time"

	"github.com/mberk/brokerage"
	md "github.com/nao1215/markdown"
)

// Transaction renders a single transaction to a one-line description.
func Transaction(tx brokerage.Transaction) string {
	switch v := tx.(type) {
	case brokerage.Buy:
		return fmt.Sprintf("Bought %s of %s at %s", v.Quantity, v.Security, v.UnitPrice)
	case brokerage.Sell:
		return fmt.Sprintf("Sold %s of %s at %s", v.Quantity, v.Security, v.UnitPrice)
	case brokerage.Deposit:
		return fmt.Sprintf("Deposited %s", v.Amount)
	case brokerage.Withdrawal:
		return fmt.Sprintf("Withdrew %s", v.Amount)
	default:
		return string(tx.What())
	}
}

// SummaryMarkdown renders an account summary as a markdown document.
func SummaryMarkdown(s *brokerage.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Account Summary for %s on %s", s.Owner, s.At.Format(time.RFC3339)))
	doc.PlainText(fmt.Sprintf("Reference currency: %s", s.Currency))

	doc.H2("Balances")
	doc.Table(md.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Cash", s.Cash.String()},
			{"Portfolio Value", s.PortfolioValue.String()},
			{"Equity", s.Equity.String()},
			{"Net Contributions", s.NetContributions.String()},
			{"P/L (net of flows)", s.ProfitLoss.SignedString()},
			{"P/L vs first deposit", s.ProfitLossVsFirstDeposit.SignedString()},
		},
	})

	doc.H2("Holdings")
	rows := make([][]string, 0, len(s.Holdings))
	symbols := make([]string, 0, len(s.Holdings))
	for symbol := range s.Holdings {
		symbols = append(symbols, symbol)
	}
	slices.Sort(symbols)
	for _, symbol := range symbols {
		rows = append(rows, []string{symbol, s.Holdings[symbol].String()})
	}
	if len(rows) == 0 {
		doc.PlainText("No open positions.")
	} else {
		doc.Table(md.TableSet{
			Header: []string{"Symbol", "Quantity"},
			Rows:   rows,
		})
	}

	doc.PlainText(fmt.Sprintf("%d position(s), %d transaction(s).", s.Positions, s.Transactions))

	return doc.String()
}

// TransactionsMarkdown renders a transaction log as a markdown table, in
// the order given.
func TransactionsMarkdown(txs []brokerage.Transaction) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Transactions")
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			tx.When().Format(time.RFC3339),
			string(tx.What()),
			Transaction(tx),
			tx.CashDelta().SignedString(),
			tx.Note(),
		})
	}
	doc.Table(md.TableSet{
		Header: []string{"Date", "Kind", "Detail", "Cash Delta", "Note"},
		Rows:   rows,
	})

	return doc.String()
}
