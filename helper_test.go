package capgains

import (
	"testing"

	"github.com/etnz/capgains/date"
	"github.com/stretchr/testify/assert"
)

// INR is a helper for test to create rupees from const
func INR(v float64) Money { return M(v, "INR") }

// tx is a helper for test to create a normalized ledger row.
func tx(on, company, source, label string, qty, price float64) Transaction {
	return NewTransaction(date.MustParse(on), company, source, label, Q(qty), INR(price))
}

func buy(on, source string, qty, price float64) Transaction {
	return tx(on, "ACME", source, LabelInvestmentInStock, qty, price)
}

func sell(on, source string, qty, price float64) Transaction {
	return tx(on, "ACME", source, LabelSellRedemption, -qty, price)
}

func split(on string, added float64) Transaction {
	return tx(on, "ACME", "A", LabelStockSplit, added, 0)
}

// assertQ asserts that got equals want exactly.
func assertQ(t *testing.T, want float64, got Quantity) {
	t.Helper()
	assert.True(t, Q(want).Equal(got), "want %v got %s", want, got)
}

// assertM asserts that got equals want exactly.
func assertM(t *testing.T, want float64, got Money) {
	t.Helper()
	assert.True(t, INR(want).Equal(got), "want %v got %s", want, got.Plain())
}
