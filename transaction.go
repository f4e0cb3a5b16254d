package capgains

import (
	"strings"

	"github.com/etnz/capgains/date"
)

// Transaction is one normalized ledger row.
//
// Rows of a company reach the engine sorted by (Date, Priority); the engine
// relies on that order and never sorts again.
type Transaction struct {
	Company  string    `json:"company"`
	Source   string    `json:"source"` // account or demat the row belongs to
	Date     date.Date `json:"date"`
	Kind     Kind      `json:"kind"`
	Label    string    `json:"label"`    // upper-cased broker transaction type, e.g. "INVESTMENT IN STOCK"
	Quantity Quantity  `json:"quantity"` // signed: credits are positive, debits negative
	Price    Money     `json:"price"`
	Amount   Money     `json:"amount"` // cash amount, only meaningful for dividends
	ISIN     string    `json:"isin,omitempty"`
	FMV      Money     `json:"fmv"` // fair market value on the grandfathering date, 0 if unknown
	Quarter  string    `json:"quarter"`
	FY       string    `json:"fy"`
	Priority int       `json:"priority"`
}

// NewTransaction creates a Transaction from a free-text transaction type.
// Kind, Priority, Quarter and FY are derived from the label and the date.
func NewTransaction(on date.Date, company, source, label string, quantity Quantity, price Money) Transaction {
	return Transaction{
		Company:  company,
		Source:   source,
		Date:     on,
		Kind:     ClassifyLabel(label),
		Label:    labelName(label),
		Quantity: quantity,
		Price:    price,
		Quarter:  on.Quarter(),
		FY:       on.FinancialYear(),
		Priority: Priority(label),
	}
}

// WithFMV returns a copy of t with the security ISIN and its grandfathering FMV.
func (t Transaction) WithFMV(isin string, fmv Money) Transaction {
	t.ISIN = isin
	t.FMV = fmv
	return t
}

// WithAmount returns a copy of t with a cash amount.
func (t Transaction) WithAmount(amount Money) Transaction {
	t.Amount = amount
	return t
}

// labelName is the display form of a transaction type.
func labelName(label string) string {
	return strings.ToUpper(normalizeLabel(label))
}
