package capgains

import "github.com/etnz/capgains/date"

// Dividend is a cash dividend received.
type Dividend struct {
	Company string    `json:"company"`
	Date    date.Date `json:"date"`
	Amount  Money     `json:"amount"`
	Quarter string    `json:"quarter"`
	FY      string    `json:"fy"`
	Source  string    `json:"source"`
}

// Dividends extracts the cash dividends of a ledger.
//
// Ledgers record a dividend as a debit of the position account, so the
// amount is negated to read as income.
func Dividends(txs []Transaction) []Dividend {
	var dividends []Dividend
	for _, tx := range txs {
		if !IsDividend(tx.Label) {
			continue
		}
		dividends = append(dividends, Dividend{
			Company: tx.Company,
			Date:    tx.Date,
			Amount:  tx.Amount.Neg(),
			Quarter: tx.Quarter,
			FY:      tx.FY,
			Source:  tx.Source,
		})
	}
	return dividends
}
