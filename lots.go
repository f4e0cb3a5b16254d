package capgains

import (
	"errors"
	"fmt"

	"github.com/etnz/capgains/date"
	"github.com/shopspring/decimal"
)

// ErrInvariantViolation reports an engine corruption, such as reducing a lot below zero.
// It is never caused by bad input and aborts the run.
var ErrInvariantViolation = errors.New("invariant violation")

// ErrSplitRatio reports a split whose ratio cannot be inferred from the running balance.
var ErrSplitRatio = errors.New("cannot infer split ratio")

// Lot is a still-open acquisition of shares.
type Lot struct {
	Source    string    // account the shares were acquired in
	Label     string    // acquisition kind label, e.g. "BONUS"
	Remaining Quantity  // shares not yet disposed
	Price     Money     // unit acquisition price, rescaled by splits
	Date      date.Date // acquisition date
	FMV       Money     // grandfathering fair market value captured at acquisition
}

// LotBook is the ordered collection of the lots of one company.
//
// Lots are kept in acquisition order and are never merged, reordered nor
// removed: a fully consumed lot simply stops being eligible.
type LotBook struct {
	lots []*Lot
}

// Append adds a lot at the end of the book.
func (b *LotBook) Append(l Lot) *Lot {
	p := &l
	b.lots = append(b.lots, p)
	return p
}

// Len returns the number of lots ever appended.
func (b *LotBook) Len() int { return len(b.lots) }

// Lots returns all the lots, including the consumed ones, in acquisition order.
func (b *LotBook) Lots() []*Lot { return b.lots }

// dust is the largest remainder treated as no shares at all. Rescaling by a
// ratio with no finite decimal form leaves remainders far below it.
var dust = Quantity{value: decimal.New(1, -9)}

// Eligible returns, in acquisition order, the lots with remaining shares.
// When source is not empty only lots acquired in that source are returned.
func (b *LotBook) Eligible(source string) []*Lot {
	var eligible []*Lot
	for _, l := range b.lots {
		if !l.Remaining.GreaterThan(dust) {
			continue
		}
		if source != "" && l.Source != source {
			continue
		}
		eligible = append(eligible, l)
	}
	return eligible
}

// Total returns the sum of the remaining shares of all lots.
func (b *LotBook) Total() Quantity {
	var total Quantity
	for _, l := range b.lots {
		total = total.Add(l.Remaining)
	}
	return total
}

// Reduce consumes qty shares from l.
func (b *LotBook) Reduce(l *Lot, qty Quantity) error {
	if qty.GreaterThan(l.Remaining) {
		return fmt.Errorf("%w: reducing lot of %s acquired on %s by %s", ErrInvariantViolation, l.Remaining, l.Date, qty)
	}
	l.Remaining = l.Remaining.Sub(qty)
	return nil
}

// SplitRatio infers the ratio of a split that added shares to a position of
// balance shares.
func SplitRatio(balance, added Quantity) (Quantity, error) {
	if !balance.IsPositive() || !added.IsPositive() {
		return Q(1), fmt.Errorf("%w: balance=%s added=%s", ErrSplitRatio, balance, added)
	}
	return balance.Add(added).Div(balance), nil
}

// Split rescales every lot for a split that added shares to a position of
// balance shares: quantities are multiplied and prices divided by the ratio.
// Each lot is multiplied by the new position before dividing by the old one,
// so ratios such as 7/6 are exact whenever the lot divides evenly.
// When the ratio cannot be inferred the book is left unchanged.
func (b *LotBook) Split(balance, added Quantity) (Quantity, error) {
	ratio, err := SplitRatio(balance, added)
	if err != nil {
		return ratio, err
	}
	after := balance.Add(added)
	for _, l := range b.lots {
		l.Remaining = l.Remaining.Mul(after).Div(balance)
		l.Price = l.Price.Mul(balance).Div(after)
	}
	return ratio, nil
}
