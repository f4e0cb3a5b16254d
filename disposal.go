package capgains

import (
	"github.com/rs/zerolog"
)

// unmatchedTolerance absorbs the rounding left over by split rescaling when
// checking that a disposal was fully matched.
var unmatchedTolerance = Q(0.1)

// DisposalState is the terminal state of a disposal.
type DisposalState int

const (
	// Pending disposals still have shares to match.
	Pending DisposalState = iota
	// Satisfied disposals were fully matched.
	Satisfied
	// Exhausted disposals ran out of eligible lots.
	Exhausted
)

func (s DisposalState) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case Exhausted:
		return "exhausted"
	default:
		return "pending"
	}
}

// Match is one (disposal, lot) pairing.
type Match struct {
	Lot      Lot      // the lot as it was before this match
	Quantity Quantity // shares consumed from the lot
	Balance  Quantity // running balance after this match
}

// Disposal is the outcome of draining one disposal across the lot book.
type Disposal struct {
	State     DisposalState
	Matches   []Match
	Unmatched Quantity // shares left without a lot
	Balance   Quantity // running balance after the disposal
}

// Short reports whether the unmatched remainder exceeds the rounding tolerance.
func (d Disposal) Short() bool { return d.Unmatched.GreaterThan(unmatchedTolerance) }

// DisposalProcessor drains disposals across the lots picked by its Matcher.
type DisposalProcessor struct {
	matcher Matcher
	log     zerolog.Logger
}

// NewDisposalProcessor creates a DisposalProcessor.
func NewDisposalProcessor(matcher Matcher, log zerolog.Logger) *DisposalProcessor {
	return &DisposalProcessor{matcher: matcher, log: log}
}

// Process matches the shares sold by sell against book, mutating the lots it
// consumes. balance is the running balance before the disposal.
//
// Running out of lots is reported in the returned Disposal, not as an error;
// the only error is ErrInvariantViolation.
func (p *DisposalProcessor) Process(book *LotBook, sell Transaction, balance Quantity) (Disposal, error) {
	d := Disposal{State: Pending, Unmatched: sell.Quantity.Abs(), Balance: balance}

	for d.Unmatched.GreaterThan(dust) {
		lot, ok := p.matcher.Select(book, sell.Source, sell.Price)
		if !ok {
			d.State = Exhausted
			p.log.Warn().
				Str("date", sell.Date.String()).
				Str("source", sell.Source).
				Str("unmatched", d.Unmatched.String()).
				Str("price", sell.Price.Plain()).
				Int("lots", book.Len()).
				Msg("insufficient lots to match disposal")
			break
		}

		use := lot.Remaining.Min(d.Unmatched)
		before := *lot
		if err := book.Reduce(lot, use); err != nil {
			return d, err
		}
		d.Unmatched = d.Unmatched.Sub(use)
		d.Balance = d.Balance.Sub(use)
		d.Matches = append(d.Matches, Match{Lot: before, Quantity: use, Balance: d.Balance})
	}
	if !d.Unmatched.GreaterThan(dust) {
		d.State = Satisfied
	}

	if d.Short() {
		p.log.Error().
			Str("date", sell.Date.String()).
			Str("unmatched", d.Unmatched.String()).
			Str("requested", sell.Quantity.Abs().String()).
			Msg("not enough lots to match the disposal quantity")
	}
	return d, nil
}
