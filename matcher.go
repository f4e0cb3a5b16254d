package capgains

// Matcher selects the lot a disposal consumes next.
type Matcher struct {
	Mode           MatchingMode
	SameSourceOnly bool // only match lots acquired in the disposal's source
}

// Eligible returns the lots a disposal from source may consume.
func (m Matcher) Eligible(book *LotBook, source string) []*Lot {
	if m.SameSourceOnly {
		return book.Eligible(source)
	}
	return book.Eligible("")
}

// Select returns the lot a disposal from source at sellPrice consumes next.
// It returns false when no lot is eligible.
func (m Matcher) Select(book *LotBook, source string, sellPrice Money) (*Lot, bool) {
	eligible := m.Eligible(book, source)
	if len(eligible) == 0 {
		return nil, false
	}
	if m.Mode == FIFO {
		return eligible[0], true
	}
	return selectTaxOptimized(eligible, sellPrice), true
}

// selectTaxOptimized prefers the lot realizing the largest loss. Without any
// loss-making lot it picks the most expensive one, the oldest on ties.
func selectTaxOptimized(eligible []*Lot, sellPrice Money) *Lot {
	var loss *Lot
	for _, l := range eligible {
		if !l.Price.GreaterThan(sellPrice) {
			continue
		}
		// strictly greater: the first lot wins among equal losses.
		if loss == nil || l.Price.GreaterThan(loss.Price) {
			loss = l
		}
	}
	if loss != nil {
		return loss
	}

	best := eligible[0]
	for _, l := range eligible[1:] {
		switch {
		case l.Price.GreaterThan(best.Price):
			best = l
		case l.Price.Equal(best.Price) && l.Date.Before(best.Date):
			best = l
		}
	}
	return best
}
