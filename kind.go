package capgains

import (
	"math"
	"strings"
)

// Kind is the closed classification of a ledger row, assigned once at ingestion.
type Kind int

const (
	// Other rows (dividends, rights, ...) do not affect lots.
	Other Kind = iota
	// Acquire rows open a new lot.
	Acquire
	// Split rows add shares to every open lot proportionally.
	Split
	// Dispose rows consume open lots.
	Dispose
)

func (k Kind) String() string {
	switch k {
	case Acquire:
		return "ACQUIRE"
	case Split:
		return "SPLIT"
	case Dispose:
		return "DISPOSE"
	default:
		return "OTHER"
	}
}

// MarshalText writes the kind name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Transaction type labels as they appear in broker statements.
const (
	LabelInvestmentInStock    = "investment in stock"
	LabelInvestmentInFund     = "investment in fund"
	LabelSIPInvestment        = "sip investment"
	LabelDividendReinvestment = "dividend reinvestment"
	LabelBonus                = "bonus"
	LabelRights               = "rights"
	LabelStockSplit           = "stock split"
	LabelMergerInvestment     = "merger investment"
	LabelDemergerInvestment   = "demerger investment"
	LabelSwitchInvestment     = "switch investment"
	LabelDividend             = "dividend"
	LabelSellRedemption       = "sell/redemption"
	LabelMergerRedemption     = "merger redemption"
	LabelDemergerRedemption   = "demerger redemption"
	LabelSwitchRedemption     = "switch redemption"
	LabelSWPRedemption        = "swp redemption"
)

var kinds = map[string]Kind{
	LabelInvestmentInStock:    Acquire,
	LabelInvestmentInFund:     Acquire,
	LabelSIPInvestment:        Acquire,
	LabelBonus:                Acquire,
	LabelDemergerInvestment:   Acquire,
	LabelMergerInvestment:     Acquire,
	LabelSwitchInvestment:     Acquire,
	LabelDividendReinvestment: Acquire,
	LabelStockSplit:           Split,
	LabelSellRedemption:       Dispose,
	LabelMergerRedemption:     Dispose,
	LabelDemergerRedemption:   Dispose,
	LabelSwitchRedemption:     Dispose,
}

// priorities orders rows of the same day: acquisitions and splits first,
// then dividends, then disposals.
var priorities = map[string]int{
	LabelInvestmentInStock:    1,
	LabelInvestmentInFund:     2,
	LabelSIPInvestment:        3,
	LabelDividendReinvestment: 4,
	LabelBonus:                5,
	LabelRights:               6,
	LabelStockSplit:           7,
	LabelMergerInvestment:     8,
	LabelDemergerInvestment:   9,
	LabelDividend:             10,
	LabelSellRedemption:       90,
	LabelMergerRedemption:     91,
	LabelDemergerRedemption:   92,
	LabelSWPRedemption:        93,
}

// UnrankedPriority is the priority of labels missing from the priority table.
// They sort after every ranked row of the same day.
const UnrankedPriority = math.MaxInt32

// normalizeLabel lower-cases and trims a free-text transaction type.
func normalizeLabel(label string) string { return strings.ToLower(strings.TrimSpace(label)) }

// ClassifyLabel maps a free-text transaction type to its Kind.
func ClassifyLabel(label string) Kind {
	return kinds[normalizeLabel(label)]
}

// Priority returns the same-day ordering rank of a free-text transaction type.
func Priority(label string) int {
	if p, ok := priorities[normalizeLabel(label)]; ok {
		return p
	}
	return UnrankedPriority
}

// IsDividend reports whether label is a cash dividend.
func IsDividend(label string) bool { return normalizeLabel(label) == LabelDividend }
