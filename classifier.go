package capgains

import (
	"time"

	"github.com/etnz/capgains/date"
)

// GrandfatheringCutoff is the date after which long term gains on shares held
// across it may use the fair market value as a floor for the acquisition price.
var GrandfatheringCutoff = date.New(2018, time.October, 31)

// DefaultLTCGThresholdDays is the default holding period for long term gains.
const DefaultLTCGThresholdDays = 365

// Rates used when the tax rate table has no entry for a financial year.
var (
	FallbackLTCGRate = R(0.10)
	FallbackSTCGRate = R(0.15)
)

// Classification tells long term from short term capital gains.
type Classification int

const (
	LTCG Classification = iota
	STCG
)

func (c Classification) String() string {
	if c == LTCG {
		return "LTCG"
	}
	return "STCG"
}

// MarshalText writes the classification name.
func (c Classification) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// YearRates are the tax rates of one financial year. A nil rate falls back to the default.
type YearRates struct {
	LTCG *Rate `json:"ltcg_rate,omitempty"`
	STCG *Rate `json:"stcg_rate,omitempty"`
}

// TaxRates maps a financial year label (e.g. "FY2024-2025") to its rates.
type TaxRates map[string]YearRates

// GainRecord is the realized gain of one (disposal, lot) pairing.
type GainRecord struct {
	SellSource       string         `json:"sell_source"`
	Company          string         `json:"company"`
	SellDate         date.Date      `json:"sell_date"`
	SellLabel        string         `json:"transaction_type"`
	Quantity         Quantity       `json:"sell_quantity"`
	SellPrice        Money          `json:"sell_price"`
	BuySource        string         `json:"buy_source"`
	BuyLabel         string         `json:"buy_transaction_type"`
	BuyDate          date.Date      `json:"buy_date"`
	BuyAvailable     Quantity       `json:"buy_shares_available"` // lot shares before this match
	BuyPrice         Money          `json:"buy_price"`
	SellValue        Money          `json:"sell_value"`
	BuyValue         Money          `json:"buy_value"` // uses AdjustedPrice
	Profit           Money          `json:"profit"`
	HoldingDays      int            `json:"holding_days"`
	Classification   Classification `json:"ltcg_stcg"`
	Quarter          string         `json:"quarter"`
	FY               string         `json:"financial_year"`
	RemainingBalance Quantity       `json:"remaining_balance"`
	FMVUsed          bool           `json:"fmv_used"`
	FMV              Money          `json:"fmv_value"`
	OriginalPrice    Money          `json:"original_buy_price"`
	AdjustedPrice    Money          `json:"adj_buy_price"`
	TaxRate          Rate           `json:"tax_rate"`
}

// FloorApplication records a use of the grandfathering floor.
type FloorApplication struct {
	ISIN          string `json:"isin"`
	OriginalPrice Money  `json:"orig_buy_price"`
	FMV           Money  `json:"fmv"`
	AdjustedPrice Money  `json:"buying_price"`
}

// Classifier turns matches into gain records. It is a pure function of its
// configuration and inputs.
type Classifier struct {
	Rates         TaxRates
	LTCGFallback  Rate
	STCGFallback  Rate
	ThresholdDays int
}

// NewClassifier creates a Classifier with the default threshold and fallback rates.
func NewClassifier(rates TaxRates) Classifier {
	return Classifier{
		Rates:         rates,
		LTCGFallback:  FallbackLTCGRate,
		STCGFallback:  FallbackSTCGRate,
		ThresholdDays: DefaultLTCGThresholdDays,
	}
}

// Classify returns the classification of a holding of days.
func (c Classifier) Classify(days int) Classification {
	if days >= c.ThresholdDays {
		return LTCG
	}
	return STCG
}

// Rate returns the tax rate of a classification in financial year fy.
func (c Classifier) Rate(fy string, class Classification) Rate {
	rates := c.Rates[fy]
	switch {
	case class == LTCG && rates.LTCG != nil:
		return *rates.LTCG
	case class == LTCG:
		return c.LTCGFallback
	case rates.STCG != nil:
		return *rates.STCG
	default:
		return c.STCGFallback
	}
}

// Gain computes the gain record of the match m of disposal sell. When the
// grandfathering floor applies it is also returned as a FloorApplication.
func (c Classifier) Gain(sell Transaction, m Match) (GainRecord, *FloorApplication) {
	lot := m.Lot
	days := sell.Date.Sub(lot.Date)
	class := c.Classify(days)

	price := lot.Price
	var floor *FloorApplication
	if class == LTCG && lot.Date.Before(GrandfatheringCutoff) && sell.Date.After(GrandfatheringCutoff) {
		price = lot.Price.Max(lot.FMV)
		floor = &FloorApplication{
			ISIN:          sell.ISIN,
			OriginalPrice: lot.Price,
			FMV:           lot.FMV,
			AdjustedPrice: price,
		}
	}

	return GainRecord{
		SellSource:       sell.Source,
		Company:          sell.Company,
		SellDate:         sell.Date,
		SellLabel:        sell.Label,
		Quantity:         m.Quantity,
		SellPrice:        sell.Price,
		BuySource:        lot.Source,
		BuyLabel:         lot.Label,
		BuyDate:          lot.Date,
		BuyAvailable:     lot.Remaining,
		BuyPrice:         lot.Price,
		SellValue:        sell.Price.Mul(m.Quantity).Round(),
		BuyValue:         price.Mul(m.Quantity).Round(),
		Profit:           sell.Price.Sub(price).Mul(m.Quantity).Round(),
		HoldingDays:      days,
		Classification:   class,
		Quarter:          sell.Quarter,
		FY:               sell.FY,
		RemainingBalance: m.Balance,
		FMVUsed:          floor != nil,
		FMV:              lot.FMV,
		OriginalPrice:    lot.Price,
		AdjustedPrice:    price,
		TaxRate:          c.Rate(sell.FY, class),
	}, floor
}
