package renderer

import (
	"cmp"
	"maps"
	"slices"

	"github.com/etnz/capgains"
)

// Summary is a struct to represent the gains summary for rendering.
type Summary struct {
	Mode        string                `json:"mode"`
	Years       []YearSummary         `json:"years"`
	Total       ClassTotals           `json:"total"`
	CrossCheck  []CrossCheckRow       `json:"crossCheck"`
	Diagnostics []capgains.Diagnostic `json:"diagnostics"`
}

// YearSummary holds the gains of one financial year, long term first.
type YearSummary struct {
	FY      string        `json:"fy"`
	Classes []ClassTotals `json:"classes"`
}

// ClassTotals aggregates gain records.
type ClassTotals struct {
	Classification capgains.Classification `json:"classification"`
	Count          int                     `json:"count"`
	SellValue      capgains.Money          `json:"sellValue"`
	BuyValue       capgains.Money          `json:"buyValue"`
	Profit         capgains.Money          `json:"profit"`
	Rate           capgains.Rate           `json:"rate"` // looked up for the year, not applied
}

// CrossCheckRow is the last grandfathering floor applied to a company.
type CrossCheckRow struct {
	Company string `json:"company"`
	capgains.FloorApplication
}

func newTotals(class capgains.Classification, currency string) ClassTotals {
	zero := capgains.M(0, currency)
	return ClassTotals{Classification: class, SellValue: zero, BuyValue: zero, Profit: zero}
}

func (t *ClassTotals) add(g capgains.GainRecord) {
	t.Count++
	t.SellValue = t.SellValue.Add(g.SellValue)
	t.BuyValue = t.BuyValue.Add(g.BuyValue)
	t.Profit = t.Profit.Add(g.Profit)
	t.Rate = g.TaxRate
}

// NewSummary aggregates a report per financial year and classification.
func NewSummary(report *capgains.Report, mode capgains.MatchingMode, currency string) *Summary {
	s := &Summary{
		Mode:        mode.String(),
		Total:       newTotals(capgains.LTCG, currency),
		Diagnostics: report.Diagnostics,
	}

	type key struct {
		fy    string
		class capgains.Classification
	}
	totals := make(map[key]*ClassTotals)
	for _, g := range report.Gains {
		k := key{g.FY, g.Classification}
		t, ok := totals[k]
		if !ok {
			nt := newTotals(g.Classification, currency)
			t = &nt
			totals[k] = t
		}
		t.add(g)
		s.Total.Count++
		s.Total.SellValue = s.Total.SellValue.Add(g.SellValue)
		s.Total.BuyValue = s.Total.BuyValue.Add(g.BuyValue)
		s.Total.Profit = s.Total.Profit.Add(g.Profit)
	}

	keys := slices.SortedFunc(maps.Keys(totals), func(a, b key) int {
		if c := cmp.Compare(a.fy, b.fy); c != 0 {
			return c
		}
		return cmp.Compare(a.class, b.class)
	})
	for _, k := range keys {
		t := totals[k]
		if n := len(s.Years); n == 0 || s.Years[n-1].FY != k.fy {
			s.Years = append(s.Years, YearSummary{FY: k.fy})
		}
		last := &s.Years[len(s.Years)-1]
		last.Classes = append(last.Classes, *t)
	}

	for _, company := range slices.Sorted(maps.Keys(report.CrossCheck)) {
		s.CrossCheck = append(s.CrossCheck, CrossCheckRow{Company: company, FloorApplication: report.CrossCheck[company]})
	}
	return s
}
