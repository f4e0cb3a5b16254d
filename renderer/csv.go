package renderer

import (
	"encoding/csv"
	"io"
	"maps"
	"slices"
	"strconv"

	"github.com/etnz/capgains"
)

// GainsHeader is the header of the capital gains CSV. The leading space of
// the last column is part of the format downstream spreadsheets expect.
const GainsHeader = "Sell Source,Company Name,Sell Date,Transaction Type,Sell Quantity,Sell Price,Buy Source,Buy Transaction Type,Buy Date,Buy Quantity,Buy Price,Sell Value,Buy Value,Profit,Holding Days,LTCG/STCG,Quarter,Financial Year,Remaining Balance,FMV Used?,FMV Value,Original Buy Price, Adj Buy Price"

var (
	crossCheckHeader = []string{"Company", "ISIN", "orig_buy_price", "FMV", "buying_price"}
	dividendsHeader  = []string{"Company Name", "Date", "Amount", "Quarter", "Financial Year", "Source"}
)

// WriteGains writes gain records as CSV, one row per (disposal, lot) match.
func WriteGains(w io.Writer, gains []capgains.GainRecord) error {
	// the header is written verbatim, csv would quote its last column.
	if _, err := io.WriteString(w, GainsHeader+"\n"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	for _, g := range gains {
		cw.Write([]string{
			g.SellSource,
			g.Company,
			g.SellDate.Report(),
			g.SellLabel,
			g.Quantity.String(),
			g.SellPrice.Plain(),
			g.BuySource,
			g.BuyLabel,
			g.BuyDate.Report(),
			g.BuyAvailable.String(),
			g.BuyPrice.Plain(),
			amount(g.SellValue),
			amount(g.BuyValue),
			amount(g.Profit),
			strconv.Itoa(g.HoldingDays),
			g.Classification.String(),
			g.Quarter,
			g.FY,
			g.RemainingBalance.String(),
			pyBool(g.FMVUsed),
			g.FMV.Plain(),
			g.OriginalPrice.Plain(),
			g.AdjustedPrice.Plain(),
		})
	}
	cw.Flush()
	return cw.Error()
}

// WriteCrossCheck writes the last grandfathering floor of each company, by company name.
func WriteCrossCheck(w io.Writer, cc capgains.CrossCheck) error {
	cw := csv.NewWriter(w)
	cw.Write(crossCheckHeader)
	for _, company := range slices.Sorted(maps.Keys(cc)) {
		f := cc[company]
		cw.Write([]string{company, f.ISIN, f.OriginalPrice.Plain(), f.FMV.Plain(), f.AdjustedPrice.Plain()})
	}
	cw.Flush()
	return cw.Error()
}

// WriteDividends writes cash dividends as CSV.
func WriteDividends(w io.Writer, dividends []capgains.Dividend) error {
	cw := csv.NewWriter(w)
	cw.Write(dividendsHeader)
	for _, d := range dividends {
		cw.Write([]string{d.Company, d.Date.String(), d.Amount.Plain(), d.Quarter, d.FY, d.Source})
	}
	cw.Flush()
	return cw.Error()
}

// amount formats a rounded monetary value with its two decimals.
func amount(m capgains.Money) string { return m.Decimal().StringFixed(2) }

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
