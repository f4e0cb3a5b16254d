// Package ingest reads broker statements into capgains transactions.
//
// A statement is a CSV file with one row per ledger entry. The columns are
// found by header name, in any order:
//
//	Transaction Date        YYYY-MM-DD
//	Company Name
//	Transaction Type        free text, e.g. "Investment in Stock"
//	Shares(Credits/Debits)  signed, "--" for none
//	Price                   "--" for none
//	ISIN                    optional
//	Source                  optional, the account the row belongs to
//	Amount(Credits/Debits)  optional, cash amount of dividends
//
// Fair market values on the grandfathering date come from a second CSV with
// columns "ISIN" and "Fair market value".
package ingest

import (
	"cmp"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/etnz/capgains"
	"github.com/etnz/capgains/date"
	"github.com/rs/zerolog"
)

// Column names of the statement.
const (
	ColDate     = "Transaction Date"
	ColCompany  = "Company Name"
	ColType     = "Transaction Type"
	ColShares   = "Shares(Credits/Debits)"
	ColPrice    = "Price"
	ColISIN     = "ISIN"
	ColSource   = "Source"
	ColAmount   = "Amount(Credits/Debits)"
	ColFMVISIN  = "ISIN"
	ColFMVValue = "Fair market value"
)

// none is how statements spell an empty numeric cell.
const none = "--"

// FMV maps an ISIN to its fair market value on the grandfathering date.
type FMV map[string]capgains.Money

// Loader reads statements in a single currency.
type Loader struct {
	currency string
	log      zerolog.Logger
}

// NewLoader creates a Loader that labels every amount with currency.
func NewLoader(currency string, log zerolog.Logger) *Loader {
	return &Loader{currency: currency, log: log}
}

// header indexes the columns of a CSV header by trimmed name.
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	names, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read CSV header: %w", err)
	}
	h := make(header, len(names))
	for i, name := range names {
		// the first column may carry a UTF-8 byte order mark.
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, ok := h[name]; !ok {
			h[name] = i
		}
	}
	return h, nil
}

// require returns an error listing every missing column.
func (h header) require(names ...string) error {
	var errs []error
	for _, name := range names {
		if _, ok := h[name]; !ok {
			errs = append(errs, fmt.Errorf("missing column %q", name))
		}
	}
	return errors.Join(errs...)
}

// get returns the trimmed cell of column name, or "" when absent.
func (h header) get(record []string, name string) string {
	i, ok := h[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

// LoadFMV reads the fair market value file at path.
//
// A missing file is not an error: grandfathering then never raises a price.
func (l *Loader) LoadFMV(path string) (FMV, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		l.log.Warn().Str("file", path).Msg("fair market value file not found, continuing without it")
		return FMV{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open fair market value file: %w", err)
	}
	defer f.Close()
	return l.ReadFMV(f)
}

// ReadFMV reads a fair market value CSV. Rows without a valid value are
// skipped with a warning.
func (l *Loader) ReadFMV(r io.Reader) (FMV, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	if err := h.require(ColFMVISIN, ColFMVValue); err != nil {
		return nil, fmt.Errorf("invalid fair market value file: %w", err)
	}

	fmv := make(FMV)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.log.Warn().Err(err).Int("line", line).Msg("skipping unreadable fair market value row")
			continue
		}
		isin, raw := h.get(record, ColFMVISIN), h.get(record, ColFMVValue)
		if raw == none {
			raw = ""
		}
		value, err := l.money(raw)
		if isin == "" || raw == "" || err != nil {
			l.log.Warn().Err(err).Int("line", line).Str("isin", isin).Msg("skipping fair market value row")
			continue
		}
		fmv[isin] = value
	}
	return fmv, nil
}

// LoadTransactions reads the statement at path. See ReadTransactions.
func (l *Loader) LoadTransactions(path string, fmv FMV) ([]capgains.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open transactions file: %w", err)
	}
	defer f.Close()
	return l.ReadTransactions(f, fmv)
}

// ReadTransactions reads a statement, joins the fair market value of each
// row's ISIN and returns the transactions in processing order (see Order).
//
// Rows that cannot be parsed are logged and skipped. Only an unreadable
// header or missing columns are errors.
func (l *Loader) ReadTransactions(r io.Reader, fmv FMV) ([]capgains.Transaction, error) {
	cr := newReader(r)
	h, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	if err := h.require(ColDate, ColCompany, ColType, ColShares, ColPrice); err != nil {
		return nil, fmt.Errorf("invalid transactions file: %w", err)
	}

	var txs []capgains.Transaction
	skipped := 0
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err == nil {
			var tx capgains.Transaction
			if tx, err = l.parseRow(h, record, fmv); err == nil {
				txs = append(txs, tx)
				continue
			}
		}
		skipped++
		l.log.Warn().Err(err).Int("line", line).Msg("skipping transaction row")
	}

	l.log.Debug().Int("transactions", len(txs)).Int("skipped", skipped).Int("isin", len(fmv)).Msg("statement loaded")
	return Order(txs), nil
}

func (l *Loader) parseRow(h header, record []string, fmv FMV) (capgains.Transaction, error) {
	on, err := date.Parse(h.get(record, ColDate))
	if err != nil {
		return capgains.Transaction{}, fmt.Errorf("invalid %s: %w", ColDate, err)
	}
	company := h.get(record, ColCompany)
	if company == "" {
		return capgains.Transaction{}, fmt.Errorf("empty %s", ColCompany)
	}
	label := h.get(record, ColType)

	var errs []error
	qty, err := quantity(h.get(record, ColShares))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid %s: %w", ColShares, err))
	}
	price, err := l.money(h.get(record, ColPrice))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid %s: %w", ColPrice, err))
	}
	amount, err := l.money(h.get(record, ColAmount))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid %s: %w", ColAmount, err))
	}
	if err := errors.Join(errs...); err != nil {
		return capgains.Transaction{}, err
	}

	isin := h.get(record, ColISIN)
	value, ok := fmv[isin]
	if !ok {
		value = capgains.M(0, l.currency)
	}
	tx := capgains.NewTransaction(on, company, h.get(record, ColSource), label, qty, price)
	return tx.WithFMV(isin, value).WithAmount(amount), nil
}

func quantity(s string) (capgains.Quantity, error) {
	if s == "" || s == none {
		return capgains.Q(0), nil
	}
	return capgains.ParseQuantity(strings.ReplaceAll(s, ",", ""))
}

func (l *Loader) money(s string) (capgains.Money, error) {
	if s == "" || s == none {
		return capgains.M(0, l.currency), nil
	}
	m, err := capgains.ParseMoney(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return capgains.Money{}, err
	}
	return m.In(l.currency), nil
}

// Order sorts transactions for processing.
//
// The whole statement is first sorted by (date, company, type), then each
// company's rows by (date, priority) so that acquisitions of a day come
// before its disposals. Both sorts are stable. Companies are returned grouped,
// in order of first appearance after the first sort.
func Order(txs []capgains.Transaction) []capgains.Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b capgains.Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := strings.Compare(a.Company, b.Company); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})

	companies, parts := capgains.Partition(sorted)
	ordered := make([]capgains.Transaction, 0, len(sorted))
	for _, company := range companies {
		part := parts[company]
		slices.SortStableFunc(part, func(a, b capgains.Transaction) int {
			if c := a.Date.Compare(b.Date); c != 0 {
				return c
			}
			return cmp.Compare(a.Priority, b.Priority)
		})
		ordered = append(ordered, part...)
	}
	return ordered
}
