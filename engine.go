package capgains

import (
	"context"
	"errors"
	"fmt"

	"github.com/etnz/capgains/date"
	"github.com/rs/zerolog"
)

// ErrInvalidTransaction reports a ledger row the engine skips.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Options configure the lot matching engine.
type Options struct {
	Mode           MatchingMode
	SameSourceOnly bool
	Classifier     Classifier
	Workers        int // maximum number of companies processed concurrently, 0 for GOMAXPROCS
}

// DefaultOptions returns FIFO matching across sources with the default classifier.
func DefaultOptions() Options {
	return Options{Mode: FIFO, Classifier: NewClassifier(nil)}
}

// Diagnostic is a problem found while processing a ledger row. The row was
// skipped or only partially matched, the run went on.
type Diagnostic struct {
	Company  string    `json:"company"`
	Date     date.Date `json:"date"`
	Label    string    `json:"label"`
	Quantity Quantity  `json:"quantity"`
	Message  string    `json:"message"`
}

// CompanyResult is everything the engine produced for one company.
type CompanyResult struct {
	Company     string
	Gains       []GainRecord
	Floor       *FloorApplication // last grandfathering floor application, if any
	Diagnostics []Diagnostic
	Balance     Quantity // shares still held after the last row
}

// CompanyEngine folds the ledger rows of one company through its lot book.
type CompanyEngine struct {
	company    string
	book       LotBook
	balance    Quantity
	processor  *DisposalProcessor
	classifier Classifier
	log        zerolog.Logger
	result     CompanyResult
}

// NewCompanyEngine creates an engine with an empty lot book for company.
func NewCompanyEngine(company string, opts Options, log zerolog.Logger) *CompanyEngine {
	log = log.With().Str("company", company).Logger()
	return &CompanyEngine{
		company:    company,
		processor:  NewDisposalProcessor(Matcher{Mode: opts.Mode, SameSourceOnly: opts.SameSourceOnly}, log),
		classifier: opts.Classifier,
		log:        log,
		result:     CompanyResult{Company: company},
	}
}

// Book returns the engine's lot book.
func (e *CompanyEngine) Book() *LotBook { return &e.book }

// Balance returns the running balance.
func (e *CompanyEngine) Balance() Quantity { return e.balance }

// Run applies txs in order and returns the company result.
//
// A row that fails is logged and skipped. Only ErrInvariantViolation, or the
// cancellation of ctx, stops the run.
func (e *CompanyEngine) Run(ctx context.Context, txs []Transaction) (CompanyResult, error) {
	for _, tx := range txs {
		if err := ctx.Err(); err != nil {
			return CompanyResult{}, err
		}
		err := e.Apply(tx)
		switch {
		case err == nil:
		case errors.Is(err, ErrInvariantViolation):
			e.log.Error().Err(err).Str("date", tx.Date.String()).Str("type", tx.Label).Msg("engine corrupted")
			return CompanyResult{}, fmt.Errorf("company %q: %w", e.company, err)
		case errors.Is(err, ErrInvalidTransaction), errors.Is(err, ErrSplitRatio):
			e.log.Warn().Err(err).Str("date", tx.Date.String()).Str("type", tx.Label).Msg("skipping transaction")
			e.diagnose(tx, tx.Quantity, err.Error())
		default:
			e.log.Error().Err(err).Str("date", tx.Date.String()).Str("type", tx.Label).Msg("failed to process transaction")
			e.diagnose(tx, tx.Quantity, err.Error())
		}
	}
	e.result.Balance = e.balance
	return e.result, nil
}

// Apply processes a single ledger row.
func (e *CompanyEngine) Apply(tx Transaction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing %s on %s: %v", tx.Label, tx.Date, r)
		}
	}()

	switch tx.Kind {
	case Acquire:
		err = e.acquire(tx)
	case Split:
		err = e.split(tx)
	case Dispose:
		err = e.dispose(tx)
	default:
		e.log.Debug().Str("date", tx.Date.String()).Str("type", tx.Label).Msg("ignoring transaction")
		return nil
	}
	if err != nil {
		return err
	}
	return e.checkBalance()
}

// checkBalance verifies that the running balance is the total of the lot book.
func (e *CompanyEngine) checkBalance() error {
	if total := e.book.Total(); !total.Equal(e.balance) {
		return fmt.Errorf("%w: balance %s differs from lot book total %s", ErrInvariantViolation, e.balance, total)
	}
	return nil
}

func (e *CompanyEngine) acquire(tx Transaction) error {
	if !tx.Quantity.IsPositive() {
		return fmt.Errorf("%w: acquisition quantity must be positive, got %s", ErrInvalidTransaction, tx.Quantity)
	}
	if tx.Price.IsNegative() {
		return fmt.Errorf("%w: acquisition price must not be negative, got %s", ErrInvalidTransaction, tx.Price.Plain())
	}
	e.book.Append(Lot{
		Source:    tx.Source,
		Label:     tx.Label,
		Remaining: tx.Quantity,
		Price:     tx.Price,
		Date:      tx.Date,
		FMV:       tx.FMV,
	})
	e.balance = e.balance.Add(tx.Quantity)
	return nil
}

func (e *CompanyEngine) split(tx Transaction) error {
	ratio, err := e.book.Split(e.balance, tx.Quantity)
	if err != nil {
		return fmt.Errorf("split on %s: %w", tx.Date, err)
	}
	e.log.Debug().Str("date", tx.Date.String()).Str("ratio", ratio.String()).Msg("split applied")
	// the rescaled lots are the new position, exact or not.
	e.balance = e.book.Total()
	return nil
}

func (e *CompanyEngine) dispose(tx Transaction) error {
	d, err := e.processor.Process(&e.book, tx, e.balance)
	if err != nil {
		return err
	}
	for _, m := range d.Matches {
		gain, floor := e.classifier.Gain(tx, m)
		e.result.Gains = append(e.result.Gains, gain)
		if floor != nil {
			e.result.Floor = floor
		}
	}
	e.balance = d.Balance
	if d.Short() {
		e.diagnose(tx, d.Unmatched, "insufficient lots to match disposal")
	}
	return nil
}

func (e *CompanyEngine) diagnose(tx Transaction, q Quantity, msg string) {
	e.result.Diagnostics = append(e.result.Diagnostics, Diagnostic{
		Company:  e.company,
		Date:     tx.Date,
		Label:    tx.Label,
		Quantity: q,
		Message:  msg,
	})
}
