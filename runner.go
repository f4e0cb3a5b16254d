package capgains

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// CrossCheck maps a company to the last grandfathering floor applied to it.
type CrossCheck map[string]FloorApplication

// Report is the outcome of a run over a whole ledger.
type Report struct {
	Gains       []GainRecord // in company first-appearance order, then ledger order
	CrossCheck  CrossCheck
	Diagnostics []Diagnostic
	Companies   []CompanyResult
}

// Runner processes every company of a ledger, each one independently.
type Runner struct {
	opts      Options
	log       zerolog.Logger
	newEngine func(company string) *CompanyEngine
}

// NewRunner creates a Runner.
func NewRunner(opts Options, log zerolog.Logger) *Runner {
	r := &Runner{opts: opts, log: log}
	r.newEngine = func(company string) *CompanyEngine { return NewCompanyEngine(company, r.opts, r.log) }
	return r
}

// Partition splits txs by company. Companies are listed in order of first
// appearance and each partition keeps the order of txs.
func Partition(txs []Transaction) ([]string, map[string][]Transaction) {
	var companies []string
	parts := make(map[string][]Transaction)
	for _, tx := range txs {
		if _, ok := parts[tx.Company]; !ok {
			companies = append(companies, tx.Company)
		}
		parts[tx.Company] = append(parts[tx.Company], tx)
	}
	return companies, parts
}

// Run processes txs and aggregates the per-company results.
//
// Companies run concurrently on at most Options.Workers goroutines. Results
// are merged once every company is done, so the report does not depend on
// scheduling. A cancelled run returns the context error and no report.
func (r *Runner) Run(ctx context.Context, txs []Transaction) (*Report, error) {
	companies, parts := Partition(txs)

	workers := r.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]CompanyResult, len(companies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, company := range companies {
		g.Go(func() error {
			res, err := r.newEngine(company).Run(gctx, parts[company])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{CrossCheck: make(CrossCheck), Companies: results}
	for _, res := range results {
		report.Gains = append(report.Gains, res.Gains...)
		report.Diagnostics = append(report.Diagnostics, res.Diagnostics...)
		if res.Floor != nil {
			report.CrossCheck[res.Company] = *res.Floor
		}
	}
	r.log.Info().
		Int("transactions", len(txs)).
		Int("companies", len(companies)).
		Int("gains", len(report.Gains)).
		Int("diagnostics", len(report.Diagnostics)).
		Msg("capital gains computed")
	return report, nil
}
