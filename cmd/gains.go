package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/etnz/capgains"
	"github.com/etnz/capgains/ingest"
	"github.com/etnz/capgains/renderer"
	"github.com/google/subcommands"
)

// gainsCmd holds the flags for the 'gains' subcommand.
type gainsCmd struct {
	input        string
	output       string
	force        bool
	fmvFile      string
	taxRates     string
	taxRatesPath string
	sameSource   bool
	mode         string
	ltcgDays     int
	print        bool
	summary      bool
}

func (*gainsCmd) Name() string     { return "gains" }
func (*gainsCmd) Synopsis() string { return "match disposals to acquisitions and report capital gains" }
func (*gainsCmd) Usage() string {
	return `cgc gains -i <transactions.csv> -o <gains.csv> [-f] [-d <fmv.csv>] [-tax-rates <rates.json>] [-tax-rates-path <jsonpath>] [-s] [-mode fifo|tax-optimized] [-l <days>] [-p] [-summary]

  Matches every disposal of the statement to the acquisitions it consumes and
  writes one gain record per match. The grandfathering cross-check is written
  next to the output, as fmv_crossmatch_output.csv.
`
}

func (c *gainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "Transactions statement (CSV)")
	f.StringVar(&c.output, "o", "capital_gains.csv", "Output gains file (CSV)")
	f.BoolVar(&c.force, "f", false, "Overwrite the output file if it exists")
	f.StringVar(&c.fmvFile, "d", "", "Fair market values on the grandfathering date (CSV). Defaults to CGC_FMV_FILE")
	f.StringVar(&c.taxRates, "tax-rates", "", "Tax rates per financial year (JSON)")
	f.StringVar(&c.taxRatesPath, "tax-rates-path", "", "JSONPath to the rate table within the tax rates file")
	f.BoolVar(&c.sameSource, "s", false, "Match disposals only with acquisitions of the same source")
	f.StringVar(&c.mode, "mode", "", "Matching mode (fifo, tax-optimized). Defaults to CGC_MATCHING_MODE")
	f.IntVar(&c.ltcgDays, "l", 0, "Holding days for a long term gain. Defaults to CGC_LTCG_THRESHOLD_DAYS")
	f.BoolVar(&c.print, "p", false, "Also print the gain records")
	f.BoolVar(&c.summary, "summary", false, "Print a summary per financial year")
}

func (c *gainsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.input == "" {
		fmt.Fprintln(os.Stderr, "-i is required")
		return subcommands.ExitUsageError
	}
	if err := checkFiles(c.input, c.output, c.force); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	cfg, log, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.mode != "" {
		cfg.MatchingMode = c.mode
	}
	if c.ltcgDays != 0 {
		cfg.LTCGThresholdDays = c.ltcgDays
	}
	if c.sameSource {
		cfg.SameSourceOnly = true
	}
	if c.fmvFile != "" {
		cfg.FMVFile = c.fmvFile
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	loader := ingest.NewLoader(cfg.Currency, log)
	fmv, err := loader.LoadFMV(cfg.FMVFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading fair market values: %v\n", err)
		return subcommands.ExitFailure
	}
	txs, err := loader.LoadTransactions(c.input, fmv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading transactions %q: %v\n", c.input, err)
		return subcommands.ExitFailure
	}

	opts := cfg.Options(loader.LoadTaxRates(c.taxRates, c.taxRatesPath))
	report, err := capgains.NewRunner(opts, log).Run(ctx, txs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating gains: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := writeFile(c.output, func(f *os.File) error { return renderer.WriteGains(f, report.Gains) }); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing gains: %v\n", err)
		return subcommands.ExitFailure
	}
	crossCheck := filepath.Join(filepath.Dir(c.output), renderer.CrossCheckFile)
	if err := writeFile(crossCheck, func(f *os.File) error { return renderer.WriteCrossCheck(f, report.CrossCheck) }); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing cross-check: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.print {
		renderer.WriteGains(os.Stdout, report.Gains)
	}
	if c.summary {
		printMarkdown(renderer.RenderSummary(renderer.NewSummary(report, opts.Mode, cfg.Currency)))
	}
	fmt.Fprintf(os.Stderr, "Done! Output saved to %s (%d gain records)\n", c.output, len(report.Gains))
	return subcommands.ExitSuccess
}

// checkFiles checks that input exists and that output can be written.
func checkFiles(input, output string, overwrite bool) error {
	if _, err := os.Stat(input); err != nil {
		return fmt.Errorf("transactions file %q not found", input)
	}
	if _, err := os.Stat(output); !overwrite && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("output file %q already exists, use -f to overwrite it", output)
	}
	return nil
}

// writeFile creates name and writes it with write.
func writeFile(name string, write func(*os.File) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
