package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/capgains"
	"github.com/etnz/capgains/ingest"
	"github.com/etnz/capgains/renderer"
	"github.com/google/subcommands"
)

type dividendsCmd struct {
	input  string
	output string
	force  bool
}

func (*dividendsCmd) Name() string     { return "dividends" }
func (*dividendsCmd) Synopsis() string { return "extract cash dividends" }
func (*dividendsCmd) Usage() string {
	return `cgc dividends -i <transactions.csv> -o <dividends.csv> [-f]

  Writes the cash dividends of the statement, as income.
`
}

func (c *dividendsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "Transactions statement (CSV)")
	f.StringVar(&c.output, "o", "dividends.csv", "Output dividends file (CSV)")
	f.BoolVar(&c.force, "f", false, "Overwrite the output file if it exists")
}

func (c *dividendsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	txs, err := ingest.NewLoader(cfg.Currency, log).LoadTransactions(c.input, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading transactions %q: %v\n", c.input, err)
		return subcommands.ExitFailure
	}
	dividends := capgains.Dividends(txs)
	if err := writeFile(c.output, func(f *os.File) error { return renderer.WriteDividends(f, dividends) }); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing dividends: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Done! Output saved to %s (%d dividend records)\n", c.output, len(dividends))
	return subcommands.ExitSuccess
}
