package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = `Transaction Date,Company Name,Transaction Type,Shares(Credits/Debits),Price,ISIN,Source,Amount(Credits/Debits)
2015-01-01,ACME,Investment in Stock,10,100,INE1,A,--
2020-01-01,ACME,Sell/Redemption,-4,200,INE1,A,--
2020-08-01,BETA,Dividend,--,--,INE2,B,-7.5
`

const fmvStatement = `ISIN,Fair market value
INE1,150
`

// workspace writes the statement files in a temporary directory and points
// the configuration at them.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tx.csv"), []byte(statement), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fmv.csv"), []byte(fmvStatement), 0o644))

	old := *envFile
	*envFile = filepath.Join(dir, ".env")
	t.Cleanup(func() { *envFile = old })
	t.Setenv("CGC_FMV_FILE", filepath.Join(dir, "fmv.csv"))
	t.Setenv("CGC_LOG_LEVEL", "error")
	t.Setenv("CGC_LOG_PRETTY", "false")
	return dir
}

// execute parses args with the flags of c and runs it.
func execute(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return c.Execute(context.Background(), fs)
}

func TestGainsCmd(t *testing.T) {
	dir := workspace(t)
	out := filepath.Join(dir, "gains.csv")

	status := execute(t, &gainsCmd{}, "-i", filepath.Join(dir, "tx.csv"), "-o", out)
	require.Equal(t, subcommands.ExitSuccess, status)

	gains, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(gains)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "A,ACME,01-Jan-2020,SELL/REDEMPTION,4,200,A,INVESTMENT IN STOCK,01-Jan-2015,10,100,800.00,600.00,200.00,1826,LTCG,Q4,FY2019-2020,6,True,150,100,150", lines[1])

	crossCheck, err := os.ReadFile(filepath.Join(dir, "fmv_crossmatch_output.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(crossCheck), "ACME,INE1,100,150,150")
}

func TestGainsCmd_Overwrite(t *testing.T) {
	dir := workspace(t)
	out := filepath.Join(dir, "gains.csv")
	require.NoError(t, os.WriteFile(out, []byte("keep"), 0o644))

	status := execute(t, &gainsCmd{}, "-i", filepath.Join(dir, "tx.csv"), "-o", out)
	assert.Equal(t, subcommands.ExitFailure, status)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(got))

	status = execute(t, &gainsCmd{}, "-i", filepath.Join(dir, "tx.csv"), "-o", out, "-f")
	assert.Equal(t, subcommands.ExitSuccess, status)
}

func TestGainsCmd_Usage(t *testing.T) {
	workspace(t)
	assert.Equal(t, subcommands.ExitUsageError, execute(t, &gainsCmd{}))

	dir := workspace(t)
	status := execute(t, &gainsCmd{}, "-i", filepath.Join(dir, "tx.csv"), "-o", filepath.Join(dir, "g.csv"), "-mode", "lifo")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestDividendsCmd(t *testing.T) {
	dir := workspace(t)
	out := filepath.Join(dir, "dividends.csv")

	status := execute(t, &dividendsCmd{}, "-i", filepath.Join(dir, "tx.csv"), "-o", out)
	require.Equal(t, subcommands.ExitSuccess, status)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Company Name,Date,Amount,Quarter,Financial Year,Source\nBETA,2020-08-01,7.5,Q2,FY2020-2021,B\n", string(got))
}

func TestCompletion(t *testing.T) {
	c := Completion(Commands...)
	require.Contains(t, c.Sub, "gains")
	assert.Contains(t, c.Sub["gains"].Flags, "mode")
	assert.Contains(t, c.Sub["gains"].Flags, "tax-rates")
	assert.Contains(t, c.Sub["serve"].Flags, "port")
	assert.Contains(t, c.Flags, "env-file")
}
