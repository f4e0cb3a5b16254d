package ingest

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/capgains"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTaxRates(t *testing.T) {
	rates, err := ReadTaxRates(strings.NewReader(`{
		"FY2023-2024": {"ltcg_rate": 0.10, "stcg_rate": 0.15},
		"FY2024-2025": {"ltcg_rate": 0.125}
	}`), "")
	require.NoError(t, err)
	require.Len(t, rates, 2)

	c := capgains.NewClassifier(rates)
	assert.Equal(t, "12.50%", c.Rate("FY2024-2025", capgains.LTCG).String())
	assert.Equal(t, "15.00%", c.Rate("FY2024-2025", capgains.STCG).String())
}

func TestReadTaxRates_Selector(t *testing.T) {
	doc := `{"country": "IN", "tax": {"capital_gains": {"FY2024-2025": {"ltcg_rate": 0.125, "stcg_rate": 0.2}}}}`

	rates, err := ReadTaxRates(strings.NewReader(doc), "$.tax.capital_gains")
	require.NoError(t, err)
	require.Contains(t, rates, "FY2024-2025")
	assert.True(t, capgains.R(0.2).Equal(*rates["FY2024-2025"].STCG))

	_, err = ReadTaxRates(strings.NewReader(doc), "$.country")
	assert.Error(t, err)

	_, err = ReadTaxRates(strings.NewReader(doc), "$.missing")
	assert.Error(t, err)
}

func TestLoadTaxRates_FallsBack(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoader("INR", zerolog.New(&buf))

	assert.Empty(t, l.LoadTaxRates("", ""))
	assert.Empty(t, buf.String())

	assert.Empty(t, l.LoadTaxRates(filepath.Join(t.TempDir(), "missing.json"), ""))
	assert.Contains(t, buf.String(), "failed to load tax rates")

	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))
	assert.Empty(t, l.LoadTaxRates(path, ""))

	require.NoError(t, os.WriteFile(path, []byte(`{"FY2024-2025": {"ltcg_rate": 0.125}}`), 0o644))
	assert.Len(t, l.LoadTaxRates(path, ""), 1)
}
