package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/capgains"
)

/*
A tax rate file maps financial years to their rates:

	{
	    "FY2023-2024": {"ltcg_rate": 0.10, "stcg_rate": 0.15},
	    "FY2024-2025": {"ltcg_rate": 0.125, "stcg_rate": 0.20}
	}

The table can also live inside a larger document, then a JSONPath selects it,
e.g. "$.india.capital_gains".
*/

// LoadTaxRates reads the tax rate file at path, see ReadTaxRates.
//
// An empty path, a missing or an invalid file all yield an empty table: every
// year then uses the fallback rates.
func (l *Loader) LoadTaxRates(path, selector string) capgains.TaxRates {
	if path == "" {
		return capgains.TaxRates{}
	}
	f, err := os.Open(path)
	if err != nil {
		l.log.Warn().Err(err).Str("file", path).Msg("failed to load tax rates, using fallback rates")
		return capgains.TaxRates{}
	}
	defer f.Close()

	rates, err := ReadTaxRates(f, selector)
	if err != nil {
		l.log.Warn().Err(err).Str("file", path).Msg("failed to load tax rates, using fallback rates")
		return capgains.TaxRates{}
	}
	l.log.Debug().Str("file", path).Int("years", len(rates)).Msg("tax rates loaded")
	return rates
}

// ReadTaxRates decodes a tax rate table. When selector is not empty it is a
// JSONPath to the table within the document.
func ReadTaxRates(r io.Reader, selector string) (capgains.TaxRates, error) {
	var rates capgains.TaxRates
	if selector == "" {
		if err := json.NewDecoder(r).Decode(&rates); err != nil {
			return nil, fmt.Errorf("cannot decode tax rates: %w", err)
		}
		return rates, nil
	}

	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot decode tax rates: %w", err)
	}
	jval, err := jsonpath.Get(selector, doc)
	if err != nil {
		return nil, fmt.Errorf("cannot select tax rates with %q: %w", selector, err)
	}
	// a wildcard path yields a list, keep the first match.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, errors.New("no tax rates selected by " + selector)
		}
		jval = jlist[0]
	}

	// round trip the selection through its JSON form to reuse the decoder.
	data, err := json.Marshal(jval)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &rates); err != nil {
		return nil, fmt.Errorf("selection %q is not a tax rate table: %w", selector, err)
	}
	return rates, nil
}
