package renderer

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/etnz/capgains"
)

// Names of the files in a results bundle.
const (
	GainsFile      = "capital_gains.csv"
	DividendsFile  = "dividends.csv"
	CrossCheckFile = "fmv_crossmatch_output.csv"
)

// Bundle is the content of a results archive.
type Bundle struct {
	Report    *capgains.Report
	Dividends []capgains.Dividend // written only when IncludeDividends is set
	// IncludeDividends adds the dividends file, even when there are none.
	IncludeDividends bool
}

type bundleEntry struct {
	name  string
	write func(io.Writer) error
}

// WriteBundle writes b as a ZIP archive to w.
func WriteBundle(w io.Writer, b Bundle) error {
	zw := zip.NewWriter(w)
	entries := []bundleEntry{
		{GainsFile, func(w io.Writer) error { return WriteGains(w, b.Report.Gains) }},
		{CrossCheckFile, func(w io.Writer) error { return WriteCrossCheck(w, b.Report.CrossCheck) }},
	}
	if b.IncludeDividends {
		entries = append(entries, bundleEntry{DividendsFile, func(w io.Writer) error { return WriteDividends(w, b.Dividends) }})
	}

	for _, e := range entries {
		f, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("cannot add %q to the bundle: %w", e.name, err)
		}
		if err := e.write(f); err != nil {
			return fmt.Errorf("cannot write %q: %w", e.name, err)
		}
	}
	return zw.Close()
}
