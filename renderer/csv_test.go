package renderer

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/etnz/capgains"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteGains(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteGains(&b, newReport(t).Gains))

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, GainsHeader, lines[0])
	assert.Equal(t, "A,ACME,01-Jan-2020,SELL/REDEMPTION,4,200,A,INVESTMENT IN STOCK,01-Jan-2015,10,100,800.00,600.00,200.00,1826,LTCG,Q4,FY2019-2020,6,True,150,100,150", lines[1])
	assert.Equal(t, "B,BETA,01-Jun-2020,SELL/REDEMPTION,5,12,B,INVESTMENT IN STOCK,01-Jan-2020,5,10,60.00,50.00,10.00,152,STCG,Q1,FY2020-2021,0,False,0,10,10", lines[3])
}

func TestWriteGains_Empty(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteGains(&b, nil))
	assert.Equal(t, GainsHeader+"\n", b.String())
}

func TestWriteCrossCheck(t *testing.T) {
	var b bytes.Buffer
	cc := capgains.CrossCheck{
		"ZETA": {ISIN: "INE2", OriginalPrice: usd(10), FMV: usd(8), AdjustedPrice: usd(10)},
		"ACME": {ISIN: "INE1", OriginalPrice: usd(100), FMV: usd(150.5), AdjustedPrice: usd(150.5)},
	}
	require.NoError(t, WriteCrossCheck(&b, cc))
	assert.Equal(t, "Company,ISIN,orig_buy_price,FMV,buying_price\n"+
		"ACME,INE1,100,150.5,150.5\n"+
		"ZETA,INE2,10,8,10\n", b.String())
}

func TestWriteDividends(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, WriteDividends(&b, capgains.Dividends(ledger())))
	assert.Equal(t, "Company Name,Date,Amount,Quarter,Financial Year,Source\n"+
		"BETA,2020-08-01,7.5,Q2,FY2020-2021,B\n", b.String())
}

func TestWriteBundle(t *testing.T) {
	tests := []struct {
		name      string
		dividends bool
		want      []string
	}{
		{"gains only", false, []string{GainsFile, CrossCheckFile}},
		{"with dividends", true, []string{GainsFile, CrossCheckFile, DividendsFile}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b bytes.Buffer
			err := WriteBundle(&b, Bundle{
				Report:           newReport(t),
				Dividends:        capgains.Dividends(ledger()),
				IncludeDividends: tt.dividends,
			})
			require.NoError(t, err)

			zr, err := zip.NewReader(bytes.NewReader(b.Bytes()), int64(b.Len()))
			require.NoError(t, err)
			var names []string
			for _, f := range zr.File {
				names = append(names, f.Name)
			}
			assert.Equal(t, tt.want, names)

			f, err := zr.Open(GainsFile)
			require.NoError(t, err)
			defer f.Close()
			content, err := io.ReadAll(f)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(string(content), GainsHeader))
		})
	}
}
