package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/capgains/config"
	"github.com/etnz/capgains/renderer"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statement = `Transaction Date,Company Name,Transaction Type,Shares(Credits/Debits),Price,ISIN,Source,Amount(Credits/Debits)
2015-01-01,ACME,Investment in Stock,10,100,INE1,A,--
2020-01-01,ACME,Sell/Redemption,-10,200,INE1,A,--
2020-08-01,ACME,Dividend,--,--,INE1,A,-30
`

func newServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		MatchingMode:      "fifo",
		LTCGThresholdDays: 365,
		FallbackLTCGRate:  0.10,
		FallbackSTCGRate:  0.15,
		Currency:          "INR",
		FMVFile:           filepath.Join(t.TempDir(), "missing.csv"),
		Port:              8080,
		MaxUploadBytes:    1 << 20,
	}
	return New(Config{Log: zerolog.Nop(), Config: cfg})
}

// upload builds a multipart request with files (name -> filename, content)
// and form fields.
func upload(t *testing.T, files map[string][2]string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, file := range files {
		fw, err := mw.CreateFormFile(field, file[0])
		require.NoError(t, err)
		_, err = io.WriteString(fw, file[1])
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/calculate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// unzip returns the files of a ZIP archive by name.
func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = string(content)
	}
	return files
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newServer(t).Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCalculate(t *testing.T) {
	req := upload(t, map[string][2]string{
		fieldTransactions: {"transactions.csv", statement},
		fieldFMV:          {"fmv.csv", "ISIN,Fair market value\nINE1,150\n"},
		fieldTaxRates:     {"rates.json", `{"FY2019-2020": {"ltcg_rate": 0.125}}`},
	}, map[string]string{
		fieldIncludeDividends: "true",
	})
	w := httptest.NewRecorder()
	newServer(t).Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ResultsFile)
	assert.NotEmpty(t, w.Header().Get(RunIDHeader))

	files := unzip(t, w.Body.Bytes())
	require.Contains(t, files, renderer.GainsFile)
	require.Contains(t, files, renderer.CrossCheckFile)
	require.Contains(t, files, renderer.DividendsFile)

	gains := strings.Split(strings.TrimSpace(files[renderer.GainsFile]), "\n")
	require.Len(t, gains, 2)
	// grandfathered: the buy value uses the FMV.
	assert.Contains(t, gains[1], ",2000.00,1500.00,500.00,1826,LTCG,")
	assert.Contains(t, files[renderer.CrossCheckFile], "ACME,INE1,100,150,150")
	assert.Contains(t, files[renderer.DividendsFile], "ACME,2020-08-01,30,")
}

func TestCalculate_Options(t *testing.T) {
	req := upload(t, map[string][2]string{
		fieldTransactions: {"transactions.csv", statement},
	}, map[string]string{
		fieldSimpleFIFO:    "false",
		fieldLTCGThreshold: "5000",
	})
	w := httptest.NewRecorder()
	newServer(t).Handler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	files := unzip(t, w.Body.Bytes())
	assert.NotContains(t, files, renderer.DividendsFile)
	// 1826 days is short term with a 5000 days threshold, and without FMV
	// the price is kept.
	assert.Contains(t, files[renderer.GainsFile], ",2000.00,1000.00,1000.00,1826,STCG,")
}

func TestCalculate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string][2]string
		want  string
	}{
		{"missing transactions", nil, "transactions file not provided"},
		{"not a csv", map[string][2]string{fieldTransactions: {"transactions.xlsx", statement}}, "invalid file type for transactions file"},
		{"bad fmv type", map[string][2]string{
			fieldTransactions: {"transactions.csv", statement},
			fieldFMV:          {"fmv.json", "{}"},
		}, "invalid file type for fmv file"},
		{"missing columns", map[string][2]string{fieldTransactions: {"transactions.csv", "Company Name\nACME\n"}}, "missing column"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newServer(t).Handler().ServeHTTP(w, upload(t, tt.files, nil))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Contains(t, resp["error"], tt.want)
		})
	}
}

func TestCalculate_TooLarge(t *testing.T) {
	s := newServer(t)
	s.cfg.MaxUploadBytes = 64
	req := upload(t, map[string][2]string{fieldTransactions: {"transactions.csv", statement}}, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
