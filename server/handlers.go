package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/etnz/capgains"
	"github.com/etnz/capgains/ingest"
	"github.com/etnz/capgains/renderer"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunIDHeader carries the id of a calculation, as found in the server logs.
const RunIDHeader = "X-Run-ID"

// ResultsFile is the name of the returned archive.
const ResultsFile = "capital_gains_results.zip"

// Form fields of a calculation request.
const (
	fieldTransactions     = "transactions_file"
	fieldFMV              = "fmv_file"
	fieldTaxRates         = "tax_rates_file"
	fieldSameSourceOnly   = "sameSourceOnly"
	fieldSimpleFIFO       = "simpleFifoMode"
	fieldIncludeDividends = "includeDividends"
	fieldLTCGThreshold    = "ltcgThresholdDays"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCalculate runs a calculation over an uploaded statement and returns
// the results bundle.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	runID := uuid.New().String()
	log := s.log.With().Str("run_id", runID).Logger()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid upload: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	archive, err := s.calculate(r, log)
	if err != nil {
		log.Warn().Err(err).Msg("calculation rejected")
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ResultsFile))
	w.Header().Set(RunIDHeader, runID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(archive); err != nil {
		log.Error().Err(err).Msg("failed to send results")
	}
}

func (s *Server) calculate(r *http.Request, log zerolog.Logger) ([]byte, error) {
	loader := ingest.NewLoader(s.cfg.Currency, log)

	txFile, txHeader, err := r.FormFile(fieldTransactions)
	if err != nil {
		return nil, errors.New("transactions file not provided")
	}
	defer txFile.Close()
	if !isCSV(txHeader) {
		return nil, errors.New("invalid file type for transactions file")
	}

	fmv, err := s.fmv(r, loader)
	if err != nil {
		return nil, err
	}

	rates := capgains.TaxRates{}
	if f, _, err := r.FormFile(fieldTaxRates); err == nil {
		defer f.Close()
		if rates, err = ingest.ReadTaxRates(f, ""); err != nil {
			log.Warn().Err(err).Msg("failed to load tax rates, using fallback rates")
			rates = capgains.TaxRates{}
		}
	}

	opts := s.cfg.Options(rates)
	opts.SameSourceOnly = formBool(r, fieldSameSourceOnly, false)
	opts.Mode = capgains.FIFO
	if !formBool(r, fieldSimpleFIFO, true) {
		opts.Mode = capgains.TaxOptimized
	}
	if days, err := strconv.Atoi(r.FormValue(fieldLTCGThreshold)); err == nil && days > 0 {
		opts.Classifier.ThresholdDays = days
	}
	log.Info().
		Str("mode", opts.Mode.String()).
		Bool("same_source_only", opts.SameSourceOnly).
		Int("ltcg_threshold_days", opts.Classifier.ThresholdDays).
		Msg("calculating capital gains")

	txs, err := loader.ReadTransactions(txFile, fmv)
	if err != nil {
		return nil, err
	}
	report, err := capgains.NewRunner(opts, log).Run(r.Context(), txs)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	bundle := renderer.Bundle{Report: report, IncludeDividends: formBool(r, fieldIncludeDividends, false)}
	if bundle.IncludeDividends {
		bundle.Dividends = capgains.Dividends(txs)
	}
	if err := renderer.WriteBundle(&b, bundle); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// fmv reads the uploaded fair market values, or the server's default file.
func (s *Server) fmv(r *http.Request, loader *ingest.Loader) (ingest.FMV, error) {
	f, h, err := r.FormFile(fieldFMV)
	if errors.Is(err, http.ErrMissingFile) {
		return loader.LoadFMV(s.cfg.FMVFile)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid fmv file: %w", err)
	}
	defer f.Close()
	if !isCSV(h) {
		return nil, errors.New("invalid file type for fmv file")
	}
	return loader.ReadFMV(f)
}

func isCSV(h *multipart.FileHeader) bool {
	return strings.EqualFold(filepath.Ext(h.Filename), ".csv")
}

// formBool reads a boolean form field, def when absent or invalid.
func formBool(r *http.Request, key string, def bool) bool {
	b, err := strconv.ParseBool(r.FormValue(key))
	if err != nil {
		return def
	}
	return b
}

// HTTP helpers

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}
