package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/capgains"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	for _, key := range []string{
		"CGC_MATCHING_MODE", "CGC_SAME_SOURCE_ONLY", "CGC_LTCG_THRESHOLD_DAYS",
		"CGC_FALLBACK_LTCG_RATE", "CGC_FALLBACK_STCG_RATE", "CGC_WORKERS",
		"CGC_CURRENCY", "CGC_FMV_FILE", "CGC_LOG_LEVEL", "CGC_LOG_PRETTY",
		"CGC_PORT", "CGC_MAX_UPLOAD_BYTES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "fifo", cfg.MatchingMode)
	assert.False(t, cfg.SameSourceOnly)
	assert.Equal(t, 365, cfg.LTCGThresholdDays)
	assert.Equal(t, 0.10, cfg.FallbackLTCGRate)
	assert.Equal(t, 0.15, cfg.FallbackSTCGRate)
	assert.Equal(t, "INR", cfg.Currency)
	assert.Equal(t, "Grandfathered_ISIN_Prices.csv", cfg.FMVFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv("CGC_MATCHING_MODE", "tax-optimized")
	t.Setenv("CGC_SAME_SOURCE_ONLY", "true")
	t.Setenv("CGC_LTCG_THRESHOLD_DAYS", "730")
	t.Setenv("CGC_WORKERS", "not a number")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	opts := cfg.Options(nil)
	assert.Equal(t, capgains.TaxOptimized, opts.Mode)
	assert.True(t, opts.SameSourceOnly)
	assert.Equal(t, 730, opts.Classifier.ThresholdDays)
	assert.Equal(t, 0, opts.Workers)
	assert.True(t, capgains.FallbackLTCGRate.Equal(opts.Classifier.LTCGFallback))
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CGC_CURRENCY=USD\nCGC_PORT=9000\n"), 0o644))
	// godotenv does not override variables that exist, even empty ones.
	// clearEnv restores them at the end of the test.
	os.Unsetenv("CGC_CURRENCY")
	os.Unsetenv("CGC_PORT")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 9000, cfg.Port)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("CGC_MATCHING_MODE", "lifo")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("CGC_LTCG_THRESHOLD_DAYS", "-1")
	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
