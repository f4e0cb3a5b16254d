// Package config reads the calculator settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/etnz/capgains"
	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	MatchingMode      string
	SameSourceOnly    bool
	LTCGThresholdDays int
	FallbackLTCGRate  float64
	FallbackSTCGRate  float64
	Workers           int
	Currency          string
	FMVFile           string
	LogLevel          string
	LogPretty         bool
	Port              int
	MaxUploadBytes    int64
}

// Load reads configuration from environment variables, after loading the
// .env files that exist. Variables already set are not overridden.
func Load(files ...string) (*Config, error) {
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("cannot load %s: %w", f, err)
			}
		}
	}
	if len(files) == 0 {
		// Load .env file if it exists
		_ = godotenv.Load()
	}

	cfg := &Config{
		MatchingMode:      getEnv("CGC_MATCHING_MODE", capgains.FIFO.String()),
		SameSourceOnly:    getEnvAsBool("CGC_SAME_SOURCE_ONLY", false),
		LTCGThresholdDays: getEnvAsInt("CGC_LTCG_THRESHOLD_DAYS", capgains.DefaultLTCGThresholdDays),
		FallbackLTCGRate:  getEnvAsFloat("CGC_FALLBACK_LTCG_RATE", capgains.FallbackLTCGRate.Float64()),
		FallbackSTCGRate:  getEnvAsFloat("CGC_FALLBACK_STCG_RATE", capgains.FallbackSTCGRate.Float64()),
		Workers:           getEnvAsInt("CGC_WORKERS", 0),
		Currency:          getEnv("CGC_CURRENCY", "INR"),
		FMVFile:           getEnv("CGC_FMV_FILE", "Grandfathered_ISIN_Prices.csv"),
		LogLevel:          getEnv("CGC_LOG_LEVEL", "info"),
		LogPretty:         getEnvAsBool("CGC_LOG_PRETTY", true),
		Port:              getEnvAsInt("CGC_PORT", 8080),
		MaxUploadBytes:    int64(getEnvAsInt("CGC_MAX_UPLOAD_BYTES", 10<<20)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := capgains.ParseMatchingMode(c.MatchingMode); err != nil {
		return fmt.Errorf("CGC_MATCHING_MODE: %w", err)
	}
	if c.LTCGThresholdDays <= 0 {
		return fmt.Errorf("CGC_LTCG_THRESHOLD_DAYS must be positive, got %d", c.LTCGThresholdDays)
	}
	if c.FallbackLTCGRate < 0 || c.FallbackSTCGRate < 0 {
		return fmt.Errorf("fallback tax rates must not be negative")
	}
	if c.Currency == "" {
		return fmt.Errorf("CGC_CURRENCY is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("CGC_MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

// Options returns the engine options. The tax rate table is loaded separately.
func (c *Config) Options(rates capgains.TaxRates) capgains.Options {
	mode, _ := capgains.ParseMatchingMode(c.MatchingMode) // validated by Load
	classifier := capgains.NewClassifier(rates)
	classifier.ThresholdDays = c.LTCGThresholdDays
	classifier.LTCGFallback = capgains.R(c.FallbackLTCGRate)
	classifier.STCGFallback = capgains.R(c.FallbackSTCGRate)
	return capgains.Options{
		Mode:           mode,
		SameSourceOnly: c.SameSourceOnly,
		Classifier:     classifier,
		Workers:        c.Workers,
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
