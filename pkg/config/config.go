package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"

	"github.com/assislucian/glosa-audit/internal/domain/statement/extract"
	"github.com/assislucian/glosa-audit/internal/domain/validation"
)

// Config holds all application configuration
type Config struct {
	Parser     ParserConfig
	Validation ValidationConfig
	Logging    LoggingConfig
}

type ParserConfig struct {
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
	StrictCurrency      bool
}

type ValidationConfig struct {
	TolerancePercentage float64
	RequireExactMatch   bool
	AllowMissingCodes   bool
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Parser: ParserConfig{
			RetryMaxAttempts:    getEnvAsInt("PARSER_RETRY_MAX_ATTEMPTS", 3),
			RetryInitialBackoff: getEnvAsDuration("PARSER_RETRY_INITIAL_BACKOFF", 500*time.Millisecond),
			RetryMaxBackoff:     getEnvAsDuration("PARSER_RETRY_MAX_BACKOFF", 3*time.Second),
			StrictCurrency:      getEnvAsBool("PARSER_STRICT_CURRENCY", false),
		},
		Validation: ValidationConfig{
			TolerancePercentage: getEnvAsFloat("VALIDATION_TOLERANCE_PERCENTAGE", 5),
			RequireExactMatch:   getEnvAsBool("VALIDATION_REQUIRE_EXACT_MATCH", false),
			AllowMissingCodes:   getEnvAsBool("VALIDATION_ALLOW_MISSING_CODES", true),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if cfg.Parser.RetryMaxAttempts < 1 {
		return nil, errors.New("PARSER_RETRY_MAX_ATTEMPTS must be at least 1")
	}

	if cfg.Parser.RetryInitialBackoff <= 0 || cfg.Parser.RetryMaxBackoff <= 0 {
		return nil, errors.New("parser retry backoffs must be positive durations")
	}

	if cfg.Validation.TolerancePercentage < 0 {
		return nil, errors.New("VALIDATION_TOLERANCE_PERCENTAGE must not be negative")
	}

	return cfg, nil
}

// RetryPolicy converts the parser settings into extraction retry bounds.
func (c *ParserConfig) RetryPolicy() extract.RetryPolicy {
	return extract.RetryPolicy{
		MaxAttempts:    c.RetryMaxAttempts,
		InitialBackoff: c.RetryInitialBackoff,
		MaxBackoff:     c.RetryMaxBackoff,
	}
}

// Options converts the validation settings into validator options.
func (c *ValidationConfig) Options() validation.Options {
	opts := validation.DefaultOptions()
	opts.TolerancePercentage = c.TolerancePercentage
	opts.RequireExactMatch = c.RequireExactMatch
	opts.AllowMissingCodes = c.AllowMissingCodes
	return opts
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
