// Package config handles configuration for the contest server,
// including defaults, JSON overlay, environment variables and command-line
// flags, applied in that order.
package config

import (
	"errors"
	"os"
	"time"
)

// Config holds runtime settings for the contest server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for verifying identity tokens (HS256).
//   - TokenValidityDuration: lifetime of tokens minted by the server.
//   - ExchangeRate: funded units per vote credit.
//   - MaxTitleLength / MaxDescriptionLength / MaxContentLinkLength: byte bounds.
//   - RetryAttempts: how often a conflicting transaction is re-run.
//   - OpeningBalance: starting balance of accounts in the in-process payment ledger.
//   - AllowedOrigins: CORS origins for the HTTP API.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrHTTP      string        `env:"CONTEST_HTTP_ADDR"`
	DatabaseDSN           string        `env:"CONTEST_DATABASE_DSN"`
	SecretKey             string        `env:"CONTEST_SECRET_KEY"`
	TokenValidityDuration time.Duration `env:"CONTEST_TOKEN_VALIDITY"`
	ExchangeRate          int64         `env:"CONTEST_EXCHANGE_RATE"`
	MaxTitleLength        int           `env:"CONTEST_MAX_TITLE_LENGTH"`
	MaxDescriptionLength  int           `env:"CONTEST_MAX_DESCRIPTION_LENGTH"`
	MaxContentLinkLength  int           `env:"CONTEST_MAX_CONTENT_LINK_LENGTH"`
	RetryAttempts         uint64        `env:"CONTEST_RETRY_ATTEMPTS"`
	OpeningBalance        int64         `env:"CONTEST_OPENING_BALANCE"`
	AllowedOrigins        []string      `env:"CONTEST_ALLOWED_ORIGINS" envSeparator:","`
	LogLevel              string        `env:"CONTEST_LOG_LEVEL"`
}

// DefaultExchangeRate is the number of funded units that buy one vote credit.
const DefaultExchangeRate int64 = 1_000_000

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure for production and must be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 24 * time.Hour
	c.ExchangeRate = DefaultExchangeRate
	c.MaxTitleLength = 64
	c.MaxDescriptionLength = 128
	c.MaxContentLinkLength = 180
	c.RetryAttempts = 5
	c.OpeningBalance = 1_000_000_000
	c.AllowedOrigins = []string{"*"}
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, then environment variables and finally
// command-line flags.
func LoadConfig() *Config {
	args := os.Args[1:]

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)

	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// Validate reports settings the services cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.ExchangeRate <= 0 {
		errs = append(errs, errors.New("exchange rate must be positive"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key must not be empty"))
	}
	if c.MaxTitleLength < 0 || c.MaxDescriptionLength < 0 || c.MaxContentLinkLength < 0 {
		errs = append(errs, errors.New("length bounds must not be negative"))
	}
	if c.OpeningBalance < 0 {
		errs = append(errs, errors.New("opening balance must not be negative"))
	}
	return errors.Join(errs...)
}
