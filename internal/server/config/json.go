package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/contestfund/internal/flagx"
	"github.com/dmitrijs2005/contestfund/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "15m" strings and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	ExchangeRate          int64          `json:"exchange_rate"`
	MaxTitleLength        int            `json:"max_title_length"`
	MaxDescriptionLength  int            `json:"max_description_length"`
	MaxContentLinkLength  int            `json:"max_content_link_length"`
	RetryAttempts         uint64         `json:"retry_attempts"`
	OpeningBalance        int64          `json:"opening_balance"`
	AllowedOrigins        []string       `json:"allowed_origins"`
	LogLevel              string         `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag. Without either flag nothing is loaded. Keys missing from the
// file keep their current value. Unreadable or invalid files panic.
func parseJson(config *Config, args []string) {

	jsonConfigFile := flagx.ConfigPath(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.ExchangeRate != 0 {
		config.ExchangeRate = c.ExchangeRate
	}
	if c.MaxTitleLength != 0 {
		config.MaxTitleLength = c.MaxTitleLength
	}
	if c.MaxDescriptionLength != 0 {
		config.MaxDescriptionLength = c.MaxDescriptionLength
	}
	if c.MaxContentLinkLength != 0 {
		config.MaxContentLinkLength = c.MaxContentLinkLength
	}
	if c.RetryAttempts != 0 {
		config.RetryAttempts = c.RetryAttempts
	}
	if c.OpeningBalance != 0 {
		config.OpeningBalance = c.OpeningBalance
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
