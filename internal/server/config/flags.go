package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/contestfund/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN; empty means in-memory storage
//	-s string   JWT HMAC secret key
//	-t int      token validity, minutes
//	-x int      exchange rate, funded units per vote credit
//	-r int      transaction retry attempts
//	-b int      opening balance of the in-process payment ledger
//	-l string   log level
//
// Flags not defined here (such as -c) are skipped via flagx.ParseKnown.
// Malformed values panic.
func parseFlags(config *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token validity duration (in minutes)")

	fs.Int64Var(&config.ExchangeRate, "x", config.ExchangeRate, "funded units per vote credit")
	fs.Uint64Var(&config.RetryAttempts, "r", config.RetryAttempts, "transaction retry attempts")
	fs.Int64Var(&config.OpeningBalance, "b", config.OpeningBalance, "opening balance of payment ledger accounts")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := flagx.ParseKnown(fs, args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
		}
	})
}
