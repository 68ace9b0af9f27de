// Package cli implements contestctl, a command-line front end for the
// contest HTTP API.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/contestfund/internal/client"
)

// Config selects the server and the caller's bearer token. Values come from
// CONTEST_SERVER / CONTEST_TOKEN and may be overridden by -server / -token.
type Config struct {
	Server string `env:"CONTEST_SERVER" envDefault:"http://localhost:8080"`
	Token  string `env:"CONTEST_TOKEN"`
}

var errUsage = errors.New(`usage: contestctl [-server url] [-token jwt] <command> [args]

commands:
  ping
  create <title> <description> <deadline RFC3339>
  get <contest>
  close <contest>
  fund <contest> <amount>
  submit <contest> <content link>
  entries <contest>
  entry <entry>
  vote <entry> <credit> <amount>
  credits
  credit <credit>`)

type command struct {
	args int
	run  func(ctx context.Context, c *client.Client, args []string) (any, error)
}

var commands = map[string]command{
	"ping": {0, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
		return map[string]string{"status": "OK"}, c.Ping(ctx)
	}},
	"create": {3, func(ctx context.Context, c *client.Client, a []string) (any, error) {
		deadline, err := time.Parse(time.RFC3339, a[2])
		if err != nil {
			return nil, fmt.Errorf("bad deadline: %w", err)
		}
		return idOf(c.CreateContest(ctx, a[0], a[1], deadline))
	}},
	"get": {1, func(ctx context.Context, c *client.Client, a []string) (any, error) {
		return c.GetContest(ctx, a[0])
	}},
	"close": {1, func(ctx context.Context, c *client.Client, a []string) (any, error) {
		return nil, c.CloseContest(ctx, a[0])
	}},
	"fund": {2, func(ctx context.Context, c *client.Client, a []string) (any, error) {
		amount, err := strconv.ParseInt(a[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad amount: %w", err)
		}
		return idOf(c.Fund(ctx, a[0], amount))
	}},
	"submit": {2, func(ctx context.Context, c *client.Client, a []string) (any, error) {
		return idOf(c.SubmitEntry(ctx, a[0], a[1]))
	}},
	"entries": {1, func(ctx context.Context, c *client.Client, a []string) (any, error) {
		return c.ListEntries(ctx, a[0])
	}},
	"entry": {1, func(ctx context.Context, c *client.Client, a []string) (any, error) {
		return c.GetEntry(ctx, a[0])
	}},
	"vote": {3, func(ctx context.Context, c *client.Client, a []string) (any, error) {
		amount, err := strconv.ParseInt(a[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad amount: %w", err)
		}
		return nil, c.CastVote(ctx, a[0], a[1], amount)
	}},
	"credits": {0, func(ctx context.Context, c *client.Client, _ []string) (any, error) {
		return c.MyCredits(ctx)
	}},
	"credit": {1, func(ctx context.Context, c *client.Client, a []string) (any, error) {
		return c.GetCredit(ctx, a[0])
	}},
}

func idOf(id string, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return map[string]string{"id": id}, nil
}

// Run executes one command and prints its JSON result to out.
func Run(ctx context.Context, args []string, out io.Writer) error {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return err
	}

	fs := flag.NewFlagSet("contestctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Server, "server", cfg.Server, "API base URL")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "bearer token")
	if err := fs.Parse(args); err != nil {
		return errors.Join(errUsage, err)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok || len(rest)-1 != cmd.args {
		return errUsage
	}

	result, err := cmd.run(ctx, client.New(cfg.Server, cfg.Token), rest[1:])
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
