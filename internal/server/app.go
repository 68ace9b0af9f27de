// Package server wires configuration, storage, the payment ledger and the
// contest services together and runs the HTTP API until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/contestfund/internal/dbx"
	"github.com/dmitrijs2005/contestfund/internal/logging"
	"github.com/dmitrijs2005/contestfund/internal/server/config"
	"github.com/dmitrijs2005/contestfund/internal/server/httpapi"
	"github.com/dmitrijs2005/contestfund/internal/server/payments"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/memory"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/contestfund/internal/server/services"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	manager repomanager.RepositoryManager
	server  *httpapi.HTTPServer
}

// NewApp builds the application. An empty DatabaseDSN selects the in-memory
// store; otherwise PostgreSQL is opened and migrated.
func NewApp(ctx context.Context, c *config.Config, logOutput io.Writer) (*App, error) {
	logger := logging.NewJSONLogger(logOutput, c.LogLevel)

	policy := dbx.DefaultRetryPolicy()
	policy.MaxRetries = c.RetryAttempts

	app := &App{config: c, logger: logger}

	if c.DatabaseDSN == "" {
		logger.Info(ctx, "using in-memory storage")
		app.manager = memory.NewStore(policy)
	} else {
		db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		app.manager = repomanager.NewPostgresRepositoryManager(db, policy)
	}

	if err := app.manager.RunMigrations(ctx); err != nil {
		app.close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	ledger := payments.NewLedger(c.OpeningBalance)

	svc := httpapi.Services{
		Contests: services.NewContestService(app.manager, c, logger),
		Credits:  services.NewCreditService(app.manager, ledger, c, logger),
		Entries:  services.NewEntryService(app.manager, c, logger),
		Voting:   services.NewVotingService(app.manager, logger),
	}
	app.server = httpapi.NewHTTPServer(c.EndpointAddrHTTP, logger, svc, c.SecretKey, c.AllowedOrigins)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close failed", "error", err)
		}
	}
}
