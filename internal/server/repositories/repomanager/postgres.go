// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors, transactions with conflict
// retries, and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/contestfund/internal/dbx"
	"github.com/dmitrijs2005/contestfund/internal/server/migrations"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/contests"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/credits"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/entries"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct {
	db    *sql.DB
	retry dbx.RetryPolicy
}

var _ RepositoryManager = (*PostgresRepositoryManager)(nil)

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB, retry dbx.RetryPolicy) *PostgresRepositoryManager {
	return &PostgresRepositoryManager{db: db, retry: retry}
}

// OpenPostgres opens a pgx-backed *sql.DB for the given DSN.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

// Repositories returns repositories bound to the connection pool.
func (m *PostgresRepositoryManager) Repositories() Repositories {
	return postgresRepositories{db: m.db}
}

// WithTx runs fn in a READ COMMITTED transaction. Rows a unit of work
// mutates are locked with SELECT ... FOR UPDATE; serialization failures and
// deadlocks roll the transaction back and run fn again.
func (m *PostgresRepositoryManager) WithTx(ctx context.Context, fn TxFunc) error {
	return dbx.WithRetry(ctx, m.retry, func(ctx context.Context) error {
		return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return fn(ctx, postgresRepositories{db: tx})
		})
	})
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the manager's database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, m.db, "."); err != nil {
		return err
	}
	return nil
}

type postgresRepositories struct {
	db dbx.DBTX
}

func (r postgresRepositories) Contests() contests.Repository {
	return contests.NewPostgresRepository(r.db)
}

func (r postgresRepositories) Entries() entries.Repository {
	return entries.NewPostgresRepository(r.db)
}

func (r postgresRepositories) Credits() credits.Repository {
	return credits.NewPostgresRepository(r.db)
}
