package repomanager

import (
	"context"

	"github.com/dmitrijs2005/contestfund/internal/server/repositories/contests"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/credits"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/entries"
)

// Repositories is the set of record repositories visible to one unit of work.
type Repositories interface {
	Contests() contests.Repository
	Entries() entries.Repository
	Credits() credits.Repository
}

// TxFunc is a unit of work. Returning an error aborts it with no record
// changes. It may be invoked more than once when the backend reports a
// write conflict, so it must not have side effects that cannot be repeated.
type TxFunc func(ctx context.Context, repos Repositories) error

// RepositoryManager vends repositories and runs units of work atomically.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	// Repositories returns non-transactional repositories for reads.
	Repositories() Repositories
	// WithTx runs fn so that all of its writes commit together or not at all.
	WithTx(ctx context.Context, fn TxFunc) error
}
