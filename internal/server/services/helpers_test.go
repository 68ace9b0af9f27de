package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/contestfund/internal/dbx"
	"github.com/dmitrijs2005/contestfund/internal/logging"
	"github.com/dmitrijs2005/contestfund/internal/server/config"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
	"github.com/dmitrijs2005/contestfund/internal/server/payments"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/memory"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

const (
	owner   models.Identity = "organizer"
	funderA models.Identity = "funder-a"
	funderB models.Identity = "funder-b"
	creator models.Identity = "creator"
)

type fixture struct {
	store    *memory.Store
	ledger   *payments.Ledger
	contests *ContestService
	credits  *CreditService
	entries  *EntryService
	voting   *VotingService
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(dbx.RetryPolicy{MaxRetries: 1000, BaseDelay: time.Microsecond, MaxDelay: time.Millisecond})
	return newFixtureWith(t, store, store)
}

// newFixtureWith lets a test wrap the store's unit-of-work behaviour while
// still inspecting the underlying store.
func newFixtureWith(t *testing.T, store *memory.Store, m repomanager.RepositoryManager) *fixture {
	t.Helper()
	cfg := testConfig()
	ledger := payments.NewLedger(1_000_000_000)
	l := logging.Discard()
	return &fixture{
		store:    store,
		ledger:   ledger,
		contests: NewContestService(m, cfg, l),
		credits:  NewCreditService(m, ledger, cfg, l),
		entries:  NewEntryService(m, cfg, l),
		voting:   NewVotingService(m, l),
	}
}

func (f *fixture) createContest(t *testing.T) string {
	t.Helper()
	id, err := f.contests.Create(context.Background(), owner, "Best photo", "Landscapes only", time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	return id
}

func (f *fixture) fund(t *testing.T, contestID string, funder models.Identity, amount int64) string {
	t.Helper()
	id, err := f.credits.Fund(context.Background(), contestID, funder, amount)
	require.NoError(t, err)
	return id
}

func (f *fixture) submit(t *testing.T, contestID string) string {
	t.Helper()
	id, err := f.entries.Submit(context.Background(), contestID, creator, "https://example.com/photo.jpg")
	require.NoError(t, err)
	return id
}

func (f *fixture) contest(t *testing.T, id string) *models.Contest {
	t.Helper()
	c, err := f.store.Repositories().Contests().Get(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (f *fixture) entry(t *testing.T, id string) *models.Entry {
	t.Helper()
	e, err := f.store.Repositories().Entries().Get(context.Background(), id)
	require.NoError(t, err)
	return e
}

func (f *fixture) credit(t *testing.T, id string) *models.VoteCredit {
	t.Helper()
	c, err := f.store.Repositories().Credits().Get(context.Background(), id)
	require.NoError(t, err)
	return c
}

// failingManager runs each unit of work to completion and then forces it to
// abort with err for the first `failures` attempts (all attempts when
// failures is negative).
type failingManager struct {
	repomanager.RepositoryManager
	err      error
	failures int
	calls    int
}

func (m *failingManager) WithTx(ctx context.Context, fn repomanager.TxFunc) error {
	return m.RepositoryManager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		if err := fn(ctx, repos); err != nil {
			return err
		}
		m.calls++
		if m.failures < 0 || m.calls <= m.failures {
			return m.err
		}
		return nil
	})
}

func identity(s string) models.Identity { return models.Identity(s) }
