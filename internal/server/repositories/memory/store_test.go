package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/dmitrijs2005/contestfund/internal/dbx"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(dbx.RetryPolicy{MaxRetries: 1000, BaseDelay: time.Microsecond, MaxDelay: time.Millisecond})
}

func seedContest(t *testing.T, s *Store, id string) {
	t.Helper()
	err := s.WithTx(context.Background(), func(ctx context.Context, r repomanager.Repositories) error {
		return r.Contests().Create(ctx, &models.Contest{ID: id, Title: "t", Owner: "alice"})
	})
	require.NoError(t, err)
}

func TestWithTx_CommitsAllWrites(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	seedContest(t, s, "c1")

	err := s.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.Entries().Create(ctx, &models.Entry{ID: "e1", ContestID: "c1", Creator: "bob"}); err != nil {
			return err
		}
		return r.Credits().Create(ctx, &models.VoteCredit{ID: "v1", ContestID: "c1", Funder: "dave", Allocated: 5})
	})
	require.NoError(t, err)

	read := s.Repositories()
	e, err := read.Entries().Get(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.Identity("bob"), e.Creator)
	assert.False(t, e.CreatedAt.IsZero())

	c, err := read.Credits().Get(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), c.Allocated)
}

func TestWithTx_ErrorDiscardsStagedWrites(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	seedContest(t, s, "c1")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		c, err := r.Contests().GetForUpdate(ctx, "c1")
		if err != nil {
			return err
		}
		c.PrizePool = 100
		if err := r.Contests().Update(ctx, c); err != nil {
			return err
		}
		// staged value is visible inside the transaction
		again, err := r.Contests().Get(ctx, "c1")
		if err != nil {
			return err
		}
		if again.PrizePool != 100 {
			return errors.New("staged write not visible")
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	c, err := s.Repositories().Contests().Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.PrizePool)
}

func TestCommit_DetectsConflictingWrite(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	seedContest(t, s, "c1")

	first := newTx(s)
	c, err := first.Contests().GetForUpdate(ctx, "c1")
	require.NoError(t, err)
	c.PrizePool = 10
	require.NoError(t, first.Contests().Update(ctx, c))

	second := newTx(s)
	c2, err := second.Contests().GetForUpdate(ctx, "c1")
	require.NoError(t, err)
	c2.PrizePool = 20
	require.NoError(t, second.Contests().Update(ctx, c2))

	require.NoError(t, first.commit())
	require.ErrorIs(t, second.commit(), common.ErrVersionConflict)

	got, err := s.Repositories().Contests().Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.PrizePool)
}

func TestCommit_DetectsConcurrentCreateOfReadRecord(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	tx := newTx(s)
	_, err := tx.Contests().Get(ctx, "c1")
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, tx.Entries().Create(ctx, &models.Entry{ID: "e1", ContestID: "c1"}))

	seedContest(t, s, "c1")

	require.ErrorIs(t, tx.commit(), common.ErrVersionConflict)
}

func TestRepositories_ReadViewRejectsWrites(t *testing.T) {
	s := newTestStore()
	err := s.Repositories().Contests().Create(context.Background(), &models.Contest{ID: "c1"})
	require.ErrorIs(t, err, errReadOnly)
}

func TestCreate_DuplicateID(t *testing.T) {
	s := newTestStore()
	seedContest(t, s, "c1")

	err := s.WithTx(context.Background(), func(ctx context.Context, r repomanager.Repositories) error {
		return r.Contests().Create(ctx, &models.Contest{ID: "c1"})
	})
	require.ErrorIs(t, err, errDuplicateID)
}

func TestUpdate_MissingRecord(t *testing.T) {
	s := newTestStore()
	err := s.WithTx(context.Background(), func(ctx context.Context, r repomanager.Repositories) error {
		return r.Credits().Update(ctx, &models.VoteCredit{ID: "nope"})
	})
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate_OnlyTouchesMutableFields(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	seedContest(t, s, "c1")

	err := s.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		return r.Contests().Update(ctx, &models.Contest{ID: "c1", Title: "hijacked", Owner: "mallory", Closed: true})
	})
	require.NoError(t, err)

	c, err := s.Repositories().Contests().Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "t", c.Title)
	assert.Equal(t, models.Identity("alice"), c.Owner)
	assert.True(t, c.Closed)
}

func TestListByContest_OrdersByVotes(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	seedContest(t, s, "c1")
	seedContest(t, s, "c2")

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	err := s.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		for _, e := range []*models.Entry{
			{ID: "a", ContestID: "c1", Votes: 1, CreatedAt: base},
			{ID: "b", ContestID: "c1", Votes: 7, CreatedAt: base.Add(time.Second)},
			{ID: "c", ContestID: "c1", Votes: 1, CreatedAt: base.Add(-time.Second)},
			{ID: "d", ContestID: "c2", Votes: 100, CreatedAt: base},
		} {
			if err := r.Entries().Create(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	got, err := s.Repositories().Entries().ListByContest(ctx, "c1")
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)
}

func TestListByFunder(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	seedContest(t, s, "c1")

	err := s.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.Credits().Create(ctx, &models.VoteCredit{ID: "v1", ContestID: "c1", Funder: "dave"}); err != nil {
			return err
		}
		return r.Credits().Create(ctx, &models.VoteCredit{ID: "v2", ContestID: "c1", Funder: "erin"})
	})
	require.NoError(t, err)

	got, err := s.Repositories().Credits().ListByFunder(ctx, "dave")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].ID)
}

func TestWithTx_ConcurrentIncrementsAreSerialized(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	seedContest(t, s, "c1")

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
				c, err := r.Contests().GetForUpdate(ctx, "c1")
				if err != nil {
					return err
				}
				c.PrizePool++
				return r.Contests().Update(ctx, c)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := s.Repositories().Contests().Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), c.PrizePool)
}
