// Package memory provides an in-process RepositoryManager with optimistic
// transactions. A unit of work records the version of every record it reads
// and stages its writes; commit re-checks those versions under a short
// critical section and fails with common.ErrVersionConflict if another unit
// of work committed a change in between. Conflicts are retried.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/dmitrijs2005/contestfund/internal/dbx"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/contests"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/credits"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/entries"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/repomanager"
)

var (
	errReadOnly    = errors.New("write through read-only repositories")
	errDuplicateID = errors.New("duplicate id")
)

type recordKind uint8

const (
	kindContest recordKind = iota + 1
	kindEntry
	kindCredit
)

type recordKey struct {
	kind recordKind
	id   string
}

type versioned[T any] struct {
	value   T
	version uint64
}

// Store keeps contests, entries and credits in maps guarded by one RWMutex
// that is only held for single reads and for commit validation.
type Store struct {
	mu       sync.RWMutex
	contests map[string]versioned[models.Contest]
	entries  map[string]versioned[models.Entry]
	credits  map[string]versioned[models.VoteCredit]

	retry dbx.RetryPolicy
	now   func() time.Time
}

var _ repomanager.RepositoryManager = (*Store)(nil)

func NewStore(retry dbx.RetryPolicy) *Store {
	return &Store{
		contests: make(map[string]versioned[models.Contest]),
		entries:  make(map[string]versioned[models.Entry]),
		credits:  make(map[string]versioned[models.VoteCredit]),
		retry:    retry,
		now:      time.Now,
	}
}

// RunMigrations is a no-op; the in-memory schema needs no setup.
func (s *Store) RunMigrations(context.Context) error {
	return nil
}

// Repositories returns a read view. Writes through it fail.
func (s *Store) Repositories() repomanager.Repositories {
	t := newTx(s)
	t.readOnly = true
	return t
}

// WithTx runs fn against a fresh transaction and commits its staged writes.
func (s *Store) WithTx(ctx context.Context, fn repomanager.TxFunc) error {
	return dbx.WithRetry(ctx, s.retry, func(ctx context.Context) error {
		t := newTx(s)
		if err := fn(ctx, t); err != nil {
			return err
		}
		return t.commit()
	})
}

// version returns the committed version of a record, 0 if it does not exist.
// Callers hold s.mu.
func (s *Store) version(k recordKey) uint64 {
	switch k.kind {
	case kindContest:
		return s.contests[k.id].version
	case kindEntry:
		return s.entries[k.id].version
	case kindCredit:
		return s.credits[k.id].version
	}
	return 0
}

type tx struct {
	s        *Store
	readOnly bool

	seen     map[recordKey]uint64
	contests map[string]models.Contest
	entries  map[string]models.Entry
	credits  map[string]models.VoteCredit
}

func newTx(s *Store) *tx {
	return &tx{
		s:        s,
		seen:     make(map[recordKey]uint64),
		contests: make(map[string]models.Contest),
		entries:  make(map[string]models.Entry),
		credits:  make(map[string]models.VoteCredit),
	}
}

func (t *tx) Contests() contests.Repository { return contestRepo{t} }
func (t *tx) Entries() entries.Repository   { return entryRepo{t} }
func (t *tx) Credits() credits.Repository   { return creditRepo{t} }

// observe remembers the first version of a record seen by this transaction.
func (t *tx) observe(k recordKey, version uint64) {
	if _, ok := t.seen[k]; !ok {
		t.seen[k] = version
	}
}

func (t *tx) dirty() bool {
	return len(t.contests)+len(t.entries)+len(t.credits) > 0
}

func (t *tx) commit() error {
	if !t.dirty() {
		return nil
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for k, v := range t.seen {
		if t.s.version(k) != v {
			return fmt.Errorf("%w: record %s changed", common.ErrVersionConflict, k.id)
		}
	}

	for id, c := range t.contests {
		t.s.contests[id] = versioned[models.Contest]{value: c, version: t.s.contests[id].version + 1}
	}
	for id, e := range t.entries {
		t.s.entries[id] = versioned[models.Entry]{value: e, version: t.s.entries[id].version + 1}
	}
	for id, c := range t.credits {
		t.s.credits[id] = versioned[models.VoteCredit]{value: c, version: t.s.credits[id].version + 1}
	}
	return nil
}

func (t *tx) checkWritable() error {
	if t.readOnly {
		return errReadOnly
	}
	return nil
}

func (t *tx) stamp(created time.Time) time.Time {
	if created.IsZero() {
		return t.s.now().UTC()
	}
	return created
}

type contestRepo struct{ t *tx }

func (r contestRepo) Create(_ context.Context, c *models.Contest) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if _, err := r.get(c.ID); err == nil {
		return fmt.Errorf("contest %s: %w", c.ID, errDuplicateID)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	c.CreatedAt = r.t.stamp(c.CreatedAt)
	r.t.contests[c.ID] = *c
	return nil
}

func (r contestRepo) Get(_ context.Context, id string) (*models.Contest, error) {
	return r.get(id)
}

func (r contestRepo) GetForUpdate(_ context.Context, id string) (*models.Contest, error) {
	return r.get(id)
}

func (r contestRepo) get(id string) (*models.Contest, error) {
	if c, ok := r.t.contests[id]; ok {
		return &c, nil
	}
	r.t.s.mu.RLock()
	rec, ok := r.t.s.contests[id]
	r.t.s.mu.RUnlock()

	r.t.observe(recordKey{kindContest, id}, rec.version)
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := rec.value
	return &c, nil
}

func (r contestRepo) Update(_ context.Context, c *models.Contest) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	cur, err := r.get(c.ID)
	if err != nil {
		return err
	}
	cur.PrizePool = c.PrizePool
	cur.Closed = c.Closed
	r.t.contests[c.ID] = *cur
	return nil
}

type entryRepo struct{ t *tx }

func (r entryRepo) Create(_ context.Context, e *models.Entry) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if _, err := r.get(e.ID); err == nil {
		return fmt.Errorf("entry %s: %w", e.ID, errDuplicateID)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	e.CreatedAt = r.t.stamp(e.CreatedAt)
	r.t.entries[e.ID] = *e
	return nil
}

func (r entryRepo) Get(_ context.Context, id string) (*models.Entry, error) {
	return r.get(id)
}

func (r entryRepo) GetForUpdate(_ context.Context, id string) (*models.Entry, error) {
	return r.get(id)
}

func (r entryRepo) get(id string) (*models.Entry, error) {
	if e, ok := r.t.entries[id]; ok {
		return &e, nil
	}
	r.t.s.mu.RLock()
	rec, ok := r.t.s.entries[id]
	r.t.s.mu.RUnlock()

	r.t.observe(recordKey{kindEntry, id}, rec.version)
	if !ok {
		return nil, common.ErrorNotFound
	}
	e := rec.value
	return &e, nil
}

func (r entryRepo) Update(_ context.Context, e *models.Entry) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	cur, err := r.get(e.ID)
	if err != nil {
		return err
	}
	cur.Votes = e.Votes
	r.t.entries[e.ID] = *cur
	return nil
}

func (r entryRepo) ListByContest(_ context.Context, contestID string) ([]*models.Entry, error) {
	merged := make(map[string]models.Entry)

	r.t.s.mu.RLock()
	for id, rec := range r.t.s.entries {
		if rec.value.ContestID == contestID {
			merged[id] = rec.value
		}
	}
	r.t.s.mu.RUnlock()

	for id, e := range r.t.entries {
		if e.ContestID == contestID {
			merged[id] = e
		}
	}

	result := make([]*models.Entry, 0, len(merged))
	for _, e := range merged {
		result = append(result, &e)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Votes != b.Votes {
			return a.Votes > b.Votes
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return result, nil
}

type creditRepo struct{ t *tx }

func (r creditRepo) Create(_ context.Context, c *models.VoteCredit) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	if _, err := r.get(c.ID); err == nil {
		return fmt.Errorf("credit %s: %w", c.ID, errDuplicateID)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	c.CreatedAt = r.t.stamp(c.CreatedAt)
	r.t.credits[c.ID] = *c
	return nil
}

func (r creditRepo) Get(_ context.Context, id string) (*models.VoteCredit, error) {
	return r.get(id)
}

func (r creditRepo) GetForUpdate(_ context.Context, id string) (*models.VoteCredit, error) {
	return r.get(id)
}

func (r creditRepo) get(id string) (*models.VoteCredit, error) {
	if c, ok := r.t.credits[id]; ok {
		return &c, nil
	}
	r.t.s.mu.RLock()
	rec, ok := r.t.s.credits[id]
	r.t.s.mu.RUnlock()

	r.t.observe(recordKey{kindCredit, id}, rec.version)
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := rec.value
	return &c, nil
}

func (r creditRepo) Update(_ context.Context, c *models.VoteCredit) error {
	if err := r.t.checkWritable(); err != nil {
		return err
	}
	cur, err := r.get(c.ID)
	if err != nil {
		return err
	}
	cur.Allocated = c.Allocated
	cur.Used = c.Used
	r.t.credits[c.ID] = *cur
	return nil
}

func (r creditRepo) ListByFunder(_ context.Context, funder models.Identity) ([]*models.VoteCredit, error) {
	merged := make(map[string]models.VoteCredit)

	r.t.s.mu.RLock()
	for id, rec := range r.t.s.credits {
		if rec.value.Funder == funder {
			merged[id] = rec.value
		}
	}
	r.t.s.mu.RUnlock()

	for id, c := range r.t.credits {
		if c.Funder == funder {
			merged[id] = c
		}
	}

	result := make([]*models.VoteCredit, 0, len(merged))
	for _, c := range merged {
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
