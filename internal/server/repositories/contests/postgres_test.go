package contests

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var contestColumns = []string{"id", "title", "description", "deadline", "prize_pool", "owner", "closed", "created_at"}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	deadline := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO contests .* RETURNING created_at`).
		WithArgs("c1", "title", "desc", deadline, int64(0), "owner", false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	c := &models.Contest{ID: "c1", Title: "title", Description: "desc", Deadline: deadline, Owner: "owner"}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, created, c.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO contests`).WillReturnError(errors.New("db is down"))

	err := repo.Create(context.Background(), &models.Contest{ID: "c1"})
	if err == nil || !regexp.MustCompile(`db error: .*db is down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGet_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	deadline := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, title, description, deadline, prize_pool, owner, closed, created_at\s+FROM contests WHERE id = \$1$`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(contestColumns).
			AddRow("c1", "t", "d", deadline, int64(5_000_000), "alice", true, deadline))

	c, err := repo.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
	assert.Equal(t, int64(5_000_000), c.PrizePool)
	assert.Equal(t, models.Identity("alice"), c.Owner)
	assert.True(t, c.Closed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUpdate_LocksRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM contests WHERE id = \$1 FOR UPDATE`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(contestColumns).AddRow("c1", "t", "d", now, int64(0), "alice", false, now))

	_, err := repo.GetForUpdate(context.Background(), "c1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM contests WHERE id`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name    string
		result  driver.Result
		execErr error
		wantErr error
		errRe   string
	}{
		{name: "ok", result: sqlmock.NewResult(0, 1)},
		{name: "missing row", result: sqlmock.NewResult(0, 0), wantErr: common.ErrorNotFound},
		{name: "exec error", execErr: errors.New("boom"), errRe: `db error: .*boom`},
		{name: "rows affected error", result: sqlmock.NewErrorResult(errors.New("rows-err")), errRe: `rows affected error: .*rows-err`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			exp := mock.ExpectExec(`UPDATE contests SET prize_pool = \$2, closed = \$3 WHERE id = \$1`).
				WithArgs("c1", int64(7), true)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(tt.result)
			}

			err := repo.Update(context.Background(), &models.Contest{ID: "c1", PrizePool: 7, Closed: true})
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.errRe != "":
				require.Error(t, err)
				require.Regexp(t, tt.errRe, err.Error())
			default:
				require.NoError(t, err)
			}
		})
	}
}
