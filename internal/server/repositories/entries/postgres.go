// Package entries provides PostgreSQL-backed persistence for contest entries.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/dmitrijs2005/contestfund/internal/dbx"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
)

const selectEntry = `SELECT id, contest_id, creator, content_link, votes, created_at FROM entries`

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Entry) error {
	query := `
		INSERT INTO entries (id, contest_id, creator, content_link, votes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.ID, e.ContestID, string(e.Creator), e.ContentLink, e.Votes).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Entry, error) {
	return r.get(ctx, selectEntry+" WHERE id = $1", id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Entry, error) {
	return r.get(ctx, selectEntry+" WHERE id = $1 FOR UPDATE", id)
}

func (r *PostgresRepository) get(ctx context.Context, query string, id string) (*models.Entry, error) {
	e, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// Update writes the vote tally, the only mutable field of an entry.
func (r *PostgresRepository) Update(ctx context.Context, e *models.Entry) error {
	res, err := r.db.ExecContext(ctx, `UPDATE entries SET votes = $2 WHERE id = $1`, e.ID, e.Votes)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListByContest(ctx context.Context, contestID string) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		selectEntry+" WHERE contest_id = $1 ORDER BY votes DESC, created_at, id", contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	var (
		e       models.Entry
		creator string
	)
	if err := s.Scan(&e.ID, &e.ContestID, &creator, &e.ContentLink, &e.Votes, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Creator = models.Identity(creator)
	return &e, nil
}
