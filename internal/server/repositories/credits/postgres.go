// Package credits provides PostgreSQL-backed persistence for vote credits.
package credits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/dmitrijs2005/contestfund/internal/dbx"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
)

const selectCredit = `SELECT id, contest_id, funder, allocated, used, created_at FROM vote_credits`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.VoteCredit) error {
	query := `
		INSERT INTO vote_credits (id, contest_id, funder, allocated, used)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.ContestID, string(c.Funder), c.Allocated, c.Used).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.VoteCredit, error) {
	return r.get(ctx, selectCredit+" WHERE id = $1", id)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.VoteCredit, error) {
	return r.get(ctx, selectCredit+" WHERE id = $1 FOR UPDATE", id)
}

func (r *PostgresRepository) get(ctx context.Context, query string, id string) (*models.VoteCredit, error) {
	c, err := scanCredit(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// Update writes allocated and used. The CHECK constraints on the table
// reject negative values, the caller keeps their sum constant.
func (r *PostgresRepository) Update(ctx context.Context, c *models.VoteCredit) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vote_credits SET allocated = $2, used = $3 WHERE id = $1`, c.ID, c.Allocated, c.Used)
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

func (r *PostgresRepository) ListByFunder(ctx context.Context, funder models.Identity) ([]*models.VoteCredit, error) {
	rows, err := r.db.QueryContext(ctx, selectCredit+" WHERE funder = $1 ORDER BY created_at, id", string(funder))
	if err != nil {
		return nil, fmt.Errorf("failed to select credits: %w", err)
	}
	defer rows.Close()

	var result []*models.VoteCredit
	for rows.Next() {
		c, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCredit(s scanner) (*models.VoteCredit, error) {
	var (
		c      models.VoteCredit
		funder string
	)
	if err := s.Scan(&c.ID, &c.ContestID, &funder, &c.Allocated, &c.Used, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Funder = models.Identity(funder)
	return &c, nil
}
