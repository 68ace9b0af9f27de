// Package contests provides PostgreSQL-backed persistence for contests.
package contests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/dmitrijs2005/contestfund/internal/dbx"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
)

const selectContest = `SELECT id, title, description, deadline, prize_pool, owner, closed, created_at
		FROM contests WHERE id = $1`

// PostgresRepository implements contest storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new contest and fills in its CreatedAt.
func (r *PostgresRepository) Create(ctx context.Context, c *models.Contest) error {
	query := `
		INSERT INTO contests (id, title, description, deadline, prize_pool, owner, closed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		c.ID, c.Title, c.Description, c.Deadline, c.PrizePool, string(c.Owner), c.Closed).Scan(&c.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Get returns the contest with the given id or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Contest, error) {
	return r.get(ctx, selectContest, id)
}

// GetForUpdate is Get plus a row lock held until the transaction ends.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Contest, error) {
	return r.get(ctx, selectContest+" FOR UPDATE", id)
}

func (r *PostgresRepository) get(ctx context.Context, query string, id string) (*models.Contest, error) {
	var (
		c     models.Contest
		owner string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Description, &c.Deadline, &c.PrizePool, &owner, &c.Closed, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.Owner = models.Identity(owner)
	return &c, nil
}

// Update writes the mutable fields of a contest: prize pool and closed flag.
func (r *PostgresRepository) Update(ctx context.Context, c *models.Contest) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contests SET prize_pool = $2, closed = $3 WHERE id = $1`,
		c.ID, c.PrizePool, c.Closed)
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
