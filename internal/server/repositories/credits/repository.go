package credits

import (
	"context"

	"github.com/dmitrijs2005/contestfund/internal/server/models"
)

// Repository persists VoteCredit records.
type Repository interface {
	Create(ctx context.Context, credit *models.VoteCredit) error
	Get(ctx context.Context, id string) (*models.VoteCredit, error)
	GetForUpdate(ctx context.Context, id string) (*models.VoteCredit, error)
	Update(ctx context.Context, credit *models.VoteCredit) error
	ListByFunder(ctx context.Context, funder models.Identity) ([]*models.VoteCredit, error)
}
