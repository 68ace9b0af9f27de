package contests

import (
	"context"

	"github.com/dmitrijs2005/contestfund/internal/server/models"
)

// Repository persists Contest records. GetForUpdate must be called before
// Update inside a unit of work so the row is locked (or version-checked)
// until commit.
type Repository interface {
	Create(ctx context.Context, contest *models.Contest) error
	Get(ctx context.Context, id string) (*models.Contest, error)
	GetForUpdate(ctx context.Context, id string) (*models.Contest, error)
	Update(ctx context.Context, contest *models.Contest) error
}
