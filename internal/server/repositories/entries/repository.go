package entries

import (
	"context"

	"github.com/dmitrijs2005/contestfund/internal/server/models"
)

// Repository persists Entry records.
type Repository interface {
	Create(ctx context.Context, entry *models.Entry) error
	Get(ctx context.Context, id string) (*models.Entry, error)
	GetForUpdate(ctx context.Context, id string) (*models.Entry, error)
	Update(ctx context.Context, entry *models.Entry) error
	// ListByContest returns a contest's entries, most voted first.
	ListByContest(ctx context.Context, contestID string) ([]*models.Entry, error)
}
