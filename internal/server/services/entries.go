package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/dmitrijs2005/contestfund/internal/logging"
	"github.com/dmitrijs2005/contestfund/internal/server/auth"
	"github.com/dmitrijs2005/contestfund/internal/server/config"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type EntryService struct {
	repomanager          repomanager.RepositoryManager
	maxContentLinkLength int
	log                  logging.Logger
}

func NewEntryService(m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *EntryService {
	return &EntryService{
		repomanager:          m,
		maxContentLinkLength: cfg.MaxContentLinkLength,
		log:                  l.With("module", "entries"),
	}
}

// Submit adds an entry to an open contest. The contest row is locked so a
// concurrent Close cannot interleave with the check.
func (s *EntryService) Submit(ctx context.Context, contestID string, creator models.Identity, contentLink string) (string, error) {
	if err := auth.RequireIdentity(creator); err != nil {
		return "", err
	}
	if err := checkLength("content link", contentLink, s.maxContentLinkLength); err != nil {
		return "", err
	}

	entry := &models.Entry{
		ID:          uuid.NewString(),
		ContestID:   contestID,
		Creator:     creator,
		ContentLink: contentLink,
	}

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		contest, err := repos.Contests().GetForUpdate(ctx, contestID)
		if err != nil {
			return err
		}
		if contest.Closed {
			return common.ErrContestClosed
		}
		e := *entry
		return repos.Entries().Create(ctx, &e)
	})
	if err != nil {
		s.log.Warn(ctx, "submit rejected", "contest_id", contestID, "creator", creator, "error", err)
		return "", err
	}

	s.log.Info(ctx, "entry submitted", "contest_id", contestID, "entry_id", entry.ID)
	return entry.ID, nil
}

func (s *EntryService) Get(ctx context.Context, entryID string) (*models.Entry, error) {
	return s.repomanager.Repositories().Entries().Get(ctx, entryID)
}

// ListByContest returns the contest's entries, most voted first.
func (s *EntryService) ListByContest(ctx context.Context, contestID string) ([]*models.Entry, error) {
	repos := s.repomanager.Repositories()
	if _, err := repos.Contests().Get(ctx, contestID); err != nil {
		return nil, err
	}
	list, err := repos.Entries().ListByContest(ctx, contestID)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}
	return list, nil
}
