// Package services implements the contest accounting operations: opening and
// closing contests, funding them in exchange for vote credits, submitting
// entries and spending credits on entries. Every mutating operation runs as a
// single unit of work through repomanager.RepositoryManager.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/dmitrijs2005/contestfund/internal/logging"
	"github.com/dmitrijs2005/contestfund/internal/server/auth"
	"github.com/dmitrijs2005/contestfund/internal/server/config"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type ContestService struct {
	repomanager          repomanager.RepositoryManager
	maxTitleLength       int
	maxDescriptionLength int
	log                  logging.Logger
}

func NewContestService(m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *ContestService {
	return &ContestService{
		repomanager:          m,
		maxTitleLength:       cfg.MaxTitleLength,
		maxDescriptionLength: cfg.MaxDescriptionLength,
		log:                  l.With("module", "contests"),
	}
}

// Create opens a contest owned by the caller with an empty prize pool.
func (s *ContestService) Create(ctx context.Context, owner models.Identity, title, description string, deadline time.Time) (string, error) {
	if err := auth.RequireIdentity(owner); err != nil {
		return "", err
	}
	if err := checkLength("title", title, s.maxTitleLength); err != nil {
		return "", err
	}
	if err := checkLength("description", description, s.maxDescriptionLength); err != nil {
		return "", err
	}

	contest := &models.Contest{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Deadline:    deadline.UTC(),
		Owner:       owner,
	}

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		c := *contest
		return repos.Contests().Create(ctx, &c)
	})
	if err != nil {
		s.log.Error(ctx, "create contest failed", "owner", owner, "error", err)
		return "", fmt.Errorf("error creating contest: %w", err)
	}

	s.log.Info(ctx, "contest created", "contest_id", contest.ID, "owner", owner)
	return contest.ID, nil
}

// Close marks the contest closed. Only the owner may close it, and only once.
// Closing moves no funds.
func (s *ContestService) Close(ctx context.Context, contestID string, caller models.Identity) error {
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		contest, err := repos.Contests().GetForUpdate(ctx, contestID)
		if err != nil {
			return err
		}
		if err := auth.RequireOwner(caller, contest.Owner, common.ErrorUnauthorized); err != nil {
			return err
		}
		if contest.Closed {
			return common.ErrAlreadyClosed
		}
		contest.Closed = true
		return repos.Contests().Update(ctx, contest)
	})
	if err != nil {
		s.log.Warn(ctx, "close contest rejected", "contest_id", contestID, "caller", caller, "error", err)
		return err
	}

	s.log.Info(ctx, "contest closed", "contest_id", contestID)
	return nil
}

func (s *ContestService) Get(ctx context.Context, contestID string) (*models.Contest, error) {
	return s.repomanager.Repositories().Contests().Get(ctx, contestID)
}

// checkLength enforces a byte bound on stored text. A non-positive bound
// disables the check.
func checkLength(field, value string, limit int) error {
	if limit > 0 && len(value) > limit {
		return fmt.Errorf("%s exceeds %d bytes: %w", field, limit, common.ErrInvalidInput)
	}
	return nil
}
