package services

import (
	"context"

	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/dmitrijs2005/contestfund/internal/logging"
	"github.com/dmitrijs2005/contestfund/internal/server/auth"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/repomanager"
)

type VotingService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewVotingService(m repomanager.RepositoryManager, l logging.Logger) *VotingService {
	return &VotingService{
		repomanager: m,
		log:         l.With("module", "voting"),
	}
}

// CastVote spends amount of the voter's credit on an entry of the same
// contest. Checks run in a fixed order: both records must exist, they must
// belong to the same contest, the voter must own the credit, and the credit
// must cover the amount. Whether the contest is closed is not checked.
//
// The entry is locked before the credit in every call, so concurrent votes
// cannot deadlock each other. A zero amount passes every check and changes
// nothing.
func (s *VotingService) CastVote(ctx context.Context, entryID, creditID string, voter models.Identity, amount int64) error {
	if amount < 0 {
		return common.ErrInvalidAmount
	}

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		entry, err := repos.Entries().GetForUpdate(ctx, entryID)
		if err != nil {
			return err
		}
		credit, err := repos.Credits().GetForUpdate(ctx, creditID)
		if err != nil {
			return err
		}

		if entry.ContestID != credit.ContestID {
			return common.ErrContestMismatch
		}
		if err := auth.RequireOwner(voter, credit.Funder, common.ErrUnauthorizedVoter); err != nil {
			return err
		}
		if credit.Allocated < amount {
			return common.ErrInsufficientVotes
		}
		if amount == 0 {
			return nil
		}

		entry.Votes += amount
		credit.Allocated -= amount
		credit.Used += amount

		if err := repos.Entries().Update(ctx, entry); err != nil {
			return err
		}
		return repos.Credits().Update(ctx, credit)
	})
	if err != nil {
		s.log.Warn(ctx, "vote rejected",
			"entry_id", entryID, "credit_id", creditID, "voter", voter, "amount", amount, "error", err)
		return err
	}

	s.log.Debug(ctx, "vote cast", "entry_id", entryID, "credit_id", creditID, "amount", amount)
	return nil
}
