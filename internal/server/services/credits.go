package services

import (
	"context"
	"fmt"
	"math"

	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/dmitrijs2005/contestfund/internal/logging"
	"github.com/dmitrijs2005/contestfund/internal/server/auth"
	"github.com/dmitrijs2005/contestfund/internal/server/config"
	"github.com/dmitrijs2005/contestfund/internal/server/models"
	"github.com/dmitrijs2005/contestfund/internal/server/payments"
	"github.com/dmitrijs2005/contestfund/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type CreditService struct {
	repomanager  repomanager.RepositoryManager
	gateway      payments.Gateway
	exchangeRate int64
	log          logging.Logger
}

func NewCreditService(m repomanager.RepositoryManager, g payments.Gateway, cfg *config.Config, l logging.Logger) *CreditService {
	return &CreditService{
		repomanager:  m,
		gateway:      g,
		exchangeRate: cfg.ExchangeRate,
		log:          l.With("module", "credits"),
	}
}

// Fund moves amount from the funder into the contest's prize pool and issues
// amount / exchangeRate vote credits. Closed contests can still be funded.
//
// The transfer runs inside the unit of work, keyed by the new credit id, so a
// retried attempt replays it as a no-op. If the unit of work ultimately fails
// after the transfer went through, the transfer is reversed.
func (s *CreditService) Fund(ctx context.Context, contestID string, funder models.Identity, amount int64) (string, error) {
	if err := auth.RequireIdentity(funder); err != nil {
		return "", err
	}
	if amount <= 0 {
		return "", common.ErrInvalidAmount
	}

	credit := &models.VoteCredit{
		ID:        uuid.NewString(),
		ContestID: contestID,
		Funder:    funder,
		Allocated: amount / s.exchangeRate,
	}
	transfer := payments.Transfer{Key: credit.ID, From: funder, ContestID: contestID, Amount: amount}
	transferred := false

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		contest, err := repos.Contests().GetForUpdate(ctx, contestID)
		if err != nil {
			return err
		}
		if contest.PrizePool > math.MaxInt64-amount {
			return fmt.Errorf("prize pool overflow: %w", common.ErrInvalidAmount)
		}
		contest.PrizePool += amount
		if err := repos.Contests().Update(ctx, contest); err != nil {
			return err
		}

		c := *credit
		if err := repos.Credits().Create(ctx, &c); err != nil {
			return err
		}

		if err := s.gateway.Transfer(ctx, transfer); err != nil {
			return fmt.Errorf("%w: %w", common.ErrPaymentFailed, err)
		}
		transferred = true
		return nil
	})
	if err != nil {
		if transferred {
			if rerr := s.gateway.Reverse(context.WithoutCancel(ctx), transfer.Key); rerr != nil {
				s.log.Error(ctx, "reverse transfer failed", "key", transfer.Key, "error", rerr)
			}
		}
		s.log.Warn(ctx, "fund rejected", "contest_id", contestID, "funder", funder, "amount", amount, "error", err)
		return "", err
	}

	s.log.Info(ctx, "contest funded",
		"contest_id", contestID, "credit_id", credit.ID, "amount", amount, "allocated", credit.Allocated)
	return credit.ID, nil
}

func (s *CreditService) Get(ctx context.Context, creditID string) (*models.VoteCredit, error) {
	return s.repomanager.Repositories().Credits().Get(ctx, creditID)
}

// ListByFunder returns every credit issued to funder across all contests.
func (s *CreditService) ListByFunder(ctx context.Context, funder models.Identity) ([]*models.VoteCredit, error) {
	if err := auth.RequireIdentity(funder); err != nil {
		return nil, err
	}
	return s.repomanager.Repositories().Credits().ListByFunder(ctx, funder)
}
