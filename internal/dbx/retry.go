package dbx

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/contestfund/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
)

// PostgreSQL SQLSTATE codes that mean "run the whole transaction again".
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
)

// RetryPolicy bounds how often a conflicting unit of work is re-run.
type RetryPolicy struct {
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy keeps retries short: contention is limited to one or two
// records per transaction.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 5, BaseDelay: 5 * time.Millisecond, MaxDelay: 200 * time.Millisecond}
}

// IsRetryable reports whether err is a transient write conflict, either an
// optimistic version conflict or a PostgreSQL serialization/deadlock abort.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, common.ErrVersionConflict) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
	}
	return false
}

// WithRetry runs fn and re-runs it with exponential backoff while it fails
// with a retryable error. Any other error (or success) is returned as is.
// When the policy is exhausted the last conflict error is returned.
func WithRetry(ctx context.Context, p RetryPolicy, fn func(ctx context.Context) error) error {
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Millisecond
	}
	b := retry.NewExponential(p.BaseDelay)
	b = retry.WithJitterPercent(20, b)
	if p.MaxDelay > 0 {
		b = retry.WithCappedDuration(p.MaxDelay, b)
	}
	b = retry.WithMaxRetries(p.MaxRetries, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := fn(ctx)
		if IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}
