// Package payments defines the funds-transfer collaborator used when a
// contest is funded, and an in-process ledger implementation of it.
package payments

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/contestfund/internal/server/models"
)

var (
	// ErrInsufficientFunds is returned when the funder's balance is too low.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrKeyReused is returned when a key is replayed with different terms.
	ErrKeyReused = errors.New("transfer key reused with different terms")
	// ErrInvalidTransfer is returned for non-positive amounts or empty keys.
	ErrInvalidTransfer = errors.New("invalid transfer")
)

// Transfer moves Amount from the funder's external balance into a contest's
// prize pool.
type Transfer struct {
	// Key makes the transfer idempotent: repeating a Transfer with the same
	// key and terms is a no-op.
	Key       string
	From      models.Identity
	ContestID string
	Amount    int64
}

// Gateway is the external payment rail.
type Gateway interface {
	Transfer(ctx context.Context, t Transfer) error
	// Reverse undoes a completed transfer. Unknown keys are a no-op.
	Reverse(ctx context.Context, key string) error
}
