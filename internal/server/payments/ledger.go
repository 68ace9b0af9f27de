package payments

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/contestfund/internal/server/models"
)

// Ledger is a Gateway that keeps account and prize pool balances in memory.
// Accounts that were never seen start with the opening balance.
type Ledger struct {
	mu       sync.Mutex
	opening  int64
	balances map[models.Identity]int64
	pools    map[string]int64
	applied  map[string]Transfer
}

var _ Gateway = (*Ledger)(nil)

func NewLedger(opening int64) *Ledger {
	return &Ledger{
		opening:  opening,
		balances: make(map[models.Identity]int64),
		pools:    make(map[string]int64),
		applied:  make(map[string]Transfer),
	}
}

// Deposit credits an account.
func (l *Ledger) Deposit(account models.Identity, amount int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] = l.balance(account) + amount
}

// Balance returns the account's available funds.
func (l *Ledger) Balance(account models.Identity) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance(account)
}

// PoolBalance returns the funds transferred into a contest.
func (l *Ledger) PoolBalance(contestID string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pools[contestID]
}

func (l *Ledger) balance(account models.Identity) int64 {
	if b, ok := l.balances[account]; ok {
		return b
	}
	return l.opening
}

func (l *Ledger) Transfer(_ context.Context, t Transfer) error {
	if t.Key == "" || t.Amount <= 0 {
		return ErrInvalidTransfer
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if prev, ok := l.applied[t.Key]; ok {
		if prev != t {
			return fmt.Errorf("%w: %s", ErrKeyReused, t.Key)
		}
		return nil
	}

	bal := l.balance(t.From)
	if bal < t.Amount {
		return ErrInsufficientFunds
	}
	l.balances[t.From] = bal - t.Amount
	l.pools[t.ContestID] += t.Amount
	l.applied[t.Key] = t
	return nil
}

func (l *Ledger) Reverse(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	t, ok := l.applied[key]
	if !ok {
		return nil
	}
	l.balances[t.From] = l.balance(t.From) + t.Amount
	l.pools[t.ContestID] -= t.Amount
	delete(l.applied, key)
	return nil
}
