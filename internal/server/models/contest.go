// Package models defines server-side records persisted by the contest service.
package models

import "time"

// Identity is an authenticated caller identity. Two identities are the same
// principal iff they are equal.
type Identity string

// Contest is a funded competition. PrizePool only grows and Closed only goes
// from false to true.
type Contest struct {
	ID          string
	Title       string
	Description string
	// Deadline is advisory; nothing closes a contest automatically.
	Deadline  time.Time
	PrizePool int64
	Owner     Identity
	Closed    bool
	CreatedAt time.Time
}
