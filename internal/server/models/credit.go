package models

import "time"

// VoteCredit is a funder's spendable voting budget in one contest.
// Allocated + Used never changes after issuance.
type VoteCredit struct {
	ID        string
	ContestID string
	Funder    Identity
	Allocated int64
	Used      int64
	CreatedAt time.Time
}

// Issued returns the credit originally granted.
func (c *VoteCredit) Issued() int64 {
	return c.Allocated + c.Used
}
