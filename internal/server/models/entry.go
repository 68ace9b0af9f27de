package models

import "time"

// Entry is a submission to a contest. Votes is the sum of every vote amount
// committed against it.
type Entry struct {
	ID          string
	ContestID   string
	Creator     Identity
	ContentLink string
	Votes       int64
	CreatedAt   time.Time
}
