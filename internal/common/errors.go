// Package common defines shared constants and sentinel errors used across
// the contest service layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrVersionConflict = errors.New("version conflict")

	// Authorization errors.
	ErrorUnauthorized    = errors.New("unauthorized")
	ErrUnauthorizedVoter = errors.New("unauthorized voter")
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")

	// Business-rule violations. None of these succeed on retry.
	ErrContestClosed     = errors.New("the contest is closed")
	ErrContestMismatch   = errors.New("contest id does not match")
	ErrInsufficientVotes = errors.New("insufficient votes")
	ErrAlreadyClosed     = errors.New("contest already closed")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidInput      = errors.New("invalid input")

	// Funds transfer collaborator rejected or failed the transfer.
	ErrPaymentFailed = errors.New("payment failed")
)
