package domain

import "errors"

var (
	// Declaration errors
	ErrValidation          = errors.New("invalid declaration")
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")

	// Ledger errors
	ErrLedgerUnavailable = errors.New("payment ledger unavailable")
	ErrInvalidTenant     = errors.New("invalid tenant")

	// Closure store errors
	ErrAlreadyClosed      = errors.New("business day already closed")
	ErrClosureNotFound    = errors.New("closure not found")
	ErrPersist            = errors.New("failed to persist closure")
	ErrUnresolvedConflict = errors.New("closure conflict could not be resolved")
	ErrInvalidDateRange   = errors.New("invalid date range")
)
