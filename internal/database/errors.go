package database

import (
	"errors"
)

// Sentinel errors surfaced by repositories so services can branch on storage
// preconditions without string matching.
var (
	// ErrSeatConflict means a seat missed its expected prior status; the
	// whole batch was rolled back.
	ErrSeatConflict = errors.New("seat status conflict")

	// ErrInsufficientFunds means a guarded wallet debit found less balance
	// than the amount requested.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
)
