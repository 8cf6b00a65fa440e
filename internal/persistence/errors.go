package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrAlreadyExists is returned when a unique column would be duplicated.
	ErrAlreadyExists = errors.New("persistence: already exists")
	// ErrConstraintViolation is returned when a write breaks a schema constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrInsufficientFunds is returned when a wallet debit would drive the
	// balance below zero. The check runs inside the debit transaction.
	ErrInsufficientFunds = errors.New("persistence: insufficient funds")
	// ErrBonusClaimed is returned when a welcome bonus claim is repeated.
	ErrBonusClaimed = errors.New("persistence: bonus already claimed")
)
