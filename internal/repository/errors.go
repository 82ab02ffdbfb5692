package repository

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or is not owned by the caller
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken is returned when another account already uses the email
	ErrEmailTaken = errors.New("email already registered")

	// ErrStatusConflict is returned when a booking is not in the expected status
	ErrStatusConflict = errors.New("booking status conflict")

	// ErrAlreadyRated is returned when a transaction already carries a rating
	ErrAlreadyRated = errors.New("transaction already rated")

	// ErrTokenRevoked is returned for refresh tokens that were rotated or revoked
	ErrTokenRevoked = errors.New("refresh token revoked")
)
