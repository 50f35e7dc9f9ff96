package store

import "errors"

var (
	// ErrInvalidEmail is returned when a login email is not a valid address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrRateLimited is returned when a magic link was already issued for the
	// same email within the reissue cooldown.
	ErrRateLimited = errors.New("magic link recently issued")

	// ErrInvalidLink covers every verification failure: unknown token, email
	// mismatch, expiry, and reuse. Callers must not distinguish them.
	ErrInvalidLink = errors.New("invalid or expired link")
)
