package domain

import "errors"

var (
	// ErrNotFound means a requested player, account or league has no record.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRequest means the caller supplied malformed input, e.g. an
	// empty team or a self-forecast.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDataIntegrity means a stored row violates an invariant (non-positive
	// sigma, unknown league label). Fatal to the current request only.
	ErrDataIntegrity = errors.New("data integrity violation")
)
