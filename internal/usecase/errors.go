package usecase

import crerr "github.com/cockroachdb/errors"

// Sentinels matched by the HTTP layer with errors.Is.
var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrUnauthorized          = crerr.New("unauthorized")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
)
