package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnsupportedLeague     = errors.New("unsupported league")
	ErrRateLimited           = errors.New("rate limited by upstream")
	ErrUpstream              = errors.New("upstream provider error")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
