package usecase

import "errors"

// Sentinel errors shared by the services. Handlers translate them into HTTP
// statuses, so wrap rather than replace them when adding detail.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrSyncFailed wraps any error raised while pulling provider data into
	// the store. Handlers map it to a generic message outside dev mode.
	ErrSyncFailed = errors.New("sync failed")
)
