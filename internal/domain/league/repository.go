package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	GetByExternalID(ctx context.Context, externalID int64) (League, bool, error)
	// Ensure inserts the league if its external id is unseen and returns the
	// stored row either way. Safe to call concurrently for the same league.
	Ensure(ctx context.Context, l League) (League, error)
}
