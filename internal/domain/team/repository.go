package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	ListByLeague(ctx context.Context, leagueID int64) ([]Team, error)
	GetByID(ctx context.Context, teamID int64) (Team, bool, error)
	// EnsureMany inserts any teams whose (external id, league) pair is unseen
	// and returns every requested team with its stored id. Concurrent syncs of
	// the same league may race on creation; implementations resolve the race
	// by insert-on-conflict-do-nothing followed by a re-select.
	EnsureMany(ctx context.Context, leagueID int64, teams []Team) (map[Key]Team, error)
}
