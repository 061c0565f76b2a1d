package standing

import (
	"context"
	"time"
)

// Repository describes standing persistence needs from use cases.
type Repository interface {
	// ListByLeagueSeason returns rows ordered by position ascending.
	ListByLeagueSeason(ctx context.Context, leagueID int64, season int) ([]Standing, error)
	GetByTeam(ctx context.Context, leagueID int64, season int, teamID int64) (Standing, bool, error)
	// UpsertMany replaces each team's row for the (league, season) keyed on
	// (season, league_id, team_id).
	UpsertMany(ctx context.Context, standings []Standing) error
	// MaxLastUpdated returns the newest last_updated across the table rows,
	// or ok=false when the table has never been synced.
	MaxLastUpdated(ctx context.Context, leagueID int64, season int) (time.Time, bool, error)
	ListSeasons(ctx context.Context, leagueID int64) ([]int, error)
}
