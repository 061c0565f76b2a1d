package match

import (
	"context"
	"time"
)

// Repository describes match persistence needs from use cases.
type Repository interface {
	ListByLeagueSeason(ctx context.Context, leagueID int64, season int) ([]Match, error)
	// ListFinishedByTeam returns the team's finished matches in kickoff order,
	// oldest first, so callers can replay the season chronologically.
	ListFinishedByTeam(ctx context.Context, teamID int64, season int) ([]Match, error)
	// ListHeadToHead returns finished matches between the two teams across all
	// seasons, newest first.
	ListHeadToHead(ctx context.Context, teamA, teamB int64) ([]Match, error)
	GetByExternalID(ctx context.Context, externalID int64) (Match, bool, error)
	// UpsertBatch writes one batch inside a single transaction. Rows keyed on
	// external id; replays update score and status in place.
	UpsertBatch(ctx context.Context, matches []Match) error
	CountByLeagueSeason(ctx context.Context, leagueID int64, season int) (int, error)
	// CountUnfinishedBefore counts matches that kicked off before the cutoff
	// yet still carry a non-final status. Non-zero means stored data lags the
	// real world.
	CountUnfinishedBefore(ctx context.Context, leagueID int64, season int, cutoff time.Time) (int, error)
	// NextKickoff returns the earliest kickoff at or after from, or ok=false
	// when no future match is stored.
	NextKickoff(ctx context.Context, leagueID int64, season int, from time.Time) (time.Time, bool, error)
}
