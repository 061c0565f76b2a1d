package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jakubzver/footboard/internal/domain/standing"
)

type standingKey struct {
	season   int
	leagueID int64
	teamID   int64
}

type StandingRepository struct {
	mu   sync.RWMutex
	rows map[standingKey]standing.Standing
}

func NewStandingRepository(standings []standing.Standing) *StandingRepository {
	r := &StandingRepository{rows: make(map[standingKey]standing.Standing)}
	for _, item := range standings {
		r.rows[standingKey{item.Season, item.LeagueID, item.TeamID}] = item
	}
	return r
}

func (r *StandingRepository) ListByLeagueSeason(_ context.Context, leagueID int64, season int) ([]standing.Standing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]standing.Standing, 0, len(r.rows))
	for _, item := range r.rows {
		if item.LeagueID == leagueID && item.Season == season {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *StandingRepository) GetByTeam(_ context.Context, leagueID int64, season int, teamID int64) (standing.Standing, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.rows[standingKey{season, leagueID, teamID}]
	return item, ok, nil
}

func (r *StandingRepository) UpsertMany(_ context.Context, standings []standing.Standing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range standings {
		if err := item.Validate(); err != nil {
			return err
		}
		r.rows[standingKey{item.Season, item.LeagueID, item.TeamID}] = item
	}
	return nil
}

func (r *StandingRepository) MaxLastUpdated(_ context.Context, leagueID int64, season int) (time.Time, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest time.Time
	found := false
	for _, item := range r.rows {
		if item.LeagueID != leagueID || item.Season != season {
			continue
		}
		found = true
		if item.LastUpdated.After(latest) {
			latest = item.LastUpdated
		}
	}
	return latest, found, nil
}

func (r *StandingRepository) ListSeasons(_ context.Context, leagueID int64) ([]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[int]struct{})
	for _, item := range r.rows {
		if item.LeagueID == leagueID {
			seen[item.Season] = struct{}{}
		}
	}

	out := make([]int, 0, len(seen))
	for season := range seen {
		out = append(out, season)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}
