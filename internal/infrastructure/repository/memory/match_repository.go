package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jakubzver/footboard/internal/domain/match"
)

type MatchRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]match.Match
}

func NewMatchRepository(matches []match.Match) *MatchRepository {
	r := &MatchRepository{rows: make(map[int64]match.Match)}
	for _, item := range matches {
		if item.ID == 0 {
			r.nextID++
			item.ID = r.nextID
		} else if item.ID > r.nextID {
			r.nextID = item.ID
		}
		r.rows[item.ExternalID] = item
	}
	return r
}

func (r *MatchRepository) ListByLeagueSeason(_ context.Context, leagueID int64, season int) ([]match.Match, error) {
	return r.filter(func(m match.Match) bool {
		return m.LeagueID == leagueID && m.Season == season
	}, byDateAsc), nil
}

func (r *MatchRepository) ListFinishedByTeam(_ context.Context, teamID int64, season int) ([]match.Match, error) {
	return r.filter(func(m match.Match) bool {
		return m.Season == season && m.IsFinished() && (m.HomeTeamID == teamID || m.AwayTeamID == teamID)
	}, byDateAsc), nil
}

func (r *MatchRepository) ListHeadToHead(_ context.Context, teamA, teamB int64) ([]match.Match, error) {
	return r.filter(func(m match.Match) bool {
		if !m.IsFinished() {
			return false
		}
		return (m.HomeTeamID == teamA && m.AwayTeamID == teamB) ||
			(m.HomeTeamID == teamB && m.AwayTeamID == teamA)
	}, byDateDesc), nil
}

func (r *MatchRepository) GetByExternalID(_ context.Context, externalID int64) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.rows[externalID]
	return item, ok, nil
}

func (r *MatchRepository) UpsertBatch(_ context.Context, matches []match.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range matches {
		if err := item.Validate(); err != nil {
			return err
		}
		if existing, ok := r.rows[item.ExternalID]; ok {
			item.ID = existing.ID
		} else {
			r.nextID++
			item.ID = r.nextID
		}
		r.rows[item.ExternalID] = item
	}
	return nil
}

func (r *MatchRepository) CountByLeagueSeason(_ context.Context, leagueID int64, season int) (int, error) {
	return len(r.filter(func(m match.Match) bool {
		return m.LeagueID == leagueID && m.Season == season
	}, nil)), nil
}

func (r *MatchRepository) CountUnfinishedBefore(_ context.Context, leagueID int64, season int, cutoff time.Time) (int, error) {
	return len(r.filter(func(m match.Match) bool {
		return m.LeagueID == leagueID && m.Season == season && !m.IsFinished() && m.Date.Before(cutoff)
	}, nil)), nil
}

func (r *MatchRepository) NextKickoff(_ context.Context, leagueID int64, season int, from time.Time) (time.Time, bool, error) {
	upcoming := r.filter(func(m match.Match) bool {
		return m.LeagueID == leagueID && m.Season == season && !m.Date.Before(from)
	}, byDateAsc)
	if len(upcoming) == 0 {
		return time.Time{}, false, nil
	}
	return upcoming[0].Date, true, nil
}

func (r *MatchRepository) filter(keep func(match.Match) bool, less func(a, b match.Match) bool) []match.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.rows))
	for _, item := range r.rows {
		if keep(item) {
			out = append(out, item)
		}
	}
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

func byDateAsc(a, b match.Match) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.ID < b.ID
}

func byDateDesc(a, b match.Match) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.ID > b.ID
}
