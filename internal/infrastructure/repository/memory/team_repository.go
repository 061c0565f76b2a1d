package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jakubzver/footboard/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[team.Key]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	r := &TeamRepository{rows: make(map[team.Key]team.Team)}
	for _, item := range teams {
		if item.ID > r.nextID {
			r.nextID = item.ID
		}
		r.rows[item.Key()] = item
	}
	return r
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueID int64) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.rows))
	for _, item := range r.rows {
		if item.LeagueID == leagueID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.rows {
		if item.ID == teamID {
			return item, true, nil
		}
	}
	return team.Team{}, false, nil
}

func (r *TeamRepository) EnsureMany(_ context.Context, leagueID int64, teams []team.Team) (map[team.Key]team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[team.Key]team.Team, len(teams))
	for _, item := range teams {
		item.LeagueID = leagueID
		if err := item.Validate(); err != nil {
			return nil, err
		}

		key := item.Key()
		if existing, ok := r.rows[key]; ok {
			existing.Name = item.Name
			r.rows[key] = existing
			out[key] = existing
			continue
		}

		r.nextID++
		item.ID = r.nextID
		r.rows[key] = item
		out[key] = item
	}
	return out, nil
}
