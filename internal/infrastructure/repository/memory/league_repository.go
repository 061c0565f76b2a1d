package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jakubzver/footboard/internal/domain/league"
)

type LeagueRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]league.League
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	r := &LeagueRepository{rows: make(map[int64]league.League)}
	for _, item := range leagues {
		if item.ID > r.nextID {
			r.nextID = item.ID
		}
		r.rows[item.ExternalID] = item
	}
	return r
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.rows))
	for _, item := range r.rows {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *LeagueRepository) GetByExternalID(_ context.Context, externalID int64) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.rows[externalID]
	return item, ok, nil
}

func (r *LeagueRepository) Ensure(_ context.Context, l league.League) (league.League, error) {
	if err := l.Validate(); err != nil {
		return league.League{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.rows[l.ExternalID]; ok {
		existing.Name = l.Name
		r.rows[l.ExternalID] = existing
		return existing, nil
	}

	r.nextID++
	l.ID = r.nextID
	r.rows[l.ExternalID] = l
	return l, nil
}
