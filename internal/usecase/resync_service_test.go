package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jakubzver/footboard/internal/infrastructure/repository/memory"
	"github.com/jakubzver/footboard/internal/platform/logging"
)

// flakyProvider fails fixture fetches for one league and serves the rest.
type flakyProvider struct {
	inner       *stubProvider
	failLeague  int64
	failFetches int
}

func (p *flakyProvider) FetchFixtures(ctx context.Context, leagueExternalID int64, season int) ([]FixtureRecord, error) {
	if leagueExternalID == p.failLeague {
		p.failFetches++
		return nil, errors.New("provider rejected league")
	}
	return p.inner.FetchFixtures(ctx, leagueExternalID, season)
}

func (p *flakyProvider) FetchStandings(ctx context.Context, leagueExternalID int64, season int) ([]StandingRecord, error) {
	return p.inner.FetchStandings(ctx, leagueExternalID, season)
}

func TestResyncService_ResyncAll(t *testing.T) {
	base := time.Date(2025, 8, 10, 14, 0, 0, 0, time.UTC)
	provider := &flakyProvider{
		inner:      &stubProvider{fixtures: premierLeagueFixtures(base)},
		failLeague: 140,
	}

	leagueRepo := memory.NewLeagueRepository(nil)
	teamRepo := memory.NewTeamRepository(nil)
	matchRepo := memory.NewMatchRepository(nil)
	standingRepo := memory.NewStandingRepository(nil)
	syncSvc := NewSyncService(provider, leagueRepo, teamRepo, matchRepo, standingRepo, nil, logging.NewNop())
	svc := NewResyncService(syncSvc, nil, 2, logging.NewNop())

	outcomes, err := svc.ResyncAll(context.Background(), []ResyncTarget{
		{LeagueExternalID: 140, Season: 2025},
		{LeagueExternalID: 39, Season: 2025},
		{LeagueExternalID: 39, Season: 2025}, // duplicate collapses
		{LeagueExternalID: 0, Season: 2025},  // invalid drops
	})
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	require.Equal(t, ResyncTarget{LeagueExternalID: 39, Season: 2025}, outcomes[0].Target)
	require.NoError(t, outcomes[0].Err)
	require.Equal(t, 3, outcomes[0].Result.Upserted)

	require.Equal(t, ResyncTarget{LeagueExternalID: 140, Season: 2025}, outcomes[1].Target)
	require.ErrorIs(t, outcomes[1].Err, ErrSyncFailed)

	require.Equal(t, 1, provider.failFetches)
}

func TestResyncService_ResyncAll_NoTargets(t *testing.T) {
	svc := NewResyncService(nil, nil, 2, logging.NewNop())

	_, err := svc.ResyncAll(context.Background(), nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestResyncService_ResyncStale_SkipsFreshTargets(t *testing.T) {
	base := time.Date(2025, 8, 10, 14, 0, 0, 0, time.UTC)
	provider := &stubProvider{fixtures: premierLeagueFixtures(base)}

	leagueRepo := memory.NewLeagueRepository(nil)
	teamRepo := memory.NewTeamRepository(nil)
	matchRepo := memory.NewMatchRepository(nil)
	standingRepo := memory.NewStandingRepository(nil)
	syncSvc := NewSyncService(provider, leagueRepo, teamRepo, matchRepo, standingRepo, nil, logging.NewNop())

	staleness := NewStalenessService(leagueRepo, matchRepo, standingRepo, StalenessConfig{}, logging.NewNop())
	svc := NewResyncService(syncSvc, staleness, 2, logging.NewNop())

	// Nothing stored yet, so the target is stale and gets pulled.
	outcomes, err := svc.ResyncStale(context.Background(), []ResyncTarget{{LeagueExternalID: 39, Season: 2025}})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	require.NoError(t, outcomes[0].Err)
	require.Equal(t, 3, outcomes[0].Result.Upserted)
	require.Equal(t, 1, provider.fixtureCalls)
}

func TestResyncService_ResyncStale_RequiresStalenessService(t *testing.T) {
	svc := NewResyncService(nil, nil, 2, logging.NewNop())

	_, err := svc.ResyncStale(context.Background(), []ResyncTarget{{LeagueExternalID: 39, Season: 2025}})
	require.ErrorIs(t, err, ErrInvalidInput)
}
