package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jakubzver/footboard/internal/infrastructure/repository/memory"
	"github.com/jakubzver/footboard/internal/platform/logging"
)

type stubProvider struct {
	fixtures      []FixtureRecord
	standings     []StandingRecord
	fixturesErr   error
	standingsErr  error
	fixtureCalls  int
	standingCalls int
}

func (p *stubProvider) FetchFixtures(_ context.Context, _ int64, _ int) ([]FixtureRecord, error) {
	p.fixtureCalls++
	if p.fixturesErr != nil {
		return nil, p.fixturesErr
	}
	return p.fixtures, nil
}

func (p *stubProvider) FetchStandings(_ context.Context, _ int64, _ int) ([]StandingRecord, error) {
	p.standingCalls++
	if p.standingsErr != nil {
		return nil, p.standingsErr
	}
	return p.standings, nil
}

type recordingNotifier struct {
	calls []string
}

func (n *recordingNotifier) NotifySyncCompleted(_ context.Context, leagueExternalID int64, season int, matchCount int) {
	n.calls = append(n.calls, fmt.Sprintf("%d:%d:%d", leagueExternalID, season, matchCount))
}

func intPtr(v int) *int { return &v }

func newSyncFixture(provider *stubProvider, notifier SyncNotifier) (*SyncService, *memory.LeagueRepository, *memory.TeamRepository, *memory.MatchRepository, *memory.StandingRepository) {
	leagueRepo := memory.NewLeagueRepository(nil)
	teamRepo := memory.NewTeamRepository(nil)
	matchRepo := memory.NewMatchRepository(nil)
	standingRepo := memory.NewStandingRepository(nil)
	svc := NewSyncService(provider, leagueRepo, teamRepo, matchRepo, standingRepo, notifier, logging.NewNop())
	return svc, leagueRepo, teamRepo, matchRepo, standingRepo
}

// premierLeagueFixtures returns three finished matches between teams 101, 102
// and 103. Arsenal earns 4 points from results (a win and a draw).
func premierLeagueFixtures(base time.Time) []FixtureRecord {
	return []FixtureRecord{
		{
			FixtureID: 9001, Date: base, LeagueName: "Premier League",
			HomeTeam: "Arsenal", HomeTeamID: 101, AwayTeam: "Chelsea", AwayTeamID: 102,
			HomeScore: intPtr(2), AwayScore: intPtr(0), Status: "FT",
		},
		{
			FixtureID: 9002, Date: base.Add(7 * 24 * time.Hour), LeagueName: "Premier League",
			HomeTeam: "Tottenham", HomeTeamID: 103, AwayTeam: "Arsenal", AwayTeamID: 101,
			HomeScore: intPtr(1), AwayScore: intPtr(1), Status: "FT",
		},
		{
			FixtureID: 9003, Date: base.Add(14 * 24 * time.Hour), LeagueName: "Premier League",
			HomeTeam: "Chelsea", HomeTeamID: 102, AwayTeam: "Tottenham", AwayTeamID: 103,
			HomeScore: intPtr(3), AwayScore: intPtr(1), Status: "FT",
		},
	}
}

func TestSyncService_Sync_FullPass(t *testing.T) {
	base := time.Date(2025, 8, 10, 14, 0, 0, 0, time.UTC)
	provider := &stubProvider{
		fixtures: premierLeagueFixtures(base),
		standings: []StandingRecord{
			// Arsenal's official total is two points short of its results,
			// which is exactly what a points deduction looks like.
			{TeamID: 101, TeamName: "Arsenal", Position: 2, Points: 2, Played: 2, GoalsFor: 3, GoalsAgainst: 1, GoalDifference: 2, Form: "WD"},
			{TeamID: 102, TeamName: "Chelsea", Position: 1, Points: 3, Played: 2, GoalsFor: 3, GoalsAgainst: 3, Form: "LW"},
			{TeamID: 103, TeamName: "Tottenham", Position: 3, Points: 1, Played: 2, GoalsFor: 2, GoalsAgainst: 4, GoalDifference: -2, Form: "DL"},
		},
	}
	notifier := &recordingNotifier{}
	svc, leagueRepo, teamRepo, _, standingRepo := newSyncFixture(provider, notifier)

	result, err := svc.Sync(context.Background(), 39, 2025, nil)
	require.NoError(t, err)
	require.Equal(t, 2025, result.Season)
	require.Equal(t, 3, result.TotalMatches)
	require.Equal(t, 3, result.Upserted)
	require.Equal(t, 0, result.Skipped)
	require.Equal(t, 3, result.Standings)

	lg, found, err := leagueRepo.GetByExternalID(context.Background(), 39)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Premier League", lg.Name)

	teams, err := teamRepo.ListByLeague(context.Background(), lg.ID)
	require.NoError(t, err)
	require.Len(t, teams, 3)

	var arsenalID int64
	for _, item := range teams {
		if item.ExternalID == 101 {
			arsenalID = item.ID
		}
	}
	require.NotZero(t, arsenalID)

	row, ok, err := standingRepo.GetByTeam(context.Background(), lg.ID, 2025, arsenalID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, row.Points)
	require.Equal(t, 2, row.PointsDeduction)
	require.Equal(t, 2, row.GoalDifference)

	require.Equal(t, []string{"39:2025:3"}, notifier.calls)
}

func TestSyncService_Sync_DeductionClampedWhenResultsLag(t *testing.T) {
	base := time.Date(2025, 8, 10, 14, 0, 0, 0, time.UTC)
	provider := &stubProvider{
		fixtures: premierLeagueFixtures(base),
		standings: []StandingRecord{
			// Provider credits more points than our stored results add up
			// to. That is stale local data, not a negative deduction.
			{TeamID: 101, TeamName: "Arsenal", Position: 1, Points: 7, Played: 3, GoalsFor: 5, GoalsAgainst: 1, GoalDifference: 4},
		},
	}
	svc, leagueRepo, teamRepo, _, standingRepo := newSyncFixture(provider, nil)

	_, err := svc.Sync(context.Background(), 39, 2025, nil)
	require.NoError(t, err)

	lg, _, err := leagueRepo.GetByExternalID(context.Background(), 39)
	require.NoError(t, err)
	teams, err := teamRepo.ListByLeague(context.Background(), lg.ID)
	require.NoError(t, err)

	for _, item := range teams {
		if item.ExternalID != 101 {
			continue
		}
		row, ok, err := standingRepo.GetByTeam(context.Background(), lg.ID, 2025, item.ID)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, 0, row.PointsDeduction)
		return
	}
	t.Fatal("arsenal not stored")
}

func TestSyncService_SyncMatches_BatchesAndProgress(t *testing.T) {
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	fixtures := make([]FixtureRecord, 0, 120)
	for i := 0; i < 120; i++ {
		home := int64(201 + i%20)
		away := int64(221 + i%20)
		fixtures = append(fixtures, FixtureRecord{
			FixtureID:  int64(5000 + i),
			Date:       base.Add(time.Duration(i) * time.Hour),
			LeagueName: "Championship",
			HomeTeam:   fmt.Sprintf("Home %d", home), HomeTeamID: home,
			AwayTeam: fmt.Sprintf("Away %d", away), AwayTeamID: away,
			Status: "NS",
		})
	}
	provider := &stubProvider{fixtures: fixtures}
	svc, _, _, matchRepo, _ := newSyncFixture(provider, nil)

	var progress [][2]int
	result, err := svc.SyncMatches(context.Background(), 40, 2025, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	require.NoError(t, err)
	require.Equal(t, 120, result.Upserted)
	require.Equal(t, [][2]int{{50, 120}, {100, 120}, {120, 120}}, progress)

	stored, err := matchRepo.CountByLeagueSeason(context.Background(), result.LeagueID, 2025)
	require.NoError(t, err)
	require.Equal(t, 120, stored)
}

func TestSyncService_SyncMatches_SkipsBadRowsWithoutAborting(t *testing.T) {
	base := time.Date(2025, 8, 10, 14, 0, 0, 0, time.UTC)
	fixtures := premierLeagueFixtures(base)
	fixtures = append(fixtures,
		// Unknown away side, cannot resolve a stored team for it.
		FixtureRecord{FixtureID: 9100, Date: base, HomeTeam: "Arsenal", HomeTeamID: 101, AwayTeam: "Ghost", AwayTeamID: 0, Status: "NS"},
	)
	provider := &stubProvider{fixtures: fixtures}
	svc, _, _, matchRepo, _ := newSyncFixture(provider, nil)

	result, err := svc.SyncMatches(context.Background(), 39, 2025, nil)
	require.NoError(t, err)
	require.Equal(t, 3, result.Upserted)
	require.Equal(t, 1, result.Skipped)

	stored, err := matchRepo.CountByLeagueSeason(context.Background(), result.LeagueID, 2025)
	require.NoError(t, err)
	require.Equal(t, 3, stored)
}

func TestSyncService_Sync_Idempotent(t *testing.T) {
	base := time.Date(2025, 8, 10, 14, 0, 0, 0, time.UTC)
	provider := &stubProvider{
		fixtures: premierLeagueFixtures(base),
		standings: []StandingRecord{
			{TeamID: 101, TeamName: "Arsenal", Position: 1, Points: 4, Played: 2, GoalsFor: 3, GoalsAgainst: 1, GoalDifference: 2},
		},
	}
	svc, leagueRepo, teamRepo, matchRepo, _ := newSyncFixture(provider, nil)

	first, err := svc.Sync(context.Background(), 39, 2025, nil)
	require.NoError(t, err)
	second, err := svc.Sync(context.Background(), 39, 2025, nil)
	require.NoError(t, err)
	require.Equal(t, first.LeagueID, second.LeagueID)

	lg, _, err := leagueRepo.GetByExternalID(context.Background(), 39)
	require.NoError(t, err)

	teams, err := teamRepo.ListByLeague(context.Background(), lg.ID)
	require.NoError(t, err)
	require.Len(t, teams, 3)

	stored, err := matchRepo.CountByLeagueSeason(context.Background(), lg.ID, 2025)
	require.NoError(t, err)
	require.Equal(t, 3, stored)
}

func TestSyncService_Sync_EmptyFixturesIsNoop(t *testing.T) {
	provider := &stubProvider{}
	notifier := &recordingNotifier{}
	svc, leagueRepo, _, _, _ := newSyncFixture(provider, notifier)

	result, err := svc.Sync(context.Background(), 39, 2025, nil)
	require.NoError(t, err)
	require.Equal(t, SyncResult{Season: 2025}, result)

	// With nothing to reconcile, standings are not fetched, no league row is
	// created and no completion notification goes out.
	require.Zero(t, provider.standingCalls)
	require.Empty(t, notifier.calls)

	_, found, err := leagueRepo.GetByExternalID(context.Background(), 39)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSyncService_Sync_ProviderErrorWrapped(t *testing.T) {
	provider := &stubProvider{fixturesErr: errors.New("upstream down")}
	svc, _, _, _, _ := newSyncFixture(provider, nil)

	_, err := svc.Sync(context.Background(), 39, 2025, nil)
	require.ErrorIs(t, err, ErrSyncFailed)
	require.ErrorContains(t, err, "upstream down")
}

func TestSyncService_Sync_RejectsBadArguments(t *testing.T) {
	svc, _, _, _, _ := newSyncFixture(&stubProvider{}, nil)

	_, err := svc.Sync(context.Background(), 0, 2025, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Sync(context.Background(), 39, 0, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSyncService_Sync_EmptyStandingsIsNotFatal(t *testing.T) {
	base := time.Date(2025, 8, 10, 14, 0, 0, 0, time.UTC)
	provider := &stubProvider{fixtures: premierLeagueFixtures(base)}
	svc, _, _, _, _ := newSyncFixture(provider, nil)

	result, err := svc.Sync(context.Background(), 39, 2025, nil)
	require.NoError(t, err)
	require.Equal(t, 0, result.Standings)
}

func TestExpectedPointsFromResults(t *testing.T) {
	base := time.Date(2025, 8, 10, 14, 0, 0, 0, time.UTC)
	provider := &stubProvider{fixtures: premierLeagueFixtures(base)}
	svc, _, teamRepo, matchRepo, _ := newSyncFixture(provider, nil)

	result, err := svc.SyncMatches(context.Background(), 39, 2025, nil)
	require.NoError(t, err)

	teams, err := teamRepo.ListByLeague(context.Background(), result.LeagueID)
	require.NoError(t, err)

	expectedByExternalID := map[int64]int{101: 4, 102: 3, 103: 1}
	for _, item := range teams {
		finished, err := matchRepo.ListFinishedByTeam(context.Background(), item.ID, 2025)
		require.NoError(t, err)
		require.Equal(t, expectedByExternalID[item.ExternalID], expectedPointsFromResults(finished, item.ID), "team %d", item.ExternalID)
	}
}
