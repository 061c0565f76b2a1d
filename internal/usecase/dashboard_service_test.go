package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jakubzver/footboard/internal/domain/league"
	"github.com/jakubzver/footboard/internal/domain/match"
	"github.com/jakubzver/footboard/internal/domain/standing"
	"github.com/jakubzver/footboard/internal/domain/team"
	"github.com/jakubzver/footboard/internal/infrastructure/repository/memory"
	"github.com/jakubzver/footboard/internal/platform/cache"
	"github.com/jakubzver/footboard/internal/platform/logging"
)

func newDashboardFixture(t *testing.T) (*DashboardService, time.Time) {
	t.Helper()

	base := time.Date(2025, 8, 10, 14, 0, 0, 0, time.UTC)
	leagues := []league.League{
		{ID: 1, ExternalID: 39, Name: "Premier League"},
		{ID: 2, ExternalID: 140, Name: "La Liga"},
	}
	teams := []team.Team{
		{ID: 10, ExternalID: 101, LeagueID: 1, Name: "Arsenal"},
		{ID: 11, ExternalID: 102, LeagueID: 1, Name: "Chelsea"},
		{ID: 12, ExternalID: 103, LeagueID: 1, Name: "Tottenham"},
	}
	matches := []match.Match{
		finishedMatch(1, 9001, base, 10, 11, 2, 0),
		finishedMatch(2, 9002, base.Add(7*24*time.Hour), 12, 10, 1, 1),
		{
			ID: 3, ExternalID: 9003, Date: base.Add(14 * 24 * time.Hour), Season: 2025, LeagueID: 1,
			HomeTeamID: 10, AwayTeamID: 12, Status: match.StatusNotStarted,
		},
		// An older meeting from a previous season counts for head to head.
		{
			ID: 4, ExternalID: 8001, Date: base.Add(-365 * 24 * time.Hour), Season: 2024, LeagueID: 1,
			HomeTeamID: 11, AwayTeamID: 10, HomeScore: intPtr(3), AwayScore: intPtr(1), Status: match.StatusFinished,
		},
	}
	standings := []standing.Standing{
		{Season: 2025, LeagueID: 1, TeamID: 10, Position: 1, Points: 2, PointsDeduction: 2, Played: 2, GoalsFor: 3, GoalsAgainst: 1, GoalDifference: 2, Form: "WD", LastUpdated: base},
		{Season: 2025, LeagueID: 1, TeamID: 11, Position: 2, Points: 0, Played: 1, GoalsFor: 0, GoalsAgainst: 2, GoalDifference: -2, Form: "L", LastUpdated: base},
		{Season: 2024, LeagueID: 1, TeamID: 10, Position: 5, Points: 60, Played: 38, LastUpdated: base.Add(-300 * 24 * time.Hour)},
	}

	svc := NewDashboardService(
		memory.NewLeagueRepository(leagues),
		memory.NewTeamRepository(teams),
		memory.NewMatchRepository(matches),
		memory.NewStandingRepository(standings),
		cache.NewStore(time.Minute),
		logging.NewNop(),
	)
	return svc, base
}

func TestDashboardService_GetTeamSummary(t *testing.T) {
	svc, base := newDashboardFixture(t)

	summary, err := svc.GetTeamSummary(context.Background(), 10, 2025)
	require.NoError(t, err)
	require.Equal(t, "Arsenal", summary.TeamName)
	require.Equal(t, int64(101), summary.TeamExternalID)
	require.Equal(t, int64(1), summary.LeagueID)
	require.Equal(t, 1, summary.Position)
	require.Equal(t, 2, summary.Points)
	require.Equal(t, 2, summary.PointsDeduction)
	require.Equal(t, "WD", summary.Form)

	require.Len(t, summary.Matches, 2)

	first := summary.Matches[0]
	require.Equal(t, int64(1), first.MatchID)
	require.Equal(t, 1, first.Gameweek)
	require.True(t, first.Home)
	require.Equal(t, "Chelsea", first.Opponent)
	require.Equal(t, 2, *first.TeamScore)
	require.Equal(t, 0, *first.OpponentScore)
	require.Equal(t, "W", first.Result)
	// A win from a starting total of -2 lands on 1.
	require.Equal(t, 1, first.CumulativeTotal)
	require.True(t, first.Date.Equal(base))

	second := summary.Matches[1]
	require.Equal(t, 2, second.Gameweek)
	require.False(t, second.Home)
	require.Equal(t, "Tottenham", second.Opponent)
	require.Equal(t, "D", second.Result)
	require.Equal(t, 2, second.CumulativeTotal)

	require.Equal(t, []int{-2, 1, 2}, summary.PointsSeries)
}

func TestDashboardService_GetTeamSummary_NoStandingRow(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	summary, err := svc.GetTeamSummary(context.Background(), 12, 2025)
	require.NoError(t, err)
	require.Equal(t, "Tottenham", summary.TeamName)
	require.Zero(t, summary.Position)
	require.Zero(t, summary.PointsDeduction)
	require.Equal(t, []int{0, 1}, summary.PointsSeries)
}

func TestBuildMatchHistory_ScorelessFinishedMatchCarriesTotal(t *testing.T) {
	base := time.Date(2025, 8, 10, 14, 0, 0, 0, time.UTC)
	names := map[int64]string{10: "Arsenal", 11: "Chelsea", 12: "Tottenham"}
	finished := []match.Match{
		finishedMatch(1, 9001, base, 10, 11, 2, 0),
		// Finished per the provider but the score has not settled yet.
		{ID: 2, ExternalID: 9002, Date: base.Add(7 * 24 * time.Hour), Season: 2025, LeagueID: 1, HomeTeamID: 12, AwayTeamID: 10, Status: match.StatusFinished},
		finishedMatch(3, 9003, base.Add(14*24*time.Hour), 10, 12, 1, 1),
	}

	records, series := buildMatchHistory(finished, 10, 2, names)
	require.Len(t, records, 3)
	// The unsettled match adds no series entry and carries the total forward.
	require.Equal(t, []int{-2, 1, 2}, series)
	require.Equal(t, 1, records[0].CumulativeTotal)
	require.Equal(t, 2, records[1].Gameweek)
	require.Empty(t, records[1].Result)
	require.Equal(t, 1, records[1].CumulativeTotal)
	require.Equal(t, 2, records[2].CumulativeTotal)
}

func TestDashboardService_GetTeamSummary_UnknownTeam(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	_, err := svc.GetTeamSummary(context.Background(), 99, 2025)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDashboardService_GetTeamDataWithMatches(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	summaries, err := svc.GetTeamDataWithMatches(context.Background(), 39, 2025)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Ranked: Arsenal on 2 points, Chelsea on 0.
	require.Equal(t, "Arsenal", summaries[0].TeamName)
	require.Equal(t, int64(101), summaries[0].TeamExternalID)
	require.Equal(t, 1, summaries[0].Position)
	require.Equal(t, []int{-2, 1, 2}, summaries[0].PointsSeries)
	require.Len(t, summaries[0].Matches, 2)
	require.Equal(t, 2, summaries[0].Matches[1].Gameweek)
	require.Equal(t, 2, summaries[0].Matches[1].CumulativeTotal)

	require.Equal(t, "Chelsea", summaries[1].TeamName)
	require.Equal(t, int64(102), summaries[1].TeamExternalID)
	require.Equal(t, 2, summaries[1].Position)
	require.Equal(t, []int{0, 0}, summaries[1].PointsSeries)
	require.Len(t, summaries[1].Matches, 1)
	require.Equal(t, "L", summaries[1].Matches[0].Result)
	require.Equal(t, 0, summaries[1].Matches[0].CumulativeTotal)
}

func TestDashboardService_GetTeamDataWithMatches_UnknownLeague(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	_, err := svc.GetTeamDataWithMatches(context.Background(), 999, 2025)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDashboardService_GetTeamDataWithMatches_EmptySeason(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	_, err := svc.GetTeamDataWithMatches(context.Background(), 39, 1990)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDashboardService_HeadToHead(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	out, err := svc.HeadToHead(context.Background(), 10, 11)
	require.NoError(t, err)
	require.Equal(t, "Arsenal", out.TeamOneName)
	require.Equal(t, "Chelsea", out.TeamTwoName)
	require.Equal(t, 1, out.TeamOneWins)
	require.Equal(t, 1, out.TeamTwoWins)
	require.Equal(t, 0, out.Draws)

	// Newest first, scored from Arsenal's side.
	require.Len(t, out.Matches, 2)
	require.Equal(t, int64(1), out.Matches[0].MatchID)
	require.Equal(t, "W", out.Matches[0].Result)
	require.Equal(t, int64(4), out.Matches[1].MatchID)
	require.Equal(t, "L", out.Matches[1].Result)
	require.False(t, out.Matches[1].Home)
}

func TestDashboardService_HeadToHead_SameTeamRejected(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	_, err := svc.HeadToHead(context.Background(), 10, 10)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDashboardService_ListLeagues(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	leagues, err := svc.ListLeagues(context.Background())
	require.NoError(t, err)
	require.Len(t, leagues, 2)

	// Second read comes from the cache and must match.
	again, err := svc.ListLeagues(context.Background())
	require.NoError(t, err)
	require.Equal(t, leagues, again)
}

func TestDashboardService_ListSeasons(t *testing.T) {
	svc, _ := newDashboardFixture(t)

	seasons, err := svc.ListSeasons(context.Background(), 39)
	require.NoError(t, err)
	require.Equal(t, []int{2025, 2024}, seasons)

	_, err = svc.ListSeasons(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}
