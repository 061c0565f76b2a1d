package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/jakubzver/footboard/internal/domain/league"
	"github.com/jakubzver/footboard/internal/domain/match"
	"github.com/jakubzver/footboard/internal/domain/standing"
	"github.com/jakubzver/footboard/internal/domain/team"
	"github.com/jakubzver/footboard/internal/platform/logging"
)

// TableRow is one ranked league table entry. Points is the official total
// net of the deduction; PointsDeduction is carried so the UI can annotate it.
type TableRow struct {
	TeamID          int64
	TeamName        string
	Position        int
	Points          int
	PointsDeduction int
	Played          int
	GoalsFor        int
	GoalsAgainst    int
	GoalDifference  int
	Form            string
}

// ProjectionService derives table orderings and per-team points series from
// stored results.
type ProjectionService struct {
	leagueRepo   league.Repository
	teamRepo     team.Repository
	matchRepo    match.Repository
	standingRepo standing.Repository
	logger       *logging.Logger
}

func NewProjectionService(
	leagueRepo league.Repository,
	teamRepo team.Repository,
	matchRepo match.Repository,
	standingRepo standing.Repository,
	logger *logging.Logger,
) *ProjectionService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ProjectionService{
		leagueRepo:   leagueRepo,
		teamRepo:     teamRepo,
		matchRepo:    matchRepo,
		standingRepo: standingRepo,
		logger:       logger,
	}
}

// BuildTable returns the ranked league table for one (league, season).
func (s *ProjectionService) BuildTable(ctx context.Context, leagueExternalID int64, season int) ([]TableRow, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionService.BuildTable")
	defer span.End()

	if leagueExternalID <= 0 || season <= 0 {
		return nil, fmt.Errorf("%w: league id and season must be greater than zero", ErrInvalidInput)
	}

	lg, found, err := s.leagueRepo.GetByExternalID(ctx, leagueExternalID)
	if err != nil {
		return nil, fmt.Errorf("resolve league external_id=%d: %w", leagueExternalID, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: league %d", ErrNotFound, leagueExternalID)
	}

	standings, err := s.standingRepo.ListByLeagueSeason(ctx, lg.ID, season)
	if err != nil {
		return nil, fmt.Errorf("list standings league=%d season=%d: %w", leagueExternalID, season, err)
	}
	if len(standings) == 0 {
		return nil, fmt.Errorf("%w: no table for league %d season %d", ErrNotFound, leagueExternalID, season)
	}

	teams, err := s.teamRepo.ListByLeague(ctx, lg.ID)
	if err != nil {
		return nil, fmt.Errorf("list teams league=%d: %w", leagueExternalID, err)
	}
	nameByID := make(map[int64]string, len(teams))
	for _, t := range teams {
		nameByID[t.ID] = t.Name
	}

	rows := make([]TableRow, 0, len(standings))
	for _, item := range standings {
		rows = append(rows, TableRow{
			TeamID:          item.TeamID,
			TeamName:        nameByID[item.TeamID],
			Points:          item.Points,
			PointsDeduction: item.PointsDeduction,
			Played:          item.Played,
			GoalsFor:        item.GoalsFor,
			GoalsAgainst:    item.GoalsAgainst,
			GoalDifference:  item.GoalDifference,
			Form:            item.Form,
		})
	}

	return RankTeams(rows), nil
}

// ProjectTeamPoints returns the cumulative points series for a team across
// the season. Index 0 is the pre-season snapshot: zero, or minus the
// deduction when one applies, so charts show the penalty before any games.
// Each later entry is the running total after one more finished match.
func (s *ProjectionService) ProjectTeamPoints(ctx context.Context, teamID int64, season int) ([]int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionService.ProjectTeamPoints")
	defer span.End()

	if teamID <= 0 || season <= 0 {
		return nil, fmt.Errorf("%w: team id and season must be greater than zero", ErrInvalidInput)
	}

	t, found, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("resolve team id=%d: %w", teamID, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: team %d", ErrNotFound, teamID)
	}

	deduction := 0
	if row, ok, err := s.standingRepo.GetByTeam(ctx, t.LeagueID, season, t.ID); err != nil {
		return nil, fmt.Errorf("read standing team=%d season=%d: %w", teamID, season, err)
	} else if ok {
		deduction = row.PointsDeduction
	}

	finished, err := s.matchRepo.ListFinishedByTeam(ctx, t.ID, season)
	if err != nil {
		return nil, fmt.Errorf("list finished matches team=%d season=%d: %w", teamID, season, err)
	}

	return ProjectPoints(finished, t.ID, deduction), nil
}

// ProjectPoints replays finished matches in order and returns the cumulative
// points series, starting from minus the deduction. Matches without a known
// result are skipped without emitting an entry.
func ProjectPoints(matches []match.Match, teamID int64, deduction int) []int {
	if deduction < 0 {
		deduction = 0
	}

	series := make([]int, 1, len(matches)+1)
	series[0] = -deduction

	total := -deduction
	for _, m := range matches {
		if !m.HasResult() {
			continue
		}

		var scored, conceded int
		switch teamID {
		case m.HomeTeamID:
			scored, conceded = *m.HomeScore, *m.AwayScore
		case m.AwayTeamID:
			scored, conceded = *m.AwayScore, *m.HomeScore
		default:
			continue
		}

		switch {
		case scored > conceded:
			total += 3
		case scored == conceded:
			total++
		}
		series = append(series, total)
	}

	return series
}

// TeamPointsSeries pairs a team with its cumulative points series.
type TeamPointsSeries struct {
	TeamID   int64
	TeamName string
	Points   []int
}

// TeamPositionSeries tracks one team's league position after each gameweek.
// Index 0 is the pre-season state.
type TeamPositionSeries struct {
	TeamID    int64
	TeamName  string
	Positions []int
}

// PositionTimeline replays the season and returns, for every team on the
// table, its position after each gameweek.
func (s *ProjectionService) PositionTimeline(ctx context.Context, leagueExternalID int64, season int) ([]TeamPositionSeries, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProjectionService.PositionTimeline")
	defer span.End()

	if leagueExternalID <= 0 || season <= 0 {
		return nil, fmt.Errorf("%w: league id and season must be greater than zero", ErrInvalidInput)
	}

	lg, found, err := s.leagueRepo.GetByExternalID(ctx, leagueExternalID)
	if err != nil {
		return nil, fmt.Errorf("resolve league external_id=%d: %w", leagueExternalID, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: league %d", ErrNotFound, leagueExternalID)
	}

	standings, err := s.standingRepo.ListByLeagueSeason(ctx, lg.ID, season)
	if err != nil {
		return nil, fmt.Errorf("list standings league=%d season=%d: %w", leagueExternalID, season, err)
	}
	if len(standings) == 0 {
		return nil, fmt.Errorf("%w: no table for league %d season %d", ErrNotFound, leagueExternalID, season)
	}

	teams, err := s.teamRepo.ListByLeague(ctx, lg.ID)
	if err != nil {
		return nil, fmt.Errorf("list teams league=%d: %w", leagueExternalID, err)
	}
	nameByID := make(map[int64]string, len(teams))
	for _, t := range teams {
		nameByID[t.ID] = t.Name
	}

	series := make([]TeamPointsSeries, len(standings))
	p := pool.New().WithErrors().WithContext(ctx)
	for idx, row := range standings {
		p.Go(func(ctx context.Context) error {
			finished, err := s.matchRepo.ListFinishedByTeam(ctx, row.TeamID, season)
			if err != nil {
				return fmt.Errorf("list finished matches team=%d season=%d: %w", row.TeamID, season, err)
			}
			series[idx] = TeamPointsSeries{
				TeamID:   row.TeamID,
				TeamName: nameByID[row.TeamID],
				Points:   ProjectPoints(finished, row.TeamID, row.PointsDeduction),
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return BuildPositionTimeline(series), nil
}

// BuildPositionTimeline ranks the point series per gameweek. A team that has
// played fewer games than the longest series keeps its latest total for the
// remaining gameweeks. Ties break by name so positions stay deterministic.
func BuildPositionTimeline(series []TeamPointsSeries) []TeamPositionSeries {
	maxLen := 0
	for _, s := range series {
		if len(s.Points) > maxLen {
			maxLen = len(s.Points)
		}
	}

	out := make([]TeamPositionSeries, len(series))
	for i, s := range series {
		out[i] = TeamPositionSeries{
			TeamID:    s.TeamID,
			TeamName:  s.TeamName,
			Positions: make([]int, maxLen),
		}
	}

	type gameweekEntry struct {
		idx    int
		points int
		name   string
	}

	for g := 0; g < maxLen; g++ {
		ranked := make([]gameweekEntry, 0, len(series))
		for i, s := range series {
			points := 0
			if len(s.Points) > 0 {
				j := g
				if j >= len(s.Points) {
					j = len(s.Points) - 1
				}
				points = s.Points[j]
			}
			ranked = append(ranked, gameweekEntry{idx: i, points: points, name: s.TeamName})
		}

		sort.SliceStable(ranked, func(a, b int) bool {
			if ranked[a].points != ranked[b].points {
				return ranked[a].points > ranked[b].points
			}
			return ranked[a].name < ranked[b].name
		})

		for pos, entry := range ranked {
			out[entry.idx].Positions[g] = pos + 1
		}
	}

	return out
}

// RankTeams orders rows by points, then goal difference, then goals scored,
// all descending, with team name as the stable final key, and rewrites
// positions to match the ordering.
func RankTeams(rows []TableRow) []TableRow {
	out := append([]TableRow(nil), rows...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].GoalDifference != out[j].GoalDifference {
			return out[i].GoalDifference > out[j].GoalDifference
		}
		if out[i].GoalsFor != out[j].GoalsFor {
			return out[i].GoalsFor > out[j].GoalsFor
		}
		return out[i].TeamName < out[j].TeamName
	})

	for idx := range out {
		out[idx].Position = idx + 1
	}
	return out
}
