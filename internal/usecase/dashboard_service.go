package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/jakubzver/footboard/internal/domain/league"
	"github.com/jakubzver/footboard/internal/domain/match"
	"github.com/jakubzver/footboard/internal/domain/standing"
	"github.com/jakubzver/footboard/internal/domain/team"
	"github.com/jakubzver/footboard/internal/platform/cache"
	"github.com/jakubzver/footboard/internal/platform/logging"
)

// MatchRecord is one match from a single team's point of view.
type MatchRecord struct {
	MatchID int64
	Date    time.Time
	// Gameweek is the 1-based position of the match in the team's own
	// season sequence, not the calendar round.
	Gameweek      int
	Home          bool
	Opponent      string
	OpponentID    int64
	TeamScore     *int
	OpponentScore *int
	Status        string
	// Result is "W", "D" or "L" for finished matches with a known score,
	// empty otherwise.
	Result string
	// CumulativeTotal is the team's deduction-adjusted running points total
	// after this match. A match without a known score carries the previous
	// total forward.
	CumulativeTotal int
}

// TeamSummary is the dashboard payload for one team in one season.
type TeamSummary struct {
	TeamID          int64
	TeamExternalID  int64
	TeamName        string
	LeagueID        int64
	Season          int
	Position        int
	Points          int
	PointsDeduction int
	Played          int
	GoalsFor        int
	GoalsAgainst    int
	GoalDifference  int
	Form            string
	Matches         []MatchRecord
	PointsSeries    []int
}

type HeadToHeadSummary struct {
	TeamOneID   int64
	TeamOneName string
	TeamTwoID   int64
	TeamTwoName string
	TeamOneWins int
	TeamTwoWins int
	Draws       int
	// Matches are newest first, scored from team one's point of view.
	Matches []MatchRecord
}

const dashboardLoadWorkers = 8

// DashboardService serves read paths for the dashboard. League and season
// lists are cached; per-team loads fan out concurrently.
type DashboardService struct {
	leagueRepo   league.Repository
	teamRepo     team.Repository
	matchRepo    match.Repository
	standingRepo standing.Repository
	cache        *cache.Store
	logger       *logging.Logger
}

func NewDashboardService(
	leagueRepo league.Repository,
	teamRepo team.Repository,
	matchRepo match.Repository,
	standingRepo standing.Repository,
	cacheStore *cache.Store,
	logger *logging.Logger,
) *DashboardService {
	if logger == nil {
		logger = logging.Default()
	}
	if cacheStore == nil {
		cacheStore = cache.NewStore(time.Minute)
	}

	return &DashboardService{
		leagueRepo:   leagueRepo,
		teamRepo:     teamRepo,
		matchRepo:    matchRepo,
		standingRepo: standingRepo,
		cache:        cacheStore,
		logger:       logger,
	}
}

func (s *DashboardService) ListLeagues(ctx context.Context) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.ListLeagues")
	defer span.End()

	value, err := s.cache.GetOrLoad(ctx, "leagues", func(ctx context.Context) (any, error) {
		return s.leagueRepo.List(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	leagues, ok := value.([]league.League)
	if !ok {
		return nil, fmt.Errorf("unexpected cached league payload type %T", value)
	}
	return leagues, nil
}

func (s *DashboardService) ListSeasons(ctx context.Context, leagueExternalID int64) ([]int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.ListSeasons")
	defer span.End()

	if leagueExternalID <= 0 {
		return nil, fmt.Errorf("%w: league id must be greater than zero", ErrInvalidInput)
	}

	lg, found, err := s.leagueRepo.GetByExternalID(ctx, leagueExternalID)
	if err != nil {
		return nil, fmt.Errorf("resolve league external_id=%d: %w", leagueExternalID, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: league %d", ErrNotFound, leagueExternalID)
	}

	key := fmt.Sprintf("seasons:%d", leagueExternalID)
	value, err := s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.standingRepo.ListSeasons(ctx, lg.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("list seasons league=%d: %w", leagueExternalID, err)
	}

	seasons, ok := value.([]int)
	if !ok {
		return nil, fmt.Errorf("unexpected cached season payload type %T", value)
	}
	return seasons, nil
}

// GetTeamSummary loads the team's table row and its season matches in
// parallel and folds them into one summary.
func (s *DashboardService) GetTeamSummary(ctx context.Context, teamID int64, season int) (TeamSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.GetTeamSummary")
	defer span.End()

	if teamID <= 0 || season <= 0 {
		return TeamSummary{}, fmt.Errorf("%w: team id and season must be greater than zero", ErrInvalidInput)
	}

	t, found, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return TeamSummary{}, fmt.Errorf("resolve team id=%d: %w", teamID, err)
	}
	if !found {
		return TeamSummary{}, fmt.Errorf("%w: team %d", ErrNotFound, teamID)
	}

	var (
		row      standing.Standing
		hasRow   bool
		finished []match.Match
		teams    []team.Team
	)

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		row, hasRow, err = s.standingRepo.GetByTeam(ctx, t.LeagueID, season, t.ID)
		if err != nil {
			return fmt.Errorf("read standing team=%d season=%d: %w", teamID, season, err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		finished, err = s.matchRepo.ListFinishedByTeam(ctx, t.ID, season)
		if err != nil {
			return fmt.Errorf("list matches team=%d season=%d: %w", teamID, season, err)
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		teams, err = s.teamRepo.ListByLeague(ctx, t.LeagueID)
		if err != nil {
			return fmt.Errorf("list league teams league_id=%d: %w", t.LeagueID, err)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return TeamSummary{}, err
	}

	nameByID := make(map[int64]string, len(teams))
	for _, item := range teams {
		nameByID[item.ID] = item.Name
	}

	summary := TeamSummary{
		TeamID:         t.ID,
		TeamExternalID: t.ExternalID,
		TeamName:       t.Name,
		LeagueID:       t.LeagueID,
		Season:         season,
	}
	if hasRow {
		summary.Position = row.Position
		summary.Points = row.Points
		summary.PointsDeduction = row.PointsDeduction
		summary.Played = row.Played
		summary.GoalsFor = row.GoalsFor
		summary.GoalsAgainst = row.GoalsAgainst
		summary.GoalDifference = row.GoalDifference
		summary.Form = row.Form
	}

	summary.Matches, summary.PointsSeries = buildMatchHistory(finished, t.ID, summary.PointsDeduction, nameByID)

	return summary, nil
}

// GetTeamDataWithMatches returns a summary for every team in the league's
// table for the season, ranked, each with its match records and cumulative
// points series. Per-team match loads fan out on a bounded pool. Teams with
// no table row yet are left out; they have nothing to chart.
func (s *DashboardService) GetTeamDataWithMatches(ctx context.Context, leagueExternalID int64, season int) ([]TeamSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.GetTeamDataWithMatches")
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
		return nil, fmt.Errorf("list league teams league_id=%d: %w", lg.ID, err)
	}
	nameByID := make(map[int64]string, len(teams))
	externalByID := make(map[int64]int64, len(teams))
	for _, item := range teams {
		nameByID[item.ID] = item.Name
		externalByID[item.ID] = item.ExternalID
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
	ranked := RankTeams(rows)

	summaries := make([]TeamSummary, len(ranked))
	p := pool.New().WithMaxGoroutines(dashboardLoadWorkers).WithErrors().WithContext(ctx)
	for idx, row := range ranked {
		p.Go(func(ctx context.Context) error {
			finished, err := s.matchRepo.ListFinishedByTeam(ctx, row.TeamID, season)
			if err != nil {
				return fmt.Errorf("list matches team=%d season=%d: %w", row.TeamID, season, err)
			}

			summary := TeamSummary{
				TeamID:          row.TeamID,
				TeamExternalID:  externalByID[row.TeamID],
				TeamName:        row.TeamName,
				LeagueID:        lg.ID,
				Season:          season,
				Position:        row.Position,
				Points:          row.Points,
				PointsDeduction: row.PointsDeduction,
				Played:          row.Played,
				GoalsFor:        row.GoalsFor,
				GoalsAgainst:    row.GoalsAgainst,
				GoalDifference:  row.GoalDifference,
				Form:            row.Form,
			}
			summary.Matches, summary.PointsSeries = buildMatchHistory(finished, row.TeamID, row.PointsDeduction, nameByID)

			summaries[idx] = summary
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// HeadToHead aggregates finished meetings between two teams across seasons.
func (s *DashboardService) HeadToHead(ctx context.Context, teamOneID, teamTwoID int64) (HeadToHeadSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.HeadToHead")
	defer span.End()

	if teamOneID <= 0 || teamTwoID <= 0 {
		return HeadToHeadSummary{}, fmt.Errorf("%w: team ids must be greater than zero", ErrInvalidInput)
	}
	if teamOneID == teamTwoID {
		return HeadToHeadSummary{}, fmt.Errorf("%w: head to head requires two distinct teams", ErrInvalidInput)
	}

	var (
		teamOne, teamTwo team.Team
		matches          []match.Match
	)

	p := pool.New().WithErrors().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		t, found, err := s.teamRepo.GetByID(ctx, teamOneID)
		if err != nil {
			return fmt.Errorf("resolve team id=%d: %w", teamOneID, err)
		}
		if !found {
			return fmt.Errorf("%w: team %d", ErrNotFound, teamOneID)
		}
		teamOne = t
		return nil
	})
	p.Go(func(ctx context.Context) error {
		t, found, err := s.teamRepo.GetByID(ctx, teamTwoID)
		if err != nil {
			return fmt.Errorf("resolve team id=%d: %w", teamTwoID, err)
		}
		if !found {
			return fmt.Errorf("%w: team %d", ErrNotFound, teamTwoID)
		}
		teamTwo = t
		return nil
	})
	p.Go(func(ctx context.Context) error {
		var err error
		matches, err = s.matchRepo.ListHeadToHead(ctx, teamOneID, teamTwoID)
		if err != nil {
			return fmt.Errorf("list head to head matches: %w", err)
		}
		return nil
	})
	if err := p.Wait(); err != nil {
		return HeadToHeadSummary{}, err
	}

	nameByID := map[int64]string{
		teamOne.ID: teamOne.Name,
		teamTwo.ID: teamTwo.Name,
	}

	out := HeadToHeadSummary{
		TeamOneID:   teamOne.ID,
		TeamOneName: teamOne.Name,
		TeamTwoID:   teamTwo.ID,
		TeamTwoName: teamTwo.Name,
		Matches:     make([]MatchRecord, 0, len(matches)),
	}

	for _, m := range matches {
		record := buildMatchRecord(m, teamOne.ID, nameByID)
		out.Matches = append(out.Matches, record)
		switch record.Result {
		case "W":
			out.TeamOneWins++
		case "L":
			out.TeamTwoWins++
		case "D":
			out.Draws++
		}
	}

	return out, nil
}

// buildMatchHistory turns a team's finished matches into records carrying the
// gameweek ordinal and the deduction-adjusted running total, together with the
// cumulative points series the charts consume. The series gains one entry per
// match with a known score; a finished match without one keeps the previous
// total and adds no series entry.
func buildMatchHistory(finished []match.Match, teamID int64, deduction int, nameByID map[int64]string) ([]MatchRecord, []int) {
	if deduction < 0 {
		deduction = 0
	}

	records := make([]MatchRecord, 0, len(finished))
	total := -deduction
	series := make([]int, 1, len(finished)+1)
	series[0] = total

	for idx, m := range finished {
		record := buildMatchRecord(m, teamID, nameByID)
		record.Gameweek = idx + 1

		switch record.Result {
		case "W":
			total += 3
			series = append(series, total)
		case "D":
			total++
			series = append(series, total)
		case "L":
			series = append(series, total)
		}
		record.CumulativeTotal = total
		records = append(records, record)
	}

	return records, series
}

func buildMatchRecord(m match.Match, teamID int64, nameByID map[int64]string) MatchRecord {
	record := MatchRecord{
		MatchID: m.ID,
		Date:    m.Date,
		Status:  m.Status,
	}

	if m.HomeTeamID == teamID {
		record.Home = true
		record.OpponentID = m.AwayTeamID
		record.TeamScore = cloneIntPtr(m.HomeScore)
		record.OpponentScore = cloneIntPtr(m.AwayScore)
	} else {
		record.OpponentID = m.HomeTeamID
		record.TeamScore = cloneIntPtr(m.AwayScore)
		record.OpponentScore = cloneIntPtr(m.HomeScore)
	}
	record.Opponent = nameByID[record.OpponentID]

	if m.HasResult() {
		switch {
		case *record.TeamScore > *record.OpponentScore:
			record.Result = "W"
		case *record.TeamScore < *record.OpponentScore:
			record.Result = "L"
		default:
			record.Result = "D"
		}
	}

	return record
}
