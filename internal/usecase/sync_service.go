package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jakubzver/footboard/internal/domain/league"
	"github.com/jakubzver/footboard/internal/domain/match"
	"github.com/jakubzver/footboard/internal/domain/standing"
	"github.com/jakubzver/footboard/internal/domain/team"
	"github.com/jakubzver/footboard/internal/platform/logging"
)

// matchBatchSize is how many matches go into one upsert transaction.
const matchBatchSize = 50

// ProgressFunc reports sync progress after each persisted batch.
type ProgressFunc func(done, total int)

// SyncNotifier is told when a league table changes. Implementations must not
// block the sync path; failures are logged and swallowed.
type SyncNotifier interface {
	NotifySyncCompleted(ctx context.Context, leagueExternalID int64, season int, matchCount int)
}

type SyncResult struct {
	LeagueID     int64
	Season       int
	TotalMatches int
	Upserted     int
	Skipped      int
	Standings    int
}

// keyedMutex serializes work per string key. Concurrent syncs of different
// (league, season) pairs proceed in parallel; the same pair queues.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// SyncService pulls provider fixtures and standings into the store and keeps
// the two reconciled. A points deduction is never reported by the provider
// directly; it is inferred by replaying stored results against the official
// points total.
type SyncService struct {
	provider     SportDataProvider
	leagueRepo   league.Repository
	teamRepo     team.Repository
	matchRepo    match.Repository
	standingRepo standing.Repository
	notifier     SyncNotifier
	logger       *logging.Logger
	now          func() time.Time
	syncLocks    keyedMutex
}

func NewSyncService(
	provider SportDataProvider,
	leagueRepo league.Repository,
	teamRepo team.Repository,
	matchRepo match.Repository,
	standingRepo standing.Repository,
	notifier SyncNotifier,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SyncService{
		provider:     provider,
		leagueRepo:   leagueRepo,
		teamRepo:     teamRepo,
		matchRepo:    matchRepo,
		standingRepo: standingRepo,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// Sync refreshes matches and standings for one (league, season). Calls for
// the same pair are serialized so two workers cannot interleave partial
// writes; distinct pairs run concurrently.
func (s *SyncService) Sync(ctx context.Context, leagueExternalID int64, season int, progress ProgressFunc) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Sync")
	defer span.End()

	if leagueExternalID <= 0 {
		return SyncResult{}, fmt.Errorf("%w: league id must be greater than zero", ErrInvalidInput)
	}
	if season <= 0 {
		return SyncResult{}, fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}
	if s.provider == nil {
		return SyncResult{}, fmt.Errorf("%w: sport data provider is not configured", ErrDependencyUnavailable)
	}

	unlock := s.syncLocks.lock(fmt.Sprintf("%d:%d", leagueExternalID, season))
	defer unlock()

	result, err := s.syncMatches(ctx, leagueExternalID, season, progress)
	if err != nil {
		return SyncResult{}, err
	}
	if result.LeagueID == 0 {
		// The provider had no fixtures, so no league row was ensured and
		// there is no table to refresh.
		return result, nil
	}

	standingsCount, err := s.syncStandings(ctx, result.LeagueID, leagueExternalID, season)
	if err != nil {
		return SyncResult{}, err
	}
	result.Standings = standingsCount

	if s.notifier != nil {
		s.notifier.NotifySyncCompleted(ctx, leagueExternalID, season, result.Upserted)
	}

	return result, nil
}

// SyncMatches refreshes fixtures only, leaving the stored table untouched.
func (s *SyncService) SyncMatches(ctx context.Context, leagueExternalID int64, season int, progress ProgressFunc) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncMatches")
	defer span.End()

	if leagueExternalID <= 0 || season <= 0 {
		return SyncResult{}, fmt.Errorf("%w: league id and season must be greater than zero", ErrInvalidInput)
	}
	if s.provider == nil {
		return SyncResult{}, fmt.Errorf("%w: sport data provider is not configured", ErrDependencyUnavailable)
	}

	unlock := s.syncLocks.lock(fmt.Sprintf("%d:%d", leagueExternalID, season))
	defer unlock()

	return s.syncMatches(ctx, leagueExternalID, season, progress)
}

func (s *SyncService) syncMatches(ctx context.Context, leagueExternalID int64, season int, progress ProgressFunc) (SyncResult, error) {
	fixtures, err := s.provider.FetchFixtures(ctx, leagueExternalID, season)
	if err != nil {
		return SyncResult{}, fmt.Errorf("%w: fetch fixtures league=%d season=%d: %w", ErrSyncFailed, leagueExternalID, season, err)
	}
	if len(fixtures) == 0 {
		// Nothing to reconcile. Leagues between seasons legitimately have no
		// fixtures yet, so this is not a sync failure.
		s.logger.InfoContext(ctx, "provider returned no fixtures",
			"league", leagueExternalID,
			"season", season)
		return SyncResult{Season: season}, nil
	}

	lg, err := s.ensureLeague(ctx, leagueExternalID, fixtures)
	if err != nil {
		return SyncResult{}, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	teamsByKey, err := s.ensureTeams(ctx, lg.ID, fixtures)
	if err != nil {
		return SyncResult{}, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	matches, skipped := s.mapFixtures(ctx, lg.ID, season, fixtures, teamsByKey)
	total := len(matches)

	upserted := 0
	for start := 0; start < total; start += matchBatchSize {
		end := start + matchBatchSize
		if end > total {
			end = total
		}

		if err := s.matchRepo.UpsertBatch(ctx, matches[start:end]); err != nil {
			return SyncResult{}, fmt.Errorf("%w: upsert matches league=%d season=%d batch=%d: %w",
				ErrSyncFailed, leagueExternalID, season, start/matchBatchSize, err)
		}
		upserted = end
		if progress != nil {
			progress(upserted, total)
		}
	}

	s.logger.InfoContext(ctx, "matches synced",
		"league", leagueExternalID,
		"season", season,
		"upserted", upserted,
		"skipped", skipped,
	)

	return SyncResult{
		LeagueID:     lg.ID,
		Season:       season,
		TotalMatches: total,
		Upserted:     upserted,
		Skipped:      skipped,
	}, nil
}

func (s *SyncService) syncStandings(ctx context.Context, leagueID, leagueExternalID int64, season int) (int, error) {
	rows, err := s.provider.FetchStandings(ctx, leagueExternalID, season)
	if err != nil {
		return 0, fmt.Errorf("%w: fetch standings league=%d season=%d: %w", ErrSyncFailed, leagueExternalID, season, err)
	}
	if len(rows) == 0 {
		s.logger.WarnContext(ctx, "provider returned empty standings", "league", leagueExternalID, "season", season)
		return 0, nil
	}

	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return 0, fmt.Errorf("%w: list teams league=%d: %w", ErrSyncFailed, leagueExternalID, err)
	}
	teamByExternalID := make(map[int64]team.Team, len(teams))
	for _, t := range teams {
		teamByExternalID[t.ExternalID] = t
	}

	now := s.now().UTC()
	out := make([]standing.Standing, 0, len(rows))
	for _, row := range rows {
		t, ok := teamByExternalID[row.TeamID]
		if !ok {
			s.logger.WarnContext(ctx, "skip standing row for unknown team",
				"team_external_id", row.TeamID,
				"team_name", row.TeamName,
				"league", leagueExternalID,
				"season", season,
			)
			continue
		}

		deduction, err := s.inferPointsDeduction(ctx, t, season, row)
		if err != nil {
			return 0, fmt.Errorf("%w: infer deduction team=%d season=%d: %w", ErrSyncFailed, t.ID, season, err)
		}

		goalDifference := row.GoalDifference
		if goalDifference == 0 && (row.GoalsFor != 0 || row.GoalsAgainst != 0) {
			goalDifference = row.GoalsFor - row.GoalsAgainst
		}

		out = append(out, standing.Standing{
			Season:          season,
			LeagueID:        leagueID,
			TeamID:          t.ID,
			Position:        row.Position,
			Points:          row.Points,
			PointsDeduction: deduction,
			Played:          row.Played,
			GoalsFor:        row.GoalsFor,
			GoalsAgainst:    row.GoalsAgainst,
			GoalDifference:  goalDifference,
			Form:            row.Form,
			LastUpdated:     now,
		})
	}

	if err := s.standingRepo.UpsertMany(ctx, out); err != nil {
		return 0, fmt.Errorf("%w: upsert standings league=%d season=%d: %w", ErrSyncFailed, leagueExternalID, season, err)
	}

	s.logger.InfoContext(ctx, "standings synced",
		"league", leagueExternalID,
		"season", season,
		"rows", len(out),
	)
	return len(out), nil
}

// inferPointsDeduction compares the points our stored results add up to with
// the provider's official total. Competitions publish deductions only inside
// the total, so the gap is the deduction. A negative gap means our results
// are ahead of the provider table snapshot; that is a reconciliation problem,
// not a bonus, so it is logged and clamped to zero.
func (s *SyncService) inferPointsDeduction(ctx context.Context, t team.Team, season int, row StandingRecord) (int, error) {
	finished, err := s.matchRepo.ListFinishedByTeam(ctx, t.ID, season)
	if err != nil {
		return 0, err
	}

	expected := expectedPointsFromResults(finished, t.ID)
	deduction := expected - row.Points
	if deduction < 0 {
		s.logger.WarnContext(ctx, "stored results behind provider points, clamping deduction",
			"team_id", t.ID,
			"team_name", t.Name,
			"season", season,
			"expected_points", expected,
			"provider_points", row.Points,
		)
		return 0, nil
	}
	if deduction > 0 {
		s.logger.InfoContext(ctx, "points deduction inferred",
			"team_id", t.ID,
			"team_name", t.Name,
			"season", season,
			"deduction", deduction,
		)
	}
	return deduction, nil
}

// expectedPointsFromResults replays finished matches with win=3, draw=1.
func expectedPointsFromResults(matches []match.Match, teamID int64) int {
	points := 0
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
			points += 3
		case scored == conceded:
			points++
		}
	}
	return points
}

func (s *SyncService) ensureLeague(ctx context.Context, leagueExternalID int64, fixtures []FixtureRecord) (league.League, error) {
	name := ""
	for _, f := range fixtures {
		if n := strings.TrimSpace(f.LeagueName); n != "" {
			name = n
			break
		}
	}
	if name == "" {
		name = fmt.Sprintf("League %d", leagueExternalID)
	}

	lg, err := s.leagueRepo.Ensure(ctx, league.League{ExternalID: leagueExternalID, Name: name})
	if err != nil {
		return league.League{}, fmt.Errorf("ensure league external_id=%d: %w", leagueExternalID, err)
	}
	return lg, nil
}

func (s *SyncService) ensureTeams(ctx context.Context, leagueID int64, fixtures []FixtureRecord) (map[team.Key]team.Team, error) {
	byExternalID := make(map[int64]team.Team, 32)
	for _, f := range fixtures {
		if f.HomeTeamID > 0 {
			byExternalID[f.HomeTeamID] = team.Team{ExternalID: f.HomeTeamID, LeagueID: leagueID, Name: strings.TrimSpace(f.HomeTeam)}
		}
		if f.AwayTeamID > 0 {
			byExternalID[f.AwayTeamID] = team.Team{ExternalID: f.AwayTeamID, LeagueID: leagueID, Name: strings.TrimSpace(f.AwayTeam)}
		}
	}

	teams := make([]team.Team, 0, len(byExternalID))
	for _, t := range byExternalID {
		if t.Name == "" {
			t.Name = fmt.Sprintf("Team %d", t.ExternalID)
		}
		teams = append(teams, t)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].ExternalID < teams[j].ExternalID })

	out, err := s.teamRepo.EnsureMany(ctx, leagueID, teams)
	if err != nil {
		return nil, fmt.Errorf("ensure teams league_id=%d: %w", leagueID, err)
	}
	return out, nil
}

// mapFixtures converts provider rows to matches, dropping rows that cannot be
// stored. A bad row never aborts the batch; it is logged and counted.
func (s *SyncService) mapFixtures(
	ctx context.Context,
	leagueID int64,
	season int,
	fixtures []FixtureRecord,
	teamsByKey map[team.Key]team.Team,
) ([]match.Match, int) {
	out := make([]match.Match, 0, len(fixtures))
	skipped := 0
	for _, f := range fixtures {
		home, homeOK := teamsByKey[team.Key{ExternalID: f.HomeTeamID, LeagueID: leagueID}]
		away, awayOK := teamsByKey[team.Key{ExternalID: f.AwayTeamID, LeagueID: leagueID}]
		if !homeOK || !awayOK {
			skipped++
			s.logger.WarnContext(ctx, "skip fixture with unresolved team",
				"fixture_id", f.FixtureID,
				"home_external_id", f.HomeTeamID,
				"away_external_id", f.AwayTeamID,
			)
			continue
		}

		m := match.Match{
			ExternalID: f.FixtureID,
			Date:       f.Date.UTC(),
			Season:     season,
			LeagueID:   leagueID,
			HomeTeamID: home.ID,
			AwayTeamID: away.ID,
			HomeScore:  cloneIntPtr(f.HomeScore),
			AwayScore:  cloneIntPtr(f.AwayScore),
			Status:     strings.TrimSpace(f.Status),
		}
		if m.Status == "" {
			m.Status = match.StatusNotStarted
		}
		if err := m.Validate(); err != nil {
			skipped++
			s.logger.WarnContext(ctx, "skip invalid fixture", "fixture_id", f.FixtureID, "error", err)
			continue
		}
		out = append(out, m)
	}
	return out, skipped
}

func cloneIntPtr(value *int) *int {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
