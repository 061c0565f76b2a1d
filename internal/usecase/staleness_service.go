package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jakubzver/footboard/internal/domain/league"
	"github.com/jakubzver/footboard/internal/domain/match"
	"github.com/jakubzver/footboard/internal/domain/standing"
	"github.com/jakubzver/footboard/internal/platform/logging"
)

type StalenessConfig struct {
	// MaxAge is how old a table snapshot may be before it counts as stale
	// regardless of match state.
	MaxAge time.Duration
	// FinishedGrace is how long after kickoff a match may still be marked
	// unfinished before the stored data is considered behind the real world.
	// Covers the ~2h of play plus provider settlement lag.
	FinishedGrace time.Duration
	// UpcomingWindow marks data stale once the next kickoff is this close,
	// so lineups and tables are refreshed going into a matchday.
	UpcomingWindow time.Duration
}

func (c StalenessConfig) normalized() StalenessConfig {
	if c.MaxAge <= 0 {
		c.MaxAge = 24 * time.Hour
	}
	if c.FinishedGrace <= 0 {
		c.FinishedGrace = 3 * time.Hour
	}
	if c.UpcomingWindow <= 0 {
		c.UpcomingWindow = 24 * time.Hour
	}
	return c
}

// StalenessReport explains a refresh decision. Reasons are stable strings a
// caller can log or surface.
type StalenessReport struct {
	Stale         bool
	Reasons       []string
	LastUpdated   *time.Time
	NextKickoff   *time.Time
	StoredMatches int
}

// StalenessService decides whether stored data for a (league, season) still
// reflects reality or a provider pull is due.
type StalenessService struct {
	leagueRepo   league.Repository
	matchRepo    match.Repository
	standingRepo standing.Repository
	cfg          StalenessConfig
	logger       *logging.Logger
	now          func() time.Time
}

func NewStalenessService(
	leagueRepo league.Repository,
	matchRepo match.Repository,
	standingRepo standing.Repository,
	cfg StalenessConfig,
	logger *logging.Logger,
) *StalenessService {
	if logger == nil {
		logger = logging.Default()
	}

	return &StalenessService{
		leagueRepo:   leagueRepo,
		matchRepo:    matchRepo,
		standingRepo: standingRepo,
		cfg:          cfg.normalized(),
		logger:       logger,
		now:          time.Now,
	}
}

// NeedsRefresh reports whether the stored (league, season) should be pulled
// again. A league we have never synced is always stale.
func (s *StalenessService) NeedsRefresh(ctx context.Context, leagueExternalID int64, season int) (StalenessReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StalenessService.NeedsRefresh")
	defer span.End()

	if leagueExternalID <= 0 || season <= 0 {
		return StalenessReport{}, fmt.Errorf("%w: league id and season must be greater than zero", ErrInvalidInput)
	}

	lg, found, err := s.leagueRepo.GetByExternalID(ctx, leagueExternalID)
	if err != nil {
		return StalenessReport{}, fmt.Errorf("resolve league external_id=%d: %w", leagueExternalID, err)
	}
	if !found {
		return StalenessReport{Stale: true, Reasons: []string{"league never synced"}}, nil
	}

	report := StalenessReport{}
	now := s.now().UTC()

	report.StoredMatches, err = s.matchRepo.CountByLeagueSeason(ctx, lg.ID, season)
	if err != nil {
		return StalenessReport{}, fmt.Errorf("count matches league=%d season=%d: %w", leagueExternalID, season, err)
	}
	if report.StoredMatches == 0 {
		report.Stale = true
		report.Reasons = append(report.Reasons, "no matches stored for season")
	}

	lastUpdated, hasTable, err := s.standingRepo.MaxLastUpdated(ctx, lg.ID, season)
	if err != nil {
		return StalenessReport{}, fmt.Errorf("read table age league=%d season=%d: %w", leagueExternalID, season, err)
	}
	if !hasTable {
		report.Stale = true
		report.Reasons = append(report.Reasons, "no standings stored for season")
	} else {
		report.LastUpdated = &lastUpdated
		if now.Sub(lastUpdated) > s.cfg.MaxAge {
			report.Stale = true
			report.Reasons = append(report.Reasons, "table snapshot older than max age")
		}
	}

	// Matches that kicked off long enough ago to be over but still carry a
	// non-final status mean the stored season lags reality.
	cutoff := now.Add(-s.cfg.FinishedGrace)
	lagging, err := s.matchRepo.CountUnfinishedBefore(ctx, lg.ID, season, cutoff)
	if err != nil {
		return StalenessReport{}, fmt.Errorf("count lagging matches league=%d season=%d: %w", leagueExternalID, season, err)
	}
	if lagging > 0 {
		report.Stale = true
		report.Reasons = append(report.Reasons, fmt.Sprintf("%d matches past kickoff without final result", lagging))
	}

	if next, ok, err := s.matchRepo.NextKickoff(ctx, lg.ID, season, now); err != nil {
		return StalenessReport{}, fmt.Errorf("next kickoff league=%d season=%d: %w", leagueExternalID, season, err)
	} else if ok {
		report.NextKickoff = &next
		if next.Sub(now) <= s.cfg.UpcomingWindow {
			report.Stale = true
			report.Reasons = append(report.Reasons, "next kickoff inside refresh window")
		}
	}

	if report.Stale {
		s.logger.DebugContext(ctx, "data needs refresh",
			"league", leagueExternalID,
			"season", season,
			"reasons", report.Reasons,
		)
	}
	return report, nil
}
