package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/jakubzver/footboard/internal/platform/logging"
)

const defaultResyncWorkers = 4

// ResyncTarget names one (league, season) to pull again.
type ResyncTarget struct {
	LeagueExternalID int64
	Season           int
}

// ResyncOutcome is the per-target result of a bulk resync run.
type ResyncOutcome struct {
	Target ResyncTarget
	Result SyncResult
	Err    error
}

// ResyncService fans a set of sync targets across a bounded worker pool.
// Targets for the same (league, season) still serialize inside SyncService.
type ResyncService struct {
	syncService *SyncService
	staleness   *StalenessService
	workers     int
	logger      *logging.Logger
}

func NewResyncService(syncService *SyncService, staleness *StalenessService, workers int, logger *logging.Logger) *ResyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers <= 0 {
		workers = defaultResyncWorkers
	}

	return &ResyncService{
		syncService: syncService,
		staleness:   staleness,
		workers:     workers,
		logger:      logger,
	}
}

// ResyncAll syncs every target concurrently and returns one outcome per
// target, ordered by league then season. A failing target never stops the
// others; the returned error only covers pool setup.
func (s *ResyncService) ResyncAll(ctx context.Context, targets []ResyncTarget) ([]ResyncOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResyncService.ResyncAll")
	defer span.End()

	targets = dedupeTargets(targets)
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no resync targets given", ErrInvalidInput)
	}

	p, err := ants.NewPool(minInt(s.workers, len(targets)))
	if err != nil {
		return nil, fmt.Errorf("create resync worker pool: %w", err)
	}
	defer p.Release()

	outcomes := make([]ResyncOutcome, len(targets))

	var wg sync.WaitGroup
	for idx, target := range targets {
		wg.Add(1)
		submitErr := p.Submit(func() {
			defer wg.Done()
			outcomes[idx] = s.resyncOne(ctx, target)
		})
		if submitErr != nil {
			wg.Done()
			outcomes[idx] = ResyncOutcome{
				Target: target,
				Err:    fmt.Errorf("submit resync league=%d season=%d: %w", target.LeagueExternalID, target.Season, submitErr),
			}
		}
	}
	wg.Wait()

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
		}
	}
	s.logger.InfoContext(ctx, "bulk resync finished",
		"targets", len(targets),
		"failed", failed,
	)

	return outcomes, nil
}

// ResyncStale checks each target's staleness first and only pulls the ones
// whose stored data no longer reflects reality. Fresh targets come back with
// a zero SyncResult and no error.
func (s *ResyncService) ResyncStale(ctx context.Context, targets []ResyncTarget) ([]ResyncOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResyncService.ResyncStale")
	defer span.End()

	if s.staleness == nil {
		return nil, fmt.Errorf("%w: staleness checks are not configured", ErrInvalidInput)
	}

	targets = dedupeTargets(targets)
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no resync targets given", ErrInvalidInput)
	}

	stale := make([]ResyncTarget, 0, len(targets))
	fresh := make([]ResyncOutcome, 0, len(targets))
	for _, target := range targets {
		report, err := s.staleness.NeedsRefresh(ctx, target.LeagueExternalID, target.Season)
		if err != nil {
			fresh = append(fresh, ResyncOutcome{
				Target: target,
				Err:    fmt.Errorf("staleness check league=%d season=%d: %w", target.LeagueExternalID, target.Season, err),
			})
			continue
		}
		if report.Stale {
			stale = append(stale, target)
			continue
		}
		fresh = append(fresh, ResyncOutcome{Target: target})
	}

	if len(stale) == 0 {
		sortOutcomes(fresh)
		return fresh, nil
	}

	synced, err := s.ResyncAll(ctx, stale)
	if err != nil {
		return nil, err
	}

	out := append(fresh, synced...)
	sortOutcomes(out)
	return out, nil
}

func (s *ResyncService) resyncOne(ctx context.Context, target ResyncTarget) ResyncOutcome {
	result, err := s.syncService.Sync(ctx, target.LeagueExternalID, target.Season, nil)
	if err != nil {
		s.logger.WarnContext(ctx, "resync target failed",
			"league", target.LeagueExternalID,
			"season", target.Season,
			"error", err,
		)
		return ResyncOutcome{
			Target: target,
			Err:    fmt.Errorf("resync league=%d season=%d: %w", target.LeagueExternalID, target.Season, err),
		}
	}
	return ResyncOutcome{Target: target, Result: result}
}

func dedupeTargets(targets []ResyncTarget) []ResyncTarget {
	seen := make(map[ResyncTarget]struct{}, len(targets))
	out := make([]ResyncTarget, 0, len(targets))
	for _, target := range targets {
		if target.LeagueExternalID <= 0 || target.Season <= 0 {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].LeagueExternalID != out[j].LeagueExternalID {
			return out[i].LeagueExternalID < out[j].LeagueExternalID
		}
		return out[i].Season < out[j].Season
	})
	return out
}

func sortOutcomes(outcomes []ResyncOutcome) {
	sort.Slice(outcomes, func(i, j int) bool {
		if outcomes[i].Target.LeagueExternalID != outcomes[j].Target.LeagueExternalID {
			return outcomes[i].Target.LeagueExternalID < outcomes[j].Target.LeagueExternalID
		}
		return outcomes[i].Target.Season < outcomes[j].Target.Season
	})
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
