package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/jakubzver/footboard/internal/usecase"
)

type syncJobRequest struct {
	LeagueID int64 `json:"league_id" validate:"required,gt=0"`
	Season   int   `json:"season" validate:"required,gt=0"`
}

type resyncTargetRequest struct {
	LeagueID int64 `json:"league_id" validate:"required,gt=0"`
	Season   int   `json:"season" validate:"required,gt=0"`
}

type resyncJobRequest struct {
	Targets   []resyncTargetRequest `json:"targets" validate:"required,min=1,dive"`
	OnlyStale bool                  `json:"only_stale"`
}

type syncResultDTO struct {
	LeagueID     int64 `json:"league_id"`
	Season       int   `json:"season"`
	TotalMatches int   `json:"total_matches"`
	Upserted     int   `json:"upserted"`
	Skipped      int   `json:"skipped"`
	Standings    int   `json:"standings"`
}

type resyncOutcomeDTO struct {
	LeagueID int64          `json:"league_id"`
	Season   int            `json:"season"`
	Result   *syncResultDTO `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func (h *Handler) RunSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncJob")
	defer span.End()

	if h.syncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: sync service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req syncJobRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.syncService.Sync(ctx, req.LeagueID, req.Season, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync job failed", "league_id", req.LeagueID, "season", req.Season, "error", err)
		writeError(ctx, w, h.sanitizeSyncError(err))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncResultToDTO(result))
}

func (h *Handler) RunResyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunResyncJob")
	defer span.End()

	if h.resyncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: resync service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req resyncJobRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	targets := make([]usecase.ResyncTarget, 0, len(req.Targets))
	for _, target := range req.Targets {
		targets = append(targets, usecase.ResyncTarget{LeagueExternalID: target.LeagueID, Season: target.Season})
	}

	var (
		outcomes []usecase.ResyncOutcome
		err      error
	)
	if req.OnlyStale {
		outcomes, err = h.resyncService.ResyncStale(ctx, targets)
	} else {
		outcomes, err = h.resyncService.ResyncAll(ctx, targets)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "run resync job failed", "targets", len(targets), "only_stale", req.OnlyStale, "error", err)
		writeError(ctx, w, h.sanitizeSyncError(err))
		return
	}

	items := make([]resyncOutcomeDTO, 0, len(outcomes))
	for _, outcome := range outcomes {
		item := resyncOutcomeDTO{
			LeagueID: outcome.Target.LeagueExternalID,
			Season:   outcome.Target.Season,
		}
		if outcome.Err != nil {
			item.Error = h.sanitizeSyncError(outcome.Err).Error()
		} else {
			dto := syncResultToDTO(outcome.Result)
			item.Result = &dto
		}
		items = append(items, item)
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

// sanitizeSyncError hides sync failure causes unless verbose errors are on.
// The full cause is always in the logs.
func (h *Handler) sanitizeSyncError(err error) error {
	if h.verboseErrors {
		return err
	}
	if errors.Is(err, usecase.ErrSyncFailed) {
		return fmt.Errorf("%w: failed to update data", usecase.ErrSyncFailed)
	}
	return err
}

func decodeJSONBody(r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func syncResultToDTO(result usecase.SyncResult) syncResultDTO {
	return syncResultDTO{
		LeagueID:     result.LeagueID,
		Season:       result.Season,
		TotalMatches: result.TotalMatches,
		Upserted:     result.Upserted,
		Skipped:      result.Skipped,
		Standings:    result.Standings,
	}
}
