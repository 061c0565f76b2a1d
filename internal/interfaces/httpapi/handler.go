package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jakubzver/footboard/internal/platform/logging"
	"github.com/jakubzver/footboard/internal/usecase"
)

type Handler struct {
	dashboardService  *usecase.DashboardService
	projectionService *usecase.ProjectionService
	stalenessService  *usecase.StalenessService
	syncService       *usecase.SyncService
	resyncService     *usecase.ResyncService
	logger            *logging.Logger
	validator         *validator.Validate
	// verboseErrors exposes sync failure causes in responses. Keep it off
	// outside development; the causes can carry provider details.
	verboseErrors bool
}

func NewHandler(
	dashboardService *usecase.DashboardService,
	projectionService *usecase.ProjectionService,
	stalenessService *usecase.StalenessService,
	syncService *usecase.SyncService,
	resyncService *usecase.ResyncService,
	logger *logging.Logger,
	verboseErrors bool,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		dashboardService:  dashboardService,
		projectionService: projectionService,
		stalenessService:  stalenessService,
		syncService:       syncService,
		resyncService:     resyncService,
		logger:            logger,
		validator:         validator.New(),
		verboseErrors:     verboseErrors,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.dashboardService.ListLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueDTO{ID: l.ID, ExternalID: l.ExternalID, Name: l.Name})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasons")
	defer span.End()

	leagueID, err := pathInt64(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	seasons, err := h.dashboardService.ListSeasons(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list seasons failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seasons)
}

func (h *Handler) GetLeagueTable(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueTable")
	defer span.End()

	leagueID, err := pathInt64(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := pathInt(r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	table, err := h.projectionService.BuildTable(ctx, leagueID, season)
	if err != nil {
		h.logger.WarnContext(ctx, "build table failed", "league_id", leagueID, "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]tableRowDTO, 0, len(table))
	for _, row := range table {
		items = append(items, tableRowToDTO(row))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetStaleness(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStaleness")
	defer span.End()

	leagueID, err := pathInt64(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := pathInt(r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.stalenessService.NeedsRefresh(ctx, leagueID, season)
	if err != nil {
		h.logger.WarnContext(ctx, "staleness check failed", "league_id", leagueID, "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, stalenessDTO{
		Stale:         report.Stale,
		Reasons:       report.Reasons,
		LastUpdated:   report.LastUpdated,
		NextKickoff:   report.NextKickoff,
		StoredMatches: report.StoredMatches,
	})
}

// GetLeagueTeamData serves the full dashboard payload for a league season.
// Stale data triggers an inline sync first, so the response reflects the
// latest provider snapshot.
func (h *Handler) GetLeagueTeamData(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeagueTeamData")
	defer span.End()

	leagueID, err := pathInt64(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := pathInt(r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.stalenessService.NeedsRefresh(ctx, leagueID, season)
	if err != nil {
		h.logger.WarnContext(ctx, "staleness check failed", "league_id", leagueID, "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}
	if report.Stale {
		if _, err := h.syncService.Sync(ctx, leagueID, season, nil); err != nil {
			h.logger.ErrorContext(ctx, "inline sync failed",
				"league_id", leagueID,
				"season", season,
				"reasons", report.Reasons,
				"error", err,
			)
			writeError(ctx, w, h.sanitizeSyncError(err))
			return
		}
	}

	summaries, err := h.dashboardService.GetTeamDataWithMatches(ctx, leagueID, season)
	if err != nil {
		h.logger.WarnContext(ctx, "get league team data failed", "league_id", leagueID, "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamSummaryDTO, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, teamSummaryToDTO(summary))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

// GetPositionTimeline serves per-gameweek league positions for every team on
// the table.
func (h *Handler) GetPositionTimeline(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPositionTimeline")
	defer span.End()

	leagueID, err := pathInt64(r, "leagueID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := pathInt(r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	timeline, err := h.projectionService.PositionTimeline(ctx, leagueID, season)
	if err != nil {
		h.logger.WarnContext(ctx, "position timeline failed", "league_id", leagueID, "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]positionSeriesDTO, 0, len(timeline))
	for _, entry := range timeline {
		items = append(items, positionSeriesDTO{
			TeamID:    entry.TeamID,
			TeamName:  entry.TeamName,
			Positions: entry.Positions,
		})
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTeamSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamSummary")
	defer span.End()

	teamID, err := pathInt64(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := pathInt(r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.dashboardService.GetTeamSummary(ctx, teamID, season)
	if err != nil {
		h.logger.WarnContext(ctx, "get team summary failed", "team_id", teamID, "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamSummaryToDTO(summary))
}

func (h *Handler) GetTeamPointsSeries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamPointsSeries")
	defer span.End()

	teamID, err := pathInt64(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	season, err := pathInt(r, "season")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	series, err := h.projectionService.ProjectTeamPoints(ctx, teamID, season)
	if err != nil {
		h.logger.WarnContext(ctx, "project points failed", "team_id", teamID, "season", season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pointsSeriesDTO{TeamID: teamID, Season: season, Points: series})
}

func (h *Handler) GetHeadToHead(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetHeadToHead")
	defer span.End()

	teamOne, err := queryInt64(r, "team1")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	teamTwo, err := queryInt64(r, "team2")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.dashboardService.HeadToHead(ctx, teamOne, teamTwo)
	if err != nil {
		h.logger.WarnContext(ctx, "head to head failed", "team1", teamOne, "team2", teamTwo, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, headToHeadToDTO(summary))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

func pathInt(r *http.Request, name string) (int, error) {
	value, err := pathInt64(r, name)
	if err != nil {
		return 0, err
	}
	return int(value), nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: query parameter %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

type leagueDTO struct {
	ID         int64  `json:"id"`
	ExternalID int64  `json:"external_id"`
	Name       string `json:"name"`
}

type tableRowDTO struct {
	TeamID          int64  `json:"team_id"`
	TeamName        string `json:"team_name"`
	Position        int    `json:"position"`
	Points          int    `json:"points"`
	PointsDeduction int    `json:"points_deduction,omitempty"`
	Played          int    `json:"played"`
	GoalsFor        int    `json:"goals_for"`
	GoalsAgainst    int    `json:"goals_against"`
	GoalDifference  int    `json:"goal_difference"`
	Form            string `json:"form,omitempty"`
}

type stalenessDTO struct {
	Stale         bool       `json:"stale"`
	Reasons       []string   `json:"reasons,omitempty"`
	LastUpdated   *time.Time `json:"last_updated,omitempty"`
	NextKickoff   *time.Time `json:"next_kickoff,omitempty"`
	StoredMatches int        `json:"stored_matches"`
}

type matchRecordDTO struct {
	MatchID         int64     `json:"match_id"`
	Date            time.Time `json:"date"`
	Gameweek        int       `json:"gameweek,omitempty"`
	Home            bool      `json:"home"`
	Opponent        string    `json:"opponent"`
	OpponentID      int64     `json:"opponent_id"`
	TeamScore       *int      `json:"team_score"`
	OpponentScore   *int      `json:"opponent_score"`
	Status          string    `json:"status"`
	Result          string    `json:"result,omitempty"`
	CumulativeTotal int       `json:"cumulative_total"`
}

type teamSummaryDTO struct {
	TeamID          int64            `json:"team_id"`
	TeamExternalID  int64            `json:"team_external_id"`
	TeamName        string           `json:"team_name"`
	LeagueID        int64            `json:"league_id"`
	Season          int              `json:"season"`
	Position        int              `json:"position"`
	Points          int              `json:"points"`
	PointsDeduction int              `json:"points_deduction,omitempty"`
	Played          int              `json:"played"`
	GoalsFor        int              `json:"goals_for"`
	GoalsAgainst    int              `json:"goals_against"`
	GoalDifference  int              `json:"goal_difference"`
	Form            string           `json:"form,omitempty"`
	Matches         []matchRecordDTO `json:"matches"`
	PointsSeries    []int            `json:"points_series"`
}

type positionSeriesDTO struct {
	TeamID    int64  `json:"team_id"`
	TeamName  string `json:"team_name"`
	Positions []int  `json:"positions"`
}

type pointsSeriesDTO struct {
	TeamID int64 `json:"team_id"`
	Season int   `json:"season"`
	Points []int `json:"points"`
}

type headToHeadDTO struct {
	TeamOneID   int64            `json:"team1_id"`
	TeamOneName string           `json:"team1_name"`
	TeamTwoID   int64            `json:"team2_id"`
	TeamTwoName string           `json:"team2_name"`
	TeamOneWins int              `json:"team1_wins"`
	TeamTwoWins int              `json:"team2_wins"`
	Draws       int              `json:"draws"`
	Matches     []matchRecordDTO `json:"matches"`
}

func tableRowToDTO(row usecase.TableRow) tableRowDTO {
	return tableRowDTO{
		TeamID:          row.TeamID,
		TeamName:        row.TeamName,
		Position:        row.Position,
		Points:          row.Points,
		PointsDeduction: row.PointsDeduction,
		Played:          row.Played,
		GoalsFor:        row.GoalsFor,
		GoalsAgainst:    row.GoalsAgainst,
		GoalDifference:  row.GoalDifference,
		Form:            row.Form,
	}
}

func matchRecordToDTO(record usecase.MatchRecord) matchRecordDTO {
	return matchRecordDTO{
		MatchID:         record.MatchID,
		Date:            record.Date,
		Gameweek:        record.Gameweek,
		Home:            record.Home,
		Opponent:        record.Opponent,
		OpponentID:      record.OpponentID,
		TeamScore:       record.TeamScore,
		OpponentScore:   record.OpponentScore,
		Status:          record.Status,
		Result:          record.Result,
		CumulativeTotal: record.CumulativeTotal,
	}
}

func teamSummaryToDTO(summary usecase.TeamSummary) teamSummaryDTO {
	matches := make([]matchRecordDTO, 0, len(summary.Matches))
	for _, record := range summary.Matches {
		matches = append(matches, matchRecordToDTO(record))
	}

	return teamSummaryDTO{
		TeamID:          summary.TeamID,
		TeamExternalID:  summary.TeamExternalID,
		TeamName:        summary.TeamName,
		LeagueID:        summary.LeagueID,
		Season:          summary.Season,
		Position:        summary.Position,
		Points:          summary.Points,
		PointsDeduction: summary.PointsDeduction,
		Played:          summary.Played,
		GoalsFor:        summary.GoalsFor,
		GoalsAgainst:    summary.GoalsAgainst,
		GoalDifference:  summary.GoalDifference,
		Form:            summary.Form,
		Matches:         matches,
		PointsSeries:    summary.PointsSeries,
	}
}

func headToHeadToDTO(summary usecase.HeadToHeadSummary) headToHeadDTO {
	matches := make([]matchRecordDTO, 0, len(summary.Matches))
	for _, record := range summary.Matches {
		matches = append(matches, matchRecordToDTO(record))
	}

	return headToHeadDTO{
		TeamOneID:   summary.TeamOneID,
		TeamOneName: summary.TeamOneName,
		TeamTwoID:   summary.TeamTwoID,
		TeamTwoName: summary.TeamTwoName,
		TeamOneWins: summary.TeamOneWins,
		TeamTwoWins: summary.TeamTwoWins,
		Draws:       summary.Draws,
		Matches:     matches,
	}
}
