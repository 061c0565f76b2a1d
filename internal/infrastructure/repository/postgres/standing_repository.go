package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jakubzver/footboard/internal/domain/standing"
	qb "github.com/jakubzver/footboard/internal/platform/querybuilder"
)

type StandingRepository struct {
	db *sqlx.DB
}

func NewStandingRepository(db *sqlx.DB) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) ListByLeagueSeason(ctx context.Context, leagueID int64, season int) ([]standing.Standing, error) {
	query, args, err := qb.Select("*").From("standings").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
		).
		OrderBy("position", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list standings query: %w", err)
	}

	var rows []standingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list standings league_id=%d season=%d: %w", leagueID, season, err)
	}

	out := make([]standing.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapStandingRow(row))
	}
	return out, nil
}

func (r *StandingRepository) GetByTeam(ctx context.Context, leagueID int64, season int, teamID int64) (standing.Standing, bool, error) {
	query, args, err := qb.Select("*").From("standings").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.Eq("team_id", teamID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return standing.Standing{}, false, fmt.Errorf("build get standing query: %w", err)
	}

	var row standingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return standing.Standing{}, false, nil
		}
		return standing.Standing{}, false, fmt.Errorf("get standing team_id=%d: %w", teamID, err)
	}

	return mapStandingRow(row), true, nil
}

func (r *StandingRepository) UpsertMany(ctx context.Context, standings []standing.Standing) error {
	if len(standings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert standings: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range standings {
		if err := item.Validate(); err != nil {
			return err
		}
		insertModel := standingInsertModel{
			Season:          item.Season,
			LeagueID:        item.LeagueID,
			TeamID:          item.TeamID,
			Position:        item.Position,
			Points:          item.Points,
			PointsDeduction: item.PointsDeduction,
			Played:          item.Played,
			GoalsFor:        item.GoalsFor,
			GoalsAgainst:    item.GoalsAgainst,
			GoalDifference:  item.GoalDifference,
			Form:            nullString(item.Form),
			LastUpdated:     item.LastUpdated,
		}
		query, args, err := qb.InsertModel("standings", insertModel, `ON CONFLICT (season, league_id, team_id)
DO UPDATE SET
    position = EXCLUDED.position,
    points = EXCLUDED.points,
    points_deduction = EXCLUDED.points_deduction,
    played = EXCLUDED.played,
    goals_for = EXCLUDED.goals_for,
    goals_against = EXCLUDED.goals_against,
    goal_difference = EXCLUDED.goal_difference,
    form = EXCLUDED.form,
    last_updated = EXCLUDED.last_updated,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert standing query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert standing team_id=%d season=%d: %w", item.TeamID, item.Season, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert standings tx: %w", err)
	}
	return nil
}

func (r *StandingRepository) MaxLastUpdated(ctx context.Context, leagueID int64, season int) (time.Time, bool, error) {
	query, args, err := qb.Select("MAX(last_updated)").From("standings").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
		).
		ToSQL()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("build max last updated query: %w", err)
	}

	var latest sql.NullTime
	if err := r.db.GetContext(ctx, &latest, query, args...); err != nil {
		return time.Time{}, false, fmt.Errorf("max last updated league_id=%d season=%d: %w", leagueID, season, err)
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	return latest.Time, true, nil
}

func (r *StandingRepository) ListSeasons(ctx context.Context, leagueID int64) ([]int, error) {
	query, args, err := qb.Select("DISTINCT season").From("standings").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("season DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list seasons query: %w", err)
	}

	var seasons []int
	if err := r.db.SelectContext(ctx, &seasons, query, args...); err != nil {
		return nil, fmt.Errorf("list seasons league_id=%d: %w", leagueID, err)
	}
	return seasons, nil
}

func mapStandingRow(row standingTableModel) standing.Standing {
	return standing.Standing{
		Season:          row.Season,
		LeagueID:        row.LeagueID,
		TeamID:          row.TeamID,
		Position:        row.Position,
		Points:          row.Points,
		PointsDeduction: row.PointsDeduction,
		Played:          row.Played,
		GoalsFor:        row.GoalsFor,
		GoalsAgainst:    row.GoalsAgainst,
		GoalDifference:  row.GoalDifference,
		Form:            strings.TrimSpace(row.Form.String),
		LastUpdated:     row.LastUpdated,
	}
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
