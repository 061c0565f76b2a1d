package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jakubzver/footboard/internal/domain/match"
	qb "github.com/jakubzver/footboard/internal/platform/querybuilder"
)

var finishedStatuses = []any{match.StatusFinished, match.StatusExtraTime, match.StatusPenaltiesEnd}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) ListByLeagueSeason(ctx context.Context, leagueID int64, season int) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
		).
		OrderBy("date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	return r.selectMatches(ctx, query, args)
}

func (r *MatchRepository) ListFinishedByTeam(ctx context.Context, teamID int64, season int) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Eq("season", season),
			qb.Expr("(home_team_id = ? OR away_team_id = ?)", teamID, teamID),
			qb.In("status", finishedStatuses),
		).
		OrderBy("date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list finished matches query: %w", err)
	}

	return r.selectMatches(ctx, query, args)
}

func (r *MatchRepository) ListHeadToHead(ctx context.Context, teamA, teamB int64) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(
			qb.Expr("((home_team_id = ? AND away_team_id = ?) OR (home_team_id = ? AND away_team_id = ?))",
				teamA, teamB, teamB, teamA),
			qb.In("status", finishedStatuses),
		).
		OrderBy("date DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build head to head query: %w", err)
	}

	return r.selectMatches(ctx, query, args)
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, externalID int64) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("external_id", externalID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match external_id=%d: %w", externalID, err)
	}

	return mapMatchRow(row), true, nil
}

func (r *MatchRepository) UpsertBatch(ctx context.Context, matches []match.Match) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert matches: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, m := range matches {
		insertModel := matchInsertModel{
			ExternalID: m.ExternalID,
			Date:       m.Date,
			Season:     m.Season,
			LeagueID:   m.LeagueID,
			HomeTeamID: m.HomeTeamID,
			AwayTeamID: m.AwayTeamID,
			HomeScore:  ptrToNullInt(m.HomeScore),
			AwayScore:  ptrToNullInt(m.AwayScore),
			Status:     m.Status,
		}
		query, args, err := qb.InsertModel("matches", insertModel, `ON CONFLICT (external_id)
DO UPDATE SET
    date = EXCLUDED.date,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    status = EXCLUDED.status,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert match query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert match external_id=%d: %w", m.ExternalID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert matches tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) CountByLeagueSeason(ctx context.Context, leagueID int64, season int) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("matches").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count matches query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count matches league_id=%d season=%d: %w", leagueID, season, err)
	}
	return count, nil
}

func (r *MatchRepository) CountUnfinishedBefore(ctx context.Context, leagueID int64, season int, cutoff time.Time) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("matches").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.Lt("date", cutoff),
			qb.Expr("status NOT IN (?, ?, ?)", finishedStatuses...),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count unfinished matches query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count unfinished matches league_id=%d season=%d: %w", leagueID, season, err)
	}
	return count, nil
}

func (r *MatchRepository) NextKickoff(ctx context.Context, leagueID int64, season int, from time.Time) (time.Time, bool, error) {
	query, args, err := qb.Select("date").From("matches").
		Where(
			qb.Eq("league_id", leagueID),
			qb.Eq("season", season),
			qb.Gte("date", from),
		).
		OrderBy("date").
		Limit(1).
		ToSQL()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("build next kickoff query: %w", err)
	}

	var next time.Time
	if err := r.db.GetContext(ctx, &next, query, args...); err != nil {
		if isNotFound(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("next kickoff league_id=%d season=%d: %w", leagueID, season, err)
	}
	return next, true, nil
}

func (r *MatchRepository) selectMatches(ctx context.Context, query string, args []any) ([]match.Match, error) {
	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapMatchRow(row))
	}
	return out, nil
}

func mapMatchRow(row matchTableModel) match.Match {
	return match.Match{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		Date:       row.Date,
		Season:     row.Season,
		LeagueID:   row.LeagueID,
		HomeTeamID: row.HomeTeamID,
		AwayTeamID: row.AwayTeamID,
		HomeScore:  nullIntToPtr(row.HomeScore),
		AwayScore:  nullIntToPtr(row.AwayScore),
		Status:     row.Status,
	}
}
