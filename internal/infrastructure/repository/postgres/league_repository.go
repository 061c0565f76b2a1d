package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jakubzver/footboard/internal/domain/league"
	qb "github.com/jakubzver/footboard/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, league.League{
			ID:         row.ID,
			ExternalID: row.ExternalID,
			Name:       row.Name,
		})
	}

	return out, nil
}

func (r *LeagueRepository) GetByExternalID(ctx context.Context, externalID int64) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("external_id", externalID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league external_id=%d: %w", externalID, err)
	}

	return league.League{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		Name:       row.Name,
	}, true, nil
}

func (r *LeagueRepository) Ensure(ctx context.Context, l league.League) (league.League, error) {
	if err := l.Validate(); err != nil {
		return league.League{}, err
	}

	query, args, err := qb.InsertModel("leagues", leagueInsertModel{
		ExternalID: l.ExternalID,
		Name:       l.Name,
	}, "ON CONFLICT (external_id) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()")
	if err != nil {
		return league.League{}, fmt.Errorf("build ensure league query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return league.League{}, fmt.Errorf("ensure league external_id=%d: %w", l.ExternalID, err)
	}

	stored, found, err := r.GetByExternalID(ctx, l.ExternalID)
	if err != nil {
		return league.League{}, err
	}
	if !found {
		return league.League{}, fmt.Errorf("league external_id=%d missing after ensure", l.ExternalID)
	}
	return stored, nil
}
