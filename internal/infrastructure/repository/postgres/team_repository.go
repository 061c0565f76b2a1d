package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jakubzver/footboard/internal/domain/team"
	qb "github.com/jakubzver/footboard/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID int64) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams league_id=%d: %w", leagueID, err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapTeamRow(row))
	}

	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID int64) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("id", teamID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team id=%d: %w", teamID, err)
	}

	return mapTeamRow(row), true, nil
}

// EnsureMany inserts unseen teams with ON CONFLICT DO NOTHING, then selects
// every requested pair back. Two syncs racing on the same league both land
// here; the conflict clause makes the insert a no-op for the loser.
func (r *TeamRepository) EnsureMany(ctx context.Context, leagueID int64, teams []team.Team) (map[team.Key]team.Team, error) {
	if len(teams) == 0 {
		return map[team.Key]team.Team{}, nil
	}

	insert := qb.InsertInto("teams").Columns("external_id", "league_id", "name")
	externalIDs := make([]any, 0, len(teams))
	for _, t := range teams {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		insert.Values(t.ExternalID, leagueID, t.Name)
		externalIDs = append(externalIDs, t.ExternalID)
	}

	query, args, err := insert.
		Suffix("ON CONFLICT (external_id, league_id) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build ensure teams query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			// Concurrent creator won a different unique index; rows exist, fall
			// through to the select.
		} else {
			return nil, fmt.Errorf("ensure teams league_id=%d: %w", leagueID, err)
		}
	}

	selectQuery, selectArgs, err := qb.Select("*").From("teams").
		Where(
			qb.Eq("league_id", leagueID),
			qb.In("external_id", externalIDs),
		).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select ensured teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, selectQuery, selectArgs...); err != nil {
		return nil, fmt.Errorf("select ensured teams league_id=%d: %w", leagueID, err)
	}

	out := make(map[team.Key]team.Team, len(rows))
	for _, row := range rows {
		mapped := mapTeamRow(row)
		out[mapped.Key()] = mapped
	}

	return out, nil
}

func mapTeamRow(row teamTableModel) team.Team {
	return team.Team{
		ID:         row.ID,
		ExternalID: row.ExternalID,
		LeagueID:   row.LeagueID,
		Name:       row.Name,
	}
}
