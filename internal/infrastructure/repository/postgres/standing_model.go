package postgres

import (
	"database/sql"
	"time"
)

type standingTableModel struct {
	ID              int64          `db:"id"`
	Season          int            `db:"season"`
	LeagueID        int64          `db:"league_id"`
	TeamID          int64          `db:"team_id"`
	Position        int            `db:"position"`
	Points          int            `db:"points"`
	PointsDeduction int            `db:"points_deduction"`
	Played          int            `db:"played"`
	GoalsFor        int            `db:"goals_for"`
	GoalsAgainst    int            `db:"goals_against"`
	GoalDifference  int            `db:"goal_difference"`
	Form            sql.NullString `db:"form"`
	LastUpdated     time.Time      `db:"last_updated"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

type standingInsertModel struct {
	Season          int            `db:"season"`
	LeagueID        int64          `db:"league_id"`
	TeamID          int64          `db:"team_id"`
	Position        int            `db:"position"`
	Points          int            `db:"points"`
	PointsDeduction int            `db:"points_deduction"`
	Played          int            `db:"played"`
	GoalsFor        int            `db:"goals_for"`
	GoalsAgainst    int            `db:"goals_against"`
	GoalDifference  int            `db:"goal_difference"`
	Form            sql.NullString `db:"form"`
	LastUpdated     time.Time      `db:"last_updated"`
}
