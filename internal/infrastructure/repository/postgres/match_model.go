package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID         int64         `db:"id"`
	ExternalID int64         `db:"external_id"`
	Date       time.Time     `db:"date"`
	Season     int           `db:"season"`
	LeagueID   int64         `db:"league_id"`
	HomeTeamID int64         `db:"home_team_id"`
	AwayTeamID int64         `db:"away_team_id"`
	HomeScore  sql.NullInt64 `db:"home_score"`
	AwayScore  sql.NullInt64 `db:"away_score"`
	Status     string        `db:"status"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
}

type matchInsertModel struct {
	ExternalID int64         `db:"external_id"`
	Date       time.Time     `db:"date"`
	Season     int           `db:"season"`
	LeagueID   int64         `db:"league_id"`
	HomeTeamID int64         `db:"home_team_id"`
	AwayTeamID int64         `db:"away_team_id"`
	HomeScore  sql.NullInt64 `db:"home_score"`
	AwayScore  sql.NullInt64 `db:"away_score"`
	Status     string        `db:"status"`
}
