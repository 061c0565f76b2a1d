package postgres

import "time"

type teamTableModel struct {
	ID         int64     `db:"id"`
	ExternalID int64     `db:"external_id"`
	LeagueID   int64     `db:"league_id"`
	Name       string    `db:"name"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type teamInsertModel struct {
	ExternalID int64  `db:"external_id"`
	LeagueID   int64  `db:"league_id"`
	Name       string `db:"name"`
}
