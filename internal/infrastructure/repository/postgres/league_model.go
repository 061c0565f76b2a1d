package postgres

import "time"

type leagueTableModel struct {
	ID         int64     `db:"id"`
	ExternalID int64     `db:"external_id"`
	Name       string    `db:"name"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type leagueInsertModel struct {
	ExternalID int64  `db:"external_id"`
	Name       string `db:"name"`
}
