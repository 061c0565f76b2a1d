package usecase

import (
	"context"
	"time"
)

// FixtureRecord is one fixture as reported by the sports-data provider,
// flattened from the provider envelope. Scores are nil until played.
type FixtureRecord struct {
	FixtureID  int64
	Date       time.Time
	HomeTeam   string
	HomeTeamID int64
	AwayTeam   string
	AwayTeamID int64
	HomeScore  *int
	AwayScore  *int
	Status     string
	LeagueName string
}

// StandingRecord is one provider table row. Points is the official total,
// net of any deduction the competition has applied.
type StandingRecord struct {
	TeamID         int64
	TeamName       string
	Position       int
	Points         int
	Played         int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Form           string
}

// SportDataProvider pulls league data from the external football API.
type SportDataProvider interface {
	FetchFixtures(ctx context.Context, leagueExternalID int64, season int) ([]FixtureRecord, error)
	FetchStandings(ctx context.Context, leagueExternalID int64, season int) ([]StandingRecord, error)
}
