package standing

import (
	"fmt"
	"time"
)

// Standing is one provider table row for a team in a (league, season).
// Points holds the provider's official total, already net of any deduction.
// PointsDeduction is inferred locally by comparing that total against what
// the stored results add up to.
type Standing struct {
	Season          int
	LeagueID        int64
	TeamID          int64
	Position        int
	Points          int
	PointsDeduction int
	Played          int
	GoalsFor        int
	GoalsAgainst    int
	GoalDifference  int
	Form            string
	LastUpdated     time.Time
}

func (s Standing) Validate() error {
	if s.Season <= 0 {
		return fmt.Errorf("standing season must be greater than zero")
	}
	if s.LeagueID <= 0 {
		return fmt.Errorf("standing league id must be greater than zero")
	}
	if s.TeamID <= 0 {
		return fmt.Errorf("standing team id must be greater than zero")
	}
	if s.Position <= 0 {
		return fmt.Errorf("standing position must be greater than zero")
	}
	if s.PointsDeduction < 0 {
		return fmt.Errorf("standing points deduction cannot be negative")
	}

	return nil
}
