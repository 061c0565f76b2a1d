package match

import (
	"fmt"
	"time"
)

// Provider status codes we act on. Anything else is carried through
// untouched and treated as not finished.
const (
	StatusNotStarted   = "NS"
	StatusFinished     = "FT"
	StatusExtraTime    = "AET"
	StatusPenaltiesEnd = "PEN"
)

// Match is one fixture between two teams. Scores are pointers because the
// provider reports null goals for games that have not been played; a nil
// score is "unknown", not zero.
type Match struct {
	ID         int64
	ExternalID int64
	Date       time.Time
	Season     int
	LeagueID   int64
	HomeTeamID int64
	AwayTeamID int64
	HomeScore  *int
	AwayScore  *int
	Status     string
}

// IsFinished reports whether the match produced a final result.
func (m Match) IsFinished() bool {
	switch m.Status {
	case StatusFinished, StatusExtraTime, StatusPenaltiesEnd:
		return true
	}
	return false
}

// HasResult reports whether both scores are known. Finished matches with a
// missing score are provider glitches and are excluded from points math.
func (m Match) HasResult() bool {
	return m.IsFinished() && m.HomeScore != nil && m.AwayScore != nil
}

func (m Match) Validate() error {
	if m.ExternalID <= 0 {
		return fmt.Errorf("match external id must be greater than zero")
	}
	if m.LeagueID <= 0 {
		return fmt.Errorf("match league id must be greater than zero")
	}
	if m.Season <= 0 {
		return fmt.Errorf("match season must be greater than zero")
	}
	if m.HomeTeamID <= 0 || m.AwayTeamID <= 0 {
		return fmt.Errorf("match team ids must be greater than zero")
	}
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("match cannot have a team playing itself")
	}
	if m.Date.IsZero() {
		return fmt.Errorf("match date is required")
	}

	return nil
}
