package team

import "fmt"

// Team is a club inside one league. The same real-world club appearing in two
// competitions gets two rows: provider team ids are only unique per league, so
// identity is the (ExternalID, LeagueID) pair, never ExternalID alone.
type Team struct {
	ID         int64
	ExternalID int64
	LeagueID   int64
	Name       string
}

// Key is the composite identity used to resolve provider team references.
type Key struct {
	ExternalID int64
	LeagueID   int64
}

func (t Team) Key() Key {
	return Key{ExternalID: t.ExternalID, LeagueID: t.LeagueID}
}

func (t Team) Validate() error {
	if t.ExternalID <= 0 {
		return fmt.Errorf("team external id must be greater than zero")
	}
	if t.LeagueID <= 0 {
		return fmt.Errorf("team league id must be greater than zero")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
