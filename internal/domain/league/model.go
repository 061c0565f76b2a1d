package league

import "fmt"

// League is a football competition tracked by the dashboard. ExternalID is the
// identifier used by the sports-data provider; ID is local to our store.
type League struct {
	ID         int64
	ExternalID int64
	Name       string
}

func (l League) Validate() error {
	if l.ExternalID <= 0 {
		return fmt.Errorf("league external id must be greater than zero")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}

	return nil
}
