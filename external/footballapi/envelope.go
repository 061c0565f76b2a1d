package footballapi

import (
	"fmt"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jakubzver/footboard/internal/usecase"
)

// providerErrors absorbs the API's inconsistent "errors" field, which is an
// empty array on success and an object keyed by error kind on failure.
type providerErrors map[string]string

func (e *providerErrors) UnmarshalJSON(raw []byte) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || strings.HasPrefix(trimmed, "[") {
		*e = nil
		return nil
	}

	out := map[string]string{}
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return err
	}
	*e = out
	return nil
}

func (e providerErrors) String() string {
	if len(e) == 0 {
		return ""
	}
	keys := make([]string, 0, len(e))
	for key := range e {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e[key])
	}
	return strings.Join(parts, "; ")
}

type fixturesEnvelope struct {
	Errors   providerErrors `json:"errors"`
	Response []fixtureItem  `json:"response"`
}

type fixtureItem struct {
	Fixture struct {
		ID     int64  `json:"id"`
		Date   string `json:"date"`
		Status struct {
			Short string `json:"short"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		Name string `json:"name"`
	} `json:"league"`
	Teams struct {
		Home fixtureTeamRef `json:"home"`
		Away fixtureTeamRef `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

type fixtureTeamRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type standingsEnvelope struct {
	Errors   providerErrors `json:"errors"`
	Response []struct {
		League struct {
			Standings [][]standingRow `json:"standings"`
		} `json:"league"`
	} `json:"response"`
}

type standingRow struct {
	Rank int `json:"rank"`
	Team struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	Points    int    `json:"points"`
	GoalsDiff int    `json:"goalsDiff"`
	Form      string `json:"form"`
	All       struct {
		Played int `json:"played"`
		Goals  struct {
			For     int `json:"for"`
			Against int `json:"against"`
		} `json:"goals"`
	} `json:"all"`
}

func mapFixture(item fixtureItem) (usecase.FixtureRecord, error) {
	if item.Fixture.ID <= 0 {
		return usecase.FixtureRecord{}, fmt.Errorf("fixture id missing")
	}
	if item.Teams.Home.ID <= 0 || item.Teams.Away.ID <= 0 {
		return usecase.FixtureRecord{}, fmt.Errorf("fixture %d participant ids missing", item.Fixture.ID)
	}

	date, err := parseProviderDate(item.Fixture.Date)
	if err != nil {
		return usecase.FixtureRecord{}, fmt.Errorf("fixture %d date %q: %w", item.Fixture.ID, item.Fixture.Date, err)
	}

	return usecase.FixtureRecord{
		FixtureID:  item.Fixture.ID,
		Date:       date,
		HomeTeam:   strings.TrimSpace(item.Teams.Home.Name),
		HomeTeamID: item.Teams.Home.ID,
		AwayTeam:   strings.TrimSpace(item.Teams.Away.Name),
		AwayTeamID: item.Teams.Away.ID,
		HomeScore:  item.Goals.Home,
		AwayScore:  item.Goals.Away,
		Status:     strings.TrimSpace(item.Fixture.Status.Short),
		LeagueName: strings.TrimSpace(item.League.Name),
	}, nil
}

func mapStanding(row standingRow) (usecase.StandingRecord, bool) {
	if row.Team.ID <= 0 || row.Rank <= 0 {
		return usecase.StandingRecord{}, false
	}

	return usecase.StandingRecord{
		TeamID:         row.Team.ID,
		TeamName:       strings.TrimSpace(row.Team.Name),
		Position:       row.Rank,
		Points:         row.Points,
		Played:         row.All.Played,
		GoalsFor:       row.All.Goals.For,
		GoalsAgainst:   row.All.Goals.Against,
		GoalDifference: row.GoalsDiff,
		Form:           strings.TrimSpace(row.Form),
	}, true
}

func parseProviderDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05-07:00",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized layout")
}
