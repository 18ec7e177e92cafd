package team

import "fmt"

// Team is one club inside a league, keyed by (league, external id).
// The upstream provider issues the external id.
type Team struct {
	ExternalID   string
	LeagueAbbr   string
	Name         string
	Abbreviation string
	LogoURL      string

	Wins   int
	Losses int
	Ties   int

	// Extended record stats, populated only by the team-details and
	// standings syncs, never by scoreboard ingestion.
	GamesPlayed        int
	PointsFor          float64
	PointsAgainst      float64
	Differential       float64
	DivisionWinPercent float64
	GamesBehind        float64
}

func (t Team) Validate() error {
	if t.ExternalID == "" {
		return fmt.Errorf("team external id is required")
	}
	if t.LeagueAbbr == "" {
		return fmt.Errorf("team league abbreviation is required")
	}
	return nil
}

func (t Team) Key() string {
	return t.LeagueAbbr + ":" + t.ExternalID
}
