package player

import "fmt"

// Player is one roster entry. Identity is (league, external id); a
// player appearing on a new team after a trade keeps the same row with
// an updated team reference.
type Player struct {
	ExternalID     string
	TeamExternalID string
	LeagueAbbr     string

	FirstName   string
	LastName    string
	FullName    string
	DisplayName string

	// JerseyNumber stays a string; upstream emits values like "00".
	JerseyNumber string

	Position     string
	PositionAbbr string

	Height string
	Weight string
	Age    *int

	HeadshotURL string
	Status      string
}

func (p Player) Validate() error {
	if p.ExternalID == "" {
		return fmt.Errorf("player external id is required")
	}
	if p.LeagueAbbr == "" {
		return fmt.Errorf("player league abbreviation is required")
	}
	if p.TeamExternalID == "" {
		return fmt.Errorf("player team external id is required")
	}
	return nil
}
