package league

import "fmt"

// League is one supported competition, keyed by its abbreviation.
type League struct {
	Abbreviation string
	Name         string
	SportType    string
}

func (l League) Validate() error {
	if l.Abbreviation == "" {
		return fmt.Errorf("league abbreviation is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	return nil
}

// Known returns the static list of leagues the service syncs. The
// bootstrap job upserts these; upstream never defines them.
func Known() []League {
	return []League{
		{Abbreviation: "NFL", Name: "National Football League", SportType: "football"},
		{Abbreviation: "NBA", Name: "National Basketball Association", SportType: "basketball"},
		{Abbreviation: "MLB", Name: "Major League Baseball", SportType: "baseball"},
		{Abbreviation: "NHL", Name: "National Hockey League", SportType: "hockey"},
	}
}
