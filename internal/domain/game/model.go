package game

import (
	"fmt"
	"time"
)

// Status is the canonical game state. Upstream has a much larger status
// vocabulary that the provider client maps down to these five.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinal     Status = "final"
	StatusPostponed Status = "postponed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsLive() bool  { return s == StatusLive }
func (s Status) IsFinal() bool { return s == StatusFinal }

// HasStarted reports whether live-game detail (situation, box-score
// statistics) is meaningful for this status.
func (s Status) HasStarted() bool {
	return s == StatusLive || s == StatusFinal
}

// Situation is live in-game detail for baseball-like sports.
type Situation struct {
	Balls          int    `json:"balls"`
	Strikes        int    `json:"strikes"`
	Outs           int    `json:"outs"`
	OnFirst        bool   `json:"on_first"`
	OnSecond       bool   `json:"on_second"`
	OnThird        bool   `json:"on_third"`
	PitcherName    string `json:"pitcher_name,omitempty"`
	PitcherSummary string `json:"pitcher_summary,omitempty"`
	BatterName     string `json:"batter_name,omitempty"`
	BatterSummary  string `json:"batter_summary,omitempty"`
}

// BoxScore carries per-side display linescores and aggregate stats
// (hits, errors) as the provider reports them.
type BoxScore struct {
	HomeLinescores []string          `json:"home_linescores"`
	AwayLinescores []string          `json:"away_linescores"`
	HomeStats      map[string]string `json:"home_stats,omitempty"`
	AwayStats      map[string]string `json:"away_stats,omitempty"`
}

type Broadcast struct {
	Market   string   `json:"market"`
	Networks []string `json:"networks"`
}

// Game is one scheduled or played contest. ExternalID is provider-issued,
// unique across all leagues, and the sole reconciliation key.
type Game struct {
	ExternalID         string
	LeagueAbbr         string
	HomeTeamExternalID string
	AwayTeamExternalID string

	// GameDate is always set; it falls back to the sync-requested date at
	// midnight UTC when the scheduled time is absent or unparseable.
	GameDate      time.Time
	ScheduledTime *time.Time

	Status        Status
	HomeScore     int
	AwayScore     int
	Period        int
	TimeRemaining string

	Situation *Situation
	BoxScore  *BoxScore

	VenueName     string
	VenueCity     string
	VenueState    string
	VenueCapacity *int
	Attendance    *int

	BroadcastNetwork string
	Broadcasts       []Broadcast

	HomePitcherName  string
	AwayPitcherName  string
	HomePitcherStats map[string]string
	AwayPitcherStats map[string]string
}

func (g Game) Validate() error {
	if g.ExternalID == "" {
		return fmt.Errorf("game external id is required")
	}
	if g.LeagueAbbr == "" {
		return fmt.Errorf("game league abbreviation is required")
	}
	if g.GameDate.IsZero() {
		return fmt.Errorf("game date is required")
	}
	return nil
}

// PeriodScore is the score attributable to one discrete segment of a
// game, keyed by (game, period). Rows are owned by the game's current
// sync cycle and fully replaced on every re-sync.
type PeriodScore struct {
	GameExternalID string
	Period         int
	HomeScore      int
	AwayScore      int
}
