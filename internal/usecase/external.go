package usecase

import (
	"context"
	"time"

	"github.com/scorelinehq/scoreline/internal/domain/game"
)

// SportsDataProvider is the upstream feed the sync service reconciles
// against. Implementations own caching, retries, and rate-limit
// handling; errors crossing this boundary wrap the usecase sentinels.
type SportsDataProvider interface {
	FetchScoreboard(ctx context.Context, leagueAbbr string, date time.Time) ([]ExternalGame, []SkipDiagnostic, error)
	FetchTeamSchedule(ctx context.Context, leagueAbbr, teamExternalID string, season int) ([]ExternalGame, []SkipDiagnostic, error)
	FetchTeams(ctx context.Context, leagueAbbr string) ([]ExternalTeam, error)
	FetchTeamDetails(ctx context.Context, leagueAbbr, teamExternalID string) (ExternalTeamDetails, error)
	FetchStandings(ctx context.Context, leagueAbbr string) ([]ExternalStandingRow, error)
	FetchTeamRoster(ctx context.Context, leagueAbbr, teamExternalID string) ([]ExternalPlayer, error)
}

// SkipDiagnostic records one scoreboard event the normalizer discarded
// and why, so silent data loss is visible in sync logs.
type SkipDiagnostic struct {
	EventID string
	Reason  string
}

// ExternalTeamStub is the minimal team identity embedded in a
// scoreboard event. It is enough to create a placeholder row.
type ExternalTeamStub struct {
	ExternalID   string
	Name         string
	Abbreviation string
	LogoURL      string
}

type ExternalPeriodScore struct {
	Period    int
	HomeScore int
	AwayScore int
}

// ExternalGame is one normalized scoreboard event.
type ExternalGame struct {
	ExternalID string
	HomeTeam   ExternalTeamStub
	AwayTeam   ExternalTeamStub

	// ScheduledTime is nil when the feed's date string was absent or
	// unparseable; the sync layer substitutes the requested date.
	ScheduledTime *time.Time

	Status        game.Status
	HomeScore     int
	AwayScore     int
	Period        int
	TimeRemaining string

	PeriodScores []ExternalPeriodScore
	Situation    *game.Situation
	BoxScore     *game.BoxScore

	VenueName     string
	VenueCity     string
	VenueState    string
	VenueCapacity *int
	Attendance    *int

	BroadcastNetwork string
	Broadcasts       []game.Broadcast

	HomePitcherName  string
	AwayPitcherName  string
	HomePitcherStats map[string]string
	AwayPitcherStats map[string]string
}

type ExternalTeam struct {
	ExternalID   string
	Name         string
	Abbreviation string
	LogoURL      string

	// Record is zero-valued when the teams payload carried no record
	// block for this team.
	Record ExternalRecordStats
}

// ExternalRecordStats is the season record block from a team detail or
// standings payload. Missing upstream values stay zero.
type ExternalRecordStats struct {
	Wins               int
	Losses             int
	Ties               int
	GamesPlayed        int
	PointsFor          float64
	PointsAgainst      float64
	Differential       float64
	DivisionWinPercent float64
	GamesBehind        float64
}

type ExternalTeamDetails struct {
	ExternalID   string
	Name         string
	Abbreviation string
	LogoURL      string
	Record       ExternalRecordStats
}

type ExternalStandingRow struct {
	TeamExternalID string
	TeamName       string
	Record         ExternalRecordStats
}

type ExternalPlayer struct {
	ExternalID  string
	FirstName   string
	LastName    string
	FullName    string
	DisplayName string

	JerseyNumber string
	Position     string
	PositionAbbr string

	Height string
	Weight string
	Age    *int

	HeadshotURL string
	Status      string
}
