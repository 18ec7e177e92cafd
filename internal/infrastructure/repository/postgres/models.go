package postgres

import (
	"database/sql"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/scorelinehq/scoreline/internal/domain/game"
	"github.com/scorelinehq/scoreline/internal/domain/league"
	"github.com/scorelinehq/scoreline/internal/domain/player"
	"github.com/scorelinehq/scoreline/internal/domain/team"
)

type leagueTableModel struct {
	Abbreviation string    `db:"abbreviation"`
	Name         string    `db:"name"`
	SportType    string    `db:"sport_type"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (m leagueTableModel) toDomain() league.League {
	return league.League{
		Abbreviation: m.Abbreviation,
		Name:         m.Name,
		SportType:    m.SportType,
	}
}

type teamTableModel struct {
	LeagueAbbr         string    `db:"league_abbr"`
	ExternalID         string    `db:"external_id"`
	Name               string    `db:"name"`
	Abbreviation       string    `db:"abbreviation"`
	LogoURL            string    `db:"logo_url"`
	Wins               int       `db:"wins"`
	Losses             int       `db:"losses"`
	Ties               int       `db:"ties"`
	GamesPlayed        int       `db:"games_played"`
	PointsFor          float64   `db:"points_for"`
	PointsAgainst      float64   `db:"points_against"`
	Differential       float64   `db:"differential"`
	DivisionWinPercent float64   `db:"division_win_percent"`
	GamesBehind        float64   `db:"games_behind"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ExternalID:         m.ExternalID,
		LeagueAbbr:         m.LeagueAbbr,
		Name:               m.Name,
		Abbreviation:       m.Abbreviation,
		LogoURL:            m.LogoURL,
		Wins:               m.Wins,
		Losses:             m.Losses,
		Ties:               m.Ties,
		GamesPlayed:        m.GamesPlayed,
		PointsFor:          m.PointsFor,
		PointsAgainst:      m.PointsAgainst,
		Differential:       m.Differential,
		DivisionWinPercent: m.DivisionWinPercent,
		GamesBehind:        m.GamesBehind,
	}
}

type gameTableModel struct {
	ExternalID         string         `db:"external_id"`
	LeagueAbbr         string         `db:"league_abbr"`
	HomeTeamExternalID string         `db:"home_team_external_id"`
	AwayTeamExternalID string         `db:"away_team_external_id"`
	GameDate           time.Time      `db:"game_date"`
	ScheduledTime      sql.NullTime   `db:"scheduled_time"`
	Status             string         `db:"status"`
	HomeScore          int            `db:"home_score"`
	AwayScore          int            `db:"away_score"`
	Period             int            `db:"period"`
	TimeRemaining      string         `db:"time_remaining"`
	Situation          []byte         `db:"situation"`
	BoxScore           []byte         `db:"box_score"`
	VenueName          string         `db:"venue_name"`
	VenueCity          string         `db:"venue_city"`
	VenueState         string         `db:"venue_state"`
	VenueCapacity      sql.NullInt64  `db:"venue_capacity"`
	Attendance         sql.NullInt64  `db:"attendance"`
	BroadcastNetwork   string         `db:"broadcast_network"`
	Broadcasts         []byte         `db:"broadcasts"`
	HomePitcherName    string         `db:"home_pitcher_name"`
	AwayPitcherName    string         `db:"away_pitcher_name"`
	HomePitcherStats   []byte         `db:"home_pitcher_stats"`
	AwayPitcherStats   []byte         `db:"away_pitcher_stats"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

func gameToModel(g game.Game) (gameTableModel, error) {
	situation, err := marshalNullable(g.Situation)
	if err != nil {
		return gameTableModel{}, fmt.Errorf("marshal situation: %w", err)
	}
	boxScore, err := marshalNullable(g.BoxScore)
	if err != nil {
		return gameTableModel{}, fmt.Errorf("marshal box score: %w", err)
	}
	var broadcasts []byte
	if len(g.Broadcasts) > 0 {
		broadcasts, err = sonic.Marshal(g.Broadcasts)
		if err != nil {
			return gameTableModel{}, fmt.Errorf("marshal broadcasts: %w", err)
		}
	}
	homePitcherStats, err := marshalNullable(g.HomePitcherStats)
	if err != nil {
		return gameTableModel{}, fmt.Errorf("marshal home pitcher stats: %w", err)
	}
	awayPitcherStats, err := marshalNullable(g.AwayPitcherStats)
	if err != nil {
		return gameTableModel{}, fmt.Errorf("marshal away pitcher stats: %w", err)
	}

	return gameTableModel{
		ExternalID:         g.ExternalID,
		LeagueAbbr:         g.LeagueAbbr,
		HomeTeamExternalID: g.HomeTeamExternalID,
		AwayTeamExternalID: g.AwayTeamExternalID,
		GameDate:           g.GameDate,
		ScheduledTime:      timeToNull(g.ScheduledTime),
		Status:             string(g.Status),
		HomeScore:          g.HomeScore,
		AwayScore:          g.AwayScore,
		Period:             g.Period,
		TimeRemaining:      g.TimeRemaining,
		Situation:          situation,
		BoxScore:           boxScore,
		VenueName:          g.VenueName,
		VenueCity:          g.VenueCity,
		VenueState:         g.VenueState,
		VenueCapacity:      intPtrToNull(g.VenueCapacity),
		Attendance:         intPtrToNull(g.Attendance),
		BroadcastNetwork:   g.BroadcastNetwork,
		Broadcasts:         broadcasts,
		HomePitcherName:    g.HomePitcherName,
		AwayPitcherName:    g.AwayPitcherName,
		HomePitcherStats:   homePitcherStats,
		AwayPitcherStats:   awayPitcherStats,
	}, nil
}

func (m gameTableModel) toDomain() (game.Game, error) {
	g := game.Game{
		ExternalID:         m.ExternalID,
		LeagueAbbr:         m.LeagueAbbr,
		HomeTeamExternalID: m.HomeTeamExternalID,
		AwayTeamExternalID: m.AwayTeamExternalID,
		GameDate:           m.GameDate,
		ScheduledTime:      nullToTimePtr(m.ScheduledTime),
		Status:             game.Status(m.Status),
		HomeScore:          m.HomeScore,
		AwayScore:          m.AwayScore,
		Period:             m.Period,
		TimeRemaining:      m.TimeRemaining,
		VenueName:          m.VenueName,
		VenueCity:          m.VenueCity,
		VenueState:         m.VenueState,
		VenueCapacity:      nullToIntPtr(m.VenueCapacity),
		Attendance:         nullToIntPtr(m.Attendance),
		BroadcastNetwork:   m.BroadcastNetwork,
		HomePitcherName:    m.HomePitcherName,
		AwayPitcherName:    m.AwayPitcherName,
	}

	if len(m.Situation) > 0 {
		g.Situation = &game.Situation{}
		if err := sonic.Unmarshal(m.Situation, g.Situation); err != nil {
			return game.Game{}, fmt.Errorf("unmarshal situation: %w", err)
		}
	}
	if len(m.BoxScore) > 0 {
		g.BoxScore = &game.BoxScore{}
		if err := sonic.Unmarshal(m.BoxScore, g.BoxScore); err != nil {
			return game.Game{}, fmt.Errorf("unmarshal box score: %w", err)
		}
	}
	if len(m.Broadcasts) > 0 {
		if err := sonic.Unmarshal(m.Broadcasts, &g.Broadcasts); err != nil {
			return game.Game{}, fmt.Errorf("unmarshal broadcasts: %w", err)
		}
	}
	if len(m.HomePitcherStats) > 0 {
		if err := sonic.Unmarshal(m.HomePitcherStats, &g.HomePitcherStats); err != nil {
			return game.Game{}, fmt.Errorf("unmarshal home pitcher stats: %w", err)
		}
	}
	if len(m.AwayPitcherStats) > 0 {
		if err := sonic.Unmarshal(m.AwayPitcherStats, &g.AwayPitcherStats); err != nil {
			return game.Game{}, fmt.Errorf("unmarshal away pitcher stats: %w", err)
		}
	}

	return g, nil
}

type periodScoreTableModel struct {
	GameExternalID string `db:"game_external_id"`
	Period         int    `db:"period"`
	HomeScore      int    `db:"home_score"`
	AwayScore      int    `db:"away_score"`
}

func (m periodScoreTableModel) toDomain() game.PeriodScore {
	return game.PeriodScore{
		GameExternalID: m.GameExternalID,
		Period:         m.Period,
		HomeScore:      m.HomeScore,
		AwayScore:      m.AwayScore,
	}
}

type playerTableModel struct {
	LeagueAbbr     string        `db:"league_abbr"`
	ExternalID     string        `db:"external_id"`
	TeamExternalID string        `db:"team_external_id"`
	FirstName      string        `db:"first_name"`
	LastName       string        `db:"last_name"`
	FullName       string        `db:"full_name"`
	DisplayName    string        `db:"display_name"`
	JerseyNumber   string        `db:"jersey_number"`
	Position       string        `db:"position"`
	PositionAbbr   string        `db:"position_abbr"`
	Height         string        `db:"height"`
	Weight         string        `db:"weight"`
	Age            sql.NullInt64 `db:"age"`
	HeadshotURL    string        `db:"headshot_url"`
	Status         string        `db:"status"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ExternalID:     m.ExternalID,
		TeamExternalID: m.TeamExternalID,
		LeagueAbbr:     m.LeagueAbbr,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		FullName:       m.FullName,
		DisplayName:    m.DisplayName,
		JerseyNumber:   m.JerseyNumber,
		Position:       m.Position,
		PositionAbbr:   m.PositionAbbr,
		Height:         m.Height,
		Weight:         m.Weight,
		Age:            nullToIntPtr(m.Age),
		HeadshotURL:    m.HeadshotURL,
		Status:         m.Status,
	}
}

func marshalNullable(v any) ([]byte, error) {
	switch value := v.(type) {
	case *game.Situation:
		if value == nil {
			return nil, nil
		}
	case *game.BoxScore:
		if value == nil {
			return nil, nil
		}
	case map[string]string:
		if len(value) == 0 {
			return nil, nil
		}
	}
	return sonic.Marshal(v)
}

func timeToNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullToTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	out := t.Time
	return &out
}

func intPtrToNull(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}
