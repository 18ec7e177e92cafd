package espn

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/scorelinehq/scoreline/internal/domain/game"
	"github.com/scorelinehq/scoreline/internal/usecase"
)

type scoreboardEnvelope struct {
	Events []scoreboardEvent `json:"events"`
}

type scoreboardEvent struct {
	ID           string        `json:"id"`
	Date         string        `json:"date"`
	Competitions []competition `json:"competitions"`
}

type competition struct {
	Date        string           `json:"date"`
	Competitors []competitor     `json:"competitors"`
	Status      statusBlock      `json:"status"`
	Situation   *situationBlock  `json:"situation"`
	Venue       *venueBlock      `json:"venue"`
	Attendance  *int             `json:"attendance"`
	Broadcasts  []broadcastBlock `json:"broadcasts"`
}

type competitor struct {
	ID         string           `json:"id"`
	HomeAway   string           `json:"homeAway"`
	Score      any              `json:"score"`
	Team       competitorTeam   `json:"team"`
	Linescores []linescoreBlock `json:"linescores"`
	Statistics []statBlock      `json:"statistics"`
	Probables  []probableBlock  `json:"probables"`
}

type competitorTeam struct {
	Abbreviation string `json:"abbreviation"`
	DisplayName  string `json:"displayName"`
	Logo         string `json:"logo"`
}

type linescoreBlock struct {
	Value        any    `json:"value"`
	DisplayValue string `json:"displayValue"`
}

type statBlock struct {
	Name         string `json:"name"`
	DisplayValue string `json:"displayValue"`
}

type probableBlock struct {
	Name       string `json:"name"`
	Athlete    struct {
		ShortName string `json:"shortName"`
	} `json:"athlete"`
	Statistics []struct {
		Abbreviation string `json:"abbreviation"`
		DisplayValue string `json:"displayValue"`
	} `json:"statistics"`
}

type statusBlock struct {
	Period       int    `json:"period"`
	DisplayClock string `json:"displayClock"`
	Type         struct {
		Name string `json:"name"`
	} `json:"type"`
}

type situationBlock struct {
	Balls    int  `json:"balls"`
	Strikes  int  `json:"strikes"`
	Outs     int  `json:"outs"`
	OnFirst  bool `json:"onFirst"`
	OnSecond bool `json:"onSecond"`
	OnThird  bool `json:"onThird"`
	Pitcher  *struct {
		Summary string `json:"summary"`
		Athlete struct {
			ShortName string `json:"shortName"`
		} `json:"athlete"`
	} `json:"pitcher"`
	Batter *struct {
		Summary string `json:"summary"`
		Athlete struct {
			ShortName string `json:"shortName"`
		} `json:"athlete"`
	} `json:"batter"`
}

type venueBlock struct {
	FullName string `json:"fullName"`
	Capacity *int   `json:"capacity"`
	Address  struct {
		City  string `json:"city"`
		State string `json:"state"`
	} `json:"address"`
}

type broadcastBlock struct {
	Market string   `json:"market"`
	Names  []string `json:"names"`
}

// FetchScoreboard returns the normalized scoreboard for one league and
// date. Events the normalizer cannot use are reported as diagnostics,
// never dropped silently. The response is cached with a TTL derived
// from the games it actually contains.
func (c *Client) FetchScoreboard(ctx context.Context, leagueAbbr string, date time.Time) ([]usecase.ExternalGame, []usecase.SkipDiagnostic, error) {
	route, err := c.route(leagueAbbr)
	if err != nil {
		return nil, nil, err
	}

	path := fmt.Sprintf("/%s/%s/scoreboard", route.sport, route.slug)
	query := map[string]string{
		"limit": strconv.Itoa(c.pageLimit),
		"dates": date.UTC().Format("20060102"),
	}

	raw, fromCache, err := c.fetch(ctx, path, query)
	if err != nil {
		return nil, nil, err
	}
	var envelope scoreboardEnvelope
	if err := decode(raw, &envelope); err != nil {
		return nil, nil, err
	}

	games := make([]usecase.ExternalGame, 0, len(envelope.Events))
	var skips []usecase.SkipDiagnostic
	for _, event := range envelope.Events {
		g, err := normalizeEvent(event)
		if err != nil {
			skips = append(skips, usecase.SkipDiagnostic{EventID: event.ID, Reason: err.Error()})
			continue
		}
		games = append(games, g)
	}

	// The right cache window depends on the payload: a slate with live
	// games goes stale in seconds, a finished slate barely changes.
	if !fromCache {
		c.cache.Set(ctx, requestKey(path, query), raw, scoreboardTTL(games))
	}
	return games, skips, nil
}

func scoreboardTTL(games []usecase.ExternalGame) time.Duration {
	if len(games) == 0 {
		return scheduledTTL
	}
	allFinal := true
	for _, g := range games {
		if g.Status.IsLive() {
			return liveTTL
		}
		if !g.Status.IsFinal() {
			allFinal = false
		}
	}
	if allFinal {
		return finalTTL
	}
	return scheduledTTL
}

func normalizeEvent(event scoreboardEvent) (usecase.ExternalGame, error) {
	if strings.TrimSpace(event.ID) == "" {
		return usecase.ExternalGame{}, fmt.Errorf("event has no id")
	}
	if len(event.Competitions) == 0 {
		return usecase.ExternalGame{}, fmt.Errorf("event has no competitions")
	}
	comp := event.Competitions[0]

	var home, away competitor
	for _, c := range comp.Competitors {
		switch c.HomeAway {
		case "home":
			home = c
		case "away":
			away = c
		}
	}

	status := mapStatus(comp.Status.Type.Name)

	g := usecase.ExternalGame{
		ExternalID:    event.ID,
		HomeTeam:      teamStub(home),
		AwayTeam:      teamStub(away),
		ScheduledTime: parseEventTime(comp.Date, event.Date),
		Status:        status,
		HomeScore:     toInt(home.Score),
		AwayScore:     toInt(away.Score),
		Period:        comp.Status.Period,
		TimeRemaining: comp.Status.DisplayClock,
		PeriodScores:  zipPeriodScores(home.Linescores, away.Linescores),
	}

	// Live-situation detail is meaningless before a game starts and the
	// feed is inconsistent there, so it is only kept once underway.
	if status.HasStarted() && comp.Situation != nil {
		g.Situation = normalizeSituation(comp.Situation)
	}
	g.BoxScore = &game.BoxScore{
		HomeLinescores: displayLinescores(home.Linescores),
		AwayLinescores: displayLinescores(away.Linescores),
		HomeStats:      sideStats(home, status),
		AwayStats:      sideStats(away, status),
	}

	if comp.Venue != nil {
		g.VenueName = comp.Venue.FullName
		g.VenueCity = comp.Venue.Address.City
		g.VenueState = comp.Venue.Address.State
		g.VenueCapacity = comp.Venue.Capacity
	}
	g.Attendance = comp.Attendance

	for _, b := range comp.Broadcasts {
		if len(b.Names) == 0 {
			continue
		}
		if g.BroadcastNetwork == "" {
			g.BroadcastNetwork = b.Names[0]
		}
		g.Broadcasts = append(g.Broadcasts, game.Broadcast{Market: b.Market, Networks: b.Names})
	}

	applyProbablePitchers(&g, comp.Competitors)
	return g, nil
}

func teamStub(c competitor) usecase.ExternalTeamStub {
	return usecase.ExternalTeamStub{
		ExternalID:   c.ID,
		Name:         c.Team.DisplayName,
		Abbreviation: c.Team.Abbreviation,
		LogoURL:      c.Team.Logo,
	}
}

// zipPeriodScores pairs the two linescore arrays positionally, 1-based.
// A period present on only one side is dropped, not padded.
func zipPeriodScores(home, away []linescoreBlock) []usecase.ExternalPeriodScore {
	n := len(home)
	if len(away) < n {
		n = len(away)
	}
	if n == 0 {
		return nil
	}

	scores := make([]usecase.ExternalPeriodScore, 0, n)
	for i := 0; i < n; i++ {
		scores = append(scores, usecase.ExternalPeriodScore{
			Period:    i + 1,
			HomeScore: toInt(home[i].Value),
			AwayScore: toInt(away[i].Value),
		})
	}
	return scores
}

func displayLinescores(linescores []linescoreBlock) []string {
	out := make([]string, 0, len(linescores))
	for _, ls := range linescores {
		if ls.DisplayValue == "" {
			out = append(out, "-")
			continue
		}
		out = append(out, ls.DisplayValue)
	}
	return out
}

// sideStats keeps hit/error counters once a game is underway and pins
// them to zero otherwise.
func sideStats(c competitor, status game.Status) map[string]string {
	stats := map[string]string{"hits": "0", "errors": "0"}
	if !status.HasStarted() {
		return stats
	}
	for _, stat := range c.Statistics {
		if _, tracked := stats[stat.Name]; tracked && stat.DisplayValue != "" {
			stats[stat.Name] = stat.DisplayValue
		}
	}
	return stats
}

func normalizeSituation(sit *situationBlock) *game.Situation {
	out := &game.Situation{
		Balls:    sit.Balls,
		Strikes:  sit.Strikes,
		Outs:     sit.Outs,
		OnFirst:  sit.OnFirst,
		OnSecond: sit.OnSecond,
		OnThird:  sit.OnThird,
	}
	if sit.Pitcher != nil {
		out.PitcherName = sit.Pitcher.Athlete.ShortName
		out.PitcherSummary = sit.Pitcher.Summary
	}
	if sit.Batter != nil {
		out.BatterName = sit.Batter.Athlete.ShortName
		out.BatterSummary = sit.Batter.Summary
	}
	return out
}

func applyProbablePitchers(g *usecase.ExternalGame, competitors []competitor) {
	for _, c := range competitors {
		for _, probable := range c.Probables {
			if probable.Name != "probableStartingPitcher" {
				continue
			}
			stats := map[string]string{}
			for _, stat := range probable.Statistics {
				if stat.Abbreviation != "" && stat.DisplayValue != "" {
					stats[stat.Abbreviation] = stat.DisplayValue
				}
			}
			if len(stats) == 0 {
				stats = nil
			}
			if c.HomeAway == "home" {
				g.HomePitcherName = probable.Athlete.ShortName
				g.HomePitcherStats = stats
			} else {
				g.AwayPitcherName = probable.Athlete.ShortName
				g.AwayPitcherStats = stats
			}
		}
	}
}

var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// parseEventTime tries the competition date first, then the event date.
// The feed writes a literal trailing Z instead of a numeric offset and
// usually drops seconds.
func parseEventTime(candidates ...string) *time.Time {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		for _, layout := range eventTimeLayouts {
			if parsed, err := time.Parse(layout, candidate); err == nil {
				utc := parsed.UTC()
				return &utc
			}
		}
	}
	return nil
}

// toInt coerces the feed's loosely typed numbers. Missing or
// non-numeric values count as zero.
func toInt(v any) int {
	switch value := v.(type) {
	case nil:
		return 0
	case float64:
		return int(value)
	case int:
		return value
	case int64:
		return int(value)
	case string:
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return 0
		}
		if parsed, err := strconv.Atoi(trimmed); err == nil {
			return parsed
		}
		if parsed, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return int(parsed)
		}
		return 0
	default:
		return 0
	}
}
