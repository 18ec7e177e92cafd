package espn

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/scorelinehq/scoreline/internal/usecase"
)

// FetchTeams returns the full team list for a league. Team reference
// data barely moves, so the response is cached for a week.
func (c *Client) FetchTeams(ctx context.Context, leagueAbbr string) ([]usecase.ExternalTeam, error) {
	route, err := c.route(leagueAbbr)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/%s/%s/teams", route.sport, route.slug)
	query := map[string]string{"limit": strconv.Itoa(c.pageLimit)}

	var envelope map[string]any
	if err := c.getJSON(ctx, path, query, referenceTTL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch teams league=%s: %w", leagueAbbr, err)
	}

	var teams []usecase.ExternalTeam
	for _, sportAny := range getSlice(envelope, "sports") {
		sport, _ := sportAny.(map[string]any)
		for _, leagueAny := range getSlice(sport, "leagues") {
			lg, _ := leagueAny.(map[string]any)
			for _, wrapperAny := range getSlice(lg, "teams") {
				wrapper, _ := wrapperAny.(map[string]any)
				tm := getMap(wrapper, "team")
				id := getString(tm, "id")
				if id == "" {
					c.logger.WarnContext(ctx, "team entry without id skipped", "league", leagueAbbr)
					continue
				}
				teams = append(teams, usecase.ExternalTeam{
					ExternalID:   id,
					Name:         getString(tm, "displayName"),
					Abbreviation: getString(tm, "abbreviation"),
					LogoURL:      firstLogoHref(tm),
					Record:       recordFromTeamMap(tm),
				})
			}
		}
	}
	return teams, nil
}

// FetchTeamDetails returns one team's identity and season record.
func (c *Client) FetchTeamDetails(ctx context.Context, leagueAbbr, teamExternalID string) (usecase.ExternalTeamDetails, error) {
	route, err := c.route(leagueAbbr)
	if err != nil {
		return usecase.ExternalTeamDetails{}, err
	}
	if strings.TrimSpace(teamExternalID) == "" {
		return usecase.ExternalTeamDetails{}, fmt.Errorf("%w: team external id is required", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/%s/%s/teams/%s", route.sport, route.slug, teamExternalID)
	var envelope map[string]any
	if err := c.getJSON(ctx, path, nil, scheduledTTL, &envelope); err != nil {
		return usecase.ExternalTeamDetails{}, fmt.Errorf("fetch team details league=%s team=%s: %w", leagueAbbr, teamExternalID, err)
	}

	tm := getMap(envelope, "team")
	if tm == nil {
		return usecase.ExternalTeamDetails{}, fmt.Errorf("%w: team %s", usecase.ErrNotFound, teamExternalID)
	}

	return usecase.ExternalTeamDetails{
		ExternalID:   getString(tm, "id"),
		Name:         getString(tm, "displayName"),
		Abbreviation: getString(tm, "abbreviation"),
		LogoURL:      firstLogoHref(tm),
		Record:       recordFromTeamMap(tm),
	}, nil
}

// FetchTeamRoster returns one team's current roster. The athletes array
// is grouped by position for some sports and flat for others; both
// shapes are handled.
func (c *Client) FetchTeamRoster(ctx context.Context, leagueAbbr, teamExternalID string) ([]usecase.ExternalPlayer, error) {
	route, err := c.route(leagueAbbr)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(teamExternalID) == "" {
		return nil, fmt.Errorf("%w: team external id is required", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/%s/%s/teams/%s/roster", route.sport, route.slug, teamExternalID)
	var envelope map[string]any
	if err := c.getJSON(ctx, path, nil, referenceTTL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch roster league=%s team=%s: %w", leagueAbbr, teamExternalID, err)
	}

	var players []usecase.ExternalPlayer
	for _, entryAny := range getSlice(envelope, "athletes") {
		entry, ok := entryAny.(map[string]any)
		if !ok {
			continue
		}
		if items := getSlice(entry, "items"); items != nil {
			for _, itemAny := range items {
				if athlete, ok := itemAny.(map[string]any); ok {
					appendAthlete(&players, athlete)
				}
			}
			continue
		}
		appendAthlete(&players, entry)
	}
	return players, nil
}

func appendAthlete(players *[]usecase.ExternalPlayer, athlete map[string]any) {
	id := getString(athlete, "id")
	if id == "" {
		return
	}

	position := getMap(athlete, "position")
	status := getString(athlete, "status")
	if status == "" {
		statusMap := getMap(athlete, "status")
		status = getString(statusMap, "name")
		if status == "" {
			status = getString(statusMap, "type")
		}
	}
	if status == "" {
		status = "Active"
	}

	*players = append(*players, usecase.ExternalPlayer{
		ExternalID:   id,
		FirstName:    getString(athlete, "firstName"),
		LastName:     getString(athlete, "lastName"),
		FullName:     getString(athlete, "fullName"),
		DisplayName:  getString(athlete, "displayName"),
		JerseyNumber: getString(athlete, "jersey"),
		Position:     getString(position, "name"),
		PositionAbbr: getString(position, "abbreviation"),
		Height:       getString(athlete, "displayHeight"),
		Weight:       getString(athlete, "displayWeight"),
		Age:          getIntPtr(athlete, "age"),
		HeadshotURL:  getString(getMap(athlete, "headshot"), "href"),
		Status:       status,
	})
}

func firstLogoHref(tm map[string]any) string {
	logos := getSlice(tm, "logos")
	if len(logos) == 0 {
		return getString(tm, "logo")
	}
	logo, _ := logos[0].(map[string]any)
	return getString(logo, "href")
}

// recordFromTeamMap probes team.record.items[].stats for season record
// numbers. Missing blocks or stats stay zero.
func recordFromTeamMap(tm map[string]any) usecase.ExternalRecordStats {
	var rec usecase.ExternalRecordStats
	record := getMap(tm, "record")
	if record == nil {
		return rec
	}

	for _, itemAny := range getSlice(record, "items") {
		item, _ := itemAny.(map[string]any)
		applyRecordStats(&rec, getSlice(item, "stats"))
		// Only the first item carries the overall record.
		break
	}
	if rec.GamesPlayed == 0 {
		rec.GamesPlayed = rec.Wins + rec.Losses + rec.Ties
	}
	return rec
}

func applyRecordStats(rec *usecase.ExternalRecordStats, stats []any) {
	for _, statAny := range stats {
		stat, _ := statAny.(map[string]any)
		value, ok := stat["value"]
		if !ok || value == nil {
			continue
		}
		switch strings.ToLower(getString(stat, "name")) {
		case "wins":
			rec.Wins = int(toFloat(value))
		case "losses":
			rec.Losses = int(toFloat(value))
		case "ties":
			rec.Ties = int(toFloat(value))
		case "gamesplayed":
			rec.GamesPlayed = int(toFloat(value))
		case "pointsfor":
			rec.PointsFor = toFloat(value)
		case "pointsagainst":
			rec.PointsAgainst = toFloat(value)
		case "differential", "pointdifferential":
			rec.Differential = toFloat(value)
		case "divisionwinpercent":
			rec.DivisionWinPercent = toFloat(value)
		case "gamesbehind":
			rec.GamesBehind = toFloat(value)
		}
	}
	if rec.Differential == 0 && (rec.PointsFor != 0 || rec.PointsAgainst != 0) {
		rec.Differential = rec.PointsFor - rec.PointsAgainst
	}
}
