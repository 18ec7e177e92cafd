package espn

import (
	"context"
	"fmt"

	"github.com/scorelinehq/scoreline/internal/usecase"
)

// standingsExtractors are tried in order; the standings envelope nests
// entries differently per sport (conference children vs. a flat
// standings list).
var standingsExtractors = []func(map[string]any) []map[string]any{
	extractConferenceEntries,
	extractFlatEntries,
}

// FetchStandings returns one league's standings rows with coerced
// record numbers. An empty result is valid (off-season).
func (c *Client) FetchStandings(ctx context.Context, leagueAbbr string) ([]usecase.ExternalStandingRow, error) {
	route, err := c.route(leagueAbbr)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/%s/%s/standings", route.sport, route.slug)
	var envelope map[string]any
	if err := c.getJSON(ctx, path, nil, scheduledTTL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch standings league=%s: %w", leagueAbbr, err)
	}

	var entries []map[string]any
	for _, extract := range standingsExtractors {
		if entries = extract(envelope); len(entries) > 0 {
			break
		}
	}

	rows := make([]usecase.ExternalStandingRow, 0, len(entries))
	for _, entry := range entries {
		tm := getMap(entry, "team")
		teamID := getString(tm, "id")
		if teamID == "" {
			continue
		}

		var rec usecase.ExternalRecordStats
		applyRecordStats(&rec, getSlice(entry, "stats"))
		if rec.GamesPlayed == 0 {
			rec.GamesPlayed = rec.Wins + rec.Losses + rec.Ties
		}

		rows = append(rows, usecase.ExternalStandingRow{
			TeamExternalID: teamID,
			TeamName:       getString(tm, "displayName"),
			Record:         rec,
		})
	}
	return rows, nil
}

func extractConferenceEntries(envelope map[string]any) []map[string]any {
	var entries []map[string]any
	for _, childAny := range getSlice(envelope, "children") {
		child, _ := childAny.(map[string]any)
		for _, entryAny := range getSlice(getMap(child, "standings"), "entries") {
			if entry, ok := entryAny.(map[string]any); ok {
				entries = append(entries, entry)
			}
		}
	}
	return entries
}

func extractFlatEntries(envelope map[string]any) []map[string]any {
	var entries []map[string]any
	for _, groupAny := range getSlice(envelope, "standings") {
		group, _ := groupAny.(map[string]any)
		for _, entryAny := range getSlice(group, "entries") {
			if entry, ok := entryAny.(map[string]any); ok {
				entries = append(entries, entry)
			}
		}
	}
	return entries
}
