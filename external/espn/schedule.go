package espn

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/scorelinehq/scoreline/internal/usecase"
)

// FetchTeamSchedule returns one team's normalized schedule, optionally
// scoped to a season year. Schedule events share the scoreboard event
// shape, so they run through the same normalizer, and the cache TTL is
// derived from the games the payload actually contains.
func (c *Client) FetchTeamSchedule(ctx context.Context, leagueAbbr, teamExternalID string, season int) ([]usecase.ExternalGame, []usecase.SkipDiagnostic, error) {
	route, err := c.route(leagueAbbr)
	if err != nil {
		return nil, nil, err
	}
	teamExternalID = strings.TrimSpace(teamExternalID)
	if teamExternalID == "" {
		return nil, nil, fmt.Errorf("%w: team external id is required", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("/%s/%s/teams/%s/schedule", route.sport, route.slug, teamExternalID)
	query := map[string]string{}
	if season > 0 {
		query["season"] = strconv.Itoa(season)
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

	if !fromCache {
		c.cache.Set(ctx, requestKey(path, query), raw, scoreboardTTL(games))
	}
	return games, skips, nil
}
