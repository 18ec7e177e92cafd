package player

import "context"

type Repository interface {
	GetByExternalID(ctx context.Context, leagueAbbr, externalID string) (Player, bool, error)

	// Upsert writes the player keyed by (league, external id) and returns
	// true when the row was created.
	Upsert(ctx context.Context, p Player) (bool, error)

	ListByTeam(ctx context.Context, leagueAbbr, teamExternalID string) ([]Player, error)
}
