package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Team, error)
	ListByLeague(ctx context.Context, leagueAbbr string) ([]Team, error)
	GetByExternalID(ctx context.Context, leagueAbbr, externalID string) (Team, bool, error)
	// GetOrCreate resolves the team by (league, external id), inserting the
	// argument as-is when absent. An existing row is returned untouched, so
	// placeholder attributes from game ingestion never downgrade a team
	// that a dedicated team sync already enriched.
	GetOrCreate(ctx context.Context, item Team) (Team, bool, error)
	// Upsert replaces the stored team wholesale. The flag reports creation.
	Upsert(ctx context.Context, item Team) (bool, error)
}
