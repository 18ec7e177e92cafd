package game

import (
	"context"
	"time"
)

// Repository persists games and their period scores.
type Repository interface {
	GetByExternalID(ctx context.Context, externalID string) (Game, bool, error)

	// Upsert writes the game keyed by external id and, when periodScores
	// is non-empty, atomically replaces the game's period score rows with
	// the given set. An empty slice leaves existing rows untouched.
	// Returns true when the game row was created.
	Upsert(ctx context.Context, g Game, periodScores []PeriodScore) (bool, error)

	ListPeriodScores(ctx context.Context, gameExternalID string) ([]PeriodScore, error)

	ListByLeagueAndDate(ctx context.Context, leagueAbbr string, date time.Time) ([]Game, error)
	ListByStatus(ctx context.Context, status Status) ([]Game, error)
}
