package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/scorelinehq/scoreline/internal/domain/player"
	qb "github.com/scorelinehq/scoreline/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByExternalID(ctx context.Context, leagueAbbr, externalID string) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(qb.Eq("league_abbr", leagueAbbr), qb.Eq("external_id", externalID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build select player query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("select player: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, p player.Player) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	query, args, err := qb.InsertInto("players").
		Columns(
			"league_abbr", "external_id", "team_external_id",
			"first_name", "last_name", "full_name", "display_name",
			"jersey_number", "position", "position_abbr",
			"height", "weight", "age", "headshot_url", "status", "updated_at",
		).
		Values(
			p.LeagueAbbr, p.ExternalID, p.TeamExternalID,
			p.FirstName, p.LastName, p.FullName, p.DisplayName,
			p.JerseyNumber, p.Position, p.PositionAbbr,
			p.Height, p.Weight, intPtrToNull(p.Age), p.HeadshotURL, p.Status, nowUTC(),
		).
		Suffix(`ON CONFLICT (league_abbr, external_id) DO UPDATE SET
			team_external_id = EXCLUDED.team_external_id,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			full_name = EXCLUDED.full_name,
			display_name = EXCLUDED.display_name,
			jersey_number = EXCLUDED.jersey_number,
			position = EXCLUDED.position,
			position_abbr = EXCLUDED.position_abbr,
			height = EXCLUDED.height,
			weight = EXCLUDED.weight,
			age = EXCLUDED.age,
			headshot_url = EXCLUDED.headshot_url,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS created`).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build upsert player query: %w", err)
	}

	var created bool
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		return false, fmt.Errorf("upsert player: %w", err)
	}
	return created, nil
}

func (r *PlayerRepository) ListByTeam(ctx context.Context, leagueAbbr, teamExternalID string) ([]player.Player, error) {
	query, args, err := qb.Select("*").From("players").
		Where(qb.Eq("league_abbr", leagueAbbr), qb.Eq("team_external_id", teamExternalID)).
		OrderBy("external_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
