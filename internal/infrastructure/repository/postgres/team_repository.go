package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scorelinehq/scoreline/internal/domain/team"
	qb "github.com/scorelinehq/scoreline/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		OrderBy("league_abbr", "external_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}
	return r.selectTeams(ctx, query, args)
}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueAbbr string) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("league_abbr", leagueAbbr)).
		OrderBy("external_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams by league query: %w", err)
	}
	return r.selectTeams(ctx, query, args)
}

func (r *TeamRepository) selectTeams(ctx context.Context, query string, args []any) ([]team.Team, error) {
	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *TeamRepository) GetByExternalID(ctx context.Context, leagueAbbr, externalID string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("league_abbr", leagueAbbr), qb.Eq("external_id", externalID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("select team: %w", err)
	}
	return row.toDomain(), true, nil
}

// GetOrCreate inserts t only when no row exists for its key. An
// existing row is returned untouched so placeholder stubs never
// overwrite enriched team data.
func (r *TeamRepository) GetOrCreate(ctx context.Context, t team.Team) (team.Team, bool, error) {
	if err := t.Validate(); err != nil {
		return team.Team{}, false, err
	}

	query, args, err := qb.InsertInto("teams").
		Columns("league_abbr", "external_id", "name", "abbreviation", "logo_url").
		Values(t.LeagueAbbr, t.ExternalID, t.Name, t.Abbreviation, t.LogoURL).
		Suffix("ON CONFLICT (league_abbr, external_id) DO NOTHING").
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build insert team query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return team.Team{}, false, fmt.Errorf("insert team: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("team rows affected: %w", err)
	}
	if inserted > 0 {
		return t, true, nil
	}

	existing, found, err := r.GetByExternalID(ctx, t.LeagueAbbr, t.ExternalID)
	if err != nil {
		return team.Team{}, false, err
	}
	if !found {
		return team.Team{}, false, fmt.Errorf("team %s vanished after conflict", t.Key())
	}
	return existing, false, nil
}

func (r *TeamRepository) Upsert(ctx context.Context, t team.Team) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}

	query, args, err := qb.InsertInto("teams").
		Columns(
			"league_abbr", "external_id", "name", "abbreviation", "logo_url",
			"wins", "losses", "ties", "games_played",
			"points_for", "points_against", "differential",
			"division_win_percent", "games_behind", "updated_at",
		).
		Values(
			t.LeagueAbbr, t.ExternalID, t.Name, t.Abbreviation, t.LogoURL,
			t.Wins, t.Losses, t.Ties, t.GamesPlayed,
			t.PointsFor, t.PointsAgainst, t.Differential,
			t.DivisionWinPercent, t.GamesBehind, nowUTC(),
		).
		Suffix(`ON CONFLICT (league_abbr, external_id) DO UPDATE SET
			name = EXCLUDED.name,
			abbreviation = EXCLUDED.abbreviation,
			logo_url = EXCLUDED.logo_url,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			ties = EXCLUDED.ties,
			games_played = EXCLUDED.games_played,
			points_for = EXCLUDED.points_for,
			points_against = EXCLUDED.points_against,
			differential = EXCLUDED.differential,
			division_win_percent = EXCLUDED.division_win_percent,
			games_behind = EXCLUDED.games_behind,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS created`).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build upsert team query: %w", err)
	}

	var created bool
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		return false, fmt.Errorf("upsert team: %w", err)
	}
	return created, nil
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
