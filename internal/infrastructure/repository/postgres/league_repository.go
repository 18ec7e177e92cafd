package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/scorelinehq/scoreline/internal/domain/league"
	qb "github.com/scorelinehq/scoreline/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").OrderBy("abbreviation").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *LeagueRepository) GetByAbbreviation(ctx context.Context, abbreviation string) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("abbreviation", abbreviation)).
		Limit(1).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build select league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("select league: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *LeagueRepository) GetOrCreate(ctx context.Context, lg league.League) (league.League, bool, error) {
	if err := lg.Validate(); err != nil {
		return league.League{}, false, err
	}

	query, args, err := qb.InsertInto("leagues").
		Columns("abbreviation", "name", "sport_type").
		Values(lg.Abbreviation, lg.Name, lg.SportType).
		Suffix("ON CONFLICT (abbreviation) DO NOTHING").
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build insert league query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return league.League{}, false, fmt.Errorf("insert league: %w", err)
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return league.League{}, false, fmt.Errorf("league rows affected: %w", err)
	}
	if inserted > 0 {
		return lg, true, nil
	}

	existing, found, err := r.GetByAbbreviation(ctx, lg.Abbreviation)
	if err != nil {
		return league.League{}, false, err
	}
	if !found {
		return league.League{}, false, fmt.Errorf("league %s vanished after conflict", lg.Abbreviation)
	}
	return existing, false, nil
}

func (r *LeagueRepository) Update(ctx context.Context, lg league.League) error {
	if err := lg.Validate(); err != nil {
		return err
	}

	query, args, err := qb.Update("leagues").
		Set("name", lg.Name).
		Set("sport_type", lg.SportType).
		Set("updated_at", nowUTC()).
		Where(qb.Eq("abbreviation", lg.Abbreviation)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update league query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update league: %w", err)
	}
	return nil
}
