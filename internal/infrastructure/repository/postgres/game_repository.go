package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scorelinehq/scoreline/internal/domain/game"
	qb "github.com/scorelinehq/scoreline/internal/platform/querybuilder"
)

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByExternalID(ctx context.Context, externalID string) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("external_id", externalID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build select game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("select game: %w", err)
	}

	out, err := row.toDomain()
	if err != nil {
		return game.Game{}, false, err
	}
	return out, true, nil
}

// Upsert writes the game and, when periodScores is non-empty, replaces
// its period score rows in the same transaction. Partial period data
// from a failed write can never be observed.
func (r *GameRepository) Upsert(ctx context.Context, g game.Game, periodScores []game.PeriodScore) (bool, error) {
	if err := g.Validate(); err != nil {
		return false, err
	}

	model, err := gameToModel(g)
	if err != nil {
		return false, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin game upsert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	created, err := upsertGameRow(ctx, tx, model)
	if err != nil {
		return false, err
	}
	if len(periodScores) > 0 {
		if err := replacePeriodScores(ctx, tx, g.ExternalID, periodScores); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit game upsert tx: %w", err)
	}
	return created, nil
}

func upsertGameRow(ctx context.Context, tx *sqlx.Tx, m gameTableModel) (bool, error) {
	query, args, err := qb.InsertInto("games").
		Columns(
			"external_id", "league_abbr", "home_team_external_id", "away_team_external_id",
			"game_date", "scheduled_time", "status", "home_score", "away_score",
			"period", "time_remaining", "situation", "box_score",
			"venue_name", "venue_city", "venue_state", "venue_capacity", "attendance",
			"broadcast_network", "broadcasts",
			"home_pitcher_name", "away_pitcher_name", "home_pitcher_stats", "away_pitcher_stats",
			"updated_at",
		).
		Values(
			m.ExternalID, m.LeagueAbbr, m.HomeTeamExternalID, m.AwayTeamExternalID,
			m.GameDate, m.ScheduledTime, m.Status, m.HomeScore, m.AwayScore,
			m.Period, m.TimeRemaining, m.Situation, m.BoxScore,
			m.VenueName, m.VenueCity, m.VenueState, m.VenueCapacity, m.Attendance,
			m.BroadcastNetwork, m.Broadcasts,
			m.HomePitcherName, m.AwayPitcherName, m.HomePitcherStats, m.AwayPitcherStats,
			nowUTC(),
		).
		Suffix(`ON CONFLICT (external_id) DO UPDATE SET
			league_abbr = EXCLUDED.league_abbr,
			home_team_external_id = EXCLUDED.home_team_external_id,
			away_team_external_id = EXCLUDED.away_team_external_id,
			game_date = EXCLUDED.game_date,
			scheduled_time = EXCLUDED.scheduled_time,
			status = EXCLUDED.status,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			period = EXCLUDED.period,
			time_remaining = EXCLUDED.time_remaining,
			situation = EXCLUDED.situation,
			box_score = EXCLUDED.box_score,
			venue_name = EXCLUDED.venue_name,
			venue_city = EXCLUDED.venue_city,
			venue_state = EXCLUDED.venue_state,
			venue_capacity = EXCLUDED.venue_capacity,
			attendance = EXCLUDED.attendance,
			broadcast_network = EXCLUDED.broadcast_network,
			broadcasts = EXCLUDED.broadcasts,
			home_pitcher_name = EXCLUDED.home_pitcher_name,
			away_pitcher_name = EXCLUDED.away_pitcher_name,
			home_pitcher_stats = EXCLUDED.home_pitcher_stats,
			away_pitcher_stats = EXCLUDED.away_pitcher_stats,
			updated_at = EXCLUDED.updated_at
		RETURNING (xmax = 0) AS created`).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build upsert game query: %w", err)
	}

	var created bool
	if err := tx.GetContext(ctx, &created, query, args...); err != nil {
		return false, fmt.Errorf("upsert game: %w", err)
	}
	return created, nil
}

func replacePeriodScores(ctx context.Context, tx *sqlx.Tx, gameExternalID string, scores []game.PeriodScore) error {
	deleteQuery, deleteArgs, err := qb.DeleteFrom("period_scores").
		Where(qb.Eq("game_external_id", gameExternalID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build delete period scores query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete period scores: %w", err)
	}

	builder := qb.InsertInto("period_scores").
		Columns("game_external_id", "period", "home_score", "away_score")
	for _, score := range scores {
		builder.Values(gameExternalID, score.Period, score.HomeScore, score.AwayScore)
	}
	insertQuery, insertArgs, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert period scores query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("insert period scores: %w", err)
	}
	return nil
}

func (r *GameRepository) ListPeriodScores(ctx context.Context, gameExternalID string) ([]game.PeriodScore, error) {
	query, args, err := qb.Select("*").From("period_scores").
		Where(qb.Eq("game_external_id", gameExternalID)).
		OrderBy("period").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select period scores query: %w", err)
	}

	var rows []periodScoreTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select period scores: %w", err)
	}

	out := make([]game.PeriodScore, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *GameRepository) ListByLeagueAndDate(ctx context.Context, leagueAbbr string, date time.Time) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("league_abbr", leagueAbbr), qb.Eq("game_date", date.UTC().Format("2006-01-02"))).
		OrderBy("external_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games by date query: %w", err)
	}
	return r.selectGames(ctx, query, args)
}

func (r *GameRepository) ListByStatus(ctx context.Context, status game.Status) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.Eq("status", string(status))).
		OrderBy("external_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games by status query: %w", err)
	}
	return r.selectGames(ctx, query, args)
}

func (r *GameRepository) selectGames(ctx context.Context, query string, args []any) ([]game.Game, error) {
	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		g, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}
