package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/scorelinehq/scoreline/external/espn"
	"github.com/scorelinehq/scoreline/internal/config"
	"github.com/scorelinehq/scoreline/internal/domain/game"
	"github.com/scorelinehq/scoreline/internal/domain/league"
	"github.com/scorelinehq/scoreline/internal/domain/player"
	"github.com/scorelinehq/scoreline/internal/domain/team"
	"github.com/scorelinehq/scoreline/internal/infrastructure/repository/memory"
	"github.com/scorelinehq/scoreline/internal/infrastructure/repository/postgres"
	"github.com/scorelinehq/scoreline/internal/interfaces/httpapi"
	"github.com/scorelinehq/scoreline/internal/platform/cache"
	"github.com/scorelinehq/scoreline/internal/platform/logging"
	"github.com/scorelinehq/scoreline/internal/platform/resilience"
	"github.com/scorelinehq/scoreline/internal/scheduler"
	"github.com/scorelinehq/scoreline/internal/usecase"
)

// App owns the wired service graph: repositories, the upstream client,
// the sync service, the job scheduler and the HTTP server.
type App struct {
	Server    *http.Server
	Scheduler *scheduler.Scheduler
	Sync      *usecase.SyncService

	db     *sqlx.DB
	logger *logging.Logger
}

type repositories struct {
	leagues league.Repository
	teams   team.Repository
	games   game.Repository
	players player.Repository
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, repos, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, err
	}

	provider := espn.NewClient(espn.ClientConfig{
		BaseURL:   cfg.ESPNBaseURL,
		Timeout:   cfg.ESPNTimeout,
		PageLimit: cfg.ESPNPageLimit,
		Retry: resilience.RetryPolicy{
			MaxAttempts: cfg.ESPNMaxRetries,
		},
		Cache:  cache.NewStore(),
		Logger: logger.With("component", "espn"),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ESPNCircuitEnabled,
			FailureThreshold: cfg.ESPNCircuitFailureCount,
			OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMaxReq,
		},
	})

	syncSvc := usecase.NewSyncService(
		provider,
		repos.leagues,
		repos.teams,
		repos.games,
		repos.players,
		usecase.SyncConfig{
			RosterWorkers:  cfg.RosterWorkers,
			GameDatePolicy: gameDatePolicy(cfg.GameDatePolicy),
		},
		logger,
	)

	sched := scheduler.New(logger)
	if err := registerJobs(sched, syncSvc, cfg, logger); err != nil {
		return nil, fmt.Errorf("register jobs: %w", err)
	}

	handler := httpapi.NewHandler(syncSvc, repos.leagues, repos.teams, repos.games, repos.players, logger)
	router := httpapi.NewRouter(handler, logger, cfg.InternalJobToken)

	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &App{
		Server:    server,
		Scheduler: sched,
		Sync:      syncSvc,
		db:        db,
		logger:    logger,
	}, nil
}

func gameDatePolicy(v string) usecase.GameDatePolicy {
	if v == config.GameDateAlwaysRequested {
		return usecase.GameDateAlwaysRequested
	}
	return usecase.GameDatePreferScheduled
}

// Close releases resources the App holds. The HTTP server and scheduler
// are stopped by the caller before Close.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// buildRepositories opens Postgres when DB_URL is set and falls back to
// the in-memory implementations otherwise, which keeps local development
// and tests free of infrastructure.
func buildRepositories(cfg config.Config, logger *logging.Logger) (*sqlx.DB, repositories, error) {
	if cfg.DBURL == "" {
		logger.Info("db url empty, using in-memory repositories")
		return nil, repositories{
			leagues: memory.NewLeagueRepository(),
			teams:   memory.NewTeamRepository(),
			games:   memory.NewGameRepository(),
			players: memory.NewPlayerRepository(),
		}, nil
	}

	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, repositories{}, fmt.Errorf("connect database: %w", err)
	}

	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("database connected", "db_name", dbNameFromURL(cfg.DBURL))

	return db, repositories{
		leagues: postgres.NewLeagueRepository(db),
		teams:   postgres.NewTeamRepository(db),
		games:   postgres.NewGameRepository(db),
		players: postgres.NewPlayerRepository(db),
	}, nil
}

func registerJobs(sched *scheduler.Scheduler, syncSvc *usecase.SyncService, cfg config.Config, logger *logging.Logger) error {
	jobs := []scheduler.Job{
		{
			Name:       "sync-live-games",
			Every:      cfg.SyncLiveInterval,
			MaxRetries: 3,
			Timeout:    5 * time.Minute,
			Run: func(ctx context.Context) error {
				result, err := syncSvc.SyncLiveGames(ctx)
				return reportMultiSync(logger, "sync-live-games", result, err)
			},
		},
		{
			Name:       "sync-daily-schedule",
			Every:      cfg.SyncDailyInterval,
			MaxRetries: 3,
			Timeout:    10 * time.Minute,
			Run: func(ctx context.Context) error {
				result, err := syncSvc.SyncDailySchedule(ctx)
				return reportMultiSync(logger, "sync-daily-schedule", result, err)
			},
		},
		{
			Name:       "sync-leagues",
			Every:      cfg.SyncLeaguesInterval,
			MaxRetries: 2,
			Timeout:    30 * time.Minute,
			Run: func(ctx context.Context) error {
				if _, err := syncSvc.SyncLeagues(ctx); err != nil {
					return err
				}
				for _, known := range league.Known() {
					if _, err := syncSvc.SyncTeams(ctx, known.Abbreviation); err != nil {
						return fmt.Errorf("sync teams %s: %w", known.Abbreviation, err)
					}
					if _, err := syncSvc.SyncStandings(ctx, known.Abbreviation); err != nil {
						return fmt.Errorf("sync standings %s: %w", known.Abbreviation, err)
					}
				}
				return nil
			},
		},
		{
			Name:       "sync-all-rosters",
			Every:      cfg.SyncRosterInterval,
			MaxRetries: 2,
			Timeout:    time.Hour,
			Run: func(ctx context.Context) error {
				for _, known := range league.Known() {
					result, err := syncSvc.SyncAllRosters(ctx, known.Abbreviation)
					if rErr := reportMultiSync(logger, "sync-all-rosters", result, err); rErr != nil {
						return fmt.Errorf("sync rosters %s: %w", known.Abbreviation, rErr)
					}
				}
				return nil
			},
		},
	}

	for _, job := range jobs {
		if err := sched.Register(job); err != nil {
			return err
		}
	}

	return nil
}

// reportMultiSync surfaces the outer error to the scheduler and logs
// per-unit failures without failing the whole run. A unit failure is
// already isolated inside the sync service, retrying the full job
// would re-fetch every healthy unit for nothing.
func reportMultiSync(logger *logging.Logger, jobName string, result usecase.MultiSyncResult, err error) error {
	if err != nil {
		return err
	}
	counts := result.Total()
	if len(result.Errors) > 0 {
		logger.Warn("sync job finished with unit failures",
			"job", jobName,
			"failed_units", len(result.Errors),
			"created", counts.Created,
			"updated", counts.Updated,
			"skipped", counts.Skipped,
			"failed", counts.Failed,
		)
		return nil
	}
	logger.Info("sync job finished",
		"job", jobName,
		"created", counts.Created,
		"updated", counts.Updated,
		"skipped", counts.Skipped,
		"failed", counts.Failed,
	)
	return nil
}
