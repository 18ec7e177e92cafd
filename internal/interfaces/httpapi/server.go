package httpapi

import (
	"net/http"

	"github.com/scorelinehq/scoreline/internal/platform/logging"
)

func NewRouter(handler *Handler, logger *logging.Logger, internalJobToken string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerDomainRoutes(mux, handler)
	registerInternalJobRoutes(mux, handler, internalJobToken)

	return RequestTracing(RequestLogging(logger, recoverPanic(logger, mux)))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("GET /readyz", handler.Healthz)
}

func registerDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{league}/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/leagues/{league}/teams/{teamID}/roster", handler.ListRoster)
	mux.HandleFunc("GET /v1/leagues/{league}/games", handler.ListGames)
	mux.HandleFunc("GET /v1/games/{externalID}", handler.GetGame)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	guard := func(h http.HandlerFunc) http.Handler {
		return RequireInternalJobToken(internalJobToken, h)
	}
	mux.Handle("POST /v1/internal/jobs/sync-live", guard(handler.RunSyncLiveJob))
	mux.Handle("POST /v1/internal/jobs/sync-daily", guard(handler.RunSyncDailyJob))
	mux.Handle("POST /v1/internal/jobs/sync-leagues", guard(handler.RunSyncLeaguesJob))
	mux.Handle("POST /v1/internal/jobs/sync-teams", guard(handler.RunSyncTeamsJob))
	mux.Handle("POST /v1/internal/jobs/sync-team-schedule", guard(handler.RunSyncTeamScheduleJob))
	mux.Handle("POST /v1/internal/jobs/sync-standings", guard(handler.RunSyncStandingsJob))
	mux.Handle("POST /v1/internal/jobs/sync-rosters", guard(handler.RunSyncRostersJob))
	mux.Handle("POST /v1/internal/jobs/backfill", guard(handler.RunBackfillJob))
}
