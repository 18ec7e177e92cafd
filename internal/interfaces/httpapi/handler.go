package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/scorelinehq/scoreline/internal/domain/game"
	"github.com/scorelinehq/scoreline/internal/domain/league"
	"github.com/scorelinehq/scoreline/internal/domain/player"
	"github.com/scorelinehq/scoreline/internal/domain/team"
	"github.com/scorelinehq/scoreline/internal/platform/logging"
	"github.com/scorelinehq/scoreline/internal/usecase"
)

type Handler struct {
	sync       *usecase.SyncService
	leagueRepo league.Repository
	teamRepo   team.Repository
	gameRepo   game.Repository
	playerRepo player.Repository
	logger     *logging.Logger
	validate   *validator.Validate
}

func NewHandler(
	sync *usecase.SyncService,
	leagueRepo league.Repository,
	teamRepo team.Repository,
	gameRepo game.Repository,
	playerRepo player.Repository,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		sync:       sync,
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		gameRepo:   gameRepo,
		playerRepo: playerRepo,
		logger:     logger,
		validate:   validator.New(),
	}
}

func (h *Handler) validatePayload(ctx context.Context, payload any) error {
	if err := h.validate.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.leagueRepo.List(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, leagues)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.teamRepo.ListByLeague(ctx, r.PathValue("league"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, teams)
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", usecase.ErrInvalidInput, raw))
			return
		}
		date = parsed
	}

	games, err := h.gameRepo.ListByLeagueAndDate(ctx, r.PathValue("league"), date)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, games)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	externalID := r.PathValue("externalID")
	g, found, err := h.gameRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !found {
		writeError(ctx, w, fmt.Errorf("%w: game %s", usecase.ErrNotFound, externalID))
		return
	}

	scores, err := h.gameRepo.ListPeriodScores(ctx, externalID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"game":          g,
		"period_scores": scores,
	})
}

func (h *Handler) ListRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRoster")
	defer span.End()

	players, err := h.playerRepo.ListByTeam(ctx, r.PathValue("league"), r.PathValue("teamID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, players)
}
