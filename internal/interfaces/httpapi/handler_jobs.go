package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/scorelinehq/scoreline/internal/usecase"
)

func (h *Handler) RunSyncLiveJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncLiveJob")
	defer span.End()

	result, err := h.sync.SyncLiveGames(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync live job failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunSyncDailyJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncDailyJob")
	defer span.End()

	result, err := h.sync.SyncDailySchedule(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync daily job failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunSyncLeaguesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncLeaguesJob")
	defer span.End()

	counts, err := h.sync.SyncLeagues(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync leagues job failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, counts)
}

type leagueJobRequest struct {
	League string `json:"league" validate:"required,alpha,uppercase"`
}

func (h *Handler) RunSyncTeamsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncTeamsJob")
	defer span.End()

	var req leagueJobRequest
	if err := h.decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	counts, err := h.sync.SyncTeams(ctx, req.League)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync teams job failed", "league", req.League, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, counts)
}

type teamScheduleJobRequest struct {
	League string `json:"league" validate:"required,alpha,uppercase"`
	TeamID string `json:"team_id" validate:"required"`
	Season int    `json:"season" validate:"omitempty,min=1900"`
}

func (h *Handler) RunSyncTeamScheduleJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncTeamScheduleJob")
	defer span.End()

	var req teamScheduleJobRequest
	if err := h.decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	counts, err := h.sync.SyncTeamSchedule(ctx, req.League, req.TeamID, req.Season)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync team schedule job failed",
			"league", req.League, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, counts)
}

func (h *Handler) RunSyncStandingsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncStandingsJob")
	defer span.End()

	var req leagueJobRequest
	if err := h.decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	counts, err := h.sync.SyncStandings(ctx, req.League)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync standings job failed", "league", req.League, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, counts)
}

func (h *Handler) RunSyncRostersJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncRostersJob")
	defer span.End()

	var req leagueJobRequest
	if err := h.decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.sync.SyncAllRosters(ctx, req.League)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync rosters job failed", "league", req.League, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

type backfillJobRequest struct {
	League    string `json:"league" validate:"required,alpha,uppercase"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) RunBackfillJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBackfillJob")
	defer span.End()

	var req backfillJobRequest
	if err := h.decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	from, _ := time.Parse("2006-01-02", req.StartDate)
	to, _ := time.Parse("2006-01-02", req.EndDate)

	result, err := h.sync.SyncDateRange(ctx, req.League, from, to)
	if err != nil {
		h.logger.WarnContext(ctx, "run backfill job failed",
			"league", req.League, "start_date", req.StartDate, "end_date", req.EndDate, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) decodeJobRequest(r *http.Request, target any) error {
	defer func() { _ = r.Body.Close() }()
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err)
	}
	return h.validatePayload(r.Context(), target)
}
