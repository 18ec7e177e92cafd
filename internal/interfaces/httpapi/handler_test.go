package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/scorelinehq/scoreline/internal/domain/game"
	"github.com/scorelinehq/scoreline/internal/domain/league"
	"github.com/scorelinehq/scoreline/internal/domain/player"
	"github.com/scorelinehq/scoreline/internal/infrastructure/repository/memory"
	"github.com/scorelinehq/scoreline/internal/platform/logging"
	"github.com/scorelinehq/scoreline/internal/usecase"
)

const testJobToken = "test-token"

// fakeProvider satisfies the upstream interface with overridable hooks.
// Nil hooks return empty results.
type fakeProvider struct {
	scoreboard func(ctx context.Context, leagueAbbr string, date time.Time) ([]usecase.ExternalGame, []usecase.SkipDiagnostic, error)
	schedule   func(ctx context.Context, leagueAbbr, teamExternalID string, season int) ([]usecase.ExternalGame, []usecase.SkipDiagnostic, error)
	teams      func(ctx context.Context, leagueAbbr string) ([]usecase.ExternalTeam, error)
	details    func(ctx context.Context, leagueAbbr, teamExternalID string) (usecase.ExternalTeamDetails, error)
	standings  func(ctx context.Context, leagueAbbr string) ([]usecase.ExternalStandingRow, error)
	roster     func(ctx context.Context, leagueAbbr, teamExternalID string) ([]usecase.ExternalPlayer, error)
}

func (p *fakeProvider) FetchScoreboard(ctx context.Context, leagueAbbr string, date time.Time) ([]usecase.ExternalGame, []usecase.SkipDiagnostic, error) {
	if p.scoreboard == nil {
		return nil, nil, nil
	}
	return p.scoreboard(ctx, leagueAbbr, date)
}

func (p *fakeProvider) FetchTeamSchedule(ctx context.Context, leagueAbbr, teamExternalID string, season int) ([]usecase.ExternalGame, []usecase.SkipDiagnostic, error) {
	if p.schedule == nil {
		return nil, nil, nil
	}
	return p.schedule(ctx, leagueAbbr, teamExternalID, season)
}

func (p *fakeProvider) FetchTeams(ctx context.Context, leagueAbbr string) ([]usecase.ExternalTeam, error) {
	if p.teams == nil {
		return nil, nil
	}
	return p.teams(ctx, leagueAbbr)
}

func (p *fakeProvider) FetchTeamDetails(ctx context.Context, leagueAbbr, teamExternalID string) (usecase.ExternalTeamDetails, error) {
	if p.details == nil {
		return usecase.ExternalTeamDetails{ExternalID: teamExternalID}, nil
	}
	return p.details(ctx, leagueAbbr, teamExternalID)
}

func (p *fakeProvider) FetchStandings(ctx context.Context, leagueAbbr string) ([]usecase.ExternalStandingRow, error) {
	if p.standings == nil {
		return nil, nil
	}
	return p.standings(ctx, leagueAbbr)
}

func (p *fakeProvider) FetchTeamRoster(ctx context.Context, leagueAbbr, teamExternalID string) ([]usecase.ExternalPlayer, error) {
	if p.roster == nil {
		return nil, nil
	}
	return p.roster(ctx, leagueAbbr, teamExternalID)
}

type apiFixture struct {
	srv     *httptest.Server
	leagues *memory.LeagueRepository
	teams   *memory.TeamRepository
	games   *memory.GameRepository
	players *memory.PlayerRepository
}

func newAPIFixture(t *testing.T, provider usecase.SportsDataProvider, token string) *apiFixture {
	t.Helper()

	if provider == nil {
		provider = &fakeProvider{}
	}
	f := &apiFixture{
		leagues: memory.NewLeagueRepository(),
		teams:   memory.NewTeamRepository(),
		games:   memory.NewGameRepository(),
		players: memory.NewPlayerRepository(),
	}
	svc := usecase.NewSyncService(provider, f.leagues, f.teams, f.games, f.players, usecase.SyncConfig{}, logging.NewNop())
	handler := NewHandler(svc, f.leagues, f.teams, f.games, f.players, logging.NewNop())
	f.srv = httptest.NewServer(NewRouter(handler, logging.NewNop(), token))
	t.Cleanup(f.srv.Close)

	return f
}

type testEnvelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data"`
	Error      *errorBody `json:"error"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) testEnvelope {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}

	var env testEnvelope
	if err := sonic.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode response %q: %v", body, err)
	}
	if env.APIVersion != "1.0" {
		t.Fatalf("apiVersion got=%q want=%q", env.APIVersion, "1.0")
	}
	return env
}

func (f *apiFixture) get(t *testing.T, path string) *http.Response {
	t.Helper()

	resp, err := f.srv.Client().Get(f.srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, nil, testJobToken)
	resp := f.get(t, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status got=%d want=%d", resp.StatusCode, http.StatusOK)
	}

	env := decodeEnvelope(t, resp)
	data, ok := env.Data.(map[string]any)
	if !ok || data["status"] != "ok" {
		t.Fatalf("unexpected health payload: %#v", env.Data)
	}
}

func TestListLeagues(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, nil, testJobToken)
	ctx := context.Background()
	for _, lg := range league.Known() {
		if _, _, err := f.leagues.GetOrCreate(ctx, lg); err != nil {
			t.Fatalf("seed league %s: %v", lg.Abbreviation, err)
		}
	}

	resp := f.get(t, "/v1/leagues")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status got=%d want=%d", resp.StatusCode, http.StatusOK)
	}

	env := decodeEnvelope(t, resp)
	items, ok := env.Data.([]any)
	if !ok {
		t.Fatalf("data is not a list: %#v", env.Data)
	}
	if len(items) != len(league.Known()) {
		t.Fatalf("league count got=%d want=%d", len(items), len(league.Known()))
	}
	first, ok := items[0].(map[string]any)
	if !ok || first["Abbreviation"] != "MLB" {
		t.Fatalf("leagues are not sorted by abbreviation: %#v", items[0])
	}
}

func TestListGames_RejectsInvalidDate(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, nil, testJobToken)
	resp := f.get(t, "/v1/leagues/NFL/games?date=01-11-2026")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status got=%d want=%d", resp.StatusCode, http.StatusBadRequest)
	}

	env := decodeEnvelope(t, resp)
	if env.Error == nil || env.Error.Status != "INVALID_ARGUMENT" {
		t.Fatalf("unexpected error body: %#v", env.Error)
	}
}

func TestListGames_FiltersByLeagueAndDate(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, nil, testJobToken)
	ctx := context.Background()
	seed := []game.Game{
		{ExternalID: "401", LeagueAbbr: "NFL", GameDate: time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC), Status: game.StatusFinal},
		{ExternalID: "402", LeagueAbbr: "NFL", GameDate: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), Status: game.StatusScheduled},
		{ExternalID: "403", LeagueAbbr: "NBA", GameDate: time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC), Status: game.StatusScheduled},
	}
	for _, g := range seed {
		if _, err := f.games.Upsert(ctx, g, nil); err != nil {
			t.Fatalf("seed game %s: %v", g.ExternalID, err)
		}
	}

	resp := f.get(t, "/v1/leagues/NFL/games?date=2026-01-11")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status got=%d want=%d", resp.StatusCode, http.StatusOK)
	}

	env := decodeEnvelope(t, resp)
	items, ok := env.Data.([]any)
	if !ok {
		t.Fatalf("data is not a list: %#v", env.Data)
	}
	if len(items) != 1 {
		t.Fatalf("game count got=%d want=1: %#v", len(items), items)
	}
	got, ok := items[0].(map[string]any)
	if !ok || got["ExternalID"] != "401" {
		t.Fatalf("unexpected game: %#v", items[0])
	}
}

func TestGetGame_NotFound(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, nil, testJobToken)
	resp := f.get(t, "/v1/games/999999")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status got=%d want=%d", resp.StatusCode, http.StatusNotFound)
	}

	env := decodeEnvelope(t, resp)
	if env.Error == nil || env.Error.Status != "NOT_FOUND" {
		t.Fatalf("unexpected error body: %#v", env.Error)
	}
}

func TestGetGame_ReturnsGameWithPeriodScores(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, nil, testJobToken)
	ctx := context.Background()
	g := game.Game{
		ExternalID: "401547403",
		LeagueAbbr: "NFL",
		GameDate:   time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC),
		Status:     game.StatusLive,
		HomeScore:  24,
		AwayScore:  21,
	}
	scores := []game.PeriodScore{
		{GameExternalID: g.ExternalID, Period: 1, HomeScore: 7, AwayScore: 0},
		{GameExternalID: g.ExternalID, Period: 2, HomeScore: 10, AwayScore: 14},
	}
	if _, err := f.games.Upsert(ctx, g, scores); err != nil {
		t.Fatalf("seed game: %v", err)
	}

	resp := f.get(t, "/v1/games/401547403")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status got=%d want=%d", resp.StatusCode, http.StatusOK)
	}

	env := decodeEnvelope(t, resp)
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("data is not an object: %#v", env.Data)
	}
	gotGame, ok := data["game"].(map[string]any)
	if !ok || gotGame["ExternalID"] != "401547403" {
		t.Fatalf("unexpected game payload: %#v", data["game"])
	}
	gotScores, ok := data["period_scores"].([]any)
	if !ok || len(gotScores) != 2 {
		t.Fatalf("unexpected period scores: %#v", data["period_scores"])
	}
}

func TestListRoster(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t, nil, testJobToken)
	ctx := context.Background()
	seed := []player.Player{
		{ExternalID: "3139477", TeamExternalID: "12", LeagueAbbr: "NFL", FullName: "Patrick Mahomes"},
		{ExternalID: "4241479", TeamExternalID: "12", LeagueAbbr: "NFL", FullName: "Travis Kelce"},
		{ExternalID: "3918298", TeamExternalID: "2", LeagueAbbr: "NFL", FullName: "Josh Allen"},
	}
	for _, p := range seed {
		if _, err := f.players.Upsert(ctx, p); err != nil {
			t.Fatalf("seed player %s: %v", p.ExternalID, err)
		}
	}

	resp := f.get(t, "/v1/leagues/NFL/teams/12/roster")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status got=%d want=%d", resp.StatusCode, http.StatusOK)
	}

	env := decodeEnvelope(t, resp)
	items, ok := env.Data.([]any)
	if !ok {
		t.Fatalf("data is not a list: %#v", env.Data)
	}
	if len(items) != 2 {
		t.Fatalf("roster size got=%d want=2: %#v", len(items), items)
	}
}
