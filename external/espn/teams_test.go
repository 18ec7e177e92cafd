package espn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scorelinehq/scoreline/internal/usecase"
)

const teamsPayload = `{
  "sports": [{
    "leagues": [{
      "teams": [
        {
          "team": {
            "id": "12",
            "displayName": "Kansas City Chiefs",
            "abbreviation": "KC",
            "logos": [{"href": "https://a.espncdn.com/i/teamlogos/nfl/500/kc.png"}],
            "record": {
              "items": [
                {"stats": [
                  {"name": "wins", "value": 11},
                  {"name": "losses", "value": 3},
                  {"name": "ties", "value": 0},
                  {"name": "pointsFor", "value": 371},
                  {"name": "pointsAgainst", "value": 289}
                ]},
                {"stats": [{"name": "wins", "value": 6}]}
              ]
            }
          }
        },
        {"team": {"displayName": "No ID Entry"}}
      ]
    }]
  }]
}`

func TestFetchTeams_ParsesRecordAndSkipsEntriesWithoutID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/football/nfl/teams" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(teamsPayload))
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{})
	teams, err := client.FetchTeams(context.Background(), "NFL")
	if err != nil {
		t.Fatalf("fetch teams: %v", err)
	}
	if len(teams) != 1 {
		t.Fatalf("unexpected team count: got=%d want=1", len(teams))
	}

	tm := teams[0]
	if tm.ExternalID != "12" || tm.Abbreviation != "KC" {
		t.Fatalf("unexpected team identity: %+v", tm)
	}
	if tm.LogoURL != "https://a.espncdn.com/i/teamlogos/nfl/500/kc.png" {
		t.Fatalf("unexpected logo url: %s", tm.LogoURL)
	}
	if tm.Record.Wins != 11 || tm.Record.Losses != 3 {
		t.Fatalf("unexpected record: %+v", tm.Record)
	}
	if tm.Record.GamesPlayed != 14 {
		t.Fatalf("games played fallback should be w+l+t: got=%d want=14", tm.Record.GamesPlayed)
	}
	if tm.Record.Differential != 82 {
		t.Fatalf("differential fallback should be pf-pa: got=%v want=82", tm.Record.Differential)
	}
}

func TestFetchTeamDetails_MissingTeamIsNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{})
	_, err := client.FetchTeamDetails(context.Background(), "NFL", "99")
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchTeamRoster_HandlesGroupedAndFlatAthletes(t *testing.T) {
	t.Parallel()

	grouped := `{
  "athletes": [
    {
      "position": "offense",
      "items": [
        {
          "id": "3139477",
          "firstName": "Patrick",
          "lastName": "Mahomes",
          "fullName": "Patrick Mahomes",
          "displayName": "Patrick Mahomes",
          "jersey": "15",
          "position": {"name": "Quarterback", "abbreviation": "QB"},
          "displayHeight": "6' 2\"",
          "displayWeight": "225 lbs",
          "age": 30,
          "headshot": {"href": "https://a.espncdn.com/i/headshots/nfl/players/full/3139477.png"},
          "status": {"name": "Active", "type": "active"}
        },
        {"firstName": "No ID"}
      ]
    }
  ]
}`
	flat := `{
  "athletes": [
    {"id": "4430", "fullName": "Shohei Ohtani", "position": {"abbreviation": "DH"}}
  ]
}`

	responses := map[string]string{
		"/football/nfl/teams/12/roster": grouped,
		"/baseball/mlb/teams/19/roster": flat,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		if !ok {
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{})
	ctx := context.Background()

	players, err := client.FetchTeamRoster(ctx, "NFL", "12")
	if err != nil {
		t.Fatalf("fetch grouped roster: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("unexpected grouped player count: got=%d want=1", len(players))
	}
	p := players[0]
	if p.ExternalID != "3139477" || p.JerseyNumber != "15" || p.PositionAbbr != "QB" {
		t.Fatalf("unexpected player: %+v", p)
	}
	if p.Status != "Active" {
		t.Fatalf("unexpected status: %s", p.Status)
	}
	if p.Age == nil || *p.Age != 30 {
		t.Fatalf("unexpected age: %v", p.Age)
	}

	players, err = client.FetchTeamRoster(ctx, "MLB", "19")
	if err != nil {
		t.Fatalf("fetch flat roster: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("unexpected flat player count: got=%d want=1", len(players))
	}
	if players[0].ExternalID != "4430" || players[0].PositionAbbr != "DH" {
		t.Fatalf("unexpected flat player: %+v", players[0])
	}
	if players[0].Status != "Active" {
		t.Fatalf("missing status should default to Active, got=%s", players[0].Status)
	}
}

func TestFetchTeamRoster_RequiresTeamID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{})
	_, err := client.FetchTeamRoster(context.Background(), "NFL", "  ")
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
