package espn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchStandings_ExtractsConferenceEntries(t *testing.T) {
	t.Parallel()

	payload := `{
  "children": [{
    "name": "American Football Conference",
    "standings": {
      "entries": [
        {
          "team": {"id": "12", "displayName": "Kansas City Chiefs"},
          "stats": [
            {"name": "wins", "value": 11},
            {"name": "losses", "value": 3},
            {"name": "gamesBehind", "value": 0},
            {"name": "divisionWinPercent", "value": 0.833}
          ]
        },
        {"team": {}, "stats": []}
      ]
    }
  }]
}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/football/nfl/standings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{})
	rows, err := client.FetchStandings(context.Background(), "NFL")
	if err != nil {
		t.Fatalf("fetch standings: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("unexpected row count: got=%d want=1", len(rows))
	}
	row := rows[0]
	if row.TeamExternalID != "12" || row.TeamName != "Kansas City Chiefs" {
		t.Fatalf("unexpected row identity: %+v", row)
	}
	if row.Record.Wins != 11 || row.Record.Losses != 3 {
		t.Fatalf("unexpected record: %+v", row.Record)
	}
	if row.Record.GamesPlayed != 14 {
		t.Fatalf("games played fallback: got=%d want=14", row.Record.GamesPlayed)
	}
	if row.Record.DivisionWinPercent != 0.833 {
		t.Fatalf("unexpected division win percent: %v", row.Record.DivisionWinPercent)
	}
}

func TestFetchStandings_FallsBackToFlatEntries(t *testing.T) {
	t.Parallel()

	payload := `{
  "standings": [{
    "entries": [
      {
        "team": {"id": "7", "displayName": "Example Team"},
        "stats": [{"name": "wins", "value": "42"}]
      }
    ]
  }]
}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{})
	rows, err := client.FetchStandings(context.Background(), "MLB")
	if err != nil {
		t.Fatalf("fetch standings: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("unexpected row count: got=%d want=1", len(rows))
	}
	if rows[0].Record.Wins != 42 {
		t.Fatalf("string stat value should coerce: got=%d want=42", rows[0].Record.Wins)
	}
}

func TestFetchStandings_EmptyEnvelopeIsValid(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{})
	rows, err := client.FetchStandings(context.Background(), "NHL")
	if err != nil {
		t.Fatalf("fetch standings: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows off-season, got=%d", len(rows))
	}
}
