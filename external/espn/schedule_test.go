package espn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scorelinehq/scoreline/internal/usecase"
)

const teamSchedulePayload = `{
	"events": [
		{
			"id": "401547403",
			"date": "2026-01-11T23:30Z",
			"competitions": [
				{
					"date": "2026-01-11T23:30Z",
					"status": {"period": 0, "displayClock": "0:00", "type": {"name": "STATUS_SCHEDULED"}},
					"competitors": [
						{"id": "12", "homeAway": "home", "score": "0", "team": {"abbreviation": "KC", "displayName": "Kansas City Chiefs"}},
						{"id": "2", "homeAway": "away", "score": "0", "team": {"abbreviation": "BUF", "displayName": "Buffalo Bills"}}
					]
				}
			]
		},
		{
			"id": "401547501",
			"date": "2026-01-18T21:00Z",
			"competitions": [
				{
					"date": "2026-01-18T21:00Z",
					"status": {"period": 0, "displayClock": "0:00", "type": {"name": "STATUS_SCHEDULED"}},
					"competitors": [
						{"id": "12", "homeAway": "away", "score": "0", "team": {"abbreviation": "KC", "displayName": "Kansas City Chiefs"}},
						{"id": "25", "homeAway": "home", "score": "0", "team": {"abbreviation": "SF", "displayName": "San Francisco 49ers"}}
					]
				}
			]
		},
		{"id": "", "competitions": []}
	]
}`

func TestFetchTeamSchedule(t *testing.T) {
	t.Parallel()

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/football/nfl/teams/12/schedule" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("season"); got != "2026" {
			t.Errorf("season got=%q want=%q", got, "2026")
		}
		_, _ = w.Write([]byte(teamSchedulePayload))
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{})
	games, skips, err := client.FetchTeamSchedule(context.Background(), "NFL", "12", 2026)
	if err != nil {
		t.Fatalf("FetchTeamSchedule: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("game count got=%d want=2", len(games))
	}
	if games[0].ExternalID != "401547403" || games[1].ExternalID != "401547501" {
		t.Fatalf("unexpected game ids: %q %q", games[0].ExternalID, games[1].ExternalID)
	}
	if games[1].HomeTeam.ExternalID != "25" || games[1].AwayTeam.ExternalID != "12" {
		t.Fatalf("unexpected second matchup: home=%q away=%q",
			games[1].HomeTeam.ExternalID, games[1].AwayTeam.ExternalID)
	}
	if len(skips) != 1 {
		t.Fatalf("skip count got=%d want=1", len(skips))
	}

	// Same request again comes from cache.
	if _, _, err := client.FetchTeamSchedule(context.Background(), "NFL", "12", 2026); err != nil {
		t.Fatalf("cached FetchTeamSchedule: %v", err)
	}
	if hits != 1 {
		t.Fatalf("upstream hits got=%d want=1", hits)
	}
}

func TestFetchTeamSchedule_RequiresTeamID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no request should be issued")
	}))
	defer srv.Close()

	client := newTestClient(srv, ClientConfig{})
	_, _, err := client.FetchTeamSchedule(context.Background(), "NFL", "  ", 0)
	if !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
