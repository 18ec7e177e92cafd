package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newGuardedProbe(token string) (http.Handler, *bool) {
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	})
	return RequireInternalJobToken(token, next), &reached
}

func TestRequireInternalJobToken_RejectsMissingToken(t *testing.T) {
	t.Parallel()

	guard, reached := newGuardedProbe("secret")
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-live", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}
	if *reached {
		t.Fatal("handler ran without a token")
	}
}

func TestRequireInternalJobToken_RejectsWrongToken(t *testing.T) {
	t.Parallel()

	guard, reached := newGuardedProbe("secret")
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-live", nil)
	req.Header.Set("X-Internal-Job-Token", "not-the-secret")
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}
	if *reached {
		t.Fatal("handler ran with a wrong token")
	}
}

func TestRequireInternalJobToken_MissingServerTokenKeepsRoutesClosed(t *testing.T) {
	t.Parallel()

	guard, reached := newGuardedProbe("")
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-live", nil)
	req.Header.Set("X-Internal-Job-Token", "anything")
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status got=%d want=%d", rec.Code, http.StatusServiceUnavailable)
	}
	if *reached {
		t.Fatal("handler ran without a configured server token")
	}
}

func TestRequireInternalJobToken_AcceptsMatchingToken(t *testing.T) {
	t.Parallel()

	guard, reached := newGuardedProbe("secret")
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-live", nil)
	req.Header.Set("X-Internal-Job-Token", "secret")
	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status got=%d want=%d", rec.Code, http.StatusNoContent)
	}
	if !*reached {
		t.Fatal("handler did not run with a matching token")
	}
}

func TestShouldTraceRequest(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want bool
	}{
		{"/healthz", false},
		{"/readyz", false},
		{" /healthz ", false},
		{"/v1/leagues", true},
		{"/v1/internal/jobs/sync-live", true},
	}
	for _, tc := range cases {
		if got := shouldTraceRequest(tc.path); got != tc.want {
			t.Errorf("shouldTraceRequest(%q) got=%v want=%v", tc.path, got, tc.want)
		}
	}
}
