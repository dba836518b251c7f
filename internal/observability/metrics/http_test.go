package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"/healthz", "/healthz"},
		{"/v1/applications", "/v1/applications"},
		{"/v1/applications/assess", "/v1/applications/assess"},
		{"/v1/applications/8f2c", "/v1/applications/{application_id}"},
	}
	for _, tc := range cases {
		if got := normalizePath(tc.in); got != tc.want {
			t.Fatalf("normalizePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	m := NewHTTPServerMetrics("api")
	handler := m.Middleware("api", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/applications", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}

	// The registry exposition should carry the labeled counter.
	expo := httptest.NewRecorder()
	m.Handler().ServeHTTP(expo, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := expo.Body.String()
	if !strings.Contains(body, "ssa_http_requests_total") {
		t.Fatalf("exposition missing requests_total:\n%s", body)
	}
	if !strings.Contains(body, `status="202"`) {
		t.Fatalf("exposition missing status label:\n%s", body)
	}
}
