package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		allowed     []string
		method      string
		origin      string
		wantOrigin  string
		wantStatus  int
		wantVaryHdr bool
	}{
		{"configured origin", []string{"https://hoops-fe.example.com"}, http.MethodGet, "https://hoops-fe.example.com", "https://hoops-fe.example.com", http.StatusOK, true},
		{"wildcard preflight", []string{"*"}, http.MethodOptions, "https://hoops-fe.example.com", "*", http.StatusNoContent, false},
		{"unconfigured origin", []string{"https://allowed.example.com"}, http.MethodGet, "https://other.example.com", "", http.StatusOK, false},
		{"no origin header", []string{"*"}, http.MethodGet, "", "", http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/v1/rankings", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			CORS(tt.allowed, okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Fatalf("unexpected Access-Control-Allow-Origin %q", got)
			}
			if got := rec.Header().Get("Vary") == "Origin"; got != tt.wantVaryHdr {
				t.Fatalf("unexpected Vary header %q", rec.Header().Get("Vary"))
			}
		})
	}
}

func TestCORS_AllowsJobTokenHeader(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodOptions, "/v1/internal/rankings/recompute", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	rec := httptest.NewRecorder()
	CORS([]string{"*"}, okHandler()).ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, internalJobTokenHeader) {
		t.Fatalf("expected job token header to be allowed, got %q", got)
	}
}

func TestShouldTraceRequest(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]bool{
		"/healthz":             false,
		" /healthz ":           false,
		"/readyz":              false,
		"/metrics":             false,
		"/v1/rankings":         true,
		"/v1/rankings/weeks/3": true,
		"/":                    true,
	} {
		if got := shouldTraceRequest(path); got != want {
			t.Fatalf("shouldTraceRequest(%q)=%v want %v", path, got, want)
		}
	}
}

func TestRequestLogging_RecordsStatusAndSkipsHealthChecks(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewJSONWriter(logging.ParseLevel("info"), &buf)
	handler := RequestLogging(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if buf.Len() != 0 {
		t.Fatalf("expected health check request to be skipped, got %s", buf.String())
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/rankings", nil))
	out := buf.String()
	if !strings.Contains(out, `"status":418`) || !strings.Contains(out, `"path":"/v1/rankings"`) {
		t.Fatalf("unexpected request log %s", out)
	}
}
