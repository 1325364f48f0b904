package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gathered(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			}
		}
	}
	return total
}

func TestService_RecordsIntoRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	svc := NewService(reg)

	svc.IncRankingRuns(OutcomeSuccess)
	svc.IncRankingRuns(OutcomeSuccess)
	svc.IncRankingCache(CacheHit)
	svc.IncGameLogFetch(OutcomeFailed)
	svc.AddInvalidDates(3)
	svc.AddInvalidDates(-1)
	svc.SetRankedTeams(12)
	svc.ObserveRankingDuration(0.2)

	if got := gathered(t, reg, "hoops_ranking_runs_total"); got != 2 {
		t.Fatalf("expected 2 successful runs, got %v", got)
	}
	if got := gathered(t, reg, "hoops_gamelog_invalid_dates_total"); got != 3 {
		t.Fatalf("expected 3 invalid dates, got %v", got)
	}
	if got := gathered(t, reg, "hoops_ranked_teams"); got != 12 {
		t.Fatalf("expected 12 ranked teams, got %v", got)
	}

	rec := httptest.NewRecorder()
	NewHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "hoops_ranking_cache_total") {
		t.Fatalf("expected exposition to contain cache counter, got:\n%s", body)
	}
}

func TestMock_CountsCalls(t *testing.T) {
	t.Parallel()

	m := NewMock()
	m.IncGameLogFetch(OutcomeSuccess)
	m.IncGameLogFetch(OutcomeSuccess)
	m.AddInvalidDates(2)

	if m.Fetches(OutcomeSuccess) != 2 || m.InvalidDates() != 2 {
		t.Fatalf("unexpected mock state: fetches=%d invalid=%d", m.Fetches(OutcomeSuccess), m.InvalidDates())
	}
}
