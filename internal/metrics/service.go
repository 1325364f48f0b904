package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Recorder = (*Service)(nil)

// Service records metrics into Prometheus collectors.
type Service struct {
	RankingRuns     *prometheus.CounterVec
	RankingDuration prometheus.Histogram
	RankingCache    *prometheus.CounterVec
	GameLogFetches  *prometheus.CounterVec
	InvalidDates    prometheus.Counter
	RankedTeams     prometheus.Gauge
}

// NewHandler serves the given gatherer, or the default one when none is passed.
func NewHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 && gatherer[0] != nil {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the collectors. It falls back to the
// default registerer when none is passed.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 && registerer[0] != nil {
		reg = registerer[0]
	}

	s := &Service{
		RankingRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hoops_ranking_runs_total",
			Help: "Ranking computations by outcome.",
		}, []string{"outcome"}),
		RankingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hoops_ranking_duration_seconds",
			Help:    "Wall time of one ranking computation.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		RankingCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hoops_ranking_cache_total",
			Help: "Ranking cache lookups by result.",
		}, []string{"result"}),
		GameLogFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hoops_gamelog_fetches_total",
			Help: "Player game log loads by outcome.",
		}, []string{"outcome"}),
		InvalidDates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hoops_gamelog_invalid_dates_total",
			Help: "Game log rows whose date could not be parsed.",
		}),
		RankedTeams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hoops_ranked_teams",
			Help: "Number of teams on the last computed leaderboard.",
		}),
	}

	reg.MustRegister(
		s.RankingRuns,
		s.RankingDuration,
		s.RankingCache,
		s.GameLogFetches,
		s.InvalidDates,
		s.RankedTeams,
	)

	return s
}

func (s *Service) IncRankingRuns(outcome string) {
	s.RankingRuns.WithLabelValues(outcome).Inc()
}

func (s *Service) ObserveRankingDuration(seconds float64) {
	s.RankingDuration.Observe(seconds)
}

func (s *Service) IncRankingCache(result string) {
	s.RankingCache.WithLabelValues(result).Inc()
}

func (s *Service) IncGameLogFetch(outcome string) {
	s.GameLogFetches.WithLabelValues(outcome).Inc()
}

func (s *Service) AddInvalidDates(n int) {
	if n > 0 {
		s.InvalidDates.Add(float64(n))
	}
}

func (s *Service) SetRankedTeams(n int) {
	s.RankedTeams.Set(float64(n))
}
