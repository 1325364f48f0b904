package metrics

// Recorder collects ranking engine metrics. Implementations must be safe for
// concurrent use.
type Recorder interface {
	IncRankingRuns(outcome string)
	ObserveRankingDuration(seconds float64)
	IncRankingCache(result string)
	IncGameLogFetch(outcome string)
	AddInvalidDates(n int)
	SetRankedTeams(n int)
}

const (
	OutcomeSuccess  = "success"
	OutcomeDegraded = "degraded"
	OutcomeFailed   = "failed"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Nop discards everything.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) IncRankingRuns(string)          {}
func (Nop) ObserveRankingDuration(float64) {}
func (Nop) IncRankingCache(string)         {}
func (Nop) IncGameLogFetch(string)         {}
func (Nop) AddInvalidDates(int)            {}
func (Nop) SetRankedTeams(int)             {}
