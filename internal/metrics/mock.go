package metrics

import "sync"

// Mock counts calls for assertions in tests.
type Mock struct {
	mu           sync.Mutex
	runs         map[string]int
	durations    []float64
	cache        map[string]int
	fetches      map[string]int
	invalidDates int
	rankedTeams  int
}

var _ Recorder = (*Mock)(nil)

func NewMock() *Mock {
	return &Mock{
		runs:    make(map[string]int),
		cache:   make(map[string]int),
		fetches: make(map[string]int),
	}
}

func (m *Mock) IncRankingRuns(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[outcome]++
}

func (m *Mock) ObserveRankingDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations = append(m.durations, seconds)
}

func (m *Mock) IncRankingCache(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[result]++
}

func (m *Mock) IncGameLogFetch(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches[outcome]++
}

func (m *Mock) AddInvalidDates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidDates += n
}

func (m *Mock) SetRankedTeams(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rankedTeams = n
}

func (m *Mock) Runs(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[outcome]
}

func (m *Mock) Cache(result string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache[result]
}

func (m *Mock) Fetches(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches[outcome]
}

func (m *Mock) InvalidDates() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invalidDates
}

func (m *Mock) RankedTeams() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rankedTeams
}
