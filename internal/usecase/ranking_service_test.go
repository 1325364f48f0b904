package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/gamelog"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/ownership"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/ranking"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/team"
	"github.com/riskibarqy/fantasy-hoops/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-hoops/internal/metrics"
	ownershipmock "github.com/riskibarqy/fantasy-hoops/internal/mocks/domain/ownership"
	rankingmock "github.com/riskibarqy/fantasy-hoops/internal/mocks/domain/ranking"
	teammock "github.com/riskibarqy/fantasy-hoops/internal/mocks/domain/team"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/cache"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

var testSeasonStart = time.Date(2024, time.October, 22, 0, 0, 0, 0, time.UTC)

func testDay(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

var testTeams = []team.Team{
	{ID: "t1", OwnerUserID: "u1", Name: "Alpha"},
	{ID: "t2", OwnerUserID: "u2", Name: "Bravo"},
	{ID: "t3", OwnerUserID: "u3", Name: "Charlie"},
}

type stubOwnershipRepo struct {
	transactions []ownership.Transaction
	roster       []ownership.RosterRow
	err          error
}

func (s stubOwnershipRepo) ListTransactions(context.Context) ([]ownership.Transaction, error) {
	return s.transactions, s.err
}

func (s stubOwnershipRepo) ListRoster(context.Context) ([]ownership.RosterRow, error) {
	return s.roster, s.err
}

type stubLoader struct {
	logs      map[string]gamelog.Log
	failures  []gamelog.Failure
	requested []string
}

func (s *stubLoader) LoadMany(_ context.Context, playerIDs []string) (map[string]gamelog.Log, []gamelog.Failure) {
	s.requested = distinctPlayerIDs(playerIDs)
	out := make(map[string]gamelog.Log, len(s.requested))
	for _, playerID := range s.requested {
		out[playerID] = s.logs[playerID]
	}
	return out, s.failures
}

func fixtureOwnership() stubOwnershipRepo {
	return stubOwnershipRepo{
		transactions: []ownership.Transaction{
			{SellerTeamID: "t1", BuyerTeamID: "t2", PlayerID: "p1", CreatedAt: testDay(11, 5)},
			{BuyerTeamID: "t1", PlayerID: "p1", CreatedAt: testDay(10, 20)},
		},
		roster: []ownership.RosterRow{
			{TeamID: "t2", PlayerID: "p1", PurchasedAt: testDay(10, 1)},
			{TeamID: "t1", PlayerID: "p2", PurchasedAt: testDay(10, 25)},
			{TeamID: "ghost", PlayerID: "p3", PurchasedAt: testDay(10, 25)},
		},
	}
}

func fixtureLoader() *stubLoader {
	return &stubLoader{
		logs: map[string]gamelog.Log{
			"p1": {Entries: []gamelog.Entry{{Date: testDay(11, 4), Points: 5}, {Date: testDay(11, 6), Points: 8}}},
			"p2": {Entries: []gamelog.Entry{{Date: testDay(10, 24), Points: 10}, {Date: testDay(11, 1), Points: 20}}, InvalidDates: 1},
		},
	}
}

func newTestRankingService(t *testing.T, teams team.Repository, owners ownership.Repository, cacheRepo ranking.CacheRepository, loader gamelog.Loader, now time.Time) *RankingService {
	t.Helper()
	svc := NewRankingService(teams, owners, cacheRepo, loader, testSeasonStart, metrics.NewMock(), logging.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func TestRankingService_Compute(t *testing.T) {
	t.Parallel()

	teamRepo := teammock.NewRepository(t)
	teamRepo.On("List", mock.Anything).Return(testTeams, nil).Once()
	loader := fixtureLoader()

	svc := newTestRankingService(t, teamRepo, fixtureOwnership(), nil, loader, testDay(12, 1))
	board, err := svc.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	want := []struct {
		teamID string
		total  float64
	}{
		{"t1", 25},
		{"t2", 8},
		{"t3", 0},
	}
	if len(board.Rankings) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), board.Rankings)
	}
	for i, w := range want {
		row := board.Rankings[i]
		if row.TeamID != w.teamID || row.TotalPoints != w.total || row.Rank != i+1 {
			t.Fatalf("position %d: got %s=%v rank %d, want %s=%v", i, row.TeamID, row.TotalPoints, row.Rank, w.teamID, w.total)
		}
	}

	if len(loader.requested) != 2 || loader.requested[0] != "p1" || loader.requested[1] != "p2" {
		t.Fatalf("expected one load per distinct owned player, got %v", loader.requested)
	}
	if board.Diagnostics.SkippedPeriods != 1 || board.Diagnostics.InvalidDates != 1 {
		t.Fatalf("unexpected diagnostics %+v", board.Diagnostics)
	}
	if board.Diagnostics.Complete() {
		t.Fatalf("skipped periods must mark the board incomplete")
	}
	if board.RunID == "" || !board.CalculatedAt.Equal(testDay(12, 1)) {
		t.Fatalf("unexpected run metadata id=%q at=%s", board.RunID, board.CalculatedAt)
	}
}

func TestRankingService_Compute_TeamsUnavailable(t *testing.T) {
	t.Parallel()

	teamRepo := teammock.NewRepository(t)
	teamRepo.On("List", mock.Anything).Return(nil, errors.New("connection reset")).Once()

	svc := newTestRankingService(t, teamRepo, fixtureOwnership(), nil, fixtureLoader(), testDay(12, 1))
	if _, err := svc.Compute(context.Background()); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestRankingService_Recompute_OwnershipUnavailableIsNotPersisted(t *testing.T) {
	t.Parallel()

	teamRepo := teammock.NewRepository(t)
	teamRepo.On("List", mock.Anything).Return(testTeams, nil).Once()
	cacheRepo := rankingmock.NewCacheRepository(t)
	loader := fixtureLoader()

	svc := newTestRankingService(t, teamRepo, stubOwnershipRepo{err: errors.New("timeout")}, cacheRepo, loader, testDay(12, 1))
	board, err := svc.Recompute(context.Background())
	if err != nil {
		t.Fatalf("Recompute error: %v", err)
	}
	if !board.Diagnostics.OwnershipUnavailable || len(board.Rankings) != 3 {
		t.Fatalf("expected zero board flagged unavailable, got %+v", board)
	}
	for _, row := range board.Rankings {
		if row.TotalPoints != 0 {
			t.Fatalf("expected zero totals, got %+v", row)
		}
	}
	if loader.requested != nil {
		t.Fatalf("game logs must not be loaded without ownership data")
	}
}

func TestRankingService_GetOrCompute_FreshCacheHit(t *testing.T) {
	t.Parallel()

	now := testDay(12, 1)
	teamRepo := teammock.NewRepository(t)
	cacheRepo := rankingmock.NewCacheRepository(t)
	cacheRepo.On("ListEntries", mock.Anything).Return([]ranking.CacheEntry{
		{Ranking: ranking.TeamRanking{UserID: "u2", TeamID: "t2", TeamName: "Bravo", TotalPoints: 8, WeeklyBreakdown: map[int]float64{3: 8}}, CalculatedAt: now.Add(-2 * time.Minute)},
		{Ranking: ranking.TeamRanking{UserID: "u1", TeamID: "t1", TeamName: "Alpha", TotalPoints: 25, WeeklyBreakdown: map[int]float64{2: 20, 3: 5}}, CalculatedAt: now.Add(-time.Minute)},
	}, nil).Once()

	svc := newTestRankingService(t, teamRepo, fixtureOwnership(), cacheRepo, fixtureLoader(), now)
	board, err := svc.GetOrCompute(context.Background(), 5*time.Minute)
	if err != nil {
		t.Fatalf("GetOrCompute error: %v", err)
	}
	if !board.FromCache || !board.CalculatedAt.Equal(now.Add(-2*time.Minute)) {
		t.Fatalf("expected cached board stamped with the oldest entry, got %+v", board)
	}
	if board.Rankings[0].TeamID != "t1" || board.Rankings[0].Rank != 1 || board.Rankings[0].WeeklyBreakdown[2] != 20 {
		t.Fatalf("unexpected cached ordering %+v", board.Rankings)
	}
}

func TestRankingService_GetOrCompute_StaleCacheRecomputes(t *testing.T) {
	t.Parallel()

	now := testDay(12, 1)
	teamRepo := teammock.NewRepository(t)
	teamRepo.On("List", mock.Anything).Return(testTeams, nil).Once()
	cacheRepo := rankingmock.NewCacheRepository(t)
	cacheRepo.On("ListEntries", mock.Anything).Return([]ranking.CacheEntry{
		{Ranking: ranking.TeamRanking{TeamID: "t1"}, CalculatedAt: now.Add(-time.Hour)},
	}, nil).Once()
	cacheRepo.
		On("SaveEntries", mock.Anything, mock.MatchedBy(func(entries []ranking.CacheEntry) bool {
			if len(entries) != 3 {
				return false
			}
			for _, entry := range entries {
				if !entry.CalculatedAt.Equal(now) {
					return false
				}
			}
			return entries[0].Ranking.TeamID == "t1" && entries[0].Ranking.TotalPoints == 25
		})).
		Return(nil).
		Once()

	svc := newTestRankingService(t, teamRepo, fixtureOwnership(), cacheRepo, fixtureLoader(), now)
	board, err := svc.GetOrCompute(context.Background(), 5*time.Minute)
	if err != nil {
		t.Fatalf("GetOrCompute error: %v", err)
	}
	if board.FromCache {
		t.Fatalf("stale cache must not be served")
	}
}

func TestRankingService_GetOrCompute_CacheFailuresDegrade(t *testing.T) {
	t.Parallel()

	teamRepo := teammock.NewRepository(t)
	teamRepo.On("List", mock.Anything).Return(testTeams, nil).Once()
	cacheRepo := rankingmock.NewCacheRepository(t)
	cacheRepo.On("ListEntries", mock.Anything).Return(nil, errors.New("read failed")).Once()
	cacheRepo.On("SaveEntries", mock.Anything, mock.Anything).Return(errors.New("write failed")).Once()

	svc := newTestRankingService(t, teamRepo, fixtureOwnership(), cacheRepo, fixtureLoader(), testDay(12, 1))
	board, err := svc.GetOrCompute(context.Background(), time.Minute)
	if err != nil {
		t.Fatalf("cache failures must not fail the request, got %v", err)
	}
	if len(board.Rankings) != 3 {
		t.Fatalf("unexpected board %+v", board)
	}
}

func TestRankingService_GetOrCompute_ZeroMaxAgeSkipsCacheRead(t *testing.T) {
	t.Parallel()

	teamRepo := teammock.NewRepository(t)
	teamRepo.On("List", mock.Anything).Return(testTeams, nil).Once()
	cacheRepo := rankingmock.NewCacheRepository(t)
	cacheRepo.On("SaveEntries", mock.Anything, mock.Anything).Return(nil).Once()

	svc := newTestRankingService(t, teamRepo, fixtureOwnership(), cacheRepo, fixtureLoader(), testDay(12, 1))
	if _, err := svc.GetOrCompute(context.Background(), 0); err != nil {
		t.Fatalf("GetOrCompute error: %v", err)
	}
}

func TestRankingService_GetTeamRanking(t *testing.T) {
	t.Parallel()

	teamRepo := teammock.NewRepository(t)
	teamRepo.On("GetByID", mock.Anything, "t1").Return(testTeams[0], true, nil).Once()
	teamRepo.On("GetByID", mock.Anything, "missing").Return(team.Team{}, false, nil).Once()
	teamRepo.On("List", mock.Anything).Return(testTeams, nil).Once()

	svc := newTestRankingService(t, teamRepo, fixtureOwnership(), nil, fixtureLoader(), testDay(12, 1))

	standing, err := svc.GetTeamRanking(context.Background(), " t1 ", 0)
	if err != nil {
		t.Fatalf("GetTeamRanking error: %v", err)
	}
	if standing.Ranking.TotalPoints != 25 || len(standing.Weeks) != 2 {
		t.Fatalf("unexpected standing %+v", standing)
	}
	if standing.Weeks[0].Week != 2 || !standing.Weeks[0].WeekStart.Equal(testDay(10, 28)) {
		t.Fatalf("unexpected first week %+v", standing.Weeks[0])
	}

	if _, err := svc.GetTeamRanking(context.Background(), "missing", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound without computing, got %v", err)
	}
	if _, err := svc.GetTeamRanking(context.Background(), "  ", 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRankingService_GetTeamRanking_LookupFailure(t *testing.T) {
	t.Parallel()

	teamRepo := teammock.NewRepository(t)
	teamRepo.On("GetByID", mock.Anything, "t1").Return(team.Team{}, false, errors.New("connection reset")).Once()

	svc := newTestRankingService(t, teamRepo, fixtureOwnership(), nil, fixtureLoader(), testDay(12, 1))
	if _, err := svc.GetTeamRanking(context.Background(), "t1", 0); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestRankingService_Recompute_ConcurrentCallersShareOneRun(t *testing.T) {
	t.Parallel()

	const callers = 8
	release := make(chan struct{})

	teamRepo := teammock.NewRepository(t)
	teamRepo.On("List", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(testTeams, nil).
		Once()
	fixture := fixtureOwnership()
	owners := ownershipmock.NewRepository(t)
	owners.On("ListTransactions", mock.Anything).Return(fixture.transactions, nil).Once()
	owners.On("ListRoster", mock.Anything).Return(fixture.roster, nil).Once()
	cacheRepo := rankingmock.NewCacheRepository(t)
	cacheRepo.On("SaveEntries", mock.Anything, mock.Anything).Return(nil).Once()

	svc := newTestRankingService(t, teamRepo, owners, cacheRepo, fixtureLoader(), testDay(12, 1))

	boards := make([]ranking.Board, callers)
	errs := make([]error, callers)
	var started, finished sync.WaitGroup
	started.Add(callers)
	finished.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer finished.Done()
			started.Done()
			boards[i], errs[i] = svc.Recompute(context.Background())
		}(i)
	}
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	finished.Wait()

	for i := range boards {
		if errs[i] != nil {
			t.Fatalf("caller %d: Recompute error: %v", i, errs[i])
		}
		if row, ok := boards[i].Find("t1"); !ok || row.TotalPoints != 25 {
			t.Fatalf("caller %d: unexpected t1 row %+v", i, row)
		}
		if boards[i].RunID != boards[0].RunID {
			t.Fatalf("caller %d: expected one shared run, got %q and %q", i, boards[i].RunID, boards[0].RunID)
		}
	}

	boards[0].Rankings[0].WeeklyBreakdown[99] = 1
	boards[0].Diagnostics.FailedPlayers = append(boards[0].Diagnostics.FailedPlayers, "mutated")
	for i := 1; i < callers; i++ {
		if _, ok := boards[i].Rankings[0].WeeklyBreakdown[99]; ok {
			t.Fatalf("caller %d shares a breakdown map with caller 0", i)
		}
		if len(boards[i].Diagnostics.FailedPlayers) != 0 {
			t.Fatalf("caller %d shares diagnostics with caller 0", i)
		}
	}
}

type ctxAwareProvider struct {
	points map[string]float64
}

func (ctxAwareProvider) Name() string { return "ctx-aware" }

func (p ctxAwareProvider) FetchGameLog(ctx context.Context, playerID, _ string) ([]gamelog.RawEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []gamelog.RawEntry{{Date: "2024-11-01", Points: p.points[playerID]}}, nil
}

func TestRankingService_GetOrCompute_CancelledCallerDoesNotPoisonCache(t *testing.T) {
	t.Parallel()

	teams := memory.NewTeamRepository(testTeams[:1])
	owners := memory.NewOwnershipRepository(nil, []ownership.RosterRow{{TeamID: "t1", PlayerID: "p1", PurchasedAt: testDay(10, 20)}})
	cacheRepo := memory.NewRankingCacheRepository()
	loader := NewGameLogService(ctxAwareProvider{points: map[string]float64{"p1": 20}}, cache.NewStore(), GameLogConfig{Season: "2024-25", MaxWorkers: 2}, nil, logging.NewNop())
	svc := newTestRankingService(t, teams, owners, cacheRepo, loader, testDay(12, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	first, err := svc.GetOrCompute(ctx, time.Hour)
	if err != nil {
		t.Fatalf("GetOrCompute error: %v", err)
	}
	if row, _ := first.Find("t1"); row.TotalPoints != 20 || len(first.Diagnostics.FailedPlayers) != 0 {
		t.Fatalf("cancelled caller must still get a full computation, got %+v %+v", row, first.Diagnostics)
	}

	next, err := svc.GetOrCompute(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("GetOrCompute error: %v", err)
	}
	if !next.FromCache || next.RunID != first.RunID {
		t.Fatalf("expected the stored run to be served, got fromCache=%v run=%q", next.FromCache, next.RunID)
	}
	if row, _ := next.Find("t1"); row.TotalPoints != 20 || !next.Diagnostics.Complete() {
		t.Fatalf("unexpected cached board %+v %+v", row, next.Diagnostics)
	}
}

type blockingLoader struct{}

func (blockingLoader) LoadMany(ctx context.Context, playerIDs []string) (map[string]gamelog.Log, []gamelog.Failure) {
	<-ctx.Done()
	failures := make([]gamelog.Failure, 0, len(playerIDs))
	for _, playerID := range distinctPlayerIDs(playerIDs) {
		failures = append(failures, gamelog.Failure{PlayerID: playerID, Reason: ctx.Err().Error()})
	}
	return map[string]gamelog.Log{}, failures
}

func TestRankingService_Recompute_TimedOutRunIsNotPersisted(t *testing.T) {
	t.Parallel()

	teamRepo := teammock.NewRepository(t)
	teamRepo.On("List", mock.Anything).Return(testTeams, nil).Once()
	cacheRepo := rankingmock.NewCacheRepository(t)

	svc := newTestRankingService(t, teamRepo, fixtureOwnership(), cacheRepo, blockingLoader{}, testDay(12, 1))
	svc.SetComputeTimeout(20 * time.Millisecond)

	board, err := svc.Recompute(context.Background())
	if err != nil {
		t.Fatalf("Recompute error: %v", err)
	}
	if len(board.Diagnostics.FailedPlayers) != 2 || board.Diagnostics.Complete() {
		t.Fatalf("expected both players failed, got %+v", board.Diagnostics)
	}
}

func TestRankingService_GetOrCompute_CacheHitKeepsDiagnostics(t *testing.T) {
	t.Parallel()

	now := testDay(12, 1)
	stored := ranking.Diagnostics{SkippedPeriods: 1, InvalidDates: 3}
	cacheRepo := rankingmock.NewCacheRepository(t)
	cacheRepo.On("ListEntries", mock.Anything).Return([]ranking.CacheEntry{
		{Ranking: ranking.TeamRanking{UserID: "u1", TeamID: "t1", TeamName: "Alpha", TotalPoints: 25}, CalculatedAt: now.Add(-time.Minute), RunID: "rank_a", Diagnostics: stored},
	}, nil).Once()

	svc := newTestRankingService(t, teammock.NewRepository(t), fixtureOwnership(), cacheRepo, fixtureLoader(), now)
	board, err := svc.GetOrCompute(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("GetOrCompute error: %v", err)
	}
	if !board.FromCache || board.RunID != "rank_a" {
		t.Fatalf("expected cached run rank_a, got fromCache=%v run=%q", board.FromCache, board.RunID)
	}
	if board.Diagnostics.SkippedPeriods != 1 || board.Diagnostics.InvalidDates != 3 || board.Diagnostics.Complete() {
		t.Fatalf("cache hit must report the stored diagnostics, got %+v", board.Diagnostics)
	}
}

func TestRankingService_Week(t *testing.T) {
	t.Parallel()

	svc := newTestRankingService(t, nil, nil, nil, nil, testDay(11, 6))

	span, err := svc.Week(3)
	if err != nil {
		t.Fatalf("Week error: %v", err)
	}
	if !span.Start.Equal(testDay(11, 4)) || !span.Contains(testDay(11, 10)) || span.Contains(testDay(11, 11)) {
		t.Fatalf("unexpected week range %+v", span)
	}
	if _, err := svc.Week(0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if svc.CurrentWeek() != 3 {
		t.Fatalf("expected current week 3, got %d", svc.CurrentWeek())
	}
}
