package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/calendar"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/gamelog"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/ownership"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/ranking"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/team"
	"github.com/riskibarqy/fantasy-hoops/internal/metrics"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/id"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
)

const (
	rankingFlightKey = "ranking:recompute"

	// defaultComputeTimeout bounds a shared computation once it is detached
	// from the request that started it.
	defaultComputeTimeout = 2 * time.Minute
)

type RankingService struct {
	teamRepo       team.Repository
	ownershipRepo  ownership.Repository
	cacheRepo      ranking.CacheRepository
	gameLogs       gamelog.Loader
	seasonStart    time.Time
	now            func() time.Time
	ids            id.Generator
	flight         *resilience.SingleFlight[ranking.Board]
	computeTimeout time.Duration
	metrics        metrics.Recorder
	logger         *logging.Logger
}

// TeamStanding is one team's row with its weeks expanded to date ranges.
type TeamStanding struct {
	Ranking      ranking.TeamRanking
	Weeks        []ranking.WeeklyPoints
	CalculatedAt time.Time
	FromCache    bool
}

func NewRankingService(
	teamRepo team.Repository,
	ownershipRepo ownership.Repository,
	cacheRepo ranking.CacheRepository,
	gameLogs gamelog.Loader,
	seasonStart time.Time,
	recorder metrics.Recorder,
	logger *logging.Logger,
) *RankingService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &RankingService{
		teamRepo:       teamRepo,
		ownershipRepo:  ownershipRepo,
		cacheRepo:      cacheRepo,
		gameLogs:       gameLogs,
		seasonStart:    calendar.DayOf(seasonStart),
		now:            time.Now,
		ids:            id.NewRunIDGenerator("rank"),
		flight:         &resilience.SingleFlight[ranking.Board]{},
		computeTimeout: defaultComputeTimeout,
		metrics:        recorder,
		logger:         logger.Named("ranking"),
	}
}

func (s *RankingService) SeasonStart() time.Time {
	return s.seasonStart
}

// Compute builds a fresh leaderboard without touching the cache. Only a
// failure to load the team list is returned as an error; every other gap
// degrades the result and is reported in Diagnostics.
func (s *RankingService) Compute(ctx context.Context) (ranking.Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.Compute")
	defer span.End()

	startedAt := s.now()
	runID := s.newRunID()
	logger := s.logger.With("run_id", runID)

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		s.metrics.IncRankingRuns(metrics.OutcomeFailed)
		err = fmt.Errorf("%w: load teams: %w", ErrDependencyUnavailable, err)
		recordSpanError(span, err)
		return ranking.Board{}, err
	}

	board := ranking.Board{
		RunID:        runID,
		CalculatedAt: startedAt.UTC(),
	}

	transactions, roster, err := s.loadOwnership(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "ownership data unavailable, serving zero totals", "error", err)
		board.Rankings = ranking.Calculate(teams, nil, nil, s.seasonStart)
		board.Diagnostics.OwnershipUnavailable = true
		s.finishRun(ctx, logger, board, startedAt)
		return board, nil
	}

	rebuilt := ownership.Reconstruct(transactions, roster, ownership.OwnersFromTeams(teams))
	s.logIssues(ctx, logger, rebuilt)

	logs, failures := s.loadGameLogs(ctx, rebuilt.Periods)

	board.Rankings = ranking.Calculate(teams, rebuilt.Periods, logs, s.seasonStart)
	board.Diagnostics = ranking.Diagnostics{
		SkippedPeriods:       rebuilt.SkippedPeriods(),
		UntrackedSales:       rebuilt.UntrackedSales,
		UnclaimedOpenPeriods: rebuilt.UnclaimedOpen,
	}
	for _, failure := range failures {
		board.Diagnostics.FailedPlayers = append(board.Diagnostics.FailedPlayers, failure.PlayerID)
	}
	for _, log := range logs {
		board.Diagnostics.InvalidDates += log.InvalidDates
	}

	span.SetAttributes(
		attribute.Int("ranking.teams", len(board.Rankings)),
		attribute.Int("ranking.periods", len(rebuilt.Periods)),
		attribute.Int("ranking.players", len(logs)),
	)
	s.finishRun(ctx, logger, board, startedAt)
	return board, nil
}

// GetOrCompute serves the stored snapshot when every entry is at most maxAge
// old, otherwise recomputes and persists. maxAge <= 0 always recomputes.
func (s *RankingService) GetOrCompute(ctx context.Context, maxAge time.Duration) (ranking.Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.GetOrCompute",
		attribute.Int64("ranking.max_age_ms", maxAge.Milliseconds()),
	)
	defer span.End()

	if board, ok := s.cached(ctx, maxAge); ok {
		span.SetAttributes(attribute.Bool("ranking.cache_hit", true))
		return board, nil
	}
	span.SetAttributes(attribute.Bool("ranking.cache_hit", false))
	return s.Recompute(ctx)
}

// SetComputeTimeout overrides how long a shared computation may run.
func (s *RankingService) SetComputeTimeout(timeout time.Duration) {
	if timeout > 0 {
		s.computeTimeout = timeout
	}
}

// Recompute computes and persists a new snapshot. Concurrent callers share a
// single computation and each receive their own copy of the result. The
// computation outlives the caller that started it: cancelling one request
// neither aborts the work the others wait on nor degrades what is stored.
func (s *RankingService) Recompute(ctx context.Context) (ranking.Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.Recompute")
	defer span.End()

	board, err, shared := s.flight.Do(rankingFlightKey, func() (ranking.Board, error) {
		computeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.computeTimeout)
		defer cancel()

		board, err := s.Compute(computeCtx)
		if err != nil {
			return ranking.Board{}, err
		}
		s.persist(computeCtx, board)
		return board, nil
	})
	if err != nil {
		return ranking.Board{}, err
	}
	span.SetAttributes(attribute.Bool("ranking.shared_run", shared))
	return board.Clone(), nil
}

func (s *RankingService) GetTeamRanking(ctx context.Context, teamID string, maxAge time.Duration) (TeamStanding, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return TeamStanding{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	if _, exists, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return TeamStanding{}, fmt.Errorf("%w: get team %s: %w", ErrDependencyUnavailable, teamID, err)
	} else if !exists {
		return TeamStanding{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}

	board, err := s.GetOrCompute(ctx, maxAge)
	if err != nil {
		return TeamStanding{}, err
	}
	row, ok := board.Find(teamID)
	if !ok {
		return TeamStanding{}, fmt.Errorf("%w: team=%s", ErrNotFound, teamID)
	}

	return TeamStanding{
		Ranking:      row,
		Weeks:        row.Breakdown(s.seasonStart),
		CalculatedAt: board.CalculatedAt,
		FromCache:    board.FromCache,
	}, nil
}

func (s *RankingService) Week(week int) (calendar.Range, error) {
	if week < 1 {
		return calendar.Range{}, fmt.Errorf("%w: week must be >= 1", ErrInvalidInput)
	}
	return calendar.DatesOfWeek(week, s.seasonStart), nil
}

func (s *RankingService) CurrentWeek() int {
	return calendar.WeekOf(s.now(), s.seasonStart)
}

func (s *RankingService) loadOwnership(ctx context.Context) ([]ownership.Transaction, []ownership.RosterRow, error) {
	if s.ownershipRepo == nil {
		return nil, nil, fmt.Errorf("%w: ownership repository is not configured", ErrDependencyUnavailable)
	}
	transactions, err := s.ownershipRepo.ListTransactions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list transactions: %w", err)
	}
	roster, err := s.ownershipRepo.ListRoster(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list roster: %w", err)
	}
	return transactions, roster, nil
}

func (s *RankingService) loadGameLogs(ctx context.Context, periods []ownership.Period) (map[string]gamelog.Log, []gamelog.Failure) {
	playerIDs := make([]string, 0, len(periods))
	for _, period := range periods {
		playerIDs = append(playerIDs, period.PlayerID)
	}
	if s.gameLogs == nil {
		failures := make([]gamelog.Failure, 0, len(playerIDs))
		for _, playerID := range distinctPlayerIDs(playerIDs) {
			failures = append(failures, gamelog.Failure{PlayerID: playerID, Reason: "game log loader is not configured"})
		}
		return map[string]gamelog.Log{}, failures
	}
	return s.gameLogs.LoadMany(ctx, playerIDs)
}

func (s *RankingService) logIssues(ctx context.Context, logger *logging.Logger, rebuilt ownership.Reconstruction) {
	for _, issue := range rebuilt.Issues {
		if issue.Kind.Skips() {
			logger.WarnContext(ctx, "ownership period skipped",
				"kind", string(issue.Kind),
				"player_id", issue.PlayerID,
				"team_id", issue.TeamID,
				"at", issue.At,
			)
			continue
		}
		logger.InfoContext(ctx, "ownership period adjusted",
			"kind", string(issue.Kind),
			"player_id", issue.PlayerID,
			"team_id", issue.TeamID,
			"at", issue.At,
		)
	}
	if rebuilt.UntrackedSales > 0 || rebuilt.UnclaimedOpen > 0 {
		logger.InfoContext(ctx, "ownership reconstruction gaps",
			"untracked_sales", rebuilt.UntrackedSales,
			"unclaimed_open_periods", rebuilt.UnclaimedOpen,
		)
	}
}

func (s *RankingService) finishRun(ctx context.Context, logger *logging.Logger, board ranking.Board, startedAt time.Time) {
	elapsed := s.now().Sub(startedAt)
	outcome := metrics.OutcomeSuccess
	if !board.Diagnostics.Complete() {
		outcome = metrics.OutcomeDegraded
	}
	s.metrics.IncRankingRuns(outcome)
	s.metrics.ObserveRankingDuration(elapsed.Seconds())
	s.metrics.SetRankedTeams(len(board.Rankings))

	logger.InfoContext(ctx, "ranking computed",
		"outcome", outcome,
		"teams", len(board.Rankings),
		"failed_players", len(board.Diagnostics.FailedPlayers),
		"skipped_periods", board.Diagnostics.SkippedPeriods,
		"invalid_dates", board.Diagnostics.InvalidDates,
		"duration_ms", elapsed.Milliseconds(),
	)
}

func (s *RankingService) cached(ctx context.Context, maxAge time.Duration) (ranking.Board, bool) {
	if s.cacheRepo == nil || maxAge <= 0 {
		return ranking.Board{}, false
	}

	entries, err := s.cacheRepo.ListEntries(ctx)
	if err != nil {
		s.metrics.IncRankingCache(metrics.CacheError)
		s.logger.WarnContext(ctx, "read ranking cache failed, recomputing", "error", err)
		return ranking.Board{}, false
	}
	if len(entries) == 0 {
		s.metrics.IncRankingCache(metrics.CacheMiss)
		return ranking.Board{}, false
	}

	oldest := entries[0]
	for _, entry := range entries[1:] {
		if entry.CalculatedAt.Before(oldest.CalculatedAt) {
			oldest = entry
		}
	}
	if s.now().Sub(oldest.CalculatedAt) > maxAge {
		s.metrics.IncRankingCache(metrics.CacheMiss)
		return ranking.Board{}, false
	}

	rows := make([]ranking.TeamRanking, 0, len(entries))
	for _, entry := range entries {
		row := entry.Ranking.Clone()
		rows = append(rows, row)
	}
	ranking.Sort(rows)

	s.metrics.IncRankingCache(metrics.CacheHit)
	return ranking.Board{
		RunID:        oldest.RunID,
		Rankings:     rows,
		Diagnostics:  oldest.Diagnostics.Clone(),
		CalculatedAt: oldest.CalculatedAt,
		FromCache:    true,
	}, true
}

// persist replaces the stored snapshot. Boards missing ownership data or any
// player's game log are served but never stored, so the next request retries
// instead of reading a degraded snapshot back as fresh.
func (s *RankingService) persist(ctx context.Context, board ranking.Board) {
	if s.cacheRepo == nil {
		return
	}
	if board.Diagnostics.OwnershipUnavailable || len(board.Diagnostics.FailedPlayers) > 0 {
		s.logger.WarnContext(ctx, "degraded ranking not cached",
			"run_id", board.RunID,
			"ownership_unavailable", board.Diagnostics.OwnershipUnavailable,
			"failed_players", len(board.Diagnostics.FailedPlayers),
		)
		return
	}

	entries := make([]ranking.CacheEntry, 0, len(board.Rankings))
	for _, row := range board.Rankings {
		entries = append(entries, ranking.CacheEntry{
			Ranking:      row,
			CalculatedAt: board.CalculatedAt,
			RunID:        board.RunID,
			Diagnostics:  board.Diagnostics,
		})
	}
	if err := s.cacheRepo.SaveEntries(ctx, entries); err != nil {
		s.logger.WarnContext(ctx, "write ranking cache failed", "run_id", board.RunID, "error", err)
	}
}

func (s *RankingService) newRunID() string {
	if s.ids == nil {
		return ""
	}
	runID, err := s.ids.NewID()
	if err != nil {
		s.logger.Warn("generate ranking run id failed", "error", err)
		return ""
	}
	return runID
}
