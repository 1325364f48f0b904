package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/calendar"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/gamelog"
	"github.com/riskibarqy/fantasy-hoops/internal/metrics"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/cache"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/resilience"
	"github.com/sourcegraph/conc/panics"
	"github.com/vmihailenco/msgpack/v5"
	"go.opentelemetry.io/otel/attribute"
)

const defaultGameLogWorkers = 8

type GameLogConfig struct {
	Season     string
	CacheTTL   time.Duration
	MaxWorkers int
}

// GameLogService loads and normalizes season game logs, one provider call per
// player, cached in a shared KV store.
type GameLogService struct {
	provider gamelog.Provider
	kv       cache.KV
	flight   *resilience.SingleFlight[[]byte]
	cfg      GameLogConfig
	metrics  metrics.Recorder
	logger   *logging.Logger
}

var _ gamelog.Loader = (*GameLogService)(nil)

type cachedGameLog struct {
	Provider  string          `msgpack:"provider"`
	FetchedAt time.Time       `msgpack:"fetched_at"`
	Rows      []cachedGameRow `msgpack:"rows"`
}

type cachedGameRow struct {
	Date   string  `msgpack:"d"`
	Points float64 `msgpack:"p"`
}

type gameLogResult struct {
	playerID string
	log      gamelog.Log
	err      error
}

func NewGameLogService(provider gamelog.Provider, kv cache.KV, cfg GameLogConfig, recorder metrics.Recorder, logger *logging.Logger) *GameLogService {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaultGameLogWorkers
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &GameLogService{
		provider: provider,
		kv:       kv,
		flight:   &resilience.SingleFlight[[]byte]{},
		cfg:      cfg,
		metrics:  recorder,
		logger:   logger.Named("gamelog"),
	}
}

// LoadMany fetches every distinct player concurrently. A player whose log
// cannot be loaded gets an empty log and a Failure entry; the call itself
// never fails.
func (s *GameLogService) LoadMany(ctx context.Context, playerIDs []string) (map[string]gamelog.Log, []gamelog.Failure) {
	ids := distinctPlayerIDs(playerIDs)
	ctx, span := startUsecaseSpan(ctx, "usecase.GameLogService.LoadMany",
		attribute.Int("gamelog.players", len(ids)),
		attribute.String("gamelog.season", s.cfg.Season),
	)
	defer span.End()

	logs := make(map[string]gamelog.Log, len(ids))
	if len(ids) == 0 {
		return logs, nil
	}

	results := make(chan gameLogResult, len(ids))
	s.fanOut(ctx, ids, results)
	close(results)

	var failures []gamelog.Failure
	for row := range results {
		if row.err != nil {
			s.metrics.IncGameLogFetch(metrics.OutcomeFailed)
			s.logger.WarnContext(ctx, "game log unavailable, player contributes no points",
				"player_id", row.playerID,
				"season", s.cfg.Season,
				"error", row.err,
			)
			failures = append(failures, gamelog.Failure{PlayerID: row.playerID, Reason: row.err.Error()})
			logs[row.playerID] = gamelog.Log{PlayerID: row.playerID, Season: s.cfg.Season}
			continue
		}
		s.metrics.IncGameLogFetch(metrics.OutcomeSuccess)
		s.metrics.AddInvalidDates(row.log.InvalidDates)
		logs[row.playerID] = row.log
	}

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].PlayerID < failures[j].PlayerID
	})
	return logs, failures
}

func (s *GameLogService) fanOut(ctx context.Context, ids []string, results chan<- gameLogResult) {
	pool, err := ants.NewPool(min(s.cfg.MaxWorkers, len(ids)))
	if err != nil {
		s.logger.WarnContext(ctx, "create game log worker pool failed, fetching sequentially", "error", err)
		for _, playerID := range ids {
			results <- s.loadOne(ctx, playerID)
		}
		return
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, playerID := range ids {
		playerID := playerID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			results <- s.loadOne(ctx, playerID)
		}); err != nil {
			workers.Done()
			results <- gameLogResult{playerID: playerID, err: fmt.Errorf("submit game log task: %w", err)}
		}
	}
	workers.Wait()
}

func (s *GameLogService) loadOne(ctx context.Context, playerID string) gameLogResult {
	var (
		rows []gamelog.RawEntry
		err  error
	)
	var catcher panics.Catcher
	catcher.Try(func() {
		rows, err = s.fetchRows(ctx, playerID)
	})
	if recovered := catcher.Recovered(); recovered != nil {
		err = fmt.Errorf("fetch game log panicked: %w", recovered.AsError())
	}
	if err != nil {
		return gameLogResult{playerID: playerID, err: err}
	}
	return gameLogResult{playerID: playerID, log: s.normalize(ctx, playerID, rows)}
}

// fetchRows looks the player up by the trimmed id; results stay keyed by the
// id as the caller passed it so ownership periods still match their log.
func (s *GameLogService) fetchRows(ctx context.Context, playerID string) ([]gamelog.RawEntry, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no game log provider configured", ErrDependencyUnavailable)
	}
	playerID = strings.TrimSpace(playerID)

	key := gameLogCacheKey(s.cfg.Season, playerID)
	payload, err := cache.GetOrLoad(ctx, s.kv, s.flight, key, s.cfg.CacheTTL, func(ctx context.Context) ([]byte, error) {
		rows, err := s.provider.FetchGameLog(ctx, playerID, s.cfg.Season)
		if err != nil {
			return nil, fmt.Errorf("fetch game log from %s: %w", s.provider.Name(), err)
		}
		return encodeGameLog(s.provider.Name(), time.Now().UTC(), rows)
	})
	if err != nil {
		return nil, err
	}

	rows, err := decodeGameLog(payload)
	if err != nil {
		s.logger.WarnContext(ctx, "drop corrupt game log cache entry", "key", key, "error", err)
		if s.kv != nil {
			_ = s.kv.Delete(ctx, key)
		}
		fresh, fetchErr := s.provider.FetchGameLog(ctx, playerID, s.cfg.Season)
		if fetchErr != nil {
			return nil, fmt.Errorf("refetch game log from %s: %w", s.provider.Name(), fetchErr)
		}
		return fresh, nil
	}
	return rows, nil
}

// normalize keeps every row. Rows with unparsable dates are stamped with the
// sentinel day so counts stay consistent with the provider payload.
func (s *GameLogService) normalize(ctx context.Context, playerID string, rows []gamelog.RawEntry) gamelog.Log {
	out := gamelog.Log{
		PlayerID: playerID,
		Season:   s.cfg.Season,
		Entries:  make([]gamelog.Entry, 0, len(rows)),
	}
	for _, row := range rows {
		day, err := calendar.NormalizeDate(row.Date)
		if err != nil {
			out.InvalidDates++
			s.logger.WarnContext(ctx, "unparsable game date, using sentinel",
				"player_id", playerID,
				"raw_date", row.Date,
				"error", err,
			)
		}
		out.Entries = append(out.Entries, gamelog.Entry{Date: day, RawDate: row.Date, Points: row.Points})
	}
	gamelog.SortEntries(out.Entries)
	return out
}

func gameLogCacheKey(season, playerID string) string {
	return "gamelog:" + season + ":" + playerID
}

func encodeGameLog(provider string, fetchedAt time.Time, rows []gamelog.RawEntry) ([]byte, error) {
	record := cachedGameLog{
		Provider:  provider,
		FetchedAt: fetchedAt,
		Rows:      make([]cachedGameRow, 0, len(rows)),
	}
	for _, row := range rows {
		record.Rows = append(record.Rows, cachedGameRow{Date: row.Date, Points: row.Points})
	}
	payload, err := msgpack.Marshal(&record)
	if err != nil {
		return nil, fmt.Errorf("encode game log: %w", err)
	}
	return payload, nil
}

func decodeGameLog(payload []byte) ([]gamelog.RawEntry, error) {
	var record cachedGameLog
	if err := msgpack.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode game log: %w", err)
	}
	rows := make([]gamelog.RawEntry, 0, len(record.Rows))
	for _, row := range record.Rows {
		rows = append(rows, gamelog.RawEntry{Date: row.Date, Points: row.Points})
	}
	return rows, nil
}

func distinctPlayerIDs(playerIDs []string) []string {
	seen := make(map[string]struct{}, len(playerIDs))
	out := make([]string, 0, len(playerIDs))
	for _, playerID := range playerIDs {
		if strings.TrimSpace(playerID) == "" {
			continue
		}
		if _, ok := seen[playerID]; ok {
			continue
		}
		seen[playerID] = struct{}{}
		out = append(out, playerID)
	}
	sort.Strings(out)
	return out
}
