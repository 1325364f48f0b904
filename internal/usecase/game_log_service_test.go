package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/calendar"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/gamelog"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/ownership"
	"github.com/riskibarqy/fantasy-hoops/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fantasy-hoops/internal/metrics"
	gamelogmock "github.com/riskibarqy/fantasy-hoops/internal/mocks/domain/gamelog"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/cache"
	"github.com/riskibarqy/fantasy-hoops/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestGameLogService_LoadMany_NormalizesAndCaches(t *testing.T) {
	t.Parallel()

	provider := gamelogmock.NewProvider(t)
	provider.On("Name").Return("stub").Maybe()
	provider.
		On("FetchGameLog", mock.Anything, "p1", "2024-25").
		Return([]gamelog.RawEntry{
			{Date: "NOV 01, 2024", Points: 20},
			{Date: "garbage", Points: 3},
			{Date: "2024-10-24", Points: 10},
		}, nil).
		Once()
	provider.
		On("FetchGameLog", mock.Anything, "p2", "2024-25").
		Return(nil, gamelog.ErrPlayerNotFound).
		Times(2)

	recorder := metrics.NewMock()
	svc := NewGameLogService(provider, cache.NewStore(), GameLogConfig{Season: "2024-25", CacheTTL: time.Hour, MaxWorkers: 4}, recorder, logging.NewNop())

	for run := 0; run < 2; run++ {
		logs, failures := svc.LoadMany(context.Background(), []string{"p2", "p1", "p1", " "})
		if len(logs) != 2 {
			t.Fatalf("run %d: expected logs for two players, got %d", run, len(logs))
		}
		if len(failures) != 1 || failures[0].PlayerID != "p2" {
			t.Fatalf("run %d: unexpected failures %+v", run, failures)
		}
		if len(logs["p2"].Entries) != 0 {
			t.Fatalf("run %d: failed player must get an empty log", run)
		}

		p1 := logs["p1"]
		if len(p1.Entries) != 3 || p1.InvalidDates != 1 {
			t.Fatalf("run %d: expected every row kept with one invalid date, got %+v", run, p1)
		}
		if !p1.Entries[0].Date.Equal(calendar.Sentinel) || p1.Entries[0].RawDate != "garbage" {
			t.Fatalf("run %d: sentinel entry must sort first, got %+v", run, p1.Entries[0])
		}
		if !p1.Entries[2].Date.Equal(time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)) {
			t.Fatalf("run %d: unexpected last entry %+v", run, p1.Entries[2])
		}
	}

	if recorder.Fetches(metrics.OutcomeSuccess) != 2 || recorder.Fetches(metrics.OutcomeFailed) != 2 {
		t.Fatalf("unexpected fetch metrics: ok=%d failed=%d", recorder.Fetches(metrics.OutcomeSuccess), recorder.Fetches(metrics.OutcomeFailed))
	}
	if recorder.InvalidDates() != 2 {
		t.Fatalf("expected invalid dates counted per load, got %d", recorder.InvalidDates())
	}
}

func TestRankingService_PaddedPlayerIDIsCredited(t *testing.T) {
	t.Parallel()

	provider := gamelogmock.NewProvider(t)
	provider.On("Name").Return("stub").Maybe()
	provider.
		On("FetchGameLog", mock.Anything, "p1", "2024-25").
		Return([]gamelog.RawEntry{{Date: "2024-11-01", Points: 12}}, nil).
		Once()
	loader := NewGameLogService(provider, cache.NewStore(), GameLogConfig{Season: "2024-25", MaxWorkers: 2}, nil, logging.NewNop())

	logs, failures := loader.LoadMany(context.Background(), []string{"p1 "})
	if len(failures) != 0 || logs["p1 "].TotalPoints() != 12 {
		t.Fatalf("expected log keyed by the caller's id, got logs=%+v failures=%+v", logs, failures)
	}

	owners := stubOwnershipRepo{roster: []ownership.RosterRow{{TeamID: "t1", PlayerID: "p1 ", PurchasedAt: testDay(10, 20)}}}
	svc := newTestRankingService(t, memory.NewTeamRepository(testTeams), owners, nil, loader, testDay(12, 1))
	board, err := svc.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}
	row, ok := board.Find("t1")
	if !ok || row.TotalPoints != 12 {
		t.Fatalf("padded player id must still be credited, got %+v", row)
	}
}

type panickyProvider struct{}

func (panickyProvider) Name() string { return "panicky" }

func (panickyProvider) FetchGameLog(context.Context, string, string) ([]gamelog.RawEntry, error) {
	panic("boom")
}

func TestGameLogService_LoadMany_IsolatesPanics(t *testing.T) {
	t.Parallel()

	svc := NewGameLogService(panickyProvider{}, nil, GameLogConfig{Season: "2024-25"}, nil, logging.NewNop())
	logs, failures := svc.LoadMany(context.Background(), []string{"p1", "p2"})
	if len(failures) != 2 {
		t.Fatalf("expected both players to fail, got %+v", failures)
	}
	if _, ok := logs["p1"]; !ok {
		t.Fatalf("failed players must still be present in the result")
	}
}

func TestGameLogService_LoadMany_CorruptCacheEntryRefetches(t *testing.T) {
	t.Parallel()

	store := cache.NewStore()
	key := gameLogCacheKey("2024-25", "p1")
	if err := store.Set(context.Background(), key, []byte{0xc1}, 0); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	provider := gamelogmock.NewProvider(t)
	provider.On("Name").Return("stub").Maybe()
	provider.
		On("FetchGameLog", mock.Anything, "p1", "2024-25").
		Return([]gamelog.RawEntry{{Date: "2024-11-01", Points: 4}}, nil).
		Once()

	svc := NewGameLogService(provider, store, GameLogConfig{Season: "2024-25"}, nil, logging.NewNop())
	logs, failures := svc.LoadMany(context.Background(), []string{"p1"})
	if len(failures) != 0 || logs["p1"].TotalPoints() != 4 {
		t.Fatalf("expected refetched log, got logs=%+v failures=%+v", logs, failures)
	}
	if _, ok, _ := store.Get(context.Background(), key); ok {
		t.Fatalf("corrupt entry must be evicted")
	}
}

func TestGameLogService_LoadMany_NoProvider(t *testing.T) {
	t.Parallel()

	svc := NewGameLogService(nil, nil, GameLogConfig{}, nil, logging.NewNop())
	_, failures := svc.LoadMany(context.Background(), []string{"p1"})
	if len(failures) != 1 {
		t.Fatalf("expected failure without provider, got %+v", failures)
	}
}

func TestGameLogCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	payload, err := encodeGameLog("primary", time.Unix(10, 0).UTC(), []gamelog.RawEntry{{Date: "Oct 22, 2024", Points: 12.5}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	rows, err := decodeGameLog(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].Date != "Oct 22, 2024" || rows[0].Points != 12.5 {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if _, err := decodeGameLog([]byte{0xc1}); err == nil {
		t.Fatalf("expected decode error")
	}
}
