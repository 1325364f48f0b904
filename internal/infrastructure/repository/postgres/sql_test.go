package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/ranking"
)

func TestIsNotFound(t *testing.T) {
	t.Run("matches wrapped no rows", func(t *testing.T) {
		if !isNotFound(fmt.Errorf("get team: %w", sql.ErrNoRows)) {
			t.Fatalf("expected wrapped sql.ErrNoRows to match")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		if isNotFound(fmt.Errorf("pq: relation fantasy_teams does not exist")) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestNullConversions(t *testing.T) {
	if got := nullStringValue(sql.NullString{}); got != "" {
		t.Fatalf("expected empty string for null, got %q", got)
	}
	if v := toNullString(""); v.Valid {
		t.Fatalf("empty seller must be stored as NULL")
	}
	if !nullTimeValue(sql.NullTime{}).IsZero() {
		t.Fatalf("expected zero time for null")
	}

	at := time.Date(2025, 10, 28, 14, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	if got := nullTimeValue(toNullTime(at)); !got.Equal(at) || got.Location() != time.UTC {
		t.Fatalf("expected %s in UTC, got %s", at, got)
	}
}

func TestRankingCacheRowConversion(t *testing.T) {
	at := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	entry := ranking.CacheEntry{
		Ranking: ranking.TeamRanking{
			UserID:          "user-ayu",
			TeamID:          "team-baseline-bombers",
			TeamName:        "Baseline Bombers",
			TotalPoints:     57.5,
			WeeklyBreakdown: map[int]float64{1: 20, 2: 37.5},
		},
		CalculatedAt: at,
		RunID:        "rank_20251101T120000Z_0a1b2c3d",
		Diagnostics:  ranking.Diagnostics{SkippedPeriods: 2, InvalidDates: 1},
	}

	row, err := cacheRowFromEntry(entry)
	if err != nil {
		t.Fatalf("cacheRowFromEntry error: %v", err)
	}
	back, err := cacheEntryFromRow(row)
	if err != nil {
		t.Fatalf("cacheEntryFromRow error: %v", err)
	}
	if back.Ranking.TeamID != entry.Ranking.TeamID || back.Ranking.WeeklyBreakdown[2] != 37.5 || !back.CalculatedAt.Equal(at) {
		t.Fatalf("unexpected round trip: %+v", back)
	}
	if back.RunID != entry.RunID || back.Diagnostics.SkippedPeriods != 2 || back.Diagnostics.InvalidDates != 1 || back.Diagnostics.Complete() {
		t.Fatalf("run metadata lost in round trip: id=%q diagnostics=%+v", back.RunID, back.Diagnostics)
	}

	empty, err := cacheRowFromEntry(ranking.CacheEntry{Ranking: ranking.TeamRanking{TeamID: "t"}})
	if err != nil || empty.WeeklyBreakdown != "{}" {
		t.Fatalf("expected empty object for nil breakdown, got %q err=%v", empty.WeeklyBreakdown, err)
	}

	if _, err := cacheEntryFromRow(rankingCacheTableModel{TeamPublicID: "t", WeeklyBreakdown: "not json"}); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := cacheEntryFromRow(rankingCacheTableModel{TeamPublicID: "t", Diagnostics: "[1,"}); err == nil {
		t.Fatalf("expected diagnostics decode error")
	}
}
