package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/ranking"
	qb "github.com/riskibarqy/fantasy-hoops/internal/platform/querybuilder"
)

// rankingCacheBatchSize keeps one insert well below the postgres bind limit.
const rankingCacheBatchSize = 500

type RankingCacheRepository struct {
	db *sqlx.DB
}

func NewRankingCacheRepository(db *sqlx.DB) *RankingCacheRepository {
	return &RankingCacheRepository{db: db}
}

func (r *RankingCacheRepository) ListEntries(ctx context.Context) ([]ranking.CacheEntry, error) {
	query, args, err := qb.Select("*").From("ranking_cache").
		OrderBy("total_points DESC", "team_name", "team_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select ranking cache query: %w", err)
	}

	var rows []rankingCacheTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select ranking cache: %w", err)
	}

	out := make([]ranking.CacheEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := cacheEntryFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// SaveEntries swaps the whole snapshot inside one transaction.
func (r *RankingCacheRepository) SaveEntries(ctx context.Context, entries []ranking.CacheEntry) error {
	models := make([]rankingCacheTableModel, 0, len(entries))
	for _, entry := range entries {
		model, err := cacheRowFromEntry(entry)
		if err != nil {
			return err
		}
		models = append(models, model)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save ranking cache: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	clearQuery, clearArgs, err := qb.DeleteFrom("ranking_cache").Where(qb.Expr("TRUE")).ToSQL()
	if err != nil {
		return fmt.Errorf("build clear ranking cache query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
		return fmt.Errorf("clear ranking cache: %w", err)
	}

	for start := 0; start < len(models); start += rankingCacheBatchSize {
		end := min(start+rankingCacheBatchSize, len(models))
		query, args, err := qb.InsertModels("ranking_cache", models[start:end], `ON CONFLICT (user_id, team_public_id)
DO UPDATE SET
    team_name = EXCLUDED.team_name,
    total_points = EXCLUDED.total_points,
    weekly_breakdown = EXCLUDED.weekly_breakdown,
    calculated_at = EXCLUDED.calculated_at,
    run_id = EXCLUDED.run_id,
    diagnostics = EXCLUDED.diagnostics`)
		if err != nil {
			return fmt.Errorf("build insert ranking cache query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert ranking cache: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save ranking cache tx: %w", err)
	}
	return nil
}

func cacheRowFromEntry(entry ranking.CacheEntry) (rankingCacheTableModel, error) {
	breakdown := entry.Ranking.WeeklyBreakdown
	if breakdown == nil {
		breakdown = map[int]float64{}
	}
	rawBreakdown, err := sonic.MarshalString(breakdown)
	if err != nil {
		return rankingCacheTableModel{}, fmt.Errorf("encode weekly breakdown for team %s: %w", entry.Ranking.TeamID, err)
	}

	d := entry.Diagnostics
	rawDiagnostics, err := sonic.MarshalString(rankingDiagnosticsModel{
		SkippedPeriods:       d.SkippedPeriods,
		UntrackedSales:       d.UntrackedSales,
		UnclaimedOpenPeriods: d.UnclaimedOpenPeriods,
		FailedPlayers:        d.FailedPlayers,
		InvalidDates:         d.InvalidDates,
		OwnershipUnavailable: d.OwnershipUnavailable,
	})
	if err != nil {
		return rankingCacheTableModel{}, fmt.Errorf("encode diagnostics for team %s: %w", entry.Ranking.TeamID, err)
	}

	return rankingCacheTableModel{
		UserID:          entry.Ranking.UserID,
		TeamPublicID:    entry.Ranking.TeamID,
		TeamName:        entry.Ranking.TeamName,
		TotalPoints:     entry.Ranking.TotalPoints,
		WeeklyBreakdown: rawBreakdown,
		CalculatedAt:    entry.CalculatedAt.UTC(),
		RunID:           entry.RunID,
		Diagnostics:     rawDiagnostics,
	}, nil
}

func cacheEntryFromRow(row rankingCacheTableModel) (ranking.CacheEntry, error) {
	breakdown := make(map[int]float64)
	if len(row.WeeklyBreakdown) > 0 {
		if err := sonic.UnmarshalString(row.WeeklyBreakdown, &breakdown); err != nil {
			return ranking.CacheEntry{}, fmt.Errorf("decode weekly breakdown for team %s: %w", row.TeamPublicID, err)
		}
	}

	var d rankingDiagnosticsModel
	if len(row.Diagnostics) > 0 {
		if err := sonic.UnmarshalString(row.Diagnostics, &d); err != nil {
			return ranking.CacheEntry{}, fmt.Errorf("decode diagnostics for team %s: %w", row.TeamPublicID, err)
		}
	}

	return ranking.CacheEntry{
		Ranking: ranking.TeamRanking{
			UserID:          row.UserID,
			TeamID:          row.TeamPublicID,
			TeamName:        row.TeamName,
			TotalPoints:     row.TotalPoints,
			WeeklyBreakdown: breakdown,
		},
		CalculatedAt: row.CalculatedAt.UTC(),
		RunID:        row.RunID,
		Diagnostics: ranking.Diagnostics{
			SkippedPeriods:       d.SkippedPeriods,
			UntrackedSales:       d.UntrackedSales,
			UnclaimedOpenPeriods: d.UnclaimedOpenPeriods,
			FailedPlayers:        d.FailedPlayers,
			InvalidDates:         d.InvalidDates,
			OwnershipUnavailable: d.OwnershipUnavailable,
		},
	}, nil
}
