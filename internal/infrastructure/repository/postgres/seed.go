package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-hoops/internal/infrastructure/repository/memory"
	qb "github.com/riskibarqy/fantasy-hoops/internal/platform/querybuilder"
)

// BootstrapSeed validates the demo season and loads it into an empty
// database. It returns the ids of the teams it inserted, none when the
// database already holds teams.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) ([]string, error) {
	if err := memory.ValidateSeed(); err != nil {
		return nil, err
	}

	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM fantasy_teams WHERE deleted_at IS NULL`); err != nil {
		return nil, fmt.Errorf("count teams for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil, nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	teams := make([]teamInsertModel, 0)
	teamIDs := make([]string, 0)
	for _, t := range memory.SeedTeams() {
		teamIDs = append(teamIDs, t.ID)
		teams = append(teams, teamInsertModel{
			PublicID:    t.ID,
			OwnerUserID: t.OwnerUserID,
			Name:        t.Name,
			Budget:      t.Budget,
		})
	}
	if err := execInsertModels(ctx, tx, "fantasy_teams", teams, "ON CONFLICT (public_id) DO NOTHING"); err != nil {
		return nil, fmt.Errorf("seed teams: %w", err)
	}

	roster := make([]rosterInsertModel, 0)
	for _, row := range memory.SeedRoster() {
		roster = append(roster, rosterInsertModel{
			TeamPublicID:  row.TeamID,
			PlayerID:      row.PlayerID,
			PlayerName:    row.PlayerName,
			IsStarter:     row.IsStarter,
			PurchasePrice: row.PurchasePrice,
			PurchasedAt:   toNullTime(row.PurchasedAt),
		})
	}
	if err := execInsertModels(ctx, tx, "roster_players", roster, "ON CONFLICT (team_public_id, player_id) DO NOTHING"); err != nil {
		return nil, fmt.Errorf("seed roster: %w", err)
	}

	transactions := make([]transactionInsertModel, 0)
	for _, item := range memory.SeedTransactions() {
		transactions = append(transactions, transactionInsertModel{
			PublicID:           item.ID,
			BuyerTeamPublicID:  item.BuyerTeamID,
			SellerTeamPublicID: toNullString(item.SellerTeamID),
			PlayerID:           item.PlayerID,
			PlayerName:         item.PlayerName,
			Price:              item.Price,
			CreatedAt:          item.CreatedAt.UTC(),
		})
	}
	if err := execInsertModels(ctx, tx, "player_transactions", transactions, "ON CONFLICT (public_id) DO NOTHING"); err != nil {
		return nil, fmt.Errorf("seed transactions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit seed tx: %w", err)
	}

	return teamIDs, nil
}

func execInsertModels[T any](ctx context.Context, tx *sqlx.Tx, table string, models []T, suffix string) error {
	if len(models) == 0 {
		return nil
	}
	query, args, err := qb.InsertModels(table, models, suffix)
	if err != nil {
		return fmt.Errorf("build insert %s query: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
