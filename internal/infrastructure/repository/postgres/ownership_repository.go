package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/ownership"
	qb "github.com/riskibarqy/fantasy-hoops/internal/platform/querybuilder"
)

type OwnershipRepository struct {
	db *sqlx.DB
}

func NewOwnershipRepository(db *sqlx.DB) *OwnershipRepository {
	return &OwnershipRepository{db: db}
}

// ListTransactions returns the trade log ascending by created_at.
func (r *OwnershipRepository) ListTransactions(ctx context.Context) ([]ownership.Transaction, error) {
	query, args, err := qb.Select("*").From("player_transactions").
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select transactions query: %w", err)
	}

	var rows []transactionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}

	out := make([]ownership.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, ownership.Transaction{
			ID:           row.PublicID,
			BuyerTeamID:  row.BuyerTeamPublicID,
			SellerTeamID: nullStringValue(row.SellerTeamPublicID),
			PlayerID:     row.PlayerID,
			PlayerName:   row.PlayerName,
			Price:        row.Price,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func (r *OwnershipRepository) ListRoster(ctx context.Context) ([]ownership.RosterRow, error) {
	query, args, err := qb.Select("*").From("roster_players").
		OrderBy("team_public_id", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select roster query: %w", err)
	}

	var rows []rosterTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select roster: %w", err)
	}

	out := make([]ownership.RosterRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, ownership.RosterRow{
			TeamID:        row.TeamPublicID,
			PlayerID:      row.PlayerID,
			PlayerName:    row.PlayerName,
			IsStarter:     row.IsStarter,
			PurchasePrice: row.PurchasePrice,
			PurchasedAt:   nullTimeValue(row.PurchasedAt),
			CreatedAt:     row.CreatedAt.UTC(),
		})
	}
	return out, nil
}
