package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/team"
	qb "github.com/riskibarqy/fantasy-hoops/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("fantasy_teams").
		Where(qb.IsNull("deleted_at")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("fantasy_teams").
		Where(
			qb.Eq("public_id", teamID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build select team by id query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team by id: %w", err)
	}
	return teamFromRow(row), true, nil
}

func teamFromRow(row teamTableModel) team.Team {
	return team.Team{
		ID:          row.PublicID,
		OwnerUserID: row.OwnerUserID,
		Name:        row.Name,
		Budget:      row.Budget,
	}
}
