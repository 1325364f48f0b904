package ownership

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/team"
)

func TestValidateRoster(t *testing.T) {
	rules := DefaultRules()
	validRows := make([]RosterRow, 0, rules.RosterSize)
	for i := 0; i < rules.RosterSize; i++ {
		validRows = append(validRows, RosterRow{
			TeamID:        "t1",
			PlayerID:      fmt.Sprintf("p%d", i+1),
			IsStarter:     i < rules.Starters,
			PurchasePrice: 10,
		})
	}

	tests := []struct {
		name      string
		budget    int64
		mutate    func([]RosterRow) []RosterRow
		targetErr error
	}{
		{
			name:   "valid roster",
			budget: 100,
			mutate: func(rows []RosterRow) []RosterRow { return rows },
		},
		{
			name:      "too few players",
			budget:    100,
			mutate:    func(rows []RosterRow) []RosterRow { return rows[:8] },
			targetErr: ErrInvalidRosterSize,
		},
		{
			name:   "six starters",
			budget: 100,
			mutate: func(rows []RosterRow) []RosterRow {
				rows[7].IsStarter = true
				return rows
			},
			targetErr: ErrInvalidStarterCount,
		},
		{
			name:      "budget exceeded",
			budget:    89,
			mutate:    func(rows []RosterRow) []RosterRow { return rows },
			targetErr: ErrExceededBudget,
		},
		{
			name:   "duplicate player",
			budget: 100,
			mutate: func(rows []RosterRow) []RosterRow {
				rows[8].PlayerID = "p1"
				return rows
			},
			targetErr: ErrDuplicatePlayer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := tt.mutate(append([]RosterRow(nil), validRows...))

			err := ValidateRoster(rows, tt.budget, rules)
			if tt.targetErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected error %v, got %v", tt.targetErr, err)
			}
		})
	}
}

func TestValidateTradeLog_Cooldown(t *testing.T) {
	rules := DefaultRules()
	bought := time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)

	ok := []Transaction{
		{ID: "x1", BuyerTeamID: "t1", PlayerID: "p1", CreatedAt: bought},
		{ID: "x2", SellerTeamID: "t1", BuyerTeamID: "t2", PlayerID: "p1", CreatedAt: bought.Add(rules.ResaleCooldown)},
	}
	if err := ValidateTradeLog(ok, rules); err != nil {
		t.Fatalf("expected resale after cooldown to pass, got %v", err)
	}

	early := []Transaction{
		{ID: "x1", BuyerTeamID: "t1", PlayerID: "p1", CreatedAt: bought},
		{ID: "x2", SellerTeamID: "t1", BuyerTeamID: "t2", PlayerID: "p1", CreatedAt: bought.Add(6 * 24 * time.Hour)},
	}
	if err := ValidateTradeLog(early, rules); !errors.Is(err, ErrResaleCooldown) {
		t.Fatalf("expected ErrResaleCooldown, got %v", err)
	}

	untracked := []Transaction{{ID: "x1", SellerTeamID: "t9", BuyerTeamID: "t1", PlayerID: "p1", CreatedAt: bought}}
	if err := ValidateTradeLog(untracked, rules); err != nil {
		t.Fatalf("sale of an untracked pick must pass, got %v", err)
	}
}

func TestValidateDataset(t *testing.T) {
	rules := DefaultRules()
	fullRoster := func(teamID string, price int64) []RosterRow {
		rows := make([]RosterRow, 0, rules.RosterSize)
		for i := 0; i < rules.RosterSize; i++ {
			rows = append(rows, RosterRow{
				TeamID:        teamID,
				PlayerID:      fmt.Sprintf("%s-p%d", teamID, i+1),
				IsStarter:     i < rules.Starters,
				PurchasePrice: price,
			})
		}
		return rows
	}
	teams := []team.Team{
		{ID: "t1", OwnerUserID: "u1", Name: "Alpha", Budget: 100},
		{ID: "t2", OwnerUserID: "u2", Name: "Bravo", Budget: 100},
	}
	bought := time.Date(2024, 11, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		roster       []RosterRow
		transactions []Transaction
		targetErr    error
	}{
		{
			name:   "valid dataset",
			roster: append(fullRoster("t1", 10), fullRoster("t2", 10)...),
		},
		{
			name:      "over budget team",
			roster:    append(fullRoster("t1", 10), fullRoster("t2", 20)...),
			targetErr: ErrExceededBudget,
		},
		{
			name:      "team without roster",
			roster:    fullRoster("t1", 10),
			targetErr: ErrInvalidRosterSize,
		},
		{
			name:      "row of unknown team",
			roster:    append(append(fullRoster("t1", 10), fullRoster("t2", 10)...), RosterRow{TeamID: "ghost", PlayerID: "x"}),
			targetErr: ErrUnknownTeam,
		},
		{
			name:   "early resale in trade log",
			roster: append(fullRoster("t1", 10), fullRoster("t2", 10)...),
			transactions: []Transaction{
				{ID: "x1", BuyerTeamID: "t1", PlayerID: "p1", CreatedAt: bought},
				{ID: "x2", SellerTeamID: "t1", BuyerTeamID: "t2", PlayerID: "p1", CreatedAt: bought.Add(time.Hour)},
			},
			targetErr: ErrResaleCooldown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDataset(teams, tt.roster, tt.transactions, rules)
			if tt.targetErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.targetErr) {
				t.Fatalf("expected %v, got %v", tt.targetErr, err)
			}
		})
	}
}
