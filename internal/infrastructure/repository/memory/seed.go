package memory

import (
	"fmt"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/ownership"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/team"
)

const (
	SeedSeason = "2025-26"

	TeamIDBaselineBombers = "team-baseline-bombers"
	TeamIDPaintPatrol     = "team-paint-patrol"
	TeamIDFastBreakers    = "team-fast-breakers"
	TeamIDBenchMob        = "team-bench-mob"

	seedBudget = 100_000
)

// SeedSeasonStart is opening night of the seeded season.
var SeedSeasonStart = time.Date(2025, time.October, 21, 0, 0, 0, 0, time.UTC)

type seedPlayer struct {
	id      string
	name    string
	price   int64
	starter bool
}

var seedRosters = map[string][]seedPlayer{
	TeamIDBaselineBombers: {
		{"203999", "Nikola Jokic", 16_000, true},
		{"1628983", "Shai Gilgeous-Alexander", 15_000, true},
		{"1630162", "Anthony Edwards", 13_000, true},
		{"1629027", "Trae Young", 11_000, true},
		{"1628384", "OG Anunoby", 7_000, true},
		{"1627742", "Brandon Ingram", 8_000, false},
		{"1630596", "Evan Mobley", 9_000, false},
		{"1629636", "Darius Garland", 8_000, false},
		{"1628398", "Kyle Kuzma", 5_000, false},
	},
	TeamIDPaintPatrol: {
		{"1641705", "Victor Wembanyama", 15_000, true},
		{"203507", "Giannis Antetokounmpo", 16_000, true},
		{"1628369", "Jayson Tatum", 14_000, true},
		{"1630169", "Tyrese Haliburton", 11_000, true},
		{"1629029", "Luka Doncic", 14_000, true},
		{"1630178", "Tyrese Maxey", 10_000, false},
		{"1628973", "Jalen Brunson", 12_000, false},
		{"203944", "Julius Randle", 7_000, false},
		{"1631094", "Paolo Banchero", 1_000, false},
	},
	TeamIDFastBreakers: {
		{"201939", "Stephen Curry", 14_000, true},
		{"1626164", "Devin Booker", 12_000, true},
		{"1628378", "Donovan Mitchell", 12_000, true},
		{"1630595", "Cade Cunningham", 11_000, true},
		{"1628389", "Bam Adebayo", 9_000, true},
		{"1631096", "Chet Holmgren", 9_000, false},
		{"1630224", "Jalen Green", 8_000, false},
		{"1630532", "Franz Wagner", 9_000, false},
		{"1627832", "Fred VanVleet", 4_000, false},
	},
	TeamIDBenchMob: {
		{"2544", "LeBron James", 13_000, true},
		{"201142", "Kevin Durant", 13_000, true},
		{"203081", "Damian Lillard", 11_000, true},
		{"1627759", "Jaylen Brown", 11_000, true},
		{"202681", "Kyrie Irving", 11_000, true},
		{"1628991", "Jaren Jackson Jr.", 9_000, false},
		{"1629630", "Ja Morant", 10_000, false},
		{"1629628", "RJ Barrett", 6_000, false},
		{"1630567", "Scottie Barnes", 10_000, false},
	},
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: TeamIDBaselineBombers, OwnerUserID: "user-ayu", Name: "Baseline Bombers", Budget: seedBudget},
		{ID: TeamIDPaintPatrol, OwnerUserID: "user-bima", Name: "Paint Patrol", Budget: seedBudget},
		{ID: TeamIDFastBreakers, OwnerUserID: "user-citra", Name: "Fast Breakers", Budget: seedBudget},
		{ID: TeamIDBenchMob, OwnerUserID: "user-dimas", Name: "Bench Mob", Budget: seedBudget},
	}
}

// SeedTransactions is a trade log where Shai Gilgeous-Alexander moves from
// the Fast Breakers through Paint Patrol to the Bombers. Draft picks were
// never recorded as purchases, so first-hand sales are untracked.
func SeedTransactions() []ownership.Transaction {
	return []ownership.Transaction{
		{
			ID:           "tx-0001",
			SellerTeamID: TeamIDFastBreakers,
			BuyerTeamID:  TeamIDPaintPatrol,
			PlayerID:     "1628983",
			PlayerName:   "Shai Gilgeous-Alexander",
			Price:        15_000,
			CreatedAt:    time.Date(2025, time.October, 28, 14, 0, 0, 0, time.UTC),
		},
		{
			ID:           "tx-0002",
			SellerTeamID: TeamIDPaintPatrol,
			BuyerTeamID:  TeamIDFastBreakers,
			PlayerID:     "1627832",
			PlayerName:   "Fred VanVleet",
			Price:        4_000,
			CreatedAt:    time.Date(2025, time.October, 28, 14, 5, 0, 0, time.UTC),
		},
		{
			ID:           "tx-0003",
			SellerTeamID: TeamIDPaintPatrol,
			BuyerTeamID:  TeamIDBaselineBombers,
			PlayerID:     "1628983",
			PlayerName:   "Shai Gilgeous-Alexander",
			Price:        15_000,
			CreatedAt:    time.Date(2025, time.November, 10, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:           "tx-0004",
			SellerTeamID: TeamIDBaselineBombers,
			BuyerTeamID:  TeamIDPaintPatrol,
			PlayerID:     "1631094",
			PlayerName:   "Paolo Banchero",
			Price:        1_000,
			CreatedAt:    time.Date(2025, time.November, 10, 9, 35, 0, 0, time.UTC),
		},
	}
}

// SeedRoster returns the current roster snapshot. Traded players carry the
// time of their last trade; everyone else was drafted before opening night.
func SeedRoster() []ownership.RosterRow {
	lastTrade := make(map[string]time.Time)
	for _, tx := range SeedTransactions() {
		lastTrade[tx.BuyerTeamID+"/"+tx.PlayerID] = tx.CreatedAt
	}
	draftedAt := SeedSeasonStart.Add(-48 * time.Hour)

	var out []ownership.RosterRow
	for _, item := range SeedTeams() {
		for _, p := range seedRosters[item.ID] {
			purchasedAt, traded := lastTrade[item.ID+"/"+p.id]
			if !traded {
				purchasedAt = draftedAt
			}
			out = append(out, ownership.RosterRow{
				TeamID:        item.ID,
				PlayerID:      p.id,
				PlayerName:    p.name,
				IsStarter:     p.starter,
				PurchasePrice: p.price,
				PurchasedAt:   purchasedAt,
				CreatedAt:     purchasedAt,
			})
		}
	}
	return out
}

// ValidateSeed checks the seeded teams, rosters and trade log against the
// default roster rules.
func ValidateSeed() error {
	if err := ownership.ValidateDataset(SeedTeams(), SeedRoster(), SeedTransactions(), ownership.DefaultRules()); err != nil {
		return fmt.Errorf("seed dataset: %w", err)
	}
	return nil
}
