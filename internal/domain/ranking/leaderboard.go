package ranking

import (
	"sort"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/gamelog"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/ownership"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/team"
)

// Calculate builds the leaderboard. Every team gets exactly one row, even
// without ownership history. Periods of teams missing from the list are
// ignored. Players absent from logs contribute nothing.
func Calculate(teams []team.Team, periods []ownership.Period, logs map[string]gamelog.Log, seasonStart time.Time) []TeamRanking {
	rows := Empty(teams)
	index := make(map[string]int, len(rows))
	for i, row := range rows {
		index[row.TeamID] = i
	}

	ordered := append([]ownership.Period(nil), periods...)
	ownership.SortPeriods(ordered)

	for _, period := range ordered {
		i, ok := index[period.TeamID]
		if !ok {
			continue
		}
		log, ok := logs[period.PlayerID]
		if !ok {
			continue
		}
		for _, weekly := range Aggregate(log.Entries, period.PurchaseDate, period.SaleDate, seasonStart) {
			rows[i].WeeklyBreakdown[weekly.Week] += weekly.Points
		}
	}

	for i := range rows {
		rows[i].recomputeTotal()
	}
	Sort(rows)
	return rows
}

// Empty returns one zero-point row per distinct team, in input order.
func Empty(teams []team.Team) []TeamRanking {
	seen := make(map[string]struct{}, len(teams))
	rows := make([]TeamRanking, 0, len(teams))
	for _, item := range teams {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		rows = append(rows, TeamRanking{
			UserID:          item.OwnerUserID,
			TeamID:          item.ID,
			TeamName:        item.Name,
			WeeklyBreakdown: make(map[int]float64),
		})
	}
	return rows
}

// Sort orders by total points descending, then team name and team id
// ascending, and assigns 1-based ranks.
func Sort(rows []TeamRanking) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.TeamName != b.TeamName {
			return a.TeamName < b.TeamName
		}
		return a.TeamID < b.TeamID
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}
