package httpapi

import (
	"strconv"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/ranking"
	"github.com/riskibarqy/fantasy-hoops/internal/usecase"
)

type rankingBoardDTO struct {
	RunID        string           `json:"runId,omitempty"`
	CalculatedAt string           `json:"calculatedAt"`
	FromCache    bool             `json:"fromCache"`
	CurrentWeek  int              `json:"currentWeek"`
	Rankings     []teamRankingDTO `json:"rankings"`
	Diagnostics  diagnosticsDTO   `json:"diagnostics"`
}

type teamRankingDTO struct {
	Rank            int                `json:"rank"`
	UserID          string             `json:"userId"`
	TeamID          string             `json:"teamId"`
	TeamName        string             `json:"teamName"`
	TotalPoints     float64            `json:"totalPoints"`
	WeeklyBreakdown map[string]float64 `json:"weeklyBreakdown"`
}

type teamStandingDTO struct {
	teamRankingDTO
	Weeks        []weekPointsDTO `json:"weeks"`
	CalculatedAt string          `json:"calculatedAt"`
	FromCache    bool            `json:"fromCache"`
}

type weekPointsDTO struct {
	Week   int     `json:"week"`
	Start  string  `json:"start"`
	End    string  `json:"end"`
	Points float64 `json:"points"`
}

type weekRangeDTO struct {
	Week    int    `json:"week"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Current bool   `json:"current"`
}

type diagnosticsDTO struct {
	Complete             bool     `json:"complete"`
	SkippedPeriods       int      `json:"skippedPeriods"`
	UntrackedSales       int      `json:"untrackedSales"`
	UnclaimedOpenPeriods int      `json:"unclaimedOpenPeriods"`
	FailedPlayers        []string `json:"failedPlayers"`
	InvalidDates         int      `json:"invalidDates"`
	OwnershipUnavailable bool     `json:"ownershipUnavailable"`
}

func boardToDTO(board ranking.Board, currentWeek int) rankingBoardDTO {
	items := make([]teamRankingDTO, 0, len(board.Rankings))
	for _, row := range board.Rankings {
		items = append(items, teamRankingToDTO(row))
	}

	return rankingBoardDTO{
		RunID:        board.RunID,
		CalculatedAt: board.CalculatedAt.UTC().Format(time.RFC3339),
		FromCache:    board.FromCache,
		CurrentWeek:  currentWeek,
		Rankings:     items,
		Diagnostics:  diagnosticsToDTO(board.Diagnostics),
	}
}

func teamRankingToDTO(row ranking.TeamRanking) teamRankingDTO {
	breakdown := make(map[string]float64, len(row.WeeklyBreakdown))
	for week, points := range row.WeeklyBreakdown {
		breakdown[strconv.Itoa(week)] = points
	}

	return teamRankingDTO{
		Rank:            row.Rank,
		UserID:          row.UserID,
		TeamID:          row.TeamID,
		TeamName:        row.TeamName,
		TotalPoints:     row.TotalPoints,
		WeeklyBreakdown: breakdown,
	}
}

func standingToDTO(standing usecase.TeamStanding) teamStandingDTO {
	weeks := make([]weekPointsDTO, 0, len(standing.Weeks))
	for _, week := range standing.Weeks {
		weeks = append(weeks, weekPointsDTO{
			Week:   week.Week,
			Start:  formatWeekBound(week.WeekStart),
			End:    formatWeekBound(week.WeekEnd),
			Points: week.Points,
		})
	}

	return teamStandingDTO{
		teamRankingDTO: teamRankingToDTO(standing.Ranking),
		Weeks:          weeks,
		CalculatedAt:   standing.CalculatedAt.UTC().Format(time.RFC3339),
		FromCache:      standing.FromCache,
	}
}

func diagnosticsToDTO(d ranking.Diagnostics) diagnosticsDTO {
	failed := d.FailedPlayers
	if failed == nil {
		failed = []string{}
	}

	return diagnosticsDTO{
		Complete:             d.Complete(),
		SkippedPeriods:       d.SkippedPeriods,
		UntrackedSales:       d.UntrackedSales,
		UnclaimedOpenPeriods: d.UnclaimedOpenPeriods,
		FailedPlayers:        failed,
		InvalidDates:         d.InvalidDates,
		OwnershipUnavailable: d.OwnershipUnavailable,
	}
}

// formatWeekBound keeps millisecond precision so a week's end reads 23:59:59.999.
func formatWeekBound(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
