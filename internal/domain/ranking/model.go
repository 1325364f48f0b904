package ranking

import (
	"sort"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/calendar"
)

// WeeklyPoints is the sum of in-window game points inside one calendar week.
type WeeklyPoints struct {
	Week      int
	WeekStart time.Time
	WeekEnd   time.Time
	Points    float64
}

// TeamRanking is one leaderboard row. TotalPoints always equals the sum of
// WeeklyBreakdown.
type TeamRanking struct {
	Rank            int
	UserID          string
	TeamID          string
	TeamName        string
	TotalPoints     float64
	WeeklyBreakdown map[int]float64
}

// Weeks returns the breakdown's week numbers in ascending order.
func (r TeamRanking) Weeks() []int {
	weeks := make([]int, 0, len(r.WeeklyBreakdown))
	for week := range r.WeeklyBreakdown {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)
	return weeks
}

func (r *TeamRanking) recomputeTotal() {
	var total float64
	for _, week := range r.Weeks() {
		total += r.WeeklyBreakdown[week]
	}
	r.TotalPoints = total
}

// Diagnostics tells a caller how complete a ranking is.
type Diagnostics struct {
	SkippedPeriods       int
	UntrackedSales       int
	UnclaimedOpenPeriods int
	FailedPlayers        []string
	InvalidDates         int
	OwnershipUnavailable bool
}

// Complete reports whether no data was dropped or degraded.
func (d Diagnostics) Complete() bool {
	return d.SkippedPeriods == 0 &&
		len(d.FailedPlayers) == 0 &&
		d.InvalidDates == 0 &&
		!d.OwnershipUnavailable
}

// Board is a full leaderboard as served to callers.
type Board struct {
	RunID        string
	Rankings     []TeamRanking
	Diagnostics  Diagnostics
	CalculatedAt time.Time
	FromCache    bool
}

// Find returns the ranking row of one team.
func (b Board) Find(teamID string) (TeamRanking, bool) {
	for _, item := range b.Rankings {
		if item.TeamID == teamID {
			return item, true
		}
	}
	return TeamRanking{}, false
}

// CacheEntry is one persisted ranking row keyed by (UserID, TeamID).
// CacheEntry is one stored row of a snapshot. Every entry of a snapshot
// carries the run id and diagnostics of the computation that produced it.
type CacheEntry struct {
	Ranking      TeamRanking
	CalculatedAt time.Time
	RunID        string
	Diagnostics  Diagnostics
}

func (e CacheEntry) Clone() CacheEntry {
	out := e
	out.Ranking = e.Ranking.Clone()
	out.Diagnostics = e.Diagnostics.Clone()
	return out
}

func (d Diagnostics) Clone() Diagnostics {
	out := d
	out.FailedPlayers = append([]string(nil), d.FailedPlayers...)
	return out
}

// Clone returns a copy that shares no maps with r.
func (r TeamRanking) Clone() TeamRanking {
	out := r
	out.WeeklyBreakdown = make(map[int]float64, len(r.WeeklyBreakdown))
	for week, points := range r.WeeklyBreakdown {
		out.WeeklyBreakdown[week] = points
	}
	return out
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	out := b
	out.Rankings = make([]TeamRanking, len(b.Rankings))
	for i, row := range b.Rankings {
		out.Rankings[i] = row.Clone()
	}
	out.Diagnostics = b.Diagnostics.Clone()
	return out
}

// Breakdown expands the weekly map into dated week rows ordered by week.
func (r TeamRanking) Breakdown(seasonStart time.Time) []WeeklyPoints {
	weeks := r.Weeks()
	out := make([]WeeklyPoints, 0, len(weeks))
	for _, week := range weeks {
		span := calendar.DatesOfWeek(week, seasonStart)
		out = append(out, WeeklyPoints{
			Week:      week,
			WeekStart: span.Start,
			WeekEnd:   span.End,
			Points:    r.WeeklyBreakdown[week],
		})
	}
	return out
}
