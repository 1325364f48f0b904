package ranking

import (
	"sort"
	"time"

	"github.com/riskibarqy/fantasy-hoops/internal/domain/calendar"
	"github.com/riskibarqy/fantasy-hoops/internal/domain/gamelog"
)

// Aggregate sums the games played inside [purchaseDate, saleDate) per week.
// Both bounds are compared by calendar day: the purchase day counts for the
// buyer, the sale day does not count for the seller. Weeks come back in
// ascending order and only non-empty buckets are returned.
func Aggregate(entries []gamelog.Entry, purchaseDate time.Time, saleDate *time.Time, seasonStart time.Time) []WeeklyPoints {
	from := calendar.DayOf(purchaseDate)
	var until time.Time
	if saleDate != nil {
		until = calendar.DayOf(*saleDate)
	}

	buckets := make(map[int]float64)
	for _, entry := range entries {
		day := calendar.DayOf(entry.Date)
		if day.Before(from) {
			continue
		}
		if saleDate != nil && !day.Before(until) {
			continue
		}
		buckets[calendar.WeekOf(day, seasonStart)] += entry.Points
	}

	out := make([]WeeklyPoints, 0, len(buckets))
	for week, points := range buckets {
		r := calendar.DatesOfWeek(week, seasonStart)
		out = append(out, WeeklyPoints{
			Week:      week,
			WeekStart: r.Start,
			WeekEnd:   r.End,
			Points:    points,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out
}
