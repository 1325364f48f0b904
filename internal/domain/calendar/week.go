package calendar

import "time"

const daysPerWeek = 7

// Range is an inclusive Monday..Sunday span.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// SeasonMonday returns the Monday on or before the season start day. Week 1
// begins on that Monday so every week bucket runs Monday..Sunday.
func SeasonMonday(seasonStart time.Time) time.Time {
	day := DayOf(seasonStart)
	offset := (int(day.Weekday()) + 6) % daysPerWeek
	return day.AddDate(0, 0, -offset)
}

// WeekOf maps date to its 1-based week index within the season. Dates before
// the first week are clamped to week 1.
func WeekOf(date, seasonStart time.Time) int {
	days := DaysBetween(SeasonMonday(seasonStart), date)
	if days < 0 {
		return 1
	}
	return days/daysPerWeek + 1
}

// DatesOfWeek returns the Monday 00:00:00.000 .. Sunday 23:59:59.999 range of
// the given week. Weeks below 1 are treated as week 1.
func DatesOfWeek(week int, seasonStart time.Time) Range {
	if week < 1 {
		week = 1
	}
	start := SeasonMonday(seasonStart).AddDate(0, 0, (week-1)*daysPerWeek)
	end := start.AddDate(0, 0, daysPerWeek).Add(-time.Millisecond)
	return Range{Start: start, End: end}
}
