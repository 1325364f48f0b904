package gamelog

import (
	"errors"
	"sort"
	"time"
)

// ErrPlayerNotFound is returned by providers that know nothing about a player.
var ErrPlayerNotFound = errors.New("player not found at provider")

// RawEntry is one provider row before date normalization.
type RawEntry struct {
	Date   string
	Points float64
}

// Entry is one played game with its day normalized to midnight UTC.
type Entry struct {
	Date    time.Time
	RawDate string
	Points  float64
}

// Log is a player's season game log, ordered by day.
type Log struct {
	PlayerID     string
	Season       string
	Entries      []Entry
	InvalidDates int
}

// TotalPoints sums every entry, including those with sentinel dates.
func (l Log) TotalPoints() float64 {
	var total float64
	for _, entry := range l.Entries {
		total += entry.Points
	}
	return total
}

// SortEntries orders entries by day, keeping provider order for equal days.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
}
