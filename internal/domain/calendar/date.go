package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnparsableDate is returned alongside Sentinel when no known layout matches.
var ErrUnparsableDate = errors.New("unparsable date")

// Sentinel is the far-past day substituted for dates that cannot be parsed.
// It sorts before every real game and therefore falls outside ownership windows.
var Sentinel = time.Unix(0, 0).UTC()

var dayLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"Jan 02, 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"20060102",
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// NormalizeDate parses a provider date into a UTC midnight day.
// On failure it returns Sentinel together with ErrUnparsableDate; the returned
// time is always orderable.
func NormalizeDate(raw string) (time.Time, error) {
	value := strings.Trim(strings.TrimSpace(raw), `"'`)
	if value == "" {
		return Sentinel, fmt.Errorf("%w: empty value", ErrUnparsableDate)
	}
	value = titleMonth(value)

	for _, layout := range dayLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return DayOf(parsed), nil
		}
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return DayOf(parsed), nil
		}
	}

	return Sentinel, fmt.Errorf("%w: %q", ErrUnparsableDate, raw)
}

// DayOf truncates t to midnight UTC of the calendar date t has in its own location.
func DayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from `from` to `to` after both are
// reduced to their calendar day.
func DaysBetween(from, to time.Time) int {
	return int(DayOf(to).Sub(DayOf(from)).Hours() / 24)
}

// titleMonth rewrites upper-case month abbreviations ("OCT 22, 2025") so the
// English month layouts accept them.
func titleMonth(value string) string {
	if len(value) < 3 {
		return value
	}
	head := value[:3]
	if strings.ToUpper(head) != head || strings.ToLower(head) == head {
		return value
	}
	end := strings.IndexAny(value, " ,")
	if end < 0 {
		return value
	}
	word := value[:end]
	return word[:1] + strings.ToLower(word[1:]) + value[end:]
}
