// Package dayobs handles the 8-digit YYYYMMDD day-obs strings the
// nightly digest API keys its windows by. All arithmetic is pinned to
// UTC midnight so a string survives a round trip through time.Time
// regardless of the host timezone.
package dayobs

import (
	"fmt"
	"time"
)

// Layout is the wire form of a day-obs date.
const Layout = "20060102"

// Format renders the UTC calendar date of t as YYYYMMDD.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse interprets an 8-digit day-obs string as UTC midnight.
func Parse(s string) (time.Time, error) {
	if len(s) != 8 {
		return time.Time{}, fmt.Errorf("day-obs %q: want 8 digits", s)
	}
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("day-obs %q: %w", s, err)
	}
	return t, nil
}

// Offset returns t advanced (or retreated) by whole calendar days in UTC.
// The input is never modified.
func Offset(t time.Time, days int) time.Time {
	return t.UTC().AddDate(0, 0, days)
}

// IsNextDay reports whether end is exactly one day after start, i.e. the
// window [start, end) is a canonical single-day bucket.
func IsNextDay(start, end string) bool {
	t, err := Parse(start)
	if err != nil {
		return false
	}
	return Format(Offset(t, 1)) == end
}

// Today formats the current UTC date shifted by offsetDays.
func Today(offsetDays int) string {
	return Format(Offset(time.Now(), offsetDays))
}
