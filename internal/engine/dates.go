package engine

import (
	"time"

	"execedge/internal/storage"
)

// Day returns the calendar day of t in loc as UTC midnight. All streak and
// window arithmetic works on these values.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween is the number of whole days from earlier to later. Both must be
// values returned by Day.
func DaysBetween(earlier, later time.Time) int {
	return int(later.Sub(earlier) / (24 * time.Hour))
}

func FormatDay(t time.Time) string {
	return t.Format(storage.DateLayout)
}
