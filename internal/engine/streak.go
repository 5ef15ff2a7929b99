package engine

import (
	"sort"
	"time"
)

// uniqueDays returns the distinct days in dates, most recent first.
func uniqueDays(dates []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(dates))
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = Day(d, time.UTC)
		if seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out
}

// CurrentStreak counts consecutive completed days ending today. A run that
// ends yesterday still counts while today is open: the first missing day may
// only be today itself. Days after today are ignored.
func CurrentStreak(dates []time.Time, today time.Time) int {
	streak, offset := 0, 0
	for _, d := range uniqueDays(dates) {
		diff := DaysBetween(d, today)
		if diff < 0 {
			continue
		}
		switch {
		case diff == streak+offset:
			streak++
		case streak == 0 && offset == 0 && diff == 1:
			offset = 1
			streak++
		default:
			return streak
		}
	}
	return streak
}

// LongestRun is the longest run of consecutive days in dates up to and
// including today.
func LongestRun(dates []time.Time, today time.Time) int {
	days := uniqueDays(dates)
	best, run := 0, 0
	var prev time.Time
	for _, d := range days {
		if d.After(today) {
			continue
		}
		if run > 0 && DaysBetween(d, prev) == 1 {
			run++
		} else {
			run = 1
		}
		prev = d
		if run > best {
			best = run
		}
	}
	return best
}

// NextLongest is the longest streak after a recompute: it never decreases and
// never trails the current or historical run.
func NextLongest(prev, current, historical int) int {
	return max(prev, current, historical)
}
