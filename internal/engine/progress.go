package engine

import (
	"time"

	"execedge/internal/storage"
)

// BuildSnapshot derives the progress aggregate from a user's full completion
// log. The result depends only on events, prev.LongestStreak and today, so
// rebuilding from the same log always yields the same snapshot.
//
// CurrentStreak is the best per-habit streak. LongestStreak never drops below
// the previous value or any run still visible in the log.
func BuildSnapshot(userID string, events []storage.Completion, prev *storage.Snapshot, today time.Time) storage.Snapshot {
	snap := storage.Snapshot{UserID: userID, AsOf: today}

	for _, e := range events {
		snap.TotalPoints += e.PointsEarned
		diff := DaysBetween(Day(e.Date, time.UTC), today)
		if diff == 0 {
			snap.CompletedToday++
		}
		if diff >= 0 && diff < 7 {
			snap.CompletedThisWeek++
		}
	}

	longest := 0
	for _, days := range datesByHabit(events, today) {
		if s := CurrentStreak(days, today); s > snap.CurrentStreak {
			snap.CurrentStreak = s
		}
		if r := LongestRun(days, today); r > longest {
			longest = r
		}
	}
	prevLongest := 0
	if prev != nil {
		prevLongest = prev.LongestStreak
	}
	snap.LongestStreak = NextLongest(prevLongest, snap.CurrentStreak, longest)
	return snap
}
