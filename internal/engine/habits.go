package engine

import (
	"time"

	"execedge/internal/storage"
)

// datesByHabit groups completion days per habit, skipping days after today.
func datesByHabit(events []storage.Completion, today time.Time) map[string][]time.Time {
	out := make(map[string][]time.Time)
	for _, e := range events {
		d := Day(e.Date, time.UTC)
		if d.After(today) {
			continue
		}
		out[e.HabitID] = append(out[e.HabitID], d)
	}
	return out
}

// HabitStatuses builds the status of every active habit the user holds an
// active subscription to, in the order of habits.
func HabitStatuses(habits []storage.HabitDefinition, subs []storage.Subscription, events []storage.Completion, today time.Time) []HabitStatus {
	subscribed := make(map[string]bool, len(subs))
	for _, s := range subs {
		if s.Active {
			subscribed[s.HabitID] = true
		}
	}
	dates := datesByHabit(events, today)

	var out []HabitStatus
	for _, h := range habits {
		if !h.Active || !subscribed[h.ID] {
			continue
		}
		st := HabitStatus{Habit: h}
		days := dates[h.ID]
		st.Streak = CurrentStreak(days, today)
		for _, d := range uniqueDays(days) {
			diff := DaysBetween(d, today)
			if diff == 0 {
				st.CompletedToday = true
			}
			if diff >= 0 && diff < 7 {
				st.WeeklyCount++
			}
			if st.LastCompleted == nil {
				last := d
				st.LastCompleted = &last
			}
		}
		out = append(out, st)
	}
	return out
}
