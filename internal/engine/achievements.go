package engine

import (
	"execedge/internal/catalog"
	"execedge/internal/storage"
)

// metric returns the measured value for a rule type and whether it meets
// requirement. Streak, milestone and consistency rules share this between
// achievements and challenges.
func metric(typ catalog.AchievementType, category string, requirement int, habits []HabitStatus, snap storage.Snapshot) (int, bool) {
	switch typ {
	case catalog.TypeStreak:
		best := 0
		for _, h := range habits {
			if h.Streak > best {
				best = h.Streak
			}
		}
		return best, best >= requirement

	case catalog.TypeCompletion:
		if len(habits) == 0 {
			return 0, false
		}
		for _, h := range habits {
			if !h.CompletedToday {
				return 0, false
			}
		}
		return 1, true

	case catalog.TypeMilestone:
		total := 0
		for _, h := range habits {
			if category == "" || category == catalog.CategoryOverall || h.Habit.Category == category {
				total += h.WeeklyCount
			}
		}
		return total, total >= requirement

	case catalog.TypeConsistency:
		if len(habits) == 0 {
			return 0, false
		}
		done := 0
		for _, h := range habits {
			if h.CompletedToday {
				done++
			}
		}
		// at least 80% of today's habits
		if done*5 >= len(habits)*4 {
			return requirement, true
		}
		return 0, false
	}
	return 0, false
}

func clampProgress(v, max int) int {
	if v > max {
		return max
	}
	if v < 0 {
		return 0
	}
	return v
}

// EvaluateAchievements reports progress for every definition against the
// current habit statuses. It has no side effects; callers decide what a new
// unlock means via NewlyUnlocked.
func EvaluateAchievements(defs []catalog.AchievementDefinition, habits []HabitStatus, snap storage.Snapshot) []AchievementProgress {
	out := make([]AchievementProgress, 0, len(defs))
	for _, d := range defs {
		v, met := metric(d.Type, d.Category, d.Requirement, habits, snap)
		out = append(out, AchievementProgress{
			Definition: d,
			Unlocked:   met,
			Progress:   clampProgress(v, d.Requirement),
		})
	}
	return out
}

// NewlyUnlocked filters results down to unlocks not present in known. Each
// achievement ID appears at most once.
func NewlyUnlocked(results []AchievementProgress, known map[string]bool) []AchievementProgress {
	var out []AchievementProgress
	seen := make(map[string]bool)
	for _, r := range results {
		id := r.Definition.ID
		if !r.Unlocked || known[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, r)
	}
	return out
}
