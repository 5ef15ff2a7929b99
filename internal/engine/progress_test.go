package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"execedge/internal/storage"
)

func completion(habitID, date string, points int) storage.Completion {
	return storage.Completion{ID: habitID + "-" + date, UserID: "u1", HabitID: habitID, Date: day(date), PointsEarned: points}
}

func TestBuildSnapshot(t *testing.T) {
	today := day("2026-03-10")
	events := []storage.Completion{
		completion("h1", "2026-03-10", 3),
		completion("h1", "2026-03-09", 3),
		completion("h2", "2026-03-09", 5),
		completion("h2", "2026-03-08", 5),
		completion("h2", "2026-03-07", 5),
		completion("h1", "2026-03-03", 3), // outside the week
		completion("h1", "2026-02-20", 3),
	}

	snap := BuildSnapshot("u1", events, nil, today)
	assert.Equal(t, "u1", snap.UserID)
	assert.Equal(t, 27, snap.TotalPoints)
	assert.Equal(t, 3, snap.CurrentStreak) // h2 via grace day
	assert.Equal(t, 3, snap.LongestStreak)
	assert.Equal(t, 1, snap.CompletedToday)
	assert.Equal(t, 5, snap.CompletedThisWeek)
	assert.Equal(t, today, snap.AsOf)
}

func TestBuildSnapshot_LongestNeverDecreases(t *testing.T) {
	today := day("2026-03-10")
	prev := &storage.Snapshot{UserID: "u1", LongestStreak: 12}

	snap := BuildSnapshot("u1", nil, prev, today)
	assert.Equal(t, 0, snap.CurrentStreak)
	assert.Equal(t, 12, snap.LongestStreak)
	assert.LessOrEqual(t, snap.CurrentStreak, snap.LongestStreak)
}

func TestBuildSnapshot_Idempotent(t *testing.T) {
	today := day("2026-03-10")
	events := []storage.Completion{
		completion("h1", "2026-03-10", 3),
		completion("h1", "2026-03-09", 3),
	}
	first := BuildSnapshot("u1", events, nil, today)
	second := BuildSnapshot("u1", events, &first, today)
	assert.Equal(t, first, second)
}

func TestHabitStatuses(t *testing.T) {
	today := day("2026-03-10")
	habits := []storage.HabitDefinition{
		{ID: "h1", Category: "mindset", Points: 3, Active: true},
		{ID: "h2", Category: "strategic", Points: 5, Active: true},
		{ID: "h3", Category: "mindset", Points: 1, Active: false},
		{ID: "h4", Category: "leadership", Points: 2, Active: true},
	}
	subs := []storage.Subscription{
		{UserID: "u1", HabitID: "h1", Active: true},
		{UserID: "u1", HabitID: "h2", Active: true},
		{UserID: "u1", HabitID: "h3", Active: true},
		{UserID: "u1", HabitID: "h4", Active: false},
	}
	events := []storage.Completion{
		completion("h1", "2026-03-10", 3),
		completion("h1", "2026-03-09", 3),
		completion("h2", "2026-03-02", 5),
	}

	got := HabitStatuses(habits, subs, events, today)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "h1", got[0].Habit.ID)
		assert.True(t, got[0].CompletedToday)
		assert.Equal(t, 2, got[0].Streak)
		assert.Equal(t, 2, got[0].WeeklyCount)
		assert.Equal(t, day("2026-03-10"), *got[0].LastCompleted)

		assert.Equal(t, "h2", got[1].Habit.ID)
		assert.False(t, got[1].CompletedToday)
		assert.Equal(t, 0, got[1].Streak)
		assert.Equal(t, 0, got[1].WeeklyCount)
	}
}
