package storage

import "time"

// DateLayout is the calendar-day format used for completion dates.
const DateLayout = "2006-01-02"

type User struct {
	ID        string
	Name      string
	Token     string
	CreatedAt time.Time
}

// HabitDefinition is operator-maintained reference data.
type HabitDefinition struct {
	ID          string
	Title       string
	Description string
	Category    string
	Points      int
	TargetRoles []string
	Frequency   string
	Active      bool
}

type Subscription struct {
	UserID    string
	HabitID   string
	Active    bool
	StartDate time.Time
}

// Completion is a HabitCompletionEvent. Date is a calendar day at UTC midnight.
type Completion struct {
	ID           string
	UserID       string
	HabitID      string
	Date         time.Time
	PointsEarned int
	Note         *string
	CreatedAt    time.Time
}

// Snapshot is the recomputable per-user progress aggregate.
type Snapshot struct {
	UserID            string    `json:"user_id"`
	TotalPoints       int       `json:"total_points"`
	CurrentStreak     int       `json:"current_streak"`
	LongestStreak     int       `json:"longest_streak"`
	CompletedToday    int       `json:"habits_completed_today"`
	CompletedThisWeek int       `json:"habits_completed_this_week"`
	AsOf              time.Time `json:"as_of"`
}

type AchievementUnlock struct {
	UserID        string
	AchievementID string
	UnlockedAt    time.Time
}

type ChallengeState struct {
	UserID      string
	ChallengeID string
	Status      string
	Progress    int
	ResolvedAt  *time.Time
	UpdatedAt   time.Time
}
