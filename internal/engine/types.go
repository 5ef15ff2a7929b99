package engine

import (
	"time"

	"execedge/internal/catalog"
	"execedge/internal/storage"
)

type ToggleAction string

const (
	ActionCompleted ToggleAction = "completed"
	ActionRemoved   ToggleAction = "removed"
)

type ChallengeStatus string

const (
	ChallengeActive    ChallengeStatus = "active"
	ChallengeCompleted ChallengeStatus = "completed"
	ChallengeFailed    ChallengeStatus = "failed"
)

// IsTerminal reports whether no further transitions are possible.
func (s ChallengeStatus) IsTerminal() bool {
	return s == ChallengeCompleted || s == ChallengeFailed
}

// HabitStatus is the per-habit view the evaluators work from.
type HabitStatus struct {
	Habit          storage.HabitDefinition
	Streak         int
	CompletedToday bool
	WeeklyCount    int
	LastCompleted  *time.Time
}

type AchievementProgress struct {
	Definition catalog.AchievementDefinition
	Unlocked   bool
	Progress   int
	UnlockedAt *time.Time
}

// Percent is progress towards the requirement, clamped to [0, 100].
func (p AchievementProgress) Percent() float64 {
	if p.Definition.Requirement <= 0 {
		return 0
	}
	r := float64(p.Progress) / float64(p.Definition.Requirement)
	if r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}
	return r * 100
}

type ChallengeProgress struct {
	Definition catalog.ChallengeDefinition
	Status     ChallengeStatus
	Progress   int
	ResolvedAt *time.Time
	Changed    bool
}
