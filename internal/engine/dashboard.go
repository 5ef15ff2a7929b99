package engine

import (
	"context"
	"time"

	"execedge/internal/storage"
)

// Dashboard is the read-only view shared by the CLI, the API and the board.
type Dashboard struct {
	Today        time.Time
	Snapshot     storage.Snapshot
	Habits       []HabitStatus
	Achievements []AchievementProgress
	Challenges   []ChallengeProgress
}

// UnlockedCount is the number of achievements currently held.
func (d *Dashboard) UnlockedCount() int {
	n := 0
	for _, a := range d.Achievements {
		if a.Unlocked {
			n++
		}
	}
	return n
}

// Dashboard evaluates everything for userID without writing. Stored unlocks
// stay unlocked even if the rule no longer holds.
func (s *Service) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	st, err := s.loadState(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	today := s.Today()
	snap := BuildSnapshot(userID, st.events, st.snapshot, today)
	statuses := HabitStatuses(st.habits, st.subs, st.events, today)

	known := st.knownUnlocks()
	achievements := EvaluateAchievements(s.catalog.Achievements, statuses, snap)
	for i := range achievements {
		a := &achievements[i]
		if u, ok := known[a.Definition.ID]; ok {
			at := u.UnlockedAt
			a.Unlocked = true
			a.UnlockedAt = &at
			a.Progress = a.Definition.Requirement
		}
	}

	return &Dashboard{
		Today:        today,
		Snapshot:     snap,
		Habits:       statuses,
		Achievements: achievements,
		Challenges:   EvaluateChallenges(s.catalog.Challenges, statuses, snap, st.challengeStates(), s.now().UTC()),
	}, nil
}
