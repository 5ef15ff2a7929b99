package api

import (
	"time"

	"execedge/internal/engine"
	"execedge/internal/storage"
)

type toggleRequest struct {
	HabitID        string  `json:"habit_id" binding:"required"`
	Notes          *string `json:"notes"`
	CompletionDate *string `json:"completion_date"`
}

type toggleResponse struct {
	Action             engine.ToggleAction `json:"action"`
	HabitID            string              `json:"habit_id"`
	CompletionDate     string              `json:"completion_date"`
	PointsEarned       *int                `json:"points_earned,omitempty"`
	PointsLost         *int                `json:"points_lost,omitempty"`
	CurrentStreak      int                 `json:"current_streak"`
	TotalPoints        int                 `json:"total_points"`
	AchievementsEarned []string            `json:"achievements_earned"`
	Snapshot           snapshotView        `json:"snapshot"`
	Challenges         []challengeView     `json:"challenges,omitempty"`
}

type snapshotView struct {
	TotalPoints       int    `json:"total_points"`
	CurrentStreak     int    `json:"current_streak"`
	LongestStreak     int    `json:"longest_streak"`
	CompletedToday    int    `json:"habits_completed_today"`
	CompletedThisWeek int    `json:"habits_completed_this_week"`
	AsOf              string `json:"as_of"`
}

type habitView struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Points      int      `json:"points"`
	TargetRoles []string `json:"target_roles,omitempty"`
	Frequency   string   `json:"frequency"`
	Subscribed  bool     `json:"subscribed"`
	Since       string   `json:"since,omitempty"`
}

type achievementView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	Type        string     `json:"type"`
	Tier        string     `json:"tier"`
	Points      int        `json:"points"`
	Requirement int        `json:"requirement"`
	Progress    int        `json:"progress"`
	Percent     float64    `json:"percent"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty"`
}

type challengeView struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Type       string     `json:"type"`
	Target     int        `json:"target"`
	Progress   int        `json:"progress"`
	Status     string     `json:"status"`
	Deadline   time.Time  `json:"deadline"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

func toSnapshotView(s storage.Snapshot) snapshotView {
	return snapshotView{
		TotalPoints:       s.TotalPoints,
		CurrentStreak:     s.CurrentStreak,
		LongestStreak:     s.LongestStreak,
		CompletedToday:    s.CompletedToday,
		CompletedThisWeek: s.CompletedThisWeek,
		AsOf:              engine.FormatDay(s.AsOf),
	}
}

func toAchievementView(a engine.AchievementProgress) achievementView {
	d := a.Definition
	return achievementView{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Icon:        d.Icon,
		Type:        string(d.Type),
		Tier:        string(d.Tier),
		Points:      d.Points,
		Requirement: d.Requirement,
		Progress:    a.Progress,
		Percent:     a.Percent(),
		Unlocked:    a.Unlocked,
		UnlockedAt:  a.UnlockedAt,
	}
}

func toChallengeViews(cs []engine.ChallengeProgress) []challengeView {
	out := make([]challengeView, 0, len(cs))
	for _, c := range cs {
		out = append(out, challengeView{
			ID:         c.Definition.ID,
			Title:      c.Definition.Title,
			Type:       string(c.Definition.Type),
			Target:     c.Definition.Target,
			Progress:   c.Progress,
			Status:     string(c.Status),
			Deadline:   c.Definition.Deadline,
			ResolvedAt: c.ResolvedAt,
		})
	}
	return out
}

func toToggleResponse(r *engine.ToggleResult) toggleResponse {
	out := toggleResponse{
		Action:             r.Action,
		HabitID:            r.HabitID,
		CompletionDate:     engine.FormatDay(r.Date),
		CurrentStreak:      r.Snapshot.CurrentStreak,
		TotalPoints:        r.Snapshot.TotalPoints,
		AchievementsEarned: make([]string, 0, len(r.NewAchievements)),
		Snapshot:           toSnapshotView(r.Snapshot),
	}
	if r.Action == engine.ActionCompleted {
		pts := r.PointsEarned
		out.PointsEarned = &pts
	} else {
		pts := r.PointsLost
		out.PointsLost = &pts
	}
	for _, a := range r.NewAchievements {
		out.AchievementsEarned = append(out.AchievementsEarned, a.Definition.Title)
	}
	if len(r.ChallengeUpdates) > 0 {
		out.Challenges = toChallengeViews(r.ChallengeUpdates)
	}
	return out
}
