package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"execedge/internal/storage"
)

type ToggleInput struct {
	HabitID string
	Note    *string
	// Date defaults to today. Only the calendar day is used.
	Date *time.Time
}

type ToggleResult struct {
	Action           ToggleAction
	HabitID          string
	Date             time.Time
	PointsEarned     int
	PointsLost       int
	Snapshot         storage.Snapshot
	NewAchievements  []AchievementProgress
	ChallengeUpdates []ChallengeProgress
}

// ToggleCompletion marks a habit done for a day, or un-marks it if it was
// already done. The event change and the snapshot rebuild commit together;
// achievements and challenges are evaluated after the commit.
func (s *Service) ToggleCompletion(ctx context.Context, userID string, in ToggleInput) (*ToggleResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	habitID := strings.TrimSpace(in.HabitID)
	if habitID == "" {
		return nil, ValidationError{Field: "habit_id", Reason: "is required"}
	}

	today := s.Today()
	date := today
	if in.Date != nil {
		y, m, d := in.Date.Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	if date.After(today) {
		return nil, ValidationError{Field: "completion_date", Reason: "is in the future"}
	}

	res := &ToggleResult{HabitID: habitID, Date: date}
	err := s.repo.InTx(ctx, func(tx storage.Repository) error {
		habit, err := tx.GetHabit(ctx, habitID)
		if err != nil {
			return storeErr("get habit", err)
		}
		if habit == nil || !habit.Active {
			return NotFoundError{Kind: "habit", ID: habitID}
		}

		existing, err := tx.GetCompletion(ctx, userID, habitID, date)
		if err != nil {
			return storeErr("get completion", err)
		}
		if existing != nil {
			if err := tx.DeleteCompletion(ctx, userID, habitID, date); err != nil {
				return storeErr("delete completion", err)
			}
			res.Action = ActionRemoved
			res.PointsLost = existing.PointsEarned
		} else {
			c := storage.Completion{
				ID:           uuid.NewString(),
				UserID:       userID,
				HabitID:      habitID,
				Date:         date,
				PointsEarned: habit.Points,
				Note:         in.Note,
				CreatedAt:    s.now().UTC(),
			}
			if err := tx.InsertCompletion(ctx, c); err != nil {
				return storeErr("insert completion", err)
			}
			res.Action = ActionCompleted
			res.PointsEarned = habit.Points
		}

		snap, err := s.rebuild(ctx, tx, userID, today)
		if err != nil {
			return err
		}
		res.Snapshot = snap
		return nil
	})
	if err != nil {
		return nil, storeErr("toggle completion", err)
	}

	s.log.Debug("completion toggled",
		zap.String("user_id", userID),
		zap.String("habit_id", habitID),
		zap.String("date", FormatDay(date)),
		zap.String("action", string(res.Action)))

	res.NewAchievements, res.ChallengeUpdates, err = s.recordOutcomes(ctx, userID, res.Snapshot)
	if err != nil {
		// The toggle is committed; outcomes are picked up on the next pass.
		s.log.Warn("evaluate after toggle", zap.String("user_id", userID), zap.Error(err))
	}
	return res, nil
}

// rebuild recomputes the snapshot from the event log and stores it.
func (s *Service) rebuild(ctx context.Context, repo storage.Repository, userID string, today time.Time) (storage.Snapshot, error) {
	prev, err := repo.GetSnapshot(ctx, userID)
	if err != nil {
		return storage.Snapshot{}, storeErr("get snapshot", err)
	}
	events, err := repo.ListCompletions(ctx, userID)
	if err != nil {
		return storage.Snapshot{}, storeErr("list completions", err)
	}
	snap := BuildSnapshot(userID, events, prev, today)
	if err := repo.UpsertSnapshot(ctx, snap); err != nil {
		return storage.Snapshot{}, storeErr("upsert snapshot", err)
	}
	return snap, nil
}

type RecomputeResult struct {
	Snapshot         storage.Snapshot
	NewAchievements  []AchievementProgress
	ChallengeUpdates []ChallengeProgress
}

// RecomputeSnapshot rebuilds the snapshot from the event log and awards any
// achievement whose earlier unlock write was lost.
func (s *Service) RecomputeSnapshot(ctx context.Context, userID string) (*RecomputeResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	today := s.Today()

	var snap storage.Snapshot
	err := s.repo.InTx(ctx, func(tx storage.Repository) error {
		var err error
		snap, err = s.rebuild(ctx, tx, userID, today)
		return err
	})
	if err != nil {
		return nil, storeErr("recompute snapshot", err)
	}

	res := &RecomputeResult{Snapshot: snap}
	res.NewAchievements, res.ChallengeUpdates, err = s.recordOutcomes(ctx, userID, snap)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Progress returns the stored snapshot, rebuilding it when none exists yet or
// it was computed on an earlier day.
func (s *Service) Progress(ctx context.Context, userID string) (*storage.Snapshot, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	snap, err := s.repo.GetSnapshot(ctx, userID)
	if err != nil {
		return nil, storeErr("get snapshot", err)
	}
	if snap != nil && snap.AsOf.Equal(s.Today()) {
		return snap, nil
	}
	res, err := s.RecomputeSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &res.Snapshot, nil
}
