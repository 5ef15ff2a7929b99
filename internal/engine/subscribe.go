package engine

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"execedge/internal/storage"
)

// HabitListing is a catalog habit as seen by one user.
type HabitListing struct {
	Habit      storage.HabitDefinition
	Subscribed bool
	Since      *time.Time
}

// ListHabits returns the active habit definitions with the caller's
// subscription state.
func (s *Service) ListHabits(ctx context.Context, userID string) ([]HabitListing, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	habits, err := s.repo.ListHabits(ctx)
	if err != nil {
		return nil, storeErr("list habits", err)
	}
	subs, err := s.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, storeErr("list subscriptions", err)
	}
	byHabit := make(map[string]storage.Subscription, len(subs))
	for _, sub := range subs {
		byHabit[sub.HabitID] = sub
	}

	out := make([]HabitListing, 0, len(habits))
	for _, h := range habits {
		if !h.Active {
			continue
		}
		l := HabitListing{Habit: h}
		if sub, ok := byHabit[h.ID]; ok && sub.Active {
			since := sub.StartDate
			l.Subscribed = true
			l.Since = &since
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Service) Subscribe(ctx context.Context, userID, habitID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	habitID = strings.TrimSpace(habitID)
	if habitID == "" {
		return ValidationError{Field: "habit_id", Reason: "is required"}
	}
	h, err := s.repo.GetHabit(ctx, habitID)
	if err != nil {
		return storeErr("get habit", err)
	}
	if h == nil || !h.Active {
		return NotFoundError{Kind: "habit", ID: habitID}
	}
	sub := storage.Subscription{UserID: userID, HabitID: habitID, Active: true, StartDate: s.Today()}
	if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
		return storeErr("subscribe", err)
	}
	s.log.Info("habit subscribed", zap.String("user_id", userID), zap.String("habit_id", habitID))
	return nil
}

// Unsubscribe deactivates a subscription. Completion history is kept.
func (s *Service) Unsubscribe(ctx context.Context, userID, habitID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	habitID = strings.TrimSpace(habitID)
	subs, err := s.repo.ListSubscriptions(ctx, userID)
	if err != nil {
		return storeErr("list subscriptions", err)
	}
	for _, sub := range subs {
		if sub.HabitID != habitID || !sub.Active {
			continue
		}
		sub.Active = false
		if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
			return storeErr("unsubscribe", err)
		}
		s.log.Info("habit unsubscribed", zap.String("user_id", userID), zap.String("habit_id", habitID))
		return nil
	}
	return NotFoundError{Kind: "subscription", ID: habitID}
}

// SubscribeDefaults subscribes the user to every active habit whose target
// roles include role, or to every active habit when role is empty.
func (s *Service) SubscribeDefaults(ctx context.Context, userID, role string) (int, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	habits, err := s.repo.ListHabits(ctx)
	if err != nil {
		return 0, storeErr("list habits", err)
	}
	n := 0
	today := s.Today()
	err = s.repo.InTx(ctx, func(tx storage.Repository) error {
		for _, h := range habits {
			if !h.Active || !targetsRole(h, role) {
				continue
			}
			sub := storage.Subscription{UserID: userID, HabitID: h.ID, Active: true, StartDate: today}
			if err := tx.UpsertSubscription(ctx, sub); err != nil {
				return storeErr("subscribe", err)
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, storeErr("subscribe defaults", err)
	}
	return n, nil
}

func targetsRole(h storage.HabitDefinition, role string) bool {
	if role == "" || len(h.TargetRoles) == 0 {
		return true
	}
	for _, r := range h.TargetRoles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
