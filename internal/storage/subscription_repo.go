package storage

import (
	"context"
	"fmt"
)

type SubscriptionRepo struct {
	q querier
}

func NewSubscriptionRepo(q querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

func (r *SubscriptionRepo) ListSubscriptions(ctx context.Context, userID string) ([]Subscription, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT user_id, habit_id, active, start_date
		FROM habit_subscriptions
		WHERE user_id = ?
		ORDER BY habit_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("subscription list: %w", err)
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		var (
			s      Subscription
			active int
			start  string
		)
		if err := rows.Scan(&s.UserID, &s.HabitID, &active, &start); err != nil {
			return nil, fmt.Errorf("subscription scan: %w", err)
		}
		s.Active = active != 0
		if s.StartDate, err = parseDate(start); err != nil {
			return nil, fmt.Errorf("subscription scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("subscription rows: %w", err)
	}
	return out, nil
}

// UpsertSubscription flips the active flag on an existing link but keeps its
// original start date.
func (r *SubscriptionRepo) UpsertSubscription(ctx context.Context, s Subscription) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO habit_subscriptions (user_id, habit_id, active, start_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, habit_id) DO UPDATE SET active = excluded.active
	`, s.UserID, s.HabitID, boolToInt(s.Active), formatDate(s.StartDate))
	if err != nil {
		return mapWriteErr("subscription upsert", err)
	}
	return nil
}
