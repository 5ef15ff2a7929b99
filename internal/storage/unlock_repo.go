package storage

import (
	"context"
	"fmt"
)

type UnlockRepo struct {
	q querier
}

func NewUnlockRepo(q querier) *UnlockRepo {
	return &UnlockRepo{q: q}
}

func (r *UnlockRepo) ListUnlocks(ctx context.Context, userID string) ([]AchievementUnlock, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT user_id, achievement_id, unlocked_at
		FROM achievement_unlocks
		WHERE user_id = ?
		ORDER BY unlocked_at ASC, achievement_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("unlock list: %w", err)
	}
	defer rows.Close()

	var out []AchievementUnlock
	for rows.Next() {
		var (
			u  AchievementUnlock
			at string
		)
		if err := rows.Scan(&u.UserID, &u.AchievementID, &at); err != nil {
			return nil, fmt.Errorf("unlock scan: %w", err)
		}
		if u.UnlockedAt, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("unlock scan: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unlock rows: %w", err)
	}
	return out, nil
}

func (r *UnlockRepo) InsertUnlock(ctx context.Context, u AchievementUnlock) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO achievement_unlocks (user_id, achievement_id, unlocked_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, achievement_id) DO NOTHING
	`, u.UserID, u.AchievementID, formatTime(u.UnlockedAt))
	if err != nil {
		return false, mapWriteErr("unlock insert", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("unlock insert rows: %w", err)
	}
	return n == 1, nil
}
