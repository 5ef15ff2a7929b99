package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type SnapshotRepo struct {
	q querier
}

func NewSnapshotRepo(q querier) *SnapshotRepo {
	return &SnapshotRepo{q: q}
}

func (r *SnapshotRepo) GetSnapshot(ctx context.Context, userID string) (*Snapshot, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT user_id, total_points, current_streak, longest_streak, completed_today, completed_this_week, as_of
		FROM progress_snapshots
		WHERE user_id = ?
	`, userID)

	var (
		s    Snapshot
		asOf string
	)
	if err := row.Scan(&s.UserID, &s.TotalPoints, &s.CurrentStreak, &s.LongestStreak, &s.CompletedToday, &s.CompletedThisWeek, &asOf); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("snapshot get: %w", err)
	}
	var err error
	if s.AsOf, err = parseDate(asOf); err != nil {
		return nil, fmt.Errorf("snapshot get: %w", err)
	}
	return &s, nil
}

func (r *SnapshotRepo) UpsertSnapshot(ctx context.Context, s Snapshot) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO progress_snapshots (user_id, total_points, current_streak, longest_streak, completed_today, completed_this_week, as_of)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			total_points = excluded.total_points,
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			completed_today = excluded.completed_today,
			completed_this_week = excluded.completed_this_week,
			as_of = excluded.as_of
	`, s.UserID, s.TotalPoints, s.CurrentStreak, s.LongestStreak, s.CompletedToday, s.CompletedThisWeek, formatDate(s.AsOf))
	if err != nil {
		return mapWriteErr("snapshot upsert", err)
	}
	return nil
}
