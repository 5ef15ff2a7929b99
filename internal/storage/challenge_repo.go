package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type ChallengeRepo struct {
	q querier
}

func NewChallengeRepo(q querier) *ChallengeRepo {
	return &ChallengeRepo{q: q}
}

func (r *ChallengeRepo) ListChallengeStates(ctx context.Context, userID string) ([]ChallengeState, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT user_id, challenge_id, status, progress, resolved_at, updated_at
		FROM challenge_states
		WHERE user_id = ?
		ORDER BY challenge_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("challenge list: %w", err)
	}
	defer rows.Close()

	var out []ChallengeState
	for rows.Next() {
		var (
			s         ChallengeState
			resolved  sql.NullString
			updatedAt string
		)
		if err := rows.Scan(&s.UserID, &s.ChallengeID, &s.Status, &s.Progress, &resolved, &updatedAt); err != nil {
			return nil, fmt.Errorf("challenge scan: %w", err)
		}
		if resolved.Valid {
			t, err := parseTime(resolved.String)
			if err != nil {
				return nil, fmt.Errorf("challenge scan: %w", err)
			}
			s.ResolvedAt = &t
		}
		if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("challenge scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("challenge rows: %w", err)
	}
	return out, nil
}

// UpsertChallengeState never moves a row out of a terminal status.
func (r *ChallengeRepo) UpsertChallengeState(ctx context.Context, s ChallengeState) error {
	var resolved *string
	if s.ResolvedAt != nil {
		v := formatTime(*s.ResolvedAt)
		resolved = &v
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO challenge_states (user_id, challenge_id, status, progress, resolved_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, challenge_id) DO UPDATE SET
			status = excluded.status,
			progress = excluded.progress,
			resolved_at = excluded.resolved_at,
			updated_at = excluded.updated_at
		WHERE challenge_states.status = 'active'
	`, s.UserID, s.ChallengeID, s.Status, s.Progress, resolved, formatTime(s.UpdatedAt))
	if err != nil {
		return mapWriteErr("challenge upsert", err)
	}
	return nil
}
