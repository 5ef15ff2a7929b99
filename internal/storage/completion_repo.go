package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type CompletionRepo struct {
	q querier
}

func NewCompletionRepo(q querier) *CompletionRepo {
	return &CompletionRepo{q: q}
}

const completionColumns = `id, user_id, habit_id, completion_date, points_earned, note, created_at`

func (r *CompletionRepo) GetCompletion(ctx context.Context, userID, habitID string, date time.Time) (*Completion, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+completionColumns+`
		FROM habit_completions
		WHERE user_id = ? AND habit_id = ? AND completion_date = ?
	`, userID, habitID, formatDate(date))
	c, err := scanCompletion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("completion get: %w", err)
	}
	return c, nil
}

func (r *CompletionRepo) InsertCompletion(ctx context.Context, c Completion) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO habit_completions (id, user_id, habit_id, completion_date, points_earned, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.HabitID, formatDate(c.Date), c.PointsEarned, c.Note, formatTime(c.CreatedAt))
	if err != nil {
		return mapWriteErr("completion insert", err)
	}
	return nil
}

func (r *CompletionRepo) DeleteCompletion(ctx context.Context, userID, habitID string, date time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		DELETE FROM habit_completions
		WHERE user_id = ? AND habit_id = ? AND completion_date = ?
	`, userID, habitID, formatDate(date))
	if err != nil {
		return fmt.Errorf("completion delete: %w", err)
	}
	return nil
}

// ListCompletions returns the user's full event log, most recent day first.
func (r *CompletionRepo) ListCompletions(ctx context.Context, userID string) ([]Completion, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+completionColumns+`
		FROM habit_completions
		WHERE user_id = ?
		ORDER BY completion_date DESC, habit_id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("completion list: %w", err)
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("completion scan: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("completion rows: %w", err)
	}
	return out, nil
}

func scanCompletion(row scanner) (*Completion, error) {
	var (
		c         Completion
		date      string
		note      sql.NullString
		createdAt string
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.HabitID, &date, &c.PointsEarned, &note, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if c.Date, err = parseDate(date); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if note.Valid {
		v := note.String
		c.Note = &v
	}
	return &c, nil
}
