package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type HabitRepo struct {
	q querier
}

func NewHabitRepo(q querier) *HabitRepo {
	return &HabitRepo{q: q}
}

const habitColumns = `id, title, description, category, points, target_roles, frequency, active`

func (r *HabitRepo) GetHabit(ctx context.Context, id string) (*HabitDefinition, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("habit get: %w", err)
	}
	return h, nil
}

func (r *HabitRepo) ListHabits(ctx context.Context) ([]HabitDefinition, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+habitColumns+` FROM habits ORDER BY category ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("habit list: %w", err)
	}
	defer rows.Close()

	var out []HabitDefinition
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, fmt.Errorf("habit scan: %w", err)
		}
		out = append(out, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("habit rows: %w", err)
	}
	return out, nil
}

func (r *HabitRepo) UpsertHabit(ctx context.Context, h HabitDefinition) error {
	var roles *string
	if len(h.TargetRoles) > 0 {
		data, err := json.Marshal(h.TargetRoles)
		if err != nil {
			return fmt.Errorf("marshal target roles: %w", err)
		}
		s := string(data)
		roles = &s
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO habits (id, title, description, category, points, target_roles, frequency, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			points = excluded.points,
			target_roles = excluded.target_roles,
			frequency = excluded.frequency,
			active = excluded.active
	`, h.ID, h.Title, h.Description, h.Category, h.Points, roles, h.Frequency, boolToInt(h.Active))
	if err != nil {
		return mapWriteErr("habit upsert", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (*HabitDefinition, error) {
	var (
		h        HabitDefinition
		rolesRaw sql.NullString
		active   int
	)
	if err := row.Scan(&h.ID, &h.Title, &h.Description, &h.Category, &h.Points, &rolesRaw, &h.Frequency, &active); err != nil {
		return nil, err
	}
	if rolesRaw.Valid && rolesRaw.String != "" {
		if err := json.Unmarshal([]byte(rolesRaw.String), &h.TargetRoles); err != nil {
			return nil, fmt.Errorf("unmarshal target roles: %w", err)
		}
	}
	h.Active = active != 0
	return &h, nil
}
