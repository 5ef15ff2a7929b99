package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// MainUserID is the user the local CLI and board act as by default.
const MainUserID = "main_user"

type UserRepo struct {
	q querier
}

func NewUserRepo(q querier) *UserRepo {
	return &UserRepo{q: q}
}

func (r *UserRepo) GetUser(ctx context.Context, id string) (*User, error) {
	return r.getBy(ctx, `id`, id)
}

func (r *UserRepo) GetUserByToken(ctx context.Context, token string) (*User, error) {
	return r.getBy(ctx, `token`, token)
}

func (r *UserRepo) getBy(ctx context.Context, column, value string) (*User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT id, name, token, created_at FROM users WHERE `+column+` = ?`, value)

	var (
		u         User
		createdAt string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Token, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user get: %w", err)
	}
	var err error
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("user get: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) InsertUser(ctx context.Context, u User) error {
	_, err := r.q.ExecContext(ctx, `INSERT INTO users (id, name, token, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Name, u.Token, formatTime(u.CreatedAt))
	if err != nil {
		return mapWriteErr("user insert", err)
	}
	return nil
}
