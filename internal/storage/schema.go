package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema. Statements are portable between SQLite and
// Postgres: dates and timestamps are TEXT, flags are INTEGER.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			token TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS habits (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL,
			points INTEGER NOT NULL,
			target_roles TEXT,
			frequency TEXT NOT NULL DEFAULT 'daily',
			active INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE TABLE IF NOT EXISTS habit_subscriptions (
			user_id TEXT NOT NULL,
			habit_id TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			start_date TEXT NOT NULL,
			PRIMARY KEY (user_id, habit_id)
		);`,
		// One row per (user, habit, day); toggling inserts or deletes it.
		`CREATE TABLE IF NOT EXISTS habit_completions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			habit_id TEXT NOT NULL,
			completion_date TEXT NOT NULL,
			points_earned INTEGER NOT NULL,
			note TEXT,
			created_at TEXT NOT NULL,
			UNIQUE (user_id, habit_id, completion_date)
		);`,
		`CREATE TABLE IF NOT EXISTS progress_snapshots (
			user_id TEXT PRIMARY KEY,
			total_points INTEGER NOT NULL DEFAULT 0,
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			completed_today INTEGER NOT NULL DEFAULT 0,
			completed_this_week INTEGER NOT NULL DEFAULT 0,
			as_of TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS achievement_unlocks (
			user_id TEXT NOT NULL,
			achievement_id TEXT NOT NULL,
			unlocked_at TEXT NOT NULL,
			PRIMARY KEY (user_id, achievement_id)
		);`,
		`CREATE TABLE IF NOT EXISTS challenge_states (
			user_id TEXT NOT NULL,
			challenge_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			progress INTEGER NOT NULL DEFAULT 0,
			resolved_at TEXT,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (user_id, challenge_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_habit_completions_user_date ON habit_completions(user_id, completion_date);`,
		`CREATE INDEX IF NOT EXISTS idx_habit_subscriptions_user ON habit_subscriptions(user_id);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
