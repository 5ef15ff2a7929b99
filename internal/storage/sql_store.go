package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLStore implements Repository and UserStore on database/sql for SQLite
// and Postgres.
type SQLStore struct {
	*HabitRepo
	*SubscriptionRepo
	*CompletionRepo
	*SnapshotRepo
	*UnlockRepo
	*ChallengeRepo
	*UserRepo

	db      *sql.DB
	dialect Dialect
	inTx    bool
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return newSQLStore(db, boundQuerier{q: db, dialect: dialect}, dialect, false)
}

func newSQLStore(db *sql.DB, q querier, dialect Dialect, inTx bool) *SQLStore {
	return &SQLStore{
		HabitRepo:        NewHabitRepo(q),
		SubscriptionRepo: NewSubscriptionRepo(q),
		CompletionRepo:   NewCompletionRepo(q),
		SnapshotRepo:     NewSnapshotRepo(q),
		UnlockRepo:       NewUnlockRepo(q),
		ChallengeRepo:    NewChallengeRepo(q),
		UserRepo:         NewUserRepo(q),
		db:               db,
		dialect:          dialect,
		inTx:             inTx,
	}
}

func (s *SQLStore) Dialect() Dialect { return s.dialect }

func (s *SQLStore) Close() error { return s.db.Close() }

// InTx runs fn inside a SQL transaction; the transaction is rolled back when fn
// fails.
func (s *SQLStore) InTx(ctx context.Context, fn func(tx Repository) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(newSQLStore(s.db, boundQuerier{q: tx, dialect: s.dialect}, s.dialect, true)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

var (
	_ Repository = (*SQLStore)(nil)
	_ UserStore  = (*SQLStore)(nil)
)
