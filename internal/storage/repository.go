package storage

import (
	"context"
	"errors"
	"time"
)

// ErrConflict is returned when a write hits a uniqueness constraint.
var ErrConflict = errors.New("storage: conflicting row")

// Repository is the backing store the engine runs against.
// Get* methods return (nil, nil) when the row does not exist.
type Repository interface {
	// InTx runs fn against a transaction-bound repository. Nested calls reuse
	// the outer transaction.
	InTx(ctx context.Context, fn func(tx Repository) error) error

	GetHabit(ctx context.Context, id string) (*HabitDefinition, error)
	ListHabits(ctx context.Context) ([]HabitDefinition, error)
	UpsertHabit(ctx context.Context, h HabitDefinition) error

	ListSubscriptions(ctx context.Context, userID string) ([]Subscription, error)
	UpsertSubscription(ctx context.Context, s Subscription) error

	GetCompletion(ctx context.Context, userID, habitID string, date time.Time) (*Completion, error)
	InsertCompletion(ctx context.Context, c Completion) error
	DeleteCompletion(ctx context.Context, userID, habitID string, date time.Time) error
	ListCompletions(ctx context.Context, userID string) ([]Completion, error)

	GetSnapshot(ctx context.Context, userID string) (*Snapshot, error)
	UpsertSnapshot(ctx context.Context, s Snapshot) error

	ListUnlocks(ctx context.Context, userID string) ([]AchievementUnlock, error)
	// InsertUnlock reports whether a row was written. An existing unlock is
	// left untouched and reported as not inserted.
	InsertUnlock(ctx context.Context, u AchievementUnlock) (bool, error)

	ListChallengeStates(ctx context.Context, userID string) ([]ChallengeState, error)
	UpsertChallengeState(ctx context.Context, s ChallengeState) error
}

// UserStore resolves callers for the auth layer.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByToken(ctx context.Context, token string) (*User, error)
	InsertUser(ctx context.Context, u User) error
}
