package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Repository and UserStore. InTx snapshots the
// tables and restores them when fn fails. Writes outside a transaction wait
// for the open one, so a rollback never discards them.
type MemoryStore struct {
	st   *memState
	inTx bool
}

type memState struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	t    memTables
}

type completionKey struct {
	userID  string
	habitID string
	date    string
}

type userItemKey struct {
	userID string
	itemID string
}

type memTables struct {
	users         map[string]User
	habits        map[string]HabitDefinition
	subscriptions map[userItemKey]Subscription
	completions   map[completionKey]Completion
	snapshots     map[string]Snapshot
	unlocks       map[userItemKey]AchievementUnlock
	challenges    map[userItemKey]ChallengeState
}

func newMemTables() memTables {
	return memTables{
		users:         map[string]User{},
		habits:        map[string]HabitDefinition{},
		subscriptions: map[userItemKey]Subscription{},
		completions:   map[completionKey]Completion{},
		snapshots:     map[string]Snapshot{},
		unlocks:       map[userItemKey]AchievementUnlock{},
		challenges:    map[userItemKey]ChallengeState{},
	}
}

func (t memTables) clone() memTables {
	c := newMemTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.habits {
		c.habits[k] = v
	}
	for k, v := range t.subscriptions {
		c.subscriptions[k] = v
	}
	for k, v := range t.completions {
		c.completions[k] = v
	}
	for k, v := range t.snapshots {
		c.snapshots[k] = v
	}
	for k, v := range t.unlocks {
		c.unlocks[k] = v
	}
	for k, v := range t.challenges {
		c.challenges[k] = v
	}
	return c
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{st: &memState{t: newMemTables()}}
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Repository) error) error {
	if s.inTx {
		return fn(s)
	}
	s.st.txMu.Lock()
	defer s.st.txMu.Unlock()

	s.st.mu.RLock()
	saved := s.st.t.clone()
	s.st.mu.RUnlock()

	if err := fn(&MemoryStore{st: s.st, inTx: true}); err != nil {
		s.st.mu.Lock()
		s.st.t = saved
		s.st.mu.Unlock()
		return err
	}
	return nil
}

// lockWrite takes the table lock for a write, first waiting for any open
// transaction unless s is bound to it.
func (s *MemoryStore) lockWrite() func() {
	if !s.inTx {
		s.st.txMu.Lock()
	}
	s.st.mu.Lock()
	return func() {
		s.st.mu.Unlock()
		if !s.inTx {
			s.st.txMu.Unlock()
		}
	}
}

func (s *MemoryStore) GetHabit(ctx context.Context, id string) (*HabitDefinition, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	h, ok := s.st.t.habits[id]
	if !ok {
		return nil, nil
	}
	h.TargetRoles = append([]string(nil), h.TargetRoles...)
	return &h, nil
}

func (s *MemoryStore) ListHabits(ctx context.Context) ([]HabitDefinition, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	out := make([]HabitDefinition, 0, len(s.st.t.habits))
	for _, h := range s.st.t.habits {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) UpsertHabit(ctx context.Context, h HabitDefinition) error {
	defer s.lockWrite()()

	h.TargetRoles = append([]string(nil), h.TargetRoles...)
	s.st.t.habits[h.ID] = h
	return nil
}

func (s *MemoryStore) ListSubscriptions(ctx context.Context, userID string) ([]Subscription, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	var out []Subscription
	for k, v := range s.st.t.subscriptions {
		if k.userID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HabitID < out[j].HabitID })
	return out, nil
}

func (s *MemoryStore) UpsertSubscription(ctx context.Context, sub Subscription) error {
	defer s.lockWrite()()

	k := userItemKey{userID: sub.UserID, itemID: sub.HabitID}
	if cur, ok := s.st.t.subscriptions[k]; ok {
		sub.StartDate = cur.StartDate
	}
	s.st.t.subscriptions[k] = sub
	return nil
}

func (s *MemoryStore) GetCompletion(ctx context.Context, userID, habitID string, date time.Time) (*Completion, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	c, ok := s.st.t.completions[completionKey{userID: userID, habitID: habitID, date: formatDate(date)}]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *MemoryStore) InsertCompletion(ctx context.Context, c Completion) error {
	defer s.lockWrite()()

	k := completionKey{userID: c.UserID, habitID: c.HabitID, date: formatDate(c.Date)}
	if _, ok := s.st.t.completions[k]; ok {
		return fmt.Errorf("completion insert: %w", ErrConflict)
	}
	s.st.t.completions[k] = c
	return nil
}

func (s *MemoryStore) DeleteCompletion(ctx context.Context, userID, habitID string, date time.Time) error {
	defer s.lockWrite()()

	delete(s.st.t.completions, completionKey{userID: userID, habitID: habitID, date: formatDate(date)})
	return nil
}

func (s *MemoryStore) ListCompletions(ctx context.Context, userID string) ([]Completion, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	var out []Completion
	for k, v := range s.st.t.completions {
		if k.userID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].HabitID < out[j].HabitID
	})
	return out, nil
}

func (s *MemoryStore) GetSnapshot(ctx context.Context, userID string) (*Snapshot, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	snap, ok := s.st.t.snapshots[userID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *MemoryStore) UpsertSnapshot(ctx context.Context, snap Snapshot) error {
	defer s.lockWrite()()

	s.st.t.snapshots[snap.UserID] = snap
	return nil
}

func (s *MemoryStore) ListUnlocks(ctx context.Context, userID string) ([]AchievementUnlock, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	var out []AchievementUnlock
	for k, v := range s.st.t.unlocks {
		if k.userID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UnlockedAt.Equal(out[j].UnlockedAt) {
			return out[i].UnlockedAt.Before(out[j].UnlockedAt)
		}
		return out[i].AchievementID < out[j].AchievementID
	})
	return out, nil
}

func (s *MemoryStore) InsertUnlock(ctx context.Context, u AchievementUnlock) (bool, error) {
	defer s.lockWrite()()

	k := userItemKey{userID: u.UserID, itemID: u.AchievementID}
	if _, ok := s.st.t.unlocks[k]; ok {
		return false, nil
	}
	s.st.t.unlocks[k] = u
	return true, nil
}

func (s *MemoryStore) ListChallengeStates(ctx context.Context, userID string) ([]ChallengeState, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	var out []ChallengeState
	for k, v := range s.st.t.challenges {
		if k.userID == userID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChallengeID < out[j].ChallengeID })
	return out, nil
}

func (s *MemoryStore) UpsertChallengeState(ctx context.Context, cs ChallengeState) error {
	defer s.lockWrite()()

	k := userItemKey{userID: cs.UserID, itemID: cs.ChallengeID}
	if cur, ok := s.st.t.challenges[k]; ok && cur.Status != "active" {
		return nil
	}
	s.st.t.challenges[k] = cs
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*User, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	u, ok := s.st.t.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByToken(ctx context.Context, token string) (*User, error) {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()

	for _, u := range s.st.t.users {
		if u.Token == token {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) InsertUser(ctx context.Context, u User) error {
	defer s.lockWrite()()

	if _, ok := s.st.t.users[u.ID]; ok {
		return fmt.Errorf("user insert: %w", ErrConflict)
	}
	for _, existing := range s.st.t.users {
		if existing.Token == u.Token {
			return fmt.Errorf("user insert: %w", ErrConflict)
		}
	}
	s.st.t.users[u.ID] = u
	return nil
}

var (
	_ Repository = (*MemoryStore)(nil)
	_ UserStore  = (*MemoryStore)(nil)
)
