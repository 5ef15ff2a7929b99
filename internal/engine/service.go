package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"execedge/internal/catalog"
	"execedge/internal/storage"
)

type Service struct {
	repo    storage.Repository
	catalog *catalog.Catalog
	log     *zap.Logger
	now     func() time.Time
	loc     *time.Location
}

type Option func(*Service)

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the zone whose calendar defines "today".
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(repo storage.Repository, cat *catalog.Catalog, opts ...Option) *Service {
	if cat == nil {
		cat = catalog.Default()
	}
	s := &Service{
		repo:    repo,
		catalog: cat,
		log:     zap.NewNop(),
		now:     time.Now,
		loc:     time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Today is the current calendar day in the service's location.
func (s *Service) Today() time.Time {
	return Day(s.now(), s.loc)
}

func requireUser(userID string) error {
	if userID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// userState is everything the evaluators need for one user.
type userState struct {
	habits   []storage.HabitDefinition
	subs     []storage.Subscription
	events   []storage.Completion
	unlocks  []storage.AchievementUnlock
	states   []storage.ChallengeState
	snapshot *storage.Snapshot
}

func (s *Service) loadState(ctx context.Context, repo storage.Repository, userID string) (*userState, error) {
	var (
		st  userState
		err error
	)
	if st.habits, err = repo.ListHabits(ctx); err != nil {
		return nil, storeErr("list habits", err)
	}
	if st.subs, err = repo.ListSubscriptions(ctx, userID); err != nil {
		return nil, storeErr("list subscriptions", err)
	}
	if st.events, err = repo.ListCompletions(ctx, userID); err != nil {
		return nil, storeErr("list completions", err)
	}
	if st.unlocks, err = repo.ListUnlocks(ctx, userID); err != nil {
		return nil, storeErr("list unlocks", err)
	}
	if st.states, err = repo.ListChallengeStates(ctx, userID); err != nil {
		return nil, storeErr("list challenge states", err)
	}
	if st.snapshot, err = repo.GetSnapshot(ctx, userID); err != nil {
		return nil, storeErr("get snapshot", err)
	}
	return &st, nil
}

func (st *userState) knownUnlocks() map[string]storage.AchievementUnlock {
	out := make(map[string]storage.AchievementUnlock, len(st.unlocks))
	for _, u := range st.unlocks {
		out[u.AchievementID] = u
	}
	return out
}

func (st *userState) challengeStates() map[string]storage.ChallengeState {
	out := make(map[string]storage.ChallengeState, len(st.states))
	for _, cs := range st.states {
		out[cs.ChallengeID] = cs
	}
	return out
}

// recordOutcomes evaluates achievements and challenges against snap and
// persists new unlocks and challenge transitions. Individual write failures
// are logged and dropped from the result; the next pass detects them again.
func (s *Service) recordOutcomes(ctx context.Context, userID string, snap storage.Snapshot) ([]AchievementProgress, []ChallengeProgress, error) {
	st, err := s.loadState(ctx, s.repo, userID)
	if err != nil {
		return nil, nil, err
	}
	today := snap.AsOf
	now := s.now().UTC()
	statuses := HabitStatuses(st.habits, st.subs, st.events, today)

	known := make(map[string]bool, len(st.unlocks))
	for _, u := range st.unlocks {
		known[u.AchievementID] = true
	}

	results := EvaluateAchievements(s.catalog.Achievements, statuses, snap)
	var unlocked []AchievementProgress
	for _, a := range NewlyUnlocked(results, known) {
		u := storage.AchievementUnlock{UserID: userID, AchievementID: a.Definition.ID, UnlockedAt: now}
		inserted, err := s.repo.InsertUnlock(ctx, u)
		if err != nil {
			s.log.Warn("record achievement unlock",
				zap.String("user_id", userID),
				zap.String("achievement_id", a.Definition.ID),
				zap.Error(err))
			continue
		}
		if !inserted {
			// Another pass recorded it first.
			continue
		}
		a.UnlockedAt = &u.UnlockedAt
		unlocked = append(unlocked, a)
		s.log.Info("achievement unlocked",
			zap.String("user_id", userID),
			zap.String("achievement_id", a.Definition.ID),
			zap.String("tier", string(a.Definition.Tier)))
	}

	var changed []ChallengeProgress
	for _, c := range EvaluateChallenges(s.catalog.Challenges, statuses, snap, st.challengeStates(), now) {
		if !c.Changed {
			continue
		}
		cs := storage.ChallengeState{
			UserID:      userID,
			ChallengeID: c.Definition.ID,
			Status:      string(c.Status),
			Progress:    c.Progress,
			ResolvedAt:  c.ResolvedAt,
			UpdatedAt:   now,
		}
		if err := s.repo.UpsertChallengeState(ctx, cs); err != nil {
			s.log.Warn("record challenge state",
				zap.String("user_id", userID),
				zap.String("challenge_id", c.Definition.ID),
				zap.Error(err))
			continue
		}
		changed = append(changed, c)
	}
	return unlocked, changed, nil
}
