package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"execedge/internal/catalog"
	"execedge/internal/storage"
)

var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Habits: []catalog.Habit{
			{ID: "reflect", Title: "Reflect", Category: catalog.CategoryMindset, Points: 3},
			{ID: "plan", Title: "Plan", Category: catalog.CategoryStrategic, Points: 5},
			{ID: "old", Title: "Old", Category: catalog.CategoryMindset, Points: 1, Retired: true},
		},
		Achievements: []catalog.AchievementDefinition{
			{ID: "perfect_day", Title: "Perfect Day", Type: catalog.TypeCompletion, Requirement: 1, Tier: catalog.TierBronze},
			{ID: "two_in_a_row", Title: "Two in a Row", Type: catalog.TypeStreak, Requirement: 2, Tier: catalog.TierBronze},
		},
		Challenges: []catalog.ChallengeDefinition{
			{ID: "sprint", Title: "Sprint", Type: catalog.TypeStreak, Target: 3, Deadline: testNow.Add(5 * 24 * time.Hour)},
		},
	}
}

// flakyStore fails selected writes, including those made inside InTx.
type flakyStore struct {
	*storage.MemoryStore
	fail *failures
}

type failures struct {
	insertCompletion bool
	upsertSnapshot   bool
	insertUnlock     bool
}

var errInjected = errors.New("injected store failure")

func (f *flakyStore) InTx(ctx context.Context, fn func(tx storage.Repository) error) error {
	return f.MemoryStore.InTx(ctx, func(tx storage.Repository) error {
		return fn(&flakyStore{MemoryStore: tx.(*storage.MemoryStore), fail: f.fail})
	})
}

func (f *flakyStore) InsertCompletion(ctx context.Context, c storage.Completion) error {
	if f.fail.insertCompletion {
		return errInjected
	}
	return f.MemoryStore.InsertCompletion(ctx, c)
}

func (f *flakyStore) UpsertSnapshot(ctx context.Context, s storage.Snapshot) error {
	if f.fail.upsertSnapshot {
		return errInjected
	}
	return f.MemoryStore.UpsertSnapshot(ctx, s)
}

func (f *flakyStore) InsertUnlock(ctx context.Context, u storage.AchievementUnlock) (bool, error) {
	if f.fail.insertUnlock {
		return false, errInjected
	}
	return f.MemoryStore.InsertUnlock(ctx, u)
}

func newMemService(t *testing.T) (*Service, *flakyStore) {
	t.Helper()
	ctx := context.Background()

	store := &flakyStore{MemoryStore: storage.NewMemoryStore(), fail: &failures{}}
	svc := NewService(store, testCatalog(),
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return testNow }))

	_, err := svc.SyncCatalog(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Subscribe(ctx, "u1", "reflect"))
	require.NoError(t, svc.Subscribe(ctx, "u1", "plan"))
	return svc, store
}

func toggle(t *testing.T, svc *Service, habitID, date string) *ToggleResult {
	t.Helper()
	in := ToggleInput{HabitID: habitID}
	if date != "" {
		d := day(date)
		in.Date = &d
	}
	res, err := svc.ToggleCompletion(context.Background(), "u1", in)
	require.NoError(t, err)
	return res
}

func TestToggleCompletion_InsertThenRemove(t *testing.T) {
	svc, _ := newMemService(t)

	res := toggle(t, svc, "reflect", "")
	assert.Equal(t, ActionCompleted, res.Action)
	assert.Equal(t, 3, res.PointsEarned)
	assert.Equal(t, day("2026-03-10"), res.Date)
	assert.Equal(t, 3, res.Snapshot.TotalPoints)
	assert.Equal(t, 1, res.Snapshot.CurrentStreak)
	assert.Equal(t, 1, res.Snapshot.CompletedToday)

	res = toggle(t, svc, "reflect", "")
	assert.Equal(t, ActionRemoved, res.Action)
	assert.Equal(t, 3, res.PointsLost)
	assert.Equal(t, 0, res.Snapshot.TotalPoints)
	assert.Equal(t, 0, res.Snapshot.CurrentStreak)
	assert.Equal(t, 1, res.Snapshot.LongestStreak)
}

func TestToggleCompletion_InverseRestoresSnapshot(t *testing.T) {
	svc, _ := newMemService(t)
	ctx := context.Background()

	toggle(t, svc, "reflect", "2026-03-08")
	toggle(t, svc, "reflect", "2026-03-07")
	toggle(t, svc, "reflect", "2026-03-06")
	toggle(t, svc, "plan", "2026-03-09")

	before, err := svc.RecomputeSnapshot(ctx, "u1")
	require.NoError(t, err)

	toggle(t, svc, "plan", "")
	after := toggle(t, svc, "plan", "")
	assert.Equal(t, before.Snapshot, after.Snapshot)
}

func TestToggleCompletion_GraceDayThroughService(t *testing.T) {
	svc, _ := newMemService(t)

	toggle(t, svc, "reflect", "2026-03-09")
	res := toggle(t, svc, "reflect", "2026-03-08")
	assert.Equal(t, 2, res.Snapshot.CurrentStreak)

	res = toggle(t, svc, "reflect", "2026-03-07")
	assert.Equal(t, 3, res.Snapshot.CurrentStreak)
	assert.Equal(t, 3, res.Snapshot.LongestStreak)
}

func TestToggleCompletion_LongestIsMonotonic(t *testing.T) {
	svc, _ := newMemService(t)

	toggle(t, svc, "reflect", "2026-03-08")
	toggle(t, svc, "reflect", "2026-03-09")
	res := toggle(t, svc, "reflect", "")
	require.Equal(t, 3, res.Snapshot.LongestStreak)

	res = toggle(t, svc, "reflect", "2026-03-09")
	assert.Equal(t, 1, res.Snapshot.CurrentStreak)
	assert.Equal(t, 3, res.Snapshot.LongestStreak)

	res = toggle(t, svc, "reflect", "")
	assert.Equal(t, 0, res.Snapshot.CurrentStreak)
	assert.Equal(t, 3, res.Snapshot.LongestStreak)
}

func TestToggleCompletion_Rejections(t *testing.T) {
	svc, _ := newMemService(t)
	ctx := context.Background()

	_, err := svc.ToggleCompletion(ctx, "", ToggleInput{HabitID: "reflect"})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.ToggleCompletion(ctx, "u1", ToggleInput{})
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)

	future := day("2026-03-11")
	_, err = svc.ToggleCompletion(ctx, "u1", ToggleInput{HabitID: "reflect", Date: &future})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "completion_date", ve.Field)

	var nf NotFoundError
	_, err = svc.ToggleCompletion(ctx, "u1", ToggleInput{HabitID: "missing"})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)

	_, err = svc.ToggleCompletion(ctx, "u1", ToggleInput{HabitID: "old"})
	assert.ErrorAs(t, err, &nf)

	snap, err := svc.Progress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.TotalPoints)
}

func TestToggleCompletion_StoreFailureLeavesStateUntouched(t *testing.T) {
	svc, store := newMemService(t)
	ctx := context.Background()

	toggle(t, svc, "reflect", "")
	before, err := store.GetSnapshot(ctx, "u1")
	require.NoError(t, err)

	store.fail.upsertSnapshot = true
	_, err = svc.ToggleCompletion(ctx, "u1", ToggleInput{HabitID: "plan"})
	var se StoreError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, errInjected)

	store.fail.upsertSnapshot = false
	events, err := store.ListCompletions(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, events, 1, "completion insert rolled back")

	after, err := store.GetSnapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, before, after)

	store.fail.insertCompletion = true
	_, err = svc.ToggleCompletion(ctx, "u1", ToggleInput{HabitID: "plan"})
	assert.ErrorAs(t, err, &se)
}

func TestToggleCompletion_UnlockFailureIsRetriedOnRecompute(t *testing.T) {
	svc, store := newMemService(t)
	ctx := context.Background()

	toggle(t, svc, "reflect", "")
	store.fail.insertUnlock = true
	res := toggle(t, svc, "plan", "")
	assert.Equal(t, ActionCompleted, res.Action)
	assert.Empty(t, res.NewAchievements, "failed unlock write is not reported")

	events, err := store.ListCompletions(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, events, 2, "completion kept")

	store.fail.insertUnlock = false
	rec, err := svc.RecomputeSnapshot(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rec.NewAchievements, 1)
	assert.Equal(t, "perfect_day", rec.NewAchievements[0].Definition.ID)
	require.NotNil(t, rec.NewAchievements[0].UnlockedAt)

	rec, err = svc.RecomputeSnapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, rec.NewAchievements, "unlocks fire once")
}

// unlockBarrier holds ListUnlocks callers until two have arrived, so both
// passes evaluate against the same empty unlock set.
type unlockBarrier struct {
	*storage.MemoryStore
	mu      sync.Mutex
	waiting int
	release chan struct{}
}

func (b *unlockBarrier) ListUnlocks(ctx context.Context, userID string) ([]storage.AchievementUnlock, error) {
	if b.release != nil {
		b.mu.Lock()
		b.waiting++
		if b.waiting == 2 {
			close(b.release)
		}
		b.mu.Unlock()
		<-b.release
	}
	return b.MemoryStore.ListUnlocks(ctx, userID)
}

func TestRecomputeConcurrentUnlockFiresOnce(t *testing.T) {
	ctx := context.Background()
	store := &unlockBarrier{MemoryStore: storage.NewMemoryStore()}
	svc := NewService(store, testCatalog(),
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return testNow }))

	_, err := svc.SyncCatalog(ctx)
	require.NoError(t, err)
	for i, h := range []string{"reflect", "plan"} {
		require.NoError(t, svc.Subscribe(ctx, "u1", h))
		require.NoError(t, store.InsertCompletion(ctx, storage.Completion{
			ID: fmt.Sprintf("c%d", i), UserID: "u1", HabitID: h, Date: day("2026-03-10"), PointsEarned: 1, CreatedAt: testNow,
		}))
	}

	store.release = make(chan struct{})
	results := make([]*RecomputeResult, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.RecomputeSnapshot(ctx, "u1")
		}(i)
	}
	wg.Wait()

	fired := 0
	for i := range results {
		require.NoError(t, errs[i])
		for _, a := range results[i].NewAchievements {
			if a.Definition.ID == "perfect_day" {
				fired++
			}
		}
	}
	assert.Equal(t, 1, fired)

	unlocks, err := store.ListUnlocks(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, unlocks, 1)
}

func TestStreakAchievementFiresOnceAsDaysPass(t *testing.T) {
	ctx := context.Background()
	cat := &catalog.Catalog{
		Habits: []catalog.Habit{{ID: "reflect", Title: "Reflect", Category: catalog.CategoryMindset, Points: 3}},
		Achievements: []catalog.AchievementDefinition{
			{ID: "two_in_a_row", Title: "Two in a Row", Type: catalog.TypeStreak, Requirement: 2, Tier: catalog.TierBronze},
			{ID: "week_warrior", Title: "Week Warrior", Type: catalog.TypeStreak, Requirement: 7, Tier: catalog.TierSilver},
		},
	}
	now := testNow
	svc := NewService(storage.NewMemoryStore(), cat,
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return now }))
	_, err := svc.SyncCatalog(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Subscribe(ctx, "u1", "reflect"))

	firedOn := map[string][]int{}
	for i := 1; i <= 20; i++ {
		res, err := svc.ToggleCompletion(ctx, "u1", ToggleInput{HabitID: "reflect"})
		require.NoError(t, err)
		require.Equal(t, ActionCompleted, res.Action)
		assert.Equal(t, i, res.Snapshot.CurrentStreak)
		for _, a := range res.NewAchievements {
			firedOn[a.Definition.ID] = append(firedOn[a.Definition.ID], i)
		}
		now = now.Add(24 * time.Hour)
	}

	assert.Equal(t, []int{2}, firedOn["two_in_a_row"])
	assert.Equal(t, []int{7}, firedOn["week_warrior"])
}

func TestAchievementsAreNeverRevoked(t *testing.T) {
	svc, _ := newMemService(t)
	ctx := context.Background()

	toggle(t, svc, "reflect", "")
	res := toggle(t, svc, "plan", "")
	require.Len(t, res.NewAchievements, 1)

	toggle(t, svc, "plan", "")
	dash, err := svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	for _, a := range dash.Achievements {
		if a.Definition.ID == "perfect_day" {
			assert.True(t, a.Unlocked)
			assert.NotNil(t, a.UnlockedAt)
			assert.Equal(t, 100.0, a.Percent())
		}
	}
}

func TestChallengeCompletesAndStays(t *testing.T) {
	svc, _ := newMemService(t)
	ctx := context.Background()

	toggle(t, svc, "reflect", "2026-03-08")
	res := toggle(t, svc, "reflect", "2026-03-09")
	require.Len(t, res.ChallengeUpdates, 1)
	assert.Equal(t, ChallengeActive, res.ChallengeUpdates[0].Status)
	assert.Equal(t, 2, res.ChallengeUpdates[0].Progress)

	res = toggle(t, svc, "reflect", "")
	require.Len(t, res.ChallengeUpdates, 1)
	assert.Equal(t, ChallengeCompleted, res.ChallengeUpdates[0].Status)

	res = toggle(t, svc, "reflect", "")
	assert.Empty(t, res.ChallengeUpdates)

	dash, err := svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, dash.Challenges, 1)
	assert.Equal(t, ChallengeCompleted, dash.Challenges[0].Status)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	svc, _ := newMemService(t)
	ctx := context.Background()

	toggle(t, svc, "reflect", "2026-03-09")
	toggle(t, svc, "plan", "")

	first, err := svc.RecomputeSnapshot(ctx, "u1")
	require.NoError(t, err)
	second, err := svc.RecomputeSnapshot(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, first.Snapshot, second.Snapshot)
}

func TestSubscriptions(t *testing.T) {
	svc, _ := newMemService(t)
	ctx := context.Background()

	list, err := svc.ListHabits(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2, "retired habits are hidden")
	for _, l := range list {
		assert.True(t, l.Subscribed)
	}

	require.NoError(t, svc.Unsubscribe(ctx, "u1", "plan"))
	var nf NotFoundError
	assert.ErrorAs(t, svc.Unsubscribe(ctx, "u1", "plan"), &nf)
	assert.ErrorAs(t, svc.Subscribe(ctx, "u1", "old"), &nf)

	dash, err := svc.Dashboard(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, dash.Habits, 1)
	assert.Equal(t, "reflect", dash.Habits[0].Habit.ID)

	n, err := svc.SubscribeDefaults(ctx, "u2", "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestServiceOnSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(ctx, storage.DialectSQLite, path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	svc := NewService(storage.NewSQLStore(db, storage.DialectSQLite), testCatalog(),
		WithClock(func() time.Time { return testNow }))
	if _, err := svc.SyncCatalog(ctx); err != nil {
		t.Fatalf("SyncCatalog: %v", err)
	}
	if err := svc.Subscribe(ctx, "u1", "reflect"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	res, err := svc.ToggleCompletion(ctx, "u1", ToggleInput{HabitID: "reflect"})
	if err != nil {
		t.Fatalf("ToggleCompletion: %v", err)
	}
	if res.Action != ActionCompleted || res.Snapshot.TotalPoints != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(res.NewAchievements) != 1 || res.NewAchievements[0].Definition.ID != "perfect_day" {
		t.Fatalf("expected perfect_day unlock, got %+v", res.NewAchievements)
	}

	res, err = svc.ToggleCompletion(ctx, "u1", ToggleInput{HabitID: "reflect"})
	if err != nil {
		t.Fatalf("ToggleCompletion (undo): %v", err)
	}
	if res.Action != ActionRemoved || res.Snapshot.TotalPoints != 0 {
		t.Fatalf("unexpected undo result: %+v", res)
	}

	dash, err := svc.Dashboard(ctx, "u1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if got := dash.UnlockedCount(); got != 1 {
		t.Fatalf("UnlockedCount=%d, want 1", got)
	}
}
