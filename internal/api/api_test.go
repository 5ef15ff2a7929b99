package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"execedge/internal/auth"
	"execedge/internal/catalog"
	"execedge/internal/engine"
	"execedge/internal/storage"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  map[string]any  `json:"meta"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type fixture struct {
	router http.Handler
	token  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	store := storage.NewMemoryStore()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := engine.NewService(store, catalog.Default(),
		engine.WithLogger(log),
		engine.WithClock(func() time.Time { return now }))
	_, err := svc.SyncCatalog(ctx)
	require.NoError(t, err)

	provider := auth.NewProvider(store, log)
	u, err := provider.CreateUser(ctx, "Dana")
	require.NoError(t, err)
	require.NoError(t, svc.Subscribe(ctx, u.ID, "morning_intention"))

	return &fixture{router: NewServer(svc, provider, log).Router(), token: u.Token}
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func TestHealthzIsPublic(t *testing.T) {
	f := newFixture(t)
	f.token = ""
	w, _ := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestToggleRequiresToken(t *testing.T) {
	f := newFixture(t)

	f.token = ""
	w, env := f.do(t, http.MethodPost, "/api/habits/toggle", map[string]any{"habit_id": "morning_intention"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)

	f.token = "not-a-token"
	w, _ = f.do(t, http.MethodPost, "/api/habits/toggle", map[string]any{"habit_id": "morning_intention"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestToggleRoundTrip(t *testing.T) {
	f := newFixture(t)

	w, env := f.do(t, http.MethodPost, "/api/habits/toggle", map[string]any{"habit_id": "morning_intention", "notes": "calm start"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res toggleResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, engine.ActionCompleted, res.Action)
	require.NotNil(t, res.PointsEarned)
	assert.Nil(t, res.PointsLost)
	assert.Equal(t, *res.PointsEarned, res.TotalPoints)
	assert.Equal(t, 1, res.CurrentStreak)
	assert.Equal(t, "2026-03-10", res.CompletionDate)
	assert.Contains(t, res.AchievementsEarned, "Perfect Day")

	w, env = f.do(t, http.MethodPost, "/api/habits/toggle", map[string]any{"habit_id": "morning_intention"})
	require.Equal(t, http.StatusOK, w.Code)
	res = toggleResponse{}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, engine.ActionRemoved, res.Action)
	require.NotNil(t, res.PointsLost)
	assert.Equal(t, 0, res.TotalPoints)
	assert.Empty(t, res.AchievementsEarned)
}

func TestToggleErrors(t *testing.T) {
	f := newFixture(t)

	w, _ := f.do(t, http.MethodPost, "/api/habits/toggle", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/habits/toggle", map[string]any{"habit_id": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/habits/toggle", map[string]any{"habit_id": "morning_intention", "completion_date": "2026-03-11"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPost, "/api/habits/toggle", map[string]any{"habit_id": "morning_intention", "completion_date": "last tuesday"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProgressAndRecompute(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/habits/toggle", map[string]any{"habit_id": "morning_intention", "completion_date": "yesterday"})

	w, env := f.do(t, http.MethodGet, "/api/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snap snapshotView
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, 1, snap.CurrentStreak, "yesterday counts while today is open")
	assert.Equal(t, 0, snap.CompletedToday)
	assert.Equal(t, 1, snap.CompletedThisWeek)

	w, env = f.do(t, http.MethodPost, "/api/progress/recompute", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var again snapshotView
	require.NoError(t, json.Unmarshal(env.Data, &again))
	assert.Equal(t, snap, again)
}

func TestHabitsAndSubscriptions(t *testing.T) {
	f := newFixture(t)

	w, env := f.do(t, http.MethodGet, "/api/habits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var habits []habitView
	require.NoError(t, json.Unmarshal(env.Data, &habits))
	require.NotEmpty(t, habits)

	w, _ = f.do(t, http.MethodPost, "/api/habits/deep_work_block/subscribe", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = f.do(t, http.MethodDelete, "/api/habits/deep_work_block/subscribe", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = f.do(t, http.MethodDelete, "/api/habits/deep_work_block/subscribe", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAchievementsAndChallenges(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/habits/toggle", map[string]any{"habit_id": "morning_intention"})

	w, env := f.do(t, http.MethodGet, "/api/achievements", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []achievementView
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.NotEmpty(t, list)
	for _, a := range list {
		assert.GreaterOrEqual(t, a.Percent, 0.0)
		assert.LessOrEqual(t, a.Percent, 100.0)
		if a.ID == "perfect_day" {
			assert.True(t, a.Unlocked)
			assert.NotNil(t, a.UnlockedAt)
		}
	}

	w, env = f.do(t, http.MethodGet, "/api/challenges", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var challenges []challengeView
	require.NoError(t, json.Unmarshal(env.Data, &challenges))
	assert.NotEmpty(t, challenges)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(engine.ValidationError{Field: "x"}))
	assert.Equal(t, http.StatusUnauthorized, statusFor(engine.ErrUnauthenticated))
	assert.Equal(t, http.StatusNotFound, statusFor(engine.NotFoundError{Kind: "habit"}))
	assert.Equal(t, http.StatusConflict, statusFor(engine.StoreError{Op: "insert", Err: storage.ErrConflict}))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(engine.StoreError{Op: "insert", Err: context.DeadlineExceeded}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
