package progress

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/phase-progress-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, cfg *config.Config, store Store) *fiber.App {
	t.Helper()
	plugin := New(NewProgressService(store))
	app := fiber.New()
	group := app.Group("/api/"+plugin.ID(), middleware.Identity(cfg))
	plugin.RegisterRoutes(group, nil, cfg)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers ...string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func offlineConfig() *config.Config {
	return &config.Config{OfflineMode: true, DefaultUserID: "test-user"}
}

func TestOfflineScenario(t *testing.T) {
	app := newTestApp(t, offlineConfig(), NewMemoryStore())

	status, body := doJSON(t, app, http.MethodGet, "/api/progress", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "detail", body["currentPhase"])
	assert.Equal(t, false, body["onboardingCompleted"])

	status, body = doJSON(t, app, http.MethodPost, "/api/progress/update-after-evaluation", `{"phase":"detail","score":9.5}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "detail", body["phase"])
	assert.Equal(t, 1.0, body["attempts"])
	assert.Equal(t, 9.5, body["bestScore"])
	assert.Equal(t, true, body["completed"])
	assert.Equal(t, "concise", body["phaseUnlocked"])

	status, body = doJSON(t, app, http.MethodGet, "/api/progress", "")
	require.Equal(t, http.StatusOK, status)
	phases := body["phaseProgress"].(map[string]any)
	concise := phases["concise"].(map[string]any)
	assert.Equal(t, false, concise["locked"])

	status, body = doJSON(t, app, http.MethodPost, "/api/progress/phase", `{"phase":"concise"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "concise", body["currentPhase"])
	assert.Contains(t, body, "phaseProgress")
}

func TestRecordEvaluationResponseHasNullUnlock(t *testing.T) {
	app := newTestApp(t, offlineConfig(), NewMemoryStore())

	status, body := doJSON(t, app, http.MethodPost, "/api/progress/update-after-evaluation", `{"phase":"detail","score":4}`)
	require.Equal(t, http.StatusOK, status)
	v, ok := body["phaseUnlocked"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestRecordEvaluationBadRequests(t *testing.T) {
	app := newTestApp(t, offlineConfig(), NewMemoryStore())

	testCases := []struct {
		name string
		body string
		want string
	}{
		{"missing phase", `{"score":9}`, "Please provide both phase and score"},
		{"missing score", `{"phase":"detail"}`, "Please provide both phase and score"},
		{"null score", `{"phase":"detail","score":null}`, "Please provide both phase and score"},
		{"unknown phase", `{"phase":"poetic","score":9}`, "Valid phase is required"},
		{"non numeric score", `{"phase":"detail","score":"nine"}`, "Invalid request body"},
		{"malformed", `{"phase":`, "Invalid request body"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, app, http.MethodPost, "/api/progress/update-after-evaluation", tc.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, tc.want, body["error"])
		})
	}
}

func TestChangePhaseErrors(t *testing.T) {
	app := newTestApp(t, offlineConfig(), NewMemoryStore())

	status, body := doJSON(t, app, http.MethodPost, "/api/progress/phase", `{"phase":"creative"}`)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Phase is locked", body["error"])

	status, _ = doJSON(t, app, http.MethodPost, "/api/progress/phase", `{"phase":"advanced"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/api/progress/phase", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)

	_, body = doJSON(t, app, http.MethodGet, "/api/progress", "")
	assert.Equal(t, "detail", body["currentPhase"])
}

func TestCompleteOnboardingTwice(t *testing.T) {
	app := newTestApp(t, offlineConfig(), NewMemoryStore())

	for i := 0; i < 2; i++ {
		status, body := doJSON(t, app, http.MethodPost, "/api/progress/onboarding-complete", "")
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, map[string]any{"onboardingCompleted": true}, body)
	}
}

func TestLegacyUpdateIsGone(t *testing.T) {
	app := newTestApp(t, offlineConfig(), NewMemoryStore())

	for _, payload := range []string{"", `{}`, `{"phase":"detail","score":10}`, `not json`} {
		status, body := doJSON(t, app, http.MethodPost, "/api/progress", payload)
		assert.Equal(t, http.StatusGone, status)
		assert.Equal(t, "This endpoint is deprecated; use /api/evaluate", body["error"])
	}
}

func TestOnlineMissingUserIs404(t *testing.T) {
	cfg := &config.Config{DefaultUserID: "test-user"}
	app := newTestApp(t, cfg, NewGormStore(openTestDB(t)))

	requests := []struct{ method, path, body string }{
		{http.MethodGet, "/api/progress", ""},
		{http.MethodPost, "/api/progress/update-after-evaluation", `{"phase":"detail","score":9}`},
		{http.MethodPost, "/api/progress/phase", `{"phase":"detail"}`},
		{http.MethodPost, "/api/progress/onboarding-complete", ""},
	}
	for _, r := range requests {
		status, body := doJSON(t, app, r.method, r.path, r.body)
		assert.Equal(t, http.StatusNotFound, status, r.path)
		assert.Equal(t, "User not found", body["error"], r.path)
	}
}

func TestBodyUserIDSelectsRecordWithoutAuth(t *testing.T) {
	store := NewGormStore(openTestDB(t))
	require.NoError(t, store.Create(context.Background(), "learner-7"))
	app := newTestApp(t, &config.Config{DefaultUserID: "test-user"}, store)

	status, body := doJSON(t, app, http.MethodPost, "/api/progress/update-after-evaluation", `{"phase":"detail","score":6,"userId":"learner-7"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["attempts"])

	up, err := store.Find(context.Background(), "learner-7")
	require.NoError(t, err)
	assert.Equal(t, 1, up.PhaseProgress[PhaseDetail].Attempts)
}

func signToken(t *testing.T, secret, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTSubjectSelectsRecord(t *testing.T) {
	const secret = "test-secret"
	store := NewMemoryStore()
	cfg := &config.Config{OfflineMode: true, DefaultUserID: "test-user", JWTSecret: secret}
	app := newTestApp(t, cfg, store)

	status, _ := doJSON(t, app, http.MethodGet, "/api/progress", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, app, http.MethodGet, "/api/progress", "", "Authorization", "Bearer "+signToken(t, "wrong", "alice"))
	assert.Equal(t, http.StatusUnauthorized, status)

	auth := "Bearer " + signToken(t, secret, "alice")
	// body userId is ignored once tokens are verified
	status, _ = doJSON(t, app, http.MethodPost, "/api/progress/update-after-evaluation",
		`{"phase":"detail","score":9.5,"userId":"mallory"}`, "Authorization", auth)
	require.Equal(t, http.StatusOK, status)

	alice, err := store.Find(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.PhaseProgress[PhaseDetail].Attempts)

	mallory, err := store.Find(context.Background(), "mallory")
	require.NoError(t, err)
	assert.Equal(t, 0, mallory.PhaseProgress[PhaseDetail].Attempts)
}

func TestStoreFailureIs500(t *testing.T) {
	app := newTestApp(t, offlineConfig(), failingStore{err: errors.New("pq: connection refused")})

	status, body := doJSON(t, app, http.MethodGet, "/api/progress", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Server error", body["error"])

	status, body = doJSON(t, app, http.MethodPost, "/api/progress/phase", `{"phase":"detail"}`)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body["error"], "pq")
}
