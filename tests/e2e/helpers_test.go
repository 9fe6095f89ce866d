//go:build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avolkov/studytrack/internal/adapter/postgres"
	subjectrepo "github.com/avolkov/studytrack/internal/adapter/postgres/subject"
	"github.com/avolkov/studytrack/internal/adapter/postgres/testhelper"
	tokenrepo "github.com/avolkov/studytrack/internal/adapter/postgres/token"
	userrepo "github.com/avolkov/studytrack/internal/adapter/postgres/user"
	authpkg "github.com/avolkov/studytrack/internal/auth"
	"github.com/avolkov/studytrack/internal/config"
	"github.com/avolkov/studytrack/internal/notify"
	"github.com/avolkov/studytrack/internal/service/identity"
	subjectsvc "github.com/avolkov/studytrack/internal/service/subject"
	"github.com/avolkov/studytrack/internal/store"
	"github.com/avolkov/studytrack/internal/transport/middleware"
	"github.com/avolkov/studytrack/internal/transport/rest"
)

// ---------------------------------------------------------------------------
// testServer wraps the full-stack HTTP server for E2E tests.
// ---------------------------------------------------------------------------

type testServer struct {
	URL    string
	Client *http.Client
	Pool   *pgxpool.Pool
	Mail   *mailRecorder
}

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

// mailRecorder captures password-reset mail instead of sending it.
type mailRecorder struct {
	mu   sync.Mutex
	sent []recordedMail
}

type recordedMail struct {
	To       string
	ResetURL string
}

func (m *mailRecorder) SendPasswordReset(_ context.Context, to, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, recordedMail{To: to, ResetURL: resetURL})
	return nil
}

func (m *mailRecorder) last(t *testing.T) recordedMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "expected at least one mail")
	return m.sent[len(m.sent)-1]
}

// ---------------------------------------------------------------------------
// setupTestServer bootstraps the full application stack backed by
// a real PostgreSQL container (shared via testhelper).
// ---------------------------------------------------------------------------

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	pool := testhelper.SetupTestDB(t)

	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, nil))
	txm := postgres.NewTxManager(pool)

	users := userrepo.New(pool)
	tokens := tokenrepo.New(pool)
	subjects := subjectrepo.New(pool)

	jwtMgr := authpkg.NewJWTManager("test-secret-at-least-32-chars-long!!", "test-issuer", 15*time.Minute)

	mail := &mailRecorder{}

	authCfg := config.AuthConfig{
		JWTSecret:        "test-secret-at-least-32-chars-long!!",
		JWTIssuer:        "test-issuer",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  720 * time.Hour,
		ResetTokenTTL:    time.Hour,
		PasswordHashCost: bcrypt.MinCost,
	}

	identitySvc := identity.NewService(logger, users, tokens, txm, jwtMgr, mail, authCfg, "http://localhost/reset")

	notifier := notify.NewMemory()
	t.Cleanup(func() { notifier.Close() })

	liveStore := store.NewLive(subjects, notifier, logger)
	subjectSvc := subjectsvc.NewService(logger, liveStore)

	metrics := middleware.NewHTTPMetrics()
	limiter := middleware.NewRateLimiter(time.Minute)
	t.Cleanup(limiter.Stop)

	cfg := config.Config{
		Auth: authCfg,
		CORS: config.CORSConfig{
			AllowedOrigins:   "*",
			AllowedMethods:   "GET,POST,PUT,DELETE,OPTIONS",
			AllowedHeaders:   "Authorization,Content-Type",
			AllowCredentials: true,
			MaxAge:           86400,
		},
		RateLimit: config.RateLimitConfig{
			AuthPerMinute:   1000,
			CleanupInterval: time.Minute,
		},
	}

	authH := rest.NewAuthHandler(identitySvc, logger)
	subjectH := rest.NewSubjectHandler(subjectSvc, logger)
	watchH := rest.NewWatchHandler(subjectSvc, logger)
	healthH := rest.NewHealthHandler(pool, nil, "test-version")

	router := rest.NewRouter(logger, authH, subjectH, watchH, healthH, identitySvc, metrics, limiter, cfg)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{
		URL:    srv.URL,
		Client: srv.Client(),
		Pool:   pool,
		Mail:   mail,
	}
}

// ---------------------------------------------------------------------------
// HTTP helpers
// ---------------------------------------------------------------------------

// doJSON sends a JSON request and returns status + decoded body. token may be
// empty for anonymous requests; body may be nil for bodyless requests.
func (ts *testServer) doJSON(t *testing.T, method, path string, body any, token string) (int, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	if resp.ContentLength != 0 {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp.StatusCode, out
}

// signUp registers a fresh user and returns its tokens and email.
func (ts *testServer) signUp(t *testing.T) (accessToken, refreshToken, email string) {
	t.Helper()

	email = fmt.Sprintf("e2e-%s@example.com", uuid.New().String()[:8])
	status, body := ts.doJSON(t, http.MethodPost, "/auth/signup", map[string]any{
		"displayName": "E2E User",
		"email":       email,
		"password":    "correct-horse-battery",
	}, "")
	require.Equal(t, http.StatusCreated, status, "signup response: %v", body)

	accessToken, _ = body["accessToken"].(string)
	refreshToken, _ = body["refreshToken"].(string)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	return accessToken, refreshToken, email
}

// createSubject creates a subject and returns its id.
func (ts *testServer) createSubject(t *testing.T, token, name string) string {
	t.Helper()

	status, body := ts.doJSON(t, http.MethodPost, "/subjects", map[string]any{"name": name}, token)
	require.Equal(t, http.StatusCreated, status, "create subject response: %v", body)

	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

// listSubjects returns the decoded subject list.
func (ts *testServer) listSubjects(t *testing.T, token string) []map[string]any {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/subjects", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := ts.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var subjects []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&subjects))
	return subjects
}
