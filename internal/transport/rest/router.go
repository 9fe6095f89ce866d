package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avolkov/studytrack/internal/config"
	"github.com/avolkov/studytrack/internal/transport/middleware"
)

// TokenValidator resolves an access token into a user ID.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (uuid.UUID, error)
}

// NewRouter builds the HTTP mux. The base middleware chain (request ID,
// logging, recovery, CORS) wraps every route; auth endpoints additionally
// get per-IP rate limiting, and bearer tokens on any route are resolved
// into the request context. Handlers reject unauthenticated requests via
// the service layer, so routes need no separate auth guard here.
func NewRouter(
	logger *slog.Logger,
	authH *AuthHandler,
	subjectH *SubjectHandler,
	watchH *WatchHandler,
	healthH *HealthHandler,
	validator TokenValidator,
	metrics *middleware.HTTPMetrics,
	limiter *middleware.RateLimiter,
	cfg config.Config,
) http.Handler {
	mux := http.NewServeMux()

	limited := limiter.Limit(cfg.RateLimit.AuthPerMinute)

	route := func(pattern, metricRoute string, h http.HandlerFunc, mws ...middleware.Middleware) {
		var handler http.Handler = h
		if len(mws) > 0 {
			handler = middleware.Chain(mws...)(handler)
		}
		mux.Handle(pattern, metrics.Measure(metricRoute)(handler))
	}

	// Identity.
	route("POST /auth/signup", "/auth/signup", authH.SignUp, limited)
	route("POST /auth/signin", "/auth/signin", authH.SignIn, limited)
	route("POST /auth/refresh", "/auth/refresh", authH.Refresh, limited)
	route("POST /auth/signout", "/auth/signout", authH.SignOut)
	route("POST /auth/password-reset", "/auth/password-reset", authH.PasswordReset, limited)
	route("POST /auth/password-reset/confirm", "/auth/password-reset/confirm", authH.PasswordResetConfirm, limited)
	route("GET /auth/me", "/auth/me", authH.Me)
	route("PUT /auth/me/display-name", "/auth/me/display-name", authH.UpdateDisplayName)

	// Subjects. /subjects/watch must register before the {id} wildcard
	// routes are matched; method+literal patterns take precedence in the
	// mux, so the order here is cosmetic.
	route("GET /subjects", "/subjects", subjectH.List)
	route("POST /subjects", "/subjects", subjectH.Create)
	route("GET /subjects/watch", "/subjects/watch", watchH.Watch)
	route("DELETE /subjects/{id}", "/subjects/{id}", subjectH.Delete)
	route("POST /subjects/{id}/topics", "/subjects/{id}/topics", subjectH.AddTopic)
	route("POST /subjects/{id}/topics/toggle", "/subjects/{id}/topics/toggle", subjectH.ToggleTopic)
	route("POST /subjects/{id}/topics/remove", "/subjects/{id}/topics/remove", subjectH.RemoveTopic)

	// Operational endpoints skip metrics and auth.
	mux.HandleFunc("GET /health", healthH.Health)
	mux.HandleFunc("GET /health/live", healthH.Live)
	mux.HandleFunc("GET /health/ready", healthH.Ready)
	mux.Handle("GET /metrics", promhttp.Handler())

	base := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
		middleware.Auth(validator),
	)
	return base(mux)
}
