package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avolkov/studytrack/internal/adapter/email"
	"github.com/avolkov/studytrack/internal/adapter/postgres"
	subjectrepo "github.com/avolkov/studytrack/internal/adapter/postgres/subject"
	tokenrepo "github.com/avolkov/studytrack/internal/adapter/postgres/token"
	userrepo "github.com/avolkov/studytrack/internal/adapter/postgres/user"
	"github.com/avolkov/studytrack/internal/auth"
	"github.com/avolkov/studytrack/internal/config"
	"github.com/avolkov/studytrack/internal/notify"
	"github.com/avolkov/studytrack/internal/service/identity"
	"github.com/avolkov/studytrack/internal/service/subject"
	"github.com/avolkov/studytrack/internal/store"
	"github.com/avolkov/studytrack/internal/transport/middleware"
	"github.com/avolkov/studytrack/internal/transport/rest"
)

// tokenCleanupInterval controls how often expired refresh and reset tokens
// are purged by the in-process janitor.
const tokenCleanupInterval = time.Hour

// Run is the application entry point. It loads configuration, wires the
// storage, notification, and service layers, and runs the HTTP server until
// ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, cfg.Database.DSN); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	var (
		notifier notify.Notifier
		cache    *notify.Redis
	)
	if cfg.Redis.URL != "" {
		cache, err = notify.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		notifier = cache
		logger.Info("live updates via redis pub/sub")
	} else {
		notifier = notify.NewMemory()
		logger.Info("live updates via in-process bus")
	}
	defer notifier.Close()

	users := userrepo.New(pool)
	tokens := tokenrepo.New(pool)
	subjects := subjectrepo.New(pool)
	txManager := postgres.NewTxManager(pool)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	var sender email.Sender
	switch cfg.Email.Provider {
	case "sendgrid":
		sender = email.NewSendGrid(cfg.Email.SendGridAPIKey, cfg.Email.FromName, cfg.Email.FromAddress)
	default:
		sender = email.NewConsole(logger)
	}

	identitySvc := identity.NewService(logger, users, tokens, txManager, jwtManager, sender, cfg.Auth, cfg.Email.ResetURLBase)

	liveStore := store.NewLive(subjects, notifier, logger)
	subjectSvc := subject.NewService(logger, liveStore)

	metrics := middleware.NewHTTPMetrics()
	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	defer limiter.Stop()

	var cachePinger rest.Pinger
	if cache != nil {
		cachePinger = cache
	}
	healthH := rest.NewHealthHandler(pool, cachePinger, BuildVersion())
	authH := rest.NewAuthHandler(identitySvc, logger)
	subjectH := rest.NewSubjectHandler(subjectSvc, logger)
	watchH := rest.NewWatchHandler(subjectSvc, logger)

	router := rest.NewRouter(logger, authH, subjectH, watchH, healthH, identitySvc, metrics, limiter, *cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(tokenCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if _, err := identitySvc.CleanupExpiredTokens(gctx); err != nil {
					logger.Warn("token cleanup failed", slog.Any("error", err))
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
