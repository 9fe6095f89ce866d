// Command cleanup-tokens deletes expired refresh and password-reset tokens.
// The server runs the same cleanup on a timer; this command exists for
// deployments that prefer an external cron job.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/avolkov/studytrack/internal/adapter/postgres"
	"github.com/avolkov/studytrack/internal/adapter/postgres/token"
	"github.com/avolkov/studytrack/internal/app"
	"github.com/avolkov/studytrack/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	tokens := token.New(pool)

	refresh, err := tokens.DeleteExpiredRefresh(ctx)
	if err != nil {
		logger.Error("delete expired refresh tokens", slog.String("error", err.Error()))
		os.Exit(1)
	}

	reset, err := tokens.DeleteExpiredReset(ctx)
	if err != nil {
		logger.Error("delete expired reset tokens", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("token cleanup complete",
		slog.Int("refresh_deleted", refresh),
		slog.Int("reset_deleted", reset),
	)
}
