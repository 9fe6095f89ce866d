package email

import (
	"context"
	"log/slog"
)

// Console logs mail instead of sending it. Default for local development,
// where the reset link is read straight from the server log.
type Console struct {
	log *slog.Logger
}

// NewConsole creates a console sender.
func NewConsole(log *slog.Logger) *Console {
	return &Console{log: log.With(slog.String("component", "email"))}
}

func (c *Console) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	c.log.InfoContext(ctx, "password reset mail (console sender)",
		slog.String("to", to),
		slog.String("reset_url", resetURL),
	)
	return nil
}
