package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/avolkov/studytrack/internal/domain"
	"github.com/avolkov/studytrack/pkg/ctxutil"
)

// SetDisplayName updates the authenticated user's display name.
func (s *Service) SetDisplayName(ctx context.Context, name string) (*domain.User, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("display_name", "required")
	}
	if len(name) > 120 {
		return nil, domain.NewValidationError("display_name", "too long")
	}

	cred, err := s.users.UpdateDisplayName(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("identity.SetDisplayName: %w", err)
	}

	s.log.InfoContext(ctx, "display name updated",
		slog.String("user_id", userID.String()))

	return &cred.User, nil
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context) (*domain.User, error) {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	cred, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("identity.Me: %w", err)
	}
	return &cred.User, nil
}
