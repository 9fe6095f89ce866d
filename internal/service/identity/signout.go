package identity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avolkov/studytrack/internal/domain"
	"github.com/avolkov/studytrack/pkg/ctxutil"
)

// SignOut revokes all refresh tokens for the authenticated user.
// Returns ErrUnauthorized if no userID is found in context.
func (s *Service) SignOut(ctx context.Context) error {
	userID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := s.tokens.RevokeAllRefreshByUser(ctx, userID); err != nil {
		return fmt.Errorf("identity.SignOut: %w", err)
	}

	s.log.InfoContext(ctx, "user signed out", slog.String("user_id", userID.String()))
	return nil
}

// ValidateToken validates an access token and returns the user ID.
// Returns ErrUnauthorized if the token is invalid or expired.
func (s *Service) ValidateToken(ctx context.Context, token string) (uuid.UUID, error) {
	userID, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return userID, nil
}

// CleanupExpiredTokens removes expired refresh and reset tokens.
// Returns the number of tokens deleted. This is a maintenance operation.
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int, error) {
	refresh, err := s.tokens.DeleteExpiredRefresh(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "token cleanup failed", slog.String("error", err.Error()))
		return 0, fmt.Errorf("identity.CleanupExpiredTokens refresh: %w", err)
	}

	reset, err := s.tokens.DeleteExpiredReset(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "token cleanup failed", slog.String("error", err.Error()))
		return refresh, fmt.Errorf("identity.CleanupExpiredTokens reset: %w", err)
	}

	if refresh+reset > 0 {
		s.log.InfoContext(ctx, "cleaned up expired tokens",
			slog.Int("refresh", refresh), slog.Int("reset", reset))
	}

	return refresh + reset, nil
}
