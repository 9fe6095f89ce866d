package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avolkov/studytrack/internal/auth"
	"github.com/avolkov/studytrack/internal/domain"
)

// Refresh rotates the refresh token and returns a new token pair.
// A token that is unknown, revoked or expired returns ErrUnauthorized;
// unknown hashes also cover reuse of an already-rotated token.
func (s *Service) Refresh(ctx context.Context, input RefreshInput) (*AuthResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	hash := auth.HashToken(input.RefreshToken)

	token, err := s.tokens.GetRefreshByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "refresh token reuse attempted")
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("identity.Refresh get token: %w", err)
	}

	if token.IsExpired(time.Now()) {
		return nil, domain.ErrUnauthorized
	}

	cred, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "refresh for deleted user",
				slog.String("user_id", token.UserID.String()))
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("identity.Refresh get user: %w", err)
	}
	if cred.User.Disabled {
		return nil, domain.ErrUnauthorized
	}

	if err := s.tokens.RevokeRefreshByID(ctx, token.ID); err != nil {
		return nil, fmt.Errorf("identity.Refresh revoke token: %w", err)
	}

	result, err := s.issueTokens(ctx, &cred.User)
	if err != nil {
		return nil, fmt.Errorf("identity.Refresh issue tokens: %w", err)
	}
	return result, nil
}
