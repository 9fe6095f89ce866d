package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/avolkov/studytrack/internal/domain"
)

// SignIn authenticates a user with email + password. Failures the sign-in
// screen shows to the user come back as *domain.GatewayError.
func (s *Service) SignIn(ctx context.Context, input SignInInput) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := input.Validate(); err != nil {
		return nil, err
	}
	if !domain.ValidEmail(input.Email) {
		return nil, domain.NewGatewayError(domain.GatewayInvalidEmail, nil)
	}

	cred, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewGatewayError(domain.GatewayAccountNotFound, err)
		}
		return nil, fmt.Errorf("identity.SignIn get user: %w", err)
	}

	if cred.User.Disabled {
		return nil, domain.NewGatewayError(domain.GatewayAccountDisabled, nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.NewGatewayError(domain.GatewayInvalidCredentials, nil)
	}

	result, err := s.issueTokens(ctx, &cred.User)
	if err != nil {
		return nil, fmt.Errorf("identity.SignIn issue tokens: %w", err)
	}

	s.log.InfoContext(ctx, "user signed in",
		slog.String("user_id", cred.User.ID.String()))

	return result, nil
}
