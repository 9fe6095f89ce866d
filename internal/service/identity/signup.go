package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avolkov/studytrack/internal/domain"
)

// SignUp creates a new account from display name, email and password, and
// signs the user in. A taken email comes back as a GatewayError so the
// register screen can show its fixed message.
func (s *Service) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := input.Validate(); err != nil {
		return nil, err
	}
	if !domain.ValidEmail(input.Email) {
		return nil, domain.NewGatewayError(domain.GatewayInvalidEmail, nil)
	}
	if len(input.Password) < domain.MinPasswordLength {
		return nil, domain.NewGatewayError(domain.GatewayWeakPassword, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.PasswordHashCost)
	if err != nil {
		return nil, fmt.Errorf("identity.SignUp hash password: %w", err)
	}

	// Email uniqueness is enforced by the DB constraint.
	var created *domain.User

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		now := time.Now()
		newUser := &domain.User{
			ID:          uuid.New(),
			Email:       input.Email,
			DisplayName: input.DisplayName,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		cred, err := s.users.Create(txCtx, newUser, string(hash))
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		created = &cred.User
		return nil
	})

	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewGatewayError(domain.GatewayEmailInUse, err)
		}
		return nil, fmt.Errorf("identity.SignUp: %w", err)
	}

	result, err := s.issueTokens(ctx, created)
	if err != nil {
		return nil, fmt.Errorf("identity.SignUp issue tokens: %w", err)
	}

	s.log.InfoContext(ctx, "user registered",
		slog.String("user_id", created.ID.String()))

	return result, nil
}
