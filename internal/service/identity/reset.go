package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/avolkov/studytrack/internal/auth"
	"github.com/avolkov/studytrack/internal/domain"
)

// SendPasswordReset issues a single-use reset token and mails a reset link
// to the address. An unknown address comes back as a GatewayError so the
// screen can show its fixed message.
func (s *Service) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if !domain.ValidEmail(email) {
		return domain.NewGatewayError(domain.GatewayInvalidEmail, nil)
	}

	cred, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewGatewayError(domain.GatewayAccountNotFound, err)
		}
		return fmt.Errorf("identity.SendPasswordReset get user: %w", err)
	}

	raw, hash, err := auth.GenerateOpaqueToken()
	if err != nil {
		return fmt.Errorf("identity.SendPasswordReset generate token: %w", err)
	}

	resetToken := &domain.PasswordResetToken{
		UserID:    cred.User.ID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(s.cfg.ResetTokenTTL),
	}
	if err := s.tokens.CreateReset(ctx, resetToken); err != nil {
		return fmt.Errorf("identity.SendPasswordReset store token: %w", err)
	}

	resetURL := s.resetURL + "?token=" + raw
	if err := s.mail.SendPasswordReset(ctx, cred.User.Email, resetURL); err != nil {
		return fmt.Errorf("identity.SendPasswordReset send mail: %w", err)
	}

	s.log.InfoContext(ctx, "password reset mail sent",
		slog.String("user_id", cred.User.ID.String()))

	return nil
}

// ResetPassword consumes a reset token and replaces the user's password.
// The token, the password change and the revocation of existing sessions
// commit together.
func (s *Service) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	if len(input.NewPassword) < domain.MinPasswordLength {
		return domain.NewGatewayError(domain.GatewayWeakPassword, nil)
	}

	token, err := s.tokens.GetResetByHash(ctx, auth.HashToken(input.Token))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewValidationError("token", "invalid or expired")
		}
		return fmt.Errorf("identity.ResetPassword get token: %w", err)
	}
	if token.IsExpired(time.Now()) {
		return domain.NewValidationError("token", "invalid or expired")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), s.cfg.PasswordHashCost)
	if err != nil {
		return fmt.Errorf("identity.ResetPassword hash password: %w", err)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.tokens.MarkResetUsed(txCtx, token.ID); err != nil {
			return fmt.Errorf("consume token: %w", err)
		}
		if err := s.users.UpdatePasswordHash(txCtx, token.UserID, string(hash)); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := s.tokens.RevokeAllRefreshByUser(txCtx, token.UserID); err != nil {
			return fmt.Errorf("revoke sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Lost the race with another consumer of the same token.
			return domain.NewValidationError("token", "invalid or expired")
		}
		return fmt.Errorf("identity.ResetPassword: %w", err)
	}

	s.log.InfoContext(ctx, "password reset completed",
		slog.String("user_id", token.UserID.String()))

	return nil
}
