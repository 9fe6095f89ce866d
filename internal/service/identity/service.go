// Package identity implements the identity gateway: sign-in, sign-up,
// token rotation, profile updates and password reset. Failures that the
// auth screens present to the user are classified as domain.GatewayError
// with a fixed user-facing message per kind.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/studytrack/internal/auth"
	"github.com/avolkov/studytrack/internal/config"
	"github.com/avolkov/studytrack/internal/domain"
)

// userRepo defines the user repository interface needed by the identity service.
type userRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Credential, error)
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
	Create(ctx context.Context, u *domain.User, passwordHash string) (*domain.Credential, error)
	UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) (*domain.Credential, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// tokenRepo defines the token repository interface needed by the identity service.
type tokenRepo interface {
	CreateRefresh(ctx context.Context, t *domain.RefreshToken) error
	GetRefreshByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshByID(ctx context.Context, id uuid.UUID) error
	RevokeAllRefreshByUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpiredRefresh(ctx context.Context) (int, error)

	CreateReset(ctx context.Context, t *domain.PasswordResetToken) error
	GetResetByHash(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error)
	MarkResetUsed(ctx context.Context, id uuid.UUID) error
	DeleteExpiredReset(ctx context.Context) (int, error)
}

// txManager defines the transaction manager interface needed by the identity service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// jwtManager defines the access token interface needed by the identity service.
type jwtManager interface {
	GenerateAccessToken(userID uuid.UUID) (string, error)
	ValidateAccessToken(token string) (uuid.UUID, error)
}

// emailSender defines the outbound mail interface needed by the identity service.
type emailSender interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}

// Service implements identity gateway operations.
type Service struct {
	log      *slog.Logger
	users    userRepo
	tokens   tokenRepo
	tx       txManager
	jwt      jwtManager
	mail     emailSender
	cfg      config.AuthConfig
	resetURL string
}

// NewService creates a new identity service instance.
func NewService(
	logger *slog.Logger,
	users userRepo,
	tokens tokenRepo,
	tx txManager,
	jwt jwtManager,
	mail emailSender,
	cfg config.AuthConfig,
	resetURLBase string,
) *Service {
	return &Service{
		log:      logger.With("service", "identity"),
		users:    users,
		tokens:   tokens,
		tx:       tx,
		jwt:      jwt,
		mail:     mail,
		cfg:      cfg,
		resetURL: resetURLBase,
	}
}

// issueTokens generates an access token and a rotating refresh token for the
// user, stores the refresh token hash, and returns an AuthResult.
func (s *Service) issueTokens(ctx context.Context, user *domain.User) (*AuthResult, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	rawRefresh, hashRefresh, err := auth.GenerateOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	refreshToken := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashRefresh,
		ExpiresAt: time.Now().Add(s.cfg.RefreshTokenTTL),
	}
	if err := s.tokens.CreateRefresh(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		User:         user,
	}, nil
}
