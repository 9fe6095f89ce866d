package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/avolkov/studytrack/internal/domain"
)

var (
	_ userRepo    = &userRepoMock{}
	_ tokenRepo   = &tokenRepoMock{}
	_ txManager   = &txManagerMock{}
	_ jwtManager  = &jwtManagerMock{}
	_ emailSender = &emailSenderMock{}
)

type userRepoMock struct {
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*domain.Credential, error)
	GetByEmailFunc         func(ctx context.Context, email string) (*domain.Credential, error)
	CreateFunc             func(ctx context.Context, u *domain.User, passwordHash string) (*domain.Credential, error)
	UpdateDisplayNameFunc  func(ctx context.Context, id uuid.UUID, name string) (*domain.Credential, error)
	UpdatePasswordHashFunc func(ctx context.Context, id uuid.UUID, passwordHash string) error
}

func (m *userRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Credential, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *userRepoMock) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	return m.GetByEmailFunc(ctx, email)
}

func (m *userRepoMock) Create(ctx context.Context, u *domain.User, passwordHash string) (*domain.Credential, error) {
	return m.CreateFunc(ctx, u, passwordHash)
}

func (m *userRepoMock) UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) (*domain.Credential, error) {
	return m.UpdateDisplayNameFunc(ctx, id, name)
}

func (m *userRepoMock) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return m.UpdatePasswordHashFunc(ctx, id, passwordHash)
}

type tokenRepoMock struct {
	CreateRefreshFunc          func(ctx context.Context, t *domain.RefreshToken) error
	GetRefreshByHashFunc       func(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	RevokeRefreshByIDFunc      func(ctx context.Context, id uuid.UUID) error
	RevokeAllRefreshByUserFunc func(ctx context.Context, userID uuid.UUID) error
	DeleteExpiredRefreshFunc   func(ctx context.Context) (int, error)
	CreateResetFunc            func(ctx context.Context, t *domain.PasswordResetToken) error
	GetResetByHashFunc         func(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error)
	MarkResetUsedFunc          func(ctx context.Context, id uuid.UUID) error
	DeleteExpiredResetFunc     func(ctx context.Context) (int, error)
}

func (m *tokenRepoMock) CreateRefresh(ctx context.Context, t *domain.RefreshToken) error {
	return m.CreateRefreshFunc(ctx, t)
}

func (m *tokenRepoMock) GetRefreshByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	return m.GetRefreshByHashFunc(ctx, tokenHash)
}

func (m *tokenRepoMock) RevokeRefreshByID(ctx context.Context, id uuid.UUID) error {
	return m.RevokeRefreshByIDFunc(ctx, id)
}

func (m *tokenRepoMock) RevokeAllRefreshByUser(ctx context.Context, userID uuid.UUID) error {
	return m.RevokeAllRefreshByUserFunc(ctx, userID)
}

func (m *tokenRepoMock) DeleteExpiredRefresh(ctx context.Context) (int, error) {
	return m.DeleteExpiredRefreshFunc(ctx)
}

func (m *tokenRepoMock) CreateReset(ctx context.Context, t *domain.PasswordResetToken) error {
	return m.CreateResetFunc(ctx, t)
}

func (m *tokenRepoMock) GetResetByHash(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	return m.GetResetByHashFunc(ctx, tokenHash)
}

func (m *tokenRepoMock) MarkResetUsed(ctx context.Context, id uuid.UUID) error {
	return m.MarkResetUsedFunc(ctx, id)
}

func (m *tokenRepoMock) DeleteExpiredReset(ctx context.Context) (int, error) {
	return m.DeleteExpiredResetFunc(ctx)
}

type txManagerMock struct {
	RunInTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.RunInTxFunc != nil {
		return m.RunInTxFunc(ctx, fn)
	}
	return fn(ctx)
}

type jwtManagerMock struct {
	GenerateAccessTokenFunc func(userID uuid.UUID) (string, error)
	ValidateAccessTokenFunc func(token string) (uuid.UUID, error)
}

func (m *jwtManagerMock) GenerateAccessToken(userID uuid.UUID) (string, error) {
	return m.GenerateAccessTokenFunc(userID)
}

func (m *jwtManagerMock) ValidateAccessToken(token string) (uuid.UUID, error) {
	return m.ValidateAccessTokenFunc(token)
}

type emailSenderMock struct {
	SendPasswordResetFunc func(ctx context.Context, to, resetURL string) error
}

func (m *emailSenderMock) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	return m.SendPasswordResetFunc(ctx, to, resetURL)
}
