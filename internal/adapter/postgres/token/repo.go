// Package token implements refresh and password-reset token persistence
// using PostgreSQL.
package token

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkov/studytrack/internal/adapter/postgres"
	"github.com/avolkov/studytrack/internal/domain"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo provides token persistence backed by PostgreSQL. Only SHA-256 hashes
// are stored; raw tokens exist client-side only.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new token repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Refresh tokens
// ---------------------------------------------------------------------------

// CreateRefresh inserts a refresh token, assigning its id.
func (r *Repo) CreateRefresh(ctx context.Context, t *domain.RefreshToken) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	sql, args, err := builder.
		Insert("refresh_tokens").
		Columns("id", "user_id", "token_hash", "expires_at", "created_at").
		Values(t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "refresh_token", t.ID)
	}

	return nil
}

// GetRefreshByHash returns a non-revoked refresh token by its hash.
// Revoked tokens are invisible here so that reuse reads as ErrNotFound.
func (r *Repo) GetRefreshByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select("id", "user_id", "token_hash", "expires_at", "created_at", "revoked_at").
		From("refresh_tokens").
		Where(sq.Eq{"token_hash": tokenHash, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var t domain.RefreshToken
	err = q.QueryRow(ctx, sql, args...).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt, &t.RevokedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "refresh_token", uuid.Nil)
	}

	return &t, nil
}

// RevokeRefreshByID marks one refresh token revoked.
func (r *Repo) RevokeRefreshByID(ctx context.Context, id uuid.UUID) error {
	return r.revokeRefresh(ctx, sq.Eq{"id": id}, id)
}

// RevokeAllRefreshByUser revokes every live refresh token of one user.
func (r *Repo) RevokeAllRefreshByUser(ctx context.Context, userID uuid.UUID) error {
	return r.revokeRefresh(ctx, sq.Eq{"user_id": userID, "revoked_at": nil}, userID)
}

func (r *Repo) revokeRefresh(ctx context.Context, where sq.Eq, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Update("refresh_tokens").
		Set("revoked_at", time.Now().UTC()).
		Where(where).
		ToSql()
	if err != nil {
		return fmt.Errorf("build revoke query: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "refresh_token", id)
	}

	return nil
}

// DeleteExpiredRefresh removes expired refresh tokens and returns the count.
func (r *Repo) DeleteExpiredRefresh(ctx context.Context) (int, error) {
	return r.deleteExpired(ctx, "refresh_tokens")
}

// ---------------------------------------------------------------------------
// Password-reset tokens
// ---------------------------------------------------------------------------

// CreateReset inserts a password-reset token, assigning its id.
func (r *Repo) CreateReset(ctx context.Context, t *domain.PasswordResetToken) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	sql, args, err := builder.
		Insert("password_reset_tokens").
		Columns("id", "user_id", "token_hash", "expires_at", "created_at").
		Values(t.ID, t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert query: %w", err)
	}

	if _, err := q.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "password_reset_token", t.ID)
	}

	return nil
}

// GetResetByHash returns an unused password-reset token by its hash.
func (r *Repo) GetResetByHash(ctx context.Context, tokenHash string) (*domain.PasswordResetToken, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select("id", "user_id", "token_hash", "expires_at", "created_at", "used_at").
		From("password_reset_tokens").
		Where(sq.Eq{"token_hash": tokenHash, "used_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var t domain.PasswordResetToken
	err = q.QueryRow(ctx, sql, args...).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt, &t.UsedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "password_reset_token", uuid.Nil)
	}

	return &t, nil
}

// MarkResetUsed consumes a password-reset token. Consuming an already-used
// token maps to domain.ErrNotFound, which callers treat as invalid.
func (r *Repo) MarkResetUsed(ctx context.Context, id uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Update("password_reset_tokens").
		Set("used_at", time.Now().UTC()).
		Where(sq.Eq{"id": id, "used_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "password_reset_token", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("password_reset_token %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteExpiredReset removes expired reset tokens and returns the count.
func (r *Repo) DeleteExpiredReset(ctx context.Context) (int, error) {
	return r.deleteExpired(ctx, "password_reset_tokens")
}

// ---------------------------------------------------------------------------
// Shared
// ---------------------------------------------------------------------------

func (r *Repo) deleteExpired(ctx context.Context, table string) (int, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Delete(table).
		Where(sq.Lt{"expires_at": time.Now().UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete query: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, postgres.MapError(err, table, uuid.Nil)
	}

	return int(tag.RowsAffected()), nil
}
