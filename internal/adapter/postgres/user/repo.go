// Package user implements the User repository using PostgreSQL.
package user

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

const table = "users"

var columns = []string{"id", "email", "display_name", "password_hash", "disabled", "created_at", "updated_at"}

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// GetByID returns a user by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Credential, error) {
	return r.getWhere(ctx, sq.Eq{"id": id}, id)
}

// GetByEmail returns a user by email address (stored lowercased).
func (r *Repo) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	return r.getWhere(ctx, sq.Eq{"email": email}, uuid.Nil)
}

func (r *Repo) getWhere(ctx context.Context, where sq.Eq, id uuid.UUID) (*domain.Credential, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.Select(columns...).From(table).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	var rec domain.Credential
	err = q.QueryRow(ctx, sql, args...).Scan(
		&rec.User.ID, &rec.User.Email, &rec.User.DisplayName, &rec.PasswordHash,
		&rec.User.Disabled, &rec.User.CreatedAt, &rec.User.UpdatedAt,
	)
	if err != nil {
		return nil, postgres.MapError(err, "user", id)
	}

	return &rec, nil
}

// Create inserts a new user with its password hash and returns the persisted
// record. A duplicate email maps to domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, u *domain.User, passwordHash string) (*domain.Credential, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Insert(table).
		Columns(columns...).
		Values(u.ID, u.Email, u.DisplayName, passwordHash, u.Disabled, u.CreatedAt, u.UpdatedAt).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	rec := domain.Credential{User: *u, PasswordHash: passwordHash}
	if err := q.QueryRow(ctx, sql, args...).Scan(&rec.User.CreatedAt, &rec.User.UpdatedAt); err != nil {
		return nil, postgres.MapError(err, "user", u.ID)
	}

	return &rec, nil
}

// UpdateDisplayName sets the user's display name.
func (r *Repo) UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) (*domain.Credential, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Update(table).
		Set("display_name", name).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "user", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return r.GetByID(ctx, id)
}

// UpdatePasswordHash replaces the stored credential hash.
func (r *Repo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Update(table).
		Set("password_hash", passwordHash).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "user", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
