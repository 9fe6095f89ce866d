// Package subject implements the Subject document repository using PostgreSQL.
package subject

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkov/studytrack/internal/adapter/postgres"
	"github.com/avolkov/studytrack/internal/domain"
)

// builder produces PostgreSQL-flavored queries ($1 placeholders).
var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const table = "subjects"

var columns = []string{"id", "owner_id", "name", "topics", "created_at", "updated_at"}

// Repo provides subject-document persistence backed by PostgreSQL.
// Each subject row embeds its ordered topic list as a JSONB array; topic
// mutations are whole-array replaces, never element updates.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new subject repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ListByOwner returns all subjects of one owner, oldest first.
func (r *Repo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Subject, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "subjects", ownerID)
	}
	defer rows.Close()

	var out []domain.Subject
	for rows.Next() {
		s, err := scanSubject(rows.Scan)
		if err != nil {
			return nil, postgres.MapError(err, "subjects", ownerID)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, postgres.MapError(err, "subjects", ownerID)
	}

	return out, nil
}

// GetByID returns one subject, scoped to its owner.
func (r *Repo) GetByID(ctx context.Context, ownerID, subjectID uuid.UUID) (*domain.Subject, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": subjectID, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	s, err := scanSubject(q.QueryRow(ctx, sql, args...).Scan)
	if err != nil {
		return nil, postgres.MapError(err, "subject", subjectID)
	}

	return &s, nil
}

// Create inserts a new subject with an empty topic list and returns it with
// the store-assigned id and timestamps.
func (r *Repo) Create(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Subject, error) {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	id := uuid.New()
	now := time.Now().UTC()

	sql, args, err := builder.
		Insert(table).
		Columns(columns...).
		Values(id, ownerID, name, []byte("[]"), now, now).
		Suffix("RETURNING " + returning()).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	s, err := scanSubject(q.QueryRow(ctx, sql, args...).Scan)
	if err != nil {
		return nil, postgres.MapError(err, "subject", id)
	}

	return &s, nil
}

// ReplaceTopics overwrites the subject's whole topic array.
// Returns domain.ErrNotFound when the subject no longer exists.
func (r *Repo) ReplaceTopics(ctx context.Context, ownerID, subjectID uuid.UUID, topics []domain.Topic) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	if topics == nil {
		topics = []domain.Topic{}
	}
	payload, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("encode topics: %w", err)
	}

	sql, args, err := builder.
		Update(table).
		Set("topics", payload).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": subjectID, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update query: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "subject", subjectID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subject %s: %w", subjectID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes the subject document. The embedded topic list goes with it;
// there is nothing to cascade.
func (r *Repo) Delete(ctx context.Context, ownerID, subjectID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.pool)

	sql, args, err := builder.
		Delete(table).
		Where(sq.Eq{"id": subjectID, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete query: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "subject", subjectID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("subject %s: %w", subjectID, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row mapping
// ---------------------------------------------------------------------------

func returning() string {
	out := columns[0]
	for _, c := range columns[1:] {
		out += ", " + c
	}
	return out
}

// scanSubject maps one row into a domain.Subject, decoding the JSONB topic
// array.
func scanSubject(scan func(dest ...any) error) (domain.Subject, error) {
	var (
		s      domain.Subject
		topics []byte
	)
	if err := scan(&s.ID, &s.OwnerID, &s.Name, &topics, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return domain.Subject{}, err
	}

	if len(topics) > 0 {
		if err := json.Unmarshal(topics, &s.Topics); err != nil {
			return domain.Subject{}, fmt.Errorf("decode topics: %w", err)
		}
	}
	if s.Topics == nil {
		s.Topics = []domain.Topic{}
	}

	return s, nil
}
