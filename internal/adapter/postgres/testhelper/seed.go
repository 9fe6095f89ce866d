package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkov/studytrack/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedUser creates a user with a fixed (already hashed) password.
// Returns a filled domain.User.
func SeedUser(t *testing.T, pool *pgxpool.Pool) domain.User {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := domain.User{
		ID:          uuid.New(),
		Email:       "testuser-" + suffix + "@example.com",
		DisplayName: "Test User " + suffix,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.DisplayName, "x-not-a-real-hash", user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedUser insert user: %v", err)
	}

	return user
}

// SeedSubject creates a subject owned by ownerID with the given topic names,
// all unfinished. Returns a filled domain.Subject.
func SeedSubject(t *testing.T, pool *pgxpool.Pool, ownerID uuid.UUID, name string, topicNames ...string) domain.Subject {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	subj := domain.Subject{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Topics:    make([]domain.Topic, 0, len(topicNames)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, tn := range topicNames {
		subj.Topics = append(subj.Topics, domain.Topic{Name: tn, CreatedAt: now})
	}

	topicsJSON, err := json.Marshal(subj.Topics)
	if err != nil {
		t.Fatalf("testhelper: SeedSubject marshal topics: %v", err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO subjects (id, owner_id, name, topics, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		subj.ID, subj.OwnerID, subj.Name, topicsJSON, subj.CreatedAt, subj.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedSubject insert: %v", err)
	}

	return subj
}
