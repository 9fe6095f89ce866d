package subject_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avolkov/studytrack/internal/adapter/postgres/subject"
	"github.com/avolkov/studytrack/internal/adapter/postgres/testhelper"
	"github.com/avolkov/studytrack/internal/domain"
)

func newRepo(t *testing.T) (*subject.Repo, *pgxpool.Pool) {
	t.Helper()
	pool := testhelper.SetupTestDB(t)
	return subject.New(pool), pool
}

func TestRepo_Create_HappyPath(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)

	got, err := repo.Create(ctx, owner.ID, "Mathematics")
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	if got.Name != "Mathematics" || got.OwnerID != owner.ID {
		t.Fatalf("Create: got %+v", got)
	}
	if got.Topics == nil || len(got.Topics) != 0 {
		t.Fatalf("Create: topics = %v, want empty non-nil slice", got.Topics)
	}
	if got.ID == uuid.Nil {
		t.Fatal("Create: id not assigned")
	}
}

func TestRepo_ListByOwner_OrderAndScope(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)
	other := testhelper.SeedUser(t, pool)

	first, err := repo.Create(ctx, owner.ID, "First")
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}
	second, err := repo.Create(ctx, owner.ID, "Second")
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}
	if _, err := repo.Create(ctx, other.ID, "Foreign"); err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	got, err := repo.ListByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("ListByOwner: unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByOwner: len = %d, want 2", len(got))
	}
	if got[0].ID != first.ID || got[1].ID != second.ID {
		t.Fatalf("ListByOwner: order = [%s, %s], want [%s, %s]", got[0].ID, got[1].ID, first.ID, second.ID)
	}
}

func TestRepo_ReplaceTopics_RoundTrip(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)
	subj, err := repo.Create(ctx, owner.ID, "Physics")
	if err != nil {
		t.Fatalf("Create: unexpected error: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	topics := []domain.Topic{
		{Name: "Kinematics", Done: true, CreatedAt: now},
		{Name: "Dynamics", Done: false, CreatedAt: now},
	}

	if err := repo.ReplaceTopics(ctx, owner.ID, subj.ID, topics); err != nil {
		t.Fatalf("ReplaceTopics: unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, owner.ID, subj.ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if len(got.Topics) != 2 {
		t.Fatalf("GetByID: topics len = %d, want 2", len(got.Topics))
	}
	if got.Topics[0].Name != "Kinematics" || !got.Topics[0].Done {
		t.Fatalf("GetByID: topics[0] = %+v", got.Topics[0])
	}
	if got.Topics[1].Name != "Dynamics" || got.Topics[1].Done {
		t.Fatalf("GetByID: topics[1] = %+v", got.Topics[1])
	}
}

func TestRepo_ReplaceTopics_NilBecomesEmpty(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)
	subj := testhelper.SeedSubject(t, pool, owner.ID, "History", "Rome")

	if err := repo.ReplaceTopics(ctx, owner.ID, subj.ID, nil); err != nil {
		t.Fatalf("ReplaceTopics: unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, owner.ID, subj.ID)
	if err != nil {
		t.Fatalf("GetByID: unexpected error: %v", err)
	}
	if got.Topics == nil || len(got.Topics) != 0 {
		t.Fatalf("GetByID: topics = %v, want empty non-nil slice", got.Topics)
	}
}

func TestRepo_ReplaceTopics_WrongOwner(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)
	other := testhelper.SeedUser(t, pool)
	subj := testhelper.SeedSubject(t, pool, owner.ID, "Chemistry")

	err := repo.ReplaceTopics(ctx, other.ID, subj.ID, []domain.Topic{{Name: "Acids"}})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("ReplaceTopics wrong owner: err = %v, want ErrNotFound", err)
	}
}

func TestRepo_Delete(t *testing.T) {
	t.Parallel()
	repo, pool := newRepo(t)
	ctx := context.Background()

	owner := testhelper.SeedUser(t, pool)
	subj := testhelper.SeedSubject(t, pool, owner.ID, "Biology", "Cells")

	if err := repo.Delete(ctx, owner.ID, subj.ID); err != nil {
		t.Fatalf("Delete: unexpected error: %v", err)
	}

	_, err := repo.GetByID(ctx, owner.ID, subj.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetByID after delete: err = %v, want ErrNotFound", err)
	}

	err = repo.Delete(ctx, owner.ID, subj.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete twice: err = %v, want ErrNotFound", err)
	}
}
