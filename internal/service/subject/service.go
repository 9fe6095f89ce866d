// Package subject implements subject and topic operations on top of the
// document store. Every mutation reads the owner's current state, computes
// the next topic list in memory, and lands it with a single write; there
// is no partial patching.
package subject

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avolkov/studytrack/internal/domain"
)

// documentStore defines the store interface needed by the subject service.
type documentStore interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Subject, error)
	CreateSubject(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Subject, error)
	ReplaceTopics(ctx context.Context, ownerID, subjectID uuid.UUID, topics []domain.Topic) error
	DeleteSubject(ctx context.Context, ownerID, subjectID uuid.UUID) error
	Subscribe(ctx context.Context, ownerID uuid.UUID, onNext func([]domain.Subject), onErr func(error)) (func(), error)
}

// Service implements subject operations.
type Service struct {
	log   *slog.Logger
	store documentStore
}

// NewService creates a new subject service instance.
func NewService(logger *slog.Logger, store documentStore) *Service {
	return &Service{
		log:   logger.With("service", "subject"),
		store: store,
	}
}
