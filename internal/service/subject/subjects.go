package subject

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/avolkov/studytrack/internal/domain"
	"github.com/avolkov/studytrack/pkg/ctxutil"
)

// List returns the authenticated user's subjects in creation order.
func (s *Service) List(ctx context.Context) ([]domain.Subject, error) {
	ownerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	subjects, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("subject.List: %w", err)
	}
	return subjects, nil
}

// Create adds a subject with an empty topic list. A blank name is rejected.
func (s *Service) Create(ctx context.Context, name string) (*domain.Subject, error) {
	ownerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "required")
	}
	if len(name) > 200 {
		return nil, domain.NewValidationError("name", "too long")
	}

	subj, err := s.store.CreateSubject(ctx, ownerID, name)
	if err != nil {
		return nil, fmt.Errorf("subject.Create: %w", err)
	}

	s.log.InfoContext(ctx, "subject created",
		slog.String("subject_id", subj.ID.String()))

	return subj, nil
}

// Delete removes a subject and all its topics.
func (s *Service) Delete(ctx context.Context, subjectID uuid.UUID) error {
	ownerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := s.store.DeleteSubject(ctx, ownerID, subjectID); err != nil {
		return fmt.Errorf("subject.Delete: %w", err)
	}

	s.log.InfoContext(ctx, "subject deleted",
		slog.String("subject_id", subjectID.String()))

	return nil
}

// Watch streams snapshots of the authenticated user's subjects until the
// returned cancel func is called.
func (s *Service) Watch(ctx context.Context, onNext func([]domain.Subject), onErr func(error)) (func(), error) {
	ownerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	cancel, err := s.store.Subscribe(ctx, ownerID, onNext, onErr)
	if err != nil {
		return nil, fmt.Errorf("subject.Watch: %w", err)
	}
	return cancel, nil
}
