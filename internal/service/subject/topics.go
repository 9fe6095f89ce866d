package subject

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/studytrack/internal/domain"
	"github.com/avolkov/studytrack/pkg/ctxutil"
)

// AddTopic appends a topic to the end of the subject's list. A blank name
// is rejected before any read or write happens.
func (s *Service) AddTopic(ctx context.Context, subjectID uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.NewValidationError("name", "required")
	}
	if len(name) > 200 {
		return domain.NewValidationError("name", "too long")
	}

	return s.mutateTopics(ctx, subjectID, func(topics []domain.Topic) ([]domain.Topic, bool) {
		return domain.AppendTopic(topics, name, time.Now().UTC()), true
	})
}

// ToggleTopic flips the done flag of the topic at index. An out-of-range
// index is a no-op.
func (s *Service) ToggleTopic(ctx context.Context, subjectID uuid.UUID, index int) error {
	return s.mutateTopics(ctx, subjectID, func(topics []domain.Topic) ([]domain.Topic, bool) {
		return domain.ToggleTopicAt(topics, index)
	})
}

// RemoveTopic deletes the topic at index, preserving the order of the rest.
// An out-of-range index is a no-op.
func (s *Service) RemoveTopic(ctx context.Context, subjectID uuid.UUID, index int) error {
	return s.mutateTopics(ctx, subjectID, func(topics []domain.Topic) ([]domain.Topic, bool) {
		return domain.RemoveTopicAt(topics, index)
	})
}

// mutateTopics reads the subject's current topics, applies fn, and lands
// the result with a single wholesale write. fn returning ok=false means
// nothing changed and no write happens.
func (s *Service) mutateTopics(ctx context.Context, subjectID uuid.UUID, fn func([]domain.Topic) ([]domain.Topic, bool)) error {
	ownerID, ok := ctxutil.UserIDFromCtx(ctx)
	if !ok {
		return domain.ErrUnauthorized
	}

	subjects, err := s.store.List(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("subject.mutateTopics list: %w", err)
	}

	var current *domain.Subject
	for i := range subjects {
		if subjects[i].ID == subjectID {
			current = &subjects[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("subject %s: %w", subjectID, domain.ErrNotFound)
	}

	next, changed := fn(current.Topics)
	if !changed {
		return nil
	}

	if err := s.store.ReplaceTopics(ctx, ownerID, subjectID, next); err != nil {
		return fmt.Errorf("subject.mutateTopics write: %w", err)
	}
	return nil
}
