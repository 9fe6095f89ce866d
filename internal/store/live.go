package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/avolkov/studytrack/internal/domain"
	"github.com/avolkov/studytrack/internal/notify"
)

// SubjectRepo is the persistence surface Live builds on.
type SubjectRepo interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Subject, error)
	Create(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Subject, error)
	ReplaceTopics(ctx context.Context, ownerID, subjectID uuid.UUID, topics []domain.Topic) error
	Delete(ctx context.Context, ownerID, subjectID uuid.UUID) error
}

// Live is a Store that persists through a SubjectRepo and pushes fresh
// snapshots over a notify.Notifier after each write.
type Live struct {
	repo     SubjectRepo
	notifier notify.Notifier
	log      *slog.Logger
}

// NewLive creates a live document store.
func NewLive(repo SubjectRepo, notifier notify.Notifier, log *slog.Logger) *Live {
	return &Live{
		repo:     repo,
		notifier: notifier,
		log:      log.With(slog.String("component", "store")),
	}
}

// List returns the owner's subjects in stable creation order.
func (s *Live) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Subject, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// CreateSubject adds a subject with an empty topic list and signals
// subscribers.
func (s *Live) CreateSubject(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Subject, error) {
	subj, err := s.repo.Create(ctx, ownerID, name)
	if err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	s.signal(ctx, ownerID)
	return subj, nil
}

// ReplaceTopics overwrites the subject's topic list and signals
// subscribers.
func (s *Live) ReplaceTopics(ctx context.Context, ownerID, subjectID uuid.UUID, topics []domain.Topic) error {
	if err := s.repo.ReplaceTopics(ctx, ownerID, subjectID, topics); err != nil {
		return fmt.Errorf("replace topics: %w", err)
	}
	s.signal(ctx, ownerID)
	return nil
}

// DeleteSubject removes the subject and signals subscribers.
func (s *Live) DeleteSubject(ctx context.Context, ownerID, subjectID uuid.UUID) error {
	if err := s.repo.Delete(ctx, ownerID, subjectID); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	s.signal(ctx, ownerID)
	return nil
}

// signal is best effort: the write already landed, so a lost signal
// only delays observers until the next change.
func (s *Live) signal(ctx context.Context, ownerID uuid.UUID) {
	if err := s.notifier.Publish(ctx, ownerID); err != nil {
		s.log.WarnContext(ctx, "failed to publish change signal",
			slog.String("owner_id", ownerID.String()),
			slog.Any("error", err),
		)
	}
}

// Subscribe delivers the current snapshot, then a fresh snapshot after
// every change signal. Snapshots and errors are delivered from a single
// goroutine, so callbacks never overlap.
func (s *Live) Subscribe(ctx context.Context, ownerID uuid.UUID, onNext func([]domain.Subject), onErr func(error)) (func(), error) {
	signals, cancelSignals, err := s.notifier.Subscribe(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	subCtx, cancelCtx := context.WithCancel(ctx)

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			cancelCtx()
			cancelSignals()
		})
	}

	go func() {
		s.deliver(subCtx, ownerID, onNext, onErr)

		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				s.deliver(subCtx, ownerID, onNext, onErr)
			}
		}
	}()

	return cancel, nil
}

func (s *Live) deliver(ctx context.Context, ownerID uuid.UUID, onNext func([]domain.Subject), onErr func(error)) {
	subjects, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.ErrorContext(ctx, "failed to load snapshot",
			slog.String("owner_id", ownerID.String()),
			slog.Any("error", err),
		)
		onErr(err)
		return
	}
	if ctx.Err() != nil {
		return
	}
	onNext(subjects)
}
