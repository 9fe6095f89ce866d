// Package store exposes the subject document store: durable writes plus
// live snapshot subscriptions. Every change is observed as a fresh,
// complete snapshot of the owner's subjects; consumers never patch
// previous state.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/avolkov/studytrack/internal/domain"
)

// Store reads and writes an owner's subjects and streams snapshots.
type Store interface {
	// List returns the owner's subjects in stable creation order.
	List(ctx context.Context, ownerID uuid.UUID) ([]domain.Subject, error)

	// CreateSubject adds a subject with an empty topic list.
	CreateSubject(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Subject, error)

	// ReplaceTopics overwrites the subject's whole topic list.
	ReplaceTopics(ctx context.Context, ownerID, subjectID uuid.UUID, topics []domain.Topic) error

	// DeleteSubject removes the subject entirely.
	DeleteSubject(ctx context.Context, ownerID, subjectID uuid.UUID) error

	// Subscribe streams snapshots of the owner's subjects. onNext is
	// called with the initial snapshot and again after every change;
	// onErr is called when a snapshot cannot be produced. The returned
	// cancel func stops the stream; callbacks are never invoked
	// concurrently with each other.
	Subscribe(ctx context.Context, ownerID uuid.UUID, onNext func([]domain.Subject), onErr func(error)) (func(), error)
}
