// Package dashboard holds the client-side dashboard state: one live
// snapshot of the user's subjects plus a dismissible error slot. A single
// goroutine owns the state, so pushes from the document store and local
// actions never interleave.
//
// Mutations follow the store's write model: read the current snapshot,
// compute the next topic list in memory, land it with one wholesale write.
// The local state is never patched optimistically; the next push carries
// the result of the write.
package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/studytrack/internal/domain"
	"github.com/avolkov/studytrack/internal/store"
)

// User-facing messages for failed store operations. Store failures carry
// no fine-grained classification; only the operation is named.
const (
	msgLoadFailed          = "Failed to load subjects"
	msgAddSubjectFailed    = "Failed to add subject"
	msgDeleteSubjectFailed = "Failed to delete subject"
	msgAddTopicFailed      = "Failed to add topic"
	msgUpdateTopicFailed   = "Failed to update topic"
	msgDeleteTopicFailed   = "Failed to delete topic"
)

// OpError is what the error slot holds: a fixed user-facing message for
// the failed operation, wrapping the underlying store error for logs.
type OpError struct {
	Message string
	Err     error
}

func (e *OpError) Error() string {
	return e.Message + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error { return e.Err }

// UserMessage returns the text the dashboard shows for this failure.
func (e *OpError) UserMessage() string { return e.Message }

// Phase tells whether the first snapshot has arrived.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
)

// State is a point-in-time copy of the dashboard.
type State struct {
	Phase    Phase
	Subjects []domain.Subject
	// Err is the dismissible error slot. It is orthogonal to Phase: the
	// last good snapshot stays on screen while an error is shown.
	Err error
}

// Dashboard is the client-side dashboard core for one signed-in user.
type Dashboard struct {
	store   store.Store
	ownerID uuid.UUID
	log     *slog.Logger

	ctx       context.Context
	ctxCancel context.CancelFunc
	cancelSub func()
	closeOnce sync.Once

	actions chan func(*State)
	updates chan struct{}

	mu    sync.RWMutex
	state State
}

// Open subscribes to the user's subjects and starts the state loop.
// The dashboard begins in the loading phase and becomes ready when the
// first snapshot arrives.
func Open(ctx context.Context, st store.Store, ownerID uuid.UUID, logger *slog.Logger) (*Dashboard, error) {
	loopCtx, cancel := context.WithCancel(ctx)

	d := &Dashboard{
		store:     st,
		ownerID:   ownerID,
		log:       logger.With(slog.String("component", "dashboard")),
		ctx:       loopCtx,
		ctxCancel: cancel,
		actions:   make(chan func(*State)),
		updates:   make(chan struct{}, 1),
		state:     State{Phase: PhaseLoading},
	}

	go d.loop()

	cancelSub, err := st.Subscribe(ctx, ownerID,
		func(subjects []domain.Subject) {
			d.enqueue(func(s *State) {
				s.Phase = PhaseReady
				s.Subjects = subjects
			})
		},
		func(err error) {
			d.enqueue(func(s *State) {
				// A push failure settles the dashboard even when no
				// snapshot ever arrived, so the client shows the error
				// instead of loading forever.
				s.Phase = PhaseReady
				s.Err = &OpError{Message: msgLoadFailed, Err: err}
			})
		},
	)
	if err != nil {
		cancel()
		return nil, err
	}
	d.cancelSub = cancelSub

	return d, nil
}

func (d *Dashboard) loop() {
	for {
		select {
		case <-d.ctx.Done():
			return
		case fn := <-d.actions:
			d.mu.Lock()
			fn(&d.state)
			d.mu.Unlock()

			select {
			case d.updates <- struct{}{}:
			default:
			}
		}
	}
}

// enqueue hands an action to the state loop. Actions arriving after Close
// are dropped.
func (d *Dashboard) enqueue(fn func(*State)) {
	select {
	case d.actions <- fn:
	case <-d.ctx.Done():
	}
}

// State returns a copy of the current dashboard state.
func (d *Dashboard) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := d.state
	out.Subjects = make([]domain.Subject, len(d.state.Subjects))
	copy(out.Subjects, d.state.Subjects)
	return out
}

// Updates returns a channel that receives a value after state changes.
// Signals are coalesced; read State after draining.
func (d *Dashboard) Updates() <-chan struct{} {
	return d.updates
}

// AddSubject creates a subject with an empty topic list. A whitespace-only
// name is dropped without touching the store.
func (d *Dashboard) AddSubject(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	d.write(msgAddSubjectFailed, func(ctx context.Context) error {
		_, err := d.store.CreateSubject(ctx, d.ownerID, name)
		return err
	})
}

// DeleteSubject removes a subject entirely.
func (d *Dashboard) DeleteSubject(subjectID uuid.UUID) {
	d.write(msgDeleteSubjectFailed, func(ctx context.Context) error {
		return d.store.DeleteSubject(ctx, d.ownerID, subjectID)
	})
}

// AddTopic appends a topic to the subject. A whitespace-only name is
// dropped; an unknown subject is a no-op.
func (d *Dashboard) AddTopic(subjectID uuid.UUID, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	d.mutateTopics(subjectID, msgAddTopicFailed, func(topics []domain.Topic) ([]domain.Topic, bool) {
		return domain.AppendTopic(topics, name, time.Now().UTC()), true
	})
}

// ToggleTopic flips the done flag at index. Out of range is a no-op.
func (d *Dashboard) ToggleTopic(subjectID uuid.UUID, index int) {
	d.mutateTopics(subjectID, msgUpdateTopicFailed, func(topics []domain.Topic) ([]domain.Topic, bool) {
		return domain.ToggleTopicAt(topics, index)
	})
}

// RemoveTopic deletes the topic at index. Out of range is a no-op.
func (d *Dashboard) RemoveTopic(subjectID uuid.UUID, index int) {
	d.mutateTopics(subjectID, msgDeleteTopicFailed, func(topics []domain.Topic) ([]domain.Topic, bool) {
		return domain.RemoveTopicAt(topics, index)
	})
}

// mutateTopics reads the subject's topics from the current snapshot,
// applies fn, and writes the result wholesale. The snapshot read happens
// inside the loop, so it always sees the latest delivered state.
func (d *Dashboard) mutateTopics(subjectID uuid.UUID, failMsg string, fn func([]domain.Topic) ([]domain.Topic, bool)) {
	d.enqueue(func(s *State) {
		var current *domain.Subject
		for i := range s.Subjects {
			if s.Subjects[i].ID == subjectID {
				current = &s.Subjects[i]
				break
			}
		}
		if current == nil {
			return
		}

		next, changed := fn(current.Topics)
		if !changed {
			return
		}

		d.startWrite(failMsg, func(ctx context.Context) error {
			return d.store.ReplaceTopics(ctx, d.ownerID, subjectID, next)
		})
	})
}

// write runs op off the loop and routes its failure into the error slot.
func (d *Dashboard) write(failMsg string, op func(context.Context) error) {
	d.enqueue(func(*State) {
		d.startWrite(failMsg, op)
	})
}

// startWrite fires the store write on its own goroutine so pushes keep
// flowing while it is in flight. There is no rollback: local state only
// changes when the store pushes the write's outcome.
func (d *Dashboard) startWrite(failMsg string, op func(context.Context) error) {
	go func() {
		if err := op(d.ctx); err != nil {
			if d.ctx.Err() != nil {
				return
			}
			d.log.Warn("write failed", slog.Any("error", err))
			d.enqueue(func(s *State) {
				s.Err = &OpError{Message: failMsg, Err: err}
			})
		}
	}()
}

// ClearError dismisses the error slot. The snapshot is untouched.
func (d *Dashboard) ClearError() {
	d.enqueue(func(s *State) { s.Err = nil })
}

// Progress reports completion for one subject in the current snapshot.
// ok is false when the subject is not present.
func (d *Dashboard) Progress(subjectID uuid.UUID) (domain.Progress, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for i := range d.state.Subjects {
		if d.state.Subjects[i].ID == subjectID {
			return d.state.Subjects[i].Progress(), true
		}
	}
	return domain.Progress{}, false
}

// Close cancels the subscription and stops the loop. Safe to call twice.
func (d *Dashboard) Close() {
	d.closeOnce.Do(func() {
		if d.cancelSub != nil {
			d.cancelSub()
		}
		d.ctxCancel()
	})
}
