package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Notifier used when Redis is not configured.
// Signals only reach subscribers within the same process.
type Memory struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]map[int]chan struct{}
	nextID int
	closed bool
}

// NewMemory creates an in-process notifier.
func NewMemory() *Memory {
	return &Memory{subs: make(map[uuid.UUID]map[int]chan struct{})}
}

// Publish delivers a signal to every subscriber of the owner. Slow
// subscribers that already have a pending signal are skipped; a single
// pending signal is enough to trigger a reload.
func (m *Memory) Publish(_ context.Context, ownerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ch := range m.subs[ownerID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber for the owner's signals.
func (m *Memory) Subscribe(_ context.Context, ownerID uuid.UUID) (<-chan struct{}, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, nil, context.Canceled
	}

	id := m.nextID
	m.nextID++

	ch := make(chan struct{}, 1)
	if m.subs[ownerID] == nil {
		m.subs[ownerID] = make(map[int]chan struct{})
	}
	m.subs[ownerID][id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		if chans, ok := m.subs[ownerID]; ok {
			if c, ok := chans[id]; ok {
				delete(chans, id)
				close(c)
				if len(chans) == 0 {
					delete(m.subs, ownerID)
				}
			}
		}
	}

	return ch, cancel, nil
}

// Close drops all subscriptions and closes their channels.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	for _, chans := range m.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	m.subs = make(map[uuid.UUID]map[int]chan struct{})
	return nil
}
