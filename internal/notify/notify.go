// Package notify carries change signals between writers and live
// subscriptions. A signal says "something changed for this owner";
// subscribers reload state themselves.
package notify

import (
	"context"

	"github.com/google/uuid"
)

// Notifier publishes and subscribes to per-owner change signals.
type Notifier interface {
	// Publish signals that the owner's subjects changed.
	Publish(ctx context.Context, ownerID uuid.UUID) error

	// Subscribe returns a channel that receives a value whenever the
	// owner's subjects change. The returned cancel func releases the
	// subscription and closes the channel.
	Subscribe(ctx context.Context, ownerID uuid.UUID) (<-chan struct{}, func(), error)

	// Close releases all subscriptions.
	Close() error
}
