package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Redis is a Notifier backed by Redis pub/sub, so that writes in one
// process reach subscriptions held by another.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed notifier from a redis URL and verifies
// the connection.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Redis{client: client}, nil
}

func channelFor(ownerID uuid.UUID) string {
	return "subjects:" + ownerID.String()
}

// Publish sends a signal on the owner's channel.
func (r *Redis) Publish(ctx context.Context, ownerID uuid.UUID) error {
	if err := r.client.Publish(ctx, channelFor(ownerID), "changed").Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channelFor(ownerID), err)
	}
	return nil
}

// Subscribe listens on the owner's channel and forwards each message as
// a signal. Pending signals are coalesced.
func (r *Redis) Subscribe(ctx context.Context, ownerID uuid.UUID) (<-chan struct{}, func(), error) {
	sub := r.client.Subscribe(ctx, channelFor(ownerID))

	// Force the subscription to be established before returning, so the
	// caller's initial snapshot cannot race ahead of it.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", channelFor(ownerID), err)
	}

	out := make(chan struct{}, 1)
	done := make(chan struct{})

	go func() {
		defer close(out)
		msgs := sub.Channel()
		for {
			select {
			case <-done:
				return
			case _, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			sub.Close()
		})
	}

	return out, cancel, nil
}

// Ping checks the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}
