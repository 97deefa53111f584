// Package cache implements cross-instance cache signalling on Redis.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

// DefaultRuleInvalidationChannel carries the scope whose rules changed.
const DefaultRuleInvalidationChannel = "rules:invalidate"

// ruleCacheBus implements the adapter.RuleCacheBus interface over Redis pub/sub.
type ruleCacheBus struct {
	client  *redis.Client
	channel string
}

// NewRuleCacheBus creates a new Redis backed rule cache bus.
func NewRuleCacheBus(client *redis.Client, channel string) adapter.RuleCacheBus {
	if channel == "" {
		channel = DefaultRuleInvalidationChannel
	}
	return &ruleCacheBus{
		client:  client,
		channel: channel,
	}
}

// Publish announces that the rules of scope changed.
func (b *ruleCacheBus) Publish(ctx context.Context, scope entity.Scope) error {
	if err := b.client.Publish(ctx, b.channel, string(scope.Normalize())).Err(); err != nil {
		return fmt.Errorf("failed to publish rule invalidation: %w", err)
	}
	return nil
}

// Subscribe delivers announcements to onInvalidate until ctx is done.
// It returns once the subscription is confirmed failing, or nil when ctx ends.
func (b *ruleCacheBus) Subscribe(ctx context.Context, onInvalidate func(scope entity.Scope)) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	slog.Info("Subscribed to rule invalidations", "channel", b.channel)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			onInvalidate(entity.Scope(msg.Payload))
		}
	}
}
