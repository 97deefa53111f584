package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
)

// AggregateNotifierConfig holds the Redis key layout used by downstream aggregation.
type AggregateNotifierConfig struct {
	KeyPrefix      string // Aggregate keys are <prefix>:<user_id>:*
	LoadsChannel   string
	ScanBatchCount int64
}

// DefaultAggregateNotifierConfig returns the default key layout.
func DefaultAggregateNotifierConfig() AggregateNotifierConfig {
	return AggregateNotifierConfig{
		KeyPrefix:      "agg",
		LoadsChannel:   "loads.completed",
		ScanBatchCount: 100,
	}
}

// aggregateNotifier implements the adapter.AggregateNotifier interface.
type aggregateNotifier struct {
	client *redis.Client
	cfg    AggregateNotifierConfig
}

// NewAggregateNotifier creates a new Redis backed aggregate notifier.
func NewAggregateNotifier(client *redis.Client, cfg AggregateNotifierConfig) adapter.AggregateNotifier {
	return &aggregateNotifier{
		client: client,
		cfg:    cfg,
	}
}

// InvalidateAggregates deletes every cached aggregate of the user.
func (n *aggregateNotifier) InvalidateAggregates(ctx context.Context, userID string) error {
	pattern := fmt.Sprintf("%s:%s:*", n.cfg.KeyPrefix, userID)
	iter := n.client.Scan(ctx, 0, pattern, n.cfg.ScanBatchCount).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan aggregate keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := n.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete aggregate keys: %w", err)
	}
	return nil
}

// PublishLoadCompleted publishes the event as JSON.
func (n *aggregateNotifier) PublishLoadCompleted(ctx context.Context, event adapter.LoadCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode load event: %w", err)
	}
	if err := n.client.Publish(ctx, n.cfg.LoadsChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish load event: %w", err)
	}
	return nil
}
