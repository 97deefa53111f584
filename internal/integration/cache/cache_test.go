package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/categorizer/internal/application/adapter"
	"github.com/finance-tracker/categorizer/internal/domain/entity"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func TestRuleCacheBus(t *testing.T) {
	_, client := newTestRedis(t)
	bus := NewRuleCacheBus(client, "")

	ctx, cancel := context.WithCancel(context.Background())
	received := make(chan entity.Scope, 4)
	done := make(chan error, 1)
	go func() {
		done <- bus.Subscribe(ctx, func(scope entity.Scope) { received <- scope })
	}()

	// Publish until the subscriber is attached; miniredis drops messages with no subscriber.
	require.Eventually(t, func() bool {
		if err := bus.Publish(context.Background(), "tenant-a"); err != nil {
			return false
		}
		select {
		case scope := <-received:
			return scope == "tenant-a"
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, bus.Publish(context.Background(), ""))
	deadline := time.After(time.Second)
	for delivered := false; !delivered; {
		select {
		case scope := <-received:
			// Late probes from the attach loop may still be queued.
			delivered = scope == entity.GlobalScope
		case <-deadline:
			t.Fatal("global invalidation not delivered")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not stop")
	}
}

func TestAggregateNotifier(t *testing.T) {
	server, client := newTestRedis(t)
	notifier := NewAggregateNotifier(client, DefaultAggregateNotifierConfig())
	ctx := context.Background()

	t.Run("deletes only the user's aggregate keys", func(t *testing.T) {
		require.NoError(t, server.Set("agg:user-1:monthly", "1"))
		require.NoError(t, server.Set("agg:user-1:by_category", "2"))
		require.NoError(t, server.Set("agg:user-2:monthly", "3"))

		require.NoError(t, notifier.InvalidateAggregates(ctx, "user-1"))

		assert.False(t, server.Exists("agg:user-1:monthly"))
		assert.False(t, server.Exists("agg:user-1:by_category"))
		assert.True(t, server.Exists("agg:user-2:monthly"))
	})

	t.Run("no keys is not an error", func(t *testing.T) {
		assert.NoError(t, notifier.InvalidateAggregates(ctx, "nobody"))
	})

	t.Run("publishes load completion as json", func(t *testing.T) {
		sub := client.Subscribe(ctx, "loads.completed")
		defer sub.Close()
		_, err := sub.Receive(ctx)
		require.NoError(t, err)

		require.NoError(t, notifier.PublishLoadCompleted(ctx, adapter.LoadCompletedEvent{
			UserID:   "user-1",
			Inserted: 3,
			Skipped:  1,
		}))

		msg, err := sub.ReceiveMessage(ctx)
		require.NoError(t, err)
		var event adapter.LoadCompletedEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, "user-1", event.UserID)
		assert.Equal(t, 3, event.Inserted)
		assert.Equal(t, 1, event.Skipped)
	})

	t.Run("reports an unreachable server", func(t *testing.T) {
		broken := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
		defer broken.Close()

		err := NewAggregateNotifier(broken, DefaultAggregateNotifierConfig()).InvalidateAggregates(ctx, "user-1")

		assert.Error(t, err)
	})
}
