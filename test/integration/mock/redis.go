package mock

import (
	"context"
	"sync"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Redis is the in-process redis shared by every scenario of the feature suite.
// Pub/sub is supported, so rule invalidations published by a handler reach the
// listener the injector starts.
type Redis struct {
	server *miniredis.Miniredis
	client *redis.Client
}

var (
	redisOnce   sync.Once
	sharedRedis *Redis
)

func startRedis() *Redis {
	redisOnce.Do(func() {
		server, err := miniredis.Run()
		if err != nil {
			panic("failed to start in-process redis. err: " + err.Error())
		}
		sharedRedis = &Redis{
			server: server,
			client: redis.NewClient(&redis.Options{Addr: server.Addr()}),
		}
	})
	return sharedRedis
}

// NewRedis returns the client of the shared redis, starting the server on first use.
func NewRedis() *redis.Client {
	return startRedis().client
}

// ClearRedis drops every key. Subscriptions survive, so the injector's
// invalidation listener keeps working across scenarios.
func ClearRedis(ctx context.Context) error {
	return startRedis().client.FlushAll(ctx).Err()
}
