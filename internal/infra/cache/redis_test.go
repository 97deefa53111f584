package cache

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/categorizer/config"
)

func TestNewRedisConnection(t *testing.T) {
	t.Run("connects and reports healthy", func(t *testing.T) {
		mr := miniredis.RunT(t)

		r, err := NewRedisConnection(&config.RedisConfig{URL: "redis://" + mr.Addr() + "/0"})
		require.NoError(t, err)
		assert.True(t, r.HealthCheck())

		mr.Close()
		assert.False(t, r.HealthCheck())
		assert.NoError(t, r.Close())
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := NewRedisConnection(&config.RedisConfig{URL: "not a url"})
		assert.Error(t, err)
	})

	t.Run("unreachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := NewRedisConnection(&config.RedisConfig{URL: "redis://" + addr})
		assert.Error(t, err)
	})
}
