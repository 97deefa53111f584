package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSearchPath(t *testing.T) {
	t.Run("no schema leaves dsn untouched", func(t *testing.T) {
		dsn, err := withSearchPath("host=localhost dbname=x", "")
		require.NoError(t, err)
		assert.Equal(t, "host=localhost dbname=x", dsn)
	})

	t.Run("adds search_path to url", func(t *testing.T) {
		dsn, err := withSearchPath("postgres://u:p@localhost:5432/db?sslmode=disable", "categorizer")
		require.NoError(t, err)
		assert.Contains(t, dsn, "search_path=categorizer")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("keyword dsn with schema is rejected", func(t *testing.T) {
		_, err := withSearchPath("host=localhost dbname=x", "categorizer")
		assert.Error(t, err)
	})
}
