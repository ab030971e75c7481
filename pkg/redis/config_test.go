package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cernol/formintake/pkg/redis"
)

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	t.Run("url wins", func(t *testing.T) {
		t.Parallel()

		opts, err := redis.Config{
			ConnectionURL: "redis://:secret@cache:6380/2",
			Host:          "ignored",
			Port:          1,
		}.Options()
		require.NoError(t, err)
		assert.Equal(t, "cache:6380", opts.Addr)
		assert.Equal(t, "secret", opts.Password)
		assert.Equal(t, 2, opts.DB)
	})

	t.Run("discrete settings", func(t *testing.T) {
		t.Parallel()

		opts, err := redis.Config{Host: "localhost", Port: 6379, Password: "pw", DB: 1}.Options()
		require.NoError(t, err)
		assert.Equal(t, "localhost:6379", opts.Addr)
		assert.Equal(t, "pw", opts.Password)
		assert.Equal(t, 1, opts.DB)
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Config{ConnectionURL: "http://nope"}.Options()
		assert.Error(t, err)
	})

	t.Run("nothing configured", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Config{}.Options()
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})
}

func TestConnect_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := redis.Connect(context.Background(), redis.Config{
		ConnectionURL:  "http://nope",
		RetryAttempts:  1,
		ConnectTimeout: time.Second,
	})
	assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
}
