package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Connect(ctx, "127.0.0.1:1", "", 0, 200*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestRedisCache_ErrorsSurface(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	c := NewRedisCache(client, time.Minute)

	_, ok, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.Set(context.Background(), "k", "v"))
}

func TestRedisCache_KeyPrefix(t *testing.T) {
	c := NewRedisCache(nil, time.Minute)
	assert.Equal(t, "legaltr:tr:abc", c.Key("tr:abc"))
}
