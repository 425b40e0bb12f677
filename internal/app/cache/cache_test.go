package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLocal(t *testing.T) {
	c := NewLocal(time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, "abcdef")
	assert.False(t, ok)

	c.Set(ctx, "abcdef", "https://example.com")
	v, ok := c.Get(ctx, "abcdef")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", v)
}

func TestRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedis(client, time.Hour, zap.NewNop().Sugar())
	ctx := context.Background()

	_, ok := c.Get(ctx, "abcdef")
	assert.False(t, ok)

	c.Set(ctx, "abcdef", "https://example.com")
	got, err := mr.Get("short:abcdef")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got)
	assert.Equal(t, time.Hour, mr.TTL("short:abcdef"))

	v, ok := c.Get(ctx, "abcdef")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", v)

	mr.FastForward(2 * time.Hour)
	_, ok = c.Get(ctx, "abcdef")
	assert.False(t, ok)
}

func TestRedis_ZeroTTLStillExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedis(client, 0, zap.NewNop().Sugar())
	c.Set(context.Background(), "abcdef", "https://example.com")
	assert.Equal(t, DefaultRedisTTL, mr.TTL("short:abcdef"))
}

func TestRedis_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	core, logs := observer.New(zap.WarnLevel)
	c := NewRedis(client, time.Hour, zap.New(core).Sugar())
	ctx := context.Background()

	c.Set(ctx, "abcdef", "https://example.com")
	_, ok := c.Get(ctx, "abcdef")
	assert.False(t, ok)
	assert.Equal(t, 2, logs.Len())
}

func TestChain_FillsUpperLayers(t *testing.T) {
	ctx := context.Background()
	upper := NewLocal(time.Minute)
	lower := NewLocal(time.Minute)
	lower.Set(ctx, "abcdef", "https://example.com")

	chain := Chain{upper, lower, Nop{}}
	v, ok := chain.Get(ctx, "abcdef")
	require.True(t, ok)
	assert.Equal(t, "https://example.com", v)

	v, ok = upper.Get(ctx, "abcdef")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", v)

	_, ok = chain.Get(ctx, "zzzzzz")
	assert.False(t, ok)
}
