package caching

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, config CacheConfig) *ToolResultCache {
	t.Helper()
	logger, _ := test.NewNullLogger()
	cache, err := NewToolResultCache(config, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestNewToolResultCache_Defaults(t *testing.T) {
	cache := newCache(t, CacheConfig{MaxItems: 10})

	assert.True(t, cache.Enabled())
	assert.Equal(t, time.Hour, cache.config.TTL)
	assert.Equal(t, 250*time.Millisecond, cache.config.RedisTimeout)
	assert.Equal(t, uint32(3), cache.config.FailureThreshold)
	assert.Nil(t, cache.redis)
}

func TestNewToolResultCache_BadRedisURL(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := NewToolResultCache(CacheConfig{MaxItems: 10, RedisURL: "not a url"}, logger)
	assert.Error(t, err)
}

func TestGenerateKey(t *testing.T) {
	args1 := map[string]interface{}{
		"guideline":  "Nordic",
		"birth_date": "2015-06-05",
	}
	args2 := map[string]interface{}{
		"birth_date": "2015-06-05",
		"guideline":  "Nordic",
	}

	key := GenerateKey("calculate_screening_interval", "2025-06-15", args1)
	assert.Equal(t, key, GenerateKey("calculate_screening_interval", "2025-06-15", args2), "argument order must not matter")
	assert.Len(t, key, 64)

	assert.NotEqual(t, key, GenerateKey("calculate_screening_interval", "2025-06-16", args1), "a new day is a new key")
	assert.NotEqual(t, key, GenerateKey("validate_profile", "2025-06-15", args1))
}

func TestCacheSetAndGet(t *testing.T) {
	cache := newCache(t, CacheConfig{MaxItems: 10, TTL: time.Minute})
	ctx := context.Background()
	key := GenerateKey("list_guidelines", "2025-06-15", nil)

	data, found := cache.Get(ctx, key)
	assert.False(t, found)
	assert.Nil(t, data)

	cache.Set(ctx, key, []byte(`{"guidelines":[]}`))

	data, found = cache.Get(ctx, key)
	assert.True(t, found)
	assert.JSONEq(t, `{"guidelines":[]}`, string(data))

	stats := cache.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.Empty(t, stats.BreakerState)
}

func TestCacheExpiration(t *testing.T) {
	cache := newCache(t, CacheConfig{MaxItems: 10, TTL: 50 * time.Millisecond})
	ctx := context.Background()

	cache.Set(ctx, "k", []byte("v"))
	_, found := cache.Get(ctx, "k")
	assert.True(t, found)

	time.Sleep(100 * time.Millisecond)

	_, found = cache.Get(ctx, "k")
	assert.False(t, found)
}

func TestCacheEviction(t *testing.T) {
	cache := newCache(t, CacheConfig{MaxItems: 3, TTL: time.Minute})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		cache.Set(ctx, fmt.Sprintf("key-%d", i), []byte("x"))
	}

	stats := cache.GetStats()
	assert.Equal(t, int64(2), stats.Evictions)
	assert.Equal(t, 3, stats.Entries)

	_, found := cache.Get(ctx, "key-0")
	assert.False(t, found, "least recently used entry is evicted first")
	_, found = cache.Get(ctx, "key-4")
	assert.True(t, found)
}

func TestCacheClear(t *testing.T) {
	cache := newCache(t, CacheConfig{MaxItems: 10})
	ctx := context.Background()

	cache.Set(ctx, "a", []byte("1"))
	cache.Set(ctx, "b", []byte("2"))
	cache.Clear()

	assert.Zero(t, cache.GetStats().Entries)
	_, found := cache.Get(ctx, "a")
	assert.False(t, found)
}

func TestCacheDisabled(t *testing.T) {
	cache := newCache(t, CacheConfig{MaxItems: 0})
	ctx := context.Background()

	assert.False(t, cache.Enabled())
	cache.Set(ctx, "a", []byte("1"))
	_, found := cache.Get(ctx, "a")
	assert.False(t, found)
	assert.Zero(t, cache.GetStats().Misses, "a disabled cache records nothing")

	var nilCache *ToolResultCache
	assert.False(t, nilCache.Enabled())
	assert.NoError(t, nilCache.Close())
}

func TestCacheSharedTierUnavailable(t *testing.T) {
	cache := newCache(t, CacheConfig{
		MaxItems:         10,
		RedisURL:         "redis://127.0.0.1:1/0",
		RedisTimeout:     50 * time.Millisecond,
		FailureThreshold: 2,
		BreakerTimeout:   time.Minute,
	})
	ctx := context.Background()

	cache.Set(ctx, "a", []byte("1"))
	data, found := cache.Get(ctx, "a")
	require.True(t, found, "memory tier still serves when Redis is down")
	assert.Equal(t, []byte("1"), data)

	_, found = cache.Get(ctx, "b")
	assert.False(t, found)

	stats := cache.GetStats()
	assert.Equal(t, "open", stats.BreakerState)
	assert.Equal(t, int64(2), stats.SharedErrors)

	_, found = cache.Get(ctx, "c")
	assert.False(t, found)
	assert.Equal(t, int64(3), cache.GetStats().SharedErrors, "open breaker short-circuits without dialing")
}

func newSharedCache(t *testing.T, mr *miniredis.Miniredis, config CacheConfig) *ToolResultCache {
	t.Helper()
	config.RedisURL = "redis://" + mr.Addr() + "/0"
	return newCache(t, config)
}

func TestCacheSharedTier(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	config := CacheConfig{MaxItems: 10, TTL: 10 * time.Minute}

	writer := newSharedCache(t, mr, config)
	reader := newSharedCache(t, mr, config)

	key := GenerateKey("describe_guideline", "2025-06-15", map[string]interface{}{"guideline": "nordic"})
	writer.Set(ctx, key, []byte(`{"id":"Nordic"}`))

	stored, err := mr.Get(keyPrefix + key)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"Nordic"}`, stored)
	assert.Equal(t, 10*time.Minute, mr.TTL(keyPrefix+key))

	data, found := reader.Get(ctx, key)
	require.True(t, found)
	assert.JSONEq(t, `{"id":"Nordic"}`, string(data))

	stats := reader.GetStats()
	assert.Equal(t, int64(1), stats.SharedHits)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, 1, stats.Entries, "shared hit is copied into memory")
	assert.Equal(t, "closed", stats.BreakerState)

	_, found = reader.Get(ctx, key)
	assert.True(t, found)
	assert.Equal(t, int64(1), reader.GetStats().SharedHits, "second read is served from memory")

	mr.FastForward(10 * time.Minute)
	late := newSharedCache(t, mr, config)
	_, found = late.Get(ctx, key)
	assert.False(t, found, "shared entry expires with the configured TTL")
	assert.Zero(t, late.GetStats().SharedErrors, "a missing key is not a failure")
}

func TestCacheSharedTierBreakerRecovers(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	cache := newSharedCache(t, mr, CacheConfig{
		MaxItems:         10,
		TTL:              time.Minute,
		FailureThreshold: 2,
		BreakerTimeout:   50 * time.Millisecond,
	})

	// open a pooled connection while Redis is healthy
	cache.Set(ctx, "warm", []byte("1"))
	require.Equal(t, "closed", cache.GetStats().BreakerState)

	mr.SetError("ERR shared tier down")
	for i := 0; i < 2; i++ {
		_, found := cache.Get(ctx, fmt.Sprintf("missing-%d", i))
		assert.False(t, found)
	}
	assert.Equal(t, "open", cache.GetStats().BreakerState)
	assert.Equal(t, int64(2), cache.GetStats().SharedErrors)

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, "half-open", cache.GetStats().BreakerState)

	mr.SetError("")
	_, found := cache.Get(ctx, "missing-after-recovery")
	assert.False(t, found)
	assert.Equal(t, "closed", cache.GetStats().BreakerState)
	assert.Equal(t, int64(2), cache.GetStats().SharedErrors)
}
