package caching

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const keyPrefix = "uvecheck:tool:"

// CacheConfig defines configuration for tool result caching
type CacheConfig struct {
	// Maximum entries held in memory; 0 disables caching
	MaxItems int
	// Lifetime of a cached result in both tiers
	TTL time.Duration
	// Optional Redis URL for a cache shared between server instances
	RedisURL string
	// Deadline for a single Redis round trip
	RedisTimeout time.Duration
	// Consecutive Redis failures before the breaker opens
	FailureThreshold uint32
	// How long the breaker stays open before probing Redis again
	BreakerTimeout time.Duration
}

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits         int64  `json:"hits"`
	Misses       int64  `json:"misses"`
	SharedHits   int64  `json:"shared_hits"`
	SharedErrors int64  `json:"shared_errors"`
	Evictions    int64  `json:"evictions"`
	Entries      int    `json:"entries"`
	BreakerState string `json:"breaker_state,omitempty"`
}

// ToolResultCache keeps serialized tool results in an expiring in-memory LRU,
// optionally backed by Redis. Redis failures never fail a tool call; they
// trip a circuit breaker and the cache falls back to memory only.
type ToolResultCache struct {
	config  CacheConfig
	logger  *logrus.Logger
	memory  *expirable.LRU[string, []byte]
	redis   *redis.Client
	breaker *gobreaker.CircuitBreaker

	hits         atomic.Int64
	misses       atomic.Int64
	sharedHits   atomic.Int64
	sharedErrors atomic.Int64
	evictions    atomic.Int64
}

// NewToolResultCache creates a new tool result cache instance
func NewToolResultCache(config CacheConfig, logger *logrus.Logger) (*ToolResultCache, error) {
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	if config.RedisTimeout <= 0 {
		config.RedisTimeout = 250 * time.Millisecond
	}
	if config.FailureThreshold == 0 {
		config.FailureThreshold = 3
	}
	if config.BreakerTimeout <= 0 {
		config.BreakerTimeout = 30 * time.Second
	}

	cache := &ToolResultCache{
		config: config,
		logger: logger,
	}
	if config.MaxItems <= 0 {
		return cache, nil
	}

	cache.memory = expirable.NewLRU[string, []byte](config.MaxItems, nil, config.TTL)

	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		cache.redis = redis.NewClient(opts)
		cache.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "ToolResultCache",
			MaxRequests: 1,
			Timeout:     config.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= config.FailureThreshold
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"circuit_breaker": name,
					"from_state":      from.String(),
					"to_state":        to.String(),
				}).Warn("Circuit breaker state changed")
			},
		})
	}

	return cache, nil
}

// Enabled reports whether results are cached at all
func (c *ToolResultCache) Enabled() bool {
	return c != nil && c.memory != nil
}

// GenerateKey creates a cache key from the tool name, the evaluation date and
// the arguments. Results depend on today's date, so a new day means new keys.
func GenerateKey(toolName, evaluationDate string, arguments map[string]interface{}) string {
	// encoding/json sorts map keys, which makes the digest order independent
	argBytes, _ := json.Marshal(arguments)
	hash := sha256.New()
	hash.Write([]byte(toolName + "::" + evaluationDate + "::"))
	hash.Write(argBytes)
	return hex.EncodeToString(hash.Sum(nil))
}

// Get retrieves a cached result if available
func (c *ToolResultCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}

	if data, ok := c.memory.Get(key); ok {
		c.hits.Add(1)
		return data, true
	}

	if data, ok := c.getShared(ctx, key); ok {
		c.sharedHits.Add(1)
		c.hits.Add(1)
		c.memory.Add(key, data)
		return data, true
	}

	c.misses.Add(1)
	return nil, false
}

// Set stores a serialized result in the cache
func (c *ToolResultCache) Set(ctx context.Context, key string, data []byte) {
	if !c.Enabled() {
		return
	}

	if evicted := c.memory.Add(key, data); evicted {
		c.evictions.Add(1)
	}
	c.setShared(ctx, key, data)
}

// Clear drops every in-memory entry. Shared entries expire on their own.
func (c *ToolResultCache) Clear() {
	if !c.Enabled() {
		return
	}
	c.memory.Purge()
}

// GetStats returns cache performance statistics
func (c *ToolResultCache) GetStats() CacheStats {
	stats := CacheStats{
		Hits:         c.hits.Load(),
		Misses:       c.misses.Load(),
		SharedHits:   c.sharedHits.Load(),
		SharedErrors: c.sharedErrors.Load(),
		Evictions:    c.evictions.Load(),
	}
	if c.Enabled() {
		stats.Entries = c.memory.Len()
	}
	if c.breaker != nil {
		stats.BreakerState = c.breaker.State().String()
	}
	return stats
}

// Close releases the Redis connection pool
func (c *ToolResultCache) Close() error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

func (c *ToolResultCache) getShared(ctx context.Context, key string) ([]byte, bool) {
	if c.redis == nil {
		return nil, false
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, c.config.RedisTimeout)
		defer cancel()

		data, err := c.redis.Get(ctx, keyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		c.recordSharedError("get", err)
		return nil, false
	}

	data, _ := result.([]byte)
	return data, data != nil
}

func (c *ToolResultCache) setShared(ctx context.Context, key string, data []byte) {
	if c.redis == nil {
		return
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, c.config.RedisTimeout)
		defer cancel()
		return nil, c.redis.Set(ctx, keyPrefix+key, data, c.config.TTL).Err()
	})
	if err != nil {
		c.recordSharedError("set", err)
	}
}

func (c *ToolResultCache) recordSharedError(op string, err error) {
	c.sharedErrors.Add(1)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return
	}
	c.logger.WithFields(logrus.Fields{
		"operation": op,
		"error":     err.Error(),
	}).Warn("Shared cache unavailable, using memory only")
}
