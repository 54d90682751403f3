package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cloud-princess/ontology-processor/internal/reasoning"
)

// RedisCache is the distributed Result Cache backend: it lets every API
// instance sharing a Postgres Graph Store see a coherent Result Cache,
// coordinated by the invalidation broadcast in internal/events. It carries
// no TTL — the cache is correct for the lifetime of the graph snapshot and
// is invalidated explicitly, not on a clock like a typical session or
// query cache.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// RedisConfig configures the Redis connection backing a RedisCache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisCache connects to Redis and verifies the connection with a ping.
func NewRedisCache(cfg RedisConfig, logger *slog.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache: failed to connect to Redis: %w", err)
	}

	logger.Info("connected to Redis result cache", slog.String("addr", cfg.Addr), slog.Int("db", cfg.DB))

	return &RedisCache{client: client, logger: logger}, nil
}

// ParseRedisURL parses a redis://[:password@]host:port[/db] URL without
// pulling in a full URL-parsing dependency for this one call site.
func ParseRedisURL(url string) RedisConfig {
	url = strings.TrimPrefix(url, "redis://")

	var password string
	if at := strings.IndexByte(url, '@'); at >= 0 {
		password = strings.TrimPrefix(url[:at], ":")
		url = url[at+1:]
	}

	db := 0
	if slash := strings.LastIndexByte(url, '/'); slash >= 0 {
		if dbStr := url[slash+1:]; dbStr != "" {
			fmt.Sscanf(dbStr, "%d", &db)
		}
		url = url[:slash]
	}

	return RedisConfig{Addr: url, Password: password, DB: db}
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Get returns the cached Result for q, if present.
func (c *RedisCache) Get(q reasoning.Question) (reasoning.Result, bool) {
	ctx := context.Background()
	val, err := c.client.Get(ctx, redisKey(q)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("redis cache get failed", slog.String("error", err.Error()))
		}
		return "", false
	}
	return reasoning.Result(val), true
}

// Put stores the Result for q with no expiry.
func (c *RedisCache) Put(q reasoning.Question, r reasoning.Result) {
	ctx := context.Background()
	if err := c.client.Set(ctx, redisKey(q), string(r), 0).Err(); err != nil {
		c.logger.Warn("redis cache put failed", slog.String("error", err.Error()))
	}
}

// Flush discards every cached entry matching this engine's key namespace.
func (c *RedisCache) Flush() {
	ctx := context.Background()
	iter := c.client.Scan(ctx, 0, "ontology:query:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			c.logger.Warn("redis cache flush failed", slog.String("error", err.Error()))
		}
	}
}

func redisKey(q reasoning.Question) string {
	return fmt.Sprintf("ontology:query:%s:%s:%s", q.Type, q.Head, q.Tail)
}

var _ reasoning.ResultCache = (*RedisCache)(nil)

// RateLimitClient exposes this RedisCache's connection under the
// key/value/counter shape the RateLimit middleware stage needs, so the
// query API's per-user request counters share the same Redis connection as
// the Result Cache instead of opening a second one.
func (c *RedisCache) RateLimitClient() *RedisRateLimitClient {
	return &RedisRateLimitClient{client: c.client}
}

// RedisRateLimitClient adapts a go-redis client to the generic
// Get/Set/Increment/Expire shape middleware.RateLimitMiddleware expects of
// its distributed counter store.
type RedisRateLimitClient struct {
	client *redis.Client
}

// Get returns the raw string stored at key.
func (c *RedisRateLimitClient) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

// Set stores value under key with the given TTL (0 for no expiry).
func (c *RedisRateLimitClient) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Increment atomically increments the counter at key and returns its new
// value.
func (c *RedisRateLimitClient) Increment(ctx context.Context, key string) (int64, error) {
	return c.client.Incr(ctx, key).Result()
}

// Expire sets a TTL on key.
func (c *RedisRateLimitClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, key, ttl).Err()
}
