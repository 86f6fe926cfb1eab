package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Client wraps redis.Client but fails safe by swallowing connectivity errors.
// Every value kept here is advisory, so an unavailable redis degrades to
// "nothing stored" instead of failing the request.
type Client struct {
	client *redis.Client
}

// New creates a new Redis client.
func New(addr, password string, db int) *Client {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	return &Client{client: redis.NewClient(opts)}
}

// Ping reports whether redis is reachable. Used only for startup diagnostics.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("redis client not configured")
	}
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Get returns value or nil if missing or redis unavailable.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	res, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("redis get failed, treating as miss")
		return nil, nil
	}
	return res, nil
}

// Set stores value with TTL, ignoring redis errors.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("redis set failed")
		return nil
	}
	return nil
}

// Delete removes a key, ignoring redis errors.
func (c *Client) Delete(ctx context.Context, key string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return nil
	}
	return nil
}

// HSet stores field=value in the hash at key, ignoring redis errors.
func (c *Client) HSet(ctx context.Context, key, field, value string) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.HSet(ctx, key, field, value).Err(); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("redis hset failed")
		return nil
	}
	return nil
}

// HGetAll returns the hash at key, or an empty map if missing or redis unavailable.
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if c == nil || c.client == nil {
		return map[string]string{}, nil
	}
	res, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("redis hgetall failed, treating as empty")
		return map[string]string{}, nil
	}
	return res, nil
}
