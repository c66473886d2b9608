package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"guestbook/internal/domain"
)

const sessionKeyPrefix = "session:"

// Config holds the redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient opens a client and pings it.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// redisKV is the part of the redis client the session cache uses.
type redisKV interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type sessionCache struct {
	client redisKV
}

// NewSessionCache returns a domain.SessionCache storing session:<id> → user id with the token's TTL.
func NewSessionCache(client redisKV) domain.SessionCache {
	return &sessionCache{client: client}
}

func (c *sessionCache) Store(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	if err := c.client.Set(ctx, sessionKeyPrefix+sessionID, userID, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (c *sessionCache) Lookup(ctx context.Context, sessionID string) (string, error) {
	userID, err := c.client.Get(ctx, sessionKeyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("lookup session: %w", err)
	}
	return userID, nil
}

func (c *sessionCache) Invalidate(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}
