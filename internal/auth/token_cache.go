package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// tokenKeyPrefix namespaces cached token hashes in Redis.
const tokenKeyPrefix = "access_token:"

// RedisTokenCache keeps token-hash → user-id mappings so the bearer gate can
// skip the store on repeat requests. The store row stays the authority; cache
// entries expire after TTL and get purged on logout.
type RedisTokenCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisTokenCache(client *redis.Client, ttl time.Duration) *RedisTokenCache {
	return &RedisTokenCache{Client: client, TTL: ttl}
}

func (c *RedisTokenCache) Get(ctx context.Context, hash string) (int64, bool, error) {
	val, err := c.Client.Get(ctx, tokenKeyPrefix+hash).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get token from Redis: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// Unparseable entry, treat as a miss so the store decides.
		return 0, false, nil
	}
	return userID, true, nil
}

func (c *RedisTokenCache) Set(ctx context.Context, hash string, userID int64) error {
	err := c.Client.Set(ctx, tokenKeyPrefix+hash, strconv.FormatInt(userID, 10), c.TTL).Err()
	if err != nil {
		return fmt.Errorf("failed to store token in Redis: %w", err)
	}
	return nil
}

func (c *RedisTokenCache) Delete(ctx context.Context, hashes ...string) error {
	if len(hashes) == 0 {
		return nil
	}
	keys := make([]string, len(hashes))
	for i, h := range hashes {
		keys[i] = tokenKeyPrefix + h
	}
	return c.Client.Del(ctx, keys...).Err()
}
